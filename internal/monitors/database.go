package monitors

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const defaultDatabaseTimeout = 2 * time.Second

// CheckDatabase pings the pool behind gdb within timeout.
func CheckDatabase(ctx context.Context, gdb *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultDatabaseTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sqlDB, err := gdb.DB()

	if err != nil {
		return fmt.Errorf("failed to get database handle: %v", err)
	}

	// Test the connection with a ping
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	return nil
}
