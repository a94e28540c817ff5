package db

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/monocle-dev/rolodex/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL database described by dsn.
func Connect(dsn string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn))
}

// Open opens gorm on any dialector. Driver errors are translated so that
// unique violations surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return open(dialector, os.Stdout)
}

func open(dialector gorm.Dialector, w io.Writer) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(w),
	})
}

// Lookups by email, token and verification code miss routinely, so
// ErrRecordNotFound is not logged.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func MigrateDatabase(gdb *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Contact{},
	}

	for _, model := range models {
		if err := gdb.AutoMigrate(model); err != nil {
			return err
		}
	}

	return nil
}
