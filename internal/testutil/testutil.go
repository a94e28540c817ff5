// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/monocle-dev/rolodex/db"
	"github.com/monocle-dev/rolodex/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	if err := db.MigrateDatabase(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Mailer records every email instead of sending it.
type Mailer struct {
	mu   sync.Mutex
	Sent []services.Email
	Err  error
}

func (m *Mailer) Send(_ context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *Mailer) Last() (services.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return services.Email{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
