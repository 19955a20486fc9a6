// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tally/internal/database"
)

// SetupTestDB creates an isolated in-memory SQLite database with the
// production migrations applied.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	m, err := database.NewManager(&database.Config{
		Driver:       database.DriverSQLite,
		Path:         fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", nextID()),
		MaxIdleConns: 2,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return m.DB()
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// MockDB wraps a GORM database backed by sqlmock, for driving store failures.
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

// NewMockDB creates a GORM postgres dialector over a sqlmock connection.
// The connection is closed when the test finishes.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	return &MockDB{DB: db, Mock: mock}
}

// ExpectationsWereMet fails the test if any sqlmock expectation was not met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	if err := m.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}
