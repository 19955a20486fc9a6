package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"tally/internal/config"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Driver string

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
	SlowQueryThreshold time.Duration
	LogLevel           string
	Tracing            bool
}

// NewConfig derives the database configuration from the application config.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:             cfg.DBDriver,
		Path:               cfg.DBPath,
		Host:               cfg.DBHost,
		Port:               cfg.DBPort,
		User:               cfg.DBUser,
		Password:           cfg.DBPassword,
		DBName:             cfg.DBName,
		SSLMode:            cfg.DBSSLMode,
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetime:    cfg.DBConnMaxLifetime,
		ConnectTimeout:     cfg.DBConnectTimeout,
		SlowQueryThreshold: cfg.DBSlowQueryThreshold,
		LogLevel:           cfg.LogLevel,
		Tracing:            cfg.OTelEnabled,
	}
}

// DSN returns the driver-specific connection string.
func (c *Config) DSN() string {
	if c.Driver == DriverPostgres {
		return c.postgresDSN()
	}
	return c.sqliteDSN()
}

// postgresDSN returns the PostgreSQL connection string
func (c *Config) postgresDSN() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	if c.ConnectTimeout > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", int(c.ConnectTimeout.Seconds()))
	}
	return dsn
}

// sqliteDSN enables foreign keys so ON DELETE CASCADE is enforced, and sets a
// busy timeout so concurrent writers wait instead of failing immediately.
func (c *Config) sqliteDSN() string {
	path := c.Path
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	params := url.Values{}
	params.Set("_foreign_keys", "1")
	if c.ConnectTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprintf("%d", c.ConnectTimeout.Milliseconds()))
	}
	if !strings.Contains(path, "mode=memory") {
		params.Set("_journal_mode", "WAL")
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}
