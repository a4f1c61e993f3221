// Package storage opens the relational database backing accounts, saves and mail.
package storage

import (
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config configures the connection pool
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	Logger          *slog.Logger
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("driver", c.Driver, []string{DriverPostgres, DriverMySQL}, vb)
	errors.ValidateRequired("dsn", c.DSN, vb)
	return vb.Build()
}

// Migrator creates or updates the tables one repository owns
type Migrator func(db *gorm.DB) error

// Open connects, configures the pool and runs the migrators in order
func Open(cfg *Config, migrators ...Migrator) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogger(cfg.Logger, cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db, migrators...); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the migrators in order
func Migrate(db *gorm.DB, migrators ...Migrator) error {
	for _, m := range migrators {
		if err := m(db); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

// NewLogger routes gorm's logger through slog at warn level, so only slow
// queries and errors show up.
func NewLogger(l *slog.Logger, slow time.Duration) logger.Interface {
	if l == nil {
		l = slog.Default()
	}
	if slow <= 0 {
		slow = time.Second
	}
	return logger.New(
		slog.NewLogLogger(l.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Close closes the underlying pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
