package db

import (
	"context"
	"fmt"
	"time"

	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Option func(*gorm.Config)

func WithLogLevel(level gormlogger.LogLevel) Option {
	return func(c *gorm.Config) { c.Logger = gormlogger.Default.LogMode(level) }
}

// Dialector picks the gorm dialector for a configured driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func Open(driver, dsn string, opts ...Option) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	gdb, err := OpenGormWithDialector(dial, opts...)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer at a time, sqlite would answer "database is locked" otherwise
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

func OpenGorm(dsn string, opts ...Option) (*gorm.DB, error) {
	return Open(DriverMySQL, dsn, opts...)
}

func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	for _, o := range opts {
		o(cfg)
	}
	gdb, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	logger.Info("gorm: connected", "dialect", dial.Name())
	return gdb, nil
}

// Migrate creates or updates the employees, loans and transactions tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&employee.Employee{}, &loan.Loan{}, &ledger.Transaction{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping adapts the pool to a health check.
func Ping(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
