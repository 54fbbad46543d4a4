package db

import (
	"database/sql"
	"fmt"

	// Registers the "stoolap" database/sql driver.
	_ "github.com/stoolap/stoolap/pkg/driver"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQL opens a pooled GORM connection to MySQL.
func NewMySQL(host string, port int, user, password, database string, maxIdle, maxOpen int) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, port, database)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	return gdb, nil
}

// NewStoolap opens the embedded stoolap engine (dsn "memory://" or
// "file://<path>") and wraps it with GORM through the MySQL dialector's
// existing-connection option, the same way stoolap's own gormapp example
// does it. This is the single-binary deployment mode: no external database.
func NewStoolap(dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("stoolap", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open stoolap: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping stoolap: %w", err)
	}

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to wrap stoolap with gorm: %w", err)
	}
	return gdb, nil
}
