package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/whizlyai/whizly/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// Dialect opens the gorm dialector for DATABASE_TYPE.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	kind := dialectName(cfg.DBType)
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	switch kind {
	case DialectMySQL:
		return mysql.Open(dsn), nil
	case DialectSQLite:
		return sqlite.Open(dsn), nil
	default:
		return postgres.Open(dsn), nil
	}
}

// DSN builds the driver connection string. All dialects run in UTC so that
// invoice dates and overdue checks agree across replicas.
func DSN(cfg config.Config) (string, error) {
	switch dialectName(cfg.DBType) {
	case DialectPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode), nil
	case DialectMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, url.PathEscape(cfg.DBName)), nil
	case DialectSQLite:
		name := strings.TrimSpace(cfg.DBName)
		if name == "" {
			name = "whizly.db"
		}
		// Concurrent payment writers wait on the file lock instead of failing.
		return name + "?_busy_timeout=5000&_foreign_keys=on", nil
	}
	return "", fmt.Errorf("unsupported database type %q", cfg.DBType)
}

func dialectName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "postgresql" || name == "pg" {
		return DialectPostgres
	}
	return name
}
