package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBType: "PostgreSQL", DBHost: "db", DBPort: "5432",
		DBUser: "whizly", DBPassword: "pw", DBName: "invoices", DBSSLMode: "disable",
	}
	dsn, err := DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=whizly password=pw dbname=invoices sslmode=disable TimeZone=UTC", dsn)

	cfg.DBType = "mysql"
	cfg.DBPort = "3306"
	dsn, err = DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "whizly:pw@tcp(db:3306)/invoices?charset=utf8mb4&parseTime=True&loc=UTC", dsn)

	dsn, err = DSN(config.Config{DBType: "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "whizly.db?_busy_timeout=5000&_foreign_keys=on", dsn)

	_, err = DSN(config.Config{DBType: "oracle"})
	assert.Error(t, err)

	_, err = Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}
