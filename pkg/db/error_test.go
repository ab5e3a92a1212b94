package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: PGUniqueViolation})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: PGSerializationFailure}))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoice_payments.provider_payment_id")))
	assert.False(t, IsDuplicateKeyErr(errors.New("boom")))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: PGCheckViolation}))
	assert.True(t, IsCheckViolation(errors.New("CHECK constraint failed: chk_invoices_amount_paid")))
	assert.False(t, IsCheckViolation(nil))
	assert.False(t, IsCheckViolation(&pgconn.PgError{Code: PGUniqueViolation}))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("tx: %w", &pgconn.PgError{Code: PGSerializationFailure})))
	assert.True(t, IsTransient(&pgconn.PgError{Code: PGDeadlockDetected}))
	assert.True(t, IsTransient(&pgconn.PgError{Code: PGLockNotAvailable}))
	assert.True(t, IsTransient(errors.New("Error 1213: Deadlock found when trying to get lock")))
	assert.True(t, IsTransient(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsTransient(&pgconn.PgError{Code: PGUniqueViolation}))
	assert.False(t, IsTransient(nil))
	assert.Equal(t, "", PGCode(errors.New("plain")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("boom")))
}
