package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the invoice store reacts to.
const (
	PGUniqueViolation      = "23505"
	PGCheckViolation       = "23514"
	PGSerializationFailure = "40001"
	PGDeadlockDetected     = "40P01"
	PGLockNotAvailable     = "55P03"
)

// PGCode returns the SQLSTATE of a postgres error in err's chain, or "".
func PGCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyErr reports a unique constraint violation on any supported
// dialect. Invoice numbers and provider payment IDs rely on it.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || PGCode(err) == PGUniqueViolation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsCheckViolation reports a CHECK constraint failure, e.g. amount_paid
// exceeding amount.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || PGCode(err) == PGCheckViolation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 3819") || strings.Contains(msg, "CHECK constraint failed")
}

// IsTransient reports lock and serialization failures that succeed when the
// transaction is simply run again.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch PGCode(err) {
	case PGSerializationFailure, PGDeadlockDetected, PGLockNotAvailable:
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"Error 1213", "Error 1205", "database is locked", "SQLITE_BUSY"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
