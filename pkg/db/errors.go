package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation, across the postgres and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
