// Package database holds the sqlx repositories plus the sentinel
// errors shared across them. Handlers translate these into HTTP
// statuses: ErrNotFound -> 404, ErrSevaNotFound -> 400,
// ErrDuplicateMobile -> 409.
package database

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a booking or devotee id does not resolve
var ErrNotFound = errors.New("record not found")

// ErrDuplicateMobile is returned when a devotee phone rename collides
// with another devotee's mobile number
var ErrDuplicateMobile = errors.New("mobile number already exists")

// ErrSevaNotFound is returned when a booking references a seva id that
// is not in the catalog
var ErrSevaNotFound = errors.New("seva not found")

// uniqueViolation is the PostgreSQL error code for unique constraint
// conflicts
const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique constraint conflict
// on the named constraint. An empty constraint matches any.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
