package persistence

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Unique indexes are the correctness backstop for idempotent ingestion:
// when two webhook deliveries race past an existence check, one insert
// loses here and the caller treats it as an already-processed duplicate.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	// sqlite, used by in-memory tests
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
