// internal/utils/db.go
package utils

import (
	"errors"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a postgres unique-index conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
