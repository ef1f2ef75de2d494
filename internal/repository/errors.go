package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate marks an insert rejected by a unique constraint. The
// import pipeline treats it as "already imported" and skips the row,
// so callers must branch on it with errors.Is rather than matching
// error text.
var ErrDuplicate = errors.New("duplicate row")

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func classifyInsertErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
