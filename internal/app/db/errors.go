package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsSerializationFailure reports a serialization or deadlock failure (40001, 40P01)
// after which the transaction can be retried.
func IsSerializationFailure(err error) bool {
	return hasCode(err, "40001") || hasCode(err, "40P01")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
