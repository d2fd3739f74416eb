package txpg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// diagnosablePgError adapts a *pgconn.PgError so txcore's generic
// extraction can read its SQLSTATE. pgconn.PgError exposes SQLSTATE as a
// plain Code field rather than a method, so this is the seam between the
// driver-specific error shape and the driver-agnostic classifier.
type diagnosablePgError struct {
	*pgconn.PgError
}

func (e diagnosablePgError) SQLState() string { return e.Code }

// wrapDiagnostics walks err's chain for a *pgconn.PgError and, if present,
// replaces it with a diagnosablePgError so a later txcore.Classifier.Classify
// call can extract its SQLSTATE. Errors with no PgError anywhere in their
// chain are returned unchanged.
func wrapDiagnostics(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return diagnosablePgError{pgErr}
	}
	return err
}
