package txpg

import (
	"strings"

	"github.com/AEATech/txcore/pkg/txcore"
)

// PGHeuristics classifies PostgreSQL SQLSTATE classes into the two
// predicates txcore.Classifier needs: a broken session (class 08, 57) is a
// Connection issue; a retryable-in-place condition (class 40, 55) is a
// Transient issue. Anything else is left for the classifier to call Fatal.
//
// The class table is the same one PostgreSQL documents for connection
// exceptions and transaction rollback / lock conditions; see
// https://www.postgresql.org/docs/current/errcodes-appendix.html.
//
// Not every connection-level failure reaches here as a *pgconn.PgError with
// a SQLSTATE: a dial failure, a socket reset mid-Exec, or a pgxpool.Acquire
// timeout surfaces as a plain net/pgconn error with no SQLSTATE at all. For
// those frames this falls back to matching Diagnostics.Message against the
// same connection-failure phrasing pgx and the Go net package use, so the
// connection-recovery path still engages instead of silently falling to
// Fatal.
type PGHeuristics struct{}

// connectionMessagePatterns catches the message text of connection-level
// failures that carry no SQLSTATE: dial/accept failures, a reset socket,
// and the server-closed/timeout phrasings pgx and net surface directly.
var connectionMessagePatterns = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"no such host",
	"network is unreachable",
	"host is unreachable",
	"i/o timeout",
	"broken pipe",
	"server closed the connection",
	"unexpected eof",
}

func (PGHeuristics) IsConnectionIssue(d txcore.Diagnostics) bool {
	if d.HasSQLState {
		switch sqlStateClass(d.SQLState) {
		case "08", "57":
			return true
		}
		return false
	}
	return containsAny(d.Message, connectionMessagePatterns)
}

// transientMessagePatterns catches the message text of retry-in-place
// conditions that, on some driver paths, arrive without a SQLSTATE (e.g. a
// wrapped or re-summarized error from a layer above pgconn).
var transientMessagePatterns = []string{
	"deadlock detected",
	"could not serialize access",
	"could not obtain lock",
}

func (PGHeuristics) IsTransientIssue(d txcore.Diagnostics) bool {
	if d.HasSQLState {
		switch sqlStateClass(d.SQLState) {
		case "40", "55":
			return true
		}
		return false
	}
	return containsAny(d.Message, transientMessagePatterns)
}

func sqlStateClass(sqlState string) string {
	if len(sqlState) < 2 {
		return ""
	}
	return sqlState[:2]
}

func containsAny(message string, patterns []string) bool {
	lower := strings.ToLower(message)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
