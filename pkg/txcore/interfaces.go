package txcore

import (
	"context"
	"time"
)

// Connection is the database collaborator the TransactionManager drives.
// It is owned, for the duration of one Run call, exclusively by the
// manager; concurrent use by any other actor is undefined behavior.
//
// Implementations MUST make Close idempotent: the manager may call it
// twice in a row (once from the free-reconnect path, once from the
// Connection-kind retry path) if both happen to fire for the same attempt.
type Connection interface {
	// BeginTransactionWithOptions opens a transaction and, if
	// opts.IsolationLevel is not IsolationNone, applies it to this
	// transaction only. It must not implicitly reconnect while a
	// transaction is already active.
	BeginTransactionWithOptions(ctx context.Context, opts TxOptions) error

	// ExecuteQuery runs q against the open transaction and returns the
	// number of rows it affected.
	ExecuteQuery(ctx context.Context, q Query) (int64, error)

	// Commit commits the open transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the open transaction. Errors from Rollback are
	// always discarded by the manager; implementations may still return
	// one for logging purposes.
	Rollback(ctx context.Context) error

	// Close forces a fresh physical session on the next
	// BeginTransactionWithOptions call. Must be safe to call more than
	// once and safe to call with no transaction open.
	Close() error
}

// Operation is the unit of work a caller submits to a TransactionManager.
//
// Build must be pure and deterministic unless the concrete type also
// satisfies DeferredOperation and is resolved as deferred by the
// PlanBuilder's resolver, in which case Build may be called once per
// attempt and may observe state mutated earlier within that attempt.
//
// IsIdempotent reports the effect of executing the Query Build produces,
// not of calling Build or IsIdempotent themselves: it must answer whether
// running that Query twice in sequence leaves the database in the same
// final state as running it once.
type Operation interface {
	Build() (Query, error)
	IsIdempotent() (bool, error)
}

// DeferredOperation is an optional, type-level marker. An Operation whose
// concrete type also implements DeferredOperation and reports true is
// rebuilt once per attempt instead of once per Run call. The marker is
// queried once per concrete type (not per instance) by a caching
// DeferredBuildResolver, since the answer is expected to be stable across
// every instance of that type.
type DeferredOperation interface {
	DeferredBuild() bool
}

// Heuristics supplies the driver-specific predicates a Classifier consults
// for each frame of an error's causal chain.
type Heuristics interface {
	// IsConnectionIssue reports whether the diagnostic tuple describes a
	// broken session (dropped socket, server-initiated disconnect,
	// protocol reset).
	IsConnectionIssue(d Diagnostics) bool

	// IsTransientIssue reports whether the diagnostic tuple describes a
	// retryable condition that does not require closing the connection
	// (deadlock, serialization failure, lock timeout).
	IsTransientIssue(d Diagnostics) bool
}

// Diagnostics is the (sqlState, driverCode, message) tuple extracted from
// a single error frame, per the generic extraction algorithm in Classifier.
type Diagnostics struct {
	SQLState      string
	HasSQLState   bool
	DriverCode    int
	HasDriverCode bool
	Message       string
}

// Classifier reduces an error to one of Fatal, Transient, or Connection.
type Classifier interface {
	Classify(err error) ErrorKind
}

// BackoffStrategy maps a zero-indexed attempt number to the delay before
// the next attempt. Implementations need only be deterministic for a given
// attempt when they do not deliberately use randomness.
type BackoffStrategy interface {
	Delay(attempt int) time.Duration
}

// Sleeper consumes a backoff delay. A Duration <= 0 must return
// immediately without invoking any underlying wait primitive.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// DeferredBuildResolver decides, once per concrete Operation type, whether
// that type's Build should be called eagerly (during plan construction) or
// deferred (once per attempt, inside the active transaction). It must
// never fail for a well-formed Operation.
type DeferredBuildResolver interface {
	IsDeferred(op Operation) bool
}
