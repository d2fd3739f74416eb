package txcore

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios. These enable callers to
// distinguish error categories using errors.Is().
//
// Example usage:
//
//	_, err := manager.Run(ctx, conn, opts, ops...)
//	if errors.Is(err, txcore.ErrInvalidArgument) {
//	    // Handle a construction-time mistake.
//	}
var (
	// ErrInvalidArgument indicates a well-formed-input contract was
	// violated at construction time (empty plan, out-of-range backoff
	// parameters, negative MaxRetries).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyPlan indicates PlanBuilder.Build was called with zero
	// operations.
	ErrEmptyPlan = fmt.Errorf("at least one operation is required: %w", ErrInvalidArgument)
)

func newInvalidArgument(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

// UnknownCommitStateError is raised when a commit call itself fails on a
// non-idempotent plan: the caller cannot safely know whether the commit
// took effect on the server, and the plan cannot be safely replayed to
// find out. Manual reconciliation is required.
//
// It is never raised for an idempotent plan — there, a failed commit is
// classified and retried like any other error.
type UnknownCommitStateError struct {
	Cause error
}

func (e *UnknownCommitStateError) Error() string {
	return fmt.Sprintf("commit failed in unknown state; manual reconciliation required because the operation is not idempotent: %v", e.Cause)
}

func (e *UnknownCommitStateError) Unwrap() error {
	return e.Cause
}
