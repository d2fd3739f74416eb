package txcore

import (
	"context"
	"time"
)

// AttemptObserver is notified after each failed attempt that classification
// has run for, purely for logging and metrics. It never influences control
// flow. It is not called for the attempt that ultimately succeeds, and it
// is not called when a commit error surfaces as UnknownCommitStateError
// (that path never consults the classifier). delay is the Duration about
// to be slept; it is zero when the manager is not going to sleep at all
// (Fatal, or the retry budget is already exhausted).
type AttemptObserver func(attempt int, kind ErrorKind, err error, delay time.Duration)

// TransactionManager is the retry state machine: it drives one Connection
// through begin/execute/commit, classifying failures and retrying with
// backoff, closing the Connection when a failure is connection-shaped, and
// raising UnknownCommitStateError when a commit failure cannot be safely
// retried.
//
// Thread-Safety: a TransactionManager holds no per-run state, so the same
// instance may be used concurrently by multiple goroutines as long as each
// call passes its own Connection. Two goroutines must never share one
// Connection across concurrent Run calls.
type TransactionManager struct {
	classifier    Classifier
	defaultPolicy RetryPolicy
	sleeper       Sleeper
	planBuilder   *PlanBuilder
	onAttempt     AttemptObserver
}

// NewTransactionManager constructs a TransactionManager. Panics if
// classifier or sleeper is nil, or if defaultPolicy.Backoff is nil —
// these are programmer errors that should fail loudly at construction
// time rather than surface as a cryptic nil pointer deep in a retry loop.
func NewTransactionManager(classifier Classifier, defaultPolicy RetryPolicy, sleeper Sleeper) *TransactionManager {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if sleeper == nil {
		panic("sleeper cannot be nil")
	}
	if defaultPolicy.Backoff == nil {
		panic("defaultPolicy.Backoff cannot be nil")
	}
	return &TransactionManager{
		classifier:    classifier,
		defaultPolicy: defaultPolicy,
		sleeper:       sleeper,
		planBuilder:   NewPlanBuilder(nil),
	}
}

// WithOnAttempt returns a new TransactionManager with the given observer
// configured. The receiver is left unchanged, so independent observers can
// be attached per caller without sharing mutable state.
func (m *TransactionManager) WithOnAttempt(observer AttemptObserver) *TransactionManager {
	clone := *m
	clone.onAttempt = observer
	return &clone
}

// WithPlanBuilder returns a new TransactionManager that uses the given
// PlanBuilder (e.g. one configured with a custom DeferredBuildResolver)
// instead of the default caching resolver.
func (m *TransactionManager) WithPlanBuilder(builder *PlanBuilder) *TransactionManager {
	clone := *m
	clone.planBuilder = builder
	return &clone
}

// Run builds a plan from operations and executes it against conn as a
// single logical transaction, retrying on Transient and Connection
// failures per the effective RetryPolicy (options.RetryPolicy if set,
// otherwise the manager's default).
//
// The plan is built exactly once, before the first attempt begins; every
// attempt after that replays the same plan. See ExecutionPlan for what
// "replay" means for deferred operations.
func (m *TransactionManager) Run(ctx context.Context, conn Connection, options TxOptions, operations ...Operation) (RunResult, error) {
	plan, err := m.planBuilder.Build(operations...)
	if err != nil {
		return RunResult{}, err
	}

	policy := m.defaultPolicy
	if options.RetryPolicy != nil {
		policy = *options.RetryPolicy
	}

	for attempt := 0; ; attempt++ {
		total, committing, err := m.runAttempt(ctx, conn, options, plan, attempt == 0)
		if err == nil {
			return RunResult{AffectedRows: total, Attempts: attempt + 1}, nil
		}

		if committing && !plan.IsIdempotent() {
			return RunResult{}, &UnknownCommitStateError{Cause: err}
		}

		kind := m.classifier.Classify(err)
		if kind == Fatal {
			m.notify(attempt, kind, err, 0)
			return RunResult{}, err
		}

		if attempt >= policy.MaxRetries {
			m.notify(attempt, kind, err, 0)
			return RunResult{}, err
		}

		if kind == Connection {
			_ = conn.Close()
		}

		delay := policy.Backoff.Delay(attempt)
		m.notify(attempt, kind, err, delay)
		if sleepErr := m.sleeper.Sleep(ctx, delay); sleepErr != nil {
			return RunResult{}, sleepErr
		}
	}
}

func (m *TransactionManager) notify(attempt int, kind ErrorKind, err error, delay time.Duration) {
	if m.onAttempt != nil {
		m.onAttempt(attempt, kind, err, delay)
	}
}

// runAttempt runs one begin/execute/commit cycle. committing is true only
// when the returned error came from the Commit call itself — that is the
// signal the caller needs to apply the commit-uncertainty rule.
func (m *TransactionManager) runAttempt(ctx context.Context, conn Connection, options TxOptions, plan *ExecutionPlan, allowReconnect bool) (total int64, committing bool, err error) {
	if err := m.beginTransaction(ctx, conn, options, allowReconnect); err != nil {
		m.safeRollback(ctx, conn)
		return 0, false, err
	}

	for i := 0; i < plan.Len(); i++ {
		q, err := plan.steps[i].resolve()
		if err != nil {
			m.safeRollback(ctx, conn)
			return total, false, err
		}

		affected, err := conn.ExecuteQuery(ctx, q)
		if err != nil {
			m.safeRollback(ctx, conn)
			return total, false, err
		}
		total += affected
	}

	if err := conn.Commit(ctx); err != nil {
		m.safeRollback(ctx, conn)
		return total, true, err
	}

	return total, false, nil
}

// beginTransaction opens a transaction. On the first attempt only
// (allowReconnect), a failure to begin triggers one free reconnect: close
// the Connection and try once more, propagating whatever the second
// attempt returns. This absorbs a stale long-lived session without
// consuming any of the caller's retry budget. On every later attempt, a
// begin failure propagates unchanged and is classified like any other
// error.
func (m *TransactionManager) beginTransaction(ctx context.Context, conn Connection, options TxOptions, allowReconnect bool) error {
	err := conn.BeginTransactionWithOptions(ctx, options)
	if err == nil {
		return nil
	}
	if !allowReconnect {
		return err
	}

	_ = conn.Close()
	return conn.BeginTransactionWithOptions(ctx, options)
}

// safeRollback rolls back the open transaction and discards any error it
// raises. A rollback failure never masks or replaces the original error
// that triggered it.
func (m *TransactionManager) safeRollback(ctx context.Context, conn Connection) {
	_ = conn.Rollback(ctx)
}
