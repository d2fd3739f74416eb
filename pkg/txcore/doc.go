// Package txcore is a driver-agnostic database transaction orchestrator.
//
// It executes an ordered batch of data-modifying operations as a single
// logical transaction, retrying on transient and connection failures with
// pluggable backoff, and reporting an explicit UnknownCommitStateError when
// a commit's outcome cannot be determined and retrying it would risk
// duplicating effects.
//
// # Example Usage
//
//	classifier := txcore.NewDefaultClassifier(myHeuristics)
//	backoff, _ := txcore.NewExponentialBackoff(
//	    100*time.Millisecond, 5*time.Second, 2.0, 50*time.Millisecond,
//	)
//	policy, _ := txcore.NewRetryPolicy(3, backoff)
//	manager := txcore.NewTransactionManager(classifier, policy, txcore.RealSleeper{})
//
//	result, err := manager.Run(ctx, conn, txcore.TxOptions{}, opA, opB)
//
// # Error Classification
//
// The Classifier reduces an error to one of three kinds: Fatal (never
// retried), Transient (retried with backoff), or Connection (retried with
// backoff, and the Connection is explicitly closed first so the next
// attempt starts from a fresh session). Classification is delegated to a
// pluggable Heuristics implementation so the core never needs to know
// about any particular driver's error taxonomy.
//
// # Commit Uncertainty
//
// If a commit call itself fails, the outcome of the transaction on the
// server is unknown. Retrying is only safe when every operation in the
// plan is idempotent; otherwise Run returns an UnknownCommitStateError
// immediately, bypassing classification and the retry budget entirely.
//
// # Deferred Operations
//
// Most operations build their Query once, before the first attempt. An
// operation flagged deferred-build instead has its Build method invoked
// fresh on every attempt, inside the active transaction, so it can reflect
// reads performed earlier in that same attempt.
//
// # Thread Safety
//
// A TransactionManager is safe for concurrent Run calls against distinct
// Connections. A single Connection must not be used by more than one Run
// call at a time; Run never spawns goroutines and performs all I/O
// synchronously on the calling goroutine.
package txcore
