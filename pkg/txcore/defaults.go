package txcore

// NullHeuristics never classifies any diagnostic tuple as connection- or
// transient-shaped, so a DefaultClassifier built on it reduces every error
// to Fatal. It is the zero-value collaborator for callers who have not yet
// wired a driver-specific Heuristics implementation, or who want a
// conservative "never retry" classifier for tests.
type NullHeuristics struct{}

func (NullHeuristics) IsConnectionIssue(Diagnostics) bool { return false }
func (NullHeuristics) IsTransientIssue(Diagnostics) bool  { return false }

// DefaultRetryPolicy returns the package's baseline policy: no retries, no
// backoff. Callers almost always want to override this with a policy
// built from NewExponentialBackoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 0, Backoff: NoBackoff{}}
}
