// Package txdemo provides example txcore.Operation implementations: an
// idempotent upsert, a non-idempotent audit-log append, and a deferred
// operation whose query depends on a value produced earlier in the same
// attempt. The txrunner demo CLI runs the upsert and the audit-log append.
package txdemo

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AEATech/txcore/pkg/txcore"
)

// UpsertAccount inserts or updates an account row keyed by ID. Running it
// twice leaves the account in the same final state, so it is idempotent.
type UpsertAccount struct {
	ID      uuid.UUID
	Name    string
	Balance int64
}

func (o UpsertAccount) Build() (txcore.Query, error) {
	if o.Name == "" {
		return txcore.Query{}, fmt.Errorf("txdemo: account name is required")
	}
	return txcore.NewQuery(
		`INSERT INTO accounts (id, name, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, balance = EXCLUDED.balance`,
		o.ID, o.Name, o.Balance,
	).WithReuseHint(txcore.ReusePerConnection), nil
}

func (o UpsertAccount) IsIdempotent() (bool, error) { return true, nil }

// AppendAuditEntry inserts a new audit row. Running it twice produces two
// rows, so it is not idempotent: a commit failure on a plan containing this
// operation must surface as an uncertain outcome rather than be retried.
type AppendAuditEntry struct {
	AccountID uuid.UUID
	Action    string
}

func (o AppendAuditEntry) Build() (txcore.Query, error) {
	return txcore.NewQuery(
		`INSERT INTO audit_log (id, account_id, action) VALUES ($1, $2, $3)`,
		uuid.New(), o.AccountID, o.Action,
	), nil
}

func (o AppendAuditEntry) IsIdempotent() (bool, error) { return false, nil }

// DebitThenLogBalance is a deferred operation: its Query depends on a
// balance read earlier in the same attempt via Observe, so it must be
// rebuilt on every attempt rather than built once and replayed.
type DebitThenLogBalance struct {
	AccountID uuid.UUID
	Amount    int64

	observedBalance *int64
}

// Observe records the balance this attempt saw, for Build to consult. A
// real caller would populate this from a SELECT executed earlier in the
// same plan.
func (o *DebitThenLogBalance) Observe(balance int64) {
	o.observedBalance = &balance
}

func (o *DebitThenLogBalance) Build() (txcore.Query, error) {
	if o.observedBalance == nil {
		return txcore.Query{}, fmt.Errorf("txdemo: balance has not been observed for this attempt")
	}
	remaining := *o.observedBalance - o.Amount
	if remaining < 0 {
		return txcore.Query{}, fmt.Errorf("txdemo: insufficient balance: have %d, need %d", *o.observedBalance, o.Amount)
	}
	return txcore.NewQuery(
		`UPDATE accounts SET balance = $1 WHERE id = $2`,
		remaining, o.AccountID,
	), nil
}

func (o *DebitThenLogBalance) IsIdempotent() (bool, error) {
	// Debiting the same amount twice changes the balance twice; not safe
	// to replay blindly.
	return false, nil
}

// DeferredBuild marks DebitThenLogBalance for per-attempt rebuilding: a
// retried attempt must re-observe the balance rather than reuse whatever
// Query the first attempt produced.
func (o *DebitThenLogBalance) DeferredBuild() bool { return true }
