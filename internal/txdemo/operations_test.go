package txdemo

import (
	"testing"

	"github.com/google/uuid"
)

func TestUpsertAccount_BuildRequiresName(t *testing.T) {
	op := UpsertAccount{ID: uuid.New(), Balance: 100}
	if _, err := op.Build(); err == nil {
		t.Fatal("expected an error when Name is empty")
	}
}

func TestUpsertAccount_IsIdempotent(t *testing.T) {
	op := UpsertAccount{ID: uuid.New(), Name: "checking", Balance: 500}
	idempotent, err := op.IsIdempotent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idempotent {
		t.Error("UpsertAccount must be idempotent")
	}
	q, err := op.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(q.Params) != 3 {
		t.Errorf("len(Params) = %d, want 3", len(q.Params))
	}
}

func TestAppendAuditEntry_IsNotIdempotent(t *testing.T) {
	op := AppendAuditEntry{AccountID: uuid.New(), Action: "debit"}
	idempotent, err := op.IsIdempotent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idempotent {
		t.Error("AppendAuditEntry must not be idempotent")
	}
}

func TestAppendAuditEntry_BuildGeneratesFreshIDEachCall(t *testing.T) {
	op := AppendAuditEntry{AccountID: uuid.New(), Action: "credit"}
	first, err := op.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := op.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first.Params[0] == second.Params[0] {
		t.Error("expected a fresh audit entry ID on each Build call")
	}
}

func TestDebitThenLogBalance_BuildFailsWithoutObservation(t *testing.T) {
	op := &DebitThenLogBalance{AccountID: uuid.New(), Amount: 50}
	if _, err := op.Build(); err == nil {
		t.Fatal("expected an error when the balance has not been observed")
	}
}

func TestDebitThenLogBalance_BuildFailsOnInsufficientBalance(t *testing.T) {
	op := &DebitThenLogBalance{AccountID: uuid.New(), Amount: 100}
	op.Observe(40)
	if _, err := op.Build(); err == nil {
		t.Fatal("expected an error when the debit exceeds the observed balance")
	}
}

func TestDebitThenLogBalance_BuildSucceedsWithSufficientBalance(t *testing.T) {
	op := &DebitThenLogBalance{AccountID: uuid.New(), Amount: 30}
	op.Observe(100)
	q, err := op.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if q.Params[0] != int64(70) {
		t.Errorf("remaining balance = %v, want 70", q.Params[0])
	}
}

func TestDebitThenLogBalance_IsDeferred(t *testing.T) {
	op := &DebitThenLogBalance{}
	if !op.DeferredBuild() {
		t.Error("DebitThenLogBalance must be deferred")
	}
	idempotent, _ := op.IsIdempotent()
	if idempotent {
		t.Error("DebitThenLogBalance must not be idempotent")
	}
}
