package txcore

import (
	"errors"
	"testing"
)

func TestPlanBuilder_Build_EmptyReturnsErrEmptyPlan(t *testing.T) {
	_, err := NewPlanBuilder(nil).Build()
	if !errors.Is(err, ErrEmptyPlan) {
		t.Fatalf("err = %v, want ErrEmptyPlan", err)
	}
}

func TestPlanBuilder_Build_EagerOperationBuildsOnce(t *testing.T) {
	op := &opFixture{idempotent: true}
	plan, err := NewPlanBuilder(nil).Build(op)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if op.buildCalls != 1 {
		t.Errorf("buildCalls = %d, want 1 at construction time", op.buildCalls)
	}
	if plan.Len() != 1 {
		t.Errorf("Len() = %d, want 1", plan.Len())
	}
}

func TestPlanBuilder_Build_DeferredOperationNotBuiltAtConstruction(t *testing.T) {
	op := &deferredOpFixture{opFixture: opFixture{idempotent: true}}
	_, err := NewPlanBuilder(nil).Build(op)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if op.buildCalls != 0 {
		t.Errorf("buildCalls = %d, want 0 (deferred operations build at resolve time)", op.buildCalls)
	}
}

func TestPlanBuilder_Build_IdempotencyIsLogicalAND(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want bool
	}{
		{"all idempotent", []Operation{&opFixture{idempotent: true}, &opFixture{idempotent: true}}, true},
		{"one non-idempotent", []Operation{&opFixture{idempotent: true}, &opFixture{idempotent: false}}, false},
		{"all non-idempotent", []Operation{&opFixture{idempotent: false}, &opFixture{idempotent: false}}, false},
		{"single idempotent", []Operation{&opFixture{idempotent: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlanBuilder(nil).Build(tt.ops...)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := plan.IsIdempotent(); got != tt.want {
				t.Errorf("IsIdempotent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanBuilder_Build_IdempotencyCheckErrorStopsProcessing(t *testing.T) {
	boom := errors.New("cannot determine idempotency")
	failing := &opFixture{idempotentErr: boom}
	untouched := &opFixture{idempotent: true}

	_, err := NewPlanBuilder(nil).Build(failing, untouched)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
	if untouched.buildCalls != 0 {
		t.Errorf("untouched.buildCalls = %d, want 0: later operations must not be touched", untouched.buildCalls)
	}
}

func TestPlanBuilder_Build_EagerBuildErrorStopsProcessing(t *testing.T) {
	boom := errors.New("cannot build query")
	failing := &opFixture{idempotent: true, buildFunc: func() (Query, error) { return Query{}, boom }}
	untouched := &opFixture{idempotent: true}

	_, err := NewPlanBuilder(nil).Build(failing, untouched)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
	if untouched.buildCalls != 0 {
		t.Errorf("untouched.buildCalls = %d, want 0: later operations must not be touched", untouched.buildCalls)
	}
}

func TestPlanBuilder_Build_MixedEagerAndDeferredPreservesOrder(t *testing.T) {
	eagerFirst := &opFixture{idempotent: true, buildFunc: func() (Query, error) { return NewQuery("eager-first"), nil }}
	deferredSecond := &deferredOpFixture{opFixture: opFixture{
		idempotent: true,
		buildFunc:  func() (Query, error) { return NewQuery("deferred-second"), nil },
	}}
	eagerThird := &opFixture{idempotent: true, buildFunc: func() (Query, error) { return NewQuery("eager-third"), nil }}

	plan, err := NewPlanBuilder(nil).Build(eagerFirst, deferredSecond, eagerThird)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	queries, err := plan.queries()
	if err != nil {
		t.Fatalf("queries: %v", err)
	}
	want := []string{"eager-first", "deferred-second", "eager-third"}
	for i, q := range queries {
		if q.SQL != want[i] {
			t.Errorf("queries[%d].SQL = %q, want %q", i, q.SQL, want[i])
		}
	}
}

func TestPlanBuilder_Build_DeferredResolutionCanChangeBetweenCalls(t *testing.T) {
	n := 0
	op := &deferredOpFixture{opFixture: opFixture{
		idempotent: true,
		buildFunc: func() (Query, error) {
			n++
			if n == 1 {
				return NewQuery("first-call"), nil
			}
			return NewQuery("second-call"), nil
		},
	}}
	plan, err := NewPlanBuilder(nil).Build(op)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	first, err := plan.queries()
	if err != nil {
		t.Fatalf("queries: %v", err)
	}
	second, err := plan.queries()
	if err != nil {
		t.Fatalf("queries: %v", err)
	}
	if first[0].SQL == second[0].SQL {
		t.Errorf("expected deferred resolution to differ across calls, got %q both times", first[0].SQL)
	}
}

func TestCachingDeferredBuildResolver_KeyedByConcreteType(t *testing.T) {
	r := NewCachingDeferredBuildResolver()

	eager := &opFixture{idempotent: true}
	deferred := &deferredOpFixture{opFixture: opFixture{idempotent: true}}

	if r.IsDeferred(eager) {
		t.Error("opFixture should not resolve as deferred")
	}
	if !r.IsDeferred(deferred) {
		t.Error("deferredOpFixture should resolve as deferred")
	}

	// A second instance of the same concrete types must get the cached
	// answer without needing to re-assert the marker interface.
	eager2 := &opFixture{idempotent: false}
	deferred2 := &deferredOpFixture{opFixture: opFixture{idempotent: false}}
	if r.IsDeferred(eager2) {
		t.Error("second opFixture instance should not resolve as deferred")
	}
	if !r.IsDeferred(deferred2) {
		t.Error("second deferredOpFixture instance should resolve as deferred")
	}
}

func TestBuild_PackageLevelConvenienceMatchesPlanBuilder(t *testing.T) {
	op := &opFixture{idempotent: true}
	plan, err := Build(op)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Len() != 1 {
		t.Errorf("Len() = %d, want 1", plan.Len())
	}
}
