package txcore

import (
	"fmt"
	"reflect"
	"sync"
)

// step is one position in an ExecutionPlan. An eagerStep holds a frozen
// Query; a deferredStep holds a reference to the Operation that produces a
// fresh Query on every Resolve call.
type step interface {
	resolve() (Query, error)
}

type eagerStep struct {
	query Query
}

func (s eagerStep) resolve() (Query, error) { return s.query, nil }

type deferredStep struct {
	op Operation
}

func (s deferredStep) resolve() (Query, error) { return s.op.Build() }

// ExecutionPlan is an ordered, replayable sequence of steps produced once
// per Run call and replayed unchanged on every retry. It is never mutated
// after PlanBuilder.Build returns.
type ExecutionPlan struct {
	steps      []step
	idempotent bool
}

// IsIdempotent reports the logical AND of every operation's IsIdempotent
// result, computed once at construction time.
func (p *ExecutionPlan) IsIdempotent() bool { return p.idempotent }

// Len reports the number of steps in the plan.
func (p *ExecutionPlan) Len() int { return len(p.steps) }

// queries resolves every step in order, invoking deferred Operation.Build
// calls as it goes. Eager steps always yield the same Query; deferred
// steps may yield a different Query on each call (e.g. once per attempt).
func (p *ExecutionPlan) queries() ([]Query, error) {
	out := make([]Query, 0, len(p.steps))
	for i, s := range p.steps {
		q, err := s.resolve()
		if err != nil {
			return nil, fmt.Errorf("resolving step %d: %w", i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// PlanBuilder freezes a batch of Operations into an ExecutionPlan.
type PlanBuilder struct {
	resolver DeferredBuildResolver
}

// NewPlanBuilder constructs a PlanBuilder. If resolver is nil, a
// CachingDeferredBuildResolver is used.
func NewPlanBuilder(resolver DeferredBuildResolver) *PlanBuilder {
	if resolver == nil {
		resolver = NewCachingDeferredBuildResolver()
	}
	return &PlanBuilder{resolver: resolver}
}

// defaultPlanBuilder is used by the package-level Build convenience
// function; it owns its own resolver cache so concurrent Build calls from
// unrelated callers cannot contend on one shared mutex.
func defaultPlanBuilder() *PlanBuilder {
	return NewPlanBuilder(nil)
}

// Build freezes operations into an ExecutionPlan.
//
// Every operation's IsIdempotent is consulted exactly once, in order; the
// plan's aggregate flag is their logical AND. For each operation the
// builder decides eager (Build called now, its Query frozen as the step)
// or deferred (the Operation reference is stored, Build called once per
// attempt at iteration time) via the resolver, keyed by the operation's
// concrete type.
//
// If any eager Build or any IsIdempotent call fails, the error is returned
// immediately and no later operation is touched at all.
func Build(operations ...Operation) (*ExecutionPlan, error) {
	return defaultPlanBuilder().Build(operations...)
}

func (b *PlanBuilder) Build(operations ...Operation) (*ExecutionPlan, error) {
	if len(operations) == 0 {
		return nil, ErrEmptyPlan
	}

	plan := &ExecutionPlan{
		steps:      make([]step, 0, len(operations)),
		idempotent: true,
	}

	for i, op := range operations {
		idempotent, err := op.IsIdempotent()
		if err != nil {
			return nil, fmt.Errorf("operation %d: checking idempotency: %w", i, err)
		}
		if !idempotent {
			plan.idempotent = false
		}

		if b.resolver.IsDeferred(op) {
			plan.steps = append(plan.steps, deferredStep{op: op})
			continue
		}

		q, err := op.Build()
		if err != nil {
			return nil, fmt.Errorf("operation %d: building query: %w", i, err)
		}
		plan.steps = append(plan.steps, eagerStep{query: q})
	}

	return plan, nil
}

// CachingDeferredBuildResolver decides deferred-vs-eager once per concrete
// Operation type and caches the answer, since the decision is a type-level
// property (a DeferredOperation marker), not an instance-level one. Safe
// for concurrent use.
type CachingDeferredBuildResolver struct {
	mu    sync.Mutex
	cache map[reflect.Type]bool
}

// NewCachingDeferredBuildResolver constructs an empty resolver cache.
func NewCachingDeferredBuildResolver() *CachingDeferredBuildResolver {
	return &CachingDeferredBuildResolver{cache: make(map[reflect.Type]bool)}
}

func (r *CachingDeferredBuildResolver) IsDeferred(op Operation) bool {
	t := reflect.TypeOf(op)

	r.mu.Lock()
	defer r.mu.Unlock()

	if deferred, ok := r.cache[t]; ok {
		return deferred
	}

	deferred := false
	if marker, ok := op.(DeferredOperation); ok {
		deferred = marker.DeferredBuild()
	}
	r.cache[t] = deferred
	return deferred
}
