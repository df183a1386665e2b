package core

// phase handles intercepted calls. It is called with the dispatch lock held.
type phase interface {
	handle(inv Invocation, mode ExecutionMode) dispatch
}

// dispatch is what a phase decided for one call. The outputs are produced once the dispatch lock
// has been released.
type dispatch struct {
	inv         Invocation
	expectation *Expectation
	result      *result
	values      []any
	proceed     bool
	// limits snapshots the expectation's constraints when it matched, reported to delegates.
	limits constraints
}

// bounds holds the invocation-count bounds configured on the current call of a record or verify
// block, before any iteration multiplier is applied.
type bounds struct {
	min    int
	max    int
	maxSet bool
}

func (b *bounds) maxTimes(n int) {
	b.max = n
	b.maxSet = true
	b.min = min(b.min, n)
}

func (b *bounds) minTimes(n int) {
	b.min = n

	if !b.maxSet {
		b.max = Unbounded
	}
}

func (b *bounds) times(n int) {
	b.min = n
	b.max = n
	b.maxSet = true
}

// testOnlyPhase holds what record and verification blocks share: matchers staged for the next
// call, the instance the next call must match, and the block's iteration count.
type testOnlyPhase struct {
	exec         *Execution
	matchers     []Matcher
	nextInstance any
	iterations   int
	bounds       bounds
}

// multiplier is the factor applied to count bounds in repeated blocks.
func (p *testOnlyPhase) multiplier() int {
	if p.iterations <= 1 {
		return 1
	}

	return p.iterations
}

func (p *testOnlyPhase) testOnly() *testOnlyPhase {
	return p
}

func (p *testOnlyPhase) stage(matcher Matcher) {
	p.matchers = append(p.matchers, matcher)
}

func (p *testOnlyPhase) takeMatchers() []Matcher {
	matchers := p.matchers
	p.matchers = nil

	return matchers
}

// takeMatchInstance reports whether the call targets the instance marked by OnInstance or a
// cascade, consuming the mark when it does.
func (p *testOnlyPhase) takeMatchInstance(instance any) bool {
	if p.nextInstance == nil || !sameInstance(p.nextInstance, instance) {
		return false
	}

	p.nextInstance = nil

	return true
}

func scaleBound(bound, factor int) int {
	if bound < 0 {
		return Unbounded
	}

	return bound * factor
}
