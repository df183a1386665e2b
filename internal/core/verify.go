package core

import "fmt"

// verification is one call made inside a verification block, with the replayed calls it matched.
type verification struct {
	inv           Invocation
	args          *arguments
	matchInstance bool
	customMessage string
	cause         *CallSite
	// indices into the replay records
	matched     []int
	expectation *Expectation
}

func (v *verification) describe() string {
	return v.args.describe(v.inv)
}

func (v *verification) failure(kind error, message string) *Failure {
	return &Failure{
		Kind:          kind,
		Message:       message,
		CustomMessage: v.customMessage,
		Cause:         v.cause,
		verification:  true,
	}
}

// countFailure checks a match count against bounds, nil when they hold.
func (v *verification) countFailure(count, minimum, maximum int) *Failure {
	if count == 0 && minimum == 1 {
		return v.failure(ErrMissingInvocation, "Missing invocation of:\n"+v.describe())
	}

	kind, msg := verifyCount(count, minimum, maximum, v.describe())
	if kind == nil {
		return nil
	}

	return v.failure(kind, msg)
}

// verifyingPhase is implemented by the unordered and ordered verification phases.
type verifyingPhase interface {
	phase
	applyBounds()
	base() *verificationPhase
	end() *Failure
	unverified()
}

// verificationPhase holds what both verification modes share. A failing verification is held as
// pending until the next verification call or the end of the block, so that count constraints
// given afterwards can still change the outcome.
type verificationPhase struct {
	testOnlyPhase

	records  []*replayRecord
	current  *verification
	pending  *Failure
	verified []*verification
	full     bool
	targets  []any
}

func newVerificationPhase(exec *Execution, records []*replayRecord, iterations int) verificationPhase {
	return verificationPhase{
		testOnlyPhase: testOnlyPhase{exec: exec, iterations: iterations},
		records:       records,
	}
}

func (p *verificationPhase) base() *verificationPhase {
	return p
}

// begin raises any pending failure and starts a verification for the call.
func (p *verificationPhase) begin(inv Invocation) *verification {
	p.commitPending()

	v := &verification{
		inv:           inv,
		args:          newArguments(inv, p.takeMatchers()),
		matchInstance: p.takeMatchInstance(inv.Instance),
		cause:         captureCallSite("verification made"),
	}

	p.current = v
	p.bounds = bounds{min: 1, max: Unbounded}
	p.verified = append(p.verified, v)

	return v
}

func (p *verificationPhase) commitPending() {
	if p.pending == nil {
		return
	}

	p.exec.fail(p.pending)
	p.pending = nil
}

func (p *verificationPhase) defaults(v *verification) dispatch {
	if v.expectation == nil {
		return dispatch{inv: v.inv, values: zeroValues(v.inv.outputTypes())}
	}

	return dispatch{inv: v.inv, values: p.exec.defaultOutputs(v.expectation, v.inv)}
}

// endBase finishes the block: a pending failure first, then the full-verification check.
func (p *verificationPhase) endBase() *Failure {
	if p.pending != nil {
		failure := p.pending
		p.pending = nil

		return failure
	}

	if !p.full {
		return nil
	}

	for _, rec := range p.records {
		if rec.verified || rec.expectation.constraints.min > 0 {
			continue
		}

		if len(p.targets) > 0 && !p.isTarget(rec) {
			continue
		}

		return &Failure{
			Kind:         ErrUnexpectedInvocation,
			Message:      "Unexpected invocation of:\n" + rec.inv.String(),
			Cause:        rec.expectation.cause,
			verification: true,
		}
	}

	return nil
}

// handlerTargets returns the replayed calls a ForEach handler runs over.
func (p *verificationPhase) handlerTargets() []*replayRecord {
	v := p.verification()
	if p.pending != nil {
		return nil
	}

	targets := make([]*replayRecord, len(v.matched))
	for i, index := range v.matched {
		targets[i] = p.records[index]
	}

	return targets
}

// isTarget reports whether an unverified call falls under the full-verification targets: a type
// identifier naming its type, or a mock instance that is, or stands for, its receiver.
func (p *verificationPhase) isTarget(rec *replayRecord) bool {
	state := p.exec.state

	for _, target := range p.targets {
		if typeID, ok := target.(string); ok {
			if typeID == rec.inv.Type {
				return true
			}

			continue
		}

		if rec.inv.Instance != nil && sameInstance(target, rec.inv.Instance) {
			return true
		}

		if rec.inv.Instance != nil && rec.expectation.matchInstance {
			continue
		}

		if typeID, ok := state.mockType(target); ok && typeID == rec.inv.Type {
			return true
		}
	}

	return false
}

func (p *verificationPhase) matches(v *verification, rec *replayRecord) bool {
	if !v.inv.sameSite(rec.inv) {
		return false
	}

	state := p.exec.state

	if v.matchInstance || rec.expectation.matchInstance || state.matchesOnInstance(v.inv.Type) {
		if !state.instances.equivalent(v.inv.Instance, rec.inv.Instance) {
			return false
		}
	}

	return v.args.match(rec.inv, &state.instances) == ""
}

func (p *verificationPhase) message(msg string) {
	v := p.verification()
	v.customMessage = msg

	if p.pending != nil {
		p.pending.CustomMessage = msg
	}
}

func (p *verificationPhase) verification() *verification {
	if p.current == nil {
		panic(configurationError("Missing invocation to mocked type at this point"))
	}

	return p.current
}

// unorderedVerification matches each verification against every replayed call not yet claimed
// by an earlier verification of the block.
type unorderedVerification struct {
	verificationPhase

	consumed map[*replayRecord]bool
}

func newUnorderedVerification(exec *Execution, records []*replayRecord, iterations int) *unorderedVerification {
	return &unorderedVerification{
		verificationPhase: newVerificationPhase(exec, records, iterations),
		consumed:          make(map[*replayRecord]bool),
	}
}

func (p *unorderedVerification) applyBounds() {
	v := p.verification()
	factor := p.multiplier()
	p.pending = v.countFailure(len(v.matched), scaleBound(p.bounds.min, factor), scaleBound(p.bounds.max, factor))
}

func (p *unorderedVerification) end() *Failure {
	return p.endBase()
}

func (p *unorderedVerification) handle(inv Invocation, _ ExecutionMode) dispatch {
	v := p.begin(inv)

	for i, rec := range p.records {
		if p.consumed[rec] || !p.matches(v, rec) {
			continue
		}

		p.consumed[rec] = true
		rec.verified = true
		v.matched = append(v.matched, i)
	}

	switch {
	case len(v.matched) == 0:
		p.pending = v.countFailure(0, 1, Unbounded)
	case p.iterations > 1:
		v.expectation = p.records[v.matched[0]].expectation
		p.pending = v.countFailure(len(v.matched), p.iterations, p.iterations)
	default:
		v.expectation = p.records[v.matched[0]].expectation
	}

	return p.defaults(v)
}

func (p *unorderedVerification) unverified() {
	panic(configurationError("Unverified() is only valid in an ordered verification block"))
}

// describeTargets renders full-verification targets for trace output.
func describeTargets(targets []any) string {
	if len(targets) == 0 {
		return "all mocks"
	}

	parts := make([]string, len(targets))
	for i, target := range targets {
		if typeID, ok := target.(string); ok {
			parts[i] = typeID

			continue
		}

		parts[i] = objectIdentity(target)
	}

	return fmt.Sprint(parts)
}
