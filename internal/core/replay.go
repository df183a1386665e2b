package core

import "fmt"

// replayRecord is one call observed during replay, in arrival order.
type replayRecord struct {
	expectation *Expectation
	inv         Invocation
	verified    bool
}

// replayPhase matches calls against the recorded expectations: non-strict ones first, then the
// strict list through its cursor.
type replayPhase struct {
	exec    *Execution
	records []*replayRecord
	cursor  int
	passes  map[*recordBlock]int
}

func newReplayPhase(exec *Execution) *replayPhase {
	return &replayPhase{
		exec:   exec,
		cursor: exec.state.lastStrictIndex,
		passes: make(map[*recordBlock]int),
	}
}

func (p *replayPhase) handle(inv Invocation, mode ExecutionMode) dispatch {
	if p.exec.failure != nil {
		return dispatch{inv: inv, values: zeroValues(inv.outputTypes())}
	}

	state := p.exec.state

	if exp := state.findNonStrict(inv); exp != nil {
		return p.nonStrictCall(exp, inv, mode)
	}

	if !state.isStrictMock(inv) {
		exp := newExpectation(inv, nil, nil, true, nil)
		exp.matchInstance = inv.Instance != nil
		exp.proceeds = mode == WithRealImpl
		state.nonStrict = append(state.nonStrict, exp)

		return p.nonStrictCall(exp, inv, mode)
	}

	return p.strictCall(inv, mode)
}

// correlate maps the instance a recorded constructor produced while recording to the one it
// produces now, so expectations recorded on the former match calls on the latter.
func (p *replayPhase) correlate(decided dispatch) dispatch {
	exp := decided.expectation
	if !exp.invocation.Constructor || exp.block == nil {
		return decided
	}

	for i, recorded := range exp.cascaded {
		if i < len(decided.values) && decided.values[i] != nil && !sameInstance(recorded, decided.values[i]) {
			p.exec.state.instances.put(recorded, decided.values[i])
		}
	}

	return decided
}

func (p *replayPhase) current() *Expectation {
	strict := p.exec.state.strict
	if p.cursor >= len(strict) {
		return nil
	}

	return strict[p.cursor]
}

// end checks that every remaining strict expectation and every non-strict one reached its minimum.
func (p *replayPhase) end() *Failure {
	state := p.exec.state

	for _, exp := range state.strict[min(p.cursor, len(state.strict)):] {
		if exp.constraints.belowMin() {
			return exp.missingFailure()
		}
	}

	for _, exp := range state.nonStrict {
		if exp.constraints.belowMin() {
			return exp.missingFailure()
		}
	}

	return nil
}

func (p *replayPhase) fail(inv Invocation, failure *Failure) dispatch {
	p.exec.fail(failure)

	return dispatch{inv: inv, values: zeroValues(inv.outputTypes())}
}

// moveToNext advances the strict cursor. Leaving the last expectation of a repeated block with
// passes remaining rewinds to the block's first expectation and resets the block's counts.
func (p *replayPhase) moveToNext() {
	strict := p.exec.state.strict
	block := strict[p.cursor].block
	next := p.cursor + 1

	leavingBlock := next >= len(strict) || strict[next].block != block
	if block != nil && leavingBlock && p.passes[block]+1 < block.iterations {
		p.passes[block]++

		start := p.cursor
		for start > 0 && strict[start-1].block == block {
			start--
		}

		for _, exp := range strict[start:next] {
			exp.constraints.count = 0
		}

		p.cursor = start

		return
	}

	p.cursor = next
}

func (p *replayPhase) nonStrictCall(exp *Expectation, inv Invocation, mode ExecutionMode) dispatch {
	p.records = append(p.records, &replayRecord{expectation: exp, inv: inv})
	exp.constraints.increment()

	if exp.constraints.exceeded() {
		if mode == WithRealImpl {
			return dispatch{inv: inv, proceed: true}
		}

		_, msg := verifyCount(exp.constraints.count, exp.constraints.min, exp.constraints.max, inv.String())

		return p.fail(inv, exp.failure(ErrUnexpectedInvocation, msg))
	}

	if exp.proceeds {
		return dispatch{inv: inv, proceed: true}
	}

	return p.correlate(p.exec.produceFor(exp, inv))
}

//nolint:cyclop // cursor walk mirrors the strict matching rules one branch each
func (p *replayPhase) strictCall(inv Invocation, mode ExecutionMode) dispatch {
	state := p.exec.state

	for {
		exp := p.current()
		if exp == nil {
			if mode == WithRealImpl {
				return dispatch{inv: inv, proceed: true}
			}

			return p.fail(inv, &Failure{Kind: ErrUnexpectedInvocation, Message: "Unexpected invocation of:\n" + inv.String()})
		}

		if exp.invocation.sameSite(inv) && exp.instanceMatches(inv.Instance, &state.instances) {
			if msg := exp.args.match(inv, &state.instances); msg != "" {
				if exp.constraints.inRange() {
					p.moveToNext()

					continue
				}

				return p.fail(inv, exp.failure(ErrArgumentMismatch, msg))
			}

			recorded := exp.invocation.Instance
			if recorded != nil && !exp.invocation.Constructor && !sameInstance(recorded, inv.Instance) {
				state.instances.put(recorded, inv.Instance)
			}

			p.records = append(p.records, &replayRecord{expectation: exp, inv: inv})

			reachedMax := exp.constraints.increment()
			outcome := p.correlate(p.exec.produceFor(exp, inv))

			if reachedMax {
				p.moveToNext()
			}

			return outcome
		}

		if exp.constraints.inRange() {
			p.moveToNext()

			continue
		}

		if mode == WithRealImpl {
			return dispatch{inv: inv, proceed: true}
		}

		return p.fail(inv, exp.failure(ErrUnexpectedInvocation, fmt.Sprintf(
			"Unexpected invocation of:\n%s\non instance: %s\nwhen was expecting an invocation of:\n%s",
			inv.Site(), instanceText(inv.Instance), exp.describe())))
	}
}

func instanceText(instance any) string {
	if instance == nil {
		return "(none)"
	}

	return objectIdentity(instance)
}
