package core

// recordPhase turns intercepted calls into expectations.
type recordPhase struct {
	testOnlyPhase

	block   *recordBlock
	current *Expectation
}

func newRecordPhase(exec *Execution, nonStrict bool, iterations int) *recordPhase {
	if iterations < 1 {
		iterations = 1
	}

	return &recordPhase{
		testOnlyPhase: testOnlyPhase{exec: exec, iterations: iterations},
		block:         &recordBlock{nonStrict: nonStrict, iterations: iterations},
	}
}

func (p *recordPhase) handle(inv Invocation, _ ExecutionMode) dispatch {
	state := p.exec.state
	matchInstance := p.takeMatchInstance(inv.Instance)
	nonStrict := p.block.nonStrict || state.isNonStrictMock(inv)

	exp := newExpectation(inv, p.takeMatchers(), p.block, nonStrict, captureCallSite("expectation recorded"))
	exp.matchInstance = matchInstance

	if !nonStrict {
		state.addStrictMock(inv, matchInstance)
	}

	state.addExpectation(exp)

	p.current = exp
	p.bounds = bounds{min: exp.constraints.min, max: exp.constraints.max}

	return dispatch{inv: inv, expectation: exp, values: p.exec.defaultOutputs(exp, inv)}
}

func (p *recordPhase) expectation() *Expectation {
	if p.current == nil {
		panic(configurationError("Missing invocation to mocked type at this point"))
	}

	return p.current
}

// applyBounds writes the configured bounds, scaled for non-strict expectations of a repeated block.
func (p *recordPhase) applyBounds() {
	exp := p.expectation()

	factor := 1
	if exp.nonStrict {
		factor = p.multiplier()
	}

	exp.constraints.setLimits(scaleBound(p.bounds.min, factor), scaleBound(p.bounds.max, factor))
}

func (p *recordPhase) makeNonStrict() {
	exp := p.expectation()
	if exp.nonStrict {
		return
	}

	p.exec.state.makeNonStrict(exp)
	p.bounds = bounds{min: exp.constraints.min, max: exp.constraints.max}
}
