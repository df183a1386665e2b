package core

// orderedVerification walks the replayed calls with a cursor. Calls skipped over are left behind,
// which is an error only once Unverified() has fixed their position.
type orderedVerification struct {
	verificationPhase

	cursor     int
	step       int
	leftBehind bool
	fixed      bool
	last       *verification
}

func newOrderedVerification(exec *Execution, records []*replayRecord, iterations int) *orderedVerification {
	return &orderedVerification{
		verificationPhase: newVerificationPhase(exec, records, iterations),
		step:              1,
	}
}

// applyBounds extends the last match over the consecutive replayed calls that also match.
func (p *orderedVerification) applyBounds() {
	v := p.verification()
	minimum, maximum := p.bounds.min, p.bounds.max

	if len(v.matched) == 0 {
		p.pending = v.countFailure(0, minimum, maximum)

		return
	}

	count := 1

	for p.cursor < len(p.records) {
		rec := p.records[p.cursor]
		if !p.matches(v, rec) {
			break
		}

		count++

		if maximum >= 0 && count > maximum {
			if p.iterations <= 1 {
				p.pending = v.failure(ErrUnexpectedInvocation, "Unexpected invocation of:\n"+rec.inv.String())

				return
			}

			break
		}

		rec.verified = true
		v.matched = append(v.matched, p.cursor)
		p.cursor++
	}

	if count < minimum {
		p.pending = v.countFailure(count, minimum, maximum)

		return
	}

	if maximum >= 0 {
		total := 0

		for _, rec := range p.records {
			if p.matches(v, rec) {
				total++
			}
		}

		if limit := maximum * p.multiplier(); total > limit {
			p.pending = v.countFailure(total, 0, limit)

			return
		}
	}

	p.pending = nil
}

func (p *orderedVerification) end() *Failure {
	if p.pending != nil {
		return p.endBase()
	}

	if p.fixed && p.step > 0 && p.cursor < len(p.records) && p.last != nil {
		return p.last.failure(ErrUnexpectedInvocation, "Unexpected invocations after "+p.last.describe())
	}

	if failure := p.repeatIterations(); failure != nil {
		return failure
	}

	return p.endBase()
}

// find looks for the verification from the cursor on, in the current scan direction.
func (p *orderedVerification) find(v *verification) {
	i := p.cursor

	for i >= 0 && i < len(p.records) {
		rec := p.records[i]
		i += p.step

		if p.matches(v, rec) {
			rec.verified = true
			v.matched = []int{i - p.step}
			v.expectation = rec.expectation

			i += 1 - p.step
			p.step = 1
			p.cursor = i
			p.last = v

			return
		}

		if !p.fixed {
			p.leftBehind = true
		} else if p.step > 0 {
			p.exec.fail(v.failure(ErrUnexpectedInvocation, "Unexpected invocation of:\n"+rec.inv.String()))
			p.cursor = i

			return
		}
	}

	p.pending = v.countFailure(0, 1, Unbounded)
}

func (p *orderedVerification) handle(inv Invocation, _ ExecutionMode) dispatch {
	v := p.begin(inv)
	p.find(v)

	return p.defaults(v)
}

// repeatIterations checks the remaining passes of a repeated block by verifying its calls again.
func (p *orderedVerification) repeatIterations() *Failure {
	firstPass := p.verified

	for range p.iterations - 1 {
		for _, done := range firstPass {
			again := &verification{
				inv:           done.inv,
				args:          done.args,
				matchInstance: done.matchInstance,
				customMessage: done.customMessage,
				cause:         done.cause,
			}

			p.find(again)

			if p.pending != nil {
				failure := p.pending
				p.pending = nil

				return failure
			}

			if p.exec.failure != nil {
				return nil
			}
		}
	}

	return nil
}

// unverified fixes the position of calls not verified so far: none may precede the verified ones,
// and later verifications scan backward from the end.
func (p *orderedVerification) unverified() {
	p.commitPending()

	if p.leftBehind {
		what := "the first verified invocation"
		if p.last != nil {
			what = p.last.describe()
		}

		p.exec.fail(&Failure{
			Kind:         ErrUnexpectedInvocation,
			Message:      "Unexpected invocations before " + what,
			Cause:        captureCallSite("unverified invocations fixed"),
			verification: true,
		})

		return
	}

	if p.cursor >= len(p.records) {
		p.exec.fail(&Failure{
			Kind:         ErrMissingInvocation,
			Message:      "No unverified invocations left",
			Cause:        captureCallSite("unverified invocations fixed"),
			verification: true,
		})

		return
	}

	p.cursor = len(p.records) - 1
	p.step = -1
	p.fixed = true
}
