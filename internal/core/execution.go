// Package core implements the record/replay/verify engine behind replaymock: expectations recorded
// against mock seams, matched while the code under test runs, and verified afterwards.
package core

import (
	"errors"
	"iter"
	"reflect"
	"slices"
)

// ExecutionMode tells the engine whether a real implementation stands behind the call.
type ExecutionMode int

// Execution modes.
const (
	Regular ExecutionMode = iota
	// WithRealImpl marks calls on partial mocks: unmatched or over-bound calls proceed to the real
	// implementation instead of failing.
	WithRealImpl
)

// Outcome is what an intercepted call should do: return Values, or run the real implementation
// when Proceed is set.
type Outcome struct {
	Values  []any
	Proceed bool
}

// Option configures an Execution.
type Option func(*Execution)

// FailImmediately makes the intercepted call that detects a failure panic with it, instead of
// holding it until the end of the phase.
func FailImmediately() Option {
	return func(e *Execution) {
		e.failImmediately = true
	}
}

// FailDeferred holds failures until the end of the phase or the test, the default. Mocked calls
// from goroutines spawned by the code under test need it.
func FailDeferred() Option {
	return func(e *Execution) {
		e.failImmediately = false
	}
}

// NoCascade disables cascaded mocks: unconfigured outputs are always zero values.
func NoCascade() Option {
	return func(e *Execution) {
		e.noCascade = true
	}
}

// Trace logs phase transitions and every intercepted call through the reporter's Logf.
func Trace() Option {
	return func(e *Execution) {
		e.trace = true
	}
}

// WithState continues the expectations, mock registrations and strict cursor of a previous
// execution, for suites that record once and replay across several tests.
func WithState(prev *Execution) Option {
	return func(e *Execution) {
		e.state = prev.state
	}
}

// Execution is one test's record/replay session. It starts in the record phase.
type Execution struct {
	t     TestReporter
	state *executionState

	phase     phase
	recording *recordPhase
	replay    *replayPhase
	verifying verifyingPhase

	failure  *Failure
	reported bool
	ended    bool

	failImmediately bool
	noCascade       bool
	trace           bool
}

// NewExecution starts a session in the record phase. When t supports Cleanup, the session is
// ended at test cleanup and any failure not yet reported is reported then.
func NewExecution(t TestReporter, opts ...Option) *Execution {
	exec := &Execution{t: t}

	for _, opt := range opts {
		opt(exec)
	}

	if exec.state == nil {
		exec.state = newExecutionState()
	}

	exec.recording = newRecordPhase(exec, false, 1)
	exec.phase = exec.recording

	if registrar, ok := t.(cleanupRegistrar); ok {
		registrar.Cleanup(exec.cleanup)
	}

	return exec
}

// BeginRecording opens a record block. Opened during replay, the next replay resumes the strict
// expectations where this one stopped.
func (e *Execution) BeginRecording(nonStrict bool, iterations int) {
	withLock(func() {
		e.finishVerification()

		if e.replay != nil && e.phase == e.replay {
			e.state.lastStrictIndex = e.replay.cursor
		}

		e.recording = newRecordPhase(e, nonStrict, iterations)
		e.phase = e.recording
	})

	e.tracef("record block opened (non-strict: %t, iterations: %d)", nonStrict, iterations)
}

// Delegate answers matching calls with fn, which has the method's signature and may take a
// *CallContext first.
func (e *Execution) Delegate(fn any) {
	withLock(func() {
		e.recordingPhase().expectation().addDelegate(fn)
	})
}

// End finishes the session: it closes any open block, checks the replay, and returns the first
// failure of the session unless it was already reported. Later calls return nil.
func (e *Execution) End() *Failure {
	var failure *Failure

	withLock(func() {
		if e.ended {
			return
		}

		e.ended = true

		e.finishVerification()
		e.switchToReplay()
		e.fail(e.replay.end())
		e.state.lastStrictIndex = e.replay.cursor
		e.state.closeDeferred()

		failure = e.takeFailure()
	})

	e.tracef("session ended")

	return failure
}

// EndRecording switches from the record phase to replay.
func (e *Execution) EndRecording() {
	withLock(e.switchToReplay)
	e.tracef("replay started")
}

// EndVerifications closes the verification block and returns the first unreported failure.
func (e *Execution) EndVerifications() *Failure {
	var failure *Failure

	withLock(func() {
		e.finishVerification()
		failure = e.takeFailure()
	})

	e.tracef("verification block closed")

	return failure
}

// Err returns the first failure of the session, reported or not.
func (e *Execution) Err() error {
	var err error

	withLock(func() {
		if e.failure != nil {
			err = e.failure
		}
	})

	return err
}

// Fails makes the call return zero values and err as its last output.
func (e *Execution) Fails(err error) {
	withLock(func() {
		e.recordingPhase().expectation().addFailure(err)
	})
}

// ForEach runs handler for each replayed call matched by the current verification. The handler
// has the method's signature and may take a *CallContext first; Count is the call's position.
func (e *Execution) ForEach(handler any) {
	var (
		targets  []*replayRecord
		contexts []*CallContext
		fn       reflect.Value
		withCtx  bool
	)

	withLock(func() {
		verifying := e.verificationPhase()
		v := verifying.base().verification()

		fn = reflect.ValueOf(handler)
		if fn.Kind() != reflect.Func {
			panic(configurationError("handler for %s must be a func, got %T", v.inv.Site(), handler))
		}

		var ok bool

		withCtx, ok = paramsCompatible(fn.Type(), v.inv.Signature)
		if !ok {
			panic(configurationError("handler of type %s does not match %s", fn.Type(), v.inv.Site()))
		}

		targets = verifying.base().handlerTargets()
		for i, rec := range targets {
			contexts = append(contexts, &CallContext{
				Instance: rec.inv.Instance,
				Args:     rec.inv.Args,
				Count:    i + 1,
				MinTimes: rec.expectation.constraints.min,
				MaxTimes: rec.expectation.constraints.max,
			})
		}
	})

	for i, rec := range targets {
		callReflect(fn, withCtx, contexts[i], rec.inv.Args)
	}
}

// MaxTimes bounds the current call's invocation count from above.
func (e *Execution) MaxTimes(n int) {
	e.withBounds(func(b *bounds) { b.maxTimes(n) })
}

// Message prefixes failures about the current call with msg.
func (e *Execution) Message(msg string) {
	withLock(func() {
		if e.phase == e.recording {
			e.recording.expectation().customMessage = msg

			return
		}

		e.verificationPhase().base().message(msg)
	})
}

// MinTimes bounds the current call's invocation count from below.
func (e *Execution) MinTimes(n int) {
	e.withBounds(func(b *bounds) { b.minTimes(n) })
}

// NotStrict moves the current expectation to the non-strict list.
func (e *Execution) NotStrict() {
	withLock(func() {
		e.recordingPhase().makeNonStrict()
	})
}

// OnInstance makes the next recorded or verified call match only calls on mock.
func (e *Execution) OnInstance(mock any) {
	withLock(func() {
		e.testOnlyPhase().nextInstance = mock
	})
}

// Panics makes the call panic with value.
func (e *Execution) Panics(value any) {
	withLock(func() {
		e.recordingPhase().expectation().addPanic(value)
	})
}

// RecordOrReplay is the interception entry point every seam calls.
func (e *Execution) RecordOrReplay(inv Invocation, mode ExecutionMode) Outcome {
	var (
		decided dispatch
		raised  *Failure
		handler string
	)

	withLock(func() {
		handler = phaseName(e.phase)
		hadFailure := e.failure != nil
		decided = e.phase.handle(inv, mode)

		if e.failImmediately && !hadFailure && e.failure != nil {
			raised = e.failure
			e.reported = true
		}
	})

	if e.trace {
		e.tracef("%s: %s", handler, inv.String())
	}

	if raised != nil {
		panic(raised)
	}

	return e.produce(decided)
}

// Replay switches to the replay phase, for tests that record nothing.
func (e *Execution) Replay() {
	e.EndRecording()
}

// Report fails the test with failure through the reporter. A nil failure reports nothing.
func (e *Execution) Report(failure *Failure) {
	if failure == nil {
		return
	}

	e.t.Helper()
	e.t.Fatalf("%v", failure)
}

// Returns configures the outputs of one call.
func (e *Execution) Returns(values ...any) {
	withLock(func() {
		e.recordingPhase().expectation().addReturn(values)
	})
}

// ReturnsEach configures consecutive single-output results.
func (e *Execution) ReturnsEach(values ...any) {
	withLock(func() {
		e.recordingPhase().expectation().addReturnEach(values)
	})
}

// ReturnsFrom answers each call with the next value of seq.
func (e *Execution) ReturnsFrom(seq iter.Seq[any]) {
	withLock(func() {
		e.recordingPhase().expectation().addDeferred(seq)
	})
}

// Stage queues an argument matcher for the next recorded or verified call.
func (e *Execution) Stage(matcher Matcher) {
	withLock(func() {
		e.testOnlyPhase().stage(matcher)
	})
}

// StartVerifications opens a verification block over the calls of the latest replay. Opened
// while recording, it switches to replay first.
func (e *Execution) StartVerifications(inOrder bool, iterations int, full bool, targets []any) {
	withLock(func() {
		e.finishVerification()
		e.switchToReplay()

		var verifying verifyingPhase
		if inOrder {
			verifying = newOrderedVerification(e, e.replay.records, iterations)
		} else {
			verifying = newUnorderedVerification(e, e.replay.records, iterations)
		}

		verifying.base().full = full
		verifying.base().targets = targets

		e.verifying = verifying
		e.phase = verifying
	})

	if full {
		e.tracef("verification block opened (in order: %t, full over %s)", inOrder, describeTargets(targets))
	} else {
		e.tracef("verification block opened (in order: %t)", inOrder)
	}
}

// Times requires exactly n matching calls.
func (e *Execution) Times(n int) {
	e.withBounds(func(b *bounds) { b.times(n) })
}

// Unverified fixes the position of the calls not verified so far in an ordered block.
func (e *Execution) Unverified() {
	withLock(func() {
		e.verificationPhase().unverified()
	})
}

func (e *Execution) cleanup() {
	e.Report(e.End())
}

// defaultOutputs returns the outputs of a call with no configured result: zero values, or
// cascaded mocks for output types with a registered factory. A cascaded mock is cached per
// expectation and becomes the next instance to match while recording or verifying. Constructors
// produce a fresh mock per call; the first one is kept to correlate with its replay counterparts.
func (e *Execution) defaultOutputs(exp *Expectation, inv Invocation) []any {
	outs := inv.outputTypes()
	values := zeroValues(outs)

	if e.noCascade {
		return values
	}

	for i, out := range outs {
		factory := cascadeFactory(out)
		if factory == nil {
			continue
		}

		mock, cached := exp.cascaded[i]
		if !cached || inv.Constructor {
			mock = factory(e)
		}

		if !cached {
			if exp.cascaded == nil {
				exp.cascaded = make(map[int]any)
			}

			exp.cascaded[i] = mock
		}

		values[i] = mock

		if testOnly, ok := e.phase.(interface{ testOnly() *testOnlyPhase }); ok && !inv.Constructor {
			testOnly.testOnly().nextInstance = mock
		}
	}

	return values
}

// fail records the session's failure. The first one wins.
func (e *Execution) fail(failure *Failure) {
	if failure == nil || e.failure != nil {
		return
	}

	e.failure = failure
}

func (e *Execution) finishVerification() {
	if e.verifying == nil {
		return
	}

	e.verifying.base().commitPending()
	e.fail(e.verifying.end())
	e.verifying = nil
	e.phase = e.replay
}

func (e *Execution) produce(decided dispatch) Outcome {
	if decided.proceed {
		return Outcome{Proceed: true}
	}

	chosen := decided.result
	if chosen == nil {
		return Outcome{Values: decided.values}
	}

	switch {
	case chosen.panics:
		panic(chosen.panicValue)
	case chosen.delegate.IsValid():
		return Outcome{Values: e.callDelegate(decided)}
	case chosen.deferred != nil:
		return Outcome{Values: e.pullDeferred(decided)}
	}

	return Outcome{Values: slices.Clone(chosen.values)}
}

func (e *Execution) produceFor(exp *Expectation, inv Invocation) dispatch {
	decided := dispatch{inv: inv, expectation: exp, limits: exp.constraints}

	if exp.results.empty() {
		decided.values = e.defaultOutputs(exp, inv)

		return decided
	}

	decided.result = exp.results.next()

	return decided
}

func (e *Execution) callDelegate(decided dispatch) []any {
	chosen := decided.result

	ctx := &CallContext{
		Instance: decided.inv.Instance,
		Args:     decided.inv.Args,
		Count:    decided.limits.count,
		MinTimes: decided.limits.min,
		MaxTimes: decided.limits.max,
	}

	values := callReflect(chosen.delegate, chosen.withCtx, ctx, decided.inv.Args)

	if chosen.withCtx && (ctx.MinTimes != decided.limits.min || ctx.MaxTimes != decided.limits.max) {
		withLock(func() {
			decided.expectation.constraints.setLimits(ctx.MinTimes, ctx.MaxTimes)
		})
	}

	return values
}

func (e *Execution) pullDeferred(decided dispatch) []any {
	value, ok := decided.result.deferred.next()
	if !ok {
		var values []any

		withLock(func() {
			values = e.defaultOutputs(decided.expectation, decided.inv)
		})

		return values
	}

	outs := decided.inv.outputTypes()

	if len(outs) == 1 {
		converted, fits := coerce(value, outs[0])
		if !fits {
			panic(configurationError("deferred value %s does not fit %s", formatValue(value), decided.inv.Site()))
		}

		return []any{converted}
	}

	values, isSlice := value.([]any)
	if !isSlice || len(values) != len(outs) {
		panic(configurationError("deferred value %s does not fit the %d outputs of %s",
			formatValue(value), len(outs), decided.inv.Site()))
	}

	return decided.expectation.coerceAll(values, outs)
}

func (e *Execution) recordingPhase() *recordPhase {
	if e.phase != e.recording || e.recording == nil {
		panic(configurationError("no current invocation"))
	}

	return e.recording
}

func (e *Execution) switchToReplay() {
	if e.replay != nil && e.phase != e.recording {
		return
	}

	e.replay = newReplayPhase(e)
	e.phase = e.replay
}

// takeFailure returns the session failure the first time it is asked for.
func (e *Execution) takeFailure() *Failure {
	if e.failure == nil || e.reported {
		return nil
	}

	e.reported = true

	return e.failure
}

func (e *Execution) testOnlyPhase() *testOnlyPhase {
	testOnly, ok := e.phase.(interface{ testOnly() *testOnlyPhase })
	if !ok {
		panic(configurationError("no current invocation"))
	}

	return testOnly.testOnly()
}

func (e *Execution) tracef(format string, args ...any) {
	if !e.trace {
		return
	}

	if log, ok := e.t.(logger); ok {
		log.Logf(format, args...)
	}
}

func (e *Execution) verificationPhase() verifyingPhase {
	if e.verifying == nil || e.phase != e.verifying {
		panic(configurationError("no current invocation"))
	}

	return e.verifying
}

// withBounds applies a count constraint to the current call of a record or verification block.
func (e *Execution) withBounds(configure func(*bounds)) {
	withLock(func() {
		if e.phase == e.recording {
			e.recording.expectation()
			configure(&e.recording.bounds)
			e.recording.applyBounds()

			return
		}

		verifying := e.verificationPhase()
		verifying.base().verification()
		configure(&verifying.base().bounds)
		verifying.applyBounds()
	})
}

// unexported variables.
var (
	//nolint:gochecknoglobals // one lock serializes dispatch across all sessions
	dispatchMu reentrantMutex
)

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	ok := errors.As(err, &failure)

	return failure, ok
}

// callReflect calls fn with args, preceded by ctx when withCtx is set, and returns its outputs.
func callReflect(fn reflect.Value, withCtx bool, ctx *CallContext, args []any) []any {
	fnType := fn.Type()
	offset := 0

	var in []reflect.Value

	if withCtx {
		in = append(in, reflect.ValueOf(ctx))
		offset = 1
	}

	in = append(in, reflectArgs(fnType, offset, args)...)

	var out []reflect.Value
	if fnType.IsVariadic() {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}

	values := make([]any, len(out))
	for i, value := range out {
		values[i] = value.Interface()
	}

	return values
}

func phaseName(current phase) string {
	switch current.(type) {
	case *recordPhase:
		return "record"
	case *replayPhase:
		return "replay"
	case *unorderedVerification:
		return "verify"
	case *orderedVerification:
		return "verify in order"
	}

	return "unknown"
}

// withLock runs fn holding the dispatch lock. Configuration panics raised by fn release it. Mocks
// called from matchers or Equal methods while a call is being matched re-enter the lock.
func withLock(fn func()) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()

	fn()
}
