package replaymock

import (
	"iter"

	"github.com/toejough/replaymock/match"
)

// BlockOption configures a Record or Verify block.
type BlockOption func(*blockConfig)

// Full makes a Verify block also require that every replayed call without a recorded minimum was
// verified. Targets, mock instances or type identifiers, limit the check to those mocks.
func Full(targets ...any) BlockOption {
	return func(c *blockConfig) {
		c.full = true
		c.targets = targets
	}
}

// InOrder makes a Verify block check the replayed calls in order.
func InOrder() BlockOption {
	return func(c *blockConfig) {
		c.inOrder = true
	}
}

// Iterations repeats the block n times: strict recorded calls replay n times over, non-strict
// bounds and verified counts scale by n.
func Iterations(n int) BlockOption {
	return func(c *blockConfig) {
		c.iterations = n
	}
}

// NonStrict records the block's calls as non-strict: any order, any number of times unless bounded.
func NonStrict() BlockOption {
	return func(c *blockConfig) {
		c.nonStrict = true
	}
}

// Recorder configures the call just recorded in a Record block.
type Recorder struct {
	s *Session
}

// Delegate answers the call with fn, which has the method's signature and may take a
// *CallContext first. Changes fn makes to the context's MinTimes and MaxTimes stick.
func (r *Recorder) Delegate(fn any) {
	r.s.Delegate(fn)
}

// Fails makes the call return zero values and err as its last output.
func (r *Recorder) Fails(err error) {
	r.s.Fails(err)
}

// MaxTimes bounds the call's count from above.
func (r *Recorder) MaxTimes(n int) {
	r.s.MaxTimes(n)
}

// Message prefixes failures about the call.
func (r *Recorder) Message(msg string) {
	r.s.Message(msg)
}

// MinTimes bounds the call's count from below.
func (r *Recorder) MinTimes(n int) {
	r.s.MinTimes(n)
}

// NotStrict makes the call non-strict.
func (r *Recorder) NotStrict() {
	r.s.NotStrict()
}

// Panics makes the call panic with value.
func (r *Recorder) Panics(value any) {
	r.s.Panics(value)
}

// Returns sets the outputs of one call. A single slice or sequence that does not fit the output is
// spread over consecutive calls.
func (r *Recorder) Returns(values ...any) {
	r.s.Returns(values...)
}

// ReturnsEach sets the output of consecutive calls, one value each.
func (r *Recorder) ReturnsEach(values ...any) {
	r.s.ReturnsEach(values...)
}

// ReturnsFrom answers each call with the next value of seq, pulled when the call happens.
func (r *Recorder) ReturnsFrom(seq iter.Seq[any]) {
	r.s.ReturnsFrom(seq)
}

// Times requires exactly n calls.
func (r *Recorder) Times(n int) {
	r.s.Times(n)
}

// Verifier configures the call just verified in a Verify block.
type Verifier struct {
	s *Session
}

// ForEach runs handler for each replayed call the verification matched.
func (v *Verifier) ForEach(handler any) {
	v.s.ForEach(handler)
}

// MaxTimes bounds the verified count from above.
func (v *Verifier) MaxTimes(n int) {
	v.s.MaxTimes(n)
}

// Message prefixes failures about the verification.
func (v *Verifier) Message(msg string) {
	v.s.Message(msg)
}

// MinTimes bounds the verified count from below.
func (v *Verifier) MinTimes(n int) {
	v.s.MinTimes(n)
}

// Times requires exactly n matching calls.
func (v *Verifier) Times(n int) {
	v.s.Times(n)
}

// Unverified fixes the position of the calls not verified so far, in an InOrder block.
func (v *Verifier) Unverified() {
	v.s.Unverified()
}

// Any stages a matcher accepting any value for the next argument and returns T's zero value.
func Any[T any](s *Session) T {
	return With[T](s, match.Any())
}

// End finishes the session and fails the test with its first unreported failure.
func End(s *Session) {
	s.Report(s.End())
}

// Err returns the first failure of the session, reported or not.
func Err(s *Session) error {
	return s.Err()
}

// OnInstance makes the next recorded or verified call on mock match only calls on that instance,
// and returns mock to make the call on.
func OnInstance[T any](s *Session, mock T) T {
	s.OnInstance(mock)

	return mock
}

// Record runs fn as a record block. The session replays once fn returns.
func Record(s *Session, fn func(r *Recorder), opts ...BlockOption) {
	config := newBlockConfig(opts)

	s.BeginRecording(config.nonStrict, config.iterations)
	fn(&Recorder{s: s})
	s.EndRecording()
}

// Replay switches to the replay phase without recording anything.
func Replay(s *Session) {
	s.Replay()
}

// Verify runs fn as a verification block over the calls replayed so far and fails the test when
// the block does not hold.
func Verify(s *Session, fn func(v *Verifier), opts ...BlockOption) {
	config := newBlockConfig(opts)

	s.StartVerifications(config.inOrder, config.iterations, config.full, config.targets)
	fn(&Verifier{s: s})
	s.Report(s.EndVerifications())
}

// With stages matcher for the next argument of a recorded or verified call and returns T's zero
// value to pass in its place. Gomega matchers work as well as those from package match.
func With[T any](s *Session, matcher Matcher) T {
	s.Stage(matcher)

	var zero T

	return zero
}

type blockConfig struct {
	nonStrict  bool
	inOrder    bool
	full       bool
	iterations int
	targets    []any
}

func newBlockConfig(opts []BlockOption) blockConfig {
	config := blockConfig{iterations: 1}
	for _, opt := range opts {
		opt(&config)
	}

	return config
}
