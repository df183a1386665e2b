// Package replaymock is a record/replay/verify mocking library.
//
// A test records the calls it expects, replays the code under test against them, and optionally
// verifies what happened afterwards:
//
//	s := replaymock.New(t)
//	store := NewStoreMock(s)
//
//	replaymock.Record(s, func(r *replaymock.Recorder) {
//	    store.Get("user/1")
//	    r.Returns("ann", nil)
//	})
//
//	greet(store, "user/1")
//
//	replaymock.Verify(s, func(v *replaymock.Verifier) {
//	    store.Put(replaymock.Any[string](s), "seen")
//	    v.Times(1)
//	})
//
// This is the public API entry point. Implementation lives in internal/core.
package replaymock

import (
	"reflect"

	"github.com/toejough/replaymock/internal/core"
)

// Unbounded is the MaxTimes value meaning "any number".
const Unbounded = core.Unbounded

// Failure kinds, matched with errors.Is.
var (
	ErrArgumentMismatch     = core.ErrArgumentMismatch
	ErrConfiguration        = core.ErrConfiguration
	ErrMissingInvocation    = core.ErrMissingInvocation
	ErrUnexpectedInvocation = core.ErrUnexpectedInvocation
	ErrVerificationCount    = core.ErrVerificationCount
)

// CallContext describes the call a delegate or ForEach handler runs for.
type CallContext = core.CallContext

// CallSite is the stack where an expectation was recorded or a verification made.
type CallSite = core.CallSite

// CascadeFactory builds a mock of a registered output type for a session.
type CascadeFactory = core.CascadeFactory

// Failure is the error every mocking failure is reported as.
type Failure = core.Failure

// Matcher defines the interface for flexible argument matching.
type Matcher = core.Matcher

// Mock is the handle a mock type embeds to route its methods into a Session.
type Mock = core.Mock

// MockOption configures a mock.
type MockOption = core.MockOption

// Option configures a Session.
type Option = core.Option

// Session is one test's record/replay session.
type Session = core.Execution

// TestReporter is the minimal interface replaymock needs from test frameworks.
type TestReporter = core.TestReporter

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	return core.AsFailure(err)
}

// Constructor returns a seam standing in for a constructor of typeName.
func Constructor[F any](s *Session, typeName string) F {
	return core.Constructor[F](s, typeName)
}

// FailDeferred holds failures until the end of the phase or the test. It is the default.
func FailDeferred() Option {
	return core.FailDeferred()
}

// FailImmediately makes the call that detects a failure panic with it.
func FailImmediately() Option {
	return core.FailImmediately()
}

// Func returns a seam standing in for the package function name, written "pkg.Name".
func Func[F any](s *Session, name string) F {
	return core.Func[F](s, name)
}

// MatchValue checks if actual matches expected.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// New starts a session for t in the record phase. When t is a *testing.T, the session is ended
// and checked at test cleanup.
func New(t TestReporter, opts ...Option) *Session {
	return core.NewExecution(t, opts...)
}

// NewMock registers self, a mock of interface I, with s.
func NewMock[I any](s *Session, self any, opts ...MockOption) *Mock {
	return core.NewMock[I](s, self, opts...)
}

// NoCascade disables cascaded mocks for the session.
func NoCascade() Option {
	return core.NoCascade()
}

// NonStrictMock makes every call on the mock non-strict.
func NonStrictMock() MockOption {
	return core.NonStrictMock()
}

// Out returns output i of a seam call as T.
func Out[T any](values []any, i int) T {
	return core.Out[T](values, i)
}

// PartialFunc is Func backed by the real function, which runs for calls no expectation claims.
func PartialFunc[F any](s *Session, name string, impl F) F {
	return core.PartialFunc(s, name, impl)
}

// Real backs the mock with a real implementation.
func Real(impl any) MockOption {
	return core.Real(impl)
}

// RegisterCascade makes factory the source of mocks returned for unconfigured outputs of type T.
// Generated mocks call it from an init function.
func RegisterCascade[T any](factory func(s *Session) T) {
	core.RegisterCascade(reflect.TypeFor[T](), func(s *core.Execution) any {
		return factory(s)
	})
}

// Trace logs phase transitions and every intercepted call through t.Logf.
func Trace() Option {
	return core.Trace()
}

// TypeName overrides the type identifier used in matching and failure messages.
func TypeName(name string) MockOption {
	return core.TypeName(name)
}

// Undeclared keeps the mock out of the count of declared mocks per type.
func Undeclared() MockOption {
	return core.Undeclared()
}

// WithState continues the expectations and mock registrations of a previous session.
func WithState(prev *Session) Option {
	return core.WithState(prev)
}
