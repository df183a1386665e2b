package replaymock_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/replaymock"
	"github.com/toejough/replaymock/match"
)

//nolint:gochecknoinits // mirrors the registration generated mocks carry
func init() {
	replaymock.RegisterCascade(func(s *replaymock.Session) List {
		return newListMock(s, replaymock.Undeclared())
	})
}

type Calc interface {
	Add(a, b int) int
}

type Lists interface {
	Named(name string) List
}

type List interface {
	Size() int
}

type Service interface {
	Get(key string) string
	Foo()
	Bar()
}

type calcMock struct{ *replaymock.Mock }

func newCalcMock(s *replaymock.Session) *calcMock {
	mock := &calcMock{}
	mock.Mock = replaymock.NewMock[Calc](s, mock)

	return mock
}

func (m *calcMock) Add(a, b int) int {
	return replaymock.Out[int](m.Call("Add", a, b), 0)
}

type listMock struct{ *replaymock.Mock }

func newListMock(s *replaymock.Session, opts ...replaymock.MockOption) *listMock {
	mock := &listMock{}
	mock.Mock = replaymock.NewMock[List](s, mock, opts...)

	return mock
}

func (m *listMock) Size() int {
	return replaymock.Out[int](m.Call("Size"), 0)
}

type listsMock struct{ *replaymock.Mock }

func newListsMock(s *replaymock.Session) *listsMock {
	mock := &listsMock{}
	mock.Mock = replaymock.NewMock[Lists](s, mock)

	return mock
}

func (m *listsMock) Named(name string) List {
	return replaymock.Out[List](m.Call("Named", name), 0)
}

type serviceMock struct{ *replaymock.Mock }

func newServiceMock(s *replaymock.Session) *serviceMock {
	mock := &serviceMock{}
	mock.Mock = replaymock.NewMock[Service](s, mock)

	return mock
}

func (m *serviceMock) Bar() {
	m.Call("Bar")
}

func (m *serviceMock) Foo() {
	m.Call("Foo")
}

func (m *serviceMock) Get(key string) string {
	return replaymock.Out[string](m.Call("Get", key), 0)
}

// fakeT records failures instead of failing the test.
type fakeT struct {
	mu       sync.Mutex
	failures []string
}

func (f *fakeT) Fatalf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func (f *fakeT) Helper() {}

func (f *fakeT) failure() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return strings.Join(f.failures, "\n")
}

func TestCascade_UnconfiguredOutputIsAMock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	lists := newListsMock(s)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		lists.Named("todo").Size()
		r.Returns(4)
	}, replaymock.NonStrict())

	g.Expect(lists.Named("todo").Size()).To(Equal(4))

	replaymock.End(s)
}

func TestFullVerification_CitesUnverifiedCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := &fakeT{}
	s := replaymock.New(ft)
	service := newServiceMock(s)

	replaymock.Record(s, func(*replaymock.Recorder) {
		service.Get("a")
		service.Get("b")
	}, replaymock.NonStrict())

	service.Get("a")
	service.Get("b")

	replaymock.Verify(s, func(*replaymock.Verifier) {
		service.Get("a")
	}, replaymock.Full())

	g.Expect(ft.failure()).To(HavePrefix("Unexpected invocation of:\nreplaymock_test.Service.Get(string) string\n" +
		`with arguments: "b"`))
}

func TestGetOrCreate_HelpersShareTheSession(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	helper := func() *calcMock { return newCalcMock(replaymock.GetOrCreate(t)) }

	s := replaymock.GetOrCreate(t)
	calc := helper()

	g.Expect(calc.Execution()).To(BeIdenticalTo(s))
}

func TestMatchers_AnyArgumentMatches(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	service := newServiceMock(s)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		service.Get(replaymock.Any[string](s))
		r.Returns("X")
		r.Times(2)
	})

	g.Expect(service.Get("hello")).To(Equal("X"))
	g.Expect(service.Get("world")).To(Equal("X"))

	replaymock.End(s)
}

func TestMatchers_GomegaAndMatchPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	service := newServiceMock(s)
	calc := newCalcMock(s)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		service.Get(replaymock.With[string](s, HavePrefix("user/")))
		r.Returns("ann")
		calc.Add(replaymock.With[int](s, match.Within(10, 1)), replaymock.With[int](s, match.Equal(2)))
		r.Returns(13)
	}, replaymock.NonStrict())

	g.Expect(service.Get("user/1")).To(Equal("ann"))
	g.Expect(calc.Add(11, 2)).To(Equal(13))

	replaymock.End(s)
}

func TestMissingInvocation_ReportsShortfall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := &fakeT{}
	s := replaymock.New(ft)
	calc := newCalcMock(s)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		calc.Add(1, 2)
		r.Returns(3)
		r.MinTimes(2)
	}, replaymock.NonStrict())

	g.Expect(calc.Add(1, 2)).To(Equal(3))

	replaymock.End(s)
	g.Expect(ft.failure()).To(HavePrefix("Missing 1 invocation to:\nreplaymock_test.Calc.Add(int, int) int"))

	err := replaymock.Err(s)
	g.Expect(err).To(MatchError(replaymock.ErrMissingInvocation))

	failure, ok := replaymock.AsFailure(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(failure.Cause).NotTo(BeNil())
}

func TestOnInstance_MatchesOnlyThatMock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := &fakeT{}
	s := replaymock.New(ft)
	first := newListMock(s)
	second := newListMock(s, replaymock.Undeclared())

	replaymock.Record(s, func(r *replaymock.Recorder) {
		replaymock.OnInstance(s, first).Size()
		r.Returns(1)
	}, replaymock.NonStrict())

	g.Expect(first.Size()).To(Equal(1))
	g.Expect(second.Size()).To(Equal(0))

	replaymock.End(s)
	g.Expect(ft.failure()).To(BeEmpty())
}

func TestReturns_StickyLastValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	list := newListMock(s)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		list.Size()
		r.Returns(3)
	}, replaymock.NonStrict())

	g.Expect(list.Size()).To(Equal(3))
	g.Expect(list.Size()).To(Equal(3))
}

func TestSeams_FuncAndConstructor(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	getenv := replaymock.Func[func(string) string](s, "os.Getenv")
	newList := replaymock.Constructor[func() List](s, "replaymock_test.List")

	replaymock.Record(s, func(r *replaymock.Recorder) {
		getenv("HOME")
		r.Returns("/home/ann")

		newList().Size()
		r.Returns(2)
	})

	g.Expect(getenv("HOME")).To(Equal("/home/ann"))
	g.Expect(newList().Size()).To(Equal(2))
}

func TestStrictOrder_NamesTheExpectedCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := &fakeT{}
	s := replaymock.New(ft)
	service := newServiceMock(s)

	replaymock.Record(s, func(*replaymock.Recorder) {
		service.Foo()
		service.Bar()
	})

	service.Bar()
	service.Foo()

	replaymock.End(s)
	g.Expect(ft.failure()).To(HavePrefix("Unexpected invocation of:\nreplaymock_test.Service.Bar()"))
	g.Expect(ft.failure()).To(ContainSubstring("when was expecting an invocation of:\nreplaymock_test.Service.Foo()"))
}

func TestVerify_InOrderWithIterations(t *testing.T) {
	t.Parallel()

	s := replaymock.New(t)
	calc := newCalcMock(s)

	replaymock.Replay(s)

	for range 2 {
		calc.Add(1, 1)
		calc.Add(2, 2)
	}

	replaymock.Verify(s, func(*replaymock.Verifier) {
		calc.Add(1, 1)
		calc.Add(2, 2)
	}, replaymock.InOrder(), replaymock.Iterations(2))
}
