package partial_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/replaymock"
	partial "github.com/toejough/replaymock/UAT/05-partial-mocks"
)

//go:generate go run ../../replaygen partial.Greeter

func TestIntroduce_RecordedNameRealGreeting(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	greeter := NewGreeterMock(s, replaymock.Real(partial.Person{Given: "ann"}))

	replaymock.Record(s, func(r *replaymock.Recorder) {
		greeter.Name()
		r.Returns("Zed")
	}, replaymock.NonStrict())

	g.Expect(partial.Introduce(greeter)).To(Equal("hello, ann (I am Zed)"))

	replaymock.Verify(s, func(v *replaymock.Verifier) {
		greeter.Greet("hello")
		v.Times(1)
	})
}

func TestIntroduce_UnrecordedCallsRunTheRealImplementation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	greeter := NewGreeterMock(s, replaymock.Real(partial.Person{Given: "ann"}))

	replaymock.Replay(s)

	g.Expect(partial.Introduce(greeter)).To(Equal("hello, ann (I am ann)"))
}

func TestNewGreeterMock_RealMustImplementTheInterface(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)

	g.Expect(func() { NewGreeterMock(s, replaymock.Real("not a greeter")) }).
		To(PanicWith(MatchError(replaymock.ErrConfiguration)))
}

func TestBanner_PartialFunction(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s := replaymock.New(t)
	upper := replaymock.PartialFunc(s, "strings.ToUpper", strings.ToUpper)

	replaymock.Record(s, func(r *replaymock.Recorder) {
		upper(replaymock.With[string](s, HavePrefix("hello, bob")))
		r.Returns("HUSH")
	}, replaymock.NonStrict())

	g.Expect(partial.Banner(upper, partial.Person{Given: "bob"})).To(Equal("HUSH"))
	g.Expect(partial.Banner(upper, partial.Person{Given: "ann"})).To(Equal("HELLO, ANN (I AM ANN)"))
}
