package core_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/replaymock/internal/core"
)

// replayed returns a session whose replay saw Put("a", "1"), Size() and Put("b", "2") on store.
func replayed() (*core.Execution, *storeMock) {
	exec := core.NewExecution(&fakeReporter{})
	store := newStoreMock(exec)

	exec.EndRecording()
	store.Put("a", "1")
	store.Size()
	store.Put("b", "2")

	return exec, store
}

func TestForEach_VisitsMatchedCallsWithCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	var (
		keys   []string
		counts []int
	)

	exec.StartVerifications(false, 1, false, nil)
	exec.Stage(anyValue{})
	exec.Stage(anyValue{})
	store.Put("", "")
	exec.ForEach(func(ctx *core.CallContext, key, _ string) {
		keys = append(keys, key)
		counts = append(counts, ctx.Count)
	})

	g.Expect(exec.EndVerifications()).To(BeNil())
	g.Expect(keys).To(Equal([]string{"a", "b"}))
	g.Expect(counts).To(Equal([]int{1, 2}))
}

func TestForEach_RejectsMismatchedHandler(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(false, 1, false, nil)
	store.Size()
	g.Expect(func() { exec.ForEach(func(string) {}) }).To(PanicWith(MatchError(core.ErrConfiguration)))
	g.Expect(func() { exec.ForEach("not a func") }).To(PanicWith(MatchError(core.ErrConfiguration)))
}

func TestFullVerification_ReportsUnverifiedCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(false, 1, true, nil)
	store.Put("a", "1")
	store.Put("b", "2")

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(HavePrefix("Unexpected invocation of:\ncore_test.Store.Size() int"))
}

func TestFullVerification_LimitedToTargets(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec := core.NewExecution(&fakeReporter{})
	first := newStoreMock(exec)
	second := newStoreMock(exec)

	exec.EndRecording()
	first.Size()
	second.Size()

	exec.StartVerifications(false, 1, true, []any{first})
	first.Size()
	g.Expect(exec.EndVerifications()).To(BeNil(), "calls on other instances are outside the targets")

	exec.StartVerifications(false, 1, true, []any{"core_test.Store"})
	first.Size()

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(ContainSubstring("on mock instance: " + identity(second)))
}

func TestOrderedVerification_AllowsSkippedCalls(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	store.Put("a", "1")
	store.Put("b", "2")
	g.Expect(exec.EndVerifications()).To(BeNil())
}

func TestOrderedVerification_OutOfOrderIsMissing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	store.Put("b", "2")
	store.Put("a", "1")

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrMissingInvocation))
	g.Expect(failure.Error()).To(ContainSubstring(`with arguments: "a", "1"`))
}

func TestOrderedVerification_TimesSpansConsecutiveCalls(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec := core.NewExecution(&fakeReporter{})
	store := newStoreMock(exec)

	exec.EndRecording()
	store.Size()
	store.Size()
	store.Put("k", "v")

	exec.StartVerifications(true, 1, false, nil)
	store.Size()
	exec.Times(2)
	store.Put("k", "v")
	g.Expect(exec.EndVerifications()).To(BeNil())

	exec.StartVerifications(true, 1, false, nil)
	store.Size()
	exec.Times(1)

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(HavePrefix("Unexpected invocation of:\ncore_test.Store.Size() int"))
}

func TestUnorderedVerification_IsRepeatable(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	for range 2 {
		exec.StartVerifications(false, 1, false, nil)
		store.Size()
		store.Put("b", "2")
		g.Expect(exec.EndVerifications()).To(BeNil())
	}

	g.Expect(exec.End()).To(BeNil())
}

func TestUnorderedVerification_IterationsScaleCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(false, 2, false, nil)
	exec.Stage(anyValue{})
	exec.Stage(anyValue{})
	store.Put("", "")
	g.Expect(exec.EndVerifications()).To(BeNil())

	exec.StartVerifications(false, 2, false, nil)
	store.Size()

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrMissingInvocation))
	g.Expect(failure.Error()).To(HavePrefix("Missing 1 invocation to:\ncore_test.Store.Size() int"))
}

func TestUnorderedVerification_MessagePrefixesFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(false, 1, false, nil)
	store.Get("k")
	exec.Message("lookups go through the cache")

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrMissingInvocation))
	g.Expect(failure.Error()).To(HavePrefix("lookups go through the cache\nMissing invocation of:\n" +
		`core_test.Store.Get(string) (string, error)` + "\nwith arguments: \"k\""))
	g.Expect(failure.Error()).To(ContainSubstring("Caused by: verification made"))
}

func TestUnorderedVerification_TimesChecksCount(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(false, 1, false, nil)
	exec.Stage(anyValue{})
	exec.Stage(anyValue{})
	store.Put("", "")
	exec.Times(2)
	g.Expect(exec.EndVerifications()).To(BeNil())

	exec.StartVerifications(false, 1, false, nil)
	exec.Stage(anyValue{})
	exec.Stage(anyValue{})
	store.Put("", "")
	exec.MaxTimes(1)

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(HavePrefix("1 unexpected invocation to:\ncore_test.Store.Put(string, string)"))
}

func TestUnverified_CallsAfterLastVerified(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	exec.Unverified()
	store.Size()

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(HavePrefix("Unexpected invocations after core_test.Store.Size() int"))
}

func TestUnverified_CallsBeforeFirstVerified(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	store.Put("b", "2")
	exec.Unverified()

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(failure.Error()).To(HavePrefix("Unexpected invocations before core_test.Store.Put(string, string)"))
}

func TestUnverified_LastCallVerifiedAfterFixing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	exec.Unverified()
	store.Put("b", "2")
	g.Expect(exec.EndVerifications()).To(BeNil())
}

func TestUnverified_NothingLeft(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, store := replayed()

	exec.StartVerifications(true, 1, false, nil)
	store.Put("a", "1")
	store.Size()
	store.Put("b", "2")
	exec.Unverified()

	failure := exec.EndVerifications()
	g.Expect(failure).To(MatchError(core.ErrMissingInvocation))
	g.Expect(failure.Error()).To(HavePrefix("No unverified invocations left"))
}

func TestUnverified_OnlyInOrderedBlocks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	exec, _ := replayed()

	exec.StartVerifications(false, 1, false, nil)
	g.Expect(exec.Unverified).To(PanicWith(MatchError(core.ErrConfiguration)))
}
