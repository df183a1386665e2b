package core_test

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/toejough/replaymock/internal/core"
)

//nolint:gochecknoinits // mirrors the registration generated mocks carry
func init() {
	core.RegisterCascade(reflect.TypeFor[Store](), func(exec *core.Execution) any {
		return newStoreMock(exec, core.Undeclared())
	})
}

// Store is the collaborator most engine tests mock.
type Store interface {
	Get(key string) (string, error)
	Put(key, value string)
	Size() int
	Tags(prefix string, labels ...string) int
}

// Opener hands out stores, exercising cascades.
type Opener interface {
	Open(name string) Store
}

type anyValue struct{}

func (anyValue) FailureMessage(any) string { return "" }

func (anyValue) Match(any) (bool, error) { return true, nil }

// fakeReporter records what the engine reports instead of failing the surrounding test.
type fakeReporter struct {
	mu       sync.Mutex
	failures []string
	logs     []string
}

func (r *fakeReporter) Fatalf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *fakeReporter) Helper() {}

func (r *fakeReporter) Logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *fakeReporter) joinedLogs() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return strings.Join(r.logs, "\n")
}

type openerMock struct {
	*core.Mock
}

func newOpenerMock(exec *core.Execution, opts ...core.MockOption) *openerMock {
	mock := &openerMock{}
	mock.Mock = core.NewMock[Opener](exec, mock, opts...)

	return mock
}

func (m *openerMock) Open(name string) Store {
	return core.Out[Store](m.Call("Open", name), 0)
}

// realStore is a working Store for partial mocks.
type realStore struct {
	data map[string]string
}

func (s *realStore) Get(key string) (string, error) {
	value, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("no key %q", key) //nolint:err113 // test double
	}

	return value, nil
}

func (s *realStore) Put(key, value string) {
	s.data[key] = value
}

func (s *realStore) Size() int {
	return len(s.data)
}

func (s *realStore) Tags(prefix string, labels ...string) int {
	count := 0

	for _, label := range labels {
		if strings.HasPrefix(label, prefix) {
			count++
		}
	}

	return count
}

type storeMock struct {
	*core.Mock
}

func newStoreMock(exec *core.Execution, opts ...core.MockOption) *storeMock {
	mock := &storeMock{}
	mock.Mock = core.NewMock[Store](exec, mock, opts...)

	return mock
}

func (m *storeMock) Get(key string) (string, error) {
	out := m.Call("Get", key)

	return core.Out[string](out, 0), core.Out[error](out, 1)
}

func (m *storeMock) Put(key, value string) {
	m.Call("Put", key, value)
}

func (m *storeMock) Size() int {
	return core.Out[int](m.Call("Size"), 0)
}

func (m *storeMock) Tags(prefix string, labels ...string) int {
	return core.Out[int](m.Call("Tags", prefix, labels), 0)
}

// identity renders a mock the way failure messages name instances.
func identity(mock any) string {
	return fmt.Sprintf("%T@%x", mock, reflect.ValueOf(mock).Pointer())
}

// nonStrictSession returns a session recording into a non-strict block.
func nonStrictSession() (*core.Execution, *storeMock) {
	exec := core.NewExecution(&fakeReporter{})
	exec.BeginRecording(true, 1)

	return exec, newStoreMock(exec)
}

// Money has an Equal method, which the engine must not call on mocks.
type Money interface {
	Equal(other Money) bool
}

// Ledger takes Money arguments.
type Ledger interface {
	Add(amount Money)
}

// Sink takes stores as arguments.
type Sink interface {
	Take(store Store)
}

type ledgerMock struct {
	*core.Mock
}

func newLedgerMock(exec *core.Execution) *ledgerMock {
	mock := &ledgerMock{}
	mock.Mock = core.NewMock[Ledger](exec, mock)

	return mock
}

func (m *ledgerMock) Add(amount Money) {
	m.Call("Add", amount)
}

type moneyMock struct {
	*core.Mock
}

func newMoneyMock(exec *core.Execution) *moneyMock {
	mock := &moneyMock{}
	mock.Mock = core.NewMock[Money](exec, mock, core.Undeclared())

	return mock
}

func (m *moneyMock) Equal(other Money) bool {
	return core.Out[bool](m.Call("Equal", other), 0)
}

// revision compares by id alone, so revisions differing in note are Equal without being DeepEqual.
type revision struct {
	id   int
	note string
}

func (r revision) Equal(other revision) bool {
	return r.id == other.id
}

type sinkMock struct {
	*core.Mock
}

func newSinkMock(exec *core.Execution) *sinkMock {
	mock := &sinkMock{}
	mock.Mock = core.NewMock[Sink](exec, mock)

	return mock
}

func (m *sinkMock) Take(store Store) {
	m.Call("Take", store)
}

// callingMatcher runs call while matching, the way a predicate reaching for another mock would.
type callingMatcher struct {
	call func()
}

func (callingMatcher) FailureMessage(any) string { return "" }

func (m callingMatcher) Match(any) (bool, error) {
	m.call()

	return true, nil
}
