// Package match provides argument matchers for replaymock's With.
// Matchers work alongside gomega matchers, which satisfy the same interface:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    "github.com/toejough/replaymock"
//	    "github.com/toejough/replaymock/match"
//	)
//
//	store.Put(replaymock.With(s, match.Prefix("user/")), replaymock.With(s, HaveLen(3)))
package match

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny is a matcher that matches any value.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// Any returns BeAny.
func Any() Matcher {
	return BeAny
}

// Contains matches strings containing sub.
func Contains(sub string) Matcher {
	return &stringMatcher{
		name:  "Contains",
		arg:   sub,
		check: func(s string) bool { return strings.Contains(s, sub) },
	}
}

// Equal matches values equal to expected by go-cmp, unexported fields included.
// Failures carry the diff.
func Equal(expected any) Matcher {
	return &equalMatcher{expected: expected}
}

// InstanceOf matches values whose dynamic type is, or implements, T.
func InstanceOf[T any]() Matcher {
	return instanceOfMatcher[T]{}
}

// Nil matches nil, including typed nil pointers, maps, slices, channels and funcs.
func Nil() Matcher {
	return nilMatcher{}
}

// Not inverts matcher.
func Not(matcher Matcher) Matcher {
	return notMatcher{inner: matcher}
}

// NotEqual matches values not equal to unexpected.
func NotEqual(unexpected any) Matcher {
	return Not(Equal(unexpected))
}

// NotNil matches anything Nil does not.
func NotNil() Matcher {
	return Not(Nil())
}

// Prefix matches strings starting with prefix.
func Prefix(prefix string) Matcher {
	return &stringMatcher{
		name:  "Prefix",
		arg:   prefix,
		check: func(s string) bool { return strings.HasPrefix(s, prefix) },
	}
}

// Regexp matches strings the pattern matches. It panics when the pattern does not compile.
func Regexp(pattern string) Matcher {
	re := regexp.MustCompile(pattern)

	return &stringMatcher{name: "Regexp", arg: pattern, check: re.MatchString}
}

// Same matches the very instance given: the same pointer, map, channel or func.
func Same(instance any) Matcher {
	return sameMatcher{instance: instance}
}

// Satisfy returns a matcher that uses a predicate function to check for a match.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not.
//
// Example:
//
//	store.Put(replaymock.With(s, match.Satisfy(func(key string) error {
//	    if key == "" { return errors.New("empty key") }
//	    return nil
//	})), replaymock.Any[string](s))
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// Suffix matches strings ending with suffix.
func Suffix(suffix string) Matcher {
	return &stringMatcher{
		name:  "Suffix",
		arg:   suffix,
		check: func(s string) bool { return strings.HasSuffix(s, suffix) },
	}
}

// Within matches numbers no further than delta from expected.
func Within(expected, delta float64) Matcher {
	return withinMatcher{expected: expected, delta: delta}
}

// anyMatcher is the implementation of the BeAny matcher.
type anyMatcher struct{}

// FailureMessage returns an empty string since BeAny always matches.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

// Match always returns true - matches any value.
func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

func (anyMatcher) String() string {
	return "any"
}

type equalMatcher struct {
	expected any
}

func (m *equalMatcher) FailureMessage(actual any) string {
	return "mismatch (-expected +actual):\n" + cmp.Diff(m.expected, actual, exportAll)
}

func (m *equalMatcher) Match(actual any) (bool, error) {
	return cmp.Equal(m.expected, actual, exportAll), nil
}

func (m *equalMatcher) String() string {
	return fmt.Sprintf("equal to %#v", m.expected)
}

type instanceOfMatcher[T any] struct{}

func (instanceOfMatcher[T]) FailureMessage(actual any) string {
	return fmt.Sprintf("expected an instance of %s, got %T", reflect.TypeFor[T](), actual)
}

func (instanceOfMatcher[T]) Match(actual any) (bool, error) {
	_, ok := actual.(T)

	return ok, nil
}

func (instanceOfMatcher[T]) String() string {
	return "instance of " + reflect.TypeFor[T]().String()
}

type nilMatcher struct{}

func (nilMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected nil, got %#v", actual)
}

func (nilMatcher) Match(actual any) (bool, error) {
	if actual == nil {
		return true, nil
	}

	rv := reflect.ValueOf(actual)

	switch rv.Kind() { //nolint:exhaustive // only nillable kinds
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil(), nil
	}

	return false, nil
}

func (nilMatcher) String() string {
	return "nil"
}

type notMatcher struct {
	inner Matcher
}

func (m notMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v not to match %s", actual, describe(m.inner))
}

func (m notMatcher) Match(actual any) (bool, error) {
	matched, err := m.inner.Match(actual)
	if err != nil {
		return false, err
	}

	return !matched, nil
}

func (m notMatcher) String() string {
	return "not " + describe(m.inner)
}

type sameMatcher struct {
	instance any
}

func (m sameMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected the same instance as %T@%p, got %T", m.instance, m.instance, actual)
}

func (m sameMatcher) Match(actual any) (bool, error) {
	if m.instance == nil || actual == nil {
		return m.instance == nil && actual == nil, nil
	}

	expected, got := reflect.ValueOf(m.instance), reflect.ValueOf(actual)
	if expected.Type() != got.Type() {
		return false, nil
	}

	switch expected.Kind() { //nolint:exhaustive // only kinds with an identity
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return expected.Pointer() == got.Pointer(), nil
	}

	return false, fmt.Errorf("%w: %T has no identity to compare", errTypeMismatch, m.instance)
}

func (m sameMatcher) String() string {
	return fmt.Sprintf("same instance as %T@%p", m.instance, m.instance)
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

func (m *satisfyMatcher[T]) String() string {
	return fmt.Sprintf("satisfying a predicate on %s", reflect.TypeFor[T]())
}

type stringMatcher struct {
	name  string
	arg   string
	check func(string) bool
}

func (m *stringMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to match %s", actual, m)
}

func (m *stringMatcher) Match(actual any) (bool, error) {
	s, ok := actual.(string)
	if !ok {
		return false, fmt.Errorf("%w: expected string, got %T", errTypeMismatch, actual)
	}

	return m.check(s), nil
}

func (m *stringMatcher) String() string {
	return fmt.Sprintf("%s(%q)", m.name, m.arg)
}

type withinMatcher struct {
	expected float64
	delta    float64
}

func (m withinMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %v to be within %v of %v", actual, m.delta, m.expected)
}

func (m withinMatcher) Match(actual any) (bool, error) {
	value, ok := toFloat(actual)
	if !ok {
		return false, fmt.Errorf("%w: expected a number, got %T", errTypeMismatch, actual)
	}

	diff := value - m.expected
	if diff < 0 {
		diff = -diff
	}

	return diff <= m.delta, nil
}

func (m withinMatcher) String() string {
	return fmt.Sprintf("within %v of %v", m.delta, m.expected)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // stateless cmp option
	exportAll = cmp.Exporter(func(reflect.Type) bool { return true })
)

func describe(matcher Matcher) string {
	if stringer, ok := matcher.(fmt.Stringer); ok {
		return stringer.String()
	}

	return fmt.Sprintf("%T", matcher)
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive // numeric kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}

	return 0, false
}
