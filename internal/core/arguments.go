package core

import (
	"fmt"
	"reflect"
)

// arguments is the recorded form of a call's arguments: literal values, or one matcher per
// flattened position.
type arguments struct {
	site     string
	values   []any
	regular  int
	variadic bool
	matchers []Matcher
}

func newArguments(inv Invocation, matchers []Matcher) *arguments {
	values, regular := inv.flatArgs()
	args := &arguments{
		site:     inv.Site(),
		values:   values,
		regular:  regular,
		variadic: inv.Variadic(),
	}

	if len(matchers) == 0 {
		return args
	}

	switch {
	case len(matchers) < len(values):
		missing := len(values) - len(matchers)
		panic(configurationError("missing %d argument matcher%s for %s", missing, plural(missing), args.site))
	case len(matchers) > len(values):
		excess := len(matchers) - len(values)
		panic(configurationError("%d argument matcher%s recorded in excess for %s", excess, plural(excess), args.site))
	}

	args.matchers = matchers

	return args
}

// equivalent reports whether two recordings would accept the same calls. Used to let a later
// non-strict recording replace an earlier one.
func (a *arguments) equivalent(other *arguments) bool {
	if len(a.values) != len(other.values) || (a.matchers == nil) != (other.matchers == nil) {
		return false
	}

	for i := range a.values {
		if a.matchers != nil {
			if !reflect.DeepEqual(a.matchers[i], other.matchers[i]) {
				return false
			}

			continue
		}

		if !valuesEqual(a.values[i], other.values[i], nil) {
			return false
		}
	}

	return true
}

// match compares a replayed call's arguments positionally. It returns "" on a match, otherwise the
// mismatch message.
func (a *arguments) match(inv Invocation, instances *instanceMap) string {
	actual, regular := inv.flatArgs()

	if a.variadic && len(actual)-regular != len(a.values)-a.regular {
		return fmt.Sprintf("Expected %d values for varargs parameter, got %d",
			len(a.values)-a.regular, len(actual)-regular)
	}

	if len(actual) != len(a.values) {
		return fmt.Sprintf("Expected %d arguments to %s, got %d", len(a.values), a.site, len(actual))
	}

	for i, value := range actual {
		var (
			ok  bool
			msg string
		)

		if a.matchers != nil && a.matchers[i] != nil {
			ok, msg = matchWith(a.matchers[i], value)
		} else {
			ok, msg = matchValue(value, a.values[i], instances)
		}

		if ok {
			continue
		}

		if a.variadic && i >= a.regular && a.matchers == nil {
			return fmt.Sprintf("Varargs parameter %d of %s %s", i-a.regular, a.site, msg)
		}

		return fmt.Sprintf("Parameter %d of %s %s", i, a.site, msg)
	}

	return ""
}

// describe renders the recorded call with its literal values or matchers in place of arguments.
func (a *arguments) describe(inv Invocation) string {
	args := a.values
	if a.matchers != nil {
		args = make([]any, len(a.matchers))
		for i, matcher := range a.matchers {
			args[i] = matcher
		}
	}

	inv.Args = nil

	return inv.describe(args)
}
