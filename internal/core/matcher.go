package core

import (
	"fmt"
	"reflect"
)

// Matcher defines the interface for flexible argument matching.
// Compatible with gomega.GomegaMatcher via duck typing.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise values are compared by identity, then by an Equal method, then by reflect.DeepEqual.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	return matchValue(actual, expected, nil)
}

func equalMethod(expected, actual any) (equal, ok bool) {
	method := reflect.ValueOf(expected).MethodByName("Equal")
	if !method.IsValid() {
		return false, false
	}

	methodType := method.Type()
	if methodType.NumIn() != 1 || methodType.NumOut() != 1 || methodType.Out(0).Kind() != reflect.Bool {
		return false, false
	}

	if !reflect.TypeOf(actual).AssignableTo(methodType.In(0)) {
		return false, false
	}

	return method.Call([]reflect.Value{reflect.ValueOf(actual)})[0].Bool(), true
}

func matchValue(actual, expected any, instances *instanceMap) (bool, string) {
	if matcher, ok := expected.(Matcher); ok && !instances.isMock(expected) {
		return matchWith(matcher, actual)
	}

	if valuesEqual(expected, actual, instances) {
		return true, ""
	}

	return false, describeMismatch(formatValue(expected), formatValue(actual))
}

func matchWith(matcher Matcher, actual any) (bool, string) {
	success, err := matcher.Match(actual)
	if err != nil {
		return false, err.Error()
	}

	if !success {
		msg := matcher.FailureMessage(actual)
		if msg == "" {
			msg = fmt.Sprintf("matcher %T failed for value %s", matcher, formatValue(actual))
		}

		return false, msg
	}

	return true, ""
}

// valuesEqual applies the literal-argument rule: identity, then the instance map, then an Equal
// method, then deep equality. Mocks stop after the instance map.
func valuesEqual(expected, actual any, instances *instanceMap) bool {
	if isNil(expected) || isNil(actual) {
		return isNil(expected) && isNil(actual)
	}

	if sameInstance(expected, actual) || instances.equivalent(expected, actual) {
		return true
	}

	if instances.isMock(expected) || instances.isMock(actual) {
		return false
	}

	if equal, ok := equalMethod(expected, actual); ok {
		return equal
	}

	return reflect.DeepEqual(expected, actual)
}
