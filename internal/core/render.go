package core

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
)

// unexported constants.
const diffThreshold = 60

// describeMismatch renders an expected/actual pair. Long renderings get a unified diff so the
// differing field stands out.
func describeMismatch(expected, actual string) string {
	if len(expected) < diffThreshold && len(actual) < diffThreshold {
		return fmt.Sprintf("expected %s, got %s", expected, actual)
	}

	diff := textdiff.Unified("expected", "actual", splitFields(expected), splitFields(actual))

	return fmt.Sprintf("expected %s, got %s\n%s", expected, actual, diff)
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}

	return strings.Join(parts, ", ")
}

// formatValue renders a value for failure messages. Mocks render as their identity, never through
// their own methods.
func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "nil"
	case mockHandle:
		return objectIdentity(typed)
	case string:
		return strconv.Quote(typed)
	case error:
		return fmt.Sprintf("%T(%q)", typed, typed.Error())
	case Matcher:
		if stringer, ok := typed.(fmt.Stringer); ok {
			return stringer.String()
		}

		return fmt.Sprintf("matcher %T", typed)
	}

	return fmt.Sprintf("%#v", value)
}

// objectIdentity renders a mock instance the way failures name it: type plus address.
func objectIdentity(instance any) string {
	if instance == nil {
		return "nil"
	}

	rv := reflect.ValueOf(instance)

	switch rv.Kind() { //nolint:exhaustive // only pointer-like kinds have an address
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("%T@%x", instance, rv.Pointer())
	}

	return fmt.Sprintf("%T(%v)", instance, instance)
}

func signatureString(signature reflect.Type) string {
	if signature == nil {
		return "(...)"
	}

	params := make([]string, signature.NumIn())

	for i := range signature.NumIn() {
		param := signature.In(i)
		if signature.IsVariadic() && i == signature.NumIn()-1 {
			params[i] = "..." + param.Elem().String()

			continue
		}

		params[i] = param.String()
	}

	result := "(" + strings.Join(params, ", ") + ")"

	switch signature.NumOut() {
	case 0:
		return result
	case 1:
		return result + " " + signature.Out(0).String()
	}

	outs := make([]string, signature.NumOut())
	for i := range signature.NumOut() {
		outs[i] = signature.Out(i).String()
	}

	return result + " (" + strings.Join(outs, ", ") + ")"
}

// splitFields breaks a one-line %#v rendering at field separators so the diff is per field.
func splitFields(rendering string) string {
	return strings.ReplaceAll(rendering, ", ", ",\n") + "\n"
}
