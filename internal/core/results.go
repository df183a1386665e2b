package core

import (
	"iter"
	"reflect"
	"sync"
)

// CallContext describes the call being answered to delegates and ForEach handlers that take it as
// their first parameter. A delegate may change MinTimes and MaxTimes; the new bounds apply to the
// expectation afterwards.
type CallContext struct {
	Instance any
	Args     []any
	// Count is the 1-based position of this call among the calls matched so far.
	Count    int
	MinTimes int
	MaxTimes int
}

// result is one configured outcome. Exactly one of its fields is in use.
type result struct {
	values     []any
	panicValue any
	panics     bool
	delegate   reflect.Value
	withCtx    bool
	deferred   *deferredValues
}

// resultChain is consumed left to right, one result per matching call. The last result is reused
// once the chain is exhausted.
type resultChain struct {
	results []result
	cursor  int
}

func (c *resultChain) add(r result) int {
	c.results = append(c.results, r)

	return len(c.results)
}

func (c *resultChain) empty() bool {
	return c == nil || len(c.results) == 0
}

func (c *resultChain) next() *result {
	current := &c.results[c.cursor]
	if c.cursor < len(c.results)-1 {
		c.cursor++
	}

	return current
}

// deferredValues yields one value of a sequence per call. The sequence runs outside the dispatch
// lock, so it may itself call mocks.
type deferredValues struct {
	mu   sync.Mutex
	pull func() (any, bool)
	stop func()
}

func newDeferredValues(seq iter.Seq[any]) *deferredValues {
	pull, stop := iter.Pull(seq)

	return &deferredValues{pull: pull, stop: stop}
}

func (d *deferredValues) next() (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pull()
}

func (d *deferredValues) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
}

// coerce converts a configured value to an output type: nil becomes the zero value of nillable
// types, numbers convert between numeric kinds, anything else must be assignable.
func coerce(value any, target reflect.Type) (any, bool) {
	if value == nil {
		switch target.Kind() { //nolint:exhaustive // only nillable kinds accept nil
		case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice,
			reflect.UnsafePointer:
			return reflect.Zero(target).Interface(), true
		}

		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		if target.Kind() == reflect.Interface {
			return value, true
		}

		return rv.Convert(target).Interface(), true
	}

	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) && rv.Type().ConvertibleTo(target) {
		return convertExact(rv, target)
	}

	return nil, false
}

// convertExact converts a number, refusing conversions that lose its value: truncated fractions,
// overflow, sign flips, or lost precision.
func convertExact(rv reflect.Value, target reflect.Type) (any, bool) {
	converted := rv.Convert(target)
	if isNegative(converted) != isNegative(rv) || !converted.Convert(rv.Type()).Equal(rv) {
		return nil, false
	}

	return converted.Interface(), true
}

func isNegative(rv reflect.Value) bool {
	switch rv.Kind() { //nolint:exhaustive // signed kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() < 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() < 0
	}

	return false
}

func isNumeric(kind reflect.Kind) bool {
	return kind >= reflect.Int && kind <= reflect.Complex128
}

func reflectArgs(fnType reflect.Type, offset int, args []any) []reflect.Value {
	values := make([]reflect.Value, len(args))

	for i, arg := range args {
		paramType := fnType.In(i + offset)
		if arg == nil {
			values[i] = reflect.Zero(paramType)

			continue
		}

		rv := reflect.ValueOf(arg)
		if !rv.Type().AssignableTo(paramType) && rv.Type().ConvertibleTo(paramType) {
			rv = rv.Convert(paramType)
		}

		values[i] = rv
	}

	return values
}

func zeroValues(types []reflect.Type) []any {
	values := make([]any, len(types))
	for i, t := range types {
		values[i] = reflect.Zero(t).Interface()
	}

	return values
}
