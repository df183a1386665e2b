package core

import (
	"iter"
	"reflect"
)

// Expectation is one recorded call pattern: the invocation and its argument matchers, the
// call-count bounds, and the results to produce.
type Expectation struct {
	invocation    Invocation
	args          *arguments
	constraints   constraints
	results       *resultChain
	block         *recordBlock
	nonStrict     bool
	matchInstance bool
	// proceeds marks implicit expectations on partial mocks, whose calls run the real implementation.
	proceeds      bool
	customMessage string
	cause         *CallSite
	cascaded      map[int]any
}

// recordBlock groups the expectations recorded by one Record block.
type recordBlock struct {
	nonStrict  bool
	iterations int
}

func newExpectation(inv Invocation, matchers []Matcher, block *recordBlock, nonStrict bool, cause *CallSite) *Expectation {
	return &Expectation{
		invocation:  inv,
		args:        newArguments(inv, matchers),
		constraints: newConstraints(nonStrict),
		block:       block,
		nonStrict:   nonStrict,
		cause:       cause,
	}
}

// String describes the expectation the way failures report it.
func (e *Expectation) String() string {
	return e.describe()
}

func (e *Expectation) addDeferred(seq iter.Seq[any]) {
	if e.invocation.Void() {
		panic(configurationError("Deferred values specified for method without outputs %s", e.invocation.Site()))
	}

	e.addResult(result{deferred: newDeferredValues(seq)})
	e.constraints.max = Unbounded
}

func (e *Expectation) addDelegate(fn any) {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(configurationError("delegate for %s must be a func, got %T", e.invocation.Site(), fn))
	}

	withCtx, ok := delegateCompatible(fnValue.Type(), e.invocation.Signature)
	if !ok {
		panic(configurationError("delegate of type %s does not match %s", fnValue.Type(), e.invocation.Site()))
	}

	e.addResult(result{delegate: fnValue, withCtx: withCtx})
}

func (e *Expectation) addFailure(err error) {
	outs := e.invocation.outputTypes()
	if len(outs) == 0 || outs[len(outs)-1] != errorType {
		panic(configurationError("Error result specified for %s, whose last output is not error", e.invocation.Site()))
	}

	values := zeroValues(outs)
	values[len(values)-1] = err

	e.addResult(result{values: values})
}

func (e *Expectation) addPanic(value any) {
	e.addResult(result{panicValue: value, panics: true})
}

func (e *Expectation) addResult(r result) {
	if e.results == nil {
		e.results = &resultChain{}
	}

	count := e.results.add(r)
	e.constraints.adjustMax(count)
}

// addReturn configures the outputs of one call. A single slice that does not fit a single output
// is spread into one result per element; a sequence that does not fit becomes deferred values.
// Constructor seams configure their outputs like any other call; only output-less calls reject
// values.
func (e *Expectation) addReturn(values []any) {
	if e.invocation.Void() {
		for _, value := range values {
			if value != nil {
				panic(configurationError("Non-nil return value specified for constructor or void method %s",
					e.invocation.Site()))
			}
		}

		return
	}

	outs := e.invocation.outputTypes()

	if len(outs) == 1 && len(values) == 1 {
		if _, ok := coerce(values[0], outs[0]); !ok {
			if seq, isSeq := asSeq(values[0]); isSeq {
				e.addDeferred(seq)

				return
			}

			if elements, spread := spreadValues(values[0]); spread {
				e.addReturnEach(elements)

				return
			}
		}
	}

	if len(values) != len(outs) {
		panic(configurationError("%s returns %d value%s, but %d %s configured",
			e.invocation.Site(), len(outs), plural(len(outs)), len(values), wasWere(len(values))))
	}

	e.addResult(result{values: e.coerceAll(values, outs)})
}

// addReturnEach configures one result per value, for single-output methods. Elements of a slice
// output are gathered into a single slice result instead.
func (e *Expectation) addReturnEach(values []any) {
	outs := e.invocation.outputTypes()
	if len(outs) != 1 {
		panic(configurationError("consecutive return values need a single-output method, %s has %d outputs",
			e.invocation.Site(), len(outs)))
	}

	if outs[0].Kind() == reflect.Slice {
		if slice, ok := gatherSlice(values, outs[0]); ok {
			e.addResult(result{values: []any{slice}})

			return
		}
	}

	for _, value := range values {
		e.addResult(result{values: e.coerceAll([]any{value}, outs)})
	}
}

func (e *Expectation) coerceAll(values []any, outs []reflect.Type) []any {
	coerced := make([]any, len(values))

	for i, value := range values {
		converted, ok := coerce(value, outs[i])
		if !ok {
			panic(configurationError("return value %d for %s: %s is not assignable to %s",
				i, e.invocation.Site(), formatValue(value), outs[i]))
		}

		coerced[i] = converted
	}

	return coerced
}

func (e *Expectation) describe() string {
	return e.args.describe(e.invocation)
}

func (e *Expectation) equivalent(other *Expectation) bool {
	if !e.invocation.sameSite(other.invocation) {
		return false
	}

	if (e.matchInstance || other.matchInstance) && !sameInstance(e.invocation.Instance, other.invocation.Instance) {
		return false
	}

	return e.args.equivalent(other.args)
}

func (e *Expectation) failure(kind error, message string) *Failure {
	return &Failure{Kind: kind, Message: message, CustomMessage: e.customMessage, Cause: e.cause}
}

func (e *Expectation) inheritDefaults(previous *Expectation) {
	if e.cascaded == nil && previous.cascaded != nil {
		e.cascaded = previous.cascaded
	}
}

// instanceMatches applies the instance rules: statics and constructors match any call; an instance
// already correlated, or one that must be matched, only matches its equivalent.
func (e *Expectation) instanceMatches(instance any, instances *instanceMap) bool {
	recorded := e.invocation.Instance
	if recorded == nil || e.invocation.Constructor {
		return true
	}

	if instances.equivalent(recorded, instance) {
		return true
	}

	if _, mapped := instances.lookup(recorded); mapped {
		return false
	}

	return !e.matchInstance
}

func (e *Expectation) matches(inv Invocation, instances *instanceMap) bool {
	return e.invocation.sameSite(inv) &&
		e.instanceMatches(inv.Instance, instances) &&
		e.args.match(inv, instances) == ""
}

func (e *Expectation) missingFailure() *Failure {
	if e.constraints.count == 0 && e.constraints.min == 1 {
		return e.failure(ErrMissingInvocation, "Missing invocation of:\n"+e.describe())
	}

	kind, msg := verifyCount(e.constraints.count, e.constraints.min, e.constraints.max, e.describe())

	return e.failure(kind, msg)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type constant
	callContextType = reflect.TypeFor[*CallContext]()
	//nolint:gochecknoglobals // reflect type constant
	errorType = reflect.TypeFor[error]()
)

// delegateCompatible reports whether fn can answer calls of signature, optionally taking a
// *CallContext first.
func delegateCompatible(fn, signature reflect.Type) (withCtx, ok bool) {
	withCtx, ok = paramsCompatible(fn, signature)
	if !ok || fn.NumOut() != signature.NumOut() {
		return false, false
	}

	for i := range signature.NumOut() {
		if !fn.Out(i).AssignableTo(signature.Out(i)) {
			return false, false
		}
	}

	return withCtx, true
}

// paramsCompatible reports whether fn accepts the parameters of signature, optionally preceded by a
// *CallContext.
func paramsCompatible(fn, signature reflect.Type) (withCtx, ok bool) {
	if signature == nil {
		return false, false
	}

	offset := 0
	if fn.NumIn() > 0 && fn.In(0) == callContextType {
		offset = 1
	}

	if fn.NumIn()-offset != signature.NumIn() || fn.IsVariadic() != signature.IsVariadic() {
		return false, false
	}

	for i := range signature.NumIn() {
		if fn.In(i+offset) != signature.In(i) {
			return false, false
		}
	}

	return offset == 1, true
}

func gatherSlice(values []any, sliceType reflect.Type) (any, bool) {
	slice := reflect.MakeSlice(sliceType, 0, len(values))

	for _, value := range values {
		element, ok := coerce(value, sliceType.Elem())
		if !ok {
			return nil, false
		}

		if element == nil {
			slice = reflect.Append(slice, reflect.Zero(sliceType.Elem()))

			continue
		}

		slice = reflect.Append(slice, reflect.ValueOf(element))
	}

	return slice.Interface(), true
}

// asSeq recognizes an iter.Seq[any], named or as a plain func literal.
func asSeq(value any) (iter.Seq[any], bool) {
	switch seq := value.(type) {
	case iter.Seq[any]:
		return seq, true
	case func(func(any) bool):
		return seq, true
	}

	return nil, false
}

// spreadValues expands a slice or array into its elements.
func spreadValues(value any) ([]any, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	elements := make([]any, rv.Len())
	for i := range elements {
		elements[i] = rv.Index(i).Interface()
	}

	return elements, true
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}

	return "were"
}
