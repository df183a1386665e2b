package core

import (
	"reflect"
	"strings"
)

// MockOption configures a mock seam.
type MockOption func(*mockConfig)

type mockConfig struct {
	nonStrict  bool
	undeclared bool
	typeName   string
	real       any
}

// NonStrictMock makes every call on the mock non-strict, whether recorded or not.
func NonStrictMock() MockOption {
	return func(c *mockConfig) {
		c.nonStrict = true
	}
}

// Real backs the mock with a real implementation. Calls that no expectation claims run it.
func Real(impl any) MockOption {
	return func(c *mockConfig) {
		c.real = impl
	}
}

// TypeName overrides the type identifier used in matching and failure messages.
func TypeName(name string) MockOption {
	return func(c *mockConfig) {
		c.typeName = name
	}
}

// Undeclared keeps the mock out of the count of declared mocks per type, which decides when
// expectations on a type must match their own instance. Cascaded mocks are undeclared.
func Undeclared() MockOption {
	return func(c *mockConfig) {
		c.undeclared = true
	}
}

// Mock is the handle a mock type embeds to route its methods into an Execution.
type Mock struct {
	exec     *Execution
	self     any
	typeName string
	iface    reflect.Type
	real     reflect.Value
}

// mockHandle is implemented by mock types embedding *Mock.
type mockHandle interface {
	Execution() *Execution
}

// NewMock registers self, a mock of interface I, with exec.
func NewMock[I any](exec *Execution, self any, opts ...MockOption) *Mock {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		panic(configurationError("mocked type %s is not an interface", iface))
	}

	config := mockConfig{typeName: iface.String()}
	for _, opt := range opts {
		opt(&config)
	}

	mock := &Mock{exec: exec, self: self, typeName: config.typeName, iface: iface}

	if config.real != nil {
		if !reflect.TypeOf(config.real).Implements(iface) {
			panic(configurationError("real implementation %T does not implement %s", config.real, iface))
		}

		mock.real = reflect.ValueOf(config.real)
	}

	exec.state.registerMock(self, config.typeName, !config.undeclared, config.nonStrict)

	return mock
}

// Call intercepts a call of method with args and returns its outputs.
func (m *Mock) Call(method string, args ...any) []any {
	methodType, ok := m.iface.MethodByName(method)
	if !ok {
		panic(configurationError("%s has no method %s", m.typeName, method))
	}

	mode := Regular
	if m.real.IsValid() {
		mode = WithRealImpl
	}

	outcome := m.exec.RecordOrReplay(Invocation{
		Instance:  m.self,
		Type:      m.typeName,
		Method:    method,
		Signature: methodType.Type,
		Args:      args,
	}, mode)

	if outcome.Proceed {
		return callReflect(m.real.MethodByName(method), false, nil, args)
	}

	return outcome.Values
}

// Execution returns the session the mock reports to.
func (m *Mock) Execution() *Execution {
	return m.exec
}

// Constructor returns a seam standing in for a constructor of typeName. Its outputs are
// configured results, or a fresh cascaded mock per call.
func Constructor[F any](exec *Execution, typeName string) F {
	return makeSeam[F](exec, typeName, "", true, reflect.Value{})
}

// Func returns a seam standing in for the package function name, written "pkg.Name".
func Func[F any](exec *Execution, name string) F {
	typeName, method := splitName(name)

	return makeSeam[F](exec, typeName, method, false, reflect.Value{})
}

// Out returns output i of a seam call as T.
func Out[T any](values []any, i int) T {
	if values[i] == nil {
		var zero T

		return zero
	}

	return values[i].(T) //nolint:forcetypeassert // outputs are coerced to the declared types
}

// PartialFunc is Func backed by the real function, which runs for calls no expectation claims.
func PartialFunc[F any](exec *Execution, name string, impl F) F {
	typeName, method := splitName(name)

	return makeSeam[F](exec, typeName, method, false, reflect.ValueOf(impl))
}

func makeSeam[F any](exec *Execution, typeName, method string, constructor bool, impl reflect.Value) F {
	fnType := reflect.TypeFor[F]()
	if fnType.Kind() != reflect.Func {
		panic(configurationError("seam type %s is not a func", fnType))
	}

	mode := Regular
	if impl.IsValid() {
		mode = WithRealImpl
	}

	seam := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, arg := range in {
			args[i] = arg.Interface()
		}

		outcome := exec.RecordOrReplay(Invocation{
			Type:        typeName,
			Method:      method,
			Signature:   fnType,
			Constructor: constructor,
			Args:        args,
		}, mode)

		if outcome.Proceed {
			if fnType.IsVariadic() {
				return impl.CallSlice(in)
			}

			return impl.Call(in)
		}

		return outputValues(fnType, outcome.Values)
	})

	return seam.Interface().(F) //nolint:forcetypeassert // MakeFunc returns a value of type F
}

// outputValues converts outputs back to reflect values of the exact declared types.
func outputValues(fnType reflect.Type, values []any) []reflect.Value {
	out := make([]reflect.Value, fnType.NumOut())

	for i := range out {
		target := reflect.New(fnType.Out(i)).Elem()
		if i < len(values) && values[i] != nil {
			target.Set(reflect.ValueOf(values[i]))
		}

		out[i] = target
	}

	return out
}

func splitName(name string) (string, string) {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "", name
	}

	return name[:dot], name[dot+1:]
}
