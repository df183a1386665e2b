package core

import "reflect"

// instanceMap correlates record-time instances with the replay-time instances that stood in for
// them. A mapping, once made, is never replaced.
type instanceMap struct {
	replayed map[any]any
	// registered reports the mocks of the owning state.
	registered func(any) bool
}

// isMock reports whether value is a mock: one embedding *Mock, or one registered with the state.
// Mocks compare by identity only; their methods would dispatch back into the engine.
func (m *instanceMap) isMock(value any) bool {
	if _, ok := value.(mockHandle); ok {
		return true
	}

	return m != nil && m.registered != nil && m.registered(value)
}

func (m *instanceMap) equivalent(recorded, replayed any) bool {
	if sameInstance(recorded, replayed) {
		return true
	}

	mapped, ok := m.lookup(recorded)

	return ok && sameInstance(mapped, replayed)
}

func (m *instanceMap) lookup(recorded any) (any, bool) {
	if m == nil || m.replayed == nil {
		return nil, false
	}

	key, ok := identityOf(recorded)
	if !ok {
		return nil, false
	}

	replayed, ok := m.replayed[key]

	return replayed, ok
}

func (m *instanceMap) put(recorded, replayed any) {
	key, ok := identityOf(recorded)
	if !ok {
		return
	}

	if m.replayed == nil {
		m.replayed = make(map[any]any)
	}

	if _, exists := m.replayed[key]; exists {
		return
	}

	m.replayed[key] = replayed
}

type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

// identityOf returns a map key standing for the value's identity: type and address for pointer-like
// values, the value itself for other comparable values.
func identityOf(value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive // remaining kinds fall through to comparability
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return identityKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Func, reflect.Slice:
		return nil, false
	}

	if !rv.Comparable() {
		return nil, false
	}

	return value, true
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive // only nillable kinds
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice,
		reflect.UnsafePointer:
		return rv.IsNil()
	}

	return false
}

func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	keyA, okA := identityOf(a)
	keyB, okB := identityOf(b)

	return okA && okB && keyA == keyB
}
