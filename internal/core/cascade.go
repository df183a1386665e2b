package core

import (
	"reflect"
	"sync"
)

// CascadeFactory builds a mock of a registered output type for a session.
type CascadeFactory func(exec *Execution) any

// RegisterCascade registers the factory used for unconfigured outputs of type t. Generated mocks
// register themselves from an init function.
func RegisterCascade(t reflect.Type, factory CascadeFactory) {
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		panic(configurationError("cascaded type %s must be an interface or a pointer", t))
	}

	cascadesMu.Lock()
	defer cascadesMu.Unlock()

	cascades[t] = factory
}

// unexported variables.
var (
	//nolint:gochecknoglobals // factories are registered from generated init functions
	cascades = make(map[reflect.Type]CascadeFactory)
	//nolint:gochecknoglobals // guards cascades
	cascadesMu sync.RWMutex
)

func cascadeFactory(t reflect.Type) CascadeFactory {
	cascadesMu.RLock()
	defer cascadesMu.RUnlock()

	return cascades[t]
}
