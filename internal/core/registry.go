package core

import "sync"

// GetOrCreate returns the Execution for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Execution, so mocks built in helpers
// share the test's session.
//
// If the TestReporter supports Cleanup (like *testing.T), the Execution is removed from the
// registry when the test completes.
func GetOrCreate(t TestReporter, opts ...Option) *Execution {
	registryMu.Lock()
	defer registryMu.Unlock()

	if exec, ok := registry[t]; ok {
		return exec
	}

	exec := NewExecution(t, opts...)
	registry[t] = exec

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()
		})
	}

	return exec
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Execution)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)
