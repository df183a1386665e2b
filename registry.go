package replaymock

import "github.com/toejough/replaymock/internal/core"

// GetOrCreate returns the Session for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Session.
// This lets mocks built in test helpers join the test's session.
func GetOrCreate(t TestReporter, opts ...Option) *Session {
	return core.GetOrCreate(t, opts...)
}
