package core

// TestReporter is the subset of testing.TB the engine reports through.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// cleanupRegistrar is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

// logger is satisfied by *testing.T. Trace output is dropped for reporters without it.
type logger interface {
	Logf(format string, args ...any)
}
