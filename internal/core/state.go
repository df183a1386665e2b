package core

import (
	"slices"
	"sync"
)

// executionState holds everything recorded for one test: the strict and non-strict expectation
// lists, the record-to-replay instance map, and which mocks are strict, non-strict or declared.
// It outlives a single Execution when a test carries it forward with WithState.
type executionState struct {
	strict    []*Expectation
	nonStrict []*Expectation
	instances instanceMap

	// strict cursor position reached by the last replay phase, where the next one resumes
	lastStrictIndex int

	// registrations arrive from mock constructors, which may run inside a dispatch (cascades),
	// so they are guarded separately from the dispatch lock.
	mocksMu         sync.Mutex
	declared        map[string]int
	mockTypes       map[any]string
	nonStrictMocks  map[any]bool
	nonStrictTypes  map[string]bool
	strictInstances map[any]bool
	strictTypes     map[string]bool
}

func newExecutionState() *executionState {
	state := &executionState{
		declared:        make(map[string]int),
		mockTypes:       make(map[any]string),
		nonStrictMocks:  make(map[any]bool),
		nonStrictTypes:  make(map[string]bool),
		strictInstances: make(map[any]bool),
		strictTypes:     make(map[string]bool),
	}

	state.instances.registered = func(value any) bool {
		_, ok := state.mockType(value)

		return ok
	}

	return state
}

// addExpectation appends a recorded expectation, replacing an earlier equivalent non-strict one.
func (s *executionState) addExpectation(exp *Expectation) {
	if !exp.matchInstance && exp.invocation.Instance != nil && s.matchesOnInstance(exp.invocation.Type) {
		exp.matchInstance = true
	}

	s.removeEquivalentNonStrict(exp)

	if exp.nonStrict {
		s.nonStrict = append(s.nonStrict, exp)

		return
	}

	s.strict = append(s.strict, exp)
}

func (s *executionState) addStrictMock(inv Invocation, matchInstance bool) {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	if matchInstance {
		if key, ok := identityOf(inv.Instance); ok {
			s.strictInstances[key] = true

			return
		}
	}

	s.strictTypes[inv.Type] = true
}

func (s *executionState) findNonStrict(inv Invocation) *Expectation {
	for _, exp := range s.nonStrict {
		if exp.matches(inv, &s.instances) {
			return exp
		}
	}

	return nil
}

func (s *executionState) isNonStrictMock(inv Invocation) bool {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	if s.nonStrictTypes[inv.Type] {
		return true
	}

	key, ok := identityOf(inv.Instance)

	return ok && s.nonStrictMocks[key]
}

func (s *executionState) isStrictMock(inv Invocation) bool {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	if s.strictTypes[inv.Type] {
		return true
	}

	key, ok := identityOf(inv.Instance)

	return ok && s.strictInstances[key]
}

// makeNonStrict moves a strict expectation to the non-strict list with non-strict default bounds.
func (s *executionState) makeNonStrict(exp *Expectation) {
	for i, strict := range s.strict {
		if strict != exp {
			continue
		}

		s.strict = append(s.strict[:i], s.strict[i+1:]...)
		exp.nonStrict = true
		exp.constraints.setDefaultLimits(true)
		s.nonStrict = append(s.nonStrict, exp)

		return
	}
}

// matchesOnInstance reports whether more than one declared mock of the type exists, in which case
// expectations on it only match their own instance.
func (s *executionState) matchesOnInstance(typeID string) bool {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	return s.declared[typeID] > 1
}

func (s *executionState) mockType(instance any) (string, bool) {
	key, ok := identityOf(instance)
	if !ok {
		return "", false
	}

	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	typeID, ok := s.mockTypes[key]

	return typeID, ok
}

func (s *executionState) registerMock(instance any, typeID string, declared, nonStrict bool) {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()

	key, hasKey := identityOf(instance)

	switch {
	case !hasKey:
		if nonStrict {
			s.nonStrictTypes[typeID] = true
		}

		return
	case nonStrict:
		s.nonStrictMocks[key] = true
	}

	if _, known := s.mockTypes[key]; known {
		return
	}

	s.mockTypes[key] = typeID

	if declared {
		s.declared[typeID]++
	}
}

func (s *executionState) removeEquivalentNonStrict(exp *Expectation) {
	for i, previous := range s.nonStrict {
		if !previous.equivalent(exp) {
			continue
		}

		exp.inheritDefaults(previous)
		s.nonStrict = append(s.nonStrict[:i], s.nonStrict[i+1:]...)

		return
	}
}

// closeDeferred stops every deferred value sequence still being pulled.
func (s *executionState) closeDeferred() {
	for _, exp := range slices.Concat(s.strict, s.nonStrict) {
		if exp.results.empty() {
			continue
		}

		for i := range exp.results.results {
			if deferred := exp.results.results[i].deferred; deferred != nil {
				deferred.close()
			}
		}
	}
}
