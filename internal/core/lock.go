package core

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// reentrantMutex is a mutex the goroutine holding it may lock again. Dispatch runs argument
// matchers and Equal methods under it, and those may call other mocks.
type reentrantMutex struct {
	mu    sync.Mutex
	owner atomic.Uint64
	// depth is only touched by the owner.
	depth int
}

func (m *reentrantMutex) Lock() {
	id := goroutineID()
	if m.owner.Load() == id {
		m.depth++

		return
	}

	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

func (m *reentrantMutex) Unlock() {
	m.depth--
	if m.depth > 0 {
		return
	}

	m.owner.Store(0)
	m.mu.Unlock()
}

// goroutineID reads the current goroutine's id from the header of its stack trace,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte

	header := bytes.TrimPrefix(buf[:runtime.Stack(buf[:], false)], []byte("goroutine "))

	if end := bytes.IndexByte(header, ' '); end >= 0 {
		header = header[:end]
	}

	id, err := strconv.ParseUint(string(header), 10, 64)
	if err != nil {
		panic("replaymock: unreadable goroutine header: " + err.Error())
	}

	return id
}
