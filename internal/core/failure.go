package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Failure kinds. A *Failure unwraps to exactly one of these, plus ErrVerificationCount when it was raised
// by a verification block.
var (
	ErrArgumentMismatch     = errors.New("argument mismatch")
	ErrConfiguration        = errors.New("invalid mock configuration")
	ErrMissingInvocation    = errors.New("missing invocation")
	ErrUnexpectedInvocation = errors.New("unexpected invocation")
	ErrVerificationCount    = errors.New("verification count mismatch")
)

// CallSite is the stack captured where an expectation was recorded or a verification was made.
// It is attached to failures as their cause.
type CallSite struct {
	Title  string
	frames []runtime.Frame
}

// Error renders the title and the filtered stack.
func (c *CallSite) Error() string {
	var builder strings.Builder

	builder.WriteString(c.Title)

	for _, frame := range c.frames {
		fmt.Fprintf(&builder, "\n\tat %s (%s:%d)", frame.Function, frame.File, frame.Line)
	}

	return builder.String()
}

// Frames returns the captured frames, innermost first.
func (c *CallSite) Frames() []runtime.Frame {
	return c.frames
}

// Failure is an assertion raised by the engine.
type Failure struct {
	Kind          error
	Message       string
	CustomMessage string
	Cause         *CallSite
	verification  bool
}

func (f *Failure) Error() string {
	msg := f.Message
	if f.CustomMessage != "" {
		msg = f.CustomMessage + "\n" + msg
	}

	if f.Cause != nil {
		msg += "\nCaused by: " + f.Cause.Error()
	}

	return msg
}

func (f *Failure) Unwrap() []error {
	errs := []error{f.Kind}

	if f.verification {
		errs = append(errs, ErrVerificationCount)
	}

	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}

	return errs
}

// unexported constants.
const (
	callSiteDepth = 32
	modulePath    = "github.com/toejough/replaymock"
)

func captureCallSite(title string) *CallSite {
	pcs := make([]uintptr, callSiteDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	site := &CallSite{Title: title}

	for {
		frame, more := frames.Next()
		if !isEngineFrame(frame.Function) {
			site.frames = append(site.frames, frame)
		}

		if !more {
			break
		}
	}

	return site
}

func configurationError(format string, args ...any) *Failure {
	return &Failure{Kind: ErrConfiguration, Message: fmt.Sprintf(format, args...)}
}

func isEngineFrame(function string) bool {
	switch {
	case strings.HasPrefix(function, modulePath+"/internal/core."):
		return true
	case strings.HasPrefix(function, modulePath+"."):
		return true
	case strings.HasPrefix(function, "runtime."), strings.HasPrefix(function, "reflect."):
		return true
	case strings.HasPrefix(function, "testing."):
		return true
	}

	return false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}
