package orchestrator

import (
	"fmt"
	"runtime"
	"strings"
)

// ItemError is a failure while processing one feed record or stored entry.
// It never aborts the run.
type ItemError struct {
	Identifier string
	Op         string
	Location   string
	Err        error
}

func newItemError(identifier, op string, err error) *ItemError {
	return &ItemError{
		Identifier: identifier,
		Op:         op,
		Location:   callerLocation(2),
		Err:        err,
	}
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %s: %s: %v (%s)", e.Identifier, e.Op, e.Err, e.Location)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Side effect kinds
const (
	SideEffectImage    = "image"
	SideEffectCategory = "category"
)

// SideEffectError is a failed image or category write. The entry itself
// was saved; only the side effect is missing.
type SideEffectError struct {
	EntryID uint
	Kind    string
	Err     error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("entry %d: %s: %v", e.EntryID, e.Kind, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// callerLocation returns file:line of the caller skip frames up.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", shortFile(file), line)
}

// panicLocation returns file:line of the frame that panicked. It must be
// called from a deferred function.
func panicLocation() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	panicking := false
	for {
		frame, more := frames.Next()
		if frame.Function == "runtime.gopanic" {
			panicking = true
		} else if panicking && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", shortFile(frame.File), frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}

func shortFile(file string) string {
	if i := strings.LastIndex(file, "/internal/"); i >= 0 {
		return file[i+1:]
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		return file[i+1:]
	}
	return file
}
