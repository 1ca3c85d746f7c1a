package engine

import (
	"errors"
	"fmt"
)

// ErrIO matches run failures caused by archive I/O: creating, opening,
// reading, writing or closing an archive.
var ErrIO = errors.New("archive i/o")

// Op names the step of a run that failed.
type Op string

const (
	OpCreate    Op = "create"
	OpOpen      Op = "open"
	OpRead      Op = "read"
	OpTransform Op = "transform"
	OpWrite     Op = "write"
	OpClose     Op = "close"
	OpPreHook   Op = "pre-hook"
	OpPostHook  Op = "post-hook"
	OpCancel    Op = "cancel"
)

// RunError locates a failed run: the archive involved and, when known,
// the entry being processed.
type RunError struct {
	Op    Op
	Path  string
	Entry string
	Err   error
}

func (e *RunError) Error() string {
	loc := e.Path
	if e.Entry != "" {
		loc += "!" + e.Entry
	}
	return fmt.Sprintf("%s %s: %v", e.Op, loc, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

func (e *RunError) Is(target error) bool {
	if target != ErrIO {
		return false
	}
	switch e.Op {
	case OpCreate, OpOpen, OpRead, OpWrite, OpClose:
		return true
	}
	return false
}
