// Package tfserr defines the closed error taxonomy shared by every TinyFS layer.
//
// Internal packages (blockdev, volume, file) return ordinary Go errors built with
// New, wrapping a lower-level cause with fmt.Errorf's %w where one exists. The
// façade package never hand-rolls integer codes itself; its CodeOf reads the Kind
// of whatever error comes back to produce the legacy negative-code surface spec.md §6 requires.
package tfserr

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories spec.md §7 names.
type Kind int

const (
	// NotFound is a name/handle/volume lookup miss.
	NotFound Kind = iota
	// InvalidArgument is a bad size, an over-length name, or a rename of root.
	InvalidArgument
	// OutOfSpace means free-block allocation failed.
	OutOfSpace
	// PermissionDenied is a write/delete against a read-only inode.
	PermissionDenied
	// OutOfBounds is a seek past size, a read at EOF, or a block index past the device.
	OutOfBounds
	// Corruption is a magic-byte mismatch discovered during mount verification.
	Corruption
	// DeviceClosed is a read/write against a closed device handle.
	DeviceClosed
	// IOError is an underlying host read/write failure.
	IOError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidArgument:
		return "invalid argument"
	case OutOfSpace:
		return "out of space"
	case PermissionDenied:
		return "permission denied"
	case OutOfBounds:
		return "out of bounds"
	case Corruption:
		return "corruption"
	case DeviceClosed:
		return "device closed"
	case IOError:
		return "i/o error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every core operation returns on failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for operation op, categorized as kind, wrapping cause (which
// may be nil).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
