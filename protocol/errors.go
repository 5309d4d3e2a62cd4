package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Every error returned by this module carries one.
type Kind int

// Error kinds.
const (
	// InvalidArgument: misaligned address or size, wrong fingerprint length, bad layout
	InvalidArgument Kind = iota + 1

	// IO: the transport failed
	IO

	// Timeout: no response within the configured bound
	Timeout

	// Protocol: unexpected gate byte, bad checksum or bad frame terminator
	Protocol

	// OutOfMemory: a buffer above the supported size was requested
	OutOfMemory

	// DataCorruption: a ring pointer or index lies outside its declared bounds
	DataCorruption

	// Cancelled: the caller aborted the operation
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case IO:
		return "i/o error"
	case Timeout:
		return "timeout"
	case Protocol:
		return "protocol error"
	case OutOfMemory:
		return "out of memory"
	case DataCorruption:
		return "data corruption"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is a failure of a given Kind raised by operation Op.
type Error struct {
	// Kind classifies the failure
	Kind Kind

	// Op is the operation that failed (optional)
	Op string

	// Err is the underlying cause (optional)
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind, so that
// errors.Is(err, ErrTimeout) works for every timeout regardless of context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrIO              = &Error{Kind: IO}
	ErrTimeout         = &Error{Kind: Timeout}
	ErrProtocol        = &Error{Kind: Protocol}
	ErrOutOfMemory     = &Error{Kind: OutOfMemory}
	ErrDataCorruption  = &Error{Kind: DataCorruption}
	ErrCancelled       = &Error{Kind: Cancelled}
)

var sentinels = []*Error{
	ErrInvalidArgument, ErrIO, ErrTimeout, ErrProtocol,
	ErrOutOfMemory, ErrDataCorruption, ErrCancelled,
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewError returns an error of the given kind.
func NewError(kind Kind, op string, format string, args ...interface{}) error {
	return newError(kind, op, fmt.Errorf(format, args...))
}

// ChecksumError indicates that a page checksum did not match its data.
// It is a Protocol error.
type ChecksumError struct {
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%02X, got 0x%02X", e.Expected, e.Actual)
}

// Is matches ErrProtocol.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrProtocol
}

// KindOf returns the Kind carried by err, or IO for foreign errors.
// Typed errors whose Is method matches a sentinel take that sentinel's kind.
// A nil error has kind 0.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	// typed errors that match a sentinel through their own Is method
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Kind
		}
	}
	return IO
}

// IsProtocolError returns true if err is a Protocol error.
func IsProtocolError(err error) bool {
	return err != nil && KindOf(err) == Protocol
}

// IsTimeout returns true if err is a Timeout error.
func IsTimeout(err error) bool {
	return err != nil && KindOf(err) == Timeout
}

// IsRetryable reports whether a failed handshake may be resent.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case Timeout, Protocol:
		return true
	default:
		return false
	}
}
