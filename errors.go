// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
)

// ErrorCode identifies the reason for the last failed operation on a DD. It is
// reset to NoError by ClearError.
type ErrorCode int32

const (
	// NoError means that no operation failed since the last call to ClearError.
	NoError ErrorCode = iota
	// MemoryOut is reported when an allocation fails against the memory budget
	// or the host system.
	MemoryOut
	// TooManyNodes is reported when the number of live nodes exceeds the hard
	// ceiling set with SetMaxLive.
	TooManyNodes
	// TimeoutExpired is reported when the deadline set with SetTimeLimit has
	// passed.
	TimeoutExpired
	// InvalidCube is reported when an abstraction operation receives a varset
	// that is not a conjunction of positive literals.
	InvalidCube
	// InvalidInput is reported when an operation receives an out-of-domain
	// parameter, such as a non-positive bit width in Inequality.
	InvalidInput
	// InternalError is reported when an internal invariant check failed; the
	// manager should not be used after that.
	InternalError
	// TerminationRequested is reported when a user hook asked to abort the
	// surrounding operation.
	TerminationRequested
)

var errcodenames = [8]string{
	NoError:              "no error",
	MemoryOut:            "out of memory",
	TooManyNodes:         "too many nodes",
	TimeoutExpired:       "timeout expired",
	InvalidCube:          "invalid cube",
	InvalidInput:         "invalid input",
	InternalError:        "internal error",
	TerminationRequested: "termination requested",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(errcodenames) {
		return "unknown error"
	}
	return errcodenames[c]
}

// Error returns the error status of the DD. We return an empty string if there
// are no errors.
func (b *DD) Error() string {
	if b.error == nil {
		return ""
	}
	return b.error.Error()
}

// Errored returns true if there was an error during a computation.
func (b *DD) Errored() bool {
	return b.error != nil
}

// LastError returns the error code associated with the last failed operation.
func (b *DD) LastError() ErrorCode {
	return b.errcode
}

// ClearError resets the error status of the DD. The manager stays unusable
// after an InternalError.
func (b *DD) ClearError() {
	if b.errcode == InternalError {
		return
	}
	b.error = nil
	b.errcode = NoError
}

// seterror records an error condition (with code InternalError) and always
// returns a nil Node, so that calls can be chained in operations.
func (b *DD) seterror(format string, a ...interface{}) Node {
	return b.seterrcode(InternalError, format, a...)
}

// seterrcode records an error condition with an explicit code. Successive
// errors are chained in the message, like in the original implementation, but
// we keep the code of the first failure.
func (b *DD) seterrcode(code ErrorCode, format string, a ...interface{}) Node {
	if b.error != nil {
		format = format + "; " + b.Error()
		b.error = fmt.Errorf(format, a...)
		return nil
	}
	b.errcode = code
	b.error = fmt.Errorf(format, a...)
	b.logger.Debug("godd error", logerr(b.error))
	return nil
}
