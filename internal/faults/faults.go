package faults

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class.
type Kind string

const (
	// IncompleteBlock marks a capture that is not yet structurally complete.
	IncompleteBlock Kind = "incomplete_block"
	// ConnectionLost marks a setup failure locating the external application.
	ConnectionLost Kind = "connection_lost"
	// StoreUnavailable marks a failed parameter store query.
	StoreUnavailable Kind = "store_unavailable"
	// LedgerLocked marks ledger contention that outlived the retry budget.
	LedgerLocked Kind = "ledger_locked"
	// LedgerWriteError marks any other ledger persistence failure.
	LedgerWriteError Kind = "ledger_write"
)

// Error carries a Kind, the failing operation, and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind exposes the classification as a plain string.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// New wraps err with the given kind and operation.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Incomplete reports a capture that failed the structural checks.
func Incomplete(format string, args ...any) *Error {
	return &Error{Kind: IncompleteBlock, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Halts reports whether err must stop the worker. Everything except a lost
// connection is scoped to a single cycle.
func Halts(err error) bool {
	return Is(err, ConnectionLost)
}
