package treefs

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the request boundary can tell them apart.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindValidation is a missing or malformed request field. No store access was attempted.
	KindValidation
	// KindConstraint is a tree invariant violation detected after resolution.
	KindConstraint
	// KindNotFound means the named parent or target is absent from the tree.
	KindNotFound
	// KindPersistence means a store call failed.
	KindPersistence
	// KindWriteNotApplied means the store accepted the write but modified nothing.
	KindWriteNotApplied
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConstraint:
		return "constraint"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindWriteNotApplied:
		return "write_not_applied"
	default:
		return "unknown"
	}
}

// IsClient reports whether the caller is at fault.
func (k ErrorKind) IsClient() bool {
	return k == KindValidation || k == KindConstraint
}

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConstraint      = &Error{Kind: KindConstraint}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrPersistence     = &Error{Kind: KindPersistence}
	ErrWriteNotApplied = &Error{Kind: KindWriteNotApplied}
)

// Error is returned by every tree operation.
type Error struct {
	Kind ErrorKind
	Op   string // operation name i.e. "insert"
	Msg  string
	Err  error // underlying cause, if any
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// WrapError wraps cause in an *Error of the given kind.
func WrapError(kind ErrorKind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Op == ""
}

// KindOf extracts the ErrorKind of err, KindUnknown if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
