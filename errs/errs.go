// Package errs defines the typed error taxonomy shared by the client library.
// Callers branch on error kind with errors.Is against the Kind sentinels, or
// pull out chain diagnostics with errors.As.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// InvalidKey means the signing key material is malformed.
	InvalidKey Kind = iota + 1
	// InvalidCall means a call failed its local validation before any
	// network interaction (oversized payload, non-positive amount, ...).
	InvalidCall
	// SequenceMismatch means the chain rejected the transaction's sequence.
	// The sequence cache must be re-synced before retrying.
	SequenceMismatch
	// TransactionRejected means the chain rejected the transaction for a
	// non-sequence reason. Carries the chain's diagnostic code and message.
	TransactionRejected
	// ConfirmationTimeout means the local wait for block inclusion expired.
	// The transaction may still land; its hash remains valid for lookup.
	ConfirmationTimeout
	// NetworkError means the node could not be reached after bounded retries.
	NetworkError
	// NotFound means the queried account, machine, object or index does not
	// exist at the requested height.
	NotFound
	// RangeNotSatisfiable means a byte range is inverted or starts past the
	// end of the object.
	RangeNotSatisfiable
)

func (k Kind) String() string {
	switch k {
	case InvalidKey:
		return "invalid key"
	case InvalidCall:
		return "invalid call"
	case SequenceMismatch:
		return "sequence mismatch"
	case TransactionRejected:
		return "transaction rejected"
	case ConfirmationTimeout:
		return "confirmation timeout"
	case NetworkError:
		return "network error"
	case NotFound:
		return "not found"
	case RangeNotSatisfiable:
		return "range not satisfiable"
	}
	return "unknown error"
}

// Error implements errors.Is against its Kind, so both of these work:
//
//	errors.Is(err, errs.NotFound)
//	var e *errs.Error; errors.As(err, &e)
func (k Kind) Error() string { return k.String() }

type Error struct {
	Kind Kind

	// Code is the chain's diagnostic code for TransactionRejected errors,
	// zero otherwise.
	Code uint32

	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind. Returns nil if err is nil.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg + ": " + err.Error(), cause: err}
}

// Rejected creates a TransactionRejected error carrying the chain's code.
func Rejected(code uint32, msg string) *Error {
	return &Error{Kind: TransactionRejected, Code: code, msg: msg}
}

// KindOf reports the Kind of err, or zero if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
