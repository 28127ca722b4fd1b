package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates every failure class the anchoring service can surface.
// Callers branch on Kind rather than on error strings.
type Kind int

const (
	// Configuration : missing or invalid master key or collaborator setup, fatal at startup
	Configuration Kind = iota + 1
	// InsufficientFunds : no funding output can cover dust plus fee
	InsufficientFunds
	// Derivation : child key derivation failed, a programming defect given valid inputs
	Derivation
	// Broadcast : network submission failed or timed out ambiguously
	Broadcast
	// Persistence : store unavailable or write rejected
	Persistence
	// ReconciliationRequired : on-chain anchor exists but the off-chain write failed
	ReconciliationRequired
	// NotFound : no record for the requested business id
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case InsufficientFunds:
		return "insufficient funds"
	case Derivation:
		return "derivation failure"
	case Broadcast:
		return "broadcast error"
	case Persistence:
		return "persistence failure"
	case ReconciliationRequired:
		return "reconciliation required"
	case NotFound:
		return "not found"
	}
	return "unknown error"
}

// Error carries a Kind, a message, an optional orphaned transaction id
// (ReconciliationRequired only) and the wrapped cause.
type Error struct {
	kind    Kind
	message string
	txID    string
	wrapped error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, wrapped: cause}
}

// NewReconciliation flags an anchor that made it on chain without a matching
// off-chain record. The txid identifies the orphaned transaction for repair.
func NewReconciliation(txID string, message string, cause error) *Error {
	return &Error{kind: ReconciliationRequired, message: message, txID: txID, wrapped: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.wrapped == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.message)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.message, e.wrapped.Error())
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

func (e *Error) Kind() Kind {
	return e.kind
}

// TxID returns the orphaned transaction id, empty unless the kind is
// ReconciliationRequired.
func (e *Error) TxID() string {
	return e.txID
}

// Is reports whether err is an *Error of the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

// TxIDOf extracts the orphaned transaction id from a reconciliation error,
// or "" if err is not one.
func TxIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.kind == ReconciliationRequired {
		return e.txID
	}
	return ""
}
