package vending

import (
	"errors"
	"fmt"
)

// Kind classifies a vending error so callers can branch on the failure
// class instead of matching error strings
type Kind int

const (
	KindNone Kind = iota
	// KindConnection covers transport failures reaching the vending host
	KindConnection
	// KindAuthentication covers rejected sign-in credentials
	KindAuthentication
	// KindUpstream covers structured refusals from the vending host
	KindUpstream
	// KindAuthorization covers callers vending against meters they do not own
	KindAuthorization
	// KindValidation covers rejected request parameters
	KindValidation
	// KindPersistence covers failures recording the transaction outcome
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuthentication:
		return "authentication"
	case KindUpstream:
		return "upstream"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	default:
		return "none"
	}
}

// Error is a classified vending failure
//
// Code and Message are set for KindUpstream errors and carry the vending
// host's error code and english message.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	cause error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("vending %s error %s: %s", e.Kind, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("vending %s error: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("vending %s error: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("vending %s error", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// KindOf returns the Kind of err, or KindNone if err is not a vending error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}
