package auth

import "errors"

// Kind is a closed set of auth failure categories produced at the provider
// boundary, so handlers never have to substring-match error text.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailTaken         Kind = "email_taken"
	KindEmailUnconfirmed   Kind = "email_unconfirmed"
	KindRateLimited        Kind = "rate_limited"
	KindInternal           Kind = "internal"
)

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with an auth kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
