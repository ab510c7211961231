package apperrors

import (
	"errors"
	"fmt"
)

// Kind razvrstava greške u kategorije koje handleri mapiraju na HTTP statuse,
// umesto poredjenja teksta poruke iz baze.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidCredentials
	KindIdentityMismatch
	KindDuplicateEmail
	KindPermissionDenied
	KindInvalidInput
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindIdentityMismatch:
		return "identity mismatch"
	case KindDuplicateEmail:
		return "duplicate email"
	case KindPermissionDenied:
		return "permission denied"
	case KindInvalidInput:
		return "invalid input"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E kreira novu gresku sa zadatim kind-om.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap zadržava uzrok radi logovanja, a kind radi klasifikacije.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf vraća kind greške, ili KindInternal za nepoznate greške.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
