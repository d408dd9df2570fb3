package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindInvalidSignature
	KindValidation
	KindUpstreamGateway
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:          "Internal",
	KindUnauthorized:      "Unauthorized",
	KindForbidden:         "Forbidden",
	KindNotFound:          "NotFound",
	KindInsufficientStock: "InsufficientStock",
	KindInvalidSignature:  "InvalidSignature",
	KindValidation:        "ValidationError",
	KindUpstreamGateway:   "UpstreamGatewayError",
	KindConflict:          "Conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindInvalidSignature, KindValidation:
		return http.StatusBadRequest
	case KindUpstreamGateway:
		return http.StatusBadGateway
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type services hand to the HTTP boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality against the bare sentinels below, so
// errors.Is(err, apperr.ErrNotFound) matches any NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrInvalidSignature  = &Error{Kind: KindInvalidSignature}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUpstreamGateway   = &Error{Kind: KindUpstreamGateway}
	ErrConflict          = &Error{Kind: KindConflict}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is the text safe to show a client: internal causes are hidden.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal error"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}
