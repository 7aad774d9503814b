// ABOUTME: Typed failures produced by the request pipeline
// ABOUTME: Each failure carries a kind, the HTTP status when one was received, and the user-facing message

package client

import (
	"errors"
	"fmt"
)

// Kind classifies why a request failed.
type Kind int

const (
	KindBusiness Kind = iota // 2xx with success=false
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindServer
	KindHTTP // any other non-2xx status
	KindTimeout
	KindCanceled
	KindNetwork
	KindDecode
	KindRequest // the outbound request could not be built
)

func (k Kind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindServer:
		return "server"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// User-facing messages
const (
	MsgSessionExpired   = "Session expired, please log in again"
	MsgForbidden        = "You do not have permission to access this resource"
	MsgNotFound         = "The requested resource does not exist"
	MsgMethodNotAllowed = "Method not allowed, please refresh or contact the administrator"
	MsgServerError      = "Server error"
	MsgRequestFailed    = "Request failed"
	MsgTimeout          = "Request timed out, please try again later"
	MsgCanceled         = "Request canceled"
	MsgNetwork          = "Network error, please check your connection"
	MsgInvalidResponse  = "Invalid response from backend"
)

// Error is returned by every failed call through the pipeline. Message is
// the exact text that was shown to the user.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Message    string
	Detail     string // server-supplied error or message, if any
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind so callers can write errors.Is(err, ErrUnauthorized).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.StatusCode == 0 && t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrBusiness         = &Error{Kind: KindBusiness}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrMethodNotAllowed = &Error{Kind: KindMethodNotAllowed}
	ErrServer           = &Error{Kind: KindServer}
	ErrHTTP             = &Error{Kind: KindHTTP}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrCanceled         = &Error{Kind: KindCanceled}
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrDecode           = &Error{Kind: KindDecode}
)

// Message extracts the user-facing message from err when it came from the
// pipeline. ok is false for any other error.
func Message(err error) (msg string, ok bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message, true
	}
	return "", false
}
