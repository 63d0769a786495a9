package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these so callers can
// classify failures with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrStreakAlreadyUpdated is returned when the goal-met event fires twice on
// the same calendar day.
var ErrStreakAlreadyUpdated = Conflict("Streak already updated today", "You can only update your streak once per day")

// Error is a classified failure carrying the user-facing title and message.
// Raw holds an upstream payload (e.g. unparseable model output) when one is
// worth returning to the caller.
type Error struct {
	Kind    error
	Title   string
	Message string
	Code    string
	Raw     string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Title, e.Err)
	case e.Message != "":
		return e.Title + ": " + e.Message
	}
	return e.Title
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Invalid builds an InvalidInput error.
func Invalid(title, message string) *Error {
	return &Error{Kind: ErrInvalidInput, Title: title, Message: message}
}

// NotFound builds a NotFound error.
func NotFound(title, message string) *Error {
	return &Error{Kind: ErrNotFound, Title: title, Message: message}
}

// Conflict builds a Conflict error.
func Conflict(title, message string) *Error {
	return &Error{Kind: ErrConflict, Title: title, Message: message}
}

// Upstream wraps a failure from a collaborator (database, storage, AI model).
func Upstream(title string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: ErrUpstream, Title: title, Message: msg, Err: err}
}

// Unauthorized builds an authentication failure with a machine-readable code.
func Unauthorized(code, message string) *Error {
	return &Error{Kind: ErrUnauthorized, Title: "Unauthorized", Message: message, Code: code}
}

// WithRaw attaches the raw upstream payload.
func (e *Error) WithRaw(raw string) *Error {
	e.Raw = raw
	return e
}
