package sitelens

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EFETCH    = "fetch"
	ETIMEOUT  = "timeout"
)

// Error represents an application-specific error. The message is safe to
// show to end users.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	var fe *FetchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return EFETCH
	case errors.As(err, &e):
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Other errors return their own text.
func ErrorMessage(err error) string {
	var e *Error
	var fe *FetchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return fe.Error()
	case errors.As(err, &e):
		return e.Message
	}
	return err.Error()
}

// FetchError is returned when every fetch strategy failed for a URL.
type FetchError struct {
	URL      string
	Primary  error
	Fallback error
}

func (e *FetchError) Error() string {
	switch {
	case e.Primary != nil && e.Fallback != nil:
		return fmt.Sprintf("Failed to fetch page with browser automation: %s. Also tried simple HTTP request but failed: %s",
			ErrorMessage(e.Primary), ErrorMessage(e.Fallback))
	case e.Primary != nil:
		return fmt.Sprintf("Failed to fetch page: %s", ErrorMessage(e.Primary))
	case e.Fallback != nil:
		return fmt.Sprintf("Failed to fetch page: %s", ErrorMessage(e.Fallback))
	}
	return fmt.Sprintf("Failed to fetch page %s", e.URL)
}

// Unwrap returns the underlying strategy errors.
func (e *FetchError) Unwrap() []error {
	var errs []error
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}

// IsTransient reports whether err is a timeout or gateway-timeout class
// failure that is worth retrying. Fetch failures are never transient.
func IsTransient(err error) bool {
	if err == nil || ErrorCode(err) == EFETCH {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || ErrorCode(err) == ETIMEOUT {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "504") ||
		strings.Contains(msg, "deadline exceeded")
}
