// Package serrors carries coded service errors across the service boundary.
package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the only error type services return to their callers. Code is
// stable and machine readable, Message is meant for display.
type Error struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func New(code, message string) *Error {
	return &Error{Status: StatusFor(code), Code: code, Message: message}
}

func Wrap(code, message string, cause error) *Error {
	return &Error{Status: StatusFor(code), Code: code, Message: message, Cause: cause}
}

// As extracts the coded error from err.
func As(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or the empty string.
func CodeOf(err error) string {
	if svcErr, ok := As(err); ok {
		return svcErr.Code
	}
	return ""
}

// Boundary makes sure an error leaving a service is coded. Coded errors pass
// through untouched, anything else is wrapped with the fallback
// infrastructure code.
func Boundary(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(fallback, infrastructureMessages[fallback], err)
}

var infrastructureMessages = map[string]string{
	CreateError: "failed to create record",
	UpdateError: "failed to update record",
	DeleteError: "failed to delete record",
	FetchError:  "failed to fetch record",
}

// StatusFor maps a code to the HTTP status used to render it.
func StatusFor(code string) int {
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
