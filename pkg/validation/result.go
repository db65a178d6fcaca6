// Package validation provides validation results, composable validator
// chains and the stateless input checks shared by every entity.
package validation

import "github.com/iota-uz/iota-admin/pkg/serrors"

// Result is the outcome of one validation step. The zero value is success.
type Result struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK() Result {
	return Result{}
}

func Fail(code, message string) Result {
	return Result{Code: code, Message: message}
}

func (r Result) Failed() bool {
	return r.Code != ""
}

// Err converts a failed result into a service error. A successful result yields nil.
func (r Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return serrors.New(r.Code, r.Message)
}
