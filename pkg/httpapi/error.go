package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iota-uz/iota-admin/pkg/serrors"
)

// ActionResult is the envelope every API response is written in.
type ActionResult[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteOK writes a successful result carrying data.
func WriteOK[T any](w http.ResponseWriter, status int, data T) error {
	return WriteJSON(w, status, ActionResult[T]{Success: true, Data: data})
}

// WriteError writes a failed result. Coded errors keep their status and
// code, anything else is reported as an internal fetch error without its
// cause text.
func WriteError(w http.ResponseWriter, err error) error {
	svcErr, ok := serrors.As(err)
	if !ok {
		svcErr = serrors.Wrap(serrors.FetchError, "unexpected error", err)
	}
	status := svcErr.Status
	if status == 0 {
		status = serrors.StatusFor(svcErr.Code)
	}
	return WriteJSON(w, status, ActionResult[any]{
		Success: false,
		Error:   svcErr.Message,
		Code:    svcErr.Code,
	})
}

// NotFound answers unmatched routes with a NOT_FOUND envelope.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, serrors.New(serrors.NotFound, "no route for "+r.URL.Path))
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, serrors.New(serrors.MethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path))
	})
}
