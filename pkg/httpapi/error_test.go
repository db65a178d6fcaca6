package httpapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteOK(rec, http.StatusCreated, map[string]string{"id": "1"}))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, map[string]any{"id": "1"}, body["data"])
	require.NotContains(t, body, "code")
}

func TestWriteError_Coded(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteError(rec, serrors.New(serrors.CircularHierarchy, "would create a cycle")))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "CIRCULAR_HIERARCHY", body["code"])
	require.Equal(t, "would create a cycle", body["error"])
}

func TestWriteError_Uncoded(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteError(rec, errors.New("dial tcp: refused")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "FETCH_ERROR", body["code"])
	require.NotContains(t, body["error"], "dial tcp")
}

func TestFallbackHandlers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpapi.NotFound().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, serrors.NotFound, decode(t, rec)["code"])

	rec = httptest.NewRecorder()
	httpapi.MethodNotAllowed().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, serrors.MethodNotAllowed, decode(t, rec)["code"])
}
