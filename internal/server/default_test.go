package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/internal/server"
	"github.com/iota-uz/iota-admin/pkg/configuration"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

func testConf() *configuration.Configuration {
	return &configuration.Configuration{
		Storage:         configuration.StorageMemory,
		ViewCache:       configuration.ViewCacheOptions{Backend: configuration.CacheMemory, TTL: time.Minute},
		PageSize:        25,
		MaxPageSize:     100,
		InvitationTTL:   time.Hour,
		Origin:          "http://localhost:3000",
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
		ActorHeader:     "X-User-ID",
	}
}

func buildRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	rt, err := server.Bootstrap(context.Background(), testConf(), logger)
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	require.Nil(t, rt.Pool)

	srv, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: testConf(),
		Application:   rt.App,
	})
	require.NoError(t, err)
	return srv.Router()
}

func TestDefault_RegistersOnlyAPIRoutes(t *testing.T) {
	t.Parallel()
	router := buildRouter(t)

	var paths []string
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if tpl, err := route.GetPathTemplate(); err == nil && route.GetHandler() != nil {
			paths = append(paths, tpl)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)

	require.NotEmpty(t, paths)
	for _, p := range paths {
		require.True(t, strings.HasPrefix(p, "/api/"), "unexpected route %s", p)
	}
	for _, want := range []string{
		"/api/users/hierarchy",
		"/api/departments/hierarchy",
		"/api/organizations/{id}/members/{userId}",
		"/api/invitations/{id}/accept",
	} {
		require.Contains(t, paths, want)
	}
}

func TestDefault_ErrorContracts(t *testing.T) {
	t.Parallel()
	router := buildRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		header map[string]string
		status int
		code   string
	}{
		{"unknown route", http.MethodGet, "/api/__nonexistent__", nil, http.StatusNotFound, serrors.NotFound},
		{"wrong method", http.MethodPut, "/api/departments", nil, http.StatusMethodNotAllowed, serrors.MethodNotAllowed},
		{"malformed actor", http.MethodGet, "/api/users", map[string]string{"X-User-ID": "nope"}, http.StatusUnauthorized, serrors.Unauthenticated},
		{"anonymous write", http.MethodPost, "/api/organizations", nil, http.StatusUnauthorized, serrors.Unauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"name":"Acme","slug":"acme"}`))
			req.Header.Set("X-Request-ID", "req-"+strings.ReplaceAll(tc.name, " ", "-"))
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			require.Equal(t, req.Header.Get("X-Request-ID"), rec.Header().Get("X-Request-Id"))

			var payload httpapi.ActionResult[any]
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
			require.False(t, payload.Success)
			require.Equal(t, tc.code, payload.Code)
		})
	}
}

func TestDefault_ServesListEnvelope(t *testing.T) {
	t.Parallel()
	router := buildRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/departments?page=1&pageSize=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]any)
	require.EqualValues(t, 0, data["total"])
	require.EqualValues(t, 10, data["pageSize"])
	require.Equal(t, []any{}, data["items"])
}
