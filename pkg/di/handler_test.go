package di_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/constants"
	"github.com/iota-uz/iota-admin/pkg/di"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
)

type counterService struct{ hits int }

func withApp(r *http.Request, app application.Application) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), constants.AppKey, app))
}

func TestH_ResolvesParameters(t *testing.T) {
	t.Parallel()

	app := application.New(&application.ApplicationOptions{EventBus: eventbus.NewEventPublisher(nil)})
	svc := &counterService{}
	app.RegisterServices(svc)

	h := di.H(func(w http.ResponseWriter, r *http.Request, ctx context.Context, log *logrus.Entry, a application.Application, s *counterService) {
		require.NotNil(t, ctx)
		require.NotNil(t, log)
		require.Same(t, app, a)
		s.hits++
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withApp(httptest.NewRequest(http.MethodGet, "/", nil), app))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, svc.hits)
}

func TestH_UnknownServiceIsFetchError(t *testing.T) {
	t.Parallel()

	app := application.New(&application.ApplicationOptions{})
	h := di.H(func(w http.ResponseWriter, s *counterService) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withApp(httptest.NewRequest(http.MethodGet, "/", nil), app))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "FETCH_ERROR")
}

func TestH_PanicsOnNonFunc(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { di.H(42) })
}
