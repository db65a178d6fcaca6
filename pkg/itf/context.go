// Package itf builds a fully wired application over the in-memory store for
// service and HTTP tests.
package itf

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-admin/modules"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/constants"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/middleware"
	"github.com/iota-uz/iota-admin/pkg/server"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

// ActorHeader carries the acting user id on test requests.
const ActorHeader = "X-User-ID"

// TestContext provides a builder pattern for setting up test environments
type TestContext struct {
	ctx    context.Context
	actor  uuid.UUID
	now    func() time.Time
	logger *logrus.Logger
	opts   modules.Options
}

// NewTestContext creates a new test context builder
func NewTestContext() *TestContext {
	return &TestContext{
		ctx: context.Background(),
		opts: modules.Options{
			PageSize:    25,
			MaxPageSize: 100,
		},
	}
}

// WithActor sets the user the environment context acts as.
func (tc *TestContext) WithActor(id uuid.UUID) *TestContext {
	tc.actor = id
	return tc
}

// WithClock replaces the services' clock.
func (tc *TestContext) WithClock(now func() time.Time) *TestContext {
	tc.now = now
	return tc
}

func (tc *TestContext) WithLogger(logger *logrus.Logger) *TestContext {
	tc.logger = logger
	return tc
}

func (tc *TestContext) WithPageSize(size, max int) *TestContext {
	tc.opts.PageSize = size
	tc.opts.MaxPageSize = max
	return tc
}

// Build wires the built-in modules over a fresh store.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	logger := tc.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	db := memstore.New()
	stores := modules.NewMemoryStores(db)
	bus := eventbus.NewEventPublisher(logger)
	cache := viewcache.NewMemory(time.Minute)
	viewcache.Subscribe(bus, cache, logger)

	app := application.New(&application.ApplicationOptions{
		Transactor: db,
		EventBus:   bus,
		ViewCache:  cache,
		Logger:     logger,
	})
	opts := tc.opts
	opts.Now = tc.now
	if err := modules.Load(app, modules.BuiltInModules(stores, opts)...); err != nil {
		tb.Fatal(err)
	}
	app.RegisterMiddleware(
		middleware.Provide(constants.AppKey, app),
		middleware.ProvideActor(ActorHeader),
	)

	ctx := composables.WithLogger(tc.ctx, logrus.NewEntry(logger))
	if tc.actor != uuid.Nil {
		ctx = composables.WithActorID(ctx, tc.actor)
	}

	return &TestEnvironment{
		Ctx:    ctx,
		App:    app,
		DB:     db,
		Stores: stores,
		router: server.NewHTTPServer(app, httpapi.NotFound(), httpapi.MethodNotAllowed()).Router(),
	}
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	Ctx    context.Context
	App    application.Application
	DB     *memstore.DB
	Stores modules.Stores

	router *mux.Router
}

// GetService is a generic helper that retrieves and casts a service
func GetService[T any](te *TestEnvironment) *T {
	var zero T
	service := te.App.Service(zero)
	if service == nil {
		return nil
	}
	return service.(*T)
}

// AsActor returns the environment context acting as id.
func (te *TestEnvironment) AsActor(id uuid.UUID) context.Context {
	return composables.WithActorID(te.Ctx, id)
}

// Do sends a request through the full middleware stack. A non-nil body is
// encoded as JSON; a nil actor sends the request anonymously.
func (te *TestEnvironment) Do(tb testing.TB, actor uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	tb.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			tb.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != uuid.Nil {
		req.Header.Set(ActorHeader, actor.String())
	}
	rec := httptest.NewRecorder()
	te.router.ServeHTTP(rec, req)
	return rec
}

// Decode reads the response envelope written by httpapi.
func Decode[T any](tb testing.TB, rec *httptest.ResponseRecorder) httpapi.ActionResult[T] {
	tb.Helper()

	var result httpapi.ActionResult[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		tb.Fatalf("decode %s response %q: %v", http.StatusText(rec.Code), rec.Body.String(), err)
	}
	return result
}
