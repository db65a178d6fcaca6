// Package di resolves HTTP handler parameters per request: the response
// writer, the request, its context, the request logger, the application and
// any service registered in it.
package di

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/constants"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

var (
	writerType  = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	requestType = reflect.TypeOf((*http.Request)(nil))
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	entryType   = reflect.TypeOf((*logrus.Entry)(nil))
	appType     = reflect.TypeOf((*application.Application)(nil)).Elem()
)

// UseApp returns the application provided under constants.AppKey.
func UseApp(ctx context.Context) (application.Application, bool) {
	app, ok := ctx.Value(constants.AppKey).(application.Application)
	return app, ok
}

// H turns handler into an http.HandlerFunc. It panics when handler is not a
// func; unresolvable parameters are reported per request as FETCH_ERROR.
func H(handler interface{}) http.HandlerFunc {
	v := reflect.ValueOf(handler)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("di: handler must be a func, got %s", t))
	}
	return func(w http.ResponseWriter, r *http.Request) {
		args := make([]reflect.Value, t.NumIn())
		for i := range args {
			arg, err := resolve(t.In(i), w, r)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Error("failed to resolve handler dependency")
				_ = httpapi.WriteError(w, serrors.Wrap(serrors.FetchError, "handler dependency unavailable", err))
				return
			}
			args[i] = arg
		}
		v.Call(args)
	}
}

func resolve(t reflect.Type, w http.ResponseWriter, r *http.Request) (reflect.Value, error) {
	ctx := r.Context()
	switch t {
	case writerType:
		return reflect.ValueOf(&w).Elem(), nil
	case requestType:
		return reflect.ValueOf(r), nil
	case contextType:
		return reflect.ValueOf(&ctx).Elem(), nil
	case entryType:
		return reflect.ValueOf(composables.UseLogger(ctx)), nil
	}

	app, ok := UseApp(ctx)
	if !ok {
		return reflect.Value{}, fmt.Errorf("di: no application in context for %s", t)
	}
	if t == appType {
		return reflect.ValueOf(&app).Elem(), nil
	}
	if t.Kind() == reflect.Ptr {
		if svc, ok := app.Services()[t.Elem()]; ok {
			return reflect.ValueOf(svc), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("di: cannot resolve %s", t)
}
