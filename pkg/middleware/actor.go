package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

// ProvideActor reads the signed-in user id that the authenticating proxy
// forwards in header. Requests without it continue anonymously; a malformed
// id is rejected.
func ProvideActor(header string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				_ = httpapi.WriteError(w, serrors.New(serrors.Unauthenticated, "malformed user id header"))
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithActorID(r.Context(), id)))
		})
	}
}
