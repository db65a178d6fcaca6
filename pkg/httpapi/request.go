package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

// PathUUID parses the route variable name as a uuid.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, serrors.Wrap(serrors.InvalidID, "invalid "+name, err)
	}
	return id, nil
}

// QueryUUID parses an optional uuid query parameter.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, serrors.Wrap(serrors.InvalidID, "invalid "+name, err)
	}
	return &id, nil
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return serrors.Wrap(serrors.InvalidBody, "unable to parse request body", err)
	}
	return nil
}

// QueryPagination reads page, pageSize, sortBy and sortOrder. Services
// normalize the result.
func QueryPagination(r *http.Request) repo.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return repo.Pagination{
		Page:      page,
		PageSize:  size,
		SortBy:    q.Get("sortBy"),
		SortOrder: repo.SortOrder(q.Get("sortOrder")),
	}
}
