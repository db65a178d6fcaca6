package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

func TestPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id.String()})
	got, err := httpapi.PathUUID(r, "id")
	require.NoError(t, err)
	require.Equal(t, id, got)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "nope"})
	_, err = httpapi.PathUUID(r, "id")
	require.Equal(t, serrors.InvalidID, serrors.CodeOf(err))
}

func TestQueryHelpers(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?page=2&pageSize=10&sortBy=name&sortOrder=desc&managerId="+id.String(), nil)
	require.Equal(t, repo.Pagination{Page: 2, PageSize: 10, SortBy: "name", SortOrder: repo.SortDesc}, httpapi.QueryPagination(r))

	got, err := httpapi.QueryUUID(r, "managerId")
	require.NoError(t, err)
	require.Equal(t, id, *got)

	missing, err := httpapi.QueryUUID(r, "departmentId")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	var body struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := httpapi.DecodeJSON(r, &body)
	require.Equal(t, serrors.InvalidBody, serrors.CodeOf(err))
}
