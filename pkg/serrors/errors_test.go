package serrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/serrors"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		serrors.RequiredName:            http.StatusBadRequest,
		serrors.EmailExists:             http.StatusConflict,
		serrors.CircularHierarchy:       http.StatusUnprocessableEntity,
		serrors.NotFound:                http.StatusNotFound,
		serrors.InsufficientPermissions: http.StatusForbidden,
		serrors.FetchError:              http.StatusInternalServerError,
		"SOMETHING_ELSE":                http.StatusInternalServerError,
	}
	for code, status := range cases {
		require.Equal(t, status, serrors.StatusFor(code), code)
	}
}

func TestBoundary(t *testing.T) {
	t.Parallel()

	require.NoError(t, serrors.Boundary(nil, serrors.CreateError))

	coded := serrors.New(serrors.HasChildren, "department has child departments")
	wrapped := fmt.Errorf("wrapped: %w", coded)
	require.Equal(t, wrapped, serrors.Boundary(wrapped, serrors.DeleteError))
	require.Equal(t, serrors.HasChildren, serrors.CodeOf(serrors.Boundary(wrapped, serrors.DeleteError)))
}

func TestBoundary_WrapsUncodedErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := serrors.Boundary(cause, serrors.UpdateError)

	svcErr, ok := serrors.As(err)
	require.True(t, ok)
	require.Equal(t, serrors.UpdateError, svcErr.Code)
	require.Equal(t, http.StatusInternalServerError, svcErr.Status)
	require.ErrorIs(t, err, cause)
}

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ctx: %w", serrors.New(serrors.SlugExists, "slug taken"))
	require.ErrorIs(t, err, serrors.New(serrors.SlugExists, "other message"))
	require.NotErrorIs(t, err, serrors.New(serrors.EmailExists, "slug taken"))
	require.Equal(t, serrors.SlugExists, serrors.CodeOf(err))
	require.Empty(t, serrors.CodeOf(errors.New("plain")))
}
