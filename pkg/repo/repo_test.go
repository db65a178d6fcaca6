package repo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

func TestQueryHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "SELECT 1 WHERE a = $1", repo.Join("SELECT 1", "", repo.JoinWhere("a = $1")))
	require.Equal(t, "WHERE a AND b", repo.JoinWhere("a", "b"))
	require.Empty(t, repo.JoinWhere())
	require.Equal(t, "LIMIT 10 OFFSET 20", repo.FormatLimitOffset(10, 20))
	require.Equal(t, "LIMIT 10", repo.FormatLimitOffset(10, 0))
	require.Empty(t, repo.FormatLimitOffset(0, 0))
}

func TestPagination_Normalize(t *testing.T) {
	t.Parallel()

	p := repo.Pagination{Page: 0, PageSize: 500, SortBy: "password", SortOrder: "DESC"}.
		Normalize(25, 100, []string{"name", "email"}, "name")
	require.Equal(t, repo.Pagination{Page: 1, PageSize: 100, SortBy: "name", SortOrder: repo.SortDesc}, p)

	p = repo.Pagination{Page: 3, SortBy: "email"}.Normalize(25, 100, []string{"name", "email"}, "name")
	require.Equal(t, 25, p.Limit())
	require.Equal(t, 50, p.Offset())
	require.Equal(t, "email", p.SortBy)
	require.Equal(t, repo.SortAsc, p.SortOrder)
}

func TestNewPageAndSlice(t *testing.T) {
	t.Parallel()

	all := []int{1, 2, 3, 4, 5}
	p := repo.Pagination{Page: 2, PageSize: 2}
	page := repo.NewPage(repo.Slice(all, p), len(all), p)
	require.Equal(t, []int{3, 4}, page.Items)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 5, page.Total)

	empty := repo.NewPage[int](nil, 0, repo.Pagination{Page: 1, PageSize: 10})
	require.NotNil(t, empty.Items)
	require.Zero(t, empty.TotalPages)
	require.Empty(t, repo.Slice(all, repo.Pagination{Page: 9, PageSize: 2}))
}

type fakeStoreError struct{ v repo.Violation }

func (e fakeStoreError) Error() string { return "store violation" }
func (e fakeStoreError) StoreViolation() repo.Violation { return e.v }

func TestMapError(t *testing.T) {
	t.Parallel()

	codes := map[string]repo.ConstraintCode{
		"users_email_key": {Code: serrors.EmailExists, Message: "email already exists"},
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := repo.MapError(fmt.Errorf("insert: %w", pgErr), codes, serrors.CreateError)
	require.Equal(t, serrors.EmailExists, serrors.CodeOf(err))

	storeErr := fakeStoreError{v: repo.Violation{Kind: repo.UniqueViolation, Constraint: "users_email_key"}}
	require.Equal(t, serrors.EmailExists, serrors.CodeOf(repo.MapError(storeErr, codes, serrors.CreateError)))

	unknown := &pgconn.PgError{Code: "23503", ConstraintName: "something_fkey"}
	require.Equal(t, serrors.CreateError, serrors.CodeOf(repo.MapError(unknown, codes, serrors.CreateError)))

	coded := serrors.New(serrors.HasChildren, "has children")
	require.Equal(t, coded, repo.MapError(coded, codes, serrors.DeleteError))

	require.Equal(t, serrors.UpdateError, serrors.CodeOf(repo.MapError(errors.New("timeout"), codes, serrors.UpdateError)))
	require.NoError(t, repo.MapError(nil, codes, serrors.UpdateError))
}

type recordingTransactor struct{ calls int }

func (r *recordingTransactor) InTx(ctx context.Context, fn func(context.Context) error) error {
	r.calls++
	return fn(ctx)
}

func TestInTxResult(t *testing.T) {
	t.Parallel()

	tr := &recordingTransactor{}
	out, err := repo.InTxResult(context.Background(), tr, func(context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	require.Equal(t, "done", out)

	boom := errors.New("boom")
	out, err = repo.InTxResult(context.Background(), tr, func(context.Context) (string, error) {
		return "partial", boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, out)
	require.Equal(t, 2, tr.calls)
}
