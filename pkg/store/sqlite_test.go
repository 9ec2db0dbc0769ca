package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/noticeboard/internal/testutil"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore migrates a fresh database file and returns a store over it.
func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "store.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db, DialectSQLite))

	s := New(db, Options{Dialect: DialectSQLite, Logger: logger})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUsers(t *testing.T, s *Store, names ...string) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range names {
		at := base.Add(time.Duration(i) * time.Minute)
		res := s.Insert(context.Background(), "users", core.Row{
			"id":            fmt.Sprintf("u%d", i+1),
			"username":      name,
			"email":         name + "@example.com",
			"password_hash": "x",
			"created_at":    at,
			"updated_at":    at,
		})
		require.NoError(t, res.Err)
		require.Equal(t, int64(1), res.RowCount)
		assert.Equal(t, name, res.First()["username"])
	}
}

func TestSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	seedUsers(t, s, "ann_lee", "annxlee", "ANNIE", "bob", "carol")

	byID := query.Where{query.Eq("id", "u2")}
	first := s.Find(ctx, "users", byID, query.One)
	require.NoError(t, first.Err)
	require.NotNil(t, first.Row)
	again := s.Find(ctx, "users", byID, query.One)
	require.NoError(t, again.Err)
	assert.Equal(t, first.Row, again.Row)

	updated := s.Update(ctx, "users", byID, core.Row{"bio": "hello"}, 1)
	require.NoError(t, updated.Err)
	require.True(t, updated.Success())
	assert.Equal(t, "hello", updated.First()["bio"])

	missing := s.Update(ctx, "users", query.Where{query.Eq("id", "nobody")}, core.Row{"bio": "x"}, 1)
	require.NoError(t, missing.Err)
	assert.False(t, missing.Success())

	deleted := s.Delete(ctx, "users", query.Where{query.Eq("username", "bob")}, 1)
	require.NoError(t, deleted.Err)
	assert.Equal(t, int64(1), deleted.RowCount)

	meta := s.Count(ctx, "users", nil)
	require.NoError(t, meta.Err)
	assert.Equal(t, int64(4), meta.RowCount)

	_, err := s.FindOneOrFail(ctx, "users", query.Where{query.Eq("username", "bob")}, "user not found")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLite_ListMetaIndependentOfPagination(t *testing.T) {
	s := newSQLiteStore(t)
	seedUsers(t, s, "ann_lee", "annxlee", "ANNIE", "bob", "carol")

	tests := []struct {
		page     query.Page
		wantRows int
	}{
		{page: query.Page{}, wantRows: 5},
		{page: query.Page{Limit: 2}, wantRows: 2},
		{page: query.Page{Offset: 3, Limit: 2}, wantRows: 2},
		{page: query.Page{Offset: 10}, wantRows: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset %d limit %d", tt.page.Offset, tt.page.Limit), func(t *testing.T) {
			res := s.List(context.Background(), ListQuery{Table: "users", Page: tt.page})
			require.NoError(t, res.Err)
			assert.Equal(t, int64(5), res.Meta.RowCount)
			assert.Len(t, res.Rows, tt.wantRows)
		})
	}

	newest := s.List(context.Background(), ListQuery{Table: "users", Page: query.One})
	require.NoError(t, newest.Err)
	require.Len(t, newest.Rows, 1)
	assert.Equal(t, "carol", newest.Rows[0]["username"])
}

func TestSQLite_SubstringSearch(t *testing.T) {
	s := newSQLiteStore(t)
	seedUsers(t, s, "ann_lee", "annxlee", "ANNIE", "bob", "carol")

	tests := []struct {
		needle string
		want   int64
	}{
		{needle: "ann", want: 3},
		{needle: "n_l", want: 1},
		{needle: "%", want: 0},
		{needle: "_", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			res := s.List(context.Background(), ListQuery{
				Table: "users",
				Where: query.Where{query.Contains("username", tt.needle)},
			})
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Meta.RowCount)
			assert.Len(t, res.Rows, int(tt.want))
		})
	}
}
