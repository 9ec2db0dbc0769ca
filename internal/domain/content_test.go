package domain

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertPostSQL = "INSERT INTO posts (body, created_at, created_by, id, slug, title, updated_at, updated_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING *"
	findPostSQL   = "SELECT * FROM posts WHERE id = $1 LIMIT $2"
	updatePostSQL = "UPDATE posts SET body = $1, updated_at = $2, updated_by = $3 WHERE id = $4 RETURNING *"
)

func TestPost_CreateThenUpdateByOwnerOnly(t *testing.T) {
	f := newFixture(t, "p1")
	ctx := context.Background()

	f.mock.ExpectPrepare(insertPostSQL).ExpectQuery().
		WithArgs("", sqlmock.AnyArg(), "A", "p1", "hello-world", "Hello World", sqlmock.AnyArg(), "A").
		WillReturnRows(postRow("p1", "Hello World", "A"))

	reply, err := f.dispatcher.Dispatch(ctx, as("A"), "post_create", "", action.Input{"title": "Hello World"})
	require.NoError(t, err)
	created, ok := reply.Data.(PostWithAssets)
	require.True(t, ok)
	assert.Equal(t, "hello-world", created.Post["slug"])
	assert.Empty(t, created.AssetIDs)

	find := f.mock.ExpectPrepare(findPostSQL)
	find.ExpectQuery().WithArgs("p1", 1).WillReturnRows(postRow("p1", "Hello World", "A"))
	find.ExpectQuery().WithArgs("p1", 1).WillReturnRows(postRow("p1", "Hello World", "A"))
	f.mock.ExpectPrepare(updatePostSQL).ExpectQuery().
		WithArgs("new body", sqlmock.AnyArg(), "A", "p1").
		WillReturnRows(postRow("p1", "Hello World", "A"))

	_, err = f.dispatcher.Dispatch(ctx, as("B"), "post_update", "p1", action.Input{"body": "new body"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)

	reply, err = f.dispatcher.Dispatch(ctx, as("A"), "post_update", "p1", action.Input{"body": "new body"})
	require.NoError(t, err)
	assert.Empty(t, reply.Error)
	assert.Equal(t, "p1", reply.Data.(core.Row)["id"])

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_CreateRequiresCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.Dispatch(context.Background(), anonymous(), "post_create", "", action.Input{"title": "x"})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_CreateValidatesTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.Dispatch(context.Background(), as("A"), "post_create", "", action.Input{"body": "no title"})
	assert.ErrorIs(t, err, core.ErrBadRequest)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_CreateLinksOwnedAssets(t *testing.T) {
	f := newFixture(t, "p1")
	ctx := context.Background()
	assetCols := []string{"id", "user_id", "url", "mime_type", "size_bytes", "created_at"}

	f.mock.ExpectPrepare(insertPostSQL).ExpectQuery().
		WillReturnRows(postRow("p1", "With pictures", "A"))
	findAsset := f.mock.ExpectPrepare("SELECT * FROM assets WHERE id = $1 LIMIT $2")
	findAsset.ExpectQuery().WithArgs("a1", 1).
		WillReturnRows(sqlmock.NewRows(assetCols).AddRow("a1", "A", "https://cdn/a1.png", "image/png", 10, testNow))
	f.mock.ExpectPrepare("INSERT INTO post_assets (asset_id, created_at, post_id) VALUES ($1, $2, $3) RETURNING *").
		ExpectQuery().WithArgs("a1", sqlmock.AnyArg(), "p1").
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "asset_id", "created_at"}).AddRow("p1", "a1", testNow))
	findAsset.ExpectQuery().WithArgs("a2", 1).
		WillReturnRows(sqlmock.NewRows(assetCols).AddRow("a2", "B", "https://cdn/a2.png", "image/png", 10, testNow))

	reply, err := f.dispatcher.Dispatch(ctx, as("A"), "post_create", "", action.Input{
		"title":     "With pictures",
		"asset_ids": []any{"a1", "a2"},
	})
	require.NoError(t, err)
	out := reply.Data.(PostWithAssets)
	assert.Equal(t, "with-pictures", out.Post["slug"])
	assert.Equal(t, []string{"a1"}, out.AssetIDs)
	require.Len(t, out.LinkErrors, 1)
	assert.Contains(t, out.LinkErrors[0], "a2")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_UpdateRederivesSlug(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectPrepare(findPostSQL).ExpectQuery().WithArgs("p1", 1).
		WillReturnRows(postRow("p1", "Old", "A"))
	f.mock.ExpectPrepare("UPDATE posts SET slug = $1, title = $2, updated_at = $3, updated_by = $4 WHERE id = $5 RETURNING *").
		ExpectQuery().WithArgs("brand-new-title", "Brand New Title", sqlmock.AnyArg(), "A", "p1").
		WillReturnRows(postRow("p1", "Brand New Title", "A"))

	reply, err := f.dispatcher.Dispatch(context.Background(), as("A"), "post_update", "p1", action.Input{"title": "Brand New Title"})
	require.NoError(t, err)
	assert.Equal(t, "brand-new-title", reply.Data.(core.Row)["slug"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_UpdateMissingRow(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectPrepare(findPostSQL).ExpectQuery().WithArgs("nope", 1).
		WillReturnRows(sqlmock.NewRows(postColumns))

	_, err := f.dispatcher.Dispatch(context.Background(), as("A"), "post_update", "nope", action.Input{"body": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, "post not found", core.MessageOf(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	find := f.mock.ExpectPrepare(findPostSQL)
	find.ExpectQuery().WithArgs("p1", 1).WillReturnRows(postRow("p1", "Mine", "A"))
	find.ExpectQuery().WithArgs("p1", 1).WillReturnRows(postRow("p1", "Mine", "A"))
	f.mock.ExpectPrepare("DELETE FROM posts WHERE id = $1 LIMIT $2").
		ExpectExec().WithArgs("p1", 1).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := f.dispatcher.Dispatch(ctx, as("B"), "post_delete", "p1", nil)
	assert.ErrorIs(t, err, core.ErrForbidden)

	reply, err := f.dispatcher.Dispatch(ctx, as("A"), "post_delete", "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, Deleted{ID: "p1", Deleted: 1}, reply.Data)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPost_GetBySlug(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectPrepare("SELECT * FROM posts WHERE slug = $1 LIMIT $2").ExpectQuery().
		WithArgs("hello-world", 1).WillReturnRows(postRow("p1", "Hello World", "A"))

	reply, err := f.dispatcher.Dispatch(context.Background(), anonymous(), "post_get", "", action.Input{"slug": "hello-world"})
	require.NoError(t, err)
	assert.Equal(t, "p1", reply.Data.(core.Row)["id"])

	_, err = f.dispatcher.Dispatch(context.Background(), anonymous(), "post_get", "", nil)
	assert.ErrorIs(t, err, core.ErrBadRequest)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestContent_List(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		rc        action.RequestContext
		in        action.Input
		countSQL  string
		listSQL   string
		countArgs []any
		listArgs  []any
	}{
		{
			name:     "posts newest first",
			action:   "post_list",
			rc:       anonymous(),
			in:       action.Input{"limit": "5"},
			countSQL: "SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM posts) q",
			listSQL:  "SELECT * FROM posts ORDER BY created_at DESC LIMIT $1",
			listArgs: []any{5},
		},
		{
			name:      "adverts by category",
			action:    "advert_list",
			rc:        anonymous(),
			in:        action.Input{"category": "Bikes", "offset": 10},
			countSQL:  "SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM adverts WHERE category = $1) q",
			listSQL:   "SELECT * FROM adverts WHERE category = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3",
			countArgs: []any{"bikes"},
			listArgs:  []any{"bikes", 10, 20},
		},
		{
			name:      "articles hide drafts from others",
			action:    "article_list",
			rc:        as("B"),
			in:        action.Input{"created_by": "A"},
			countSQL:  "SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM articles WHERE created_by = $1 AND published = $2) q",
			listSQL:   "SELECT * FROM articles WHERE created_by = $1 AND published = $2 ORDER BY created_at DESC LIMIT $3",
			countArgs: []any{"A", true},
			listArgs:  []any{"A", true, 20},
		},
		{
			name:      "articles include own drafts",
			action:    "article_list",
			rc:        as("A"),
			in:        action.Input{"created_by": "A"},
			countSQL:  "SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM articles WHERE created_by = $1) q",
			listSQL:   "SELECT * FROM articles WHERE created_by = $1 ORDER BY created_at DESC LIMIT $2",
			countArgs: []any{"A"},
			listArgs:  []any{"A", 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mock.ExpectPrepare(tt.countSQL).ExpectQuery().WithArgs(driverArgs(tt.countArgs)...).
				WillReturnRows(sqlmock.NewRows([]string{"row_count"}).AddRow(42))
			f.mock.ExpectPrepare(tt.listSQL).ExpectQuery().WithArgs(driverArgs(tt.listArgs)...).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("x1"))

			reply, err := f.dispatcher.Dispatch(context.Background(), tt.rc, tt.action, "", tt.in)
			require.NoError(t, err)
			require.NotNil(t, reply.Meta)
			assert.Equal(t, int64(42), reply.Meta.RowCount)
			assert.Len(t, reply.Data, 1)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestContent_StoreErrorIsData(t *testing.T) {
	f := newFixture(t, "ad1")

	f.mock.ExpectPrepare("INSERT INTO adverts (body, category, created_at, created_by, currency, id, price_cents, slug, title, updated_at, updated_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING *").
		ExpectQuery().
		WithArgs("", "bikes", sqlmock.AnyArg(), "A", "EUR", "ad1", int64(15000), "road-bike", "Road bike", sqlmock.AnyArg(), "A").
		WillReturnError(assert.AnError)

	reply, err := f.dispatcher.Dispatch(context.Background(), as("A"), "advert_create", "", action.Input{
		"title": "Road bike", "category": "Bikes", "price_cents": 15000,
	})
	require.NoError(t, err)
	assert.Nil(t, reply.Data)
	assert.Contains(t, reply.Error, "store_error")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestArticle_DraftVisibleOnlyToAuthor(t *testing.T) {
	f := newFixture(t)
	columns := []string{"id", "slug", "title", "summary", "body", "published", "created_by", "updated_by", "created_at", "updated_at"}
	draft := func() *sqlmock.Rows {
		return sqlmock.NewRows(columns).AddRow("a1", "draft", "Draft", "", "", false, "A", "A", testNow, testNow)
	}

	prep := f.mock.ExpectPrepare("SELECT * FROM articles WHERE id = $1 LIMIT $2")
	prep.ExpectQuery().WithArgs("a1", 1).WillReturnRows(draft())
	prep.ExpectQuery().WithArgs("a1", 1).WillReturnRows(draft())
	prep.ExpectQuery().WithArgs("a1", 1).WillReturnRows(draft())

	reply, err := f.dispatcher.Dispatch(context.Background(), as("A"), "article_get", "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, "a1", reply.Data.(core.Row)["id"])

	_, err = f.dispatcher.Dispatch(context.Background(), as("B"), "article_get", "a1", nil)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.dispatcher.Dispatch(context.Background(), anonymous(), "article_get", "a1", nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
