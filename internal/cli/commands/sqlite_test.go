package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/config"
	"github.com/leapstack-labs/noticeboard/internal/domain"
	"github.com/leapstack-labs/noticeboard/internal/testutil"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteApp(t *testing.T) *App {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	db, err := store.Open(context.Background(), store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "noticeboard.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db, store.DialectSQLite))

	cfg := &config.Config{}
	cfg.Server.TokenSecret = "0123456789abcdef0123"
	cfg.Server.TokenTTL = time.Hour
	app, err := NewApp(db, store.DialectSQLite, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Store.Close() })
	return app
}

func TestSQLiteApp_ActionsEndToEnd(t *testing.T) {
	ctx := context.Background()
	app := newSQLiteApp(t)
	settings := action.Settings{DefaultLimit: 20, MaxLimit: 100}
	anon := action.RequestContext{Settings: settings}

	signup := func(username string) action.RequestContext {
		reply, err := app.Dispatcher.Dispatch(ctx, anon, "user_signup", "", action.Input{
			"username": username, "email": username + "@example.com", "password": "correct horse",
		})
		require.NoError(t, err)
		require.Empty(t, reply.Error)
		session, ok := reply.Data.(domain.Session)
		require.True(t, ok)
		caller, err := app.Tokens.Parse(session.Token)
		require.NoError(t, err)
		return action.RequestContext{Caller: caller, Settings: settings}
	}
	alice := signup("alice")
	bob := signup("bob")

	users, err := app.Dispatcher.Dispatch(ctx, anon, "user_list", "", action.Input{"q": "ALI"})
	require.NoError(t, err)
	require.Empty(t, users.Error)
	assert.Equal(t, int64(1), users.Meta.RowCount)
	assert.Len(t, users.Data, 1)

	for _, title := range []string{"First post", "Second post", "Third post"} {
		reply, err := app.Dispatcher.Dispatch(ctx, alice, "post_create", "", action.Input{"title": title})
		require.NoError(t, err)
		require.Empty(t, reply.Error)
	}

	page, err := app.Dispatcher.Dispatch(ctx, anon, "post_list", "", action.Input{"limit": 2, "offset": 1})
	require.NoError(t, err)
	require.Empty(t, page.Error)
	assert.Equal(t, int64(3), page.Meta.RowCount)
	rows := page.Data.([]core.Row)
	require.Len(t, rows, 2)

	id := rows[0].String("id")
	_, err = app.Dispatcher.Dispatch(ctx, bob, "post_delete", id, nil)
	assert.ErrorIs(t, err, core.ErrForbidden)

	deleted, err := app.Dispatcher.Dispatch(ctx, alice, "post_delete", id, nil)
	require.NoError(t, err)
	require.Empty(t, deleted.Error)

	count := app.Store.Count(ctx, "posts", nil)
	require.NoError(t, count.Err)
	assert.Equal(t, int64(2), count.RowCount)

	_, err = app.Dispatcher.Dispatch(ctx, anon, "user_me", "", nil)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
