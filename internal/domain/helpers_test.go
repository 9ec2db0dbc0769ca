package domain

import (
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/internal/testutil"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *Service
	mock       sqlmock.Sqlmock
	tokens     *authz.Tokens
	dispatcher *action.Dispatcher
}

// newFixture wires a service over sqlmock. ids are handed out in order.
func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	db, mock := testutil.NewMockDB(t)
	logger := testutil.NewTestLogger(t)

	tokens, err := authz.NewTokens("test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	next := 0
	svc, err := New(Config{
		Store:      store.New(db, store.Options{Logger: logger}),
		Tokens:     tokens,
		Logger:     logger,
		Now:        func() time.Time { return testNow },
		BcryptCost: bcrypt.MinCost,
		NewID: func() string {
			if next >= len(ids) {
				next++
				return fmt.Sprintf("id-%d", next)
			}
			id := ids[next]
			next++
			return id
		},
	})
	require.NoError(t, err)

	registry, err := svc.Register()
	require.NoError(t, err)

	return &fixture{
		svc:        svc,
		mock:       mock,
		tokens:     tokens,
		dispatcher: action.NewDispatcher(registry, logger),
	}
}

func as(id string) action.RequestContext {
	return action.RequestContext{
		Caller:   &authz.Caller{ID: id, Username: "user-" + id},
		Settings: action.Settings{DefaultLimit: 20, MaxLimit: 100},
	}
}

func anonymous() action.RequestContext {
	return action.RequestContext{Settings: action.Settings{DefaultLimit: 20, MaxLimit: 100}}
}

var postColumns = []string{"id", "slug", "title", "body", "created_by", "updated_by", "created_at", "updated_at"}

func postRow(id, title, owner string) *sqlmock.Rows {
	return sqlmock.NewRows(postColumns).
		AddRow(id, Slugify(title), title, "", owner, owner, testNow, testNow)
}

func driverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
