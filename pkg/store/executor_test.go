package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		args      []any
		wantCmd   string
		wantCount int64
		wantKind  core.Kind
	}{
		{
			name: "select without name",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT * FROM users WHERE id = $1").WithArgs("u1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
			},
			sql:       "SELECT * FROM users WHERE id = $1",
			args:      []any{"u1"},
			wantCmd:   "SELECT",
			wantCount: 1,
		},
		{
			name: "exec reports rows affected",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users WHERE id = $1").WithArgs("u1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql:       "DELETE FROM users WHERE id = $1",
			args:      []any{"u1"},
			wantCmd:   "DELETE",
			wantCount: 0,
		},
		{
			name: "driver error becomes store error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELEC 1 RETURNING *").WillReturnError(&pgconn.PgError{Code: "42601", Message: "syntax error"})
			},
			sql:      "SELEC 1 RETURNING *",
			wantKind: core.KindStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			e := NewExecutor(db, nil)
			res := e.Execute(context.Background(), tt.sql, tt.args, "")
			if tt.wantKind != "" {
				require.Error(t, res.Err)
				assert.Equal(t, tt.wantKind, core.KindOf(res.Err))
				assert.Nil(t, res.Rows)
				assert.False(t, res.Success())
				return
			}
			require.NoError(t, res.Err)
			assert.Equal(t, tt.wantCmd, res.Command)
			assert.Equal(t, tt.wantCount, res.RowCount)
			assert.Equal(t, tt.wantCount > 0, res.Success())
		})
	}
}

func TestExecutor_NoConnection(t *testing.T) {
	e := NewExecutor(nil, nil)
	res := e.Execute(context.Background(), "SELECT 1", nil, "")
	assert.Equal(t, core.KindStore, core.KindOf(res.Err))
}

func TestExecutor_QueryMeta(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM posts) q").
		WillReturnRows(sqlmock.NewRows([]string{"row_count"}).AddRow(int64(12)))
	mock.ExpectQuery("SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM nope) q").
		WillReturnError(errors.New(`relation "nope" does not exist`))

	e := NewExecutor(db, nil)
	meta := e.QueryMeta(context.Background(), "SELECT * FROM posts", nil, "")
	require.NoError(t, meta.Err)
	assert.Equal(t, int64(12), meta.RowCount)

	meta = e.QueryMeta(context.Background(), "SELECT * FROM nope", nil, "")
	assert.Equal(t, core.KindStore, core.KindOf(meta.Err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Close(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare("SELECT 1").WillBeClosed().ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	e := NewExecutor(db, nil)
	res := e.Execute(context.Background(), "SELECT 1", nil, "one")
	require.NoError(t, res.Err)
	assert.Equal(t, 1, e.Prepared())

	require.NoError(t, e.Close())
	assert.Equal(t, 0, e.Prepared())
}

func TestCountSQL(t *testing.T) {
	assert.Equal(t,
		"SELECT COUNT(q.*) AS row_count FROM (SELECT * FROM posts WHERE id = $1) q",
		CountSQL("SELECT * FROM posts WHERE id = $1"))
}

func TestReturnsRows(t *testing.T) {
	assert.True(t, returnsRows("SELECT 1"))
	assert.True(t, returnsRows("  with x as (select 1) select * from x"))
	assert.True(t, returnsRows("INSERT INTO t (a) VALUES ($1) RETURNING *"))
	assert.True(t, returnsRows("UPDATE t SET a = $1 WHERE id = $2 RETURNING *"))
	assert.False(t, returnsRows("DELETE FROM t WHERE id = $1"))
	assert.Equal(t, "", commandOf("   "))
}
