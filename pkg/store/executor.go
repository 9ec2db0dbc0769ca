package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/noticeboard/pkg/core"
)

// DBTX is the subset of *sql.DB the executor needs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Executor runs SQL text with positional parameters.
type Executor struct {
	db     DBTX
	logger *slog.Logger

	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

// NewExecutor creates an executor over db.
// If logger is nil, a discard logger is used.
func NewExecutor(db DBTX, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		db:     db,
		logger: logger,
		stmts:  make(map[string]*sql.Stmt),
	}
}

// Execute runs sqlText with args. When name is not empty the statement is
// prepared once and reused for every later call with the same name.
// Driver failures are returned in Result.Err, never as a panic or raw error.
func (e *Executor) Execute(ctx context.Context, sqlText string, args []any, name string) *Result {
	if e.db == nil {
		return failed(core.New(core.KindStore, "database connection not established"))
	}

	res := &Result{Command: commandOf(sqlText)}
	var err error
	if returnsRows(sqlText) {
		var rows *sql.Rows
		rows, err = e.query(ctx, sqlText, args, name)
		if err == nil {
			res.Rows, err = scanRows(rows)
			res.RowCount = int64(len(res.Rows))
		}
	} else {
		var r sql.Result
		r, err = e.exec(ctx, sqlText, args, name)
		if err == nil {
			res.RowCount, err = r.RowsAffected()
		}
	}
	if err != nil {
		return e.storeError(sqlText, name, err)
	}

	e.logger.Debug("statement executed",
		slog.String("command", res.Command),
		slog.String("statement", name),
		slog.Int64("rows", res.RowCount))
	return res
}

// QueryMeta counts the rows sqlText would return by wrapping it as a subquery.
// args must not include pagination values.
func (e *Executor) QueryMeta(ctx context.Context, sqlText string, args []any, name string) Meta {
	return e.Count(ctx, CountSQL(sqlText), args, name)
}

// Count runs countText, a statement selecting a single row_count column.
func (e *Executor) Count(ctx context.Context, countText string, args []any, name string) Meta {
	res := e.Execute(ctx, countText, args, name)
	if res.Err != nil {
		return Meta{Err: res.Err}
	}
	row := res.First()
	if row == nil {
		return Meta{}
	}
	n, err := toInt64(row["row_count"])
	if err != nil {
		return Meta{Err: core.Wrap(core.KindStore, "unexpected row_count", err)}
	}
	return Meta{RowCount: n}
}

// CountSQL wraps sqlText in a row-counting subquery.
func CountSQL(sqlText string) string {
	return "SELECT COUNT(q.*) AS row_count FROM (" + sqlText + ") q"
}

// Close releases every cached prepared statement.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for name, stmt := range e.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(e.stmts, name)
	}
	return errors.Join(errs...)
}

// Prepared returns the number of cached prepared statements.
func (e *Executor) Prepared() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.stmts)
}

func (e *Executor) query(ctx context.Context, sqlText string, args []any, name string) (*sql.Rows, error) {
	if name == "" {
		return e.db.QueryContext(ctx, sqlText, args...)
	}
	stmt, err := e.prepare(ctx, name, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (e *Executor) exec(ctx context.Context, sqlText string, args []any, name string) (sql.Result, error) {
	if name == "" {
		return e.db.ExecContext(ctx, sqlText, args...)
	}
	stmt, err := e.prepare(ctx, name, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func (e *Executor) prepare(ctx context.Context, name, sqlText string) (*sql.Stmt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stmt, ok := e.stmts[name]; ok {
		return stmt, nil
	}
	stmt, err := e.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	e.stmts[name] = stmt
	return stmt, nil
}

func (e *Executor) storeError(sqlText, name string, err error) *Result {
	attrs := []any{
		slog.String("statement", name),
		slog.String("sql", sqlText),
		slog.String("error", err.Error()),
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		attrs = append(attrs, slog.String("sqlstate", pgErr.Code))
	}
	e.logger.Warn("statement failed", attrs...)
	return failed(core.Wrap(core.KindStore, "statement failed", err))
}

// commandOf returns the leading keyword of sqlText.
func commandOf(sqlText string) string {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func returnsRows(sqlText string) bool {
	switch commandOf(sqlText) {
	case "SELECT", "WITH", "VALUES", "SHOW":
		return true
	}
	return strings.Contains(strings.ToUpper(sqlText), " RETURNING ")
}
