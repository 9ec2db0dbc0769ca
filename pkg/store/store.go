package store

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
)

// Operation tags used in prepared statement names.
const (
	opFind   = "find"
	opCount  = "count"
	opList   = "list"
	opInsert = "insert"
	opUpdate = "update"
	opDelete = "delete"
)

// Options configures a Store.
type Options struct {
	Dialect Dialect
	Logger  *slog.Logger
}

// Store provides row operations over an Executor.
type Store struct {
	exec    *Executor
	dialect Dialect
	logger  *slog.Logger
}

// New creates a Store over db.
func New(db DBTX, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = DialectCockroach
	}
	return &Store{
		exec:    NewExecutor(db, logger),
		dialect: dialect,
		logger:  logger,
	}
}

// Executor returns the underlying executor.
func (s *Store) Executor() *Executor {
	return s.exec
}

// Close releases cached prepared statements. It does not close the database.
func (s *Store) Close() error {
	return s.exec.Close()
}

// FindResult holds the rows matched by Find. Row is set only for single-row lookups.
type FindResult struct {
	Rows []core.Row
	Row  core.Row
	Err  error
}

// Find selects rows from table matching where, windowed by page.
// Row is populated only when page.Limit == 1.
func (s *Store) Find(ctx context.Context, table string, where query.Where, page query.Page) FindResult {
	if err := query.CheckIdentifier(table); err != nil {
		return FindResult{Err: badRequest(err)}
	}

	p := &query.Params{}
	clause, err := s.whereClause(where, p)
	if err != nil {
		return FindResult{Err: badRequest(err)}
	}
	offset, limit := query.BuildPagination(page, p)
	sqlText := joinSQL("SELECT * FROM "+table+clause, offset, limit)

	res := s.exec.Execute(ctx, sqlText, p.Values(), query.StatementName(table, opFind, sqlText))
	if res.Err != nil {
		return FindResult{Err: res.Err}
	}
	out := FindResult{Rows: res.Rows}
	if page.Limit == 1 {
		out.Row = res.First()
	}
	return out
}

// FindOneOrFail returns the single row matching where, or a core.KindNotFound
// error carrying notFound when there is none or the lookup failed.
func (s *Store) FindOneOrFail(ctx context.Context, table string, where query.Where, notFound string) (core.Row, error) {
	res := s.Find(ctx, table, where, query.One)
	if res.Err != nil {
		if core.KindOf(res.Err) == core.KindBadRequest {
			return nil, res.Err
		}
		s.logger.Debug("lookup failed", slog.String("table", table), slog.String("error", res.Err.Error()))
		return nil, core.NotFound(notFound)
	}
	if res.Row == nil {
		return nil, core.NotFound(notFound)
	}
	return res.Row, nil
}

// Count returns the number of rows in table matching where.
func (s *Store) Count(ctx context.Context, table string, where query.Where) Meta {
	if err := query.CheckIdentifier(table); err != nil {
		return Meta{Err: badRequest(err)}
	}
	p := &query.Params{}
	clause, err := s.whereClause(where, p)
	if err != nil {
		return Meta{Err: badRequest(err)}
	}
	return s.count(ctx, table, "SELECT * FROM "+table+clause, p.Values())
}

// Order is a validated ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// NewestFirst orders listings by creation time, most recent first.
var NewestFirst = Order{Column: "created_at", Desc: true}

// ListQuery describes a paginated listing.
type ListQuery struct {
	Table   string
	Where   query.Where
	Page    query.Page
	OrderBy []Order
}

// ListResult holds one page of rows plus the total match count.
type ListResult struct {
	Rows []core.Row
	Meta Meta
	Err  error
}

// List runs the paginated data query and the count query for q.
// Listings without an explicit order are sorted by NewestFirst.
func (s *Store) List(ctx context.Context, q ListQuery) ListResult {
	if err := query.CheckIdentifier(q.Table); err != nil {
		return ListResult{Err: badRequest(err)}
	}
	orderBy := q.OrderBy
	if len(orderBy) == 0 {
		orderBy = []Order{NewestFirst}
	}
	terms := make([]string, 0, len(orderBy))
	for _, o := range orderBy {
		if err := query.CheckIdentifier(o.Column); err != nil {
			return ListResult{Err: badRequest(err)}
		}
		term := o.Column + " ASC"
		if o.Desc {
			term = o.Column + " DESC"
		}
		terms = append(terms, term)
	}

	p := &query.Params{}
	clause, err := s.whereClause(q.Where, p)
	if err != nil {
		return ListResult{Err: badRequest(err)}
	}
	base := "SELECT * FROM " + q.Table + clause

	meta := s.count(ctx, q.Table, base, p.Values())
	if meta.Err != nil {
		return ListResult{Err: meta.Err}
	}

	dp := p.Clone()
	offset, limit := query.BuildPagination(q.Page, dp)
	sqlText := joinSQL(base+" ORDER BY "+strings.Join(terms, ", "), offset, limit)

	res := s.exec.Execute(ctx, sqlText, dp.Values(), query.StatementName(q.Table, opList, sqlText))
	if res.Err != nil {
		return ListResult{Err: res.Err}
	}
	return ListResult{Rows: res.Rows, Meta: meta}
}

// Insert adds row to table and returns the stored row.
// Generated values such as ids and timestamps must already be set.
func (s *Store) Insert(ctx context.Context, table string, row core.Row) *Result {
	if err := query.CheckIdentifier(table); err != nil {
		return failed(badRequest(err))
	}
	if len(row) == 0 {
		return failed(core.BadRequest("insert into %s: no columns", table))
	}

	cols := sortedColumns(row)
	p := &query.Params{}
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		if err := query.CheckIdentifier(c); err != nil {
			return failed(badRequest(err))
		}
		placeholders[i] = p.Bind(row[c])
	}

	sqlText := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ") RETURNING *"
	return s.exec.Execute(ctx, sqlText, p.Values(), query.StatementName(table, opInsert, sqlText))
}

// Update sets changes on the rows of table matching where and returns them.
//
// limit is accepted for symmetry with Delete but no LIMIT is applied: every
// row matching where is updated, so where must be selective (a unique id).
func (s *Store) Update(ctx context.Context, table string, where query.Where, changes core.Row, limit int) *Result {
	if err := query.CheckIdentifier(table); err != nil {
		return failed(badRequest(err))
	}
	if len(changes) == 0 {
		return failed(core.BadRequest("update %s: no changes", table))
	}
	if len(where) == 0 {
		return failed(core.BadRequest("update %s: refusing to update without a condition", table))
	}

	cols := sortedColumns(changes)
	p := &query.Params{}
	sets := make([]string, len(cols))
	for i, c := range cols {
		if err := query.CheckIdentifier(c); err != nil {
			return failed(badRequest(err))
		}
		sets[i] = c + " = " + p.Bind(changes[c])
	}
	clause, err := s.whereClause(where, p)
	if err != nil {
		return failed(badRequest(err))
	}

	sqlText := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + clause + " RETURNING *"
	return s.exec.Execute(ctx, sqlText, p.Values(), query.StatementName(table, opUpdate, sqlText))
}

// Delete removes at most limit rows of table matching where.
// A non-positive limit removes every matching row.
func (s *Store) Delete(ctx context.Context, table string, where query.Where, limit int) *Result {
	if err := query.CheckIdentifier(table); err != nil {
		return failed(badRequest(err))
	}
	if len(where) == 0 {
		return failed(core.BadRequest("delete from %s: refusing to delete without a condition", table))
	}

	p := &query.Params{}
	clause, err := s.whereClause(where, p)
	if err != nil {
		return failed(badRequest(err))
	}
	_, limitClause := query.BuildPagination(query.Page{Limit: limit}, p)

	var sqlText string
	switch loc := s.dialect.rowLocator(); {
	case limitClause == "":
		sqlText = "DELETE FROM " + table + clause
	case loc == "":
		sqlText = "DELETE FROM " + table + clause + " " + limitClause
	default:
		sqlText = "DELETE FROM " + table + " WHERE " + loc + " IN (SELECT " + loc + " FROM " +
			table + clause + " " + limitClause + ")"
	}
	return s.exec.Execute(ctx, sqlText, p.Values(), query.StatementName(table, opDelete, sqlText))
}

func sortedColumns(row core.Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func joinSQL(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// whereClause renders where in the store's dialect.
func (s *Store) whereClause(where query.Where, p *query.Params) (string, error) {
	return query.WhereClause(s.dialect.rewrite(where), p)
}

// count runs the dialect's count wrapper around base.
func (s *Store) count(ctx context.Context, table, base string, args []any) Meta {
	countText := s.dialect.countSQL(base)
	return s.exec.Count(ctx, countText, args, query.StatementName(table, opCount, countText))
}

func badRequest(err error) error {
	return core.Wrap(core.KindBadRequest, "invalid query", err)
}
