package store

import (
	"fmt"

	"github.com/leapstack-labs/noticeboard/pkg/query"
)

// Dialect selects the SQL variations the store emits.
type Dialect string

// Supported dialects.
const (
	// DialectCockroach accepts DELETE ... LIMIT directly.
	DialectCockroach Dialect = "cockroachdb"
	// DialectPostgres limits deletes through a ctid subquery.
	DialectPostgres Dialect = "postgres"
	// DialectSQLite limits deletes through a rowid subquery.
	DialectSQLite Dialect = "sqlite"
)

// ParseDialect validates a configured dialect name. Empty means DialectCockroach.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case "", DialectCockroach:
		return DialectCockroach, nil
	case DialectPostgres, DialectSQLite:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unknown dialect %q (expected cockroachdb, postgres or sqlite)", s)
}

// rowLocator returns the hidden row identifier used to emulate DELETE ... LIMIT,
// or "" when the dialect supports it natively.
func (d Dialect) rowLocator() string {
	switch d {
	case DialectPostgres:
		return "ctid"
	case DialectSQLite:
		return "rowid"
	default:
		return ""
	}
}

// countSQL wraps sqlText in the row-counting subquery the dialect accepts.
// SQLite has no COUNT(q.*).
func (d Dialect) countSQL(sqlText string) string {
	if d == DialectSQLite {
		return "SELECT COUNT(*) AS row_count FROM (" + sqlText + ") q"
	}
	return CountSQL(sqlText)
}

// rewrite maps operators the dialect lacks onto equivalents.
// SQLite has no ILIKE; its LIKE already ignores ASCII case.
func (d Dialect) rewrite(w query.Where) query.Where {
	if d != DialectSQLite || len(w) == 0 {
		return w
	}
	out := make(query.Where, len(w))
	for i, c := range w {
		if c.Op == query.OpILike {
			c.Op = query.OpLike
		}
		out[i] = c
	}
	return out
}
