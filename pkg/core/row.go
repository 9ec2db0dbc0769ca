package core

import (
	"fmt"
	"time"
)

// Row is a single record keyed by column name.
type Row map[string]any

// String returns the column value formatted as a string, or "" when absent or NULL.
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Time returns the column value as a time, or the zero time.
func (r Row) Time(col string) time.Time {
	if t, ok := r[col].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Without returns a copy of the row without the given columns.
func (r Row) Without(cols ...string) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, c := range cols {
		delete(out, c)
	}
	return out
}
