package store

import "github.com/leapstack-labs/noticeboard/pkg/core"

// Result is the uniform envelope returned by every statement.
// Either Err is set, or Command, RowCount and Rows describe the outcome.
type Result struct {
	Command  string
	RowCount int64
	Rows     []core.Row
	Err      error
}

// Success reports whether the statement ran and touched at least one row.
// An UPDATE or DELETE matching nothing is not a success.
func (r *Result) Success() bool {
	return r != nil && r.Err == nil && r.RowCount > 0
}

// First returns the first row, or nil.
func (r *Result) First() core.Row {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

func failed(err error) *Result {
	return &Result{Err: err}
}

// Meta carries the total number of rows matched by a query, independent of pagination.
type Meta struct {
	RowCount int64 `json:"row_count"`
	Err      error `json:"-"`
}
