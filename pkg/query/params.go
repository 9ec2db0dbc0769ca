package query

import "strconv"

// Params accumulates bound values for a single statement.
// The Nth bound value is referenced by the placeholder $N.
type Params struct {
	values []any
}

// NewParams returns a binder seeded with already-bound values.
func NewParams(values ...any) *Params {
	p := &Params{}
	p.values = append(p.values, values...)
	return p
}

// Bind appends v and returns its placeholder.
func (p *Params) Bind(v any) string {
	p.values = append(p.values, v)
	return "$" + strconv.Itoa(len(p.values))
}

// Values returns the bound values in placeholder order.
func (p *Params) Values() []any {
	return p.values
}

// Len returns the number of bound values.
func (p *Params) Len() int {
	return len(p.values)
}

// Clone returns an independent copy of the binder.
func (p *Params) Clone() *Params {
	return NewParams(p.values...)
}
