package query

import "strings"

// BuildWhere renders the conditions as an AND-joined fragment, binding one
// value per condition in order. It returns "" for an empty Where; callers
// must then omit the WHERE keyword.
func BuildWhere(w Where, p *Params) (string, error) {
	if len(w) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(w))
	for _, c := range w {
		if err := c.validate(); err != nil {
			return "", err
		}
		op := c.Op
		if op == "" {
			op = OpEq
		}
		part := c.Column + " " + string(op) + " " + p.Bind(c.Value)
		if op.pattern() {
			part += ` ESCAPE '\'`
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " AND "), nil
}

// WhereClause is BuildWhere with the keyword: " WHERE <fragment>" or "".
func WhereClause(w Where, p *Params) (string, error) {
	frag, err := BuildWhere(w, p)
	if err != nil || frag == "" {
		return "", err
	}
	return " WHERE " + frag, nil
}

// BuildPagination renders the OFFSET and LIMIT clauses for page.
// Each is "" when its value is not positive.
func BuildPagination(page Page, p *Params) (offset, limit string) {
	if page.Offset > 0 {
		offset = "OFFSET " + p.Bind(page.Offset)
	}
	if page.Limit > 0 {
		limit = "LIMIT " + p.Bind(page.Limit)
	}
	return offset, limit
}
