package query

import (
	"fmt"
	"sort"
	"strings"
)

// Op is a comparison operator.
type Op string

// Supported operators.
const (
	OpEq    Op = "="
	OpNeq   Op = "<>"
	OpLt    Op = "<"
	OpLte   Op = "<="
	OpGt    Op = ">"
	OpGte   Op = ">="
	OpLike  Op = "LIKE"
	OpILike Op = "ILIKE"
)

func (o Op) pattern() bool { return o == OpLike || o == OpILike }

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike, OpILike:
		return true
	}
	return false
}

// Cond is a single filter predicate on one column.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Where is an AND-joined list of conditions. The zero value means no filter.
type Where []Cond

// Eq creates an equality condition.
func Eq(column string, value any) Cond { return Cond{Column: column, Op: OpEq, Value: value} }

// Neq creates an inequality condition.
func Neq(column string, value any) Cond { return Cond{Column: column, Op: OpNeq, Value: value} }

// Lt creates a less-than condition.
func Lt(column string, value any) Cond { return Cond{Column: column, Op: OpLt, Value: value} }

// Lte creates a less-than-or-equal condition.
func Lte(column string, value any) Cond { return Cond{Column: column, Op: OpLte, Value: value} }

// Gt creates a greater-than condition.
func Gt(column string, value any) Cond { return Cond{Column: column, Op: OpGt, Value: value} }

// Gte creates a greater-than-or-equal condition.
func Gte(column string, value any) Cond { return Cond{Column: column, Op: OpGte, Value: value} }

// Like creates a pattern condition. Backslash escapes % and _ in pattern.
func Like(column string, pattern string) Cond {
	return Cond{Column: column, Op: OpLike, Value: pattern}
}

// ILike creates a case-insensitive pattern condition. Backslash escapes % and _ in pattern.
func ILike(column string, pattern string) Cond {
	return Cond{Column: column, Op: OpILike, Value: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike quotes the pattern metacharacters in s so it matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Contains creates a case-insensitive substring condition matching s literally.
func Contains(column, s string) Cond {
	return ILike(column, "%"+EscapeLike(s)+"%")
}

// And returns a new Where with the conditions appended.
func (w Where) And(conds ...Cond) Where {
	out := make(Where, 0, len(w)+len(conds))
	out = append(out, w...)
	return append(out, conds...)
}

// Equals converts an equality map into conditions.
// Columns are sorted so identical maps always produce identical SQL.
func Equals(m map[string]any) Where {
	if len(m) == 0 {
		return nil
	}
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	w := make(Where, 0, len(cols))
	for _, c := range cols {
		w = append(w, Eq(c, m[c]))
	}
	return w
}

func (c Cond) validate() error {
	if err := CheckIdentifier(c.Column); err != nil {
		return err
	}
	if !c.Op.valid() {
		return fmt.Errorf("unsupported operator %q on column %s", c.Op, c.Column)
	}
	return nil
}
