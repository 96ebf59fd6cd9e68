// internal/enquiry/query/query.go
package query

import (
	"fmt"
	"strings"
)

// Query accumulates (condition, bound value) pairs on top of a fixed base
// statement. Conditions are combined with AND only; there is no OR in this
// design. Placeholders are written as '?' and renumbered to $1..$n when the
// final SQL is produced, so filters can be appended in any order without the
// caller tracking positions.
type Query struct {
	base  string
	conds []string
	args  []interface{}
	order string
}

// New starts a query from a base statement (joins included, no WHERE clause).
func New(base string) *Query {
	return &Query{base: strings.TrimSpace(base)}
}

// Where appends one condition with its bound values. Callers append a filter
// only when its source parameter is present; the builder itself does not know
// about the none sentinel.
func (q *Query) Where(cond string, args ...interface{}) *Query {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
	return q
}

// OrderBy sets the module-fixed ordering clause.
func (q *Query) OrderBy(clause string) *Query {
	q.order = clause
	return q
}

// FilterCount reports how many conditions have been appended.
func (q *Query) FilterCount() int {
	return len(q.conds)
}

// Args returns the bound values in append order.
func (q *Query) Args() []interface{} {
	return q.args
}

// SQL renders the final statement with $n placeholders.
func (q *Query) SQL() string {
	var b strings.Builder
	b.WriteString(q.base)

	if len(q.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conds, " AND "))
	}
	if q.order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.order)
	}

	return renumber(b.String())
}

func renumber(sql string) string {
	var b strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
