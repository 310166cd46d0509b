package db

import "strings"

// Clause is one condition of a WHERE conjunction together with its
// positional arguments. SQL never contains literal values.
type Clause struct {
	SQL  string
	Args []any
}

// Predicate is an ordered conjunction of clauses.
type Predicate struct {
	Clauses []Clause
	// UseFullText is set when a clause references the full-text index,
	// so the caller must join it into the FROM clause.
	UseFullText bool
}

// Where renders "WHERE c1 AND c2 ..." or "" when there are no clauses.
func (p Predicate) Where() string {
	if len(p.Clauses) == 0 {
		return ""
	}
	parts := make([]string, len(p.Clauses))
	for i, c := range p.Clauses {
		parts[i] = c.SQL
	}
	return "WHERE " + strings.Join(parts, " AND ")
}

// Args flattens the clause arguments in placeholder order into a new slice.
func (p Predicate) Args() []any {
	n := 0
	for _, c := range p.Clauses {
		n += len(c.Args)
	}
	args := make([]any, 0, n)
	for _, c := range p.Clauses {
		args = append(args, c.Args...)
	}
	return args
}

// PredicateBuilder is a fluent builder for parameterized WHERE predicates.
// Set-valued helpers are no-ops for empty input, so optional criteria can be
// chained unconditionally.
type PredicateBuilder struct {
	p Predicate
}

// NewPredicate starts building a predicate.
func NewPredicate() *PredicateBuilder {
	return &PredicateBuilder{}
}

// Where adds a raw clause. The SQL must use '?' placeholders for args.
func (b *PredicateBuilder) Where(sql string, args ...any) *PredicateBuilder {
	b.p.Clauses = append(b.p.Clauses, Clause{SQL: sql, Args: args})
	return b
}

// In adds "column IN (?, ...)".
func (b *PredicateBuilder) In(column string, values ...string) *PredicateBuilder {
	if len(values) == 0 {
		return b
	}
	return b.Where(column+" IN ("+Placeholders(len(values))+")", toArgs(values)...)
}

// AnyIn adds "(c1 IN (...) OR c2 IN (...))": the value set matches any of the columns.
func (b *PredicateBuilder) AnyIn(columns []string, values ...string) *PredicateBuilder {
	if len(values) == 0 || len(columns) == 0 {
		return b
	}
	ph := Placeholders(len(values))
	parts := make([]string, len(columns))
	args := make([]any, 0, len(columns)*len(values))
	for i, col := range columns {
		parts[i] = col + " IN (" + ph + ")"
		args = append(args, toArgs(values)...)
	}
	sql := strings.Join(parts, " OR ")
	if len(columns) > 1 {
		sql = "(" + sql + ")"
	}
	return b.Where(sql, args...)
}

// InSelect adds "column IN (subquery IN (?, ...))". The subquery must end
// with the column its values are compared against, e.g.
// "SELECT report_id FROM report_author_index WHERE author_id".
func (b *PredicateBuilder) InSelect(column, subquery string, values ...string) *PredicateBuilder {
	if len(values) == 0 {
		return b
	}
	sql := column + " IN (" + subquery + " IN (" + Placeholders(len(values)) + "))"
	return b.Where(sql, toArgs(values)...)
}

// AtLeast adds "column >= ?".
func (b *PredicateBuilder) AtLeast(column string, v any) *PredicateBuilder {
	return b.Where(column+" >= ?", v)
}

// Match adds a full-text "column MATCH ?" clause requiring every term as a
// phrase, and marks the predicate as needing the full-text index.
func (b *PredicateBuilder) Match(column string, terms ...string) *PredicateBuilder {
	if len(terms) == 0 {
		return b
	}
	b.p.UseFullText = true
	return b.Where(column+" MATCH ?", PhraseQuery(terms))
}

// ContainsAll adds "(column LIKE ? ESCAPE '\' AND ...)" requiring every term
// as a literal substring.
func (b *PredicateBuilder) ContainsAll(column string, terms ...string) *PredicateBuilder {
	if len(terms) == 0 {
		return b
	}
	parts := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, t := range terms {
		parts[i] = column + ` LIKE ? ESCAPE '\'`
		args[i] = "%" + EscapeLike(t) + "%"
	}
	return b.Where("("+strings.Join(parts, " AND ")+")", args...)
}

// Build returns the predicate. The builder may keep being used afterwards.
func (b *PredicateBuilder) Build() Predicate {
	out := Predicate{UseFullText: b.p.UseFullText}
	out.Clauses = append([]Clause(nil), b.p.Clauses...)
	return out
}

// Placeholders returns n comma-separated '?' placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so that s matches literally under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// PhraseQuery renders terms as an FTS5 query requiring all of them:
// "t1" AND "t2". Embedded double quotes are doubled.
func PhraseQuery(terms []string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(parts, " AND ")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
