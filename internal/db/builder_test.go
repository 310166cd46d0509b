package db

import (
	"reflect"
	"testing"
)

func TestPredicateBuilder_Empty(t *testing.T) {
	p := NewPredicate().In("a").AnyIn([]string{"a", "b"}).Match("fts").ContainsAll("c").Build()

	if p.Where() != "" {
		t.Errorf("where = %q, want empty", p.Where())
	}
	if len(p.Args()) != 0 {
		t.Errorf("args = %v, want none", p.Args())
	}
	if p.UseFullText {
		t.Error("empty Match must not require the full-text index")
	}
}

func TestPredicateBuilder_Simple(t *testing.T) {
	p := NewPredicate().
		Where("pdf_link IS NOT NULL").
		In("report_type", "0", "1").
		AtLeast("attach_pages", 10).
		Build()

	wantWhere := "WHERE pdf_link IS NOT NULL AND report_type IN (?, ?) AND attach_pages >= ?"
	if p.Where() != wantWhere {
		t.Errorf("where = %q\nwant    %q", p.Where(), wantWhere)
	}
	wantArgs := []any{"0", "1", 10}
	if !reflect.DeepEqual(p.Args(), wantArgs) {
		t.Errorf("args = %v, want %v", p.Args(), wantArgs)
	}
}

func TestPredicateBuilder_AnyIn(t *testing.T) {
	p := NewPredicate().AnyIn([]string{"industry_code", "indv_indu_code"}, "451", "1046").Build()

	want := "WHERE (industry_code IN (?, ?) OR indv_indu_code IN (?, ?))"
	if p.Where() != want {
		t.Errorf("where = %q, want %q", p.Where(), want)
	}
	if !reflect.DeepEqual(p.Args(), []any{"451", "1046", "451", "1046"}) {
		t.Errorf("args = %v", p.Args())
	}

	single := NewPredicate().AnyIn([]string{"a"}, "x").Build()
	if single.Where() != "WHERE a IN (?)" {
		t.Errorf("single column where = %q", single.Where())
	}
}

func TestPredicateBuilder_InSelect(t *testing.T) {
	p := NewPredicate().
		InSelect("reports.id", "SELECT report_id FROM report_author_index WHERE author_id", "123", "456").
		Build()

	want := "WHERE reports.id IN (SELECT report_id FROM report_author_index WHERE author_id IN (?, ?))"
	if p.Where() != want {
		t.Errorf("where = %q, want %q", p.Where(), want)
	}
	if !reflect.DeepEqual(p.Args(), []any{"123", "456"}) {
		t.Errorf("args = %v", p.Args())
	}
}

func TestPredicateBuilder_Match(t *testing.T) {
	p := NewPredicate().Match("reports_fts.content_text", "宏观经济", "货币").Build()

	if !p.UseFullText {
		t.Error("expected UseFullText")
	}
	if p.Where() != "WHERE reports_fts.content_text MATCH ?" {
		t.Errorf("where = %q", p.Where())
	}
	if !reflect.DeepEqual(p.Args(), []any{`"宏观经济" AND "货币"`}) {
		t.Errorf("args = %v", p.Args())
	}
}

func TestPredicateBuilder_ContainsAll(t *testing.T) {
	p := NewPredicate().ContainsAll("reports.content_text", "AB", "5%").Build()

	want := `WHERE (reports.content_text LIKE ? ESCAPE '\' AND reports.content_text LIKE ? ESCAPE '\')`
	if p.Where() != want {
		t.Errorf("where = %q\nwant    %q", p.Where(), want)
	}
	if !reflect.DeepEqual(p.Args(), []any{"%AB%", `%5\%%`}) {
		t.Errorf("args = %v", p.Args())
	}
	if p.UseFullText {
		t.Error("substring clauses must not require the full-text index")
	}
}

func TestPredicate_ArgsIsACopy(t *testing.T) {
	p := NewPredicate().In("a", "x").Build()
	args := p.Args()
	args[0] = "mutated"
	_ = append(args, 20, 0)

	if p.Args()[0] != "x" || len(p.Args()) != 1 {
		t.Errorf("predicate args changed: %v", p.Args())
	}
}

func TestPredicateBuilder_BuildSnapshot(t *testing.T) {
	b := NewPredicate().Where("x = 1")
	first := b.Build()
	b.Where("y = 2")

	if len(first.Clauses) != 1 {
		t.Errorf("snapshot has %d clauses, want 1", len(first.Clauses))
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range cases {
		if got := Placeholders(n); got != want {
			t.Errorf("Placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`c:\dir`, `c:\\dir`},
		{"研报", "研报"},
	}
	for _, tc := range tests {
		if got := EscapeLike(tc.in); got != tc.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPhraseQuery(t *testing.T) {
	if got := PhraseQuery([]string{"one"}); got != `"one"` {
		t.Errorf("got %q", got)
	}
	if got := PhraseQuery([]string{`say"hi"`, "NOT"}); got != `"say""hi""" AND "NOT"` {
		t.Errorf("got %q", got)
	}
}
