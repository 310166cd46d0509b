package report

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Summary budget.
const (
	SummaryMaxRunes = 200
	Ellipsis        = "..."
)

// Summarize derives a plain-text summary from rich content: markup removed,
// whitespace runs collapsed to one space, trimmed, capped at SummaryMaxRunes
// and terminated with Ellipsis. Empty content yields an empty summary.
func Summarize(content string) string {
	if content == "" {
		return ""
	}
	text := collapseSpace(stripMarkup(content))
	if r := []rune(text); len(r) > SummaryMaxRunes {
		text = string(r[:SummaryMaxRunes])
	}
	return text + Ellipsis
}

// stripMarkup returns the text nodes of an HTML fragment, dropping script and style bodies.
func stripMarkup(content string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(content))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text gathered so far is the answer.
			return b.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// SplitAuthors splits the raw author field ("11.张三, 12.李四") into trimmed
// author tokens and their display names. The display name is everything after
// the first '.'; a token without a separator is its own display name.
func SplitAuthors(raw string) (authors, names []string) {
	authors = []string{}
	names = []string{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		authors = append(authors, tok)
		names = append(names, DisplayName(tok))
	}
	return authors, names
}

// DisplayName returns the part of an author token after the first '.'.
func DisplayName(token string) string {
	if _, name, ok := strings.Cut(token, "."); ok {
		return name
	}
	return token
}

// AuthorID returns the part of an author token before the first '.'.
func AuthorID(token string) string {
	id, _, _ := strings.Cut(strings.TrimSpace(token), ".")
	return id
}
