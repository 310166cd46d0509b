package mode

import "unicode/utf8"

// Mode is the text search strategy chosen for a content query.
type Mode string

// Search mode constants.
const (
	// None means no content query: the plain reports table is scanned through its indexes.
	None Mode = "none"
	// FullText joins the FTS5 index; two-character keywords are still ANDed as substring matches.
	FullText  Mode = "fulltext"
	Substring Mode = "substring"
)

// Keyword length thresholds, in characters.
const (
	// MinKeywordLength rejects shorter keywords: they over-match and swamp the index.
	MinKeywordLength = 2
	// MinFullTextLength routes keywords of at least this length to the FTS5 index.
	MinFullTextLength = 3
)

// Route splits validated keywords into full-text and substring groups, preserving order.
// Keywords shorter than MinKeywordLength are ignored; callers reject them beforehand.
func Route(keywords []string) (fullText, substring []string) {
	for _, kw := range keywords {
		switch n := utf8.RuneCountInString(kw); {
		case n >= MinFullTextLength:
			fullText = append(fullText, kw)
		case n == MinKeywordLength:
			substring = append(substring, kw)
		}
	}
	return fullText, substring
}

// Select picks the strategy for a routed keyword set.
func Select(fullText, substring []string) Mode {
	switch {
	case len(fullText) > 0:
		return FullText
	case len(substring) > 0:
		return Substring
	default:
		return None
	}
}
