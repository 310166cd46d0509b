package request

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum content query length in characters.
	MaxQueryLength  = 256
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxOffset bounds (page-1)*pageSize; deeper pages are rejected.
	MaxOffset = 10_000_000
)

// Path is the canonical request path used in cache keys.
const Path = "/api/reports"

// Facet is one independently filterable dimension of a report.
type Facet string

// Facets accepted as comma-separated query parameters.
const (
	FacetReportType Facet = "reportType"
	FacetIndustry   Facet = "industryCode"
	FacetStock      Facet = "stockCode"
	FacetColumn     Facet = "columnCode"
	FacetOrg        Facet = "orgCode"
	FacetAuthor     Facet = "author"
	FacetMarket     Facet = "market"
)

// Facets returns every supported facet in a stable order.
func Facets() []Facet {
	return []Facet{
		FacetReportType, FacetIndustry, FacetStock, FacetColumn,
		FacetOrg, FacetAuthor, FacetMarket,
	}
}

// SortField is a sortable report attribute.
type SortField string

// Sort fields.
const (
	SortPublishDate  SortField = "publishDate"
	SortTitle        SortField = "title"
	SortOrgShortName SortField = "orgShortName"
)

// sortAliases maps accepted sortBy values onto sort fields.
var sortAliases = map[string]SortField{
	"publishDate":  SortPublishDate,
	"title":        SortTitle,
	"orgShortName": SortOrgShortName,
	"orgSName":     SortOrgShortName,
}

// SortOrder is the direction of the primary sort and its tie-break.
type SortOrder string

// Sort orders.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Limits bounds pagination.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the built-in pagination limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// Params is raw, unvalidated search input.
type Params struct {
	Page         int
	PageSize     int
	SortBy       string
	Order        string
	Facets       map[Facet][]string
	ContentQuery string
	AttachPages  *int
}

// FilterRequest is a validated, normalized search.
type FilterRequest struct {
	page         int
	pageSize     int
	sortField    SortField
	sortOrder    SortOrder
	facets       map[Facet][]string
	contentQuery string
	keywords     []string
	attachPages  *int
}

// New validates and normalizes p with DefaultLimits.
func New(p Params) (FilterRequest, error) {
	return NewWithLimits(p, DefaultLimits())
}

// NewWithLimits validates and normalizes p.
// Non-positive pagination and oversized pages are clamped, unknown sort
// values fall back to publishDate/desc. Pages beyond MaxOffset and keywords
// shorter than two characters are rejected.
func NewWithLimits(p Params, lim Limits) (FilterRequest, error) {
	if lim.DefaultPageSize <= 0 {
		lim.DefaultPageSize = DefaultPageSize
	}
	if lim.MaxPageSize <= 0 {
		lim.MaxPageSize = MaxPageSize
	}

	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = lim.DefaultPageSize
	}
	if pageSize > lim.MaxPageSize {
		pageSize = lim.MaxPageSize
	}
	if page-1 > MaxOffset/pageSize {
		return FilterRequest{}, domain.NewValidationError("page out of range (max offset %d)", MaxOffset)
	}

	sortField, ok := sortAliases[p.SortBy]
	if !ok {
		sortField = SortPublishDate
	}
	sortOrder := Desc
	if strings.EqualFold(p.Order, string(Asc)) {
		sortOrder = Asc
	}

	facets := make(map[Facet][]string, len(p.Facets))
	for _, f := range Facets() {
		if vals := normalizeValues(p.Facets[f]); len(vals) > 0 {
			facets[f] = vals
		}
	}

	query := strings.TrimSpace(p.ContentQuery)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return FilterRequest{}, domain.NewValidationError("content query too long (max %d characters)", MaxQueryLength)
	}
	keywords, err := SplitKeywords(query)
	if err != nil {
		return FilterRequest{}, err
	}

	var attachPages *int
	if p.AttachPages != nil {
		if *p.AttachPages < 0 {
			return FilterRequest{}, domain.NewValidationError("attachPages must be non-negative")
		}
		v := *p.AttachPages
		attachPages = &v
	}

	return FilterRequest{
		page:         page,
		pageSize:     pageSize,
		sortField:    sortField,
		sortOrder:    sortOrder,
		facets:       facets,
		contentQuery: query,
		keywords:     keywords,
		attachPages:  attachPages,
	}, nil
}

// SplitKeywords splits a content query on ASCII and ideographic whitespace.
// Any keyword shorter than mode.MinKeywordLength fails the whole query.
func SplitKeywords(query string) ([]string, error) {
	keywords := strings.FieldsFunc(query, isSeparator)
	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) < mode.MinKeywordLength {
			return nil, domain.NewValidationError(
				"each search keyword must be at least %d characters long", mode.MinKeywordLength)
		}
	}
	return keywords, nil
}

// isSeparator matches ASCII whitespace and the ideographic space U+3000.
// Other Unicode spaces stay inside keywords.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', '\u3000':
		return true
	}
	return false
}

func normalizeValues(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Page returns the 1-based page number.
func (r *FilterRequest) Page() int { return r.page }

// PageSize returns the number of documents per page.
func (r *FilterRequest) PageSize() int { return r.pageSize }

// Offset returns the number of documents skipped before the page.
func (r *FilterRequest) Offset() int { return (r.page - 1) * r.pageSize }

// SortField returns the primary sort attribute.
func (r *FilterRequest) SortField() SortField { return r.sortField }

// SortOrder returns the sort direction.
func (r *FilterRequest) SortOrder() SortOrder { return r.sortOrder }

// Facet returns the accepted values of f, sorted and deduplicated. Empty means unconstrained.
func (r *FilterRequest) Facet(f Facet) []string { return slices.Clone(r.facets[f]) }

// ContentQuery returns the trimmed free-text query.
func (r *FilterRequest) ContentQuery() string { return r.contentQuery }

// Keywords returns the validated keyword tokens in query order.
func (r *FilterRequest) Keywords() []string { return slices.Clone(r.keywords) }

// AttachPages returns the minimum attachment page count, if set.
func (r *FilterRequest) AttachPages() (int, bool) {
	if r.attachPages == nil {
		return 0, false
	}
	return *r.attachPages, true
}

// Mode returns the text search strategy implied by the keywords.
func (r *FilterRequest) Mode() mode.Mode {
	return mode.Select(mode.Route(r.keywords))
}

// CanonicalKey serializes the request so that equivalent requests
// (facet values compared as sets, whitespace variants of the same query) collide.
func (r *FilterRequest) CanonicalKey() string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(r.page))
	v.Set("pageSize", strconv.Itoa(r.pageSize))
	v.Set("sortBy", string(r.sortField))
	v.Set("order", string(r.sortOrder))
	for f, vals := range r.facets {
		v.Set(string(f), strings.Join(vals, ","))
	}
	if len(r.keywords) > 0 {
		v.Set("contentQuery", strings.Join(r.keywords, " "))
	}
	if r.attachPages != nil {
		v.Set("attachPages", strconv.Itoa(*r.attachPages))
	}
	return "GET " + Path + "?" + v.Encode()
}
