package reportdex

import (
	"github.com/kailas-cloud/reportdex/internal/domain"
	domfacet "github.com/kailas-cloud/reportdex/internal/domain/facet"
	"github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// Report is one projected research report.
type Report = report.Document

// Pagination describes where a page sits in the full result set.
type Pagination = result.Pagination

// FacetOption is one selectable filter value.
type FacetOption = domfacet.Option

// FilterOptions is the complete facet vocabulary.
type FilterOptions = domfacet.Options

// SearchParams filters, searches and pages reports. Zero values take the
// service defaults. Each facet slice matches any of its values; facets
// combine with AND.
type SearchParams struct {
	Page     int
	PageSize int
	SortBy   string // publishDate (default), title, orgShortName
	Order    string // desc (default) or asc

	ReportTypes []string
	Industries  []string
	Stocks      []string
	Columns     []string
	Orgs        []string
	Authors     []string
	Markets     []string

	// ContentQuery is a space-separated keyword list matched against title and content.
	ContentQuery string
	// AttachPages filters by attachment page count; nil disables the filter.
	AttachPages *int
}

// Page is one page of search results.
type Page struct {
	Reports    []Report   `json:"data"`
	Pagination Pagination `json:"pagination"`
	// Cached reports whether the page was served from the result cache.
	Cached bool `json:"-"`
}

// Topic names accepted by Revalidate.
const (
	TopicDocuments    = string(domain.TopicDocuments)
	TopicFacetOptions = string(domain.TopicFacetOptions)
)
