package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

// SearchReportsParams defines parameters for SearchReports.
type SearchReportsParams struct {
	Page     *int
	PageSize *int
	SortBy   *string `validate:"omitempty,max=32"`
	Order    *string `validate:"omitempty,max=8"`

	ReportType   *[]string `validate:"omitempty,max=50,dive,max=32"`
	IndustryCode *[]string `validate:"omitempty,max=200,dive,max=32"`
	StockCode    *[]string `validate:"omitempty,max=200,dive,max=32"`
	ColumnCode   *[]string `validate:"omitempty,max=50,dive,max=32"`
	OrgCode      *[]string `validate:"omitempty,max=200,dive,max=32"`
	Author       *[]string `validate:"omitempty,max=50,dive,max=128"`
	Market       *[]string `validate:"omitempty,max=20,dive,max=32"`

	ContentQuery *string
	AttachPages  *int
}

// RevalidateParams defines parameters for Revalidate.
type RevalidateParams struct {
	Tag string `validate:"required,max=64"`
}

// bindSearchReportsParams binds query parameters the way generated
// oapi-codegen wrappers do: scalars as exploded form values, facet sets as
// comma-separated (non-exploded) form arrays.
func bindSearchReportsParams(q url.Values) (SearchReportsParams, error) {
	var p SearchReportsParams

	scalars := []struct {
		name string
		dest any
	}{
		{"page", &p.Page},
		{"pageSize", &p.PageSize},
		{"sortBy", &p.SortBy},
		{"order", &p.Order},
		{"contentQuery", &p.ContentQuery},
		{"attachPages", &p.AttachPages},
	}
	for _, s := range scalars {
		if err := runtime.BindQueryParameter("form", true, false, s.name, q, s.dest); err != nil {
			return SearchReportsParams{}, &invalidParamError{name: s.name, err: err}
		}
	}

	sets := []struct {
		name string
		dest **[]string
	}{
		{string(request.FacetReportType), &p.ReportType},
		{string(request.FacetIndustry), &p.IndustryCode},
		{string(request.FacetStock), &p.StockCode},
		{string(request.FacetColumn), &p.ColumnCode},
		{string(request.FacetOrg), &p.OrgCode},
		{string(request.FacetAuthor), &p.Author},
		{string(request.FacetMarket), &p.Market},
	}
	for _, s := range sets {
		if err := runtime.BindQueryParameter("form", false, false, s.name, q, s.dest); err != nil {
			return SearchReportsParams{}, &invalidParamError{name: s.name, err: err}
		}
	}
	return p, nil
}

func bindRevalidateParams(q url.Values) (RevalidateParams, error) {
	var p RevalidateParams
	if err := runtime.BindQueryParameter("form", true, true, "tag", q, &p.Tag); err != nil {
		return RevalidateParams{}, &invalidParamError{name: "tag", err: err}
	}
	return p, nil
}

// toRequest converts bound parameters into raw search input.
func (p *SearchReportsParams) toRequest() request.Params {
	facets := map[request.Facet][]string{}
	for f, vals := range map[request.Facet]*[]string{
		request.FacetReportType: p.ReportType,
		request.FacetIndustry:   p.IndustryCode,
		request.FacetStock:      p.StockCode,
		request.FacetColumn:     p.ColumnCode,
		request.FacetOrg:        p.OrgCode,
		request.FacetAuthor:     p.Author,
		request.FacetMarket:     p.Market,
	} {
		if vals != nil {
			facets[f] = *vals
		}
	}

	return request.Params{
		Page:         deref(p.Page),
		PageSize:     deref(p.PageSize),
		SortBy:       deref(p.SortBy),
		Order:        deref(p.Order),
		Facets:       facets,
		ContentQuery: deref(p.ContentQuery),
		AttachPages:  p.AttachPages,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// invalidParamError reports a query parameter that could not be bound.
type invalidParamError struct {
	name string
	err  error
}

func (e *invalidParamError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.name, e.err)
}

func (e *invalidParamError) Unwrap() error { return e.err }
