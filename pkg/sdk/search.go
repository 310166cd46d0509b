package reportdex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

// Search runs a filtered, optionally full-text, report search. Invalid
// params fail with an error wrapping ErrValidation.
func (c *Client) Search(ctx context.Context, p SearchParams) (page Page, err error) {
	start := time.Now()
	var hit bool
	defer func() { c.obs.observe("search", start, hit, err) }()

	var body []byte
	body, hit, err = c.searchSvc.Search(ctx, p.toRequest())
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	if err = json.Unmarshal(body, &page); err != nil {
		return Page{}, fmt.Errorf("search: decode page: %w", err)
	}
	page.Cached = hit
	return page, nil
}

// FilterOptions returns the facet vocabulary offered to users.
func (c *Client) FilterOptions(ctx context.Context) (opts FilterOptions, err error) {
	start := time.Now()
	var hit bool
	defer func() { c.obs.observe("filter_options", start, hit, err) }()

	var body []byte
	body, hit, err = c.facetSvc.Options(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("filter options: %w", err)
	}
	if err = json.Unmarshal(body, &opts); err != nil {
		return FilterOptions{}, fmt.Errorf("filter options: decode: %w", err)
	}
	return opts, nil
}

// Revalidate drops every cached result of the topic named by tag and returns
// the canonical topic name. Unknown tags fail with ErrUnknownTopic.
func (c *Client) Revalidate(ctx context.Context, tag string) (topic string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("revalidate", start, false, err) }()

	t, err := c.revalSvc.Revalidate(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("revalidate: %w", err)
	}
	return string(t), nil
}

func (p *SearchParams) toRequest() request.Params {
	facets := make(map[request.Facet][]string)
	for f, vals := range map[request.Facet][]string{
		request.FacetReportType: p.ReportTypes,
		request.FacetIndustry:   p.Industries,
		request.FacetStock:      p.Stocks,
		request.FacetColumn:     p.Columns,
		request.FacetOrg:        p.Orgs,
		request.FacetAuthor:     p.Authors,
		request.FacetMarket:     p.Markets,
	} {
		if len(vals) > 0 {
			facets[f] = vals
		}
	}
	return request.Params{
		Page:         p.Page,
		PageSize:     p.PageSize,
		SortBy:       p.SortBy,
		Order:        p.Order,
		Facets:       facets,
		ContentQuery: p.ContentQuery,
		AttachPages:  p.AttachPages,
	}
}
