package report

import (
	"strings"

	"github.com/kailas-cloud/reportdex/internal/db"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

const (
	fromReports  = "FROM reports"
	fromFullText = "FROM reports JOIN reports_fts ON reports.id = reports_fts.rowid"

	baselineClause = "reports.pdf_link IS NOT NULL"
	authorSubquery = "SELECT report_id FROM report_author_index WHERE author_id"
	fullTextColumn = "reports_fts.content_text"
	contentColumn  = "reports.content_text"
	attachColumn   = "reports.attach_pages"
	tieBreakColumn = "reports.info_code"
)

// facetColumns maps single-column facets to store columns, in clause order.
var facetColumns = []struct {
	facet  request.Facet
	column string
}{
	{request.FacetReportType, "reports.report_type"},
	{request.FacetStock, "reports.stock_code"},
	{request.FacetColumn, `reports."column"`},
	{request.FacetOrg, "reports.org_code"},
	{request.FacetMarket, "reports.market"},
}

// industryColumns are matched with OR: a report qualifies when either its
// general or its individual-stock industry is selected.
var industryColumns = []string{"reports.industry_code", "reports.indv_indu_code"}

var sortColumns = map[request.SortField]string{
	request.SortPublishDate:  "reports.publish_date",
	request.SortTitle:        "reports.title",
	request.SortOrgShortName: "reports.org_s_name",
}

// selectColumns is the fixed projection decoded by decodeDocument.
var selectColumns = strings.Join([]string{
	"reports.info_code",
	"reports.title",
	"reports.publish_date",
	"reports.report_type",
	"reports.stock_code",
	"reports.stock_name",
	"reports.market",
	"reports.org_code",
	"reports.org_s_name",
	"reports.author",
	"reports.industry_code",
	"reports.industry_name",
	"reports.indv_indu_code",
	"reports.indv_indu_name",
	`reports."column"`,
	"reports.attach_pages",
	"reports.attach_size",
	"reports.pdf_link",
	"reports.content",
}, ", ")

// statements is the page/count pair derived from one predicate.
type statements struct {
	predicate db.Predicate
	page      string
	pageArgs  []any
	count     string
	countArgs []any
}

// buildPredicate translates a validated request into a store predicate.
func buildPredicate(req *request.FilterRequest) db.Predicate {
	b := db.NewPredicate().Where(baselineClause)

	for _, fc := range facetColumns {
		b.In(fc.column, req.Facet(fc.facet)...)
	}
	b.AnyIn(industryColumns, req.Facet(request.FacetIndustry)...)
	b.InSelect("reports.id", authorSubquery, authorIDs(req.Facet(request.FacetAuthor))...)

	fullText, substring := mode.Route(req.Keywords())
	b.Match(fullTextColumn, fullText...)
	b.ContainsAll(contentColumn, substring...)

	if n, ok := req.AttachPages(); ok {
		b.AtLeast(attachColumn, n)
	}
	return b.Build()
}

// buildStatements renders the page and count statements. Both share the
// same FROM and WHERE so the count always describes the paged set.
func buildStatements(req *request.FilterRequest) statements {
	p := buildPredicate(req)

	from := fromReports
	if p.UseFullText {
		from = fromFullText
	}
	tail := from
	if where := p.Where(); where != "" {
		tail += " " + where
	}

	pageArgs := append(p.Args(), req.PageSize(), req.Offset())
	return statements{
		predicate: p,
		page:      "SELECT " + selectColumns + " " + tail + " " + orderBy(req) + " LIMIT ? OFFSET ?",
		pageArgs:  pageArgs,
		count:     "SELECT COUNT(*) AS count " + tail,
		countArgs: p.Args(),
	}
}

// orderBy renders the allow-listed sort with a deterministic tie-break.
func orderBy(req *request.FilterRequest) string {
	col, ok := sortColumns[req.SortField()]
	if !ok {
		col = sortColumns[request.SortPublishDate]
	}
	dir := "DESC"
	if req.SortOrder() == request.Asc {
		dir = "ASC"
	}
	return "ORDER BY " + col + " " + dir + ", " + tieBreakColumn + " " + dir
}

// authorIDs extracts the identifier part of "<id>.<name>" author tokens,
// dropping empty identifiers and duplicates.
func authorIDs(tokens []string) []string {
	ids := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		id := domreport.AuthorID(tok)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
