// Package report holds the canonical research report record and the pure
// derivations applied to it on the way out of the store.
package report

// Document is a research report as exposed to clients. Read-only.
//
// Nullable store columns are pointers so that absent values encode as null.
type Document struct {
	ID          string  `json:"infoCode"`
	Title       string  `json:"title"`
	PublishDate string  `json:"publishDate"`
	ReportType  *string `json:"reportType"`

	StockCode *string `json:"stockCode"`
	StockName *string `json:"stockName"`
	Market    *string `json:"market"`

	OrgCode  *string `json:"orgCode"`
	OrgSName *string `json:"orgSName"`

	Author      *string  `json:"author"`
	Authors     []string `json:"authors"`
	AuthorNames []string `json:"authorNames"`

	IndustryCode        *string `json:"industryCode"`
	IndustryName        *string `json:"industryName"`
	IndvInduCode        *string `json:"indvInduCode"`
	IndvInduName        *string `json:"indvInduName"`
	IndustryDisplayCode string  `json:"industryDisplayCode"`
	IndustryDisplayName string  `json:"industryDisplayName"`

	Column      *string `json:"column"`
	AttachPages *int64  `json:"attachPages"`
	AttachSize  *int64  `json:"attachSize"`
	PdfLink     *string `json:"pdfLink"`
	Content     *string `json:"content"`
	Summary     string  `json:"summary"`
}

// DisplayIndustry coalesces the general industry pair with the
// individual-stock industry pair, preferring the general one.
func (d *Document) DisplayIndustry() (code, name string) {
	code = firstNonEmpty(d.IndustryCode, d.IndvInduCode)
	name = firstNonEmpty(d.IndustryName, d.IndvInduName)
	return code, name
}

// Derive fills the presentation fields computed from raw columns.
func (d *Document) Derive() {
	var raw string
	if d.Author != nil {
		raw = *d.Author
	}
	d.Authors, d.AuthorNames = SplitAuthors(raw)

	d.Summary = ""
	if d.Content != nil {
		d.Summary = Summarize(*d.Content)
	}

	d.IndustryDisplayCode, d.IndustryDisplayName = d.DisplayIndustry()
}

func firstNonEmpty(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
