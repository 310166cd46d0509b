package report

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/reportdex/internal/db"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
)

// decodeDocument maps one projected row onto a Document and fills the
// derived fields. Every projected column must be present; NULL maps to nil.
func decodeDocument(row db.Row) (domreport.Document, error) {
	d := rowDecoder{row: row}
	doc := domreport.Document{
		ID:           d.str("info_code"),
		Title:        d.str("title"),
		PublishDate:  d.str("publish_date"),
		ReportType:   d.strPtr("report_type"),
		StockCode:    d.strPtr("stock_code"),
		StockName:    d.strPtr("stock_name"),
		Market:       d.strPtr("market"),
		OrgCode:      d.strPtr("org_code"),
		OrgSName:     d.strPtr("org_s_name"),
		Author:       d.strPtr("author"),
		IndustryCode: d.strPtr("industry_code"),
		IndustryName: d.strPtr("industry_name"),
		IndvInduCode: d.strPtr("indv_indu_code"),
		IndvInduName: d.strPtr("indv_indu_name"),
		Column:       d.strPtr("column"),
		AttachPages:  d.intPtr("attach_pages"),
		AttachSize:   d.intPtr("attach_size"),
		PdfLink:      d.strPtr("pdf_link"),
		Content:      d.strPtr("content"),
	}
	if d.err != nil {
		return domreport.Document{}, d.err
	}
	doc.Derive()
	return doc, nil
}

func decodeDocuments(rows []db.Row) ([]domreport.Document, error) {
	docs := make([]domreport.Document, 0, len(rows))
	for i, row := range rows {
		doc, err := decodeDocument(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// decodeCount reads the single "count" column of a COUNT(*) result.
func decodeCount(rows []db.Row) (int, error) {
	if len(rows) != 1 {
		return 0, fmt.Errorf("count: expected 1 row, got %d", len(rows))
	}
	d := rowDecoder{row: rows[0]}
	n := d.intPtr("count")
	if d.err != nil {
		return 0, d.err
	}
	if n == nil {
		return 0, nil
	}
	return int(*n), nil
}

// rowDecoder records the first decoding error and keeps going with zero values.
type rowDecoder struct {
	row db.Row
	err error
}

func (d *rowDecoder) value(col string) (any, bool) {
	v, ok := d.row[col]
	if !ok && d.err == nil {
		d.err = fmt.Errorf("missing column %q", col)
	}
	return v, ok
}

func (d *rowDecoder) str(col string) string {
	if p := d.strPtr(col); p != nil {
		return *p
	}
	return ""
}

func (d *rowDecoder) strPtr(col string) *string {
	v, ok := d.value(col)
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

func (d *rowDecoder) intPtr(col string) *int64 {
	v, ok := d.value(col)
	if !ok || v == nil {
		return nil
	}
	var n int64
	switch t := v.(type) {
	case int64:
		n = t
	case float64:
		n = int64(t)
	case string, []byte:
		s := fmt.Sprintf("%s", t)
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			if d.err == nil {
				d.err = fmt.Errorf("column %q: %w", col, err)
			}
			return nil
		}
		n = parsed
	default:
		if d.err == nil {
			d.err = fmt.Errorf("column %q: unexpected type %T", col, v)
		}
		return nil
	}
	return &n
}
