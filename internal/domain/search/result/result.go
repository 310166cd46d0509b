package result

import "github.com/kailas-cloud/reportdex/internal/domain/report"

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// NewPagination computes pagination metadata. TotalPages = ceil(total / pageSize).
func NewPagination(page, pageSize, total int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Pagination{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
	}
}

// SearchResult is one page of documents plus pagination metadata.
type SearchResult struct {
	Documents  []report.Document `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// New creates a search result. A nil page is normalized to an empty one.
func New(docs []report.Document, page, pageSize, total int) SearchResult {
	if docs == nil {
		docs = []report.Document{}
	}
	return SearchResult{
		Documents:  docs,
		Pagination: NewPagination(page, pageSize, total),
	}
}
