package models

// Page is one page of a listing as returned by the API.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// Pagination is the metadata derived from a page. It is never taken from
// the wire; NewPagination recomputes it every time.
type Pagination struct {
	TotalCount      int
	Page            int
	PageSize        int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewPagination derives page counts. A non-positive pageSize yields zero
// total pages and no next page.
func NewPagination(page, pageSize, totalCount int) Pagination {
	p := Pagination{
		TotalCount:      totalCount,
		Page:            page,
		PageSize:        pageSize,
		HasPreviousPage: page > 1,
	}
	if pageSize > 0 {
		p.TotalPages = (totalCount + pageSize - 1) / pageSize
		p.HasNextPage = page*pageSize < totalCount
	}
	return p
}

// Pagination derives metadata for this page.
func (p Page[T]) Pagination() Pagination {
	return NewPagination(p.Page, p.PageSize, p.TotalCount)
}
