package pagination

// DefaultPageSize is the standard page size when one is not configured.
const DefaultPageSize = 12

// MaxPageSize caps how many rows any page query can request.
const MaxPageSize = 100

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page describes one page of results plus the metadata to walk the set.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Normalize clamps the raw inputs to sane bounds.
func (p Params) Normalize() Params {
	out := p
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	if out.PageSize > MaxPageSize {
		out.PageSize = MaxPageSize
	}
	return out
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// Build assembles page metadata from the normalized params and a row count.
func Build(params Params, total int64) Page {
	n := params.Normalize()
	totalPages := int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	return Page{
		Page:       n.Page,
		PageSize:   n.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    n.Page < totalPages,
		HasPrev:    n.Page > 1 && total > 0,
	}
}
