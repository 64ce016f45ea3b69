// Package pagination provides page/limit calculation for list endpoints.
// This is part of the platform layer and contains no business logic.
package pagination

// DefaultLimit is applied when no limit is supplied.
const DefaultLimit = 10

// MaxLimit bounds the result-set size of a single page.
const MaxLimit = 100

// Params carries the page/limit query parameters of a list request.
// The query validator is the enforcement point for the limit range; Paginate
// only clamps defensively and never raises an error.
type Params struct {
	Page  int `form:"page" json:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// Result holds database query parameters plus derived page metadata.
type Result struct {
	Skip       int
	Take       int
	Page       int
	TotalPages int
	NextPage   *int
	PrevPage   *int
}

// Meta is the pagination block embedded in response envelopes.
type Meta struct {
	TotalPages int  `json:"totalPages"`
	TotalItems int  `json:"totalItems"`
	NextPage   *int `json:"nextPage"`
	PrevPage   *int `json:"prevPage"`
	Limit      int  `json:"limit"`
}

// Paginate converts page/limit parameters and a total item count into
// skip/take query parameters and next/prev metadata. It is a pure function;
// identical inputs always yield identical output.
func Paginate(p Params, totalItems int) Result {
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page := p.Page
	if page < 1 {
		page = 1
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	res := Result{
		Skip:       limit * (page - 1),
		Take:       limit,
		Page:       page,
		TotalPages: totalPages,
	}

	if next := page + 1; next <= totalPages {
		res.NextPage = &next
	}
	if prev := page - 1; prev >= 1 {
		res.PrevPage = &prev
	}

	return res
}

// Meta builds the envelope pagination block for this result.
func (r Result) Meta(totalItems int) *Meta {
	return &Meta{
		TotalPages: r.TotalPages,
		TotalItems: totalItems,
		NextPage:   r.NextPage,
		PrevPage:   r.PrevPage,
		Limit:      r.Take,
	}
}
