// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is the number of rows in paged list responses.
const DefaultPageSize = 20

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 100

// Params holds parsed paging parameters for a list endpoint.
type Params struct {
	Page int // 1-based
	Size int
}

// Parse extracts "page" and "page_size" query parameters with defaults.
// Invalid or missing values fall back rather than erroring; paging is never
// a reason to fail a list request.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, Size: DefaultPageSize}

	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := r.URL.Query().Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.Size = n
		}
	}
	return p
}

// Skip returns the number of documents to skip for Mongo Find options.
func (p Params) Skip() int64 { return int64((p.Page - 1) * p.Size) }

// Limit returns the page size as int64 for Mongo Find options.
func (p Params) Limit() int64 { return int64(p.Size) }
