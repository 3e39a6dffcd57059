package query

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultSortField = "updatedAt"
	DefaultSortOrder = "asc"
	DefaultPage      = 1
	DefaultPageSize  = 10
)

// Descriptor is the normalized form of a listing request.
type Descriptor struct {
	SearchTerm string
	SortField  string
	SortOrder  string
	Page       int
	PageSize   int

	// Optional equality filters for child collections.
	OrderID  *int64
	WindowID *int64
}

// Default returns a descriptor carrying the documented defaults.
func Default() Descriptor {
	return Descriptor{
		SortField: DefaultSortField,
		SortOrder: DefaultSortOrder,
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
	}
}

// Descending reports whether results are ordered high to low.
func (d Descriptor) Descending() bool {
	return strings.EqualFold(strings.TrimSpace(d.SortOrder), "desc")
}

// Offset is the number of filtered records skipped before the page starts.
// ok is false when the offset does not fit in an int, in which case the page
// lies past the end of any result.
func (d Descriptor) Offset() (offset int, ok bool) {
	if d.Page < 1 || d.PageSize < 1 {
		return 0, true
	}
	if d.Page-1 > math.MaxInt/d.PageSize {
		return 0, false
	}
	return (d.Page - 1) * d.PageSize, true
}

// Validate returns a field -> message map for out-of-range paging values.
func (d Descriptor) Validate() map[string]string {
	errs := map[string]string{}
	if d.Page < 1 {
		errs["page"] = fmt.Sprintf("page must be greater than or equal to 1, got %d", d.Page)
	}
	if d.PageSize < 1 {
		errs["pageSize"] = fmt.Sprintf("pageSize must be greater than or equal to 1, got %d", d.PageSize)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
