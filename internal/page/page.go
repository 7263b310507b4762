// Package page implements offset pagination over id-ordered collections.
package page

// Metadata describes one page of a listing. Totals always reflect the whole
// collection, not the slice returned for the requested page.
type Metadata struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// NewMetadata computes metadata for page number of a collection with
// totalCount elements. number is 1-based; number and size are clamped to 1.
func NewMetadata(number, size, totalCount int) Metadata {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	return Metadata{
		CurrentPage: number,
		PageSize:    size,
		TotalCount:  totalCount,
		TotalPages:  (totalCount + size - 1) / size,
	}
}

// Paginate slices an ordered collection into its number-th page. A page past
// the end of the collection yields an empty slice, not an error.
func Paginate[T any](items []T, number, size int) ([]T, Metadata) {
	meta := NewMetadata(number, size, len(items))
	skip := (meta.CurrentPage - 1) * meta.PageSize
	if skip >= len(items) {
		return []T{}, meta
	}
	end := skip + meta.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end], meta
}
