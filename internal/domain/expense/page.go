package expense

// PageSize is the row count of the plain paged listing.
const PageSize = 100

// FallbackPageSize replaces a page size below 1.
const FallbackPageSize = 20

// MaxPage bounds page numbers taken from the URL.
const MaxPage = 1_000_000

// RangePageSize is the page size used by the ranged listing: 100*lastPage - page + 1.
// The formula is kept as clients know it; with page=1, lastPage=1 it yields 100.
func RangePageSize(page, lastPage int) int {
	return PageSize*lastPage - page + 1
}

// Window is a LIMIT/OFFSET pair for a 1-based page of the given size.
type Window struct {
	Limit  int
	Offset int
}

func PageWindow(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = FallbackPageSize
	}
	return Window{Limit: size, Offset: (page - 1) * size}
}
