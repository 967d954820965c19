// Package paginator slices result lists into pages and tracks the state of an
// interactive paged message.
package paginator

// TotalPages is the number of pages n items fill. An empty list still has one page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Clamp forces pageIndex into [0, TotalPages-1].
func Clamp(pageIndex, n, pageSize int) int {
	last := TotalPages(n, pageSize) - 1
	if pageIndex < 0 {
		return 0
	}
	if pageIndex > last {
		return last
	}
	return pageIndex
}

// Page returns the items on pageIndex (0-based) after clamping it.
func Page[T any](items []T, pageIndex, pageSize int) []T {
	if len(items) == 0 || pageSize <= 0 {
		return []T{}
	}
	pageIndex = Clamp(pageIndex, len(items), pageSize)
	start := pageIndex * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}
