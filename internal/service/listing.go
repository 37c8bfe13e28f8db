package service

// Listing defaults shared by the page view-models. The HTTP layer may
// override the page size per request within MaxPageSize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func pageSizeOrDefault(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
