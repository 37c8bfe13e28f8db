// Package pipeline produces filtered, sorted, paginated views over record
// lists without mutating the source. Views are pure: identical input and
// view state always yield identical output.
package pipeline

import (
	"sort"
	"strings"
)

// Predicate reports whether a record passes a filter.
type Predicate[T any] func(T) bool

// Less orders two records for sorting.
type Less[T any] func(a, b T) bool

// Search matches records whose named fields contain the query,
// case-insensitively. An empty query passes everything.
func Search[T any](query string, fields func(T) []string) Predicate[T] {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return func(T) bool { return true }
	}
	return func(item T) bool {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), query) {
				return true
			}
		}
		return false
	}
}

// Match is a categorical equality filter. An empty or "All" want value
// passes everything.
func Match[T any](want string, get func(T) string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "all") {
		return func(T) bool { return true }
	}
	return func(item T) bool { return get(item) == want }
}

// DateRange filters by an epoch-millisecond field. A zero bound is open.
func DateRange[T any](from, to int64, get func(T) int64) Predicate[T] {
	if from == 0 && to == 0 {
		return func(T) bool { return true }
	}
	return func(item T) bool {
		v := get(item)
		if from != 0 && v < from {
			return false
		}
		if to != 0 && v > to {
			return false
		}
		return true
	}
}

// View describes a filter/sort/page request over a list.
type View[T any] struct {
	Filters    []Predicate[T]
	Less       Less[T]
	Descending bool
	Page       int // 1-based; clamped into range
	PageSize   int // <=0 disables pagination
}

// Result is one page of a view plus its totals.
type Result[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// Apply runs the view. Filters are ANDed, sorting is stable (ties keep
// input order), the page index is clamped to the last page.
func (v View[T]) Apply(items []T) Result[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v.accepts(item) {
			out = append(out, item)
		}
	}

	if v.Less != nil {
		less := v.Less
		if v.Descending {
			less = func(a, b T) bool { return v.Less(b, a) }
		}
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}

	total := len(out)
	page := v.Page
	size := v.PageSize
	if size <= 0 {
		return Result[T]{Items: out, Total: total, Page: 1, PageSize: total}
	}

	lastPage := (total + size - 1) / size
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Result[T]{Items: out[start:end], Total: total, Page: page, PageSize: size}
}

func (v View[T]) accepts(item T) bool {
	for _, p := range v.Filters {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}
