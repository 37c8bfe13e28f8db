package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string
	Name   string
	Status string
	Date   int64
	Amount int64
}

var rows = []row{
	{ID: "1", Name: "Foundation Jan", Status: "ACTIVE", Date: 100, Amount: 500},
	{ID: "2", Name: "Advanced Feb", Status: "PAUSED", Date: 200, Amount: 300},
	{ID: "3", Name: "foundation mar", Status: "ACTIVE", Date: 300, Amount: 300},
	{ID: "4", Name: "Crash Course", Status: "COMPLETED", Date: 400, Amount: 900},
}

func names(r row) []string { return []string{r.Name} }

func TestSearchCaseInsensitive(t *testing.T) {
	v := View[row]{Filters: []Predicate[row]{Search("foundation", names)}}
	res := v.Apply(rows)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "1", res.Items[0].ID)
	assert.Equal(t, "3", res.Items[1].ID)
}

func TestEmptyAndAllFiltersPassEverything(t *testing.T) {
	v := View[row]{Filters: []Predicate[row]{
		Search("", names),
		Match("", func(r row) string { return r.Status }),
		Match("All", func(r row) string { return r.Status }),
		DateRange(0, 0, func(r row) int64 { return r.Date }),
	}}
	res := v.Apply(rows)
	assert.Equal(t, rows, res.Items)
}

func TestFiltersAreConjunctive(t *testing.T) {
	v := View[row]{Filters: []Predicate[row]{
		Match("ACTIVE", func(r row) string { return r.Status }),
		DateRange(250, 0, func(r row) int64 { return r.Date }),
	}}
	res := v.Apply(rows)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "3", res.Items[0].ID)
}

func TestDateRangeBounds(t *testing.T) {
	v := View[row]{Filters: []Predicate[row]{
		DateRange(150, 350, func(r row) int64 { return r.Date }),
	}}
	res := v.Apply(rows)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "2", res.Items[0].ID)
	assert.Equal(t, "3", res.Items[1].ID)
}

func TestStableSortKeepsInputOrderOnTies(t *testing.T) {
	v := View[row]{Less: func(a, b row) bool { return a.Amount < b.Amount }}
	res := v.Apply(rows)
	// Rows 2 and 3 tie on amount; input order must hold.
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(res.Items))
}

func TestDescendingSort(t *testing.T) {
	v := View[row]{
		Less:       func(a, b row) bool { return a.Date < b.Date },
		Descending: true,
	}
	res := v.Apply(rows)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(res.Items))
}

func TestPaginationClampsPageIndex(t *testing.T) {
	v := View[row]{Page: 99, PageSize: 3}
	res := v.Apply(rows)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "4", res.Items[0].ID)
	assert.Equal(t, 4, res.Total)
}

func TestPaginationFirstPage(t *testing.T) {
	v := View[row]{Page: 0, PageSize: 2}
	res := v.Apply(rows)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, []string{"1", "2"}, ids(res.Items))
}

func TestPaginationEmptyInput(t *testing.T) {
	v := View[row]{Page: 5, PageSize: 10}
	res := v.Apply(nil)
	assert.Equal(t, 1, res.Page)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Total)
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := []row{{ID: "b", Date: 2}, {ID: "a", Date: 1}}
	v := View[row]{Less: func(a, b row) bool { return a.Date < b.Date }}
	_ = v.Apply(src)
	assert.Equal(t, "b", src[0].ID)
}

func ids(items []row) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}
