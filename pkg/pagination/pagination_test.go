package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParamsClamps(t *testing.T) {
	p := NewParams(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = NewParams(3, 0)
	assert.Equal(t, 15, p.PerPage)
	assert.Equal(t, 30, p.Offset())
}

func TestNewPaginatedResult(t *testing.T) {
	page := NewPaginatedResult[int](nil, NewParams(2, 10), 25)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestMap(t *testing.T) {
	page := NewPaginatedResult([]int{1, 2, 3}, NewParams(1, 3), 3)

	mapped := Map(page, func(i int) string { return string(rune('a' + i - 1)) })

	assert.Equal(t, []string{"a", "b", "c"}, mapped.Items)
	assert.Same(t, page.Pagination, mapped.Pagination)
	assert.False(t, mapped.Pagination.HasNext)
}
