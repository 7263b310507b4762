package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3}

	got, meta := Paginate(items, 1, 2)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, Metadata{CurrentPage: 1, PageSize: 2, TotalCount: 3, TotalPages: 2}, meta)

	got, meta = Paginate(items, 2, 2)
	assert.Equal(t, []int{3}, got)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestPaginatePastEnd(t *testing.T) {
	got, meta := Paginate([]int{1, 2, 3}, 3, 2)
	assert.Empty(t, got)
	assert.Equal(t, 3, meta.TotalCount)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestPaginateEmpty(t *testing.T) {
	got, meta := Paginate([]string{}, 1, 10)
	assert.Empty(t, got)
	assert.Equal(t, 0, meta.TotalCount)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestPaginateClampsInvalidInput(t *testing.T) {
	got, meta := Paginate([]int{1, 2}, 0, 0)
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 1, meta.PageSize)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestMetadataIndependentOfRequestedPage(t *testing.T) {
	items := make([]int, 25)
	for page := 1; page <= 5; page++ {
		_, meta := Paginate(items, page, 10)
		assert.Equal(t, 25, meta.TotalCount)
		assert.Equal(t, 3, meta.TotalPages)
	}
}
