package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name string
	cat  interface{}
}

func rowField(r row, field string) interface{} {
	if field == "name" {
		return r.name
	}
	return r.cat
}

func TestSortBy(t *testing.T) {
	rows := []row{{"b", "x"}, {"a", nil}, {"c", "x"}, {"d", "a"}}

	SortBy(rows, []Order{{Field: "cat"}, {Field: "name", Desc: true}}, rowField)

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"a", "d", "c", "b"}, names)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, Paginate(items, 0, 0))
	assert.Equal(t, []int{3, 4}, Paginate(items, 2, 2))
	assert.Equal(t, []int{5}, Paginate(items, 4, 10))
	assert.Equal(t, []int{}, Paginate(items, 9, 1))
}
