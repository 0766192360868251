package query

import "sort"

// SortBy orders items in place by the given keys. get reads a field from
// an item; nil values sort first, as Spanner does for ascending keys.
func SortBy[T any](items []T, orders []Order, get func(item T, field string) interface{}) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, o := range orders {
			c := compareNullable(get(items[i], o.Field), get(items[j], o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Paginate applies skip and limit to an already ordered slice. A zero limit
// means no limit.
func Paginate[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func compareNullable(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := Compare(a, b)
	return c
}
