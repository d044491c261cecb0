package query

import (
	"sort"

	"github.com/smallbiznis/placements/internal/placement/domain"
)

// SortPlacements orders placements in process for stores that cannot sort
// server side. Unset values sort first ascending and last descending.
func SortPlacements(items []domain.Placement, s *domain.Sort) {
	if s == nil || len(items) < 2 {
		return
	}
	keys := make([]any, len(items))
	for i := range items {
		keys[i] = items[i].Projection().Value(s.Field)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := Compare(keys[idx[a]], keys[idx[b]])
		if s.Direction == domain.SortDesc {
			return c > 0
		}
		return c < 0
	})
	sorted := make([]domain.Placement, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// Compare orders two scalar values of the same kind. Numbers compare
// numerically, strings lexically and nil before anything else.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, _ := a.(string)
	sb, _ := b.(string)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
