package query

import (
	"testing"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/assert"
)

func yearPtr(v int) *int { return &v }

func TestSortPlacements(t *testing.T) {
	items := []domain.Placement{
		{ID: "a", ClientName: "Beta", EffectiveYear: yearPtr(2023)},
		{ID: "b", ClientName: "Alpha", EffectiveYear: yearPtr(2025)},
		{ID: "c", ClientName: "Gamma"},
	}

	SortPlacements(items, &domain.Sort{Field: domain.FieldClientName})
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))

	SortPlacements(items, &domain.Sort{Field: domain.FieldEffectiveYear, Direction: domain.SortDesc})
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))

	SortPlacements(items, &domain.Sort{Field: domain.FieldEffectiveYear})
	assert.Equal(t, []string{"c", "a", "b"}, ids(items))
}

func TestMatch(t *testing.T) {
	doc := map[domain.Field][]any{
		domain.FieldStatus:        {"draft"},
		domain.FieldEffectiveYear: {float64(2024)},
		domain.FieldInception:     {"2024-03-01T00:00:00.000000000Z"},
	}
	lookup := func(f domain.Field) []any { return doc[f] }

	assert.True(t, Match(lookup, []domain.Predicate{
		{Field: domain.FieldStatus, Op: domain.OpIn, Values: []any{"firm_order", "draft"}},
		{Field: domain.FieldEffectiveYear, Op: domain.OpIn, Values: []any{2024}},
		{Field: domain.FieldInception, Op: domain.OpGte, Values: []any{"2024-01-01T00:00:00.000000000Z"}},
		{Field: domain.FieldInception, Op: domain.OpLte, Values: []any{"2024-03-01T00:00:00.000000000Z"}},
	}))
	assert.False(t, Match(lookup, []domain.Predicate{
		{Field: domain.FieldEffectiveYear, Op: domain.OpIn, Values: []any{"2024"}},
	}))
	assert.False(t, Match(lookup, []domain.Predicate{
		{Field: domain.FieldOwnerID, Op: domain.OpEq, Values: []any{"u-1"}},
	}))
}

func ids(items []domain.Placement) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}
