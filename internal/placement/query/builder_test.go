package query

import (
	"errors"
	"testing"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestBuildComposesFilters(t *testing.T) {
	q, err := Build(domain.QuerySpec{
		Statuses:       []string{"draft", "firm_order"},
		EffectiveYears: []int{2024},
		UserOnly:       boolPtr(false),
	}, "")
	require.NoError(t, err)

	assert.Nil(t, q.Sort)
	require.Len(t, q.Predicates, 2)
	assert.Equal(t, domain.Predicate{Field: domain.FieldEffectiveYear, Op: domain.OpIn, Values: []any{2024}}, q.Predicates[0])
	assert.Equal(t, domain.Predicate{Field: domain.FieldStatus, Op: domain.OpIn, Values: []any{"draft", "firm_order"}}, q.Predicates[1])
}

func TestBuildUserOnlyDefaultsToCaller(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		q, err := Build(domain.QuerySpec{}, "66992a66-8ac8-4b5c-b420-056f39c0435e")
		require.NoError(t, err)
		require.Len(t, q.Predicates, 1)
		assert.Equal(t, domain.FieldOwnerID, q.Predicates[0].Field)
		assert.Equal(t, domain.OpEq, q.Predicates[0].Op)
		assert.Equal(t, []any{"66992a66-8ac8-4b5c-b420-056f39c0435e"}, q.Predicates[0].Values)
	})

	t.Run("explicit true", func(t *testing.T) {
		q, err := Build(domain.QuerySpec{UserOnly: boolPtr(true)}, "u-1")
		require.NoError(t, err)
		require.Len(t, q.Predicates, 1)
	})

	t.Run("explicit false", func(t *testing.T) {
		q, err := Build(domain.QuerySpec{UserOnly: boolPtr(false)}, "u-1")
		require.NoError(t, err)
		assert.Empty(t, q.Predicates)
	})

	t.Run("missing caller", func(t *testing.T) {
		_, err := Build(domain.QuerySpec{}, "  ")
		assert.True(t, errors.Is(err, domain.ErrCallerIdentityRequired))
	})
}

func TestBuildInceptionRange(t *testing.T) {
	q, err := Build(domain.QuerySpec{
		InceptionFrom: "2024-01-01",
		InceptionTo:   "2024-12-31",
		UserOnly:      boolPtr(false),
	}, "")
	require.NoError(t, err)
	require.Len(t, q.Predicates, 2)

	assert.Equal(t, domain.OpGte, q.Predicates[0].Op)
	assert.Equal(t, []any{"2024-01-01T00:00:00.000000000Z"}, q.Predicates[0].Values)
	assert.Equal(t, domain.OpLte, q.Predicates[1].Op)
	assert.Equal(t, []any{"2024-12-31T23:59:59.999999999Z"}, q.Predicates[1].Values)

	t.Run("one sided", func(t *testing.T) {
		q, err := Build(domain.QuerySpec{InceptionTo: "2024-06-30T12:00:00Z", UserOnly: boolPtr(false)}, "")
		require.NoError(t, err)
		require.Len(t, q.Predicates, 1)
		assert.Equal(t, domain.OpLte, q.Predicates[0].Op)
		assert.Equal(t, []any{"2024-06-30T12:00:00.000000000Z"}, q.Predicates[0].Values)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Build(domain.QuerySpec{InceptionFrom: "yesterday", UserOnly: boolPtr(false)}, "")
		assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
	})
}

func TestBuildSkipsBlankValues(t *testing.T) {
	q, err := Build(domain.QuerySpec{ClientNames: []string{"", "  "}, UserOnly: boolPtr(false)}, "")
	require.NoError(t, err)
	assert.Empty(t, q.Predicates)
}

func TestBuildSort(t *testing.T) {
	cases := []struct {
		orderBy string
		dir     string
		field   domain.Field
		want    domain.SortDirection
	}{
		{"clientName", "", domain.FieldClientName, domain.SortAsc},
		{"placementName", "desc", domain.FieldDescription, domain.SortDesc},
		{"effectiveYear", "DESC", domain.FieldEffectiveYear, domain.SortDesc},
		{"ownerName", "asc", domain.FieldOwnerFirstName, domain.SortAsc},
		{"contractInceptiondate", "Desc", domain.FieldInception, domain.SortDesc},
		{"Status", "sideways", domain.FieldStatus, domain.SortAsc},
		{"somethingElse", "desc", domain.FieldClientName, domain.SortDesc},
	}
	for _, tc := range cases {
		t.Run(tc.orderBy, func(t *testing.T) {
			q, err := Build(domain.QuerySpec{OrderBy: tc.orderBy, OrderDir: tc.dir, UserOnly: boolPtr(false)}, "")
			require.NoError(t, err)
			require.NotNil(t, q.Sort)
			assert.Equal(t, tc.field, q.Sort.Field)
			assert.Equal(t, tc.want, q.Sort.Direction)
		})
	}
}

func TestUnknownSortMatchesClientName(t *testing.T) {
	for _, dir := range []string{"asc", "desc"} {
		unknown, err := Build(domain.QuerySpec{OrderBy: "bogus", OrderDir: dir, UserOnly: boolPtr(false)}, "")
		require.NoError(t, err)
		explicit, err := Build(domain.QuerySpec{OrderBy: "clientName", OrderDir: dir, UserOnly: boolPtr(false)}, "")
		require.NoError(t, err)
		assert.Equal(t, explicit, unknown)
	}
}
