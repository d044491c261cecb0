// Package storetest checks that a domain.Store adapter honours the document
// store contract.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/placement/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store.
type Factory func(t *testing.T) domain.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("collection save assigns id", func(t *testing.T) { testCollectionSave(t, newStore(t)) })
	t.Run("placement lifecycle", func(t *testing.T) { testPlacementLifecycle(t, newStore(t)) })
	t.Run("find", func(t *testing.T) { testFind(t, newStore(t)) })
}

func intPtr(v int) *int { return &v }

// Seed writes four placements in a fixed order. p-4 has neither an effective
// year nor an inception date.
func Seed(t *testing.T, s domain.Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []domain.Placement{
		{ID: "p-1", ClientName: "Acme", Status: "draft", EffectiveYear: intPtr(2024), InceptionDate: "2024-03-01T00:00:00Z",
			User: &domain.User{XID: "u-1", FirstName: "Jim"}},
		{ID: "p-2", ClientName: "Beta", Status: "firm_order", EffectiveYear: intPtr(2025), InceptionDate: "2025-01-01",
			User: &domain.User{XID: "u-2", FirstName: "Ann"}},
		{ID: "p-3", ClientName: "Cobalt", Status: "draft", EffectiveYear: intPtr(2024), InceptionDate: "2024-12-31T18:00:00Z",
			User: &domain.User{XID: "u-1", FirstName: "Jim"}},
		{ID: "p-4", ClientName: "Delta", Status: "bound",
			User: &domain.User{XID: "u-3", FirstName: "Kim"}},
	} {
		require.NoError(t, s.Placements().Create(ctx, &p))
	}
}

func testCollectionSave(t *testing.T, s domain.Store) {
	ctx := context.Background()
	risks := s.Collection(domain.CollectionRisks)
	assert.Equal(t, domain.CollectionRisks, risks.Name())

	id, err := risks.Save(ctx, "", domain.Risk{RiskCode: "MC"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var got domain.Risk
	require.NoError(t, risks.FindByID(ctx, id, &got))
	assert.Equal(t, "MC", got.RiskCode)
	assert.Equal(t, id, got.ID)

	again, err := risks.Save(ctx, id, domain.Risk{ID: id, RiskCode: "WR"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	require.NoError(t, risks.FindByID(ctx, id, &got))
	assert.Equal(t, "WR", got.RiskCode)

	teams := s.Collection(domain.CollectionBrokerTeams)
	_, err = teams.Save(ctx, "team-1", domain.BrokerTeam{XID: "team-1", Name: "Marine"})
	require.NoError(t, err)
	var team domain.BrokerTeam
	require.NoError(t, teams.FindByID(ctx, "team-1", &team))
	assert.Equal(t, "Marine", team.Name)
	assert.True(t, errors.Is(risks.FindByID(ctx, "team-1", &got), domain.ErrNotFound))

	assert.True(t, errors.Is(risks.FindByID(ctx, "missing", &got), domain.ErrNotFound))
}

func testPlacementLifecycle(t *testing.T, s domain.Store) {
	ctx := context.Background()
	repo := s.Placements()

	p := &domain.Placement{ClientName: "Acme", User: &domain.User{XID: "u-1"}}
	require.NoError(t, repo.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	ok, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = repo.Create(ctx, &domain.Placement{ID: p.ID})
	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, p.ID, dup.ID)

	p.ClientName = "Acme Ltd"
	require.NoError(t, repo.Replace(ctx, p))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Ltd", got.ClientName)
	assert.Equal(t, "u-1", got.User.XID)

	assert.True(t, errors.Is(repo.Replace(ctx, &domain.Placement{ID: "nope"}), domain.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, p.ID), domain.ErrNotFound))
	got, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testFind(t *testing.T, s domain.Store) {
	Seed(t, s)
	ctx := context.Background()
	f := false

	cases := []struct {
		name string
		spec domain.QuerySpec
		want []string
	}{
		{"all in insertion order", domain.QuerySpec{UserOnly: &f}, []string{"p-1", "p-2", "p-3", "p-4"}},
		{"status", domain.QuerySpec{Statuses: []string{"draft"}, UserOnly: &f}, []string{"p-1", "p-3"}},
		{"statuses or-ed", domain.QuerySpec{Statuses: []string{"bound", "firm_order"}, UserOnly: &f}, []string{"p-2", "p-4"}},
		{"year", domain.QuerySpec{EffectiveYears: []int{2025}, UserOnly: &f}, []string{"p-2"}},
		{"client and status", domain.QuerySpec{ClientNames: []string{"Acme", "Beta"}, Statuses: []string{"draft"}, UserOnly: &f}, []string{"p-1"}},
		{"owner name", domain.QuerySpec{OwnerNames: []string{"Ann"}, UserOnly: &f}, []string{"p-2"}},
		{"caller", domain.QuerySpec{}, []string{"p-1", "p-3"}},
		{"inception range", domain.QuerySpec{InceptionFrom: "2024-06-01", InceptionTo: "2024-12-31", UserOnly: &f}, []string{"p-3"}},
		{"inception from", domain.QuerySpec{InceptionFrom: "2025-01-01", UserOnly: &f}, []string{"p-2"}},
		{"sorted desc", domain.QuerySpec{OrderBy: "clientName", OrderDir: "desc", UserOnly: &f}, []string{"p-4", "p-3", "p-2", "p-1"}},
		{"year asc unset first", domain.QuerySpec{OrderBy: "effectiveYear", UserOnly: &f}, []string{"p-4", "p-1", "p-3", "p-2"}},
		{"year desc unset last", domain.QuerySpec{OrderBy: "effectiveYear", OrderDir: "desc", UserOnly: &f}, []string{"p-2", "p-1", "p-3", "p-4"}},
		{"inception asc", domain.QuerySpec{OrderBy: "contractInceptiondate", UserOnly: &f}, []string{"p-4", "p-1", "p-3", "p-2"}},
		{"no match", domain.QuerySpec{ClientNames: []string{"Nobody"}, UserOnly: &f}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := query.Build(tc.spec, "u-1")
			require.NoError(t, err)
			got, err := s.Placements().Find(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, IDs(got))
		})
	}

	all, err := s.Placements().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2", "p-3", "p-4"}, IDs(all))
}

// IDs lists placement ids in order.
func IDs(items []domain.Placement) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}
