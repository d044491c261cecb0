package memstore

import (
	"context"
	"testing"

	"github.com/smallbiznis/placements/internal/docstore/storetest"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store { return New() })
}

func TestStoredPlacementCarriesInceptionKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &domain.Placement{ID: "p-1", InceptionDate: "2024-03-01"}
	require.NoError(t, s.Placements().Create(ctx, p))

	tree := s.placements.docs.docs["p-1"]
	assert.Equal(t, "2024-03-01T00:00:00.000000000Z", tree["_inception_key"])
	assert.Equal(t, 1, s.Len(domain.CollectionPlacements))
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Collection(domain.CollectionRisks).Save(ctx, "", domain.Risk{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Placements().Create(ctx, &domain.Placement{}), context.Canceled)
}
