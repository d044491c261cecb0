package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/placements/internal/docstore/memstore"
	"github.com/smallbiznis/placements/internal/docstore/storetest"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return Instrument(memstore.New(), "memory", nil)
	})
}

func TestInstrumentedPassesErrorsThrough(t *testing.T) {
	s := Instrument(memstore.New(), "memory", nil)
	ctx := context.Background()

	require.NoError(t, s.Placements().Create(ctx, &domain.Placement{ID: "p-1"}))
	var dup *domain.DuplicateError
	assert.True(t, errors.As(s.Placements().Create(ctx, &domain.Placement{ID: "p-1"}), &dup))
	assert.Equal(t, domain.CollectionRisks, s.Collection(domain.CollectionRisks).Name())
}
