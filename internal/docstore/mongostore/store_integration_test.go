//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/storetest"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

var dbSeq atomic.Int64

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(ctx, ClientOptions(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) domain.Store {
		s := New(client.Database(fmt.Sprintf("placements_%d", dbSeq.Add(1))), node)
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	})
}
