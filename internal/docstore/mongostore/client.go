package mongostore

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ClientOptions decodes nested documents as maps so stored trees convert
// back to their JSON form.
func ClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
}

type Params struct {
	fx.In

	Lc   fx.Lifecycle
	Cfg  config.Config
	Log  *zap.Logger
	Node *snowflake.Node
}

// NewStore connects to MongoDB and ensures the placement indexes on start.
func NewStore(p Params) (*Store, error) {
	client, err := mongo.Connect(context.Background(), ClientOptions(p.Cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := New(client.Database(p.Cfg.Mongo.Database), p.Node)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}
			if err := s.EnsureIndexes(ctx); err != nil {
				return err
			}
			p.Log.Info("mongo connected", zap.String("database", p.Cfg.Mongo.Database))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Log.Info("closing mongo connection")
			return client.Disconnect(ctx)
		},
	})
	return s, nil
}
