package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lc   fx.Lifecycle
	Cfg  config.Config
	Log  *zap.Logger
	Node *snowflake.Node
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// A configured endpoint points the client at a local emulator.
func NewClient(ctx context.Context, cfg config.DynamoConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewStore wires the store. Tables are created on start only against a
// local endpoint; deployed tables are provisioned outside the service.
func NewStore(p Params) (*Store, error) {
	client, err := NewClient(context.Background(), p.Cfg.Dynamo)
	if err != nil {
		return nil, err
	}
	s := New(client, Config{TablePrefix: p.Cfg.Dynamo.TablePrefix}, p.Node)

	if p.Cfg.Dynamo.Endpoint != "" {
		p.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := s.EnsureTables(ctx); err != nil {
					return err
				}
				p.Log.Info("dynamodb tables ready",
					zap.String("endpoint", p.Cfg.Dynamo.Endpoint),
					zap.String("prefix", p.Cfg.Dynamo.TablePrefix),
				)
				return nil
			},
		})
	}
	return s, nil
}
