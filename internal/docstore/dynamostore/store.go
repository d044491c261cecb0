// Package dynamostore persists placements in DynamoDB with one table per
// collection, each keyed by a string id.
package dynamostore

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

// API is the subset of the DynamoDB client the store calls.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Config names the tables.
type Config struct {
	TablePrefix string
}

func (c Config) table(name domain.CollectionName) string {
	return c.TablePrefix + string(name)
}

type Store struct {
	client     API
	config     Config
	placements *placementRepo

	mu          sync.Mutex
	collections map[domain.CollectionName]*collection
}

func New(client API, config Config, node *snowflake.Node) *Store {
	return &Store{
		client: client,
		config: config,
		placements: &placementRepo{
			client: client,
			table:  config.table(domain.CollectionPlacements),
			node:   node,
		},
		collections: make(map[domain.CollectionName]*collection),
	}
}

func (s *Store) Placements() domain.PlacementRepository {
	return s.placements
}

func (s *Store) Collection(name domain.CollectionName) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{name: name, client: s.client, table: s.config.table(name)}
		s.collections[name] = c
	}
	return c
}

// Tables lists every table the store reads or writes.
func (s *Store) Tables() []string {
	out := []string{s.config.table(domain.CollectionPlacements)}
	for _, name := range domain.SubCollections {
		out = append(out, s.config.table(name))
	}
	return out
}

var _ domain.Store = (*Store)(nil)
