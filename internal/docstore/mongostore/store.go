// Package mongostore persists placements in MongoDB, one collection per
// entity kind.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db         *mongo.Database
	node       *snowflake.Node
	placements *placementRepo

	mu          sync.Mutex
	collections map[domain.CollectionName]*collection
}

func New(db *mongo.Database, node *snowflake.Node) *Store {
	return &Store{
		db:   db,
		node: node,
		placements: &placementRepo{
			coll: db.Collection(string(domain.CollectionPlacements)),
			node: node,
		},
		collections: make(map[domain.CollectionName]*collection),
	}
}

// EnsureIndexes creates the secondary indexes placement queries filter and
// sort on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	keys := []string{
		seqField,
		fieldPath(domain.FieldOwnerID),
		fieldPath(domain.FieldStatus),
		fieldPath(domain.FieldEffectiveYear),
		fieldPath(domain.FieldClientName),
		fieldPath(domain.FieldInception),
	}
	models := make([]mongo.IndexModel, 0, len(keys))
	for _, k := range keys {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: k, Value: 1}}})
	}
	if _, err := s.placements.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create placement indexes: %w", err)
	}
	return nil
}

func (s *Store) Placements() domain.PlacementRepository {
	return s.placements
}

func (s *Store) Collection(name domain.CollectionName) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{name: name, coll: s.db.Collection(string(name))}
		s.collections[name] = c
	}
	return c
}

type collection struct {
	name domain.CollectionName
	coll *mongo.Collection
}

func (c *collection) Name() domain.CollectionName { return c.name }

// Save upserts the document flat under _id.
func (c *collection) Save(ctx context.Context, id string, doc any) (string, error) {
	tree, err := document.ToTree(doc)
	if err != nil {
		return "", err
	}
	id = document.EnsureID(id)
	tree["_id"] = id

	_, err = c.coll.ReplaceOne(ctx, bson.M{"_id": id}, tree, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("save %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

func (c *collection) FindByID(ctx context.Context, id string, out any) error {
	var tree bson.M
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tree)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s/%s: %w", c.name, id, err)
	}
	return document.FromTree(tree, out)
}

var _ domain.Store = (*Store)(nil)
