package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type placementRepo struct {
	coll *mongo.Collection
	node *snowflake.Node
}

func (r *placementRepo) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count placement %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *placementRepo) Create(ctx context.Context, p *domain.Placement) error {
	p.ID = document.EnsureID(p.ID)
	tree, err := document.PlacementTree(p)
	if err != nil {
		return err
	}
	tree[seqField] = r.node.Generate().Int64()

	if _, err := r.coll.InsertOne(ctx, tree); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.DuplicateError{ID: p.ID}
		}
		return fmt.Errorf("create placement %s: %w", p.ID, err)
	}
	return nil
}

// Replace keeps the stored insertion sequence of the document it overwrites.
func (r *placementRepo) Replace(ctx context.Context, p *domain.Placement) error {
	var current struct {
		Seq int64 `bson:"_seq"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": p.ID},
		options.FindOne().SetProjection(bson.M{seqField: 1})).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: p.ID}
	}
	if err != nil {
		return fmt.Errorf("load placement %s: %w", p.ID, err)
	}

	tree, err := document.PlacementTree(p)
	if err != nil {
		return err
	}
	tree[seqField] = current.Seq

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, tree)
	if err != nil {
		return fmt.Errorf("replace placement %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: p.ID}
	}
	return nil
}

func (r *placementRepo) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	var tree bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tree)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find placement %s: %w", id, err)
	}
	var p domain.Placement
	if err := document.FromTree(tree, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *placementRepo) FindAll(ctx context.Context) ([]domain.Placement, error) {
	return r.Find(ctx, domain.Query{})
}

func (r *placementRepo) Find(ctx context.Context, q domain.Query) ([]domain.Placement, error) {
	cur, err := r.coll.Find(ctx, buildFilter(q.Predicates), options.Find().SetSort(buildSort(q.Sort)))
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Placement, 0)
	for cur.Next(ctx) {
		var tree bson.M
		if err := cur.Decode(&tree); err != nil {
			return nil, fmt.Errorf("decode placement: %w", err)
		}
		var p domain.Placement
		if err := document.FromTree(tree, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	return out, nil
}

func (r *placementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete placement %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
	}
	return nil
}
