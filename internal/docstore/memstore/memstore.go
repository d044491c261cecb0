// Package memstore is a process-local document store. Documents are kept as
// generic trees and filtered with JSONPath expressions.
package memstore

import (
	"context"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/placement/query"
)

type Store struct {
	mu          sync.Mutex
	collections map[domain.CollectionName]*collection
	placements  *placementRepo
}

func New() *Store {
	s := &Store{
		collections: make(map[domain.CollectionName]*collection),
	}
	s.placements = &placementRepo{docs: newCollection(domain.CollectionPlacements)}
	return s
}

func (s *Store) Placements() domain.PlacementRepository {
	return s.placements
}

func (s *Store) Collection(name domain.CollectionName) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = newCollection(name)
		s.collections[name] = c
	}
	return c
}

// Len reports how many documents a collection holds.
func (s *Store) Len(name domain.CollectionName) int {
	if name == domain.CollectionPlacements {
		return s.placements.docs.len()
	}
	return s.Collection(name).(*collection).len()
}

type collection struct {
	name  domain.CollectionName
	mu    sync.RWMutex
	docs  map[string]map[string]any
	order []string
}

func newCollection(name domain.CollectionName) *collection {
	return &collection{name: name, docs: make(map[string]map[string]any)}
}

func (c *collection) Name() domain.CollectionName { return c.name }

func (c *collection) Save(ctx context.Context, id string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tree, err := document.ToTree(doc)
	if err != nil {
		return "", err
	}
	id = document.EnsureID(id)
	document.StampID(tree, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(id, tree)
	return id, nil
}

func (c *collection) FindByID(ctx context.Context, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	tree, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	return document.FromTree(tree, out)
}

func (c *collection) put(id string, tree map[string]any) {
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = tree
}

func (c *collection) remove(id string) bool {
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

type placementRepo struct {
	docs *collection
}

func (r *placementRepo) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.docs.mu.RLock()
	defer r.docs.mu.RUnlock()
	_, ok := r.docs.docs[id]
	return ok, nil
}

func (r *placementRepo) Create(ctx context.Context, p *domain.Placement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.ID = document.EnsureID(p.ID)
	tree, err := document.PlacementTree(p)
	if err != nil {
		return err
	}

	r.docs.mu.Lock()
	defer r.docs.mu.Unlock()
	if _, exists := r.docs.docs[p.ID]; exists {
		return &domain.DuplicateError{ID: p.ID}
	}
	r.docs.put(p.ID, tree)
	return nil
}

func (r *placementRepo) Replace(ctx context.Context, p *domain.Placement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tree, err := document.PlacementTree(p)
	if err != nil {
		return err
	}

	r.docs.mu.Lock()
	defer r.docs.mu.Unlock()
	if _, exists := r.docs.docs[p.ID]; !exists {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: p.ID}
	}
	r.docs.put(p.ID, tree)
	return nil
}

func (r *placementRepo) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	var p domain.Placement
	err := r.docs.FindByID(ctx, id, &p)
	if err == domain.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *placementRepo) FindAll(ctx context.Context) ([]domain.Placement, error) {
	return r.Find(ctx, domain.Query{})
}

func (r *placementRepo) Find(ctx context.Context, q domain.Query) ([]domain.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths := compilePaths(q.Predicates)

	r.docs.mu.RLock()
	matched := make([]map[string]any, 0, len(r.docs.order))
	for _, id := range r.docs.order {
		tree := r.docs.docs[id]
		lookup := func(f domain.Field) []any { return paths[f].Get(tree) }
		if query.Match(lookup, q.Predicates) {
			matched = append(matched, tree)
		}
	}
	r.docs.mu.RUnlock()

	out := make([]domain.Placement, 0, len(matched))
	for _, tree := range matched {
		var p domain.Placement
		if err := document.FromTree(tree, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	query.SortPlacements(out, q.Sort)
	return out, nil
}

func (r *placementRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.docs.mu.Lock()
	defer r.docs.mu.Unlock()
	if !r.docs.remove(id) {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
	}
	return nil
}

func compilePaths(preds []domain.Predicate) map[domain.Field]jp.Expr {
	out := make(map[domain.Field]jp.Expr, len(preds))
	for _, p := range preds {
		if _, ok := out[p.Field]; ok {
			continue
		}
		x := jp.R()
		for _, key := range document.Path(p.Field) {
			x = x.C(key)
		}
		out[p.Field] = x
	}
	return out
}

var _ domain.Store = (*Store)(nil)
