// Package gormstore persists placements and their sub-collections in SQL
// tables through gorm, one table per collection.
package gormstore

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db"
	"github.com/smallbiznis/placements/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Store struct {
	db         *gorm.DB
	node       *snowflake.Node
	placements *placementRepo

	mu          sync.Mutex
	collections map[domain.CollectionName]*collection
}

func New(conn *gorm.DB, node *snowflake.Node) *Store {
	return &Store{
		db:   conn,
		node: node,
		placements: &placementRepo{
			db:   conn,
			rows: repository.ProvideStore[placementRow](conn),
			node: node,
		},
		collections: make(map[domain.CollectionName]*collection),
	}
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
	Cfg  config.Config
	Log  *zap.Logger
}

// NewStore builds the store and creates its tables on dialects that are not
// covered by the SQL migrations.
func NewStore(p Params) (*Store, error) {
	s := New(p.DB, p.Node)
	if !db.IsPostgres(p.Cfg) && p.Cfg.DBAutoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
		p.Log.Info("document tables migrated", zap.String("type", p.Cfg.DBType))
	}
	return s, nil
}

// Migrate creates the placements table and every sub-collection table.
func (s *Store) Migrate() error {
	if err := s.placements.rows.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate %s: %w", domain.CollectionPlacements, err)
	}
	for _, name := range domain.SubCollections {
		if err := s.Collection(name).(*collection).rows.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
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
		c = &collection{
			name: name,
			rows: repository.ProvideTableStore[documentRow](s.db, string(name)),
			node: s.node,
		}
		s.collections[name] = c
	}
	return c
}

var _ domain.Store = (*Store)(nil)
