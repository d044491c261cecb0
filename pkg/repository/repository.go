package repository

import (
	"context"

	"github.com/smallbiznis/placements/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed table of T.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil when no row matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	// Upsert inserts resource or overwrites updateColumns on an id conflict.
	Upsert(ctx context.Context, resource *T, updateColumns ...string) error
	// Update writes fields to the row with resourceID and reports how many
	// rows matched.
	Update(ctx context.Context, resourceID string, fields map[string]any) (int64, error)
	Delete(ctx context.Context, resourceID string) (int64, error)
	Count(ctx context.Context, query *T) (int64, error)
	Exists(ctx context.Context, resourceID string) (bool, error)
	AutoMigrate() error
}
