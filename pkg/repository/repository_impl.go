package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/placements/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type store[T any] struct {
	db    *gorm.DB
	table string
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

// ProvideTableStore binds T to an explicit table so one row type can back
// several tables.
func ProvideTableStore[T any](db *gorm.DB, table string) Repository[T] {
	return &store[T]{db: db, table: table}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx, table: r.table}
}

func (r *store[T]) tx(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.table != "" {
		db = db.Table(r.table)
	}
	return db
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.Find(&result).Error
	return result, err
}

func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, err
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.tx(ctx).Create(resource).Error
}

func (r *store[T]) Upsert(ctx context.Context, resource *T, updateColumns ...string) error {
	return r.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(resource).Error
}

func (r *store[T]) Update(ctx context.Context, resourceID string, fields map[string]any) (int64, error) {
	res := r.tx(ctx).Model(new(T)).Where("id = ?", resourceID).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Delete(ctx context.Context, resourceID string) (int64, error) {
	var dummy T
	res := r.tx(ctx).Where("id = ?", resourceID).Delete(&dummy)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var count int64
	err := r.tx(ctx).Model(new(T)).Where(query).Count(&count).Error
	return count, err
}

func (r *store[T]) Exists(ctx context.Context, resourceID string) (bool, error) {
	var count int64
	err := r.tx(ctx).Model(new(T)).Where("id = ?", resourceID).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *store[T]) AutoMigrate() error {
	db := r.db
	if r.table != "" {
		db = db.Table(r.table)
	}
	return db.AutoMigrate(new(T))
}

func (s *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	db := s.tx(ctx)
	if filter != nil {
		db = db.Where(filter)
	}

	for _, opt := range opts {
		db = opt.Apply(db)
	}

	return db
}
