package gormstore

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db"
	"github.com/smallbiznis/placements/pkg/db/option"
	"github.com/smallbiznis/placements/pkg/repository"
	"gorm.io/gorm"
)

type placementRepo struct {
	db   *gorm.DB
	rows repository.Repository[placementRow]
	node *snowflake.Node
}

func (r *placementRepo) Exists(ctx context.Context, id string) (bool, error) {
	return r.rows.Exists(ctx, id)
}

func (r *placementRepo) Create(ctx context.Context, p *domain.Placement) error {
	p.ID = document.EnsureID(p.ID)
	row, err := newPlacementRow(p, r.node.Generate().Int64())
	if err != nil {
		return err
	}
	if err := r.rows.Create(ctx, row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return &domain.DuplicateError{ID: p.ID}
		}
		return fmt.Errorf("create placement %s: %w", p.ID, err)
	}
	return nil
}

func (r *placementRepo) Replace(ctx context.Context, p *domain.Placement) error {
	row, err := newPlacementRow(p, 0)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := r.rows.WithTrx(tx)
		ok, err := rows.Exists(ctx, p.ID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: p.ID}
		}
		if _, err := rows.Update(ctx, p.ID, row.columns()); err != nil {
			return fmt.Errorf("replace placement %s: %w", p.ID, err)
		}
		return nil
	})
}

func (r *placementRepo) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	row, err := r.rows.FindOne(ctx, nil, option.Where("id = ?", id))
	if err != nil || row == nil {
		return nil, err
	}
	return row.placement()
}

func (r *placementRepo) FindAll(ctx context.Context) ([]domain.Placement, error) {
	return r.Find(ctx, domain.Query{})
}

func (r *placementRepo) Find(ctx context.Context, q domain.Query) ([]domain.Placement, error) {
	opts, err := queryOptions(q)
	if err != nil {
		return nil, err
	}
	rows, err := r.rows.Find(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	out := make([]domain.Placement, 0, len(rows))
	for _, row := range rows {
		p, err := row.placement()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *placementRepo) Delete(ctx context.Context, id string) error {
	n, err := r.rows.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete placement %s: %w", id, err)
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
	}
	return nil
}
