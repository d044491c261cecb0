package gormstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db/option"
	"github.com/smallbiznis/placements/pkg/repository"
	"gorm.io/datatypes"
)

type collection struct {
	name domain.CollectionName
	rows repository.Repository[documentRow]
	node *snowflake.Node
}

func (c *collection) Name() domain.CollectionName { return c.name }

func (c *collection) Save(ctx context.Context, id string, doc any) (string, error) {
	tree, err := document.ToTree(doc)
	if err != nil {
		return "", err
	}
	id = document.EnsureID(id)
	document.StampID(tree, id)

	body, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}
	row := &documentRow{
		ID:   id,
		Seq:  c.node.Generate().Int64(),
		Body: datatypes.JSON(body),
	}
	if err := c.rows.Upsert(ctx, row, "body", "updated_at"); err != nil {
		return "", fmt.Errorf("save %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

func (c *collection) FindByID(ctx context.Context, id string, out any) error {
	row, err := c.rows.FindOne(ctx, nil, option.Where("id = ?", id))
	if err != nil {
		return fmt.Errorf("find %s/%s: %w", c.name, id, err)
	}
	if row == nil {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(row.Body, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return nil
}
