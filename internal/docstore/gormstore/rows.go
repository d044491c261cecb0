package gormstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"gorm.io/datatypes"
)

// documentRow backs every sub-collection table. The body is the document's
// wire form; seq preserves insertion order.
type documentRow struct {
	ID        string         `gorm:"primaryKey;type:varchar(64)"`
	Seq       int64          `gorm:"not null"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// placementRow stores the root document with its query projection lifted
// into indexed columns.
type placementRow struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)"`
	Seq            int64          `gorm:"not null;index"`
	ClientName     string         `gorm:"not null;default:'';index"`
	Description    string         `gorm:"not null;default:''"`
	EffectiveYear  *int           `gorm:"index"`
	Status         string         `gorm:"not null;default:'';index"`
	InceptionKey   *string        `gorm:"index"`
	OwnerID        string         `gorm:"not null;default:'';index"`
	OwnerFirstName string         `gorm:"not null;default:''"`
	Body           datatypes.JSON `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (placementRow) TableName() string { return string(domain.CollectionPlacements) }

func newPlacementRow(p *domain.Placement, seq int64) (*placementRow, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode placement: %w", err)
	}
	proj := p.Projection()
	return &placementRow{
		ID:             p.ID,
		Seq:            seq,
		ClientName:     proj.ClientName,
		Description:    proj.Description,
		EffectiveYear:  proj.EffectiveYear,
		Status:         proj.Status,
		InceptionKey:   nullString(proj.InceptionKey),
		OwnerID:        proj.OwnerID,
		OwnerFirstName: proj.OwnerFirstName,
		Body:           datatypes.JSON(body),
	}, nil
}

// columns lists what a replace overwrites. id, seq and created_at stay.
func (r *placementRow) columns() map[string]any {
	return map[string]any{
		"client_name":      r.ClientName,
		"description":      r.Description,
		"effective_year":   r.EffectiveYear,
		"status":           r.Status,
		"inception_key":    r.InceptionKey,
		"owner_id":         r.OwnerID,
		"owner_first_name": r.OwnerFirstName,
		"body":             r.Body,
	}
}

func (r *placementRow) placement() (*domain.Placement, error) {
	var p domain.Placement
	if err := json.Unmarshal(r.Body, &p); err != nil {
		return nil, fmt.Errorf("decode placement %s: %w", r.ID, err)
	}
	return &p, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
