// Package document holds the encoding rules every store adapter shares.
package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

// InceptionKeyField is the projection attribute holding the normalized
// inception key on placement documents.
const InceptionKeyField = "_inception_key"

// EnsureID returns id, or a new uuid when id is blank.
func EnsureID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

// ToTree encodes v through its JSON wire form into a generic object.
func ToTree(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

// FromTree decodes a generic object into out.
func FromTree(tree any, out any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// StampID records a store-assigned id on a tree that carries neither an
// _id nor an _xid.
func StampID(tree map[string]any, id string) {
	if s, _ := tree["_id"].(string); s != "" {
		return
	}
	if s, _ := tree["_xid"].(string); s != "" {
		return
	}
	tree["_id"] = id
}

// PlacementTree encodes a placement with its inception key projection.
func PlacementTree(p *domain.Placement) (map[string]any, error) {
	tree, err := ToTree(p)
	if err != nil {
		return nil, err
	}
	if key := p.Projection().InceptionKey; key != "" {
		tree[InceptionKeyField] = key
	}
	return tree, nil
}

// Path returns the document path adapters filter on for f.
func Path(f domain.Field) []string {
	if f == domain.FieldInception {
		return []string{InceptionKeyField}
	}
	return f.Path()
}
