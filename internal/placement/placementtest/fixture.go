// Package placementtest provides a complete placement document shared by
// tests across packages.
package placementtest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/smallbiznis/placements/internal/placement/domain"
)

//go:embed testdata/placement.json
var placementJSON []byte

const (
	PlacementID  = "411bb6ef-0db8-46b6-8dab-225b77bc660e"
	UserID       = "66992a66-8ac8-4b5c-b420-056f39c0435e"
	BranchID     = "4e1cf5d5-fdae-456c-b12b-3a59a2830124"
	BrokerTeamID = "8f3f208b-39d7-424e-bf9e-a8afea7f0e60"
	DocumentID   = "362c05fb-ed59-4679-8b90-b20925a00b68"
	ProgrammeID  = "1a2b3c4d-5e6f-4a7b-8c9d-aebfc0d1e2f3"
	ContractID   = "2b3c4d5e-6f7a-4b8c-9dae-bfc0d1e2f3a4"
	SectionID    = "3c4d5e6f-7a8b-4c9d-8ebf-c0d1e2f3a4b5"
	RiskID       = "4d5e6f7a-8b9c-4dae-9fc0-d1e2f3a4b5c6"
	SubmissionID = "f52ffe9d-c4a2-423f-adaf-fd4e8113f430"
)

// JSON returns a fresh copy of the raw document.
func JSON() []byte {
	return bytes.Clone(placementJSON)
}

// Placement decodes the document into the typed aggregate.
func Placement(t testing.TB) *domain.Placement {
	t.Helper()
	var p domain.Placement
	if err := json.Unmarshal(placementJSON, &p); err != nil {
		t.Fatalf("decode placement fixture: %v", err)
	}
	return &p
}

// Tree decodes the document into a generic tree, keeping numbers as
// json.Number.
func Tree(t testing.TB) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(placementJSON))
	dec.UseNumber()
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		t.Fatalf("decode placement fixture: %v", err)
	}
	return tree
}

// Encode marshals v, failing the test on error.
func Encode(t testing.TB, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

// Child walks a generic tree by object keys and array indexes.
func Child(t testing.TB, tree any, path ...any) map[string]any {
	t.Helper()
	cur := tree
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				t.Fatalf("step %q: not an object", key)
			}
			cur = m[key]
		case int:
			list, ok := cur.([]any)
			if !ok || key >= len(list) {
				t.Fatalf("step %d: not an array element", key)
			}
			cur = list[key]
		}
	}
	m, ok := cur.(map[string]any)
	if !ok {
		t.Fatalf("path %v: not an object", path)
	}
	return m
}
