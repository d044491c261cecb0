// Package schema validates submitted placement documents against the
// structural JSON Schema artifact.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

//go:embed placements.json
var defaultSchema []byte

const resourceURL = "https://schemas.smallbiznis.dev/placements/placement.json"

// Validator checks generic document trees. It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the embedded artifact, or the file at cfg.SchemaPath when
// set.
func New(cfg config.Config) (*Validator, error) {
	data := defaultSchema
	if path := strings.TrimSpace(cfg.SchemaPath); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		data = raw
	}
	return Compile(data)
}

// Compile builds a Validator from a raw schema document.
func Compile(data []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(resourceURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate returns nil or a *domain.ValidationError with every violation
// found in tree.
func (v *Validator) Validate(tree any) error {
	err := v.schema.Validate(tree)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate document: %w", err)
	}

	violations := flatten(ve, nil)
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Path != violations[j].Path {
			return violations[i].Path < violations[j].Path
		}
		return violations[i].Message < violations[j].Message
	})
	return &domain.ValidationError{Violations: dedupe(violations)}
}

func flatten(ve *jsonschema.ValidationError, out []domain.Violation) []domain.Violation {
	if strings.HasSuffix(ve.KeywordLocation, "/anyOf") {
		return append(out, domain.Violation{
			Path:    pointer(ve.InstanceLocation),
			Message: anyOfMessage(ve),
		})
	}
	if len(ve.Causes) == 0 {
		return append(out, leaf(ve)...)
	}
	for _, cause := range ve.Causes {
		out = flatten(cause, out)
	}
	return out
}

const missingPrefix = "missing properties: "

// leaf splits a required-keyword failure into one violation per missing
// property so each one carries its own path.
func leaf(ve *jsonschema.ValidationError) []domain.Violation {
	path := pointer(ve.InstanceLocation)
	if strings.HasSuffix(ve.KeywordLocation, "/required") && strings.HasPrefix(ve.Message, missingPrefix) {
		names := strings.Split(strings.TrimPrefix(ve.Message, missingPrefix), ", ")
		out := make([]domain.Violation, 0, len(names))
		for _, name := range names {
			name = strings.Trim(strings.TrimSpace(name), `'"`)
			if name == "" {
				continue
			}
			out = append(out, domain.Violation{
				Path:    joinPointer(path, name),
				Message: "is required",
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return []domain.Violation{{Path: path, Message: ve.Message}}
}

func anyOfMessage(ve *jsonschema.ValidationError) string {
	var parts []string
	for _, cause := range ve.Causes {
		for _, v := range flatten(cause, nil) {
			parts = append(parts, v.Message)
		}
	}
	if len(parts) == 0 {
		return ve.Message
	}
	return strings.Join(parts, " or ")
}

func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}

func joinPointer(base, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	if base == "/" {
		return "/" + token
	}
	return base + "/" + token
}

// dedupe drops adjacent duplicates from a sorted slice.
func dedupe(in []domain.Violation) []domain.Violation {
	out := make([]domain.Violation, 0, len(in))
	for _, v := range in {
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DecodeTree parses raw JSON into the generic tree the validator expects.
// Numbers stay json.Number so integer fields are not widened to floats.
func DecodeTree(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", domain.ErrMalformedDocument)
	}
	return tree, nil
}

var _ domain.Validator = (*Validator)(nil)
