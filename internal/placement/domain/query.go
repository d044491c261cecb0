package domain

import (
	"errors"
	"strings"
	"time"
)

// QuerySpec is the caller-facing filter and sort request. Every non-empty
// filter is AND-ed; values inside one filter are OR-ed.
type QuerySpec struct {
	ClientNames    []string
	PlacementNames []string
	EffectiveYears []int
	OwnerNames     []string
	Statuses       []string
	InceptionFrom  string
	InceptionTo    string
	// UserOnly defaults to true when nil.
	UserOnly *bool
	OrderBy  string
	OrderDir string
}

// Field is a queryable placement attribute identified by its document path.
type Field string

const (
	FieldClientName     Field = "client_name"
	FieldDescription    Field = "description"
	FieldEffectiveYear  Field = "effective_year"
	FieldOwnerID        Field = "user._xid"
	FieldOwnerFirstName Field = "user.first_name"
	FieldStatus         Field = "status"
	// FieldInception compares normalized inception keys, never the raw
	// inception_date string.
	FieldInception Field = "inception_date"
)

// Path splits the document path into its keys.
func (f Field) Path() []string {
	return strings.Split(string(f), ".")
}

type Operator int

const (
	OpIn Operator = iota
	OpEq
	OpGte
	OpLte
)

func (o Operator) String() string {
	switch o {
	case OpIn:
		return "in"
	case OpEq:
		return "eq"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	default:
		return "unknown"
	}
}

type Predicate struct {
	Field  Field
	Op     Operator
	Values []any
}

type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

type Sort struct {
	Field     Field
	Direction SortDirection
}

// Query is a store-agnostic conjunction of predicates with at most one sort
// key.
type Query struct {
	Predicates []Predicate
	Sort       *Sort
}

// SortKey is the caller-facing order_by vocabulary.
type SortKey string

const (
	SortKeyClientName            SortKey = "clientName"
	SortKeyPlacementName         SortKey = "placementName"
	SortKeyEffectiveYear         SortKey = "effectiveYear"
	SortKeyOwnerName             SortKey = "ownerName"
	SortKeyContractInceptionDate SortKey = "contractInceptiondate"
	SortKeyStatus                SortKey = "Status"
)

var sortKeyFields = map[SortKey]Field{
	SortKeyClientName:            FieldClientName,
	SortKeyPlacementName:         FieldDescription,
	SortKeyEffectiveYear:         FieldEffectiveYear,
	SortKeyOwnerName:             FieldOwnerFirstName,
	SortKeyContractInceptionDate: FieldInception,
	SortKeyStatus:                FieldStatus,
}

// ParseSortKey maps raw order_by input onto the vocabulary. Unknown values
// fall back to clientName.
func ParseSortKey(raw string) SortKey {
	key := SortKey(raw)
	if _, ok := sortKeyFields[key]; ok {
		return key
	}
	return SortKeyClientName
}

func (k SortKey) Field() Field {
	if f, ok := sortKeyFields[k]; ok {
		return f
	}
	return FieldClientName
}

// ParseSortDirection treats "desc" (any case) as descending and everything
// else as ascending.
func ParseSortDirection(raw string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(raw), "desc") {
		return SortDesc
	}
	return SortAsc
}

const inceptionKeyLayout = "2006-01-02T15:04:05.000000000Z"

var ErrInvalidInceptionDate = errors.New("invalid_inception_date")

// InceptionKey normalizes an RFC3339 timestamp or a YYYY-MM-DD date into a
// fixed-width UTC key whose lexical order matches chronological order.
func InceptionKey(raw string) (string, error) {
	return inceptionBound(raw, false)
}

// InceptionUpperBound is InceptionKey with date-only input widened to the
// last instant of that day.
func InceptionUpperBound(raw string) (string, error) {
	return inceptionBound(raw, true)
}

func inceptionBound(raw string, endOfDay bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidInceptionDate
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Format(inceptionKeyLayout), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", ErrInvalidInceptionDate
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC().Format(inceptionKeyLayout), nil
}

// Projection is the scalar view of a placement that adapters index and
// filter on.
type Projection struct {
	ClientName     string
	Description    string
	EffectiveYear  *int
	Status         string
	OwnerID        string
	OwnerFirstName string
	InceptionKey   string
}

func (p *Placement) Projection() Projection {
	proj := Projection{
		ClientName:    p.ClientName,
		Description:   p.Description,
		EffectiveYear: p.EffectiveYear,
		Status:        p.Status,
	}
	if p.User != nil {
		proj.OwnerID = p.User.XID
		proj.OwnerFirstName = p.User.FirstName
	}
	if key, err := InceptionKey(p.InceptionDate); err == nil {
		proj.InceptionKey = key
	}
	return proj
}

// Value returns the projected value for f, or nil when it is unset.
func (p Projection) Value(f Field) any {
	switch f {
	case FieldClientName:
		return p.ClientName
	case FieldDescription:
		return p.Description
	case FieldEffectiveYear:
		if p.EffectiveYear == nil {
			return nil
		}
		return *p.EffectiveYear
	case FieldOwnerID:
		return p.OwnerID
	case FieldOwnerFirstName:
		return p.OwnerFirstName
	case FieldStatus:
		return p.Status
	case FieldInception:
		if p.InceptionKey == "" {
			return nil
		}
		return p.InceptionKey
	default:
		return nil
	}
}
