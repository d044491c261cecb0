package gormstore

import (
	"fmt"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db/option"
)

var columns = map[domain.Field]string{
	domain.FieldClientName:     "client_name",
	domain.FieldDescription:    "description",
	domain.FieldEffectiveYear:  "effective_year",
	domain.FieldOwnerID:        "owner_id",
	domain.FieldOwnerFirstName: "owner_first_name",
	domain.FieldStatus:         "status",
	domain.FieldInception:      "inception_key",
}

// nullable columns sort unset values first ascending and last descending.
var nullable = map[string]bool{"effective_year": true, "inception_key": true}

func queryOptions(q domain.Query) ([]option.QueryOption, error) {
	opts := make([]option.QueryOption, 0, len(q.Predicates)+3)
	for _, p := range q.Predicates {
		col, ok := columns[p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: field %s is not queryable", domain.ErrInvalidQuery, p.Field)
		}
		switch p.Op {
		case domain.OpIn:
			opts = append(opts, option.ColumnIn(col, p.Values))
		case domain.OpEq:
			opts = append(opts, option.Compare(col, "=", first(p.Values)))
		case domain.OpGte:
			opts = append(opts, option.Compare(col, ">=", first(p.Values)))
		case domain.OpLte:
			opts = append(opts, option.Compare(col, "<=", first(p.Values)))
		default:
			return nil, fmt.Errorf("%w: operator %s", domain.ErrInvalidQuery, p.Op)
		}
	}

	if q.Sort != nil {
		col, ok := columns[q.Sort.Field]
		if !ok {
			return nil, fmt.Errorf("%w: field %s is not sortable", domain.ErrInvalidQuery, q.Sort.Field)
		}
		desc := q.Sort.Direction == domain.SortDesc
		if nullable[col] {
			opts = append(opts, option.NullsFirst(col, desc))
		}
		opts = append(opts, option.OrderBy(col, desc))
	}
	opts = append(opts, option.OrderBy("seq", false))
	return opts, nil
}

func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
