// Package query composes store-agnostic placement queries from caller filter
// specifications.
package query

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/placements/internal/placement/domain"
)

// Build translates spec into a conjunction of predicates. When UserOnly is
// unset or true the result is restricted to placements owned by caller.
func Build(spec domain.QuerySpec, caller string) (domain.Query, error) {
	var q domain.Query

	q.Predicates = appendIn(q.Predicates, domain.FieldClientName, spec.ClientNames)
	q.Predicates = appendIn(q.Predicates, domain.FieldDescription, spec.PlacementNames)
	if len(spec.EffectiveYears) > 0 {
		values := make([]any, 0, len(spec.EffectiveYears))
		for _, y := range spec.EffectiveYears {
			values = append(values, y)
		}
		q.Predicates = append(q.Predicates, domain.Predicate{
			Field:  domain.FieldEffectiveYear,
			Op:     domain.OpIn,
			Values: values,
		})
	}
	q.Predicates = appendIn(q.Predicates, domain.FieldOwnerFirstName, spec.OwnerNames)
	q.Predicates = appendIn(q.Predicates, domain.FieldStatus, spec.Statuses)

	if from := strings.TrimSpace(spec.InceptionFrom); from != "" {
		key, err := domain.InceptionKey(from)
		if err != nil {
			return domain.Query{}, fmt.Errorf("%w: inception_from %q", domain.ErrInvalidQuery, from)
		}
		q.Predicates = append(q.Predicates, domain.Predicate{
			Field:  domain.FieldInception,
			Op:     domain.OpGte,
			Values: []any{key},
		})
	}
	if to := strings.TrimSpace(spec.InceptionTo); to != "" {
		key, err := domain.InceptionUpperBound(to)
		if err != nil {
			return domain.Query{}, fmt.Errorf("%w: inception_to %q", domain.ErrInvalidQuery, to)
		}
		q.Predicates = append(q.Predicates, domain.Predicate{
			Field:  domain.FieldInception,
			Op:     domain.OpLte,
			Values: []any{key},
		})
	}

	if spec.UserOnly == nil || *spec.UserOnly {
		caller = strings.TrimSpace(caller)
		if caller == "" {
			return domain.Query{}, domain.ErrCallerIdentityRequired
		}
		q.Predicates = append(q.Predicates, domain.Predicate{
			Field:  domain.FieldOwnerID,
			Op:     domain.OpEq,
			Values: []any{caller},
		})
	}

	if strings.TrimSpace(spec.OrderBy) != "" {
		key := domain.ParseSortKey(strings.TrimSpace(spec.OrderBy))
		q.Sort = &domain.Sort{
			Field:     key.Field(),
			Direction: domain.ParseSortDirection(spec.OrderDir),
		}
	}

	return q, nil
}

func appendIn(preds []domain.Predicate, field domain.Field, values []string) []domain.Predicate {
	cleaned := make([]any, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return preds
	}
	return append(preds, domain.Predicate{
		Field:  field,
		Op:     domain.OpIn,
		Values: cleaned,
	})
}
