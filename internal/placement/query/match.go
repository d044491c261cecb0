package query

import "github.com/smallbiznis/placements/internal/placement/domain"

// Lookup resolves the values a document holds at a field path.
type Lookup func(field domain.Field) []any

// Match reports whether a document satisfies every predicate.
func Match(lookup Lookup, preds []domain.Predicate) bool {
	for _, p := range preds {
		if !matchOne(lookup(p.Field), p) {
			return false
		}
	}
	return true
}

func matchOne(got []any, p domain.Predicate) bool {
	for _, v := range got {
		if v == nil {
			continue
		}
		switch p.Op {
		case domain.OpIn, domain.OpEq:
			for _, want := range p.Values {
				if Compare(v, want) == 0 && sameKind(v, want) {
					return true
				}
			}
		case domain.OpGte:
			if len(p.Values) > 0 && sameKind(v, p.Values[0]) && Compare(v, p.Values[0]) >= 0 {
				return true
			}
		case domain.OpLte:
			if len(p.Values) > 0 && sameKind(v, p.Values[0]) && Compare(v, p.Values[0]) <= 0 {
				return true
			}
		}
	}
	return false
}

func sameKind(a, b any) bool {
	_, an := toFloat(a)
	_, bn := toFloat(b)
	if an || bn {
		return an && bn
	}
	_, as := a.(string)
	_, bs := b.(string)
	return as && bs
}
