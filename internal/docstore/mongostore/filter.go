package mongostore

import (
	"strings"

	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// seqField orders documents by insertion. It never leaves the store.
const seqField = "_seq"

func fieldPath(f domain.Field) string {
	return strings.Join(document.Path(f), ".")
}

// buildFilter AND-s every predicate. Array-valued paths match when any
// element satisfies the condition, the same as the in-memory store.
func buildFilter(preds []domain.Predicate) bson.M {
	if len(preds) == 0 {
		return bson.M{}
	}
	conds := make(bson.A, 0, len(preds))
	for _, p := range preds {
		path := fieldPath(p.Field)
		switch p.Op {
		case domain.OpIn:
			conds = append(conds, bson.M{path: bson.M{"$in": bson.A(p.Values)}})
		case domain.OpEq:
			conds = append(conds, bson.M{path: first(p.Values)})
		case domain.OpGte:
			conds = append(conds, bson.M{path: bson.M{"$gte": first(p.Values)}})
		case domain.OpLte:
			conds = append(conds, bson.M{path: bson.M{"$lte": first(p.Values)}})
		}
	}
	if len(conds) == 1 {
		return conds[0].(bson.M)
	}
	return bson.M{"$and": conds}
}

// buildSort orders by the requested field, breaking ties by insertion.
func buildSort(s *domain.Sort) bson.D {
	if s == nil {
		return bson.D{{Key: seqField, Value: 1}}
	}
	dir := 1
	if s.Direction == domain.SortDesc {
		dir = -1
	}
	return bson.D{{Key: fieldPath(s.Field), Value: dir}, {Key: seqField, Value: 1}}
}

func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
