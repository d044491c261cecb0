package dynamostore

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

// attributes maps query fields onto the projected top-level attributes of a
// placement item.
var attributes = map[domain.Field]string{
	domain.FieldClientName:     "client_name",
	domain.FieldDescription:    "description",
	domain.FieldEffectiveYear:  "effective_year",
	domain.FieldOwnerID:        "owner_id",
	domain.FieldOwnerFirstName: "owner_first_name",
	domain.FieldStatus:         "status",
	domain.FieldInception:      "inception_key",
}

// maxInOperands is the DynamoDB limit on operands of a single IN.
const maxInOperands = 100

type expression struct {
	Filter string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildFilter renders predicates as a scan FilterExpression. An empty
// expression means no filter.
func buildFilter(preds []domain.Predicate) (expression, error) {
	expr := expression{
		Names:  map[string]string{},
		Values: map[string]types.AttributeValue{},
	}
	clauses := make([]string, 0, len(preds))
	for i, p := range preds {
		attr, ok := attributes[p.Field]
		if !ok {
			return expression{}, fmt.Errorf("%w: field %s is not queryable", domain.ErrInvalidQuery, p.Field)
		}
		if len(p.Values) == 0 {
			return expression{}, fmt.Errorf("%w: no values for %s", domain.ErrInvalidQuery, p.Field)
		}
		name := fmt.Sprintf("#f%d", i)
		expr.Names[name] = attr

		placeholders := make([]string, 0, len(p.Values))
		for j, v := range p.Values {
			av, err := attributevalue.Marshal(v)
			if err != nil {
				return expression{}, fmt.Errorf("marshal %s value: %w", p.Field, err)
			}
			ph := fmt.Sprintf(":v%d_%d", i, j)
			expr.Values[ph] = av
			placeholders = append(placeholders, ph)
		}

		switch p.Op {
		case domain.OpIn:
			clauses = append(clauses, inClause(name, placeholders))
		case domain.OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = %s", name, placeholders[0]))
		case domain.OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= %s", name, placeholders[0]))
		case domain.OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= %s", name, placeholders[0]))
		default:
			return expression{}, fmt.Errorf("%w: operator %s", domain.ErrInvalidQuery, p.Op)
		}
	}
	expr.Filter = strings.Join(clauses, " AND ")
	return expr, nil
}

// inClause splits placeholders into OR-ed IN groups of at most
// maxInOperands each.
func inClause(name string, placeholders []string) string {
	if len(placeholders) <= maxInOperands {
		return fmt.Sprintf("%s IN (%s)", name, strings.Join(placeholders, ", "))
	}
	groups := make([]string, 0, len(placeholders)/maxInOperands+1)
	for start := 0; start < len(placeholders); start += maxInOperands {
		end := min(start+maxInOperands, len(placeholders))
		groups = append(groups, fmt.Sprintf("%s IN (%s)", name, strings.Join(placeholders[start:end], ", ")))
	}
	return "(" + strings.Join(groups, " OR ") + ")"
}
