package mongostore

import (
	"testing"

	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/placement/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(nil))

	single := buildFilter([]domain.Predicate{{Field: domain.FieldOwnerID, Op: domain.OpEq, Values: []any{"u-1"}}})
	assert.Equal(t, bson.M{"user._xid": "u-1"}, single)

	f := false
	q, err := query.Build(domain.QuerySpec{
		Statuses:      []string{"draft", "bound"},
		InceptionFrom: "2024-01-01",
		InceptionTo:   "2024-12-31",
		UserOnly:      &f,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"status": bson.M{"$in": bson.A{"draft", "bound"}}},
		bson.M{"_inception_key": bson.M{"$gte": "2024-01-01T00:00:00.000000000Z"}},
		bson.M{"_inception_key": bson.M{"$lte": "2024-12-31T23:59:59.999999999Z"}},
	}}, buildFilter(q.Predicates))
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_seq", Value: 1}}, buildSort(nil))
	assert.Equal(t,
		bson.D{{Key: "user.first_name", Value: -1}, {Key: "_seq", Value: 1}},
		buildSort(&domain.Sort{Field: domain.FieldOwnerFirstName, Direction: domain.SortDesc}),
	)
	assert.Equal(t,
		bson.D{{Key: "effective_year", Value: 1}, {Key: "_seq", Value: 1}},
		buildSort(&domain.Sort{Field: domain.FieldEffectiveYear}),
	)
}
