package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/placement/query"
)

const (
	idExists    = "attribute_exists(id)"
	idNotExists = "attribute_not_exists(id)"
)

type placementRepo struct {
	client API
	table  string
	node   *snowflake.Node
}

func (r *placementRepo) Exists(ctx context.Context, id string) (bool, error) {
	res, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  key(id),
		ProjectionExpression: aws.String(attrID),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("get placement %s: %w", id, err)
	}
	return res.Item != nil, nil
}

func (r *placementRepo) Create(ctx context.Context, p *domain.Placement) error {
	p.ID = document.EnsureID(p.ID)
	set, err := placementAttributes(p)
	if err != nil {
		return err
	}
	item := map[string]types.AttributeValue{
		attrID:  &types.AttributeValueMemberS{Value: p.ID},
		attrSeq: &types.AttributeValueMemberN{Value: strconv.FormatInt(r.node.Generate().Int64(), 10)},
	}
	for k, v := range set {
		if v != nil {
			item[k] = v
		}
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String(idNotExists),
	})
	if err != nil {
		if isConditionFailed(err) {
			return &domain.DuplicateError{ID: p.ID}
		}
		return fmt.Errorf("create placement %s: %w", p.ID, err)
	}
	return nil
}

// Replace rewrites the body and projection in place so the stored sequence
// survives.
func (r *placementRepo) Replace(ctx context.Context, p *domain.Placement) error {
	attrs, err := placementAttributes(p)
	if err != nil {
		return err
	}

	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var sets, removes []string
	i := 0
	for _, k := range sortedKeys(attrs) {
		name := fmt.Sprintf("#a%d", i)
		names[name] = k
		if v := attrs[k]; v != nil {
			ph := fmt.Sprintf(":a%d", i)
			values[ph] = v
			sets = append(sets, name+" = "+ph)
		} else {
			removes = append(removes, name)
		}
		i++
	}
	update := "SET " + strings.Join(sets, ", ")
	if len(removes) > 0 {
		update += " REMOVE " + strings.Join(removes, ", ")
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(p.ID),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String(idExists),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: p.ID}
		}
		return fmt.Errorf("replace placement %s: %w", p.ID, err)
	}
	return nil
}

func (r *placementRepo) FindByID(ctx context.Context, id string) (*domain.Placement, error) {
	item, err := getItem(ctx, r.client, r.table, id)
	if err != nil {
		return nil, fmt.Errorf("find placement %s: %w", id, err)
	}
	if item == nil {
		return nil, nil
	}
	var p domain.Placement
	if err := decodeBody(item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *placementRepo) FindAll(ctx context.Context) ([]domain.Placement, error) {
	return r.Find(ctx, domain.Query{})
}

// Find scans the table with a server-side filter and sorts in process.
func (r *placementRepo) Find(ctx context.Context, q domain.Query) ([]domain.Placement, error) {
	expr, err := buildFilter(q.Predicates)
	if err != nil {
		return nil, err
	}
	in := &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	}
	if expr.Filter != "" {
		in.FilterExpression = aws.String(expr.Filter)
		in.ExpressionAttributeNames = expr.Names
		in.ExpressionAttributeValues = expr.Values
	}

	type scanned struct {
		seq int64
		p   domain.Placement
	}
	var rows []scanned
	paginator := dynamodb.NewScanPaginator(r.client, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan placements: %w", err)
		}
		for _, item := range page.Items {
			var row scanned
			if err := decodeBody(item, &row.p); err != nil {
				return nil, err
			}
			if n, ok := item[attrSeq].(*types.AttributeValueMemberN); ok {
				row.seq, _ = strconv.ParseInt(n.Value, 10, 64)
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].seq < rows[b].seq })
	out := make([]domain.Placement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.p)
	}
	query.SortPlacements(out, q.Sort)
	return out, nil
}

func (r *placementRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 key(id),
		ConditionExpression: aws.String(idExists),
	})
	if err != nil {
		if isConditionFailed(err) {
			return &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: id}
		}
		return fmt.Errorf("delete placement %s: %w", id, err)
	}
	return nil
}

// placementAttributes returns the body and projection attributes. A nil
// value marks an optional attribute that must be absent.
func placementAttributes(p *domain.Placement) (map[string]types.AttributeValue, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode placement: %w", err)
	}
	proj := p.Projection()
	attrs := map[string]types.AttributeValue{
		attrBody:           &types.AttributeValueMemberS{Value: string(body)},
		"client_name":      &types.AttributeValueMemberS{Value: proj.ClientName},
		"description":      &types.AttributeValueMemberS{Value: proj.Description},
		"status":           &types.AttributeValueMemberS{Value: proj.Status},
		"owner_id":         &types.AttributeValueMemberS{Value: proj.OwnerID},
		"owner_first_name": &types.AttributeValueMemberS{Value: proj.OwnerFirstName},
		"effective_year":   nil,
		"inception_key":    nil,
	}
	if proj.EffectiveYear != nil {
		attrs["effective_year"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*proj.EffectiveYear)}
	}
	if proj.InceptionKey != "" {
		attrs["inception_key"] = &types.AttributeValueMemberS{Value: proj.InceptionKey}
	}
	return attrs, nil
}

func sortedKeys(m map[string]types.AttributeValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}
