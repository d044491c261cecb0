package dynamostore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/smallbiznis/placements/internal/docstore/document"
	"github.com/smallbiznis/placements/internal/placement/domain"
)

const (
	attrID   = "id"
	attrBody = "body"
	attrSeq  = "seq"
)

type collection struct {
	name   domain.CollectionName
	client API
	table  string
}

func (c *collection) Name() domain.CollectionName { return c.name }

func (c *collection) Save(ctx context.Context, id string, doc any) (string, error) {
	tree, err := document.ToTree(doc)
	if err != nil {
		return "", err
	}
	id = document.EnsureID(id)
	document.StampID(tree, id)
	body, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]types.AttributeValue{
			attrID:   &types.AttributeValueMemberS{Value: id},
			attrBody: &types.AttributeValueMemberS{Value: string(body)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("save %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

func (c *collection) FindByID(ctx context.Context, id string, out any) error {
	item, err := getItem(ctx, c.client, c.table, id)
	if err != nil {
		return fmt.Errorf("find %s/%s: %w", c.name, id, err)
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return decodeBody(item, out)
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{attrID: &types.AttributeValueMemberS{Value: id}}
}

func getItem(ctx context.Context, client API, table, id string) (map[string]types.AttributeValue, error) {
	res, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return res.Item, nil
}

func decodeBody(item map[string]types.AttributeValue, out any) error {
	body, ok := item[attrBody].(*types.AttributeValueMemberS)
	if !ok {
		return fmt.Errorf("decode document: missing %s attribute", attrBody)
	}
	if err := json.Unmarshal([]byte(body.Value), out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
