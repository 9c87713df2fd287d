package dynamo

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/store"
)

// API is the subset of *dynamodb.Client the store calls.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type Store struct {
	client API
}

func New(client API) *Store {
	return &Store{client: client}
}

func (s *Store) GetItem(ctx context.Context, table string, key store.Key) (store.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			key.Name: &types.AttributeValueMemberS{Value: key.Value},
		},
	})
	if err != nil {
		return nil, wrapAPIError(err, "GetItem", table)
	}
	if out.Item == nil {
		return nil, nil
	}

	item := make(store.Item, len(out.Item))
	for name, value := range out.Item {
		// only string attributes are meaningful to the service
		s, ok := value.(*types.AttributeValueMemberS)
		if !ok {
			log.Debugf("dropping non-string attribute %q from %s", name, table)
			continue
		}
		item[name] = s.Value
	}
	return item, nil
}

func (s *Store) PutItem(ctx context.Context, table string, key store.Key, attrs store.Item) error {
	av, err := attributevalue.MarshalMap(map[string]string(store.WithKey(key, attrs)))
	if err != nil {
		return errors.Wrap(err, "marshal item")
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return wrapAPIError(err, "PutItem", table)
	}
	return nil
}

func wrapAPIError(err error, op, table string) error {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return errors.Wrapf(err, "%s %s (%s)", op, table, apiErr.ErrorCode())
	}
	return errors.Wrapf(err, "%s %s", op, table)
}
