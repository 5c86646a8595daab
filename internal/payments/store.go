package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/payflow/payment-service/internal/awsx"
)

// IDIndexName is the GSI keyed by payment id.
const IDIndexName = "id-index"

// Store is the durable payment store. Create reports a uniqueness conflict
// on the business reference as (false, nil); every other persistence failure
// propagates as a distinct error so callers never mistake a real storage
// fault for a lost race.
type Store interface {
	Create(ctx context.Context, p Payment) (bool, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByReference(ctx context.Context, referenceID string) (*Payment, error)
	UpdateStatus(ctx context.Context, referenceID, status, failureReason string) error
}

// DynamoStore implements Store against a DynamoDB table keyed by reference_id.
type DynamoStore struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewDynamoStore creates a Store bound to the given table.
func NewDynamoStore(client awsx.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create inserts the payment if and only if no item exists for its
// reference_id. Returns (false, nil) when another writer holds the reference.
func (s *DynamoStore) Create(ctx context.Context, p Payment) (bool, error) {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return false, fmt.Errorf("marshal payment: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(reference_id)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}

// GetByReference fetches a payment by business reference. Returns (nil, nil)
// when absent.
func (s *DynamoStore) GetByReference(ctx context.Context, referenceID string) (*Payment, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"reference_id": &types.AttributeValueMemberS{Value: referenceID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Payment
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &p, nil
}

// GetByID fetches a payment through the id-index GSI. Returns (nil, nil)
// when absent.
func (s *DynamoStore) GetByID(ctx context.Context, id string) (*Payment, error) {
	limit := int32(1)
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(IDIndexName),
		KeyConditionExpression: awsString("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query id-index: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var p Payment
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &p, nil
}

// UpdateStatus sets the status and failure reason on an existing payment.
func (s *DynamoStore) UpdateStatus(ctx context.Context, referenceID, status, failureReason string) error {
	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"reference_id": &types.AttributeValueMemberS{Value: referenceID},
		},
		UpdateExpression: awsString("SET #s = :status, failure_reason = :reason, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
			":reason": &types.AttributeValueMemberS{Value: failureReason},
			":ua":     &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(reference_id)"),
		ReturnValues:        types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (status): %w", err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
