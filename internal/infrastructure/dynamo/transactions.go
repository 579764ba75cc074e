package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/empower-api/internal/domain"
)

// TransactionRepo is the append-only ledger store. Entries are only ever
// inserted; there is no update or delete path.
type TransactionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTransactionRepo(client *dynamodb.Client, tableName string) *TransactionRepo {
	return &TransactionRepo{client: client, tableName: tableName}
}

func (r *TransactionRepo) Append(ctx context.Context, tx *domain.Transaction) error {
	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	item["created_at"] = &types.AttributeValueMemberS{Value: sortKeyTime(tx.CreatedAt)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
	})
	return err
}

// ListByUser returns all ledger entries for a user, most recent first.
// It pages through the user_mobile-created_at GSI so the fold sees every
// entry regardless of table size.
func (r *TransactionRepo) ListByUser(ctx context.Context, mobile string) ([]domain.Transaction, error) {
	var entries []domain.Transaction
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("user_mobile-created_at-index"),
			KeyConditionExpression: aws.String("user_mobile = :m"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":m": &types.AttributeValueMemberS{Value: mobile},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Transaction
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return entries, nil
}
