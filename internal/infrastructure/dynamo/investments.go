package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/empower-api/internal/domain"
)

// InvestmentRepo provides typed DynamoDB operations for the investments
// table. PK: investment_id; the user_mobile-created_at GSI serves
// latest-first queries per user.
type InvestmentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInvestmentRepo(client *dynamodb.Client, tableName string) *InvestmentRepo {
	return &InvestmentRepo{client: client, tableName: tableName}
}

func (r *InvestmentRepo) Put(ctx context.Context, inv *domain.Investment) error {
	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return fmt.Errorf("marshal investment: %w", err)
	}
	item["created_at"] = &types.AttributeValueMemberS{Value: sortKeyTime(inv.CreatedAt)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *InvestmentRepo) Get(ctx context.Context, investmentID string) (*domain.Investment, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("investment_id", investmentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("investment %s: %w", investmentID, domain.ErrNotFound)
	}
	var inv domain.Investment
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Latest returns the most recently created investment for a user, or
// domain.ErrNotFound when the user has none.
func (r *InvestmentRepo) Latest(ctx context.Context, mobile string) (*domain.Investment, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_mobile-created_at-index"),
		KeyConditionExpression: aws.String("user_mobile = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: mobile},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no investment for %s: %w", mobile, domain.ErrNotFound)
	}
	var inv domain.Investment
	if err := attributevalue.UnmarshalMap(out.Items[0], &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// LatestPending returns the newest pending investment for a user, or
// domain.ErrNotFound when none is pending.
func (r *InvestmentRepo) LatestPending(ctx context.Context, mobile string) (*domain.Investment, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_mobile-created_at-index"),
		KeyConditionExpression: aws.String("user_mobile = :m"),
		FilterExpression:       aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m":       &types.AttributeValueMemberS{Value: mobile},
			":pending": &types.AttributeValueMemberS{Value: domain.InvestmentPending},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no pending investment for %s: %w", mobile, domain.ErrNotFound)
	}
	var inv domain.Investment
	if err := attributevalue.UnmarshalMap(out.Items[0], &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateIfStatus applies updates only while the record still holds
// expectedStatus, making lifecycle transitions atomic under concurrent
// submissions and double-processing admins. Returns domain.ErrConflict when
// the precondition no longer holds.
func (r *InvestmentRepo) UpdateIfStatus(ctx context.Context, investmentID, expectedStatus string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#cond_s"] = "status"
	ue.Values[":cond_s"] = &types.AttributeValueMemberS{Value: expectedStatus}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("investment_id", investmentID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(investment_id) AND #cond_s = :cond_s"),
	})
	if err != nil && isConditionalCheckFailed(err) {
		return fmt.Errorf("investment %s is no longer %s: %w", investmentID, expectedStatus, domain.ErrConflict)
	}
	return err
}

// ScanAll returns every investment across all users, newest first. The admin
// dashboard is the only consumer; the table stays small enough that the
// unpaginated scan matches the reference behavior.
func (r *InvestmentRepo) ScanAll(ctx context.Context) ([]domain.Investment, error) {
	var investments []domain.Investment
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Investment
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		investments = append(investments, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].CreatedAt.After(investments[j].CreatedAt)
	})
	return investments, nil
}
