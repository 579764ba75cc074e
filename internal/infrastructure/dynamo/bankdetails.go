package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/empower-api/internal/domain"
)

// BankDetailRepo stores one settlement record per user, upsert semantics.
type BankDetailRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBankDetailRepo(client *dynamodb.Client, tableName string) *BankDetailRepo {
	return &BankDetailRepo{client: client, tableName: tableName}
}

func (r *BankDetailRepo) Upsert(ctx context.Context, d *domain.BankDetail) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal bank detail: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BankDetailRepo) Get(ctx context.Context, mobile string) (*domain.BankDetail, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_mobile", mobile),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("bank details for %s: %w", mobile, domain.ErrNotFound)
	}
	var d domain.BankDetail
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
