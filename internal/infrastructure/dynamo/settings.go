package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/empower-api/internal/domain"
)

// SettingsRepo stores the single admin settings row.
type SettingsRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSettingsRepo(client *dynamodb.Client, tableName string) *SettingsRepo {
	return &SettingsRepo{client: client, tableName: tableName}
}

func (r *SettingsRepo) Get(ctx context.Context) (*domain.AdminSettings, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("settings_id", domain.SettingsID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("admin settings: %w", domain.ErrNotFound)
	}
	var s domain.AdminSettings
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s *domain.AdminSettings) error {
	s.SettingsID = domain.SettingsID
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
