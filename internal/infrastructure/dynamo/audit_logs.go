package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-library-cms/internal/domain"
)

// AuditRepo is append-only; entries are never updated or deleted.
type AuditRepo struct {
	client    API
	tableName string
}

func NewAuditRepo(client API, tableName string) *AuditRepo {
	return &AuditRepo{client: client, tableName: tableName}
}

func (r *AuditRepo) Put(ctx context.Context, l *domain.AuditLog) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal audit log: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + attrAuditID + ")"),
	}); err != nil {
		return fmt.Errorf("put audit log: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	if err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
