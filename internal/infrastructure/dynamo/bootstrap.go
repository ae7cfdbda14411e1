package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-library-cms/internal/config"
)

type tableCreator interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates the users, articles and audit_logs tables if they are
// missing. Existing tables are left alone, so it runs on every startup.
func Bootstrap(ctx context.Context, client tableCreator, tables config.DynamoTables) {
	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrUsername), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrEmail), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUsername, attrUsername, ""),
			gsi(indexEmail, attrEmail, ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Articles),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrArticleID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrAuthorID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrCreatedAt), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrArticleID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexAuthorCreated, attrAuthorID, attrCreatedAt),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.AuditLogs),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrAuditID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrUsername), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrTimestamp), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrAuditID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUsernameTimestamp, attrUsername, attrTimestamp),
		},
	})
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client tableCreator, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err == nil {
		slog.Info("created table", "table", *input.TableName)
		return
	}
	var inUse *types.ResourceInUseException
	if !errors.As(err, &inUse) {
		slog.Warn("could not create table", "table", *input.TableName, "err", err)
	}
}

type tableDescriber interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Ping reports whether table is reachable.
func Ping(ctx context.Context, client tableDescriber, table string) error {
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}); err != nil {
		return fmt.Errorf("describe %s: %w", table, err)
	}
	return nil
}
