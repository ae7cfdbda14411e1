package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-library-cms/internal/domain"
)

type ArticleRepo struct {
	client    API
	tableName string
}

func NewArticleRepo(client API, tableName string) *ArticleRepo {
	return &ArticleRepo{client: client, tableName: tableName}
}

func (r *ArticleRepo) Save(ctx context.Context, a *domain.Article) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put article %s: %w", a.ArticleID, err)
	}
	return nil
}

func (r *ArticleRepo) Get(ctx context.Context, articleID string) (*domain.Article, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrArticleID, articleID),
	})
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", articleID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
	}
	var a domain.Article
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal article: %w", err)
	}
	return &a, nil
}

func (r *ArticleRepo) List(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	if err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArticleRepo) ListPublic(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String("#p = :t"),
		ExpressionAttributeNames:  map[string]string{"#p": attrIsPublic},
		ExpressionAttributeValues: map[string]types.AttributeValue{":t": &types.AttributeValueMemberBOOL{Value: true}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArticleRepo) Delete(ctx context.Context, articleID string) error {
	return deleteExisting(ctx, r.client, r.tableName, attrArticleID, articleID)
}
