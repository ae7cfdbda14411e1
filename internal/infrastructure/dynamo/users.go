package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-library-cms/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Save writes the whole record, including lockout and OTP state.
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrUserID, userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsername, attrUsername, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, attrEmail, email)
}

// FindByIdentifier matches the username first, then the email.
func (r *UserRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	u, err := r.GetByUsername(ctx, identifier)
	if !errors.Is(err, domain.ErrNotFound) {
		return u, err
	}
	return r.GetByEmail(ctx, identifier)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	return deleteExisting(ctx, r.client, r.tableName, attrUserID, userID)
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountAll counts every user across all scan pages.
func (r *UserRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("count users: %w", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user %s=%s: %w", attr, value, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
