package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-library-cms/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET
// expression. Fields are numbered in sorted order so the output is stable.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, errors.New("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += nameKey + " = " + valueKey
	}
	return ue, nil
}

// scanAll reads every page of a scan into out.
func scanAll(ctx context.Context, client API, in *dynamodb.ScanInput, out interface{}) error {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewScanPaginator(client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("scan %s: %w", aws.ToString(in.TableName), err)
		}
		items = append(items, page.Items...)
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}

// deleteExisting removes the item at key, reporting ErrNotFound when absent.
func deleteExisting(ctx context.Context, client API, table, keyAttr, keyValue string) error {
	_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(table),
		Key:                      strKey(keyAttr, keyValue),
		ConditionExpression:      aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": keyAttr},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s %s: %w", table, keyValue, domain.ErrNotFound)
	}
	return err
}
