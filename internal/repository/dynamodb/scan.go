package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/types"
)

// scanAll drains a table scan, following pagination keys
func scanAll(ctx context.Context, client *Client, table string) ([]map[string]ddbtypes.AttributeValue, error) {
	var items []map[string]ddbtypes.AttributeValue
	var lastKey map[string]ddbtypes.AttributeValue

	for {
		var out *dynamodb.ScanOutput
		err := client.withRetry(ctx, func() error {
			var err error
			out, err = client.db.Scan(ctx, &dynamodb.ScanInput{
				TableName:         aws.String(client.TableName(table)),
				ExclusiveStartKey: lastKey,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	return items, nil
}

// paginate applies the filter's offset and limit to an already sorted slice
func paginate[T any](items []T, filter types.BaseFilter) []T {
	if filter == nil {
		return items
	}

	offset := filter.GetOffset()
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]

	if filter.IsUnlimited() {
		return items
	}
	if limit := filter.GetLimit(); limit < len(items) {
		items = items[:limit]
	}

	return items
}
