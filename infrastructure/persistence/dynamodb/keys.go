package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"insights-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	entityActivity = "ACTIVITY"
	entityInsight  = "INSIGHT"
	metadataSK     = "METADATA"

	// layout of utils.SortableTimestamp
	sortableTime = "2006-01-02T15:04:05.000000000Z"
	// sorts after every id character
	keyUpperBound = "~"
)

func activityPK(id string) string { return fmt.Sprintf("%s#%s", entityActivity, id) }
func insightPK(id string) string  { return fmt.Sprintf("%s#%s", entityInsight, id) }
func statusPK(status string) string {
	return fmt.Sprintf("STATUS#%s", status)
}

func timeKey(t time.Time) string {
	return utils.SortableTimestamp(t)
}

func timeSortKey(t time.Time, id string) string {
	return timeKey(t) + "#" + id
}

func parseTimeKey(s string) time.Time {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	t, _ := time.Parse(sortableTime, s)
	return t
}

// queryBuilder assembles a newest-first index query
type queryBuilder struct {
	tableName string
	indexName string
	key       expression.KeyConditionBuilder
	filter    *expression.ConditionBuilder
}

func newIndexQuery(tableName, indexName, pkName, pkValue string) *queryBuilder {
	return &queryBuilder{
		tableName: tableName,
		indexName: indexName,
		key:       expression.Key(pkName).Equal(expression.Value(pkValue)),
	}
}

// withSortKeyBetween bounds the sort key; an empty bound is open
func (qb *queryBuilder) withSortKeyBetween(skName, lo, hi string) *queryBuilder {
	switch {
	case lo != "" && hi != "":
		qb.key = qb.key.And(expression.Key(skName).Between(expression.Value(lo), expression.Value(hi)))
	case lo != "":
		qb.key = qb.key.And(expression.Key(skName).GreaterThanEqual(expression.Value(lo)))
	case hi != "":
		qb.key = qb.key.And(expression.Key(skName).LessThanEqual(expression.Value(hi)))
	}
	return qb
}

func (qb *queryBuilder) withEqualFilter(attribute string, value interface{}) *queryBuilder {
	cond := expression.Name(attribute).Equal(expression.Value(value))
	if qb.filter != nil {
		cond = qb.filter.And(cond)
	}
	qb.filter = &cond
	return qb
}

func (qb *queryBuilder) build() (*dynamodb.QueryInput, error) {
	builder := expression.NewBuilder().WithKeyCondition(qb.key)
	if qb.filter != nil {
		builder = builder.WithFilter(*qb.filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(qb.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if qb.indexName != "" {
		input.IndexName = aws.String(qb.indexName)
	}
	if qb.filter != nil {
		input.FilterExpression = expr.Filter()
	}
	return input, nil
}
