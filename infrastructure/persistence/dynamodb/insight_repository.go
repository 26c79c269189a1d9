package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// insightRecord is the stored shape of an Insight
type insightRecord struct {
	PK                 string   `dynamodbav:"PK"`
	SK                 string   `dynamodbav:"SK"`
	GSI1PK             string   `dynamodbav:"GSI1PK"`
	GSI1SK             string   `dynamodbav:"GSI1SK"`
	GSI2PK             string   `dynamodbav:"GSI2PK"`
	GSI2SK             string   `dynamodbav:"GSI2SK"`
	EntityType         string   `dynamodbav:"EntityType"`
	ID                 string   `dynamodbav:"ID"`
	Text               string   `dynamodbav:"Text"`
	Category           string   `dynamodbav:"Category"`
	Priority           int      `dynamodbav:"Priority"`
	Status             string   `dynamodbav:"Status"`
	RelatedActivityIDs []string `dynamodbav:"RelatedActivityIDs"`
	CreatedAt          string   `dynamodbav:"CreatedAt"`
	UpdatedAt          string   `dynamodbav:"UpdatedAt"`
}

// InsightRepository stores generated insights
type InsightRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewInsightRepository creates an InsightRepository
func NewInsightRepository(store *Store, logger *zap.Logger) *InsightRepository {
	return &InsightRepository{store: store, logger: logger}
}

var _ ports.InsightRepository = (*InsightRepository)(nil)

// Save persists an insight
func (r *InsightRepository) Save(ctx context.Context, insight *entities.Insight) error {
	client, err := r.store.Client(ctx)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toInsightRecord(insight))
	if err != nil {
		return fmt.Errorf("failed to marshal insight: %w", err)
	}

	if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.store.TableName()),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save insight",
			zap.Error(err),
			zap.String("insightID", insight.ID),
		)
		return pkgerrors.NewDatabaseError("put_insight", err)
	}
	return nil
}

// GetByID loads one insight
func (r *InsightRepository) GetByID(ctx context.Context, id string) (*entities.Insight, error) {
	client, err := r.store.Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.TableName()),
		Key:       insightKey(id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get_insight", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("insight")
	}

	var rec insightRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insight: %w", err)
	}
	return rec.toEntity(), nil
}

// List uses the status index when a status is given and the time index
// otherwise. Category is applied as a filter expression.
func (r *InsightRepository) List(ctx context.Context, filter ports.InsightFilter) ([]*entities.Insight, int, error) {
	client, err := r.store.Client(ctx)
	if err != nil {
		return nil, 0, err
	}

	var qb *queryBuilder
	if filter.Status != "" {
		qb = newIndexQuery(r.store.TableName(), r.store.cfg.StatusIndexName, "GSI2PK", statusPK(string(filter.Status)))
	} else {
		qb = newIndexQuery(r.store.TableName(), r.store.cfg.TimeIndexName, "GSI1PK", entityInsight)
	}
	if filter.Category != "" {
		qb.withEqualFilter("Category", string(filter.Category))
	}
	input, err := qb.build()
	if err != nil {
		return nil, 0, err
	}

	var records []insightRecord
	if err := queryAll(ctx, client, input, &records); err != nil {
		return nil, 0, err
	}

	start, end := common.Window(len(records), filter.Offset, filter.Limit)
	insights := make([]*entities.Insight, 0, end-start)
	for _, rec := range records[start:end] {
		insights = append(insights, rec.toEntity())
	}
	return insights, len(records), nil
}

// UpdateStatus rewrites status, its index key and updatedAt
func (r *InsightRepository) UpdateStatus(ctx context.Context, id string, status valueobjects.Status, updatedAt time.Time) error {
	client, err := r.store.Client(ctx)
	if err != nil {
		return err
	}

	update := expression.Set(expression.Name("Status"), expression.Value(string(status))).
		Set(expression.Name("GSI2PK"), expression.Value(statusPK(string(status)))).
		Set(expression.Name("UpdatedAt"), expression.Value(updatedAt.UTC().Format(time.RFC3339Nano)))
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.store.TableName()),
		Key:                       insightKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("insight")
		}
		return pkgerrors.NewDatabaseError("update_insight_status", err)
	}
	return nil
}

func insightKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: insightPK(id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func toInsightRecord(insight *entities.Insight) insightRecord {
	related := insight.RelatedActivityIDs
	if related == nil {
		related = []string{}
	}
	return insightRecord{
		PK:                 insightPK(insight.ID),
		SK:                 metadataSK,
		GSI1PK:             entityInsight,
		GSI1SK:             timeSortKey(insight.CreatedAt, insight.ID),
		GSI2PK:             statusPK(string(insight.Status)),
		GSI2SK:             timeSortKey(insight.CreatedAt, insight.ID),
		EntityType:         entityInsight,
		ID:                 insight.ID,
		Text:               insight.Text,
		Category:           string(insight.Category),
		Priority:           int(insight.Priority),
		Status:             string(insight.Status),
		RelatedActivityIDs: related,
		CreatedAt:          insight.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          insight.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (rec insightRecord) toEntity() *entities.Insight {
	created, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		created = parseTimeKey(rec.GSI1SK)
	}
	updated, err := time.Parse(time.RFC3339Nano, rec.UpdatedAt)
	if err != nil {
		updated = created
	}
	related := rec.RelatedActivityIDs
	if related == nil {
		related = []string{}
	}
	return &entities.Insight{
		ID:                 rec.ID,
		Text:               rec.Text,
		Category:           valueobjects.Category(rec.Category),
		Priority:           valueobjects.Priority(rec.Priority),
		Status:             valueobjects.Status(rec.Status),
		RelatedActivityIDs: related,
		CreatedAt:          created,
		UpdatedAt:          updated,
		Provenance:         valueobjects.ProvenanceDatabase,
	}
}
