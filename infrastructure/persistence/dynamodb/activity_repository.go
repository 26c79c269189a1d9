package dynamodb

import (
	"context"
	"fmt"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	batchWriteLimit   = 25
	unprocessedRounds = 3

	// maxFrameDataBytes keeps an item under the 400KB DynamoDB limit
	maxFrameDataBytes = 300 * 1024
)

// activityRecord is the stored shape of an ActivityItem
type activityRecord struct {
	PK            string   `dynamodbav:"PK"`
	SK            string   `dynamodbav:"SK"`
	GSI1PK        string   `dynamodbav:"GSI1PK"`
	GSI1SK        string   `dynamodbav:"GSI1SK"`
	EntityType    string   `dynamodbav:"EntityType"`
	ID            string   `dynamodbav:"ID"`
	Kind          string   `dynamodbav:"Kind"`
	Text          string   `dynamodbav:"Text,omitempty"`
	Transcription string   `dynamodbav:"Transcription,omitempty"`
	AppName       string   `dynamodbav:"AppName,omitempty"`
	WindowName    string   `dynamodbav:"WindowName,omitempty"`
	BrowserURL    string   `dynamodbav:"BrowserURL,omitempty"`
	Speaker       string   `dynamodbav:"Speaker,omitempty"`
	DeviceName    string   `dynamodbav:"DeviceName,omitempty"`
	FilePath      string   `dynamodbav:"FilePath,omitempty"`
	FrameData     string   `dynamodbav:"FrameData,omitempty"`
	Tags          []string `dynamodbav:"Tags,omitempty,stringset"`
	Timestamp     string   `dynamodbav:"Timestamp"`
}

// ActivityRepository stores captured items
type ActivityRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewActivityRepository creates an ActivityRepository
func NewActivityRepository(store *Store, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{store: store, logger: logger}
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// SaveBatch writes items in batches of 25. Frames larger than
// maxFrameDataBytes are dropped from the stored item.
func (r *ActivityRepository) SaveBatch(ctx context.Context, items []entities.ActivityItem) error {
	if len(items) == 0 {
		return nil
	}
	client, err := r.store.Client(ctx)
	if err != nil {
		return err
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		if len(item.FrameImage) > maxFrameDataBytes {
			r.logger.Debug("Dropping oversized frame",
				zap.String("id", item.ID), zap.Int("bytes", len(item.FrameImage)))
		}
		av, err := attributevalue.MarshalMap(toActivityRecord(item))
		if err != nil {
			return fmt.Errorf("failed to marshal activity %s: %w", item.ID, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	table := r.store.TableName()
	for i := 0; i < len(requests); i += batchWriteLimit {
		end := i + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}
		if err := r.writeBatch(ctx, client, table, requests[i:end]); err != nil {
			return err
		}
	}

	r.logger.Debug("Saved activity batch", zap.Int("count", len(items)))
	return nil
}

func (r *ActivityRepository) writeBatch(ctx context.Context, client Client, table string, batch []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{table: batch}
	for round := 0; round < unprocessedRounds; round++ {
		result, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return pkgerrors.NewDatabaseError("batch_write", err)
		}
		if len(result.UnprocessedItems[table]) == 0 {
			return nil
		}
		pending = result.UnprocessedItems
	}
	return pkgerrors.NewDatabaseError("batch_write",
		fmt.Errorf("%d activities left unprocessed", len(pending[table])))
}

// ListRecent queries the time index newest first and returns the page
// along with the number of matching items
func (r *ActivityRepository) ListRecent(ctx context.Context, filter ports.ActivityFilter) ([]entities.ActivityItem, int, error) {
	client, err := r.store.Client(ctx)
	if err != nil {
		return nil, 0, err
	}

	var lo, hi string
	if !filter.Since.IsZero() {
		lo = timeKey(filter.Since)
	}
	if !filter.Until.IsZero() {
		hi = timeKey(filter.Until) + keyUpperBound
	}
	qb := newIndexQuery(r.store.TableName(), r.store.cfg.TimeIndexName, "GSI1PK", entityActivity).
		withSortKeyBetween("GSI1SK", lo, hi)
	if filter.Kind != "" {
		qb.withEqualFilter("Kind", string(filter.Kind))
	}
	input, err := qb.build()
	if err != nil {
		return nil, 0, err
	}

	var records []activityRecord
	if err := queryAll(ctx, client, input, &records); err != nil {
		return nil, 0, err
	}

	start, end := common.Window(len(records), filter.Offset, filter.Limit)
	items := make([]entities.ActivityItem, 0, end-start)
	for _, rec := range records[start:end] {
		items = append(items, rec.toEntity())
	}
	return items, len(records), nil
}

func toActivityRecord(item entities.ActivityItem) activityRecord {
	frame := item.FrameImage
	if len(frame) > maxFrameDataBytes {
		frame = ""
	}
	return activityRecord{
		PK:            activityPK(item.ID),
		SK:            metadataSK,
		GSI1PK:        entityActivity,
		GSI1SK:        timeSortKey(item.Timestamp, item.ID),
		EntityType:    entityActivity,
		ID:            item.ID,
		Kind:          string(item.Kind),
		Text:          item.Text,
		Transcription: item.Transcription,
		AppName:       item.AppName,
		WindowName:    item.WindowName,
		BrowserURL:    item.BrowserURL,
		Speaker:       item.Speaker,
		DeviceName:    item.DeviceName,
		FilePath:      item.FilePath,
		FrameData:     frame,
		Tags:          item.Tags,
		Timestamp:     item.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (rec activityRecord) toEntity() entities.ActivityItem {
	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		ts = parseTimeKey(rec.GSI1SK)
	}
	return entities.ActivityItem{
		ID:            rec.ID,
		Kind:          valueobjects.ActivityKind(rec.Kind),
		Text:          rec.Text,
		Transcription: rec.Transcription,
		AppName:       rec.AppName,
		WindowName:    rec.WindowName,
		BrowserURL:    rec.BrowserURL,
		Speaker:       rec.Speaker,
		DeviceName:    rec.DeviceName,
		FilePath:      rec.FilePath,
		FrameImage:    rec.FrameData,
		Tags:          rec.Tags,
		Timestamp:     ts,
		Provenance:    valueobjects.ProvenanceDatabase,
	}
}

// queryAll follows every page of input and unmarshals the items into out
func queryAll(ctx context.Context, client Client, input *dynamodb.QueryInput, out interface{}) error {
	var raw []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return pkgerrors.NewDatabaseError("query", err)
		}
		raw = append(raw, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal query results: %w", err)
	}
	return nil
}
