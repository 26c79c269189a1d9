package services

import (
	"context"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	domainservices "insights-backend/domain/services"
	"insights-backend/pkg/observability"

	"go.uber.org/zap"
)

// CaptureResult is a deduplicated batch of recent activity
type CaptureResult struct {
	Items      []entities.ActivityItem `json:"items"`
	Source     valueobjects.Provenance `json:"source"`
	Captured   int                     `json:"captured"`
	Duplicates int                     `json:"duplicates"`
	Persisted  bool                    `json:"persisted"`
}

// ActivityService runs the capture, dedupe and persist pipeline
type ActivityService struct {
	capture *CaptureService
	dedup   domainservices.Deduplicator
	repo    ports.ActivityRepository
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(
	capture *CaptureService,
	dedup domainservices.Deduplicator,
	repo ports.ActivityRepository,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		capture: capture,
		dedup:   dedup,
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// Recent fetches and deduplicates the last windowMinutes of activity
func (s *ActivityService) Recent(ctx context.Context, windowMinutes int) CaptureResult {
	items, source := s.capture.FetchRecentActivity(ctx, windowMinutes)
	kept := s.dedup.Dedupe(items)

	dropped := len(items) - len(kept)
	s.metrics.RecordDuplicates(dropped)

	return CaptureResult{
		Items:      kept,
		Source:     source,
		Captured:   len(items),
		Duplicates: dropped,
	}
}

// CaptureAndStore runs Recent and saves live items. A store failure is
// logged and the items are still returned.
func (s *ActivityService) CaptureAndStore(ctx context.Context, windowMinutes int) CaptureResult {
	result := s.Recent(ctx, windowMinutes)
	if result.Source != valueobjects.ProvenanceLive || len(result.Items) == 0 {
		return result
	}

	if err := s.repo.SaveBatch(ctx, result.Items); err != nil {
		s.logger.Error("Failed to persist activity",
			zap.Int("items", len(result.Items)),
			zap.Error(err),
		)
		return result
	}
	result.Persisted = true
	return result
}

// Search runs a filtered query against the capture service
func (s *ActivityService) Search(ctx context.Context, query ports.SearchQuery) (*ports.SearchPage, valueobjects.Provenance) {
	return s.capture.Search(ctx, query)
}

// Stored lists previously persisted activity and the matching total
func (s *ActivityService) Stored(ctx context.Context, filter ports.ActivityFilter) ([]entities.ActivityItem, int, error) {
	return s.repo.ListRecent(ctx, filter)
}
