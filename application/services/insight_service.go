package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/config"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"
	"insights-backend/pkg/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure kinds attached to canned completions
const (
	FailureNetwork       = "network"
	FailureHTTPStatus    = "http_status"
	FailureEmptyResponse = "empty_response"
	FailureCanceled      = "canceled"
	FailureUnknown       = "unknown"
)

// CompletionSettings are the model parameters sent with every prompt
type CompletionSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// FailureInfo describes why a completion fell back to canned text
type FailureInfo struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Attempts  int       `json:"attempts"`
}

// Completion is the outcome of one insight request. Fallback is set when Text
// is the canned text for the category rather than a generated answer.
type Completion struct {
	Text     string                 `json:"text"`
	Category valueobjects.Category  `json:"category"`
	Fallback bool                   `json:"fallback"`
	Attempts int                    `json:"attempts"`
	Failure  *FailureInfo           `json:"failure,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GeneratedInsight pairs a produced insight with the completion behind it
type GeneratedInsight struct {
	Insight    *entities.Insight `json:"insight"`
	Completion Completion        `json:"completion"`
	Persisted  bool              `json:"persisted"`
}

// InsightService turns activity into insights and manages their lifecycle
type InsightService struct {
	completion ports.CompletionClient
	repo       ports.InsightRepository
	publisher  ports.EventPublisher
	settings   CompletionSettings
	cfg        *config.DomainConfig
	metrics    *observability.Collector
	logger     *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInsightService creates a new insight service
func NewInsightService(
	completion ports.CompletionClient,
	repo ports.InsightRepository,
	publisher ports.EventPublisher,
	settings CompletionSettings,
	cfg *config.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *InsightService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &InsightService{
		completion: completion,
		repo:       repo,
		publisher:  publisher,
		settings:   settings,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// RequestInsight asks the completion endpoint for an insight about items.
// Network failures are retried up to MaxRetries times with exponential
// backoff; any other failure falls back at once. The result always carries
// text: on failure it is the canned text for category.
func (s *InsightService) RequestInsight(ctx context.Context, items []entities.ActivityItem, category valueobjects.Category) Completion {
	req := s.buildRequest(items, category)

	for attempt := 1; ; attempt++ {
		resp, err := s.completion.Complete(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			s.metrics.RecordCompletionAttempt("success")
			return Completion{
				Text:     strings.TrimSpace(resp.Text),
				Category: category,
				Attempts: attempt,
				Metadata: resp.Metadata,
			}
		}
		if err == nil {
			s.metrics.RecordCompletionAttempt(FailureEmptyResponse)
			return s.canned(category, FailureEmptyResponse, "completion returned no text", attempt)
		}

		kind := failureKind(ctx, err)
		s.metrics.RecordCompletionAttempt(kind)

		if kind != FailureNetwork || attempt > s.cfg.MaxRetries {
			s.logger.Warn("Completion failed, using canned insight",
				zap.String("category", string(category)),
				zap.String("kind", kind),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return s.canned(category, kind, err.Error(), attempt)
		}

		delay := s.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
		s.logger.Debug("Retrying completion after network failure",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return s.canned(category, FailureCanceled, sleepErr.Error(), attempt)
		}
	}
}

func (s *InsightService) canned(category valueobjects.Category, kind, message string, attempts int) Completion {
	return Completion{
		Text:     CannedInsight(category),
		Category: category,
		Fallback: true,
		Attempts: attempts,
		Failure: &FailureInfo{
			Kind:      kind,
			Message:   message,
			Timestamp: s.now().UTC(),
			Attempts:  attempts,
		},
	}
}

// failureKind classifies a completion error. Only the caller's own context
// ending counts as canceled; a client-side timeout is a network failure.
func failureKind(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return FailureCanceled
	case pkgerrors.IsNetwork(err):
		return FailureNetwork
	case pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal):
		return FailureHTTPStatus
	default:
		return FailureUnknown
	}
}

// Generate produces one insight per category from items. Categories are
// requested concurrently and each falls back on its own. Live insights are
// persisted best-effort; a store failure is logged and the insight is still
// returned.
func (s *InsightService) Generate(ctx context.Context, items []entities.ActivityItem, categories []valueobjects.Category) ([]GeneratedInsight, error) {
	if len(categories) == 0 {
		categories = []valueobjects.Category{valueobjects.CategoryProductivity}
	}
	for _, c := range categories {
		if !c.IsValid() {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid category %q", c))
		}
	}

	related := entities.ActivityIDs(items)
	results := make([]GeneratedInsight, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(valueobjects.AllCategories()))
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			result, err := s.generateOne(gctx, items, related, category)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *InsightService) generateOne(ctx context.Context, items []entities.ActivityItem, related []string, category valueobjects.Category) (GeneratedInsight, error) {
	completion := s.RequestInsight(ctx, items, category)

	provenance := valueobjects.ProvenanceLive
	if completion.Fallback {
		provenance = valueobjects.ProvenanceMock
	}

	insight, err := entities.NewInsight(completion.Text, category, related, provenance, s.now().UTC())
	if err != nil {
		return GeneratedInsight{}, err
	}
	s.metrics.RecordInsight(string(category), string(provenance))

	result := GeneratedInsight{Insight: insight, Completion: completion}
	if completion.Fallback {
		return result, nil
	}

	if err := s.repo.Save(ctx, insight); err != nil {
		s.logger.Error("Failed to persist insight",
			zap.String("insightID", insight.ID),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		insight.PullEvents()
		return result, nil
	}
	result.Persisted = true
	s.publish(ctx, insight)
	return result, nil
}

// List returns stored insights matching filter. When the store holds no
// matches, the canned samples are filtered the same way and returned with
// mock provenance so a fresh dashboard is never empty.
func (s *InsightService) List(ctx context.Context, filter ports.InsightFilter) ([]*entities.Insight, int, valueobjects.Provenance, error) {
	insights, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, "", pkgerrors.Wrap(err, "failed to list insights")
	}
	if total > 0 {
		for _, insight := range insights {
			insight.Provenance = valueobjects.ProvenanceDatabase
		}
		return insights, total, valueobjects.ProvenanceDatabase, nil
	}

	matches := make([]*entities.Insight, 0)
	for _, sample := range SampleInsights(s.now().UTC()) {
		if filter.Matches(sample) {
			matches = append(matches, sample)
		}
	}
	start, end := common.Window(len(matches), filter.Offset, filter.Limit)
	return matches[start:end], len(matches), valueobjects.ProvenanceMock, nil
}

// UpdateStatus moves an insight to status. Moving a sample insight succeeds
// but is not stored.
func (s *InsightService) UpdateStatus(ctx context.Context, id string, status valueobjects.Status) (*entities.Insight, error) {
	insight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(err, "failed to load insight")
		}
		sample := findSample(id, s.now().UTC())
		if sample == nil {
			return nil, err
		}
		if _, err := sample.TransitionTo(status, s.now().UTC()); err != nil {
			return nil, err
		}
		sample.PullEvents()
		return sample, nil
	}

	changed, err := insight.TransitionTo(status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	insight.Provenance = valueobjects.ProvenanceDatabase
	if !changed {
		return insight, nil
	}

	if err := s.repo.UpdateStatus(ctx, insight.ID, insight.Status, insight.UpdatedAt); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to update insight status")
	}
	s.publish(ctx, insight)
	return insight, nil
}

func (s *InsightService) publish(ctx context.Context, insight *entities.Insight) {
	pending := insight.PullEvents()
	if s.publisher == nil || len(pending) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, pending...); err != nil {
		s.logger.Warn("Failed to publish insight events",
			zap.String("insightID", insight.ID),
			zap.Error(err),
		)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
