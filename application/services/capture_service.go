package services

import (
	"context"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/config"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/pkg/observability"

	"go.uber.org/zap"
)

// Fallback reasons reported to metrics and logs
const (
	reasonOK       = "ok"
	reasonError    = "error"
	reasonTimeout  = "timeout"
	reasonEmpty    = "empty"
	reasonCanceled = "canceled"
)

// CaptureService reads recent activity from the capture service. Its reads
// never fail: an error, a timeout or an empty page is replaced by a fixed
// synthetic sample so the rest of the pipeline always has input.
type CaptureService struct {
	source   ports.ActivitySource
	notifier ports.Notifier
	cfg      *config.DomainConfig
	metrics  *observability.Collector
	logger   *zap.Logger
	now      func() time.Time
}

// NewCaptureService creates a new capture service
func NewCaptureService(
	source ports.ActivitySource,
	notifier ports.Notifier,
	cfg *config.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *CaptureService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &CaptureService{
		source:   source,
		notifier: notifier,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchRecentActivity returns the captures of the last windowMinutes minutes.
// A non-positive window uses the configured default.
func (s *CaptureService) FetchRecentActivity(ctx context.Context, windowMinutes int) ([]entities.ActivityItem, valueobjects.Provenance) {
	if windowMinutes <= 0 {
		windowMinutes = s.cfg.DefaultWindowMinutes
	}
	if windowMinutes > s.cfg.MaxWindowMinutes {
		windowMinutes = s.cfg.MaxWindowMinutes
	}

	end := s.now().UTC()
	page, provenance := s.Search(ctx, ports.SearchQuery{
		ContentType: valueobjects.ContentAll,
		StartTime:   end.Add(-time.Duration(windowMinutes) * time.Minute),
		EndTime:     end,
		Limit:       s.cfg.DefaultCaptureLimit,
	})
	return page.Items, provenance
}

type searchResult struct {
	page *ports.SearchPage
	err  error
}

// Search runs query against the capture service, racing it against the
// capture timeout. The first to settle wins and the losing query is
// cancelled.
func (s *CaptureService) Search(ctx context.Context, query ports.SearchQuery) (*ports.SearchPage, valueobjects.Provenance) {
	if query.Limit <= 0 {
		query.Limit = s.cfg.DefaultCaptureLimit
	}

	queryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan searchResult, 1)
	go func() {
		page, err := s.source.Search(queryCtx, query)
		results <- searchResult{page: page, err: err}
	}()

	timer := time.NewTimer(s.cfg.CaptureTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			s.logger.Warn("Capture query failed, using synthetic activity", zap.Error(res.err))
			return s.fallback(query, reasonError), valueobjects.ProvenanceMock
		}
		if res.page == nil || len(res.page.Items) == 0 {
			s.logger.Debug("Capture query returned no items, using synthetic activity")
			return s.fallback(query, reasonEmpty), valueobjects.ProvenanceMock
		}
		for i := range res.page.Items {
			res.page.Items[i] = res.page.Items[i].WithProvenance(valueobjects.ProvenanceLive)
		}
		s.metrics.RecordCapture(string(valueobjects.ProvenanceLive), reasonOK)
		return res.page, valueobjects.ProvenanceLive

	case <-timer.C:
		s.logger.Warn("Capture query timed out, using synthetic activity",
			zap.Duration("timeout", s.cfg.CaptureTimeout),
		)
		return s.fallback(query, reasonTimeout), valueobjects.ProvenanceMock

	case <-ctx.Done():
		return s.fallback(query, reasonCanceled), valueobjects.ProvenanceMock
	}
}

func (s *CaptureService) fallback(query ports.SearchQuery, reason string) *ports.SearchPage {
	s.metrics.RecordCapture(string(valueobjects.ProvenanceMock), reason)
	items := SyntheticActivity(s.now().UTC())
	return &ports.SearchPage{
		Items:  items,
		Total:  len(items),
		Offset: 0,
		Limit:  query.Limit,
	}
}

// Health issues a minimal one-item query under the health timeout
func (s *CaptureService) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
	defer cancel()

	end := s.now().UTC()
	_, err := s.source.Search(ctx, ports.SearchQuery{
		ContentType: valueobjects.ContentAll,
		StartTime:   end.Add(-time.Minute),
		EndTime:     end,
		Limit:       1,
	})
	if err != nil {
		s.logger.Debug("Capture service health check failed", zap.Error(err))
		return false
	}
	return true
}

// Notify forwards a notification and reports whether it was delivered
func (s *CaptureService) Notify(ctx context.Context, title, body string) bool {
	if s.notifier == nil {
		return false
	}
	if err := s.notifier.Notify(ctx, title, body); err != nil {
		s.logger.Warn("Notification failed", zap.String("title", title), zap.Error(err))
		return false
	}
	return true
}

// SyntheticActivity is the fixed two-item sample returned when the capture
// service cannot answer: one screen capture and one audio transcription.
func SyntheticActivity(now time.Time) []entities.ActivityItem {
	return []entities.ActivityItem{
		{
			ID:         "synthetic-ocr",
			Kind:       valueobjects.KindOCR,
			Text:       "Working on the quarterly planning document in the browser",
			AppName:    "Browser",
			WindowName: "Quarterly planning",
			Timestamp:  now,
			Provenance: valueobjects.ProvenanceMock,
		},
		{
			ID:            "synthetic-audio",
			Kind:          valueobjects.KindAudio,
			Transcription: "Let's schedule a follow-up meeting to review the action items",
			DeviceName:    "Default microphone",
			Timestamp:     now,
			Provenance:    valueobjects.ProvenanceMock,
		},
	}
}
