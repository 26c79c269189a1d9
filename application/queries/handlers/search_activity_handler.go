package handlers

import (
	"context"
	"time"

	"insights-backend/application/ports"
	"insights-backend/application/queries"
	"insights-backend/application/services"
	"insights-backend/domain/config"
	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"

	"go.uber.org/zap"
)

// SearchActivityHandler handles activity queries, either live against the
// capture service or against stored activity
type SearchActivityHandler struct {
	activity *services.ActivityService
	cfg      *config.DomainConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewSearchActivityHandler creates a new search activity handler
func NewSearchActivityHandler(activity *services.ActivityService, cfg *config.DomainConfig, logger *zap.Logger) *SearchActivityHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SearchActivityHandler{
		activity: activity,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the search activity query
func (h *SearchActivityHandler) Handle(ctx context.Context, query queries.SearchActivityQuery) (*queries.SearchActivityResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	search := query.SearchQuery(h.now(), h.cfg.DefaultWindowMinutes)

	if query.Stored {
		kind, err := storedKind(search.ContentType)
		if err != nil {
			return nil, err
		}
		items, total, err := h.activity.Stored(ctx, ports.ActivityFilter{
			Since:  search.StartTime,
			Until:  search.EndTime,
			Kind:   kind,
			Offset: search.Offset,
			Limit:  search.Limit,
		})
		if err != nil {
			h.logger.Error("Failed to read stored activity", zap.Error(err))
			return nil, pkgerrors.Wrap(err, "failed to read stored activity")
		}
		return &queries.SearchActivityResult{
			Items:  items,
			Total:  total,
			Offset: search.Offset,
			Limit:  search.Limit,
			Source: valueobjects.ProvenanceDatabase,
		}, nil
	}

	page, source := h.activity.Search(ctx, search)
	return &queries.SearchActivityResult{
		Items:  page.Items,
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
		Source: source,
	}, nil
}

func storedKind(ct valueobjects.ContentType) (valueobjects.ActivityKind, error) {
	switch ct {
	case valueobjects.ContentAll:
		return "", nil
	case valueobjects.ContentOCR:
		return valueobjects.KindOCR, nil
	case valueobjects.ContentAudio:
		return valueobjects.KindAudio, nil
	case valueobjects.ContentUI:
		return valueobjects.KindUI, nil
	}
	return "", pkgerrors.NewValidationError("unknown content type")
}
