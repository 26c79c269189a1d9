package handlers

import (
	"context"

	"insights-backend/application/queries"
	"insights-backend/application/services"

	"go.uber.org/zap"
)

// ListInsightsHandler handles insight listing queries
type ListInsightsHandler struct {
	insights *services.InsightService
	logger   *zap.Logger
}

// NewListInsightsHandler creates a new list insights handler
func NewListInsightsHandler(insights *services.InsightService, logger *zap.Logger) *ListInsightsHandler {
	return &ListInsightsHandler{
		insights: insights,
		logger:   logger,
	}
}

// Handle executes the list insights query
func (h *ListInsightsHandler) Handle(ctx context.Context, query queries.ListInsightsQuery) (*queries.ListInsightsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	insights, total, source, err := h.insights.List(ctx, query.Filter())
	if err != nil {
		h.logger.Error("Failed to list insights", zap.Error(err))
		return nil, err
	}

	return &queries.ListInsightsResult{
		Insights: insights,
		Total:    total,
		Offset:   query.Offset,
		Limit:    query.Limit,
		Source:   source,
	}, nil
}
