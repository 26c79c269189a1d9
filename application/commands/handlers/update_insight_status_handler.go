package handlers

import (
	"context"

	"insights-backend/application/commands"
	"insights-backend/application/services"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
)

// UpdateInsightStatusHandler handles the UpdateInsightStatusCommand
type UpdateInsightStatusHandler struct {
	insights *services.InsightService
}

// NewUpdateInsightStatusHandler creates a new handler instance
func NewUpdateInsightStatusHandler(insights *services.InsightService) *UpdateInsightStatusHandler {
	return &UpdateInsightStatusHandler{insights: insights}
}

// Handle applies the status transition
func (h *UpdateInsightStatusHandler) Handle(ctx context.Context, cmd commands.UpdateInsightStatusCommand) (*entities.Insight, error) {
	status, err := valueobjects.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	return h.insights.UpdateStatus(ctx, cmd.InsightID, status)
}
