package handlers

import (
	"context"

	"insights-backend/application/commands"
	"insights-backend/application/services"
)

// CaptureActivityHandler handles the CaptureActivityCommand
type CaptureActivityHandler struct {
	activity *services.ActivityService
}

// NewCaptureActivityHandler creates a new handler instance
func NewCaptureActivityHandler(activity *services.ActivityService) *CaptureActivityHandler {
	return &CaptureActivityHandler{activity: activity}
}

// Handle captures recent activity and stores it best-effort
func (h *CaptureActivityHandler) Handle(ctx context.Context, cmd commands.CaptureActivityCommand) (*services.CaptureResult, error) {
	result := h.activity.CaptureAndStore(ctx, cmd.WindowMinutes)
	return &result, nil
}
