package handlers

import (
	"context"

	"insights-backend/application/commands"
	"insights-backend/application/services"
)

// SendNotificationResult reports whether the capture service accepted the
// notification
type SendNotificationResult struct {
	Delivered bool `json:"delivered"`
}

// SendNotificationHandler handles the SendNotificationCommand
type SendNotificationHandler struct {
	capture *services.CaptureService
}

// NewSendNotificationHandler creates a new handler instance
func NewSendNotificationHandler(capture *services.CaptureService) *SendNotificationHandler {
	return &SendNotificationHandler{capture: capture}
}

// Handle forwards the notification; delivery is best-effort
func (h *SendNotificationHandler) Handle(ctx context.Context, cmd commands.SendNotificationCommand) (*SendNotificationResult, error) {
	return &SendNotificationResult{
		Delivered: h.capture.Notify(ctx, cmd.Title, cmd.Body),
	}, nil
}
