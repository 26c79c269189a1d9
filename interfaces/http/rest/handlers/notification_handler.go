package handlers

import (
	"net/http"

	"insights-backend/application/commands"
	"insights-backend/application/commands/bus"
	commandhandlers "insights-backend/application/commands/handlers"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"
)

// NotificationHandler forwards desktop notifications
type NotificationHandler struct {
	commandBus *bus.CommandBus
	errors     *pkgerrors.ErrorHandler
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(commandBus *bus.CommandBus, errorHandler *pkgerrors.ErrorHandler) *NotificationHandler {
	return &NotificationHandler{commandBus: commandBus, errors: errorHandler}
}

// SendNotification handles POST /api/notification. Delivery is best-effort:
// an undelivered notification is still a 200 with delivered=false.
func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SendNotificationCommand
	if err := decodeBody(r, &cmd, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	raw, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := raw.(*commandhandlers.SendNotificationResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected notification result"))
		return
	}

	message := "Notification delivered"
	if !result.Delivered {
		message = "Notification could not be delivered"
	}
	common.RespondJSON(w, http.StatusOK, result, common.WithMessage(message))
}
