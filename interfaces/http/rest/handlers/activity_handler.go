package handlers

import (
	"net/http"

	"insights-backend/application/commands"
	"insights-backend/application/commands/bus"
	"insights-backend/application/queries"
	querybus "insights-backend/application/queries/bus"
	"insights-backend/application/services"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ActivityHandler handles activity-related HTTP requests
type ActivityHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// GetActivity handles GET /api/activity
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	raw, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := raw.(*queries.SearchActivityResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected activity result"))
		return
	}

	common.RespondJSON(w, http.StatusOK, result,
		common.WithSource(string(result.Source)),
		common.WithPagination(common.BuildPaginationMeta(result.Offset, result.Limit, result.Total)),
		common.WithRequestID(middleware.GetReqID(r.Context())),
	)
}

func parseSearchQuery(r *http.Request) (queries.SearchActivityQuery, error) {
	q := r.URL.Query()
	query := queries.SearchActivityQuery{
		StartTime:   q.Get("start_time"),
		EndTime:     q.Get("end_time"),
		ContentType: q.Get("content_type"),
		AppName:     q.Get("app_name"),
		WindowName:  q.Get("window_name"),
		BrowserURL:  q.Get("browser_url"),
	}

	var err error
	if query.WindowMinutes, err = queryInt(r, "minutes", 0); err != nil {
		return query, err
	}
	if query.MinLength, err = queryInt(r, "min_length", 0); err != nil {
		return query, err
	}
	if query.MaxLength, err = queryInt(r, "max_length", 0); err != nil {
		return query, err
	}
	if query.Offset, err = queryInt(r, "offset", 0); err != nil {
		return query, err
	}
	if query.Limit, err = queryInt(r, "limit", common.DefaultLimit); err != nil {
		return query, err
	}
	if query.SpeakerIDs, err = queryIntList(r, "speaker_ids"); err != nil {
		return query, err
	}
	if query.IncludeFrames, err = queryBool(r, "include_frames"); err != nil {
		return query, err
	}
	if query.Stored, err = queryBool(r, "stored"); err != nil {
		return query, err
	}
	return query, nil
}

// CaptureActivityRequest is the optional body of POST /api/activity
type CaptureActivityRequest struct {
	WindowMinutes int `json:"windowMinutes"`
}

// CaptureActivity handles POST /api/activity
func (h *ActivityHandler) CaptureActivity(w http.ResponseWriter, r *http.Request) {
	var req CaptureActivityRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	raw, err := h.commandBus.Send(r.Context(), commands.CaptureActivityCommand{WindowMinutes: req.WindowMinutes})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := raw.(*services.CaptureResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected capture result"))
		return
	}

	h.logger.Info("Activity captured",
		zap.String("source", string(result.Source)),
		zap.Int("items", len(result.Items)),
		zap.Int("duplicates", result.Duplicates),
		zap.Bool("persisted", result.Persisted),
	)

	common.RespondJSON(w, http.StatusOK, result,
		common.WithSource(string(result.Source)),
		common.WithRequestID(middleware.GetReqID(r.Context())),
	)
}
