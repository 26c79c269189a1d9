package handlers

import (
	"net/http"

	"insights-backend/application/commands"
	"insights-backend/application/commands/bus"
	commandhandlers "insights-backend/application/commands/handlers"
	"insights-backend/application/queries"
	querybus "insights-backend/application/queries/bus"
	"insights-backend/domain/core/entities"
	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// InsightHandler handles insight-related HTTP requests
type InsightHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *InsightHandler {
	return &InsightHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// ListInsights handles GET /api/insights?status=&type=&limit=&offset=
func (h *InsightHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	query := queries.ListInsightsQuery{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("type"),
	}
	var err error
	if query.Offset, err = queryInt(r, "offset", 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if query.Limit, err = queryInt(r, "limit", common.DefaultLimit); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	raw, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := raw.(*queries.ListInsightsResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected insight list result"))
		return
	}

	common.RespondJSON(w, http.StatusOK, result,
		common.WithSource(string(result.Source)),
		common.WithPagination(common.BuildPaginationMeta(result.Offset, result.Limit, result.Total)),
		common.WithRequestID(middleware.GetReqID(r.Context())),
	)
}

// GenerateInsightsRequest is the optional body of POST /api/insights
type GenerateInsightsRequest struct {
	Categories    []string `json:"categories"`
	Category      string   `json:"type"`
	WindowMinutes int      `json:"windowMinutes"`
}

// GenerateInsights handles POST /api/insights
func (h *InsightHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req GenerateInsightsRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	categories := req.Categories
	if req.Category != "" {
		categories = append([]string{req.Category}, categories...)
	}

	raw, err := h.commandBus.Send(r.Context(), commands.GenerateInsightsCommand{
		Categories:    categories,
		WindowMinutes: req.WindowMinutes,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := raw.(*commandhandlers.GenerateInsightsResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected generation result"))
		return
	}

	common.RespondJSON(w, http.StatusOK, result,
		common.WithSource(string(result.Source())),
		common.WithRequestID(middleware.GetReqID(r.Context())),
	)
}

// UpdateInsightStatusRequest is the body of the status update routes. ID is
// only read when the route has no {id} segment.
type UpdateInsightStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UpdateInsightStatus handles PATCH /api/insights/{id} and PATCH /api/insights
func (h *InsightHandler) UpdateInsightStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateInsightStatusRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ID = id
	}

	raw, err := h.commandBus.Send(r.Context(), commands.UpdateInsightStatusCommand{
		InsightID: req.ID,
		Status:    req.Status,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	insight, ok := raw.(*entities.Insight)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected update result"))
		return
	}

	h.logger.Info("Insight status updated",
		zap.String("insightID", insight.ID),
		zap.String("status", string(insight.Status)),
	)

	common.RespondJSON(w, http.StatusOK, insight,
		common.WithSource(string(insight.Provenance)),
		common.WithRequestID(middleware.GetReqID(r.Context())),
	)
}
