package queries

import (
	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"
)

// ListInsightsQuery represents a query to list insights
type ListInsightsQuery struct {
	Status   string
	Category string
	Offset   int
	Limit    int
}

// Validate validates the ListInsightsQuery
func (q ListInsightsQuery) Validate() error {
	if q.Status != "" {
		if _, err := valueobjects.ParseStatus(q.Status); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	if q.Category != "" {
		if _, err := valueobjects.ParseCategory(q.Category); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	if q.Offset < 0 {
		return pkgerrors.NewValidationError("offset must be non-negative")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return pkgerrors.NewValidationError("limit must be between 1 and 100")
	}
	return nil
}

// Filter converts the query to a repository filter
func (q ListInsightsQuery) Filter() ports.InsightFilter {
	f := ports.InsightFilter{Offset: q.Offset, Limit: q.Limit}
	if q.Status != "" {
		f.Status, _ = valueobjects.ParseStatus(q.Status)
	}
	if q.Category != "" {
		f.Category, _ = valueobjects.ParseCategory(q.Category)
	}
	return f
}

// ListInsightsResult represents the result of listing insights
type ListInsightsResult struct {
	Insights []*entities.Insight     `json:"insights"`
	Total    int                     `json:"total"`
	Offset   int                     `json:"offset"`
	Limit    int                     `json:"limit"`
	Source   valueobjects.Provenance `json:"-"`
}
