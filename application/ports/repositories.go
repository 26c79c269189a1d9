package ports

import (
	"context"
	"time"

	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
)

// ActivityRepository defines the interface for activity persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ActivityRepository interface {
	// SaveBatch persists captured items as-is; an existing id is overwritten
	SaveBatch(ctx context.Context, items []entities.ActivityItem) error

	// ListRecent retrieves a page of stored items newest first and the
	// number of items matching the filter
	ListRecent(ctx context.Context, filter ActivityFilter) ([]entities.ActivityItem, int, error)
}

// InsightRepository defines the interface for insight persistence
type InsightRepository interface {
	// Save persists an insight (create or update)
	Save(ctx context.Context, insight *entities.Insight) error

	// GetByID retrieves an insight by its ID
	GetByID(ctx context.Context, id string) (*entities.Insight, error)

	// List retrieves insights newest first. The returned total counts every
	// match before offset and limit are applied.
	List(ctx context.Context, filter InsightFilter) ([]*entities.Insight, int, error)

	// UpdateStatus writes a new status and updatedAt for an existing insight
	UpdateStatus(ctx context.Context, id string, status valueobjects.Status, updatedAt time.Time) error
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ActivityFilter narrows stored activity listings
type ActivityFilter struct {
	Since  time.Time
	Until  time.Time
	Kind   valueobjects.ActivityKind
	Offset int
	Limit  int
}

// InsightFilter narrows insight listings. Zero values mean "any".
type InsightFilter struct {
	Status   valueobjects.Status
	Category valueobjects.Category
	Offset   int
	Limit    int
}

// Matches reports whether insight passes the status and category filters
func (f InsightFilter) Matches(insight *entities.Insight) bool {
	if f.Status != "" && insight.Status != f.Status {
		return false
	}
	if f.Category != "" && insight.Category != f.Category {
		return false
	}
	return true
}
