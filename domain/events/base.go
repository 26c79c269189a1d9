package events

import (
	"time"

	"insights-backend/domain/core/valueobjects"
)

// Source is the EventBridge source name for events emitted by this service
const Source = "insights.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// InsightGenerated is raised when a live completion produced a new insight
type InsightGenerated struct {
	BaseEvent
	InsightID          string                `json:"insight_id"`
	Category           valueobjects.Category `json:"category"`
	RelatedActivityIDs []string              `json:"related_activity_ids,omitempty"`
}

// NewInsightGenerated creates an InsightGenerated event
func NewInsightGenerated(insightID string, category valueobjects.Category, related []string, timestamp time.Time) InsightGenerated {
	return InsightGenerated{
		BaseEvent: BaseEvent{
			AggregateID: insightID,
			EventType:   "insight.generated",
			Timestamp:   timestamp,
			Version:     1,
		},
		InsightID:          insightID,
		Category:           category,
		RelatedActivityIDs: related,
	}
}

// InsightStatusChanged is raised when a caller moves an insight to a new status
type InsightStatusChanged struct {
	BaseEvent
	InsightID string              `json:"insight_id"`
	OldStatus valueobjects.Status `json:"old_status"`
	NewStatus valueobjects.Status `json:"new_status"`
}

// NewInsightStatusChanged creates an InsightStatusChanged event
func NewInsightStatusChanged(insightID string, oldStatus, newStatus valueobjects.Status, timestamp time.Time) InsightStatusChanged {
	return InsightStatusChanged{
		BaseEvent: BaseEvent{
			AggregateID: insightID,
			EventType:   "insight.status_changed",
			Timestamp:   timestamp,
			Version:     1,
		},
		InsightID: insightID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}
