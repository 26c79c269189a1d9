package entities

import (
	"fmt"
	"strings"
	"time"

	"insights-backend/domain/core/valueobjects"
	"insights-backend/domain/events"
	pkgerrors "insights-backend/pkg/errors"
)

// Insight is a piece of advice derived from recent activity. Only its status
// changes after creation.
type Insight struct {
	ID                 string                  `json:"id"`
	Text               string                  `json:"text"`
	Category           valueobjects.Category   `json:"category"`
	Priority           valueobjects.Priority   `json:"priority"`
	Status             valueobjects.Status     `json:"status"`
	RelatedActivityIDs []string                `json:"relatedActivityIds"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
	Provenance         valueobjects.Provenance `json:"provenance"`

	events []events.DomainEvent
}

// NewInsight creates a fresh insight with status new and priority 0
func NewInsight(text string, category valueobjects.Category, related []string, provenance valueobjects.Provenance, now time.Time) (*Insight, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.NewValidationError("insight text cannot be empty")
	}
	if !category.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid category %q", category))
	}
	if related == nil {
		related = []string{}
	}

	insight := &Insight{
		ID:                 valueobjects.NewRecordID().String(),
		Text:               text,
		Category:           category,
		Priority:           valueobjects.PriorityNormal,
		Status:             valueobjects.StatusNew,
		RelatedActivityIDs: related,
		CreatedAt:          now,
		UpdatedAt:          now,
		Provenance:         provenance,
	}

	if provenance == valueobjects.ProvenanceLive {
		insight.addEvent(events.NewInsightGenerated(insight.ID, category, related, now))
	}

	return insight, nil
}

// TransitionTo moves the insight to next. It reports whether the status
// actually changed; re-applying the current status is a no-op.
func (i *Insight) TransitionTo(next valueobjects.Status, now time.Time) (bool, error) {
	if !next.IsValid() {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("invalid status %q", next))
	}
	if !i.Status.CanTransitionTo(next) {
		return false, pkgerrors.NewConflictError(
			fmt.Sprintf("cannot move insight from %s to %s", i.Status, next),
		).WithDetails(map[string]interface{}{
			"current":   i.Status,
			"requested": next,
		})
	}
	if i.Status == next {
		return false, nil
	}

	old := i.Status
	i.Status = next
	i.UpdatedAt = now
	i.addEvent(events.NewInsightStatusChanged(i.ID, old, next, now))
	return true, nil
}

// PullEvents returns and clears the events recorded since the last call
func (i *Insight) PullEvents() []events.DomainEvent {
	pending := i.events
	i.events = nil
	return pending
}

func (i *Insight) addEvent(e events.DomainEvent) {
	i.events = append(i.events, e)
}
