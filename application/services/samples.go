package services

import (
	"sort"
	"time"

	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
)

var cannedInsights = map[valueobjects.Category]string{
	valueobjects.CategoryProductivity:   "You switched between several apps in the last few minutes. Try blocking 25 minutes for a single task.",
	valueobjects.CategoryAutomation:     "You repeated similar steps several times. Consider a script or shortcut to automate them.",
	valueobjects.CategoryRecommendation: "Take a short break and review your notes before starting the next task.",
	valueobjects.CategoryReminder:       "Remember to follow up on the items discussed in your last meeting.",
}

// CannedInsight is the fixed text returned when no completion is available
func CannedInsight(category valueobjects.Category) string {
	if text, ok := cannedInsights[category]; ok {
		return text
	}
	return cannedInsights[valueobjects.CategoryProductivity]
}

type sample struct {
	id       string
	text     string
	category valueobjects.Category
	priority valueobjects.Priority
	status   valueobjects.Status
	age      time.Duration
}

var samples = []sample{
	{"sample-productivity-1", "Your longest focus block today was 50 minutes in the editor. Schedule the hardest task there tomorrow.", valueobjects.CategoryProductivity, valueobjects.PriorityHigh, valueobjects.StatusNew, 5 * time.Minute},
	{"sample-productivity-2", "Chat notifications interrupted you 12 times this hour. Try muting them during focus sessions.", valueobjects.CategoryProductivity, valueobjects.PriorityNormal, valueobjects.StatusNew, 20 * time.Minute},
	{"sample-productivity-3", "You closed three browser tabs you had open since morning. Good cleanup.", valueobjects.CategoryProductivity, valueobjects.PriorityNormal, valueobjects.StatusViewed, 2 * time.Hour},
	{"sample-automation-1", "You copied data from the spreadsheet into the CRM by hand four times. An import template would save time.", valueobjects.CategoryAutomation, valueobjects.PriorityHigh, valueobjects.StatusNew, 10 * time.Minute},
	{"sample-automation-2", "The same terminal commands run before every deploy. Wrap them in a make target.", valueobjects.CategoryAutomation, valueobjects.PriorityNormal, valueobjects.StatusImplemented, 26 * time.Hour},
	{"sample-recommendation-1", "You searched documentation for the same API twice. Bookmark the reference page.", valueobjects.CategoryRecommendation, valueobjects.PriorityNormal, valueobjects.StatusNew, 15 * time.Minute},
	{"sample-recommendation-2", "Long video calls back to back. Leave ten minutes between meetings.", valueobjects.CategoryRecommendation, valueobjects.PriorityNormal, valueobjects.StatusDismissed, 30 * time.Hour},
	{"sample-reminder-1", "You mentioned sending the report by Friday during the standup.", valueobjects.CategoryReminder, valueobjects.PriorityUrgent, valueobjects.StatusNew, 30 * time.Minute},
}

// SampleInsights returns the canned insights shown while the store is empty,
// newest first.
func SampleInsights(now time.Time) []*entities.Insight {
	out := make([]*entities.Insight, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.build(now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func findSample(id string, now time.Time) *entities.Insight {
	for _, s := range samples {
		if s.id == id {
			return s.build(now)
		}
	}
	return nil
}

func (s sample) build(now time.Time) *entities.Insight {
	created := now.Add(-s.age)
	return &entities.Insight{
		ID:                 s.id,
		Text:               s.text,
		Category:           s.category,
		Priority:           s.priority,
		Status:             s.status,
		RelatedActivityIDs: []string{},
		CreatedAt:          created,
		UpdatedAt:          created,
		Provenance:         valueobjects.ProvenanceMock,
	}
}
