package queries

import (
	"testing"
	"time"

	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListInsightsQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   ListInsightsQuery
		wantErr bool
	}{
		{"defaults", ListInsightsQuery{Limit: 20}, false},
		{"filters", ListInsightsQuery{Status: "new", Category: "productivity", Limit: 5}, false},
		{"bad status", ListInsightsQuery{Status: "archived", Limit: 5}, true},
		{"bad category", ListInsightsQuery{Category: "misc", Limit: 5}, true},
		{"zero limit", ListInsightsQuery{}, true},
		{"limit too large", ListInsightsQuery{Limit: 101}, true},
		{"negative offset", ListInsightsQuery{Offset: -1, Limit: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListInsightsQuery_Filter(t *testing.T) {
	f := ListInsightsQuery{Status: "NEW", Category: "Productivity", Offset: 2, Limit: 5}.Filter()
	assert.Equal(t, valueobjects.StatusNew, f.Status)
	assert.Equal(t, valueobjects.CategoryProductivity, f.Category)
	assert.Equal(t, 2, f.Offset)
	assert.Equal(t, 5, f.Limit)
}

func TestSearchActivityQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   SearchActivityQuery
		wantErr bool
	}{
		{"window", SearchActivityQuery{WindowMinutes: 30, Limit: 20}, false},
		{"window too wide", SearchActivityQuery{WindowMinutes: 24*60 + 1, Limit: 20}, true},
		{"negative window", SearchActivityQuery{WindowMinutes: -5, Limit: 20}, true},
		{"bad content type", SearchActivityQuery{ContentType: "video", Limit: 20}, true},
		{"explicit window", SearchActivityQuery{StartTime: "2024-05-14T09:00:00Z", EndTime: "2024-05-14T10:00:00Z", Limit: 20}, false},
		{"start after end", SearchActivityQuery{StartTime: "2024-05-14T11:00:00Z", EndTime: "2024-05-14T10:00:00Z", Limit: 20}, true},
		{"only start", SearchActivityQuery{StartTime: "2024-05-14T09:00:00Z", Limit: 20}, true},
		{"unparseable", SearchActivityQuery{StartTime: "yesterday", EndTime: "2024-05-14T10:00:00Z", Limit: 20}, true},
		{"length bounds", SearchActivityQuery{MinLength: 50, MaxLength: 10, Limit: 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchActivityQuery_SearchQuery(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	q := SearchActivityQuery{ContentType: "audio", AppName: "Zoom", Limit: 10}
	sq := q.SearchQuery(now, 5)
	assert.Equal(t, valueobjects.ContentAudio, sq.ContentType)
	assert.Equal(t, now.Add(-5*time.Minute), sq.StartTime)
	assert.Equal(t, now, sq.EndTime)
	assert.Equal(t, "Zoom", sq.AppName)

	q = SearchActivityQuery{WindowMinutes: 60, Limit: 10}
	assert.Equal(t, now.Add(-time.Hour), q.SearchQuery(now, 5).StartTime)

	q = SearchActivityQuery{StartTime: "2024-05-13T09:00:00Z", EndTime: "2024-05-13T09:30:00Z", Limit: 10}
	require.NoError(t, q.Validate())
	sq = q.SearchQuery(now, 5)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), sq.StartTime)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 30, 0, 0, time.UTC), sq.EndTime)
}
