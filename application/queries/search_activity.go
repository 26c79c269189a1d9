package queries

import (
	"fmt"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"
	"insights-backend/pkg/utils"
)

// SearchActivityQuery is a time-windowed activity query. Either
// WindowMinutes or an explicit StartTime/EndTime pair bounds the window.
type SearchActivityQuery struct {
	WindowMinutes int
	StartTime     string
	EndTime       string
	ContentType   string
	AppName       string
	WindowName    string
	BrowserURL    string
	SpeakerIDs    []int
	MinLength     int
	MaxLength     int
	Offset        int
	Limit         int
	IncludeFrames bool

	// Stored reads previously captured activity from the store instead of
	// querying the capture service.
	Stored bool
}

// MaxWindow bounds explicit time windows
const MaxWindow = 24 * time.Hour

// Validate validates the SearchActivityQuery
func (q SearchActivityQuery) Validate() error {
	if q.WindowMinutes < 0 || time.Duration(q.WindowMinutes)*time.Minute > MaxWindow {
		return pkgerrors.NewValidationError(fmt.Sprintf("minutes must be between 0 and %d", int(MaxWindow.Minutes())))
	}
	if _, err := valueobjects.ParseContentType(q.ContentType); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if q.Offset < 0 {
		return pkgerrors.NewValidationError("offset must be non-negative")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return pkgerrors.NewValidationError("limit must be between 1 and 100")
	}
	if q.MinLength < 0 || q.MaxLength < 0 {
		return pkgerrors.NewValidationError("text length bounds must be non-negative")
	}
	if q.MaxLength > 0 && q.MinLength > q.MaxLength {
		return pkgerrors.NewValidationError("min_length must not exceed max_length")
	}

	if q.StartTime == "" && q.EndTime == "" {
		return nil
	}
	start, end, err := q.explicitWindow()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return pkgerrors.NewValidationError("start_time must be before end_time")
	}
	if end.Sub(start) > MaxWindow {
		return pkgerrors.NewValidationError("time window must not exceed 24 hours")
	}
	return nil
}

func (q SearchActivityQuery) explicitWindow() (time.Time, time.Time, error) {
	if q.StartTime == "" || q.EndTime == "" {
		return time.Time{}, time.Time{}, pkgerrors.NewValidationError("start_time and end_time must be given together")
	}
	start, err := utils.ParseRFC3339(q.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.NewValidationError("start_time must be RFC3339")
	}
	end, err := utils.ParseRFC3339(q.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.NewValidationError("end_time must be RFC3339")
	}
	return start, end, nil
}

// SearchQuery resolves the window against now. A zero WindowMinutes without
// explicit bounds uses defaultMinutes.
func (q SearchActivityQuery) SearchQuery(now time.Time, defaultMinutes int) ports.SearchQuery {
	contentType, _ := valueobjects.ParseContentType(q.ContentType)

	end := now.UTC()
	start := end.Add(-time.Duration(defaultMinutes) * time.Minute)
	if q.WindowMinutes > 0 {
		start = end.Add(-time.Duration(q.WindowMinutes) * time.Minute)
	}
	if s, e, err := q.explicitWindow(); err == nil {
		start, end = s.UTC(), e.UTC()
	}

	return ports.SearchQuery{
		ContentType:   contentType,
		StartTime:     start,
		EndTime:       end,
		AppName:       q.AppName,
		WindowName:    q.WindowName,
		BrowserURL:    q.BrowserURL,
		SpeakerIDs:    q.SpeakerIDs,
		MinLength:     q.MinLength,
		MaxLength:     q.MaxLength,
		Offset:        q.Offset,
		Limit:         q.Limit,
		IncludeFrames: q.IncludeFrames,
	}
}

// SearchActivityResult is one page of activity
type SearchActivityResult struct {
	Items  []entities.ActivityItem `json:"items"`
	Total  int                     `json:"total"`
	Offset int                     `json:"offset"`
	Limit  int                     `json:"limit"`
	Source valueobjects.Provenance `json:"-"`
}

// Uncacheable keeps synthetic pages out of the query cache
func (r *SearchActivityResult) Uncacheable() bool {
	return r.Source == valueobjects.ProvenanceMock
}
