package entities

import (
	"time"

	"insights-backend/domain/core/valueobjects"
)

// ActivityItem is one capture returned by the capture service. Items are
// immutable once read.
type ActivityItem struct {
	ID            string                    `json:"id"`
	Kind          valueobjects.ActivityKind `json:"kind"`
	Text          string                    `json:"text,omitempty"`
	Transcription string                    `json:"transcription,omitempty"`
	AppName       string                    `json:"appName,omitempty"`
	WindowName    string                    `json:"windowName,omitempty"`
	BrowserURL    string                    `json:"browserUrl,omitempty"`
	Timestamp     time.Time                 `json:"timestamp"`
	FrameImage    string                    `json:"frameImage,omitempty"`
	Speaker       string                    `json:"speaker,omitempty"`
	DeviceName    string                    `json:"deviceName,omitempty"`
	FilePath      string                    `json:"filePath,omitempty"`
	Tags          []string                  `json:"tags,omitempty"`
	Provenance    valueobjects.Provenance   `json:"provenance"`
}

// PrimaryText returns the field that carries the item's content: the
// transcription for audio, the text for OCR and UI captures.
func (a ActivityItem) PrimaryText() string {
	if a.Kind == valueobjects.KindAudio {
		if a.Transcription != "" {
			return a.Transcription
		}
	}
	return a.Text
}

// WithProvenance returns a copy of the item tagged with p
func (a ActivityItem) WithProvenance(p valueobjects.Provenance) ActivityItem {
	a.Provenance = p
	return a
}

// ActivityIDs collects the ids of items
func ActivityIDs(items []ActivityItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
