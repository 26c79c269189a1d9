package valueobjects

import (
	"fmt"
	"strings"
)

// ActivityKind identifies what produced a captured item
type ActivityKind string

const (
	KindOCR   ActivityKind = "OCR"
	KindAudio ActivityKind = "Audio"
	KindUI    ActivityKind = "UI"
)

// ContentType is the capture-service filter for item kinds
type ContentType string

const (
	ContentAll   ContentType = "all"
	ContentOCR   ContentType = "ocr"
	ContentAudio ContentType = "audio"
	ContentUI    ContentType = "ui"
)

// ParseActivityKind accepts the capture service's spelling in any case
func ParseActivityKind(s string) (ActivityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ocr":
		return KindOCR, nil
	case "audio":
		return KindAudio, nil
	case "ui":
		return KindUI, nil
	default:
		return "", fmt.Errorf("unknown activity kind %q", s)
	}
}

// ParseContentType parses a content type filter; empty means all
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ContentAll:
		return ContentAll, nil
	case ContentOCR:
		return ContentOCR, nil
	case ContentAudio:
		return ContentAudio, nil
	case ContentUI:
		return ContentUI, nil
	default:
		return "", fmt.Errorf("content type must be one of: all, ocr, audio, ui")
	}
}
