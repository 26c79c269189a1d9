// Package screenpipe is a client for a Screenpipe-style local capture
// service: a /search endpoint over OCR, audio and UI captures plus a
// notification endpoint.
package screenpipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config configures the capture client
type Config struct {
	BaseURL       string
	NotifyBaseURL string
	Breaker       BreakerConfig
}

// BreakerConfig holds configuration for the circuit breaker in front of the
// capture service
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "capture",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      3,
	}
}

// Client talks to the capture service
type Client struct {
	baseURL       string
	notifyBaseURL string
	httpClient    *http.Client
	breaker       *gobreaker.CircuitBreaker
	logger        *zap.Logger
}

// NewClient creates a new capture client. Timeouts are enforced through the
// request context by the caller.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	bc := cfg.Breaker
	if bc.Name == "" {
		bc = DefaultBreakerConfig()
	}

	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		notifyBaseURL: strings.TrimRight(cfg.NotifyBaseURL, "/"),
		httpClient:    httpClient,
		logger:        logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// abandoned queries count: a hanging service should trip the breaker
			return err == nil
		},
	})
	return c
}

// searchParams is the query string of GET /search
type searchParams struct {
	ContentType   string    `url:"content_type,omitempty"`
	StartTime     time.Time `url:"start_time,omitempty"`
	EndTime       time.Time `url:"end_time,omitempty"`
	AppName       string    `url:"app_name,omitempty"`
	WindowName    string    `url:"window_name,omitempty"`
	BrowserURL    string    `url:"browser_url,omitempty"`
	SpeakerIDs    []int     `url:"speaker_ids,omitempty,comma"`
	MinLength     int       `url:"min_length,omitempty"`
	MaxLength     int       `url:"max_length,omitempty"`
	Offset        int       `url:"offset"`
	Limit         int       `url:"limit"`
	IncludeFrames bool      `url:"include_frames,omitempty"`
}

type searchResponse struct {
	Data       []searchItem `json:"data"`
	Pagination struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"pagination"`
}

type searchItem struct {
	Type    string        `json:"type"`
	Content searchContent `json:"content"`
}

type searchContent struct {
	FrameID       int64    `json:"frame_id"`
	ChunkID       int64    `json:"chunk_id"`
	ID            int64    `json:"id"`
	Text          string   `json:"text"`
	Transcription string   `json:"transcription"`
	Timestamp     string   `json:"timestamp"`
	FilePath      string   `json:"file_path"`
	AppName       string   `json:"app_name"`
	WindowName    string   `json:"window_name"`
	BrowserURL    string   `json:"browser_url"`
	Tags          []string `json:"tags"`
	Frame         string   `json:"frame"`
	DeviceName    string   `json:"device_name"`
	Speaker       *speaker `json:"speaker"`
}

type speaker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Search implements ports.ActivitySource
func (c *Client) Search(ctx context.Context, q ports.SearchQuery) (*ports.SearchPage, error) {
	params := searchParams{
		ContentType:   string(q.ContentType),
		StartTime:     q.StartTime.UTC(),
		EndTime:       q.EndTime.UTC(),
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
	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doSearch(ctx, c.baseURL+"/search?"+values.Encode())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pkgerrors.NewUnavailableError("capture").WithCause(err)
		}
		return nil, err
	}
	return result.(*ports.SearchPage), nil
}

func (c *Client) doSearch(ctx context.Context, url string) (*ports.SearchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewNetworkError("capture search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, pkgerrors.NewExternalError("capture", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.NewExternalError("capture", fmt.Errorf("malformed search response: %w", err))
	}

	items := make([]entities.ActivityItem, 0, len(decoded.Data))
	for _, raw := range decoded.Data {
		item, ok := toActivityItem(raw)
		if !ok {
			c.logger.Debug("Skipping capture item of unknown type", zap.String("type", raw.Type))
			continue
		}
		items = append(items, item)
	}

	return &ports.SearchPage{
		Items:  items,
		Total:  decoded.Pagination.Total,
		Offset: decoded.Pagination.Offset,
		Limit:  decoded.Pagination.Limit,
	}, nil
}

func toActivityItem(raw searchItem) (entities.ActivityItem, bool) {
	kind, err := valueobjects.ParseActivityKind(raw.Type)
	if err != nil {
		return entities.ActivityItem{}, false
	}
	content := raw.Content

	item := entities.ActivityItem{
		Kind:       kind,
		Text:       content.Text,
		AppName:    content.AppName,
		WindowName: content.WindowName,
		BrowserURL: content.BrowserURL,
		FrameImage: content.Frame,
		DeviceName: content.DeviceName,
		FilePath:   content.FilePath,
		Tags:       content.Tags,
	}
	if ts, err := time.Parse(time.RFC3339Nano, content.Timestamp); err == nil {
		item.Timestamp = ts.UTC()
	}

	var sourceID int64
	switch kind {
	case valueobjects.KindOCR:
		sourceID = content.FrameID
	case valueobjects.KindAudio:
		sourceID = content.ChunkID
		item.Transcription = content.Transcription
		item.Text = ""
		if content.Speaker != nil {
			item.Speaker = content.Speaker.Name
			if item.Speaker == "" {
				item.Speaker = fmt.Sprintf("speaker-%d", content.Speaker.ID)
			}
		}
	case valueobjects.KindUI:
		sourceID = content.ID
	}

	if sourceID != 0 {
		item.ID = fmt.Sprintf("%s-%d", strings.ToLower(string(kind)), sourceID)
	} else {
		item.ID = uuid.New().String()
	}
	return item, true
}

// Notify implements ports.Notifier
func (c *Client) Notify(ctx context.Context, title, body string) error {
	if c.notifyBaseURL == "" {
		return pkgerrors.NewUnavailableError("notify")
	}

	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.notifyBaseURL+"/notify", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewNetworkError("notify failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.NewExternalError("notify", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

// State reports the circuit breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
