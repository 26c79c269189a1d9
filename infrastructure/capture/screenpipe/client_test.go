package screenpipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchBody = `{
  "data": [
    {"type": "OCR", "content": {"frame_id": 42, "text": "Quarterly report draft", "timestamp": "2024-05-14T09:58:00Z", "app_name": "Docs", "window_name": "Q2 report", "browser_url": "https://docs.example.com/q2"}},
    {"type": "Audio", "content": {"chunk_id": 7, "transcription": "ship it on thursday", "timestamp": "2024-05-14T09:59:00.5Z", "device_name": "MacBook Mic", "speaker": {"id": 3, "name": ""}}},
    {"type": "UI", "content": {"id": 9, "text": "Save changes", "timestamp": "2024-05-14T09:59:30Z", "app_name": "Editor"}},
    {"type": "Video", "content": {}}
  ],
  "pagination": {"limit": 20, "offset": 0, "total": 3}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, NotifyBaseURL: srv.URL}, srv.Client(), zap.NewNop())
}

func TestClient_Search(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	})

	start := time.Date(2024, 5, 14, 9, 55, 0, 0, time.UTC)
	page, err := client.Search(context.Background(), ports.SearchQuery{
		ContentType: valueobjects.ContentAll,
		StartTime:   start,
		EndTime:     start.Add(5 * time.Minute),
		AppName:     "Docs",
		SpeakerIDs:  []int{1, 3},
		Limit:       20,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"all"}, gotQuery["content_type"])
	assert.Equal(t, []string{"2024-05-14T09:55:00Z"}, gotQuery["start_time"])
	assert.Equal(t, []string{"2024-05-14T10:00:00Z"}, gotQuery["end_time"])
	assert.Equal(t, []string{"Docs"}, gotQuery["app_name"])
	assert.Equal(t, []string{"1,3"}, gotQuery["speaker_ids"])
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
	assert.Equal(t, []string{"0"}, gotQuery["offset"])
	assert.NotContains(t, gotQuery, "window_name")
	assert.NotContains(t, gotQuery, "include_frames")

	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 3)

	ocr := page.Items[0]
	assert.Equal(t, "ocr-42", ocr.ID)
	assert.Equal(t, valueobjects.KindOCR, ocr.Kind)
	assert.Equal(t, "Quarterly report draft", ocr.Text)
	assert.Equal(t, "https://docs.example.com/q2", ocr.BrowserURL)

	audio := page.Items[1]
	assert.Equal(t, "audio-7", audio.ID)
	assert.Equal(t, "ship it on thursday", audio.PrimaryText())
	assert.Equal(t, "speaker-3", audio.Speaker)
	assert.Equal(t, time.Date(2024, 5, 14, 9, 59, 0, 500_000_000, time.UTC), audio.Timestamp)

	assert.Equal(t, "ui-9", page.Items[2].ID)
}

func TestClient_SearchErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := client.Search(context.Background(), ports.SearchQuery{Limit: 1})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))

	malformed := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	_, err = malformed.Search(context.Background(), ports.SearchQuery{Limit: 1})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))

	unreachable := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil, zap.NewNop())
	_, err = unreachable.Search(context.Background(), ports.SearchQuery{Limit: 1})
	assert.True(t, pkgerrors.IsNetwork(err))
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.Search(context.Background(), ports.SearchQuery{Limit: 1})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.Search(context.Background(), ports.SearchQuery{Limit: 1})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Notify(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.Notify(context.Background(), "Break", "Stretch"))
	assert.Equal(t, map[string]string{"title": "Break", "body": "Stretch"}, got)
}

func TestClient_NotifyRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, client.Notify(context.Background(), "t", "b"))
}
