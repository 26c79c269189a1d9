package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/config"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestCaptureService(source ports.ActivitySource, notifier ports.Notifier) *CaptureService {
	cfg := config.DefaultDomainConfig()
	cfg.CaptureTimeout = 50 * time.Millisecond
	cfg.HealthTimeout = 50 * time.Millisecond
	svc := NewCaptureService(source, notifier, cfg, nil, zap.NewNop())
	svc.now = fixedClock
	return svc
}

func assertSynthetic(t *testing.T, items []entities.ActivityItem) {
	t.Helper()
	require.Len(t, items, 2)
	assert.Equal(t, SyntheticActivity(fixedNow), items)
	assert.Equal(t, valueobjects.KindOCR, items[0].Kind)
	assert.Equal(t, valueobjects.KindAudio, items[1].Kind)
}

func TestCaptureService_FetchRecentActivity_Live(t *testing.T) {
	source := new(MockActivitySource)
	page := &ports.SearchPage{
		Items: []entities.ActivityItem{
			{ID: "a1", Kind: valueobjects.KindOCR, Text: "pull request review in the browser"},
		},
		Total: 1,
	}
	source.On("Search", mock.Anything, mock.MatchedBy(func(q ports.SearchQuery) bool {
		return q.ContentType == valueobjects.ContentAll &&
			q.EndTime.Equal(fixedNow) &&
			q.StartTime.Equal(fixedNow.Add(-10*time.Minute)) &&
			q.Limit == 50
	})).Return(page, nil)

	svc := newTestCaptureService(source, nil)
	items, provenance := svc.FetchRecentActivity(context.Background(), 10)

	assert.Equal(t, valueobjects.ProvenanceLive, provenance)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, valueobjects.ProvenanceLive, items[0].Provenance)
	source.AssertExpectations(t)
}

func TestCaptureService_FetchRecentActivity_ErrorFallsBack(t *testing.T) {
	source := new(MockActivitySource)
	source.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := newTestCaptureService(source, nil)
	items, provenance := svc.FetchRecentActivity(context.Background(), 5)

	assert.Equal(t, valueobjects.ProvenanceMock, provenance)
	assertSynthetic(t, items)
}

func TestCaptureService_FetchRecentActivity_EmptyFallsBack(t *testing.T) {
	source := new(MockActivitySource)
	source.On("Search", mock.Anything, mock.Anything).Return(&ports.SearchPage{}, nil)

	svc := newTestCaptureService(source, nil)
	items, provenance := svc.FetchRecentActivity(context.Background(), 5)

	assert.Equal(t, valueobjects.ProvenanceMock, provenance)
	assertSynthetic(t, items)
}

func TestCaptureService_FetchRecentActivity_TimeoutFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := newBlockingSource()
	svc := newTestCaptureService(source, nil)

	start := time.Now()
	items, provenance := svc.FetchRecentActivity(context.Background(), 5)

	assert.Equal(t, valueobjects.ProvenanceMock, provenance)
	assertSynthetic(t, items)
	assert.Less(t, time.Since(start), 5*time.Second)

	select {
	case <-source.done:
	case <-time.After(time.Second):
		t.Fatal("losing capture query was not cancelled")
	}
}

func TestCaptureService_DefaultWindow(t *testing.T) {
	source := new(MockActivitySource)
	source.On("Search", mock.Anything, mock.MatchedBy(func(q ports.SearchQuery) bool {
		return q.EndTime.Sub(q.StartTime) == 5*time.Minute
	})).Return(&ports.SearchPage{}, nil)

	svc := newTestCaptureService(source, nil)
	svc.FetchRecentActivity(context.Background(), 0)

	source.AssertExpectations(t)
}

func TestCaptureService_Health(t *testing.T) {
	up := new(MockActivitySource)
	up.On("Search", mock.Anything, mock.MatchedBy(func(q ports.SearchQuery) bool {
		return q.Limit == 1
	})).Return(&ports.SearchPage{}, nil)
	assert.True(t, newTestCaptureService(up, nil).Health(context.Background()))

	down := new(MockActivitySource)
	down.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))
	assert.False(t, newTestCaptureService(down, nil).Health(context.Background()))
}

func TestCaptureService_HealthTimesOut(t *testing.T) {
	svc := newTestCaptureService(newBlockingSource(), nil)
	assert.False(t, svc.Health(context.Background()))
}

func TestCaptureService_Notify(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, "Break", "Stand up and stretch").Return(nil).Once()
	notifier.On("Notify", mock.Anything, "Broken", "body").Return(errors.New("503")).Once()

	svc := newTestCaptureService(new(MockActivitySource), notifier)
	assert.True(t, svc.Notify(context.Background(), "Break", "Stand up and stretch"))
	assert.False(t, svc.Notify(context.Background(), "Broken", "body"))

	withoutNotifier := newTestCaptureService(new(MockActivitySource), nil)
	assert.False(t, withoutNotifier.Notify(context.Background(), "t", "b"))
	notifier.AssertExpectations(t)
}
