package services

import (
	"context"
	"sync"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/domain/events"

	"github.com/stretchr/testify/mock"
)

type MockActivitySource struct {
	mock.Mock
}

func (m *MockActivitySource) Search(ctx context.Context, query ports.SearchQuery) (*ports.SearchPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SearchPage), args.Error(1)
}

// blockingSource never answers until its context is cancelled
type blockingSource struct {
	done chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{done: make(chan struct{})}
}

func (b *blockingSource) Search(ctx context.Context, query ports.SearchQuery) (*ports.SearchPage, error) {
	<-ctx.Done()
	close(b.done)
	return nil, ctx.Err()
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, title, body string) error {
	args := m.Called(ctx, title, body)
	return args.Error(0)
}

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CompletionResponse), args.Error(1)
}

type MockInsightRepository struct {
	mock.Mock
}

func (m *MockInsightRepository) Save(ctx context.Context, insight *entities.Insight) error {
	args := m.Called(ctx, insight)
	return args.Error(0)
}

func (m *MockInsightRepository) GetByID(ctx context.Context, id string) (*entities.Insight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Insight), args.Error(1)
}

func (m *MockInsightRepository) List(ctx context.Context, filter ports.InsightFilter) ([]*entities.Insight, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Insight), args.Int(1), args.Error(2)
}

func (m *MockInsightRepository) UpdateStatus(ctx context.Context, id string, status valueobjects.Status, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) SaveBatch(ctx context.Context, items []entities.ActivityItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockActivityRepository) ListRecent(ctx context.Context, filter ports.ActivityFilter) ([]entities.ActivityItem, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]entities.ActivityItem), args.Int(1), args.Error(2)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// sleepRecorder replaces the backoff sleep and records requested delays
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func (r *sleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

var fixedNow = time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
