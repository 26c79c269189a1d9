package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"insights-backend/application/ports"
	"insights-backend/domain/config"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/infrastructure/llm"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type insightFixture struct {
	completion *MockCompletionClient
	repo       *MockInsightRepository
	publisher  *MockEventPublisher
	sleeps     *sleepRecorder
	svc        *InsightService
}

func newInsightFixture() *insightFixture {
	f := &insightFixture{
		completion: new(MockCompletionClient),
		repo:       new(MockInsightRepository),
		publisher:  new(MockEventPublisher),
		sleeps:     &sleepRecorder{},
	}
	f.svc = NewInsightService(
		f.completion,
		f.repo,
		f.publisher,
		CompletionSettings{Model: "test-model", MaxTokens: 150, Temperature: 0.7},
		config.DefaultDomainConfig(),
		nil,
		zap.NewNop(),
	)
	f.svc.now = fixedClock
	f.svc.sleep = f.sleeps.Sleep
	return f
}

var testItems = []entities.ActivityItem{
	{ID: "a1", Kind: valueobjects.KindOCR, Text: "Editing the release checklist", AppName: "Docs"},
	{ID: "a2", Kind: valueobjects.KindAudio, Transcription: "we need to ship by thursday"},
}

func networkErr() error {
	return pkgerrors.NewNetworkError("completion request failed", errors.New("connection reset by peer"))
}

func TestRequestInsight_RetriesNetworkFailuresWithBackoff(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).Return(nil, networkErr())

	got := f.svc.RequestInsight(context.Background(), testItems, valueobjects.CategoryAutomation)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, f.sleeps.Delays())
	f.completion.AssertNumberOfCalls(t, "Complete", 4)

	assert.True(t, got.Fallback)
	assert.Equal(t, CannedInsight(valueobjects.CategoryAutomation), got.Text)
	require.NotNil(t, got.Failure)
	assert.Equal(t, FailureNetwork, got.Failure.Kind)
	assert.Equal(t, 4, got.Failure.Attempts)
	assert.Equal(t, fixedNow, got.Failure.Timestamp)
}

func TestRequestInsight_UnauthorizedFallsBackWithoutRetry(t *testing.T) {
	f := newInsightFixture()
	unauthorized := pkgerrors.NewExternalError("completion", errors.New("status 401")).
		WithDetails(map[string]interface{}{"status": http.StatusUnauthorized})
	f.completion.On("Complete", mock.Anything, mock.Anything).Return(nil, unauthorized)

	got := f.svc.RequestInsight(context.Background(), testItems, valueobjects.CategoryReminder)

	assert.Empty(t, f.sleeps.Delays())
	f.completion.AssertNumberOfCalls(t, "Complete", 1)
	assert.True(t, got.Fallback)
	assert.Equal(t, CannedInsight(valueobjects.CategoryReminder), got.Text)
	assert.Equal(t, FailureHTTPStatus, got.Failure.Kind)
	assert.Equal(t, 1, got.Failure.Attempts)
}

func TestRequestInsight_RecoversAfterOneNetworkFailure(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).Return(nil, networkErr()).Once()
	f.completion.On("Complete", mock.Anything, mock.Anything).
		Return(&ports.CompletionResponse{Text: "  Write the checklist once as a template.  "}, nil).Once()

	got := f.svc.RequestInsight(context.Background(), testItems, valueobjects.CategoryAutomation)

	assert.False(t, got.Fallback)
	assert.Nil(t, got.Failure)
	assert.Equal(t, "Write the checklist once as a template.", got.Text)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, []time.Duration{time.Second}, f.sleeps.Delays())
}

func TestRequestInsight_ClientTimeoutIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{
		BaseURL:           server.URL,
		Timeout:           50 * time.Millisecond,
		RequestsPerSecond: 1000,
	}, zap.NewNop())

	f := newInsightFixture()
	f.svc.completion = client

	got := f.svc.RequestInsight(context.Background(), testItems, valueobjects.CategoryAutomation)

	assert.True(t, got.Fallback)
	require.NotNil(t, got.Failure)
	assert.Equal(t, FailureNetwork, got.Failure.Kind)
	assert.Equal(t, 4, got.Failure.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, f.sleeps.Delays())
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestRequestInsight_CallerCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, pkgerrors.NewNetworkError("completion request failed", context.Canceled))

	got := f.svc.RequestInsight(ctx, testItems, valueobjects.CategoryReminder)

	assert.True(t, got.Fallback)
	assert.Equal(t, FailureCanceled, got.Failure.Kind)
	assert.Empty(t, f.sleeps.Delays())
	f.completion.AssertNumberOfCalls(t, "Complete", 1)
}

func TestRequestInsight_EmptyTextFallsBack(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).Return(&ports.CompletionResponse{Text: " "}, nil)

	got := f.svc.RequestInsight(context.Background(), nil, valueobjects.CategoryProductivity)

	assert.True(t, got.Fallback)
	assert.Equal(t, FailureEmptyResponse, got.Failure.Kind)
}

func TestRequestInsight_PromptShape(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.MatchedBy(func(req ports.CompletionRequest) bool {
		return req.Model == "test-model" &&
			req.MaxTokens == 150 &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == "system" &&
			req.Messages[1].Role == "user" &&
			strings.Contains(req.Messages[1].Content, "Category: productivity") &&
			strings.Contains(req.Messages[1].Content, "[OCR] Docs: Editing the release checklist") &&
			strings.Contains(req.Messages[1].Content, "[Audio]: we need to ship by thursday")
	})).Return(&ports.CompletionResponse{Text: "ok"}, nil)

	f.svc.RequestInsight(context.Background(), testItems, valueobjects.CategoryProductivity)
	f.completion.AssertExpectations(t)
}

func TestGenerate_PersistsLiveInsightsAndPublishes(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).
		Return(&ports.CompletionResponse{Text: "Group your status updates into one message."}, nil)
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(i *entities.Insight) bool {
		return i.Status == valueobjects.StatusNew && i.Priority == valueobjects.PriorityNormal
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	results, err := f.svc.Generate(context.Background(), testItems, []valueobjects.Category{
		valueobjects.CategoryProductivity,
		valueobjects.CategoryAutomation,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, valueobjects.CategoryProductivity, results[0].Insight.Category)
	assert.Equal(t, valueobjects.CategoryAutomation, results[1].Insight.Category)
	for _, r := range results {
		assert.True(t, r.Persisted)
		assert.Equal(t, valueobjects.ProvenanceLive, r.Insight.Provenance)
		assert.Equal(t, []string{"a1", "a2"}, r.Insight.RelatedActivityIDs)
	}
	f.repo.AssertNumberOfCalls(t, "Save", 2)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestGenerate_StoreFailureIsSwallowed(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).
		Return(&ports.CompletionResponse{Text: "Close unused tabs."}, nil)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(pkgerrors.NewDatabaseError("put", errors.New("throttled")))

	results, err := f.svc.Generate(context.Background(), testItems, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Persisted)
	assert.Equal(t, "Close unused tabs.", results[0].Insight.Text)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestGenerate_FallbackIsNotPersisted(t *testing.T) {
	f := newInsightFixture()
	f.completion.On("Complete", mock.Anything, mock.Anything).
		Return(nil, pkgerrors.NewExternalError("completion", errors.New("status 500")))

	results, err := f.svc.Generate(context.Background(), testItems, []valueobjects.Category{valueobjects.CategoryReminder})
	require.NoError(t, err)

	assert.Equal(t, valueobjects.ProvenanceMock, results[0].Insight.Provenance)
	assert.True(t, results[0].Completion.Fallback)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerate_RejectsUnknownCategory(t *testing.T) {
	f := newInsightFixture()
	_, err := f.svc.Generate(context.Background(), testItems, []valueobjects.Category{"gossip"})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestList_EmptyStoreReturnsFilteredSamples(t *testing.T) {
	f := newInsightFixture()
	filter := ports.InsightFilter{
		Status:   valueobjects.StatusNew,
		Category: valueobjects.CategoryProductivity,
		Limit:    5,
	}
	f.repo.On("List", mock.Anything, filter).Return(nil, 0, nil)

	insights, total, provenance, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, valueobjects.ProvenanceMock, provenance)
	assert.NotEmpty(t, insights)
	assert.LessOrEqual(t, len(insights), 5)
	assert.Equal(t, len(insights), total)
	for _, insight := range insights {
		assert.Equal(t, valueobjects.CategoryProductivity, insight.Category)
		assert.Equal(t, valueobjects.StatusNew, insight.Status)
		assert.Equal(t, valueobjects.ProvenanceMock, insight.Provenance)
	}
}

func TestList_SamplesRespectOffsetAndLimit(t *testing.T) {
	f := newInsightFixture()
	filter := ports.InsightFilter{Offset: 2, Limit: 3}
	f.repo.On("List", mock.Anything, filter).Return(nil, 0, nil)

	insights, total, _, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)

	all := SampleInsights(fixedNow)
	assert.Equal(t, len(all), total)
	require.Len(t, insights, 3)
	assert.Equal(t, all[2].ID, insights[0].ID)
}

func TestList_StoredInsights(t *testing.T) {
	f := newInsightFixture()
	stored, err := entities.NewInsight("Stored", valueobjects.CategoryReminder, nil, valueobjects.ProvenanceLive, fixedNow)
	require.NoError(t, err)
	f.repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Insight{stored}, 1, nil)

	insights, total, provenance, err := f.svc.List(context.Background(), ports.InsightFilter{Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, valueobjects.ProvenanceDatabase, provenance)
	assert.Equal(t, 1, total)
	assert.Equal(t, valueobjects.ProvenanceDatabase, insights[0].Provenance)
}

func TestList_StoreErrorPropagates(t *testing.T) {
	f := newInsightFixture()
	f.repo.On("List", mock.Anything, mock.Anything).Return(nil, 0, pkgerrors.NewDatabaseError("query", errors.New("boom")))

	_, _, _, err := f.svc.List(context.Background(), ports.InsightFilter{})
	assert.Error(t, err)
}

func TestUpdateStatus(t *testing.T) {
	f := newInsightFixture()
	stored, err := entities.NewInsight("Stored", valueobjects.CategoryReminder, nil, valueobjects.ProvenanceDatabase, fixedNow.Add(-time.Hour))
	require.NoError(t, err)

	f.repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
	f.repo.On("UpdateStatus", mock.Anything, stored.ID, valueobjects.StatusViewed, fixedNow).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	updated, err := f.svc.UpdateStatus(context.Background(), stored.ID, valueobjects.StatusViewed)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.StatusViewed, updated.Status)
	f.repo.AssertExpectations(t)
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newInsightFixture()
	stored, err := entities.NewInsight("Stored", valueobjects.CategoryReminder, nil, valueobjects.ProvenanceDatabase, fixedNow)
	require.NoError(t, err)
	f.repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

	_, err = f.svc.UpdateStatus(context.Background(), stored.ID, valueobjects.StatusNew)
	require.NoError(t, err)
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	f := newInsightFixture()
	stored, err := entities.NewInsight("Stored", valueobjects.CategoryReminder, nil, valueobjects.ProvenanceDatabase, fixedNow)
	require.NoError(t, err)
	stored.Status = valueobjects.StatusDismissed
	f.repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

	_, err = f.svc.UpdateStatus(context.Background(), stored.ID, valueobjects.StatusViewed)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpdateStatus_Unknown(t *testing.T) {
	f := newInsightFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, pkgerrors.NewNotFoundError("insight"))

	_, err := f.svc.UpdateStatus(context.Background(), "missing", valueobjects.StatusViewed)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUpdateStatus_SampleInsight(t *testing.T) {
	f := newInsightFixture()
	f.repo.On("GetByID", mock.Anything, "sample-reminder-1").Return(nil, pkgerrors.NewNotFoundError("insight"))

	updated, err := f.svc.UpdateStatus(context.Background(), "sample-reminder-1", valueobjects.StatusImplemented)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.StatusImplemented, updated.Status)
	assert.Equal(t, valueobjects.ProvenanceMock, updated.Provenance)
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
