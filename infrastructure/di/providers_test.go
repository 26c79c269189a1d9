package di

import (
	"context"
	"testing"

	"insights-backend/application/commands"
	"insights-backend/application/queries"
	"insights-backend/infrastructure/config"
	"insights-backend/infrastructure/messaging/eventbridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeContainer_Defaults(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "error"

	container, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotNil(t, container.CommandBus)
	assert.NotNil(t, container.QueryBus)
	assert.NotNil(t, container.Metrics)
	assert.Equal(t, 10, container.RateLimiter.Limit())
	assert.NotNil(t, container.Readiness.Store)
	assert.NotNil(t, container.Readiness.Capture)
}

func TestInitializeContainer_InvalidLogLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "loud"

	_, err := InitializeContainer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestProvideEventPublisher_NoBusIsNoop(t *testing.T) {
	cfg := config.Defaults()
	cfg.EventBusName = ""

	publisher, err := ProvideEventPublisher(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &eventbridge.NoopPublisher{}, publisher)
}

func TestCommandHandler_RejectsWrongType(t *testing.T) {
	called := false
	handler := commandHandler(func(ctx context.Context, cmd commands.SendNotificationCommand) (string, error) {
		called = true
		return "sent", nil
	})

	_, err := handler.Handle(context.Background(), commands.CaptureActivityCommand{})
	require.Error(t, err)
	assert.False(t, called)

	result, err := handler.Handle(context.Background(), commands.SendNotificationCommand{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "sent", result)
}

func TestQueryHandler_PassesTypedQuery(t *testing.T) {
	handler := queryHandler(func(ctx context.Context, q queries.ListInsightsQuery) (int, error) {
		return q.Limit, nil
	})

	result, err := handler.Handle(context.Background(), queries.ListInsightsQuery{Limit: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, result)

	_, err = handler.Handle(context.Background(), queries.SearchActivityQuery{})
	assert.Error(t, err)
}
