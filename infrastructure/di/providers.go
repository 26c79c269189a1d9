package di

import (
	"context"
	"fmt"
	"net/http"

	"insights-backend/application/commands"
	"insights-backend/application/commands/bus"
	commandhandlers "insights-backend/application/commands/handlers"
	"insights-backend/application/ports"
	"insights-backend/application/queries"
	querybus "insights-backend/application/queries/bus"
	queryhandlers "insights-backend/application/queries/handlers"
	"insights-backend/application/services"
	domainconfig "insights-backend/domain/config"
	domainservices "insights-backend/domain/services"
	"insights-backend/infrastructure/capture/screenpipe"
	"insights-backend/infrastructure/config"
	"insights-backend/infrastructure/llm"
	"insights-backend/infrastructure/messaging/eventbridge"
	"insights-backend/infrastructure/persistence/dynamodb"
	"insights-backend/pkg/auth"
	"insights-backend/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	metricsNamespace = "insights"
	queryCacheSize   = 512
	// identical activity searches within this many seconds share one result
	searchCacheTTL = 5
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() || cfg.IsLambda {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ProvideDomainConfig derives the pipeline rules from the application config
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	dc := cfg.DomainConfig()
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideCaptureClient creates the capture service client
func ProvideCaptureClient(cfg *config.Config, logger *zap.Logger) *screenpipe.Client {
	return screenpipe.NewClient(screenpipe.Config{
		BaseURL:       cfg.CaptureBaseURL,
		NotifyBaseURL: cfg.NotifyBaseURL,
		Breaker:       screenpipe.DefaultBreakerConfig(),
	}, &http.Client{}, logger)
}

// ProvideActivitySource exposes the capture client as an activity source
func ProvideActivitySource(client *screenpipe.Client) ports.ActivitySource {
	return client
}

// ProvideNotifier exposes the capture client as a notifier
func ProvideNotifier(client *screenpipe.Client) ports.Notifier {
	return client
}

// ProvideCompletionClient creates the completion endpoint client
func ProvideCompletionClient(cfg *config.Config, logger *zap.Logger) ports.CompletionClient {
	return llm.NewClient(llm.Config{
		BaseURL:           cfg.CompletionBaseURL,
		APIKey:            cfg.CompletionAPIKey,
		Timeout:           cfg.CompletionTimeout,
		RequestsPerSecond: cfg.CompletionRPS,
	}, logger)
}

// ProvideStore creates the lazily connected DynamoDB store
func ProvideStore(cfg *config.Config, logger *zap.Logger) *dynamodb.Store {
	return dynamodb.NewStore(dynamodb.StoreConfig{
		Region:          cfg.AWSRegion,
		TableName:       cfg.DynamoDBTable,
		Endpoint:        cfg.DynamoDBEndpoint,
		TimeIndexName:   cfg.TimeIndexName,
		StatusIndexName: cfg.StatusIndexName,
	}, logger)
}

// ProvideActivityRepository creates an activity repository
func ProvideActivityRepository(store *dynamodb.Store, logger *zap.Logger) ports.ActivityRepository {
	return dynamodb.NewActivityRepository(store, logger)
}

// ProvideInsightRepository creates an insight repository
func ProvideInsightRepository(store *dynamodb.Store, logger *zap.Logger) ports.InsightRepository {
	return dynamodb.NewInsightRepository(store, logger)
}

// ProvideEventPublisher creates an EventBridge publisher, or a no-op
// publisher when no event bus is configured
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger), nil
}

// ProvideDeduplicator creates the activity deduplicator
func ProvideDeduplicator(dc *domainconfig.DomainConfig) domainservices.Deduplicator {
	return domainservices.NewHeuristicDeduplicator(domainservices.RulesFromDomainConfig(dc))
}

// ProvideCaptureService creates the capture service
func ProvideCaptureService(
	source ports.ActivitySource,
	notifier ports.Notifier,
	dc *domainconfig.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.CaptureService {
	return services.NewCaptureService(source, notifier, dc, metrics, logger)
}

// ProvideActivityService creates the activity service
func ProvideActivityService(
	capture *services.CaptureService,
	dedup domainservices.Deduplicator,
	repo ports.ActivityRepository,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.ActivityService {
	return services.NewActivityService(capture, dedup, repo, metrics, logger)
}

// ProvideInsightService creates the insight service
func ProvideInsightService(
	completion ports.CompletionClient,
	repo ports.InsightRepository,
	publisher ports.EventPublisher,
	cfg *config.Config,
	dc *domainconfig.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.InsightService {
	settings := services.CompletionSettings{
		Model:       cfg.CompletionModel,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
	}
	return services.NewInsightService(completion, repo, publisher, settings, dc, metrics, logger)
}

// ProvideInMemoryCache creates the bounded query cache
func ProvideInMemoryCache() *InMemoryCache {
	return NewInMemoryCache(queryCacheSize)
}

// ProvideRateLimiter creates the per-address limiter for mutating routes
func ProvideRateLimiter(cfg *config.Config) *auth.IPRateLimiter {
	return auth.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
}

// ProvideSecretValidator creates the bearer validator for activity ingestion
func ProvideSecretValidator(cfg *config.Config) *auth.SecretValidator {
	return auth.NewSecretValidator(cfg.IngestSecret)
}

// commandHandler adapts a typed handler to the bus
func commandHandler[C bus.Command, R any](handle func(context.Context, C) (R, error)) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("invalid command type %T", cmd)
		}
		result, err := handle(ctx, typed)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// queryHandler adapts a typed handler to the bus
func queryHandler[Q querybus.Query, R any](handle func(context.Context, Q) (R, error)) querybus.QueryHandler {
	return querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", query)
		}
		result, err := handle(ctx, typed)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	activity *services.ActivityService,
	insights *services.InsightService,
	capture *services.CaptureService,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CaptureActivityCommand{}, commandHandler(commandhandlers.NewCaptureActivityHandler(activity).Handle)},
		{commands.GenerateInsightsCommand{}, commandHandler(commandhandlers.NewGenerateInsightsOrchestrator(activity, insights, logger).Handle)},
		{commands.UpdateInsightStatusCommand{}, commandHandler(commandhandlers.NewUpdateInsightStatusHandler(insights).Handle)},
		{commands.SendNotificationCommand{}, commandHandler(commandhandlers.NewSendNotificationHandler(capture).Handle)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers. Activity
// searches go through the query cache.
func ProvideQueryBus(
	activity *services.ActivityService,
	insights *services.InsightService,
	dc *domainconfig.DomainConfig,
	cache *InMemoryCache,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	caching := querybus.NewCachingMiddleware(cache, searchCacheTTL)

	if err := queryBus.Register(queries.ListInsightsQuery{},
		queryHandler(queryhandlers.NewListInsightsHandler(insights, logger).Handle)); err != nil {
		return nil, err
	}
	if err := queryBus.Register(queries.SearchActivityQuery{},
		caching.Wrap(queryHandler(queryhandlers.NewSearchActivityHandler(activity, dc, logger).Handle))); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideReadinessChecks lists the dependencies reported by /ready
func ProvideReadinessChecks(store *dynamodb.Store, capture *services.CaptureService) ReadinessChecks {
	return ReadinessChecks{
		Store: store,
		Capture: CaptureHealthFunc(func(ctx context.Context) error {
			if !capture.Health(ctx) {
				return fmt.Errorf("capture service unavailable")
			}
			return nil
		}),
	}
}
