package di

import (
	"context"

	"insights-backend/application/commands/bus"
	"insights-backend/application/ports"
	querybus "insights-backend/application/queries/bus"
	"insights-backend/infrastructure/config"
	"insights-backend/pkg/auth"
	"insights-backend/pkg/observability"

	"go.uber.org/zap"
)

// CaptureHealthFunc adapts a function to ports.HealthChecker
type CaptureHealthFunc func(ctx context.Context) error

// Ping implements ports.HealthChecker
func (f CaptureHealthFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// ReadinessChecks are the dependencies reported by the readiness probe
type ReadinessChecks struct {
	Store   ports.HealthChecker
	Capture ports.HealthChecker
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Metrics     *observability.Collector
	RateLimiter *auth.IPRateLimiter
	Validator   *auth.SecretValidator
	Readiness   ReadinessChecks
}
