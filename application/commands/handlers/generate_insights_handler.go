package handlers

import (
	"context"
	"fmt"

	"insights-backend/application/commands"
	"insights-backend/application/services"
	"insights-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// GenerateInsightsResult is the outcome of one generation run
type GenerateInsightsResult struct {
	Insights       []services.GeneratedInsight `json:"insights"`
	ActivitySource valueobjects.Provenance     `json:"activitySource"`
	ActivityCount  int                         `json:"activityCount"`
}

// Source is the provenance reported for the whole run: live only when every
// insight came from the completion endpoint.
func (r *GenerateInsightsResult) Source() valueobjects.Provenance {
	if len(r.Insights) == 0 {
		return valueobjects.ProvenanceMock
	}
	for _, g := range r.Insights {
		if g.Insight.Provenance != valueobjects.ProvenanceLive {
			return valueobjects.ProvenanceMock
		}
	}
	return valueobjects.ProvenanceLive
}

// GenerateInsightsOrchestrator reads recent activity and turns it into
// insights
type GenerateInsightsOrchestrator struct {
	activity *services.ActivityService
	insights *services.InsightService
	logger   *zap.Logger
}

// NewGenerateInsightsOrchestrator creates a new orchestrator instance
func NewGenerateInsightsOrchestrator(
	activity *services.ActivityService,
	insights *services.InsightService,
	logger *zap.Logger,
) *GenerateInsightsOrchestrator {
	return &GenerateInsightsOrchestrator{
		activity: activity,
		insights: insights,
		logger:   logger,
	}
}

// Handle runs capture, dedupe and generation
func (o *GenerateInsightsOrchestrator) Handle(ctx context.Context, cmd commands.GenerateInsightsCommand) (*GenerateInsightsResult, error) {
	categories, err := cmd.ParsedCategories()
	if err != nil {
		return nil, err
	}

	// Step 1: recent, deduplicated activity (synthetic when capture is down)
	recent := o.activity.Recent(ctx, cmd.WindowMinutes)

	// Step 2: one insight per category
	generated, err := o.insights.Generate(ctx, recent.Items, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}

	o.logger.Info("Generated insights",
		zap.Int("insights", len(generated)),
		zap.Int("activity", len(recent.Items)),
		zap.String("activitySource", string(recent.Source)),
	)

	return &GenerateInsightsResult{
		Insights:       generated,
		ActivitySource: recent.Source,
		ActivityCount:  len(recent.Items),
	}, nil
}
