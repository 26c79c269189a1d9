package commands

import (
	"fmt"

	"insights-backend/domain/core/valueobjects"
	pkgerrors "insights-backend/pkg/errors"
	"insights-backend/pkg/utils"
)

// CaptureActivityCommand captures, deduplicates and stores recent activity
type CaptureActivityCommand struct {
	WindowMinutes int `json:"windowMinutes" validate:"gte=0,lte=1440"`
}

// Validate validates the CaptureActivityCommand
func (c CaptureActivityCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// GenerateInsightsCommand produces insights from recent activity
type GenerateInsightsCommand struct {
	Categories    []string `json:"categories" validate:"max=4,dive,oneof=productivity automation recommendation reminder"`
	WindowMinutes int      `json:"windowMinutes" validate:"gte=0,lte=1440"`
}

// Validate validates the GenerateInsightsCommand
func (c GenerateInsightsCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ParsedCategories converts the requested names, dropping repeats
func (c GenerateInsightsCommand) ParsedCategories() ([]valueobjects.Category, error) {
	seen := make(map[valueobjects.Category]bool, len(c.Categories))
	out := make([]valueobjects.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		category, err := valueobjects.ParseCategory(name)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		if !seen[category] {
			seen[category] = true
			out = append(out, category)
		}
	}
	return out, nil
}

// UpdateInsightStatusCommand moves an insight to a new status
type UpdateInsightStatusCommand struct {
	InsightID string `json:"id" validate:"required,max=128"`
	Status    string `json:"status" validate:"required,oneof=new viewed implemented dismissed"`
}

// Validate validates the UpdateInsightStatusCommand
func (c UpdateInsightStatusCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if _, err := valueobjects.ParseStatus(c.Status); err != nil {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid status: %v", err))
	}
	return nil
}

// SendNotificationCommand forwards a desktop notification
type SendNotificationCommand struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required,max=2000"`
}

// Validate validates the SendNotificationCommand
func (c SendNotificationCommand) Validate() error {
	return utils.ValidateStruct(c)
}
