package valueobjects

import (
	"fmt"
	"strings"
)

// Category classifies an insight
type Category string

const (
	CategoryProductivity   Category = "productivity"
	CategoryAutomation     Category = "automation"
	CategoryRecommendation Category = "recommendation"
	CategoryReminder       Category = "reminder"
)

// AllCategories lists every category in display order
func AllCategories() []Category {
	return []Category{
		CategoryProductivity,
		CategoryAutomation,
		CategoryRecommendation,
		CategoryReminder,
	}
}

// ParseCategory parses a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("category must be one of: productivity, automation, recommendation, reminder")
	}
	return c, nil
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryProductivity, CategoryAutomation, CategoryRecommendation, CategoryReminder:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Priority ranks an insight; 0 is the default for generated insights
type Priority int

const (
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
	PriorityUrgent Priority = 2
)

// IsValid reports whether p is within 0..2
func (p Priority) IsValid() bool {
	return p >= PriorityNormal && p <= PriorityUrgent
}
