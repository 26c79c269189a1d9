package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"insights-backend/application/ports"
	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
)

const systemPrompt = `You are a personal productivity assistant. You read a log of what the user
recently saw on screen and said aloud, and reply with one short, specific,
actionable insight (max 2 sentences). Mention the actual apps or topics.
Reply with the insight text only.`

var categoryFocus = map[valueobjects.Category]string{
	valueobjects.CategoryProductivity:   "Focus on work patterns: context switching, deep focus, distractions.",
	valueobjects.CategoryAutomation:     "Focus on repetitive manual steps that could be scripted or automated.",
	valueobjects.CategoryRecommendation: "Recommend a tool, resource or habit that fits what the user is doing.",
	valueobjects.CategoryReminder:       "Point out a follow-up, deadline or commitment the user should not forget.",
}

const maxItemChars = 200

func (s *InsightService) buildRequest(items []entities.ActivityItem, category valueobjects.Category) ports.CompletionRequest {
	return ports.CompletionRequest{
		Model: s.settings.Model,
		Messages: []ports.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(items, category, s.cfg.MaxPromptItems)},
		},
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	}
}

func buildUserPrompt(items []entities.ActivityItem, category valueobjects.Category, maxItems int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Category: %s\n%s\n\nRECENT ACTIVITY:\n", category, categoryFocus[category]))

	if len(items) == 0 {
		sb.WriteString("- (no activity captured)\n")
	}
	for i, item := range items {
		if maxItems > 0 && i >= maxItems {
			sb.WriteString(fmt.Sprintf("- ... %d more items\n", len(items)-maxItems))
			break
		}
		sb.WriteString("- ")
		if !item.Timestamp.IsZero() {
			sb.WriteString(item.Timestamp.Format("15:04"))
			sb.WriteString(" ")
		}
		sb.WriteString("[")
		sb.WriteString(string(item.Kind))
		sb.WriteString("]")
		if item.AppName != "" {
			sb.WriteString(" ")
			sb.WriteString(item.AppName)
		}
		if item.WindowName != "" {
			sb.WriteString(" / ")
			sb.WriteString(item.WindowName)
		}
		sb.WriteString(": ")
		sb.WriteString(truncate(strings.Join(strings.Fields(item.PrimaryText()), " "), maxItemChars))
		sb.WriteString("\n")
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
