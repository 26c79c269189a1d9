package services

import (
	"strings"
	"unicode/utf8"

	"insights-backend/domain/config"
	"insights-backend/domain/core/entities"
)

// Deduplicator removes near-duplicate captures from a batch of activity
type Deduplicator interface {
	// Dedupe returns the surviving items in their original order
	Dedupe(items []entities.ActivityItem) []entities.ActivityItem
}

// DedupeRules configures the near-duplicate heuristic. Lengths are in runes.
type DedupeRules struct {
	MinTextLength        int // normalized text shorter than this is dropped
	ContainmentMinLength int // containment only counts once a string reaches this
	SharedWordMinLength  int // a shared word at least this long marks a duplicate
}

// RulesFromDomainConfig extracts the dedupe thresholds from the domain config
func RulesFromDomainConfig(cfg *config.DomainConfig) DedupeRules {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return DedupeRules{
		MinTextLength:        cfg.MinTextLength,
		ContainmentMinLength: cfg.ContainmentMinLength,
		SharedWordMinLength:  cfg.SharedWordMinLength,
	}
}

// HeuristicDeduplicator is a single-pass, first-seen-wins deduplicator.
// It is lossy and order-sensitive: two captures that merely share one long
// word are treated as the same capture.
type HeuristicDeduplicator struct {
	rules DedupeRules
}

// NewHeuristicDeduplicator creates a deduplicator with the given rules
func NewHeuristicDeduplicator(rules DedupeRules) *HeuristicDeduplicator {
	return &HeuristicDeduplicator{rules: rules}
}

// Dedupe implements Deduplicator
func (d *HeuristicDeduplicator) Dedupe(items []entities.ActivityItem) []entities.ActivityItem {
	kept := make([]entities.ActivityItem, 0, len(items))
	seen := make([]string, 0, len(items))

	for _, item := range items {
		text := Normalize(item.PrimaryText())
		if utf8.RuneCountInString(text) < d.rules.MinTextLength {
			continue
		}

		duplicate := false
		for _, prev := range seen {
			if d.IsDuplicate(text, prev) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		seen = append(seen, text)
		kept = append(kept, item)
	}

	return kept
}

// IsDuplicate compares two normalized strings
func (d *HeuristicDeduplicator) IsDuplicate(a, b string) bool {
	if a == b {
		return true
	}

	aLen := utf8.RuneCountInString(a)
	bLen := utf8.RuneCountInString(b)

	if aLen >= d.rules.ContainmentMinLength || bLen >= d.rules.ContainmentMinLength {
		if strings.Contains(a, b) || strings.Contains(b, a) {
			return true
		}
	}

	shorter, longer := a, b
	if bLen < aLen {
		shorter, longer = b, a
	}
	for _, word := range strings.Fields(shorter) {
		if utf8.RuneCountInString(word) >= d.rules.SharedWordMinLength && strings.Contains(longer, word) {
			return true
		}
	}

	return false
}

// Normalize lowercases and trims capture text
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
