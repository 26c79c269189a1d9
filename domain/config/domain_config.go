package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the business rules of the capture-to-insight pipeline
type DomainConfig struct {
	// Deduplication thresholds (in characters)
	MinTextLength        int // shorter normalized captures are dropped
	ContainmentMinLength int // substring containment only counts at this length
	SharedWordMinLength  int // words at least this long count as shared

	// Capture window
	DefaultWindowMinutes int
	MaxWindowMinutes     int
	DefaultCaptureLimit  int

	// Time constraints
	CaptureTimeout time.Duration
	HealthTimeout  time.Duration

	// Completion retry policy
	MaxRetries  int
	BaseBackoff time.Duration

	// Prompt shaping
	MaxPromptItems int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinTextLength:        10,
		ContainmentMinLength: 20,
		SharedWordMinLength:  5,

		DefaultWindowMinutes: 5,
		MaxWindowMinutes:     24 * 60,
		DefaultCaptureLimit:  50,

		CaptureTimeout: 15 * time.Second,
		HealthTimeout:  3 * time.Second,

		MaxRetries:  3,
		BaseBackoff: 1 * time.Second,

		MaxPromptItems: 40,
	}
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	cfg := DefaultDomainConfig()
	if environment == "development" {
		// Wider default window so a fresh local capture service has data.
		cfg.DefaultWindowMinutes = 30
	}
	return cfg
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinTextLength < 0 || c.ContainmentMinLength < 0 || c.SharedWordMinLength < 0 {
		return fmt.Errorf("deduplication thresholds cannot be negative")
	}
	if c.DefaultWindowMinutes <= 0 || c.DefaultWindowMinutes > c.MaxWindowMinutes {
		return fmt.Errorf("default window must be within 1..%d minutes", c.MaxWindowMinutes)
	}
	if c.CaptureTimeout <= 0 || c.HealthTimeout <= 0 {
		return fmt.Errorf("capture timeouts must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}
