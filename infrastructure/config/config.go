package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "insights-backend/domain/config"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"` // local DynamoDB, empty for AWS
	TimeIndexName    string `yaml:"time_index_name"`   // GSI1 - entity type by time
	StatusIndexName  string `yaml:"status_index_name"` // GSI2 - insights by status
	EventBusName     string `yaml:"event_bus_name"`    // empty disables events

	// Lambda configuration
	IsLambda bool `yaml:"is_lambda"`

	// Capture service
	CaptureBaseURL       string        `yaml:"capture_base_url"`
	NotifyBaseURL        string        `yaml:"notify_base_url"`
	CaptureTimeout       time.Duration `yaml:"capture_timeout"`
	CaptureWindowMinutes int           `yaml:"capture_window_minutes"`

	// Completion endpoint
	CompletionBaseURL     string        `yaml:"completion_base_url"`
	CompletionAPIKey      string        `yaml:"completion_api_key"`
	CompletionModel       string        `yaml:"completion_model"`
	CompletionMaxTokens   int           `yaml:"completion_max_tokens"`
	CompletionTemperature float64       `yaml:"completion_temperature"`
	CompletionTimeout     time.Duration `yaml:"completion_timeout"`
	CompletionRPS         float64       `yaml:"completion_rps"`

	// Authentication
	IngestSecret string `yaml:"ingest_secret"`

	// Rate limiting
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// CORS
	CORSOrigins []string `yaml:"cors_origins"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableCORS    bool `yaml:"enable_cors"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,

		AWSRegion:       "us-west-2",
		DynamoDBTable:   "activity-insights",
		TimeIndexName:   "TimeIndex",
		StatusIndexName: "StatusIndex",

		CaptureBaseURL:       "http://localhost:3030",
		NotifyBaseURL:        "http://localhost:11435",
		CaptureTimeout:       15 * time.Second,
		CaptureWindowMinutes: 0,

		CompletionBaseURL:     "https://api.openai.com/v1",
		CompletionModel:       "gpt-4o-mini",
		CompletionMaxTokens:   150,
		CompletionTemperature: 0.7,
		CompletionTimeout:     30 * time.Second,
		CompletionRPS:         2,

		RateLimitRequests: 10,
		RateLimitWindow:   60 * time.Second,

		CORSOrigins: []string{"http://localhost:3000"},

		LogLevel:      "info",
		EnableMetrics: true,
		EnableCORS:    true,
	}
}

// LoadConfig loads configuration. Built-in defaults are overlaid by the YAML
// file named in CONFIG_FILE, if any, and then by environment variables.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.overlayEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ReadTimeout = getEnvDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.TimeIndexName = getEnv("TIME_INDEX_NAME", c.TimeIndexName)
	c.StatusIndexName = getEnv("STATUS_INDEX_NAME", c.StatusIndexName)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.CaptureBaseURL = getEnv("CAPTURE_BASE_URL", c.CaptureBaseURL)
	c.NotifyBaseURL = getEnv("NOTIFY_BASE_URL", c.NotifyBaseURL)
	c.CaptureTimeout = getEnvDuration("CAPTURE_TIMEOUT", c.CaptureTimeout)
	c.CaptureWindowMinutes = getEnvInt("CAPTURE_WINDOW_MINUTES", c.CaptureWindowMinutes)

	c.CompletionBaseURL = getEnv("COMPLETION_BASE_URL", c.CompletionBaseURL)
	c.CompletionAPIKey = getEnv("COMPLETION_API_KEY", c.CompletionAPIKey)
	c.CompletionModel = getEnv("COMPLETION_MODEL", c.CompletionModel)
	c.CompletionMaxTokens = getEnvInt("COMPLETION_MAX_TOKENS", c.CompletionMaxTokens)
	c.CompletionTemperature = getEnvFloat("COMPLETION_TEMPERATURE", c.CompletionTemperature)
	c.CompletionTimeout = getEnvDuration("COMPLETION_TIMEOUT", c.CompletionTimeout)
	c.CompletionRPS = getEnvFloat("COMPLETION_RPS", c.CompletionRPS)

	c.IngestSecret = getEnv("INGEST_SECRET", c.IngestSecret)

	c.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	c.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)

	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.IngestSecret == "" {
			return fmt.Errorf("INGEST_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	}

	for name, raw := range map[string]string{
		"CAPTURE_BASE_URL":    c.CaptureBaseURL,
		"COMPLETION_BASE_URL": c.CompletionBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if c.CaptureTimeout <= 0 || c.CompletionTimeout <= 0 {
		return fmt.Errorf("capture and completion timeouts must be positive")
	}
	if c.CompletionTemperature < 0 || c.CompletionTemperature > 2 {
		return fmt.Errorf("COMPLETION_TEMPERATURE must be between 0 and 2")
	}
	if c.CompletionMaxTokens <= 0 {
		return fmt.Errorf("COMPLETION_MAX_TOKENS must be positive")
	}

	return nil
}

// DomainConfig derives the pipeline rules, applying the capture overrides
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := domainconfig.LoadDomainConfig(c.Environment)
	if c.CaptureTimeout > 0 {
		dc.CaptureTimeout = c.CaptureTimeout
	}
	if c.CaptureWindowMinutes > 0 {
		dc.DefaultWindowMinutes = c.CaptureWindowMinutes
	}
	return dc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
