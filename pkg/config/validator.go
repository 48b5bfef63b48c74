package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Server
	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Message: "listen address is required",
		})
	}
	if c.Server.Addr != "" && c.Server.Addr == c.Server.AdminAddr {
		errors = append(errors, ValidationError{
			Field:   "server.admin_addr",
			Message: "admin_addr must differ from addr",
		})
	}

	// LLM
	if !validHTTPURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL must be an absolute http(s) URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Database
	if c.Database.URL != "" {
		u, err := url.Parse(c.Database.URL)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Client
	if !validHTTPURL(c.Client.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "client.base_url",
			Message: "API base URL must be an absolute http(s) URL",
		})
	}
	if c.Client.ProbeTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "client.probe_timeout",
			Message: "probe_timeout must be positive",
		})
	}

	// Rate limit
	if c.RateLimit.RPS <= 0 {
		errors = append(errors, ValidationError{
			Field:   "rate_limit.rps",
			Message: "rps must be positive",
		})
	}
	if c.RateLimit.Burst < 1 {
		errors = append(errors, ValidationError{
			Field:   "rate_limit.burst",
			Message: "burst must be positive",
		})
	}

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown log level: %s", c.Logging.Level),
		})
	}

	return errors
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
