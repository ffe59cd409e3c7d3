package config

import "fmt"

// Config holds all configuration for the RCA engine process.
type Config struct {
	// APIPort is the port the investigation API server listens on.
	APIPort int

	// LogLevel is the default log level ("debug", "info", "warn", "error").
	LogLevel string

	// PackageLogLevels holds per-package overrides, e.g. {"evidence": "debug"}.
	PackageLogLevels map[string]string

	// AWSRegion is the default region used when a resource or parsed input
	// does not specify one.
	AWSRegion string

	// AWSAssumeRoleARN, if set, is assumed via STS before vending service
	// clients. Empty means use the ambient credential chain directly.
	AWSAssumeRoleARN string

	// AWSExternalID is passed to AssumeRole when AWSAssumeRoleARN is set.
	AWSExternalID string

	// LLMProvider selects which provider backs the three LLM calls:
	// "anthropic", "bedrock", or "mock".
	LLMProvider string

	// AnthropicAPIKey authenticates the anthropic-sdk-go client. Required
	// when LLMProvider is "anthropic".
	AnthropicAPIKey string

	// AnthropicModel is the model id used for all three LLM calls.
	AnthropicModel string

	// BedrockModelID is the model id used when LLMProvider is "bedrock".
	BedrockModelID string

	// InvestigationDeadlineSeconds bounds an entire investigation.
	InvestigationDeadlineSeconds int

	// CollectorDeadlineSeconds bounds the evidence collection phase.
	CollectorDeadlineSeconds int

	// ToolDeadlineSeconds bounds a single tool invocation.
	ToolDeadlineSeconds int

	// MaxConcurrentInvestigations caps how many investigations run at once.
	MaxConcurrentInvestigations int

	// MaxConcurrentTools caps fan-out within a single evidence collection.
	MaxConcurrentTools int

	// ResourceCacheSize bounds the LRU used for resolve_api_id and similar
	// lookups. Facts are never cached here; see internal/discovery.
	ResourceCacheSize int

	// TracingEnabled toggles the OTLP exporter.
	TracingEnabled bool

	// TracingEndpoint is the OTLP gRPC collector endpoint.
	TracingEndpoint string

	// TracingTLSInsecure skips TLS verification when dialing the collector.
	TracingTLSInsecure bool

	// MCPFrontendEnabled exposes the tool registry over MCP for debugging.
	// Never wired into the core investigation pipeline.
	MCPFrontendEnabled bool

	// MCPFrontendPort is the port the optional MCP frontend listens on.
	MCPFrontendPort int
}

// Defaults returns a Config populated with the engine's baked-in defaults,
// to be overridden by environment variables and an optional file via Load.
func Defaults() *Config {
	return &Config{
		APIPort:                      8080,
		LogLevel:                     "info",
		PackageLogLevels:             map[string]string{},
		AWSRegion:                    "us-east-1",
		LLMProvider:                  "anthropic",
		AnthropicModel:               "claude-sonnet-4-5",
		InvestigationDeadlineSeconds: 300,
		CollectorDeadlineSeconds:     180,
		ToolDeadlineSeconds:          30,
		MaxConcurrentInvestigations:  4,
		MaxConcurrentTools:           8,
		ResourceCacheSize:            1024,
		MCPFrontendPort:              9090,
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.APIPort < 1 || c.APIPort > 65535 {
		return NewConfigError("APIPort must be between 1 and 65535")
	}
	if c.InvestigationDeadlineSeconds < 1 {
		return NewConfigError("InvestigationDeadlineSeconds must be at least 1")
	}
	if c.CollectorDeadlineSeconds < 1 || c.CollectorDeadlineSeconds > c.InvestigationDeadlineSeconds {
		return NewConfigError("CollectorDeadlineSeconds must be at least 1 and not exceed InvestigationDeadlineSeconds")
	}
	if c.ToolDeadlineSeconds < 1 || c.ToolDeadlineSeconds > c.CollectorDeadlineSeconds {
		return NewConfigError("ToolDeadlineSeconds must be at least 1 and not exceed CollectorDeadlineSeconds")
	}
	if c.MaxConcurrentInvestigations < 1 {
		return NewConfigError("MaxConcurrentInvestigations must be at least 1")
	}
	if c.MaxConcurrentTools < 1 {
		return NewConfigError("MaxConcurrentTools must be at least 1")
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return NewConfigError("AnthropicAPIKey must be set when LLMProvider is \"anthropic\"")
		}
	case "bedrock":
		if c.BedrockModelID == "" {
			return NewConfigError("BedrockModelID must be set when LLMProvider is \"bedrock\"")
		}
	case "mock":
	default:
		return NewConfigError(fmt.Sprintf("unknown LLMProvider %q (want anthropic|bedrock|mock)", c.LLMProvider))
	}

	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("TracingEndpoint must be set when TracingEnabled is true")
	}

	return nil
}

// ConfigError represents a configuration validation failure.
type ConfigError struct {
	message string
}

func NewConfigError(message string) *ConfigError { return &ConfigError{message: message} }

func (e *ConfigError) Error() string { return e.message }
