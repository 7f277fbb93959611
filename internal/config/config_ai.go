package config

import "time"

// AIConfig holds AI service configuration. The global fields are fallbacks
// for the five per-operation configurations.
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	APIKey            string        `mapstructure:"apiKey"`
	MaxRetries        int           `mapstructure:"maxRetries"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxOutputTokens   int32         `mapstructure:"maxOutputTokens"`
	UseSystemPrompts  bool          `mapstructure:"useSystemPrompts"`
	ScoringRubric     string        `mapstructure:"scoringRubric"`
	ScoringRubricFile string        `mapstructure:"scoringRubricFile"`

	// Operation-specific configurations for the pipeline stages
	Gap      OperationAIConfig `mapstructure:"gap"`
	Assess   OperationAIConfig `mapstructure:"assess"`
	Strategy OperationAIConfig `mapstructure:"strategy"`
	Write    OperationAIConfig `mapstructure:"write"`
	Track    OperationAIConfig `mapstructure:"track"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for one pipeline operation.
// Pointer fields distinguish "unset" from explicit zero so fallbacks work.
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	MaxOutputTokens  *int32               `mapstructure:"maxOutputTokens"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds overrides for one operation's prompts. File paths take
// priority over inline values.
type PromptConfig struct {
	System     string `mapstructure:"system"`
	SystemFile string `mapstructure:"systemFile"`
	User       string `mapstructure:"user"`
	UserFile   string `mapstructure:"userFile"`
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.MaxOutputTokens == nil {
		opCfg.MaxOutputTokens = &c.AI.MaxOutputTokens
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// resolveOperations materializes the derived per-operation configurations
// in place so the AI layer can read them directly
func (c *Config) resolveOperations() {
	c.AI.Gap = c.GetGapConfig()
	c.AI.Assess = c.GetAssessConfig()
	c.AI.Strategy = c.GetStrategyConfig()
	c.AI.Write = c.GetWriteConfig()
	c.AI.Track = c.GetTrackConfig()
}

// GetGapConfig returns the AI configuration for the gap analysis call with
// fallback to global config
func (c *Config) GetGapConfig() OperationAIConfig {
	config := c.AI.Gap
	c.applyOperationDefaults(&config)
	return config
}

// GetAssessConfig returns the AI configuration for the assessment call with
// fallback to global config
func (c *Config) GetAssessConfig() OperationAIConfig {
	config := c.AI.Assess
	c.applyOperationDefaults(&config)
	return config
}

// GetStrategyConfig returns the AI configuration for the strategy call with
// fallback to global config
func (c *Config) GetStrategyConfig() OperationAIConfig {
	config := c.AI.Strategy
	c.applyOperationDefaults(&config)
	return config
}

// GetWriteConfig returns the AI configuration for the resume writing call
// with fallback to global config
func (c *Config) GetWriteConfig() OperationAIConfig {
	config := c.AI.Write
	c.applyOperationDefaults(&config)
	return config
}

// GetTrackConfig returns the AI configuration for the change tracking call
// with fallback to global config
func (c *Config) GetTrackConfig() OperationAIConfig {
	config := c.AI.Track
	c.applyOperationDefaults(&config)
	return config
}
