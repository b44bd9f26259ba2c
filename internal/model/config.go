package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Court   CourtConfig   `yaml:"court" mapstructure:"court"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig selects and tunes the verdict generator
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=gemini google openai anthropic claude ollama"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CourtConfig holds the state machine timings and verdict policy
type CourtConfig struct {
	AppealWindow     time.Duration `yaml:"appeal_window" mapstructure:"appeal_window" validate:"gt=0"`
	TransitionDelay  time.Duration `yaml:"transition_delay" mapstructure:"transition_delay" validate:"gte=0"`
	NormalizeVerdict bool          `yaml:"normalize_verdicts" mapstructure:"normalize_verdicts"`
	DefaultPersona   JudgePersona  `yaml:"default_persona" mapstructure:"default_persona" validate:"oneof=CUTE TOXIC"`
}

// StorageConfig selects where history and the town square are kept
type StorageConfig struct {
	Backend    string        `yaml:"backend" mapstructure:"backend" validate:"oneof=memory disk layered redis sqlite"`
	Dir        string        `yaml:"dir" mapstructure:"dir"`
	RedisURL   string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
	SQLitePath string        `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	MemoryTTL  time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	SeedSquare bool          `yaml:"seed_square" mapstructure:"seed_square"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
	SessionTTL        time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// BatchConfig configures the batch command
type BatchConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=console json"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     60,
			MaxTokens:   2048,
			Temperature: 0.8,
		},
		Court: CourtConfig{
			AppealWindow:     15 * time.Minute,
			TransitionDelay:  3 * time.Second,
			NormalizeVerdict: true,
			DefaultPersona:   PersonaCute,
		},
		Storage: StorageConfig{
			Backend:    "layered",
			Dir:        "", // resolved to ~/.puppyjudge/data
			MemoryTTL:  10 * time.Minute,
			SeedSquare: true,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerSecond: 1,
			BurstSize:         5,
			SessionTTL:        2 * time.Hour,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      2 * time.Minute,
		},
		Batch: BatchConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Redacted returns a copy with secrets masked, for display
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "***"
	}
	return c
}
