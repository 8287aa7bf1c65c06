// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AcquisitionConfig holds settings for downloading papers.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PapersDir is the base directory for papers (contains raw/, metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir" mapstructure:"papers_dir"`

	// Mailto is sent to CrossRef and OpenAlex to join their polite pools.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty" mapstructure:"mailto"`
}

// SearchConfig holds settings for arXiv search.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the default number of results (10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ConversionBackend identifies the PDF text extraction tool.
type ConversionBackend string

const (
	BackendNative     ConversionBackend = "native"
	BackendPdftotext  ConversionBackend = "pdftotext"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConversionConfig selects the text extraction backend.
type ConversionConfig struct {
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// LLMConfig holds settings for the language-model client.
type LLMConfig struct {
	// Provider selects the backend: openai, ollama, or anthropic.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4-turbo").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against hosted providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (ollama host, OpenAI-compatible gateway).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout is the per-call deadline applied when the caller sets none.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// SummarizeConfig tunes the two summarization stages.
type SummarizeConfig struct {
	// Policy names the field extraction policy: sectioned or indicator.
	Policy string `json:"policy" yaml:"policy" mapstructure:"policy"`

	// MaxInputChars caps how much paper text is embedded in prompts.
	MaxInputChars int `json:"max_input_chars" yaml:"max_input_chars" mapstructure:"max_input_chars"`
}

// AudioConfig holds text-to-speech settings.
type AudioConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Model   string `json:"model" yaml:"model" mapstructure:"model"`
	Voice   string `json:"voice" yaml:"voice" mapstructure:"voice"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// StoreConfig selects where tasks and summaries are kept.
type StoreConfig struct {
	// Backend is memory, sqlite, or redis.
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`

	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path" mapstructure:"sqlite_path"`

	RedisAddr     string        `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	RedisPrefix   string        `json:"redis_prefix" yaml:"redis_prefix" mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `json:"redis_ttl" yaml:"redis_ttl" mapstructure:"redis_ttl"`
}

// ArtifactConfig selects where uploaded PDFs and audio files are written.
type ArtifactConfig struct {
	// Backend is local or gcs.
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	Dir     string `json:"dir" yaml:"dir" mapstructure:"dir"`
	Bucket  string `json:"bucket,omitempty" yaml:"bucket,omitempty" mapstructure:"bucket"`
	Prefix  string `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
}

// ServerConfig holds HTTP API and worker pool settings.
type ServerConfig struct {
	Addr      string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Workers   int    `json:"workers" yaml:"workers" mapstructure:"workers"`
	QueueSize int    `json:"queue_size" yaml:"queue_size" mapstructure:"queue_size"`

	// MaxUploadBytes limits multipart upload size.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// UploadRetention is how long downloaded and uploaded PDFs are kept.
	UploadRetention time.Duration `json:"upload_retention" yaml:"upload_retention" mapstructure:"upload_retention"`

	// JanitorSpec is the cron expression for the upload cleanup job.
	JanitorSpec string `json:"janitor_spec" yaml:"janitor_spec" mapstructure:"janitor_spec"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `json:"level" yaml:"level" mapstructure:"level"`
	Encoding string `json:"encoding" yaml:"encoding" mapstructure:"encoding"`
}

// Config groups all settings for the service and CLI.
type Config struct {
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
	LLM         LLMConfig         `json:"llm" yaml:"llm" mapstructure:"llm"`
	Summarize   SummarizeConfig   `json:"summarize" yaml:"summarize" mapstructure:"summarize"`
	Audio       AudioConfig       `json:"audio" yaml:"audio" mapstructure:"audio"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
	Search      SearchConfig      `json:"search" yaml:"search" mapstructure:"search"`
	Conversion  ConversionConfig  `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Store       StoreConfig       `json:"store" yaml:"store" mapstructure:"store"`
	Artifacts   ArtifactConfig    `json:"artifacts" yaml:"artifacts" mapstructure:"artifacts"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
}
