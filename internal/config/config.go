// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config turns viper settings, environment variables, and loaded
// secrets into a types.Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// EnvPrefix namespaces environment variables (PAPER_DIGEST_LLM_MODEL, ...).
const EnvPrefix = "PAPER_DIGEST"

// Secret file names read from the secrets directory.
const (
	SecretOpenAIKey    = "openai-api-key"
	SecretAnthropicKey = "anthropic-api-key"
	SecretMailto       = "crossref-mailto"
	SecretRedisPass    = "redis-password"
)

var defaults = map[string]any{
	"log.level":    "info",
	"log.encoding": "json",

	"llm.provider": "openai",
	"llm.model":    "gpt-4-turbo",
	"llm.timeout":  2 * time.Minute,

	"summarize.policy":          "sectioned",
	"summarize.max_input_chars": 5000,

	"audio.enabled": true,
	"audio.model":   "tts-1",
	"audio.voice":   "alloy",

	"acquisition.timeout":     60 * time.Second,
	"acquisition.user_agent":  "paper-digest/0.1",
	"acquisition.max_retries": 3,
	"acquisition.papers_dir":  "uploads",

	"search.timeout":     30 * time.Second,
	"search.user_agent":  "paper-digest/0.1",
	"search.max_retries": 3,
	"search.max_results": 10,

	"conversion.backend": string(types.BackendNative),

	"store.backend":      "memory",
	"store.sqlite_path":  "paper-digest.db",
	"store.redis_addr":   "localhost:6379",
	"store.redis_prefix": "paper-digest:",

	"artifacts.backend": "local",
	"artifacts.dir":     "outputs",

	"server.addr":             ":8000",
	"server.workers":          4,
	"server.queue_size":       64,
	"server.max_upload_bytes": int64(50 << 20),
	"server.upload_retention": 7 * 24 * time.Hour,
	"server.janitor_spec":     "@hourly",
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config. API keys missing from v fall back to the
// conventional provider environment variables and then to secrets.
func Load(v *viper.Viper, secrets map[string]string) (types.Config, error) {
	SetDefaults(v)

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"llm.api_key", "llm.base_url", "audio.api_key", "acquisition.mailto",
		"store.redis_password", "artifacts.bucket", "artifacts.prefix"} {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	if err := v.BindEnv("openai_api_key", "OPENAI_API_KEY"); err != nil {
		return types.Config{}, fmt.Errorf("binding openai_api_key: %w", err)
	}
	if err := v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY"); err != nil {
		return types.Config{}, fmt.Errorf("binding anthropic_api_key: %w", err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = firstNonEmpty(v.GetString("openai_api_key"), secrets[SecretOpenAIKey])
		case "anthropic":
			cfg.LLM.APIKey = firstNonEmpty(v.GetString("anthropic_api_key"), secrets[SecretAnthropicKey])
		}
	}
	if cfg.Audio.APIKey == "" {
		cfg.Audio.APIKey = firstNonEmpty(v.GetString("openai_api_key"), secrets[SecretOpenAIKey])
	}
	if cfg.Acquisition.Mailto == "" {
		cfg.Acquisition.Mailto = secrets[SecretMailto]
	}
	if cfg.Store.RedisPassword == "" {
		cfg.Store.RedisPassword = secrets[SecretRedisPass]
	}

	if err := validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func validate(cfg types.Config) error {
	switch cfg.Summarize.Policy {
	case "sectioned", "indicator":
	default:
		return fmt.Errorf("summarize.policy: unknown policy %q", cfg.Summarize.Policy)
	}
	switch cfg.Conversion.Backend {
	case types.BackendNative, types.BackendPdftotext, types.BackendMarkitdown:
	default:
		return fmt.Errorf("conversion.backend: unknown backend %q", cfg.Conversion.Backend)
	}
	if cfg.Summarize.MaxInputChars <= 0 {
		return fmt.Errorf("summarize.max_input_chars must be positive, got %d", cfg.Summarize.MaxInputChars)
	}
	if cfg.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be positive, got %d", cfg.Server.Workers)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
