// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest):
//  1. Environment variables (runtime override, including secrets)
//  2. Config file (./config.yaml or ~/.resume-agent/config.yaml)
//  3. Default values
//
// Secrets (OPENAI_API_KEY, PUSHOVER_TOKEN, PUSHOVER_USER) are only read from
// the environment and are masked in String()/MarshalJSON().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation, checked with errors.Is().
var (
	// ErrMissingAPIKey indicates OPENAI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidQuestionLimit indicates max_questions is out of range.
	ErrInvalidQuestionLimit = errors.New("invalid question limit")

	// ErrInvalidTopK indicates top_k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidChunkSize indicates chunk_size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrMissingAdminSession indicates admin_session_id is empty.
	ErrMissingAdminSession = errors.New("missing admin session id")
)

const (
	// DefaultMaxQuestions is the per-session counted-question limit.
	DefaultMaxQuestions = 5

	// MaxAllowedQuestions bounds max_questions to a sane ceiling.
	MaxAllowedQuestions = 100

	// DefaultTopK is the number of corpus chunks retrieved per query.
	DefaultTopK = 3

	// MaxTopK bounds top_k.
	MaxTopK = 10

	// DefaultChunkSize is the corpus chunk window in characters.
	DefaultChunkSize = 500
)

// Config stores application configuration.
// SECURITY: sensitive fields are masked in MarshalJSON().
type Config struct {
	// Persona and corpus
	PersonaName string `mapstructure:"persona_name" json:"persona_name"`
	DataDir     string `mapstructure:"data_dir" json:"data_dir"`
	DBPath      string `mapstructure:"db_path" json:"db_path"`

	// Model backend
	ChatModel      string `mapstructure:"chat_model" json:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model" json:"embedding_model"`

	// Conversation pipeline
	MaxQuestions   int    `mapstructure:"max_questions" json:"max_questions"`
	AdminSessionID string `mapstructure:"admin_session_id" json:"admin_session_id"`
	TopK           int    `mapstructure:"top_k" json:"top_k"`
	ChunkSize      int    `mapstructure:"chunk_size" json:"chunk_size"`

	// HTTP server (serve mode only)
	Addr       string   `mapstructure:"addr" json:"addr"`
	RateBurst  int      `mapstructure:"rate_burst" json:"rate_burst"`
	TrustProxy bool     `mapstructure:"trust_proxy" json:"trust_proxy"` // trust X-Real-IP/X-Forwarded-For behind a reverse proxy
	CORS       []string `mapstructure:"cors_origins" json:"cors_origins"`

	// Secrets (env only)
	OpenAIAPIKey  string `mapstructure:"openai_api_key" json:"openai_api_key"`   // SENSITIVE: masked in MarshalJSON
	PushoverToken string `mapstructure:"pushover_token" json:"pushover_token"`   // SENSITIVE: masked in MarshalJSON
	PushoverUser  string `mapstructure:"pushover_user" json:"pushover_user"`     // SENSITIVE: masked in MarshalJSON
}

// Load loads configuration with priority env > config file > defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".resume-agent"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("persona_name", "Monisha Krishnamurthy")
	v.SetDefault("data_dir", "me")
	v.SetDefault("db_path", filepath.Join("me", "db.sqlite"))

	v.SetDefault("chat_model", "gpt-4o-mini")
	v.SetDefault("embedding_model", "text-embedding-3-small")

	v.SetDefault("max_questions", DefaultMaxQuestions)
	v.SetDefault("admin_session_id", "monisha_admin")
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("chunk_size", DefaultChunkSize)

	v.SetDefault("addr", ":8080")
	v.SetDefault("rate_burst", 60)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("cors_origins", []string{})
}

// bindEnvVariables binds secrets and runtime overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("pushover_token", "PUSHOVER_TOKEN")
	mustBind("pushover_user", "PUSHOVER_USER")

	mustBind("addr", "RESUME_AGENT_ADDR")
	mustBind("db_path", "RESUME_AGENT_DB_PATH")
	mustBind("data_dir", "RESUME_AGENT_DATA_DIR")
	mustBind("chat_model", "RESUME_AGENT_CHAT_MODEL")
	mustBind("trust_proxy", "RESUME_AGENT_TRUST_PROXY")
}

// Validate performs fail-fast range checks. The OpenAI key is checked
// separately by ValidateProvider because offline operations (tests, help)
// do not need it.
func (c *Config) Validate() error {
	if c.MaxQuestions < 1 || c.MaxQuestions > MaxAllowedQuestions {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidQuestionLimit, c.MaxQuestions, MaxAllowedQuestions)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidTopK, c.TopK, MaxTopK)
	}
	if c.ChunkSize < 100 || c.ChunkSize > 4000 {
		return fmt.Errorf("%w: %d (must be 100-4000)", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.AdminSessionID == "" {
		return ErrMissingAdminSession
	}
	return nil
}

// ValidateProvider checks that the model backend is usable.
func (c *Config) ValidateProvider() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingAPIKey)
	}
	return nil
}

// maskedValue replaces secret content in logs.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.OpenAIAPIKey = maskSecret(a.OpenAIAPIKey)
	a.PushoverToken = maskSecret(a.PushoverToken)
	a.PushoverUser = maskSecret(a.PushoverUser)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
