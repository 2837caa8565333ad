package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the document generation
// gateway, loaded from environment variables (and an optional .env file
// for local development).
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Auth
	EnableAuthBypass bool   `mapstructure:"ENABLE_AUTH_BYPASS"`
	JWTIssuer        string `mapstructure:"JWT_ISSUER"`
	JWTAudience      string `mapstructure:"JWT_AUDIENCE"`
	JWTPublicKey     string `mapstructure:"JWT_PUBLIC_KEY"`
	SecretKey        string `mapstructure:"SECRET_KEY"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// LLM
	OpenAIAPIKey      string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel       string `mapstructure:"OPENAI_MODEL"`
	LLMBaseURL        string `mapstructure:"LLM_BASE_URL"`
	LLMTimeoutSeconds int    `mapstructure:"LLM_TIMEOUT_SECONDS"`

	// PHI handling
	StoreFullAuditData bool     `mapstructure:"STORE_FULL_AUDIT_DATA"`
	RedactPHIFields    bool     `mapstructure:"REDACT_PHI_FIELDS"`
	PHIFieldsToRedact  []string `mapstructure:"PHI_FIELDS_TO_REDACT"`

	// Deterministic regeneration seeds
	TreatmentSummarySeed int `mapstructure:"TREATMENT_SUMMARY_SEED"`
	InsuranceSummarySeed int `mapstructure:"INSURANCE_SUMMARY_SEED"`
	ProgressNotesSeed    int `mapstructure:"PROGRESS_NOTES_SEED"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("ENABLE_AUTH_BYPASS", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 30)
	v.SetDefault("STORE_FULL_AUDIT_DATA", false)
	v.SetDefault("REDACT_PHI_FIELDS", true)
	v.SetDefault("PHI_FIELDS_TO_REDACT", "patient_name,practice_name")
	v.SetDefault("TREATMENT_SUMMARY_SEED", 42)
	v.SetDefault("INSURANCE_SUMMARY_SEED", 42)
	v.SetDefault("PROGRESS_NOTES_SEED", 42)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("ENABLE_AUTH_BYPASS")
	v.BindEnv("JWT_ISSUER")
	v.BindEnv("JWT_AUDIENCE")
	v.BindEnv("JWT_PUBLIC_KEY")
	v.BindEnv("SECRET_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_MODEL")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("LLM_TIMEOUT_SECONDS")
	v.BindEnv("STORE_FULL_AUDIT_DATA")
	v.BindEnv("REDACT_PHI_FIELDS")
	v.BindEnv("PHI_FIELDS_TO_REDACT")
	v.BindEnv("TREATMENT_SUMMARY_SEED")
	v.BindEnv("INSURANCE_SUMMARY_SEED")
	v.BindEnv("PROGRESS_NOTES_SEED")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.PHIFieldsToRedact == nil {
		if fields := v.GetString("PHI_FIELDS_TO_REDACT"); fields != "" {
			cfg.PHIFieldsToRedact = strings.Split(fields, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		if cfg.EnableAuthBypass {
			log.Println("WARNING: ENABLE_AUTH_BYPASS is true — bearer tokens are not validated.")
		}
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. When auth bypass
// is disabled, the authenticator needs either an RS256 public key or an
// HS256 shared secret to validate bearer tokens.
func (c *Config) Validate() error {
	if !c.EnableAuthBypass {
		if c.JWTPublicKey == "" && c.SecretKey == "" {
			return fmt.Errorf(
				"JWT_PUBLIC_KEY or SECRET_KEY must be set when ENABLE_AUTH_BYPASS is false")
		}
	}

	if c.IsProduction() && c.EnableAuthBypass {
		return fmt.Errorf("ENABLE_AUTH_BYPASS must be false in production")
	}

	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.LLMTimeoutSeconds <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive, got %d", c.LLMTimeoutSeconds)
	}

	return nil
}
