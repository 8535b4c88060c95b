package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load: loads configuration from environment variables. The .env file,
// when present, is merged in first.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig: loads and validates configuration.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate: checks configuration invariants.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.LLM.Model == "" {
		return errors.New("verify model must not be empty")
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive: %d", c.LLM.MaxOutputTokens)
	}
	if c.LLM.FallbackScore < 0 || c.LLM.FallbackScore > 100 {
		return fmt.Errorf("fallback score out of range: %d", c.LLM.FallbackScore)
	}
	if c.Quota.MaxPerDay < 1 {
		return fmt.Errorf("quota max per day must be at least 1: %d", c.Quota.MaxPerDay)
	}
	if c.Quota.WindowHours < 1 {
		return fmt.Errorf("quota window hours must be at least 1: %d", c.Quota.WindowHours)
	}
	if c.Cost.InputUSDPerThousand < 0 || c.Cost.OutputUSDPerThousand < 0 || c.Cost.EURPerUSD <= 0 {
		return errors.New("invalid cost rates")
	}
	return nil
}

// LogEnvStatus: logs the effective environment configuration at startup.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	envFilePresent := fileExists(".env")
	primaryKey := maskSecret(cfg.LLM.PrimaryKey())
	logger.Info(
		"env_status",
		"env_file", envFilePresent,
		"api_keys", len(cfg.LLM.APIKeys),
		"primary_key", primaryKey,
		"model", cfg.LLM.Model,
		"max_output_tokens", cfg.LLM.MaxOutputTokens,
		"timeout", cfg.LLM.TimeoutSeconds,
		"quota_max_per_day", cfg.Quota.MaxPerDay,
		"quota_window_hours", cfg.Quota.WindowHours,
		"cookie_secret_set", cfg.Identity.CookieSecret != "",
	)

	if len(cfg.LLM.APIKeys) == 0 {
		logger.Error("env_missing_api_key")
	}
	if cfg.Identity.CookieSecret == "" {
		logger.Warn("env_missing_cookie_secret_identity_unsigned")
	}
}

func buildConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			APIKeys:         parseAPIKeys(),
			Model:           getEnvString("VERIFY_MODEL", "gemini-3-flash-preview"),
			MaxOutputTokens: max(1, getEnvInt("VERIFY_MAX_TOKENS", 800)),
			Temperature:     getEnvFloat("VERIFY_TEMPERATURE", 0.2),
			TimeoutSeconds:  getEnvNonNegativeInt("VERIFY_TIMEOUT", 60),
			FallbackScore:   getEnvInt("VERIFY_FALLBACK_SCORE", 75),
		},
		Quota: QuotaConfig{
			MaxPerDay:   getEnvInt("QUOTA_MAX_PER_DAY", 2),
			WindowHours: getEnvInt("QUOTA_WINDOW_HOURS", 24),
		},
		Identity: IdentityConfig{
			CookieSecret:    getEnvString("COOKIE_SECRET", ""),
			CookieName:      getEnvString("COOKIE_NAME", "clientId"),
			CookieMaxAgeHrs: max(1, getEnvInt("COOKIE_MAX_AGE_HOURS", 24)),
			ForceSecure:     getEnvBool("COOKIE_FORCE_SECURE", false),
		},
		Cost: CostConfig{
			InputUSDPerThousand:  getEnvFloat("COST_INPUT_USD_PER_1K", 0.003),
			OutputUSDPerThousand: getEnvFloat("COST_OUTPUT_USD_PER_1K", 0.015),
			EURPerUSD:            getEnvFloat("COST_EUR_PER_USD", 0.92),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 1),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:         getEnvString("HTTP_HOST", "0.0.0.0"),
			Port:         getEnvInt("PORT", 3000),
			HTTP2Enabled: getEnvBool("HTTP2_ENABLED", false),
			StaticDir:    getEnvString("STATIC_DIR", "public"),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(getEnvString("CORS_ALLOW_ORIGINS", "*")),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
	}
}
