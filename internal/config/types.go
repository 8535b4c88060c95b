package config

import "time"

// LLMConfig: completion backend profile. A single configurable profile
// (model id, output token ceiling, fallback score) covers the service.
type LLMConfig struct {
	APIKeys         []string
	Model           string
	MaxOutputTokens int
	Temperature     float64
	TimeoutSeconds  int
	FallbackScore   int
}

// PrimaryKey: returns the first configured API key.
func (l LLMConfig) PrimaryKey() string {
	if len(l.APIKeys) == 0 {
		return ""
	}
	return l.APIKeys[0]
}

// Timeout: upstream call deadline; zero disables the deadline.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// QuotaConfig: per-client fixed-window request quota.
type QuotaConfig struct {
	MaxPerDay   int
	WindowHours int
}

// Window: quota window span.
func (q QuotaConfig) Window() time.Duration {
	return time.Duration(q.WindowHours) * time.Hour
}

// IdentityConfig: signed client-identity cookie settings.
type IdentityConfig struct {
	CookieSecret    string
	CookieName      string
	CookieMaxAgeHrs int
	ForceSecure     bool
}

// CookieMaxAge: identity cookie lifetime.
func (i IdentityConfig) CookieMaxAge() time.Duration {
	return time.Duration(i.CookieMaxAgeHrs) * time.Hour
}

// CostConfig: fixed token pricing and USD to EUR conversion.
type CostConfig struct {
	InputUSDPerThousand  float64
	OutputUSDPerThousand float64
	EURPerUSD            float64
}

// LoggingConfig: log level and optional file rotation.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig: HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
	StaticDir    string
}

// CORSConfig: allowed cross-origin request origins.
type CORSConfig struct {
	AllowOrigins []string
}

// HTTPRateLimitConfig: per-IP request-per-minute ceiling, separate from
// the daily quota. Zero disables it.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// Config: full application configuration.
type Config struct {
	LLM           LLMConfig
	Quota         QuotaConfig
	Identity      IdentityConfig
	Cost          CostConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	CORS          CORSConfig
	HTTPRateLimit HTTPRateLimitConfig
}
