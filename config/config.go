package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env  string `mapstructure:"ENV"`
	Port string `mapstructure:"PORT"`

	DBURL         string `mapstructure:"DB_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AccessTokenSecret  string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessExpiryMin    int    `mapstructure:"ACCESS_TOKEN_EXPIRY"`
	RefreshExpiryMin   int    `mapstructure:"REFRESH_TOKEN_EXPIRY"`

	BcryptCost          int `mapstructure:"BCRYPT_COST"`
	ResetTokenExpiryMin int `mapstructure:"RESET_TOKEN_EXPIRY"`

	LoginWindowMin    int `mapstructure:"LOGIN_ATTEMPT_WINDOW"`
	LoginMaxAttempts  int `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	StrictWindowMin   int `mapstructure:"LOGIN_STRICT_WINDOW"`
	StrictMaxAttempts int `mapstructure:"LOGIN_STRICT_MAX_ATTEMPTS"`

	SessionCacheTTLSec int `mapstructure:"SESSION_CACHE_TTL"`
	VerifyCacheSize    int `mapstructure:"VERIFY_CACHE_SIZE"`
	VerifyCacheTTLSec  int `mapstructure:"VERIFY_CACHE_TTL"`

	IPRatePerMin int `mapstructure:"IP_RATE_PER_MIN"`
	IPRateBurst  int `mapstructure:"IP_RATE_BURST"`

	MailgunDomain string `mapstructure:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `mapstructure:"MAILGUN_API_KEY"`
	MailSender    string `mapstructure:"MAIL_SENDER"`
	AppBaseURL    string `mapstructure:"APP_BASE_URL"`
}

// Load reads configuration from the environment, applying defaults for
// everything except the secrets and the database URL.
func Load() (*Config, error) {
	v := viper.New()

	// Empty defaults keep env-only keys visible to Unmarshal under AutomaticEnv.
	v.SetDefault("DB_URL", "")
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ACCESS_TOKEN_EXPIRY", 15)     // minutes
	v.SetDefault("REFRESH_TOKEN_EXPIRY", 10080) // minutes, 7 days
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RESET_TOKEN_EXPIRY", 60) // minutes
	v.SetDefault("LOGIN_ATTEMPT_WINDOW", 15)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_STRICT_WINDOW", 60)
	v.SetDefault("LOGIN_STRICT_MAX_ATTEMPTS", 3)
	v.SetDefault("SESSION_CACHE_TTL", 300) // seconds
	v.SetDefault("VERIFY_CACHE_SIZE", 4096)
	v.SetDefault("VERIFY_CACHE_TTL", 30) // seconds
	v.SetDefault("IP_RATE_PER_MIN", 60)
	v.SetDefault("IP_RATE_BURST", 20)
	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAIL_SENDER", "no-reply@localhost")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for key, val := range map[string]string{
		"DB_URL":               cfg.DBURL,
		"ACCESS_TOKEN_SECRET":  cfg.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET": cfg.RefreshTokenSecret,
	} {
		if val == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
	}

	return &cfg, nil
}

func (c *Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.AccessExpiryMin) * time.Minute
}

func (c *Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshExpiryMin) * time.Minute
}

func (c *Config) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowMin) * time.Minute
}

func (c *Config) StrictWindow() time.Duration {
	return time.Duration(c.StrictWindowMin) * time.Minute
}

func (c *Config) SessionCacheTTL() time.Duration {
	return time.Duration(c.SessionCacheTTLSec) * time.Second
}

func (c *Config) VerifyCacheTTL() time.Duration {
	return time.Duration(c.VerifyCacheTTLSec) * time.Second
}

func (c *Config) ResetTokenExpiry() time.Duration {
	return time.Duration(c.ResetTokenExpiryMin) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
