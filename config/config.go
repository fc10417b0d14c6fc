package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	AppEnv      string `mapstructure:"app_env"`
	Port        string `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	FrontendURL string `mapstructure:"frontend_url"`
	// Comma separated in the environment.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth2    OAuth2Config    `mapstructure:"oauth2"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	S3        S3Config        `mapstructure:"s3"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type OAuth2Provider struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

func (p OAuth2Provider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type OAuth2Config struct {
	Google OAuth2Provider `mapstructure:"google"`
	GitHub OAuth2Provider `mapstructure:"github"`
	// CallbackBaseURL is the public base of this API, e.g. https://api.example.com.
	CallbackBaseURL        string        `mapstructure:"callback_base_url"`
	AuthorizedRedirectURIs []string      `mapstructure:"authorized_redirect_uris"`
	StateTTL               time.Duration `mapstructure:"state_ttl"`
	StateSweepInterval     time.Duration `mapstructure:"state_sweep_interval"`
}

// DefaultRedirectURI is the first authorized redirect URI, used when the
// client did not ask for one.
func (c OAuth2Config) DefaultRedirectURI() string {
	if len(c.AuthorizedRedirectURIs) == 0 {
		return ""
	}
	return c.AuthorizedRedirectURIs[0]
}

type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timezone string        `mapstructure:"timezone"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	AdminTo  string `mapstructure:"admin_to"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	WindowSeconds           int `mapstructure:"window_seconds"`
	GlobalThreshold         int `mapstructure:"global_threshold"`
	AuthThreshold           int `mapstructure:"auth_threshold"`
	FailedLoginMaxAttempts  int `mapstructure:"failed_login_max_attempts"`
	FailedLoginBlockMinutes int `mapstructure:"failed_login_block_minutes"`
}

type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	cfg.OAuth2.CallbackBaseURL = strings.TrimRight(cfg.OAuth2.CallbackBaseURL, "/")
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	cfg.OAuth2.AuthorizedRedirectURIs = splitList(cfg.OAuth2.AuthorizedRedirectURIs)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.Redis.URL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("allowed_origins", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.issuer", "applyfollow")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("oauth2.google.client_id", "")
	v.SetDefault("oauth2.google.client_secret", "")
	v.SetDefault("oauth2.github.client_id", "")
	v.SetDefault("oauth2.github.client_secret", "")
	v.SetDefault("oauth2.callback_base_url", "http://localhost:8080")
	v.SetDefault("oauth2.authorized_redirect_uris", "http://localhost:3000/oauth2/redirect")
	v.SetDefault("oauth2.state_ttl", "5m")
	v.SetDefault("oauth2.state_sweep_interval", "5m")

	v.SetDefault("reminder.interval", "60s")
	v.SetDefault("reminder.timezone", "UTC")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@applyfollow.app")
	v.SetDefault("smtp.admin_to", "")

	v.SetDefault("redis.url", "")

	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("rate_limit.global_threshold", 100)
	v.SetDefault("rate_limit.auth_threshold", 10)
	v.SetDefault("rate_limit.failed_login_max_attempts", 5)
	v.SetDefault("rate_limit.failed_login_block_minutes", 15)

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"app_env":                               "APP_ENV",
		"port":                                  "PORT",
		"log_level":                             "LOG_LEVEL",
		"frontend_url":                          "FRONTEND_URL",
		"allowed_origins":                       "ALLOWED_ORIGINS",
		"database.url":                          "DATABASE_URL",
		"database.max_conns":                    "DB_MAX_CONNS",
		"database.min_conns":                    "DB_MIN_CONNS",
		"database.auto_migrate":                 "AUTO_MIGRATE",
		"jwt.secret":                            "JWT_SECRET",
		"jwt.issuer":                            "JWT_ISSUER",
		"jwt.ttl":                               "JWT_TTL",
		"oauth2.google.client_id":               "OAUTH2_GOOGLE_CLIENT_ID",
		"oauth2.google.client_secret":           "OAUTH2_GOOGLE_CLIENT_SECRET",
		"oauth2.github.client_id":               "OAUTH2_GITHUB_CLIENT_ID",
		"oauth2.github.client_secret":           "OAUTH2_GITHUB_CLIENT_SECRET",
		"oauth2.callback_base_url":              "OAUTH2_CALLBACK_BASE_URL",
		"oauth2.authorized_redirect_uris":       "OAUTH2_AUTHORIZED_REDIRECT_URIS",
		"oauth2.state_ttl":                      "OAUTH2_STATE_TTL",
		"oauth2.state_sweep_interval":           "OAUTH2_STATE_SWEEP_INTERVAL",
		"reminder.interval":                     "REMINDER_INTERVAL",
		"reminder.timezone":                     "REMINDER_TIMEZONE",
		"smtp.host":                             "SMTP_HOST",
		"smtp.port":                             "SMTP_PORT",
		"smtp.username":                         "SMTP_USERNAME",
		"smtp.password":                         "SMTP_PASSWORD",
		"smtp.from":                             "SMTP_FROM",
		"smtp.admin_to":                         "ADMIN_EMAIL",
		"redis.url":                             "REDIS_URL",
		"rate_limit.window_seconds":             "RATE_LIMIT_WINDOW_SECONDS",
		"rate_limit.global_threshold":           "RATE_LIMIT_GLOBAL_THRESHOLD",
		"rate_limit.auth_threshold":             "RATE_LIMIT_AUTH_THRESHOLD",
		"rate_limit.failed_login_max_attempts":  "FAILED_LOGIN_MAX_ATTEMPTS",
		"rate_limit.failed_login_block_minutes": "FAILED_LOGIN_BLOCK_MINUTES",
		"s3.enabled":                            "S3_ENABLED",
		"s3.bucket":                             "S3_BUCKET",
		"s3.region":                             "S3_REGION",
		"s3.endpoint":                           "S3_ENDPOINT",
		"s3.access_key":                         "S3_ACCESS_KEY",
		"s3.secret_key":                         "S3_SECRET_KEY",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("port is required")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if cfg.IsProduction() && cfg.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if cfg.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if cfg.Reminder.Interval <= 0 {
		return errors.New("reminder interval must be positive")
	}
	if cfg.OAuth2.StateTTL <= 0 {
		return errors.New("oauth2 state ttl must be positive")
	}
	if cfg.OAuth2.StateSweepInterval <= 0 {
		return errors.New("oauth2 state sweep interval must be positive")
	}
	if cfg.S3.Enabled && cfg.S3.Bucket == "" {
		return errors.New("S3_BUCKET is required when S3_ENABLED is true")
	}
	return nil
}

// splitList normalises values that arrive either as a slice or as a single
// comma separated string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, strings.TrimRight(part, "/"))
			}
		}
	}
	return out
}
