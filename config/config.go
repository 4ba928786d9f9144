package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig is built once at startup and passed to every component that
// needs configuration.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	Cron     CronConfig
	Jobs     JobsConfig
	Sheets   SheetsConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	GinMode      string        `env:"GIN_MODE" envDefault:"debug"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	// AllowedOrigins feeds the CORS middleware.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	Driver   string `env:"DATABASE_DRIVER" envDefault:"mysql"`
	URL      string `env:"DATABASE_URL,required"`
	DebugSQL bool   `env:"DEBUG_SQL" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
	File   string `env:"LOG_FILE" envDefault:"logs/ops-api.log"`
}

// AuthMode selects how users sign in.
type AuthMode string

const (
	AuthModeOIDC AuthMode = "oidc"
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AUTH_MODE %q (valid options: oidc, mock)", v)
	}
}

type AuthConfig struct {
	Mode           AuthMode      `env:"AUTH_MODE" envDefault:"oidc"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	AllowedEmails  []string      `env:"ALLOWED_SIGNER_EMAILS" envSeparator:","`
	AllowedDomains []string      `env:"ALLOWED_SIGNER_DOMAINS" envSeparator:","`
	AdminEmails    []string      `env:"ADMIN_EMAILS" envSeparator:","`
	DevEmail       string        `env:"DEV_AUTH_EMAIL" envDefault:"dev@example.com"`

	OIDC OIDCConfig `envPrefix:"OIDC_"`
}

type OIDCConfig struct {
	IssuerURL    string `env:"ISSUER_URL" envDefault:"https://accounts.google.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/api/v1/auth/callback"`
	Scope        string `env:"SCOPE" envDefault:"openid email profile"`
}

type CronConfig struct {
	Secret string `env:"CRON_SECRET"`
}

type JobsConfig struct {
	Timeout              time.Duration `env:"JOB_TIMEOUT" envDefault:"2m"`
	RunLogWriteTimeout   time.Duration `env:"JOB_RUN_LOG_TIMEOUT" envDefault:"5s"`
	SyncCooldown         time.Duration `env:"DIRECTORY_SYNC_COOLDOWN" envDefault:"5m"`
	DeadlineHorizonDays  int           `env:"DEADLINE_HORIZON_DAYS" envDefault:"30"`
	SLAReminderWindow    time.Duration `env:"SLA_REMINDER_WINDOW" envDefault:"24h"`
	SLAReminderInterval  time.Duration `env:"SLA_REMINDER_INTERVAL" envDefault:"24h"`
	DigestDueSoonDays    int           `env:"DIGEST_DUE_SOON_DAYS" envDefault:"7"`
	DigestSendConcurrent int           `env:"DIGEST_SEND_CONCURRENCY" envDefault:"4"`
}

type SheetsConfig struct {
	SpreadsheetID string `env:"TEXAS_AUTHORS_SPREADSHEET_ID"`
	SheetName     string `env:"TEXAS_AUTHORS_SHEET_NAME"`
	Range         string `env:"TEXAS_AUTHORS_RANGE"`

	CredentialsJSON   string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	CredentialsBase64 string `env:"GOOGLE_SERVICE_ACCOUNT_JSON_BASE64"`
	CredentialsFile   string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	Endpoint string        `env:"GOOGLE_SHEETS_ENDPOINT" envDefault:"https://sheets.googleapis.com"`
	Timeout  time.Duration `env:"GOOGLE_SHEETS_TIMEOUT" envDefault:"30s"`
}

type SMTPConfig struct {
	Host          string `env:"SMTP_HOST"`
	Port          int    `env:"SMTP_PORT" envDefault:"587"`
	User          string `env:"SMTP_USER"`
	Pass          string `env:"SMTP_PASS"`
	From          string `env:"SMTP_FROM"` // e.g. "Ops Desk <no-reply@your.org>"
	SkipTLSVerify bool   `env:"SMTP_SKIP_TLS_VERIFY" envDefault:"false"`
}

type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

type AMQPConfig struct {
	URL        string `env:"AMQP_URL"`
	Exchange   string `env:"AMQP_EXCHANGE" envDefault:"ops.events"`
	RoutingKey string `env:"AMQP_ROUTING_KEY" envDefault:"job.completed"`
}

// Load reads .env (when present) and the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

// Parse builds the configuration from the environment only.
func Parse() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *AppConfig) Sanitize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	c.Auth.AllowedEmails = normalizeList(c.Auth.AllowedEmails)
	c.Auth.AllowedDomains = normalizeList(c.Auth.AllowedDomains)
	c.Auth.AdminEmails = normalizeList(c.Auth.AdminEmails)

	if c.Jobs.Timeout <= 0 {
		c.Jobs.Timeout = 2 * time.Minute
	}
	if c.Jobs.RunLogWriteTimeout <= 0 {
		c.Jobs.RunLogWriteTimeout = 5 * time.Second
	}
	if c.Jobs.SyncCooldown <= 0 {
		c.Jobs.SyncCooldown = 5 * time.Minute
	}
	if c.Jobs.DeadlineHorizonDays <= 0 {
		c.Jobs.DeadlineHorizonDays = 30
	}
	if c.Jobs.DigestSendConcurrent <= 0 {
		c.Jobs.DigestSendConcurrent = 4
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// Validate checks cross-field requirements shared by every entrypoint.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q (valid options: mysql, postgres, sqlite)", c.Database.Driver)
	}
	return nil
}

// ValidateServer checks the settings the HTTP server cannot start without.
func (c *AppConfig) ValidateServer() error {
	if len(c.Auth.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if c.Auth.Mode == AuthModeOIDC {
		if c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.ClientSecret == "" {
			return errors.New("OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required when AUTH_MODE=oidc")
		}
		if len(c.Auth.AllowedEmails) == 0 && len(c.Auth.AllowedDomains) == 0 {
			return errors.New("ALLOWED_SIGNER_EMAILS or ALLOWED_SIGNER_DOMAINS is required when AUTH_MODE=oidc")
		}
	}
	if c.Auth.Mode == AuthModeMock && c.IsProduction() {
		return errors.New("AUTH_MODE=mock is not allowed in production")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
