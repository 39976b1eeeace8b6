package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingDatabase = errors.New("either DATABASE_URL or DB_HOST, DB_USER, DB_NAME must be set")

// Config holds everything the server and the scheduled jobs need.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Revision string `env:"GIT_REVISION" envDefault:"unknown"`

	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," envDefault:"127.0.0.1"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`

	JWTSecret  string `env:"JWT_SECRET"`
	AdminToken string `env:"ADMIN_TOKEN"`

	Database Database
	Email    Email
	Sentry   Sentry
	FCM      FCM
	Groups   Groups
}

// Database mirrors the two ways the service can be pointed at postgres.
type Database struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnectTimeout  time.Duration `env:"DB_CONNECT_RETRY_TIMEOUT" envDefault:"30s"`
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type Email struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	FromEmail      string `env:"SENDGRID_NOTIFICATIONS_FROM_EMAIL" envDefault:"noreply@foodshare.local"`
	FromName       string `env:"SENDGRID_FROM_NAME" envDefault:"foodshare"`
	SiteURL        string `env:"SITE_URL" envDefault:"http://localhost:8080"`
}

type Sentry struct {
	DSN       string `env:"SENTRY_DSN"`
	ClientDSN string `env:"SENTRY_CLIENT_DSN"`
}

// FCM is handed to frontends through /api/config.
type FCM struct {
	APIKey            string `env:"FCM_CLIENT_API_KEY"`
	MessagingSenderID string `env:"FCM_CLIENT_MESSAGING_SENDER_ID"`
	ProjectID         string `env:"FCM_CLIENT_PROJECT_ID"`
	AppID             string `env:"FCM_CLIENT_APP_ID"`
}

// Groups configures the membership lifecycle and summary jobs.
type Groups struct {
	DaysUntilInactive                int `env:"NUMBER_OF_DAYS_UNTIL_INACTIVE_IN_GROUP" envDefault:"30"`
	InactiveMonthsUntilRemovalNotice int `env:"NUMBER_OF_INACTIVE_MONTHS_UNTIL_REMOVAL_FROM_GROUP_NOTIFICATION" envDefault:"6"`
	DaysAfterNoticeUntilRemoval      int `env:"NUMBER_OF_DAYS_AFTER_REMOVAL_NOTIFICATION_WE_ACTUALLY_REMOVE_THEM" envDefault:"7"`
	DaysUntilGroupInactive           int `env:"NUMBER_OF_DAYS_UNTIL_GROUP_INACTIVE" envDefault:"62"`

	SummaryWeekday time.Weekday `env:"GROUP_SUMMARY_WEEKDAY" envDefault:"0"`
	SummaryHour    int          `env:"GROUP_SUMMARY_HOUR" envDefault:"8"`

	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`
}

// Load reads an optional .env file and then parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	d := c.Database
	if d.URL == "" && (d.Host == "" || d.User == "" || d.Name == "") {
		return ErrMissingDatabase
	}
	g := c.Groups
	if g.DaysUntilInactive <= 0 {
		return fmt.Errorf("NUMBER_OF_DAYS_UNTIL_INACTIVE_IN_GROUP must be positive, got %d", g.DaysUntilInactive)
	}
	if g.InactiveMonthsUntilRemovalNotice < 0 || g.DaysAfterNoticeUntilRemoval < 0 {
		return errors.New("removal thresholds must not be negative")
	}
	if g.SummaryHour < 0 || g.SummaryHour > 23 {
		return fmt.Errorf("GROUP_SUMMARY_HOUR must be between 0 and 23, got %d", g.SummaryHour)
	}
	if g.SummaryWeekday < time.Sunday || g.SummaryWeekday > time.Saturday {
		return fmt.Errorf("GROUP_SUMMARY_WEEKDAY must be between 0 and 6, got %d", g.SummaryWeekday)
	}
	return nil
}

// IsDevelopment reports whether the server runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
