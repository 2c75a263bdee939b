package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SESConfig holds credentials for the hosted email provider.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// SMTPConfig holds settings for the direct SMTP fallback provider.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// EventConfig describes the event attendees are invited to. The invite blob
// is generated from these fields on every request.
type EventConfig struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
}

// Config holds all configuration for the application, resolved once at
// startup so the active storage and provider chain is deterministic.
type Config struct {
	Environment string
	Port        string

	// DatabaseURL selects the postgres store when set; otherwise
	// registrations fall back to a flat file under DataDir.
	DatabaseURL string
	DataDir     string

	AdminSecret string

	FromAddress string
	FromName    string
	SES         SESConfig
	SMTP        SMTPConfig

	CORSAllowedOrigins []string

	// RequestTimeout bounds storage and provider calls so a slow collaborator
	// cannot hang a request.
	RequestTimeout time.Duration

	Event EventConfig
}

// Load loads configuration from environment variables.
// It attempts to load from a .env file if not in production.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production we rely on system environment variables and a missing
	// .env file is expected.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment: env,
		Port:        getenvDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     getenvDefault("DATA_DIR", "data"),
		AdminSecret: os.Getenv("ADMIN_SECRET"),
		FromAddress: getenvDefault("FROM_EMAIL", "rsvp@example.org"),
		FromName:    getenvDefault("FROM_NAME", "Event Team"),
		SES: SESConfig{
			Region:             getenvDefault("AWS_REGION", "us-east-1"),
			AccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			InsecureSkipVerify: os.Getenv("SES_INSECURE_SKIP_VERIFY") == "true",
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		RequestTimeout: 5 * time.Second,
	}

	cfg.SMTP.Port = 587
	if s := os.Getenv("SMTP_PORT"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", s, err)
		}
		cfg.SMTP.Port = p
	}

	if s := os.Getenv("REQUEST_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
		}
		cfg.RequestTimeout = d
	}

	if s := os.Getenv("CORS_ALLOWED_ORIGINS"); s != "" {
		for _, origin := range strings.Split(s, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	ev, err := loadEvent()
	if err != nil {
		return nil, err
	}
	cfg.Event = ev

	if cfg.AdminSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("ADMIN_SECRET must be set in production")
		}
		cfg.AdminSecret = "change-me-in-production"
		log.Printf("Warning: ADMIN_SECRET not set, using insecure default")
	}

	return cfg, nil
}

// SESConfigured reports whether the hosted email provider has credentials.
func (c *Config) SESConfigured() bool {
	return c.SES.AccessKeyID != "" && c.SES.SecretAccessKey != ""
}

// SMTPConfigured reports whether the direct SMTP provider has a host.
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != ""
}

func loadEvent() (EventConfig, error) {
	ev := EventConfig{
		Summary:     getenvDefault("EVENT_SUMMARY", "Event Registration"),
		Description: getenvDefault("EVENT_DESCRIPTION", "Thank you for registering. We look forward to seeing you."),
		Location:    os.Getenv("EVENT_LOCATION"),
	}

	start := getenvDefault("EVENT_START", "2025-12-09T12:00:00+01:00")
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return EventConfig{}, fmt.Errorf("invalid EVENT_START %q: %w", start, err)
	}
	ev.Start = t
	ev.End = t

	if s := os.Getenv("EVENT_END"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return EventConfig{}, fmt.Errorf("invalid EVENT_END %q: %w", s, err)
		}
		ev.End = t
	}
	return ev, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
