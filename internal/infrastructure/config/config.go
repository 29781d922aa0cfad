package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "ABADMIN"

// Database holds Turso database configuration.
type Database struct {
	URL       string `envconfig:"URL" required:"true"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Auth holds settings for verifying sessions issued by the auth provider.
type Auth struct {
	JWTSecret   string   `envconfig:"JWT_SECRET"`
	Audience    string   `envconfig:"AUDIENCE" default:"authenticated"`
	Issuer      string   `envconfig:"ISSUER"`
	LoginURL    string   `envconfig:"LOGIN_URL"`
	CookieName  string   `envconfig:"COOKIE_NAME" default:"abadmin_session"`
	SuperAdmins []string `envconfig:"SUPERADMINS"`
}

type Analysis struct {
	URL     string        `envconfig:"URL"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

type GenAI struct {
	APIKey string `envconfig:"API_KEY"`
	Model  string `envconfig:"MODEL" default:"gemini-2.0-flash"`
}

// OTel holds OTLP metrics exporter configuration.
type OTel struct {
	Enabled  bool   `envconfig:"ENABLED"`
	Endpoint string `envconfig:"ENDPOINT"`
	Insecure bool   `envconfig:"INSECURE"`
}

// Config is the full process configuration, read from ABADMIN_* variables.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	BaseURL         string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`

	Database Database `envconfig:"DATABASE"`
	Auth     Auth     `envconfig:"AUTH"`
	Analysis Analysis `envconfig:"ANALYSIS"`
	GenAI    GenAI    `envconfig:"GENAI"`
	OTel     OTel     `envconfig:"OTEL"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Auth.SuperAdmins = normalizeEmails(cfg.Auth.SuperAdmins)
	return &cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("ABADMIN_AUTH_JWT_SECRET is required"))
	}
	if c.Auth.LoginURL == "" {
		errs = append(errs, errors.New("ABADMIN_AUTH_LOGIN_URL is required"))
	}
	if c.OTel.Enabled && c.OTel.Endpoint == "" {
		errs = append(errs, errors.New("ABADMIN_OTEL_ENDPOINT is required when OTel is enabled"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("ABADMIN_LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// IsSuperAdmin reports whether email is listed in ABADMIN_AUTH_SUPERADMINS.
func (a Auth) IsSuperAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range a.SuperAdmins {
		if e == email {
			return true
		}
	}
	return false
}

func normalizeEmails(in []string) []string {
	out := in[:0]
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
