// Package config reads the server configuration from the environment.
// Every variable has a development default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Zachkp/greek-portfolio/internal/contact"
	"github.com/Zachkp/greek-portfolio/internal/frame"
)

const (
	ContactModeSimulate = "simulate"
	ContactModeSMTP     = "smtp"
)

type Config struct {
	Port         string
	DBPath       string
	ContentPath  string
	TemplateGlob string
	StaticDir    string

	SMTP contact.SMTPConfig

	AdminUsername string
	AdminPassword string
	// AdminDefaults is set when either admin credential fell back to its default.
	AdminDefaults bool

	ContactMode          string
	SimulatedDelay       time.Duration
	SimulatedFailureRate float64
	SuccessWindow        time.Duration
	ErrorWindow          time.Duration

	VisitorRetention time.Duration
	MessageRetention time.Duration
	FrameInterval    time.Duration
}

// Load reads the environment. Malformed values are errors; missing ones
// take their defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		DBPath:       getenv("DB_PATH", "portfolio.db"),
		ContentPath:  getenv("CONTENT_PATH", "content.yaml"),
		TemplateGlob: getenv("TEMPLATE_GLOB", "templates/*"),
		StaticDir:    getenv("STATIC_DIR", "./static"),
		SMTP: contact.SMTPConfig{
			Host: getenv("SMTP_HOST", "smtp.gmail.com"),
			Port: getenv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			To:   getenv("TO_EMAIL", "adil.afzal@example.com"),
		},
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		ContactMode:   getenv("CONTACT_MODE", ContactModeSimulate),
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
		cfg.AdminDefaults = true
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
		cfg.AdminDefaults = true
	}

	switch cfg.ContactMode {
	case ContactModeSimulate, ContactModeSMTP:
	default:
		return nil, fmt.Errorf("config: CONTACT_MODE must be %q or %q, got %q", ContactModeSimulate, ContactModeSMTP, cfg.ContactMode)
	}

	var err error
	durations := []struct {
		dst *time.Duration
		key string
		def time.Duration
	}{
		{&cfg.SimulatedDelay, "CONTACT_SIMULATED_DELAY", 1500 * time.Millisecond},
		{&cfg.SuccessWindow, "CONTACT_SUCCESS_WINDOW", contact.DefaultSuccessWindow},
		{&cfg.ErrorWindow, "CONTACT_ERROR_WINDOW", contact.DefaultErrorWindow},
		{&cfg.VisitorRetention, "VISITOR_RETENTION", 365 * 24 * time.Hour},
		{&cfg.MessageRetention, "MESSAGE_RETENTION", 180 * 24 * time.Hour},
		{&cfg.FrameInterval, "FRAME_INTERVAL", frame.DefaultInterval},
	}
	for _, d := range durations {
		if *d.dst, err = duration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.SimulatedFailureRate, err = float("CONTACT_SIMULATED_FAILURE_RATE", 0); err != nil {
		return nil, err
	}
	if cfg.SimulatedFailureRate < 0 || cfg.SimulatedFailureRate > 1 {
		return nil, fmt.Errorf("config: CONTACT_SIMULATED_FAILURE_RATE must be within [0,1], got %v", cfg.SimulatedFailureRate)
	}
	return cfg, nil
}

// Sender builds the contact sender the configuration selects.
func (c *Config) Sender() contact.Sender {
	if c.ContactMode == ContactModeSMTP {
		return contact.NewSMTPSender(c.SMTP)
	}
	return &contact.SimulatedSender{Delay: c.SimulatedDelay, FailureRate: c.SimulatedFailureRate}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}

func float(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
