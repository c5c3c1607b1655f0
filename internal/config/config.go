// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EMAIL_MODE values.
const (
	EmailModeHTTP = "http"
	EmailModeLog  = "log"
)

// Config holds configuration knobs for the HTTP server, the confirmation
// email sender, and the showcase rotator.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	EmailMode       string
	EmailEndpoint   string
	EmailServiceID  string
	EmailTemplateID string
	EmailAccountID  string
	EmailTimeout    time.Duration

	SlideInterval time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. A local
// .env file is applied first when present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		EmailMode:       getenv("EMAIL_MODE", EmailModeLog),
		EmailEndpoint:   getenv("EMAIL_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),
		EmailServiceID:  getenv("EMAIL_SERVICE_ID", "service_nnshs7j"),
		EmailTemplateID: getenv("EMAIL_TEMPLATE_ID", "template_e1wdkjg"),
		EmailAccountID:  getenv("EMAIL_ACCOUNT_ID", "HZlMyOBKB1sZrXPkK"),
		EmailTimeout:    durenvms("EMAIL_TIMEOUT_MS", 10000),
		SlideInterval:   durenvms("SLIDE_INTERVAL_MS", 5000),
	}
}
