package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	baseURLVar  = "BASE_URL"
	logLevelVar = "LOG_LEVEL"
	tracingVar  = "TRACING"
)

type EnvVars struct {
	overrides Overrides
}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Auth Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the auth service origin requests are resolved against
// (e.g., "https://auth.example.com"). Trailing slashes are removed.
func (e EnvVars) GetBaseURL() string {
	baseURL := e.overrides.BaseURL
	if baseURL == "" {
		baseURL = GetEnv(baseURLVar, "http://localhost:8000")
	}
	return strings.TrimRight(baseURL, "/")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetTracingEnabled() bool {
	return GetBoolEnv(tracingVar, false)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetBoolEnv(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
