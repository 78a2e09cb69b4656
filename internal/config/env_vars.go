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
	logLevelVar = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "LMS Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses a Go duration ("1500ms", "15s"). Invalid values fall back to the default.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func GetIntEnv(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func GetFloatEnv(envVar string, defaultValue float64) float64 {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
