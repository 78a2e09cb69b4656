package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	devSecretVar      = "DEVSERVER_SECRET"
	devAccessTTLVar   = "DEVSERVER_ACCESS_TTL"
	devRefreshTTLVar  = "DEVSERVER_REFRESH_TTL"
	defaultDevSecret  = "dev-secret-not-for-production"
	minProdSecretSize = 32
)

type DevServerConfig interface {
	GetPort() string
	GetDevServerSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetPort() string {
	port := GetEnv(portEnvVar, "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (DevServer) GetDevServerSecret() string {
	return GetEnv(devSecretVar, defaultDevSecret)
}

func (DevServer) GetAccessTokenTTL() time.Duration {
	return GetDurationEnv(devAccessTTLVar, 5*time.Minute)
}

func (DevServer) GetRefreshTokenTTL() time.Duration {
	return GetDurationEnv(devRefreshTTLVar, 24*time.Hour)
}

// Validate rejects the default signing secret outside DEV.
func Validate(c Config) error {
	if c.GetEnv() == "DEV" {
		return nil
	}
	secret := c.GetDevServerSecret()
	if secret == defaultDevSecret {
		return fmt.Errorf("%s must be set outside DEV", devSecretVar)
	}
	if len(secret) < minProdSecretSize {
		return fmt.Errorf("%s must be at least %d characters (got %d)", devSecretVar, minProdSecretSize, len(secret))
	}
	return nil
}
