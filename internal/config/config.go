package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	DevServer
}

var loadDotEnv sync.Once

// New returns the environment-backed configuration. A .env file in the working
// directory is loaded once, without overriding variables that are already set.
func New() Config {
	loadDotEnv.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file found, using environment variables")
		}
	})
	return mainConfig{}
}
