package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	sessionBackendVar = "LMS_SESSION_BACKEND"
	sessionFileVar    = "LMS_SESSION_FILE"
	sessionKeyVar     = "LMS_SESSION_KEY"
	redisAddrVar      = "REDIS_ADDR"
	redisPasswordVar  = "REDIS_PASSWORD"
	redisDBVar        = "REDIS_DB"
)

type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
)

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionFile() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() SessionBackend {
	switch SessionBackend(strings.ToLower(GetEnv(sessionBackendVar, ""))) {
	case SessionBackendMemory:
		return SessionBackendMemory
	case SessionBackendRedis:
		return SessionBackendRedis
	default:
		return SessionBackendFile
	}
}

func (Session) GetSessionFile() string {
	if file := os.Getenv(sessionFileVar); file != "" {
		return file
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "lms-session.json")
	}
	return filepath.Join(dir, "lms", "session.json")
}

func (Session) GetSessionKey() string {
	return GetEnv(sessionKeyVar, "auth-storage")
}

func (Session) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Session) GetRedisDB() int {
	return GetIntEnv(redisDBVar, 0)
}
