package config

import "time"

type SessionConfig interface {
	GetBaseURL() string
	GetLoginPath() string
	GetTokenPath() string
	GetRefreshPath() string
	GetUserInfoPath() string
	GetHTTPTimeout() time.Duration
}

type Session struct{}

func (Session) GetTokenPath() string {
	return "/auth/login"
}

func (Session) GetRefreshPath() string {
	return "/auth/refresh"
}

func (Session) GetUserInfoPath() string {
	return "/auth/me"
}

func (Session) GetHTTPTimeout() time.Duration {
	return GetDurationEnv("HTTP_TIMEOUT", 30*time.Second)
}
