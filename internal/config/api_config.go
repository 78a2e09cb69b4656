package config

import "time"

const (
	apiBaseURLVar    = "LMS_API_BASE_URL"
	refreshPathVar   = "LMS_REFRESH_PATH"
	httpTimeoutVar   = "LMS_HTTP_TIMEOUT"
	redirectDelayVar = "LMS_REDIRECT_DELAY"
	rateLimitVar     = "LMS_RATE_LIMIT"
	rateBurstVar     = "LMS_RATE_BURST"
)

// APIConfig describes how the client reaches the marketplace API.
type APIConfig interface {
	GetAPIBaseURL() string
	GetRefreshPath() string
	GetHTTPTimeout() time.Duration
	GetRedirectDelay() time.Duration
	// GetRateLimit is requests per second; zero disables throttling.
	GetRateLimit() float64
	GetRateBurst() int
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://127.0.0.1:8000/api/")
}

func (API) GetRefreshPath() string {
	return GetEnv(refreshPathVar, "auth/token/refresh/")
}

func (API) GetHTTPTimeout() time.Duration {
	return GetDurationEnv(httpTimeoutVar, 15*time.Second)
}

func (API) GetRedirectDelay() time.Duration {
	return GetDurationEnv(redirectDelayVar, 1500*time.Millisecond)
}

func (API) GetRateLimit() float64 {
	return GetFloatEnv(rateLimitVar, 0)
}

func (API) GetRateBurst() int {
	return GetIntEnv(rateBurstVar, 1)
}
