package client

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultRedirectDelay is how long the session-expired message stays on
	// screen before the user is sent to the entry page.
	DefaultRedirectDelay = 1500 * time.Millisecond
	DefaultEntryPath     = "/"
	DefaultTimeout       = 15 * time.Second

	SessionExpiredMessage = "Session expired. Please login again"
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithNavigator(n notify.Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.redirectDelay = d
		}
	}
}

// WithEntryPath sets where the user is sent after the session expires.
func WithEntryPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.entryPath = path
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

// WithPathMatcher replaces the public allow-list. Requests are classified by
// their resolved URL, so m's apiPrefix must be the base URL's path.
func WithPathMatcher(m *PathMatcher) Option {
	return func(c *Client) {
		if m != nil {
			c.paths = m
		}
	}
}

// WithRateLimiter throttles outgoing requests, retries included.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
