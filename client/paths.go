package client

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultPublicPaths are the API paths reachable without authentication. A
// path is public when it equals one of these or is a descendant of one.
var DefaultPublicPaths = []string{
	"categories",
	"courses",
	"auth/student/login",
	"auth/teacher/login",
	"auth/student/register",
	"auth/teacher/register",
	"reviews/highlight",
	"reviews/home",
}

// DefaultProtectedPatterns carve protected paths out of public prefixes.
// Posting a review lives under courses/ but requires a student token.
var DefaultProtectedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^courses/\d+/review$`),
}

// PathMatcher classifies API paths as public or protected.
type PathMatcher struct {
	apiPrefix string
	public    []string
	protected []*regexp.Regexp
}

// NewPathMatcher builds a matcher. apiPrefix is the API root path on the host
// (e.g. "/api/") and is stripped from absolute URLs before matching.
func NewPathMatcher(apiPrefix string, public []string, protected []*regexp.Regexp) *PathMatcher {
	normalized := make([]string, 0, len(public))
	for _, p := range public {
		if p = strings.Trim(p, "/"); p != "" {
			normalized = append(normalized, p)
		}
	}
	return &PathMatcher{
		apiPrefix: strings.Trim(apiPrefix, "/"),
		public:    normalized,
		protected: protected,
	}
}

// DefaultPathMatcher is the marketplace allow-list under the given API prefix.
func DefaultPathMatcher(apiPrefix string) *PathMatcher {
	return NewPathMatcher(apiPrefix, DefaultPublicPaths, DefaultProtectedPatterns)
}

// Normalize reduces a request target to its API-relative form: scheme, host,
// API prefix, query string and surrounding slashes are removed.
func (m *PathMatcher) Normalize(raw string) string {
	p := raw
	rooted := strings.HasPrefix(p, "/")

	if strings.Contains(p, "://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
			rooted = true
		}
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	p = strings.Trim(p, "/")
	if rooted && m.apiPrefix != "" {
		if p == m.apiPrefix {
			p = ""
		} else {
			p = strings.TrimPrefix(p, m.apiPrefix+"/")
		}
	}
	return p
}

// IsPublic reports whether requests to raw must go out without credentials.
func (m *PathMatcher) IsPublic(raw string) bool {
	p := m.Normalize(raw)
	if p == "" {
		return false
	}
	for _, re := range m.protected {
		if re.MatchString(p) {
			return false
		}
	}
	for _, prefix := range m.public {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
