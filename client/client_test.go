package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-lms-client/client"
	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// seenRequest is what the fake API observed for one request.
type seenRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	Body          string
}

// fakeAPI is an httptest server with a pluggable handler that records every
// request it receives under /api/.
type fakeAPI struct {
	t       *testing.T
	server  *httptest.Server
	lock    sync.Mutex
	seen    []seenRequest
	handler http.HandlerFunc
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t, handler: handler}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.lock.Lock()
		api.seen = append(api.seen, seenRequest{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, "/api/"),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get(client.RequestIDHeader),
			Body:          string(body),
		})
		api.lock.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		api.handler(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) baseURL() string {
	return a.server.URL + "/api/"
}

func (a *fakeAPI) requests() []seenRequest {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]seenRequest(nil), a.seen...)
}

func (a *fakeAPI) requestsTo(path string) []seenRequest {
	var out []seenRequest
	for _, r := range a.requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bearerHandler accepts only the given access token on protected paths and
// answers refreshes with newAccess when the refresh token matches.
func bearerHandler(validAccess *string, refreshToken, newAccess string, refreshStatus int) http.HandlerFunc {
	var lock sync.Mutex
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/")
		switch {
		case path == client.DefaultRefreshPath:
			var req struct {
				Refresh string `json:"refresh"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if refreshStatus != http.StatusOK || req.Refresh != refreshToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
				return
			}
			lock.Lock()
			*validAccess = newAccess
			lock.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{"access": newAccess})
		case strings.HasPrefix(path, "auth/"):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		case strings.HasPrefix(path, "categories"), strings.HasPrefix(path, "courses/") && !strings.HasSuffix(path, "/review/"):
			writeJSON(w, http.StatusOK, map[string]any{"id": 5, "title": "Go"})
		default:
			lock.Lock()
			ok := r.Header.Get("Authorization") == "Bearer "+*validAccess
			lock.Unlock()
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		}
	}
}

type harness struct {
	api      *fakeAPI
	sessions *session.Manager
	repo     *repofake.FakeSessionRepo
	recorder *notify.Recorder
	client   *client.Client
}

func newHarness(t *testing.T, handler http.HandlerFunc, s session.Session, opts ...client.Option) *harness {
	t.Helper()
	api := newFakeAPI(t, handler)
	repo := repofake.NewFakeSessionRepoWith(s)
	sessions, err := session.NewManager(context.Background(), repo)
	require.NoError(t, err)

	recorder := notify.NewRecorder()
	opts = append([]client.Option{
		client.WithNotifier(recorder),
		client.WithNavigator(recorder),
		client.WithRedirectDelay(10 * time.Millisecond),
	}, opts...)
	c, err := client.New(api.baseURL(), sessions, opts...)
	require.NoError(t, err)
	return &harness{api: api, sessions: sessions, repo: repo, recorder: recorder, client: c}
}

func studentSession(access, refresh string) session.Session {
	return session.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         session.RoleStudent,
		Profile:      json.RawMessage(`{"id":3,"email":"ana@example.com"}`),
	}
}

func requireSessionCleared(t *testing.T, h *harness) {
	t.Helper()
	require.Equal(t, session.Session{}, h.sessions.State())
	_, err := h.repo.Load(context.Background())
	require.Error(t, err)

	select {
	case path := <-h.recorder.Navigated:
		require.Equal(t, "/", path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected navigation to the entry page")
	}
	require.Equal(t, []notify.Message{{Level: notify.LevelError, Text: client.SessionExpiredMessage}}, h.recorder.Messages())
}

func TestClient_PublicPathsNeverCarryCredentials(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))
	ctx := context.Background()

	for _, path := range []string{"categories/", "categories/2/", "courses/", "courses/5/", "/courses/5/content/", "reviews/highlight/"} {
		_, err := h.client.Do(ctx, &client.Request{Path: path, Header: http.Header{"Authorization": {"Bearer stale"}}})
		require.NotErrorIs(t, err, client.ErrSessionExpired, path)
	}

	require.Empty(t, h.api.requestsTo(client.DefaultRefreshPath))
	for _, r := range h.api.requests() {
		require.Empty(t, r.Authorization, r.Path)
	}
	require.Equal(t, "access-1", h.sessions.AccessToken())
}

func TestClient_ProtectedPathsCarryCurrentToken(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))
	ctx := context.Background()

	require.NoError(t, h.client.Get(ctx, "student/courses/", nil, nil))
	require.NoError(t, h.client.Post(ctx, "courses/5/review/", map[string]any{"rating": 5}, nil))

	seen := h.api.requests()
	require.Len(t, seen, 2)
	for _, r := range seen {
		require.Equal(t, "Bearer access-1", r.Authorization)
	}
	require.Equal(t, "application/json", seen[1].ContentType)
	require.JSONEq(t, `{"rating":5}`, seen[1].Body)
}

func TestClient_ProtectedPathWithoutTokenIsSentUnauthenticated(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, session.Session{})

	_, err := h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
	require.NoError(t, err)
	require.Empty(t, h.api.requests()[0].Authorization)
}

func TestClient_RootedPathsResolveUnderAPIRoot(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))
	ctx := context.Background()

	_, err := h.client.Do(ctx, &client.Request{Path: "/api/teacher/profile/"})
	require.NoError(t, err)
	_, err = h.client.Do(ctx, &client.Request{Path: "/api/courses/5/"})
	require.NoError(t, err)
	_, err = h.client.Do(ctx, &client.Request{Path: h.api.baseURL() + "student/courses/"})
	require.NoError(t, err)

	seen := h.api.requests()
	require.Len(t, seen, 3)
	require.Equal(t, "teacher/profile/", seen[0].Path)
	require.Equal(t, "Bearer access-1", seen[0].Authorization)
	require.Equal(t, "courses/5/", seen[1].Path)
	require.Empty(t, seen[1].Authorization)
	require.Equal(t, "student/courses/", seen[2].Path)
	require.Equal(t, "Bearer access-1", seen[2].Authorization)
	require.Empty(t, h.api.requestsTo(client.DefaultRefreshPath))
}

func TestClient_ForeignHostNeverGetsToken(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))

	var gotAuth []string
	var lock sync.Mutex
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		lock.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "no"})
	}))
	t.Cleanup(other.Close)

	_, err := h.client.Do(context.Background(), &client.Request{
		Path:   other.URL + "/api/student/courses/",
		Header: http.Header{"Authorization": {"Bearer caller"}},
	})
	require.Equal(t, http.StatusUnauthorized, client.StatusCode(err))
	require.NotErrorIs(t, err, client.ErrSessionExpired)

	lock.Lock()
	defer lock.Unlock()
	require.Equal(t, []string{""}, gotAuth)
	require.Empty(t, h.api.requests())
	require.Equal(t, "access-1", h.sessions.AccessToken())
	require.Empty(t, h.recorder.Messages())
}

func TestClient_CoursesScenario(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))

	resp, err := h.client.Do(context.Background(), &client.Request{Path: "courses/5/"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"id":5,"title":"Go"}`, string(resp.Body))
	require.Empty(t, h.recorder.Messages())
}

func TestClient_RefreshAndRetry(t *testing.T) {
	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusOK), studentSession("expired-access", "refresh-1"))

	var profile map[string]any
	err := h.client.Get(context.Background(), "teacher/profile/", nil, &profile)
	require.NoError(t, err)
	require.Equal(t, true, profile["ok"])

	require.Equal(t, "new-access", h.sessions.AccessToken())
	require.Equal(t, "refresh-1", h.sessions.RefreshToken())
	require.Equal(t, session.RoleStudent, h.sessions.Role())

	attempts := h.api.requestsTo("teacher/profile/")
	require.Len(t, attempts, 2)
	require.Equal(t, "Bearer expired-access", attempts[0].Authorization)
	require.Equal(t, "Bearer new-access", attempts[1].Authorization)
	require.Equal(t, attempts[0].RequestID, attempts[1].RequestID)

	refreshes := h.api.requestsTo(client.DefaultRefreshPath)
	require.Len(t, refreshes, 1)
	require.Empty(t, refreshes[0].Authorization)
	require.JSONEq(t, `{"refresh":"refresh-1"}`, refreshes[0].Body)
	require.Empty(t, h.recorder.Messages())
}

func TestClient_RetryReplaysBody(t *testing.T) {
	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusOK), studentSession("expired-access", "refresh-1"))

	err := h.client.Put(context.Background(), "teacher/profile/", map[string]string{"bio": "hello"}, nil)
	require.NoError(t, err)

	attempts := h.api.requestsTo("teacher/profile/")
	require.Len(t, attempts, 2)
	require.Equal(t, attempts[0].Body, attempts[1].Body)
	require.JSONEq(t, `{"bio":"hello"}`, attempts[1].Body)
}

func TestClient_RefreshRejected(t *testing.T) {
	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusUnauthorized), studentSession("expired-access", "refresh-1"))

	_, err := h.client.Do(context.Background(), &client.Request{Path: "teacher/profile/"})
	require.Error(t, err)
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.True(t, client.IsUnauthorized(err))

	require.Len(t, h.api.requestsTo("teacher/profile/"), 1)
	require.Len(t, h.api.requestsTo(client.DefaultRefreshPath), 1)
	requireSessionCleared(t, h)
}

func TestClient_RefreshMalformed(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, client.DefaultRefreshPath) {
			writeJSON(w, http.StatusOK, map[string]string{"token": "wrong-shape"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	}, studentSession("expired-access", "refresh-1"))

	_, err := h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.ErrorIs(t, err, client.ErrMalformedRefreshResponse)
	requireSessionCleared(t, h)
}

func TestClient_RefreshNetworkFailure(t *testing.T) {
	refreshAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	refreshAPI.Close()

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	}, studentSession("expired-access", "refresh-1"), client.WithRefreshPath(refreshAPI.URL+"/api/auth/token/refresh/"))

	_, err := h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
	require.ErrorIs(t, err, client.ErrSessionExpired)
	requireSessionCleared(t, h)
}

func TestClient_NoRefreshToken(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	}, session.Session{AccessToken: "expired-access", Role: session.RoleTeacher})

	_, err := h.client.Do(context.Background(), &client.Request{Path: "teacher/courses/"})
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.ErrorIs(t, err, client.ErrNoRefreshToken)
	require.Empty(t, h.api.requestsTo(client.DefaultRefreshPath))
	requireSessionCleared(t, h)
}

func TestClient_RetriedRequestRejectedAgain(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, client.DefaultRefreshPath) {
			writeJSON(w, http.StatusOK, map[string]string{"access": "still-not-good"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	}, studentSession("expired-access", "refresh-1"))

	_, err := h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
	require.Error(t, err)
	require.NotErrorIs(t, err, client.ErrSessionExpired)
	require.True(t, client.IsUnauthorized(err))

	require.Len(t, h.api.requestsTo("student/courses/"), 2)
	require.Len(t, h.api.requestsTo(client.DefaultRefreshPath), 1)
	require.Equal(t, "still-not-good", h.sessions.AccessToken())
}

func TestClient_PublicUnauthorizedPassesThrough(t *testing.T) {
	valid := "access-1"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "access-2", http.StatusOK), studentSession("access-1", "refresh-1"))

	err := h.client.Post(context.Background(), "auth/student/login/", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	}, nil)
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Detail())
	require.NotErrorIs(t, err, client.ErrSessionExpired)

	seen := h.api.requests()
	require.Len(t, seen, 1)
	require.Empty(t, seen[0].Authorization)
	require.Equal(t, "access-1", h.sessions.AccessToken())
	require.Empty(t, h.recorder.Messages())
}

func TestClient_NonUnauthorizedErrorsPassThrough(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Only teachers can access this"})
	}, studentSession("access-1", "refresh-1"))

	_, err := h.client.Do(context.Background(), &client.Request{Path: "teacher/courses/"})
	require.Equal(t, http.StatusForbidden, client.StatusCode(err))
	require.Contains(t, err.Error(), "Only teachers can access this")
	require.Len(t, h.api.requests(), 1)
	require.Equal(t, "access-1", h.sessions.AccessToken())
}

func TestClient_SetTokensFailureKeepsSession(t *testing.T) {
	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusOK), studentSession("expired-access", "refresh-1"))
	h.repo.SaveErr = errors.New("disk full")

	_, err := h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
	require.Error(t, err)
	require.NotErrorIs(t, err, client.ErrSessionExpired)
	require.Equal(t, "expired-access", h.sessions.AccessToken())
	require.Empty(t, h.recorder.Messages())
}

func TestClient_MultipartContentType(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("video")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		data, _ := io.ReadAll(f)
		writeJSON(w, http.StatusCreated, map[string]any{"title": r.FormValue("title"), "size": len(data)})
	}, session.Session{AccessToken: "teacher-access", RefreshToken: "r", Role: session.RoleTeacher})

	var out struct {
		Title string `json:"title"`
		Size  int    `json:"size"`
	}
	err := h.client.PostMultipart(context.Background(), "teacher/sections/1/lessons/", &client.MultipartForm{
		Fields: map[string]string{"title": "Intro", "order": "1"},
		Files:  []client.FormFile{{Field: "video", FileName: "intro.mp4", Content: strings.NewReader("0123456789")}},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "Intro", out.Title)
	require.Equal(t, 10, out.Size)

	seen := h.api.requests()[0]
	require.True(t, strings.HasPrefix(seen.ContentType, "multipart/form-data; boundary="), seen.ContentType)
	require.Equal(t, "Bearer teacher-access", seen.Authorization)
}

func TestClient_ConcurrentRefreshesAreNotCoalesced(t *testing.T) {
	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusOK), studentSession("expired-access", "refresh-1"))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.client.Do(context.Background(), &client.Request{Path: "student/courses/"})
		}()
	}
	wg.Wait()

	refreshes := len(h.api.requestsTo(client.DefaultRefreshPath))
	require.GreaterOrEqual(t, refreshes, 1)
	require.LessOrEqual(t, refreshes, 3)
	require.Equal(t, "new-access", h.sessions.AccessToken())
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := client.NewMetrics(reg)
	require.NoError(t, err)

	valid := "fresh-access"
	h := newHarness(t, bearerHandler(&valid, "refresh-1", "new-access", http.StatusOK),
		studentSession("expired-access", "refresh-1"), client.WithMetrics(metrics))

	require.NoError(t, h.client.Get(context.Background(), "student/courses/", nil, nil))

	count, err := testutil.GatherAndCount(reg, "lms_client_token_refresh_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "lms_client_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = client.NewMetrics(reg)
	require.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := client.New("", repofakeManager(t))
	require.Error(t, err)
	_, err = client.New("/api/", repofakeManager(t))
	require.Error(t, err)
	_, err = client.New("http://127.0.0.1:8000/api/", nil)
	require.Error(t, err)
}

func repofakeManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(context.Background(), repofake.NewFakeSessionRepo())
	require.NoError(t, err)
	return m
}
