package lms_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-lms-client/client"
	"github.com/jrsteele09/go-lms-client/lms"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/repofake"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          string
}

type testFixture struct {
	api      *lms.API
	sessions *session.Manager
	lock     sync.Mutex
	seen     []captured
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{routes: map[string]func(w http.ResponseWriter, r *http.Request){}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		path := strings.TrimPrefix(r.URL.Path, "/api/")
		f.lock.Lock()
		f.seen = append(f.seen, captured{
			Method:        r.Method,
			Path:          path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		handler, ok := f.routes[r.Method+" "+path]
		f.lock.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	sessions, err := session.NewManager(context.Background(), repofake.NewFakeSessionRepo())
	require.NoError(t, err)
	c, err := client.New(server.URL+"/api/", sessions)
	require.NoError(t, err)

	f.api = lms.New(c, sessions)
	f.sessions = sessions
	return f
}

func (f *testFixture) handle(route string, status int, body any) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.routes[route] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}
}

func (f *testFixture) last() captured {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.seen[len(f.seen)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("student login stores session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.handle("POST auth/student/login/", http.StatusOK, map[string]any{
			"access":  "acc",
			"refresh": "ref",
			"student": map[string]any{"id": 3, "full_name": "Ana", "email": "ana@example.com"},
		})

		student, err := f.api.StudentLogin(ctx, lms.Credentials{Email: "ana@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, int64(3), student.ID)
		require.Equal(t, "Ana", student.FullName)

		s := f.sessions.State()
		require.Equal(t, "acc", s.AccessToken)
		require.Equal(t, "ref", s.RefreshToken)
		require.Equal(t, session.RoleStudent, s.Role)
		require.Contains(t, string(s.Profile), "ana@example.com")

		req := f.last()
		require.Empty(t, req.Authorization)
		require.JSONEq(t, `{"email":"ana@example.com","password":"pw"}`, req.Body)
	})

	t.Run("teacher login", func(t *testing.T) {
		f := setupTestFixture(t)
		f.handle("POST auth/teacher/login/", http.StatusOK, map[string]any{
			"access":  "acc",
			"refresh": "ref",
			"teacher": map[string]any{"id": 9, "full_name": "Tom"},
		})

		teacher, err := f.api.TeacherLogin(ctx, lms.Credentials{Email: "tom@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, int64(9), teacher.ID)
		require.Equal(t, session.RoleTeacher, f.sessions.Role())
	})

	t.Run("bad credentials leave session empty", func(t *testing.T) {
		f := setupTestFixture(t)
		f.handle("POST auth/student/login/", http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})

		_, err := f.api.StudentLogin(ctx, lms.Credentials{Email: "ana@example.com", Password: "bad"})
		require.Error(t, err)
		require.True(t, client.IsUnauthorized(err))
		require.NotErrorIs(t, err, client.ErrSessionExpired)
		require.False(t, f.sessions.IsAuthenticated())
	})

	t.Run("missing fields", func(t *testing.T) {
		for name, body := range map[string]map[string]any{
			"no access":  {"refresh": "r", "student": map[string]any{"id": 1}},
			"no refresh": {"access": "a", "student": map[string]any{"id": 1}},
			"no profile": {"access": "a", "refresh": "r"},
			"wrong role": {"access": "a", "refresh": "r", "teacher": map[string]any{"id": 1}},
		} {
			t.Run(name, func(t *testing.T) {
				f := setupTestFixture(t)
				f.handle("POST auth/student/login/", http.StatusOK, body)

				_, err := f.api.StudentLogin(ctx, lms.Credentials{Email: "a@b.c", Password: "pw"})
				require.ErrorIs(t, err, lms.ErrMalformedLogin)
				require.False(t, f.sessions.IsAuthenticated())
			})
		}
	})

	t.Run("generic login rejects unknown role", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.api.Login(ctx, session.Role("admin"), lms.Credentials{})
		require.ErrorIs(t, err, session.ErrInvalidRole)
	})

	t.Run("logout clears session", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.sessions.Login(ctx, session.Tokens{Access: "a", Refresh: "r"}, session.RoleStudent, nil))
		require.NoError(t, f.api.Logout(ctx))
		require.Equal(t, session.Session{}, f.sessions.State())
	})
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("POST auth/teacher/register/", http.StatusCreated, map[string]any{"id": 4, "full_name": "Tom", "email": "tom@example.com"})
	f.handle("POST auth/student/register/", http.StatusBadRequest, map[string]any{"email": []string{"student with this email already exists."}})

	teacher, err := f.api.TeacherRegister(context.Background(), lms.TeacherRegistration{FullName: "Tom", Email: "tom@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, int64(4), teacher.ID)
	require.False(t, f.sessions.IsAuthenticated())

	_, err = f.api.StudentRegister(context.Background(), lms.StudentRegistration{Email: "ana@example.com"})
	require.Equal(t, http.StatusBadRequest, client.StatusCode(err))
}

func TestPublicEndpoints(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.sessions.Login(ctx, session.Tokens{Access: "a", Refresh: "r"}, session.RoleStudent, nil))

	f.handle("GET categories/", http.StatusOK, []map[string]any{{"id": 1, "title": "Programming"}, {"id": 2, "title": "Design"}})
	f.handle("GET courses/", http.StatusOK, map[string]any{
		"count":   12,
		"next":    "http://127.0.0.1:8000/api/courses/?page=2",
		"results": []map[string]any{{"id": 5, "title": "Go", "price": "199000.00", "discount_price": nil}},
	})
	f.handle("GET courses/5/", http.StatusOK, map[string]any{
		"id": 5, "title": "Go", "price": "199000.00", "discount_price": "99000.00",
		"teacher":  map[string]any{"id": 9, "full_name": "Tom"},
		"category": map[string]any{"id": 1, "title": "Programming"},
		"sections": []map[string]any{{"id": 1, "title": "Intro", "order": 1, "lessons": []map[string]any{{"id": 7, "title": "Hello"}}}},
	})

	categories, err := f.api.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Empty(t, f.last().Authorization)

	page, err := f.api.Courses(ctx, url.Values{"category": {"1"}})
	require.NoError(t, err)
	require.Equal(t, 12, page.Count)
	require.NotNil(t, page.Next)
	require.Len(t, page.Results, 1)
	require.Nil(t, page.Results[0].DiscountPrice)
	require.Equal(t, "1", f.last().Query.Get("category"))

	course, err := f.api.Course(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "99000.00", *course.DiscountPrice)
	require.Equal(t, "Tom", course.Teacher.FullName)
	require.Equal(t, "Hello", course.Sections[0].Lessons[0].Title)
	require.Empty(t, f.last().Authorization)

	_, err = f.api.Course(ctx, 0)
	require.ErrorIs(t, err, lms.ErrInvalidID)
}

func TestStudentEndpoints(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.sessions.Login(ctx, session.Tokens{Access: "acc", Refresh: "r"}, session.RoleStudent, nil))

	f.handle("POST student/enroll/", http.StatusCreated, map[string]any{"id": 1, "student": 3, "course": 5, "completed": false})
	f.handle("POST student/quiz/2/submit/", http.StatusCreated, map[string]any{"score": 50.0, "passed": false, "correct_answers": 1, "total_questions": 2, "attempt_id": 8})
	f.handle("POST student/lesson-progress/", http.StatusOK, map[string]any{"completed": true})

	enrollment, err := f.api.Enroll(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), enrollment.Course)
	req := f.last()
	require.Equal(t, "Bearer acc", req.Authorization)
	require.JSONEq(t, `{"course":5}`, req.Body)

	result, err := f.api.SubmitQuiz(ctx, 2, map[int64]int64{10: 100, 11: 104})
	require.NoError(t, err)
	require.Equal(t, int64(8), result.AttemptID)
	require.JSONEq(t, `{"answers":{"10":100,"11":104}}`, f.last().Body)

	_, err = f.api.UpdateLessonProgress(ctx, lms.LessonProgress{LessonID: 7, WatchedSeconds: 90})
	require.NoError(t, err)
	require.JSONEq(t, `{"lesson_id":7,"watched_seconds":90,"completed":false}`, f.last().Body)
}

func TestTeacherResources(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.sessions.Login(ctx, session.Tokens{Access: "tacc", Refresh: "r"}, session.RoleTeacher, nil))

	f.handle("GET teacher/sections/", http.StatusOK, []map[string]any{{"id": 1, "title": "Intro"}})
	f.handle("POST teacher/courses/", http.StatusCreated, map[string]any{"id": 6, "title": "Rust"})
	f.handle("PUT teacher/quizzes/3/", http.StatusOK, map[string]any{"id": 3, "title": "Final", "pass_mark": 70})
	f.handle("DELETE teacher/options/4/", http.StatusNoContent, nil)
	f.handle("POST teacher/lessons/", http.StatusCreated, map[string]any{"id": 12, "title": "Video"})

	sections, err := f.api.Sections().List(ctx, 6)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "6", f.last().Query.Get("course"))
	require.Equal(t, "Bearer tacc", f.last().Authorization)

	course, err := f.api.TeacherCourses().Create(ctx, lms.CourseInput{Title: "Rust", Price: "0"})
	require.NoError(t, err)
	require.Equal(t, int64(6), course.ID)

	quiz, err := f.api.Quizzes().Update(ctx, 3, lms.QuizInput{Course: 6, Title: "Final", PassMark: 70})
	require.NoError(t, err)
	require.Equal(t, 70, quiz.PassMark)

	require.NoError(t, f.api.Options().Delete(ctx, 4))
	require.Equal(t, http.MethodDelete, f.last().Method)

	lesson, err := f.api.Lessons().CreateForm(ctx, &client.MultipartForm{
		Fields: map[string]string{"title": "Video", "section": "1"},
		Files:  []client.FormFile{{Field: "video_file", FileName: "v.mp4", Content: strings.NewReader("data")}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), lesson.ID)
	require.Contains(t, f.last().Body, `name="video_file"; filename="v.mp4"`)

	_, err = f.api.Questions().Get(ctx, -1)
	require.ErrorIs(t, err, lms.ErrInvalidID)
}

func TestUpdateTeacherProfile(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.sessions.Login(ctx, session.Tokens{Access: "tacc", Refresh: "r"}, session.RoleTeacher, json.RawMessage(`{"id":9,"bio":""}`)))
	f.handle("PUT teacher/profile/", http.StatusOK, map[string]any{"id": 9, "full_name": "Tom", "bio": "Gopher"})

	teacher, err := f.api.UpdateTeacherProfile(ctx, lms.TeacherProfileInput{Bio: "Gopher"})
	require.NoError(t, err)
	require.Equal(t, "Gopher", teacher.Bio)
	require.JSONEq(t, `{"id":9,"full_name":"Tom","bio":"Gopher"}`, string(f.sessions.State().Profile))
	require.Equal(t, "tacc", f.sessions.AccessToken())
}

func TestSearchCourses(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.handle("GET search/", http.StatusOK, map[string]any{"count": 0, "results": []any{}})

	_, err := f.api.SearchCourses(ctx, lms.SearchParams{Query: "go", Level: "Beginner", Page: 2})
	require.NoError(t, err)
	require.Equal(t, url.Values{"q": {"go"}, "level": {"Beginner"}, "page": {"2"}}, f.last().Query)

	_, err = f.api.SearchCourses(ctx, lms.SearchParams{})
	require.NoError(t, err)
	require.Empty(t, f.last().Query)
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.handle("GET teacher/analytics/revenue-daily/", http.StatusOK, map[string]any{
		"results": []map[string]any{{"date": "2026-10-18", "revenue": 99000.0}},
		"days":    30,
	})

	rows, err := f.api.RevenueDaily(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "30", f.last().Query.Get("days"))

	_, err = f.api.RevenueDaily(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "7", f.last().Query.Get("days"))
}

func TestInbox(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.handle("GET student/notifications/unread_count/", http.StatusOK, map[string]int{"unread_total": 4})
	f.handle("POST messages/start_private/", http.StatusCreated, map[string]any{"id": 1})
	f.handle("GET messages/conversation/3/", http.StatusOK, map[string]any{"messages": []any{}})

	n, err := f.api.NotificationUnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = f.api.StartPrivateChat(ctx, 0, 9)
	require.NoError(t, err)
	require.JSONEq(t, `{"teacher_id":9}`, f.last().Body)

	_, err = f.api.Conversation(ctx, 3, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "1", f.last().Query.Get("page"))
	require.Equal(t, "50", f.last().Query.Get("page_size"))
}

func TestPage_Unmarshal(t *testing.T) {
	var bare lms.Page[lms.Category]
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &bare))
	require.Equal(t, 2, bare.Count)
	require.Len(t, bare.Results, 2)

	var paged lms.Page[lms.Category]
	require.NoError(t, json.Unmarshal([]byte(`{"count":7,"results":[{"id":1}]}`), &paged))
	require.Equal(t, 7, paged.Count)
	require.Len(t, paged.Results, 1)

	var bad lms.Page[lms.Category]
	require.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}
