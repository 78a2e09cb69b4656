package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-lms-client/client"
)

// Resource is a teacher-owned CRUD collection such as teacher/courses/.
// filter names the query parameter that scopes List to a parent.
type Resource[T any] struct {
	client *client.Client
	path   string
	filter string
}

func newResource[T any](c *client.Client, path, filter string) Resource[T] {
	return Resource[T]{client: c, path: path, filter: filter}
}

// List returns the collection, scoped to parentID when it is positive.
func (r Resource[T]) List(ctx context.Context, parentID int64) ([]T, error) {
	var query url.Values
	if parentID > 0 && r.filter != "" {
		query = url.Values{r.filter: {strconv.FormatInt(parentID, 10)}}
	}
	var page Page[T]
	if err := r.client.Get(ctx, r.path, query, &page); err != nil {
		return nil, fmt.Errorf("[Resource List] %s: %w", r.path, err)
	}
	return page.Results, nil
}

func (r Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	p, err := idPath(r.path, id, "")
	if err != nil {
		return nil, fmt.Errorf("[Resource Get] %w", err)
	}
	var out T
	if err := r.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[Resource Get] %s: %w", p, err)
	}
	return &out, nil
}

func (r Resource[T]) Create(ctx context.Context, in any) (*T, error) {
	var out T
	if err := r.client.Post(ctx, r.path, in, &out); err != nil {
		return nil, fmt.Errorf("[Resource Create] %s: %w", r.path, err)
	}
	return &out, nil
}

func (r Resource[T]) Update(ctx context.Context, id int64, in any) (*T, error) {
	p, err := idPath(r.path, id, "")
	if err != nil {
		return nil, fmt.Errorf("[Resource Update] %w", err)
	}
	var out T
	if err := r.client.Put(ctx, p, in, &out); err != nil {
		return nil, fmt.Errorf("[Resource Update] %s: %w", p, err)
	}
	return &out, nil
}

// CreateForm creates from a multipart form, e.g. a lesson with a video file.
func (r Resource[T]) CreateForm(ctx context.Context, form *client.MultipartForm) (*T, error) {
	var out T
	if err := r.client.PostMultipart(ctx, r.path, form, &out); err != nil {
		return nil, fmt.Errorf("[Resource CreateForm] %s: %w", r.path, err)
	}
	return &out, nil
}

func (r Resource[T]) UpdateForm(ctx context.Context, id int64, form *client.MultipartForm) (*T, error) {
	p, err := idPath(r.path, id, "")
	if err != nil {
		return nil, fmt.Errorf("[Resource UpdateForm] %w", err)
	}
	var out T
	if err := r.client.PutMultipart(ctx, p, form, &out); err != nil {
		return nil, fmt.Errorf("[Resource UpdateForm] %s: %w", p, err)
	}
	return &out, nil
}

func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	p, err := idPath(r.path, id, "")
	if err != nil {
		return fmt.Errorf("[Resource Delete] %w", err)
	}
	if err := r.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[Resource Delete] %s: %w", p, err)
	}
	return nil
}

func (a *API) TeacherCourses() Resource[Course] {
	return newResource[Course](a.client, "teacher/courses/", "")
}

func (a *API) Sections() Resource[Section] {
	return newResource[Section](a.client, "teacher/sections/", "course")
}

func (a *API) Lessons() Resource[Lesson] {
	return newResource[Lesson](a.client, "teacher/lessons/", "section")
}

func (a *API) Quizzes() Resource[Quiz] {
	return newResource[Quiz](a.client, "teacher/quizzes/", "course")
}

func (a *API) Questions() Resource[Question] {
	return newResource[Question](a.client, "teacher/questions/", "quiz")
}

func (a *API) Options() Resource[Option] {
	return newResource[Option](a.client, "teacher/options/", "question")
}

func (a *API) TeacherProfile(ctx context.Context) (*Teacher, error) {
	var out Teacher
	if err := a.client.Get(ctx, "teacher/profile/", nil, &out); err != nil {
		return nil, fmt.Errorf("[API TeacherProfile] %w", err)
	}
	return &out, nil
}

type TeacherProfileInput struct {
	FullName      string `json:"full_name,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	Skills        string `json:"skills,omitempty"`
}

// UpdateTeacherProfile saves the profile and refreshes the session's copy.
func (a *API) UpdateTeacherProfile(ctx context.Context, in TeacherProfileInput) (*Teacher, error) {
	var raw json.RawMessage
	if err := a.client.Put(ctx, "teacher/profile/", in, &raw); err != nil {
		return nil, fmt.Errorf("[API UpdateTeacherProfile] %w", err)
	}
	var out Teacher
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("[API UpdateTeacherProfile] failed to decode profile: %w", err)
	}
	if err := a.sessions.SetProfile(ctx, raw); err != nil {
		return nil, fmt.Errorf("[API UpdateTeacherProfile] %w", err)
	}
	return &out, nil
}

type PasswordChange struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (a *API) ChangePassword(ctx context.Context, in PasswordChange) error {
	if err := a.client.Post(ctx, "teacher/change-password/", in, nil); err != nil {
		return fmt.Errorf("[API ChangePassword] %w", err)
	}
	return nil
}

func (a *API) CourseStudents(ctx context.Context, courseID int64, params url.Values) (json.RawMessage, error) {
	p, err := idPath("teacher/courses/", courseID, "students/")
	if err != nil {
		return nil, fmt.Errorf("[API CourseStudents] %w", err)
	}
	var out json.RawMessage
	if err := a.client.Get(ctx, p, params, &out); err != nil {
		return nil, fmt.Errorf("[API CourseStudents] %w", err)
	}
	return out, nil
}

func (a *API) StudentDetail(ctx context.Context, courseID, studentID int64) (json.RawMessage, error) {
	p, err := idPath("teacher/courses/", courseID, "students/")
	if err == nil {
		p, err = idPath(p, studentID, "detail/")
	}
	if err != nil {
		return nil, fmt.Errorf("[API StudentDetail] %w", err)
	}
	var out json.RawMessage
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API StudentDetail] %w", err)
	}
	return out, nil
}

func (a *API) CourseAnalytics(ctx context.Context, courseID int64) (json.RawMessage, error) {
	p, err := idPath("teacher/courses/", courseID, "analytics/")
	if err != nil {
		return nil, fmt.Errorf("[API CourseAnalytics] %w", err)
	}
	var out json.RawMessage
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API CourseAnalytics] %w", err)
	}
	return out, nil
}
