package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

func (a *API) Enroll(ctx context.Context, courseID int64) (*Enrollment, error) {
	var out Enrollment
	if err := a.client.Post(ctx, "student/enroll/", map[string]int64{"course": courseID}, &out); err != nil {
		return nil, fmt.Errorf("[API Enroll] %w", err)
	}
	return &out, nil
}

func (a *API) MyCourses(ctx context.Context) ([]Course, error) {
	var page Page[Course]
	if err := a.client.Get(ctx, "student/courses/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API MyCourses] %w", err)
	}
	return page.Results, nil
}

// StudentCourseContent returns the enrolled view of a course including
// per-lesson progress. Its shape varies with progress data, so it is raw.
func (a *API) StudentCourseContent(ctx context.Context, courseID int64) (json.RawMessage, error) {
	p, err := idPath("student/courses/", courseID, "content/")
	if err != nil {
		return nil, fmt.Errorf("[API StudentCourseContent] %w", err)
	}
	var out json.RawMessage
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API StudentCourseContent] %w", err)
	}
	return out, nil
}

// Quiz fetches a quiz without the correct answers.
func (a *API) Quiz(ctx context.Context, quizID int64) (*Quiz, error) {
	p, err := idPath("student/quiz/", quizID, "")
	if err != nil {
		return nil, fmt.Errorf("[API Quiz] %w", err)
	}
	var out Quiz
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API Quiz] %w", err)
	}
	return &out, nil
}

// SubmitQuiz answers a quiz: answers maps question id to chosen option id.
func (a *API) SubmitQuiz(ctx context.Context, quizID int64, answers map[int64]int64) (*QuizResult, error) {
	p, err := idPath("student/quiz/", quizID, "submit/")
	if err != nil {
		return nil, fmt.Errorf("[API SubmitQuiz] %w", err)
	}
	var out QuizResult
	if err := a.client.Post(ctx, p, map[string]any{"answers": answers}, &out); err != nil {
		return nil, fmt.Errorf("[API SubmitQuiz] %w", err)
	}
	return &out, nil
}

func (a *API) QuizAttempts(ctx context.Context) ([]QuizAttempt, error) {
	var page Page[QuizAttempt]
	if err := a.client.Get(ctx, "student/quiz/attempts/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API QuizAttempts] %w", err)
	}
	return page.Results, nil
}

type LessonProgress struct {
	LessonID       int64 `json:"lesson_id"`
	WatchedSeconds int   `json:"watched_seconds"`
	Completed      bool  `json:"completed"`
}

func (a *API) UpdateLessonProgress(ctx context.Context, progress LessonProgress) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.client.Post(ctx, "student/lesson-progress/", progress, &out); err != nil {
		return nil, fmt.Errorf("[API UpdateLessonProgress] %w", err)
	}
	return out, nil
}
