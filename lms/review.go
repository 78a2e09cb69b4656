package lms

import (
	"context"
	"fmt"
)

type ReviewInput struct {
	CourseID int64  `json:"course_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// AddReview creates or replaces the student's review of a course.
func (a *API) AddReview(ctx context.Context, in ReviewInput) (*Review, error) {
	var out struct {
		Message string `json:"message"`
		Review  Review `json:"review"`
	}
	if err := a.client.Post(ctx, "reviews/add/", in, &out); err != nil {
		return nil, fmt.Errorf("[API AddReview] %w", err)
	}
	return &out.Review, nil
}

func (a *API) CourseReviews(ctx context.Context, courseID int64) (*CourseReviews, error) {
	p, err := idPath("reviews/course/", courseID, "")
	if err != nil {
		return nil, fmt.Errorf("[API CourseReviews] %w", err)
	}
	var out CourseReviews
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API CourseReviews] %w", err)
	}
	return &out, nil
}

func (a *API) MyReview(ctx context.Context, courseID int64) (*Review, error) {
	p, err := idPath("reviews/my/", courseID, "")
	if err != nil {
		return nil, fmt.Errorf("[API MyReview] %w", err)
	}
	var out Review
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API MyReview] %w", err)
	}
	return &out, nil
}

func (a *API) DeleteReview(ctx context.Context, courseID int64) error {
	p, err := idPath("reviews/delete/", courseID, "")
	if err != nil {
		return fmt.Errorf("[API DeleteReview] %w", err)
	}
	if err := a.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[API DeleteReview] %w", err)
	}
	return nil
}

// ReviewCourse posts a review through the course route, courses/{id}/review/.
func (a *API) ReviewCourse(ctx context.Context, courseID int64, rating int, comment string) (*Review, error) {
	p, err := idPath("courses/", courseID, "review/")
	if err != nil {
		return nil, fmt.Errorf("[API ReviewCourse] %w", err)
	}
	var out Review
	if err := a.client.Post(ctx, p, map[string]any{"rating": rating, "comment": comment}, &out); err != nil {
		return nil, fmt.Errorf("[API ReviewCourse] %w", err)
	}
	return &out, nil
}
