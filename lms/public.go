package lms

import (
	"context"
	"fmt"
	"net/url"
)

func (a *API) Categories(ctx context.Context) ([]Category, error) {
	var page Page[Category]
	if err := a.client.Get(ctx, "categories/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API Categories] %w", err)
	}
	return page.Results, nil
}

func (a *API) Category(ctx context.Context, id int64) (*Category, error) {
	p, err := idPath("categories/", id, "")
	if err != nil {
		return nil, fmt.Errorf("[API Category] %w", err)
	}
	var out Category
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API Category] %w", err)
	}
	return &out, nil
}

// Courses lists published courses; params are passed through as the query.
func (a *API) Courses(ctx context.Context, params url.Values) (*Page[Course], error) {
	var page Page[Course]
	if err := a.client.Get(ctx, "courses/", params, &page); err != nil {
		return nil, fmt.Errorf("[API Courses] %w", err)
	}
	return &page, nil
}

func (a *API) Course(ctx context.Context, id int64) (*Course, error) {
	p, err := idPath("courses/", id, "")
	if err != nil {
		return nil, fmt.Errorf("[API Course] %w", err)
	}
	var out Course
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API Course] %w", err)
	}
	return &out, nil
}

// CourseContent is the public outline of a course: sections and lessons.
func (a *API) CourseContent(ctx context.Context, id int64) (*Course, error) {
	p, err := idPath("courses/", id, "content/")
	if err != nil {
		return nil, fmt.Errorf("[API CourseContent] %w", err)
	}
	var out Course
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API CourseContent] %w", err)
	}
	return &out, nil
}

func (a *API) Teachers(ctx context.Context, params url.Values) ([]Teacher, error) {
	var page Page[Teacher]
	if err := a.client.Get(ctx, "public/teachers/", params, &page); err != nil {
		return nil, fmt.Errorf("[API Teachers] %w", err)
	}
	return page.Results, nil
}
