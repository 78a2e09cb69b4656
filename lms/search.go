package lms

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchParams filter a course search. Zero values are left out of the query.
type SearchParams struct {
	Query    string // q: keyword
	Category int64
	Price    string // "free" or "paid"
	Level    string // Beginner, Intermediate or Advanced
	Sort     string // newest, rating, popular, price_low, price_high
	Page     int
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Category > 0 {
		v.Set("category", strconv.FormatInt(p.Category, 10))
	}
	if p.Price != "" {
		v.Set("price", p.Price)
	}
	if p.Level != "" {
		v.Set("level", p.Level)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

func (a *API) SearchCourses(ctx context.Context, params SearchParams) (*Page[Course], error) {
	var page Page[Course]
	if err := a.client.Get(ctx, "search/", params.values(), &page); err != nil {
		return nil, fmt.Errorf("[API SearchCourses] %w", err)
	}
	return &page, nil
}

func (a *API) Recommendations(ctx context.Context) ([]Course, error) {
	var page Page[Course]
	if err := a.client.Get(ctx, "courses/recommend/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API Recommendations] %w", err)
	}
	return page.Results, nil
}
