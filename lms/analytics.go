package lms

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// DefaultAnalyticsDays is the window used when days is not positive.
const DefaultAnalyticsDays = 30

func (a *API) AnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error) {
	var out AnalyticsSummary
	if err := a.client.Get(ctx, "teacher/analytics/summary/", nil, &out); err != nil {
		return nil, fmt.Errorf("[API AnalyticsSummary] %w", err)
	}
	return &out, nil
}

func (a *API) RevenueDaily(ctx context.Context, days int) ([]DailyRevenue, error) {
	var out struct {
		Results []DailyRevenue `json:"results"`
	}
	if err := a.client.Get(ctx, "teacher/analytics/revenue-daily/", daysQuery(days), &out); err != nil {
		return nil, fmt.Errorf("[API RevenueDaily] %w", err)
	}
	return out.Results, nil
}

func (a *API) EnrollmentsDaily(ctx context.Context, days int) ([]DailyEnrollments, error) {
	var out struct {
		Results []DailyEnrollments `json:"results"`
	}
	if err := a.client.Get(ctx, "teacher/analytics/enrollments-daily/", daysQuery(days), &out); err != nil {
		return nil, fmt.Errorf("[API EnrollmentsDaily] %w", err)
	}
	return out.Results, nil
}

func (a *API) CoursePerformance(ctx context.Context) ([]CoursePerformance, error) {
	var out struct {
		Results []CoursePerformance `json:"results"`
	}
	if err := a.client.Get(ctx, "teacher/analytics/course-performance/", nil, &out); err != nil {
		return nil, fmt.Errorf("[API CoursePerformance] %w", err)
	}
	return out.Results, nil
}

func daysQuery(days int) url.Values {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	return url.Values{"days": {strconv.Itoa(days)}}
}
