package services

import (
	"context"
	"sync"
	"time"

	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// Overview is the public stats payload.
type Overview struct {
	TotalLinks      int64 `json:"total_links"`
	TotalCategories int64 `json:"total_categories"`
	TotalTags       int64 `json:"total_tags"`
	TotalClicks     int64 `json:"total_clicks"`
	TodayClicks     int64 `json:"today_clicks"`
	WeekClicks      int64 `json:"week_clicks"`
	MonthClicks     int64 `json:"month_clicks"`
}

// Dashboard is the admin stats payload.
type Dashboard struct {
	TotalLinks      int64 `json:"total_links"`
	ActiveLinks     int64 `json:"active_links"`
	InactiveLinks   int64 `json:"inactive_links"`
	ErrorLinks      int64 `json:"error_links"`
	TotalCategories int64 `json:"total_categories"`
	TotalTags       int64 `json:"total_tags"`
	TotalUsers      int64 `json:"total_users"`
	TotalClicks     int64 `json:"total_clicks"`
	TodayClicks     int64 `json:"today_clicks"`
	WeekClicks      int64 `json:"week_clicks"`
	MonthClicks     int64 `json:"month_clicks"`
}

// PopularLink is one row of the popularity ranking.
type PopularLink struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	ClickCount int64  `json:"click_count"`
}

// StatsService aggregates catalog and engagement numbers on demand.
// Results are cached in-process for a bounded TTL; any write that can
// change an aggregate calls Invalidate, so a cache hit is never staler
// than the TTL and usually much fresher.
//
// Window semantics: "today" starts at server-local midnight, "week" is
// the trailing 7 days, "month" is the trailing 30 days.
type StatsService struct {
	stats        repository.StatsRepository
	timeout      time.Duration
	ttl          time.Duration
	popularLimit int

	mu        sync.Mutex
	cachedAt  time.Time
	dashboard *Dashboard
	popular   []PopularLink

	now func() time.Time // swapped in tests
}

func NewStatsService(stats repository.StatsRepository, timeout, ttl time.Duration, popularLimit int) *StatsService {
	if popularLimit <= 0 {
		popularLimit = 5
	}
	return &StatsService{
		stats:        stats,
		timeout:      timeout,
		ttl:          ttl,
		popularLimit: popularLimit,
		now:          time.Now,
	}
}

// Invalidate drops the cached aggregates. Writers call this after any
// change to clicks, favorites or the catalog.
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.dashboard = nil
	s.popular = nil
	s.mu.Unlock()
}

// Overview returns the public subset of the dashboard numbers.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	dash, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		TotalLinks:      dash.ActiveLinks,
		TotalCategories: dash.TotalCategories,
		TotalTags:       dash.TotalTags,
		TotalClicks:     dash.TotalClicks,
		TodayClicks:     dash.TodayClicks,
		WeekClicks:      dash.WeekClicks,
		MonthClicks:     dash.MonthClicks,
	}, nil
}

// Dashboard returns the full admin aggregates plus the popular links.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, []PopularLink, error) {
	return s.snapshot(ctx)
}

// PopularLinks returns the current top-N ranking.
func (s *StatsService) PopularLinks(ctx context.Context) ([]PopularLink, error) {
	_, popular, err := s.snapshot(ctx)
	return popular, err
}

func (s *StatsService) snapshot(ctx context.Context) (*Dashboard, []PopularLink, error) {
	s.mu.Lock()
	if s.dashboard != nil && s.now().Sub(s.cachedAt) < s.ttl {
		dash := *s.dashboard
		popular := append([]PopularLink(nil), s.popular...)
		s.mu.Unlock()
		return &dash, popular, nil
	}
	s.mu.Unlock()

	dash, popular, err := s.compute(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.dashboard = dash
	s.popular = popular
	s.cachedAt = s.now()
	s.mu.Unlock()

	result := *dash
	return &result, append([]PopularLink(nil), popular...), nil
}

func (s *StatsService) compute(ctx context.Context) (*Dashboard, []PopularLink, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	var dash Dashboard
	var err error

	counts := []struct {
		dst    *int64
		status string
	}{
		{&dash.TotalLinks, ""},
		{&dash.ActiveLinks, models.LinkStatusActive},
		{&dash.InactiveLinks, models.LinkStatusInactive},
		{&dash.ErrorLinks, models.LinkStatusError},
	}
	for _, c := range counts {
		if *c.dst, err = s.stats.CountLinks(ctx, c.status); err != nil {
			return nil, nil, storeError(err, "")
		}
	}

	if dash.TotalCategories, err = s.stats.CountCategories(ctx, false); err != nil {
		return nil, nil, storeError(err, "")
	}
	if dash.TotalTags, err = s.stats.CountTags(ctx); err != nil {
		return nil, nil, storeError(err, "")
	}
	if dash.TotalUsers, err = s.stats.CountUsers(ctx); err != nil {
		return nil, nil, storeError(err, "")
	}
	if dash.TotalClicks, err = s.stats.TotalClicks(ctx); err != nil {
		return nil, nil, storeError(err, "")
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dash.TodayClicks, err = s.stats.ClicksSince(ctx, midnight); err != nil {
		return nil, nil, storeError(err, "")
	}
	if dash.WeekClicks, err = s.stats.ClicksSince(ctx, now.AddDate(0, 0, -7)); err != nil {
		return nil, nil, storeError(err, "")
	}
	if dash.MonthClicks, err = s.stats.ClicksSince(ctx, now.AddDate(0, 0, -30)); err != nil {
		return nil, nil, storeError(err, "")
	}

	links, err := s.stats.PopularLinks(ctx, s.popularLimit)
	if err != nil {
		return nil, nil, storeError(err, "")
	}
	popular := make([]PopularLink, 0, len(links))
	for _, link := range links {
		popular = append(popular, PopularLink{
			ID:         link.ID,
			Title:      link.Title,
			URL:        link.URL,
			ClickCount: link.ClickCount,
		})
	}

	return &dash, popular, nil
}
