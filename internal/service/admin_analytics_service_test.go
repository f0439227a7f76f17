package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsRepo struct {
	users      []time.Time
	activities int64
	posts      int64
	reported   int64
	calls      int
}

func (f *fakeAnalyticsRepo) CountUsers(ctx context.Context, since *time.Time) (int64, error) {
	f.calls++
	if since == nil {
		return int64(len(f.users)), nil
	}
	var count int64
	for _, createdAt := range f.users {
		if !createdAt.Before(*since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAnalyticsRepo) CountActivities(ctx context.Context) (int64, error) {
	return f.activities, nil
}

func (f *fakeAnalyticsRepo) CountPosts(ctx context.Context, reportedOnly bool) (int64, error) {
	if reportedOnly {
		return f.reported, nil
	}
	return f.posts, nil
}

func (f *fakeAnalyticsRepo) ListSignupTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	out := make([]time.Time, 0, len(f.users))
	for _, createdAt := range f.users {
		if !createdAt.Before(since) {
			out = append(out, createdAt)
		}
	}
	return out, nil
}

func TestAdminAnalyticsServiceDashboardCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{
		users: []time.Time{
			now.AddDate(0, -2, 0),
			now.AddDate(0, 0, -6),
			now.Add(-time.Hour),
			now.Add(-2 * time.Hour),
		},
		activities: 12,
		posts:      30,
		reported:   2,
	}

	svc := NewAdminAnalyticsService(repo, client, time.Minute, testLogger()).(*adminAnalyticsService)
	svc.now = func() time.Time { return now }

	dashboard, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.False(t, dashboard.CacheHit)
	require.Equal(t, int64(4), dashboard.TotalUsers)
	require.Equal(t, int64(3), dashboard.NewUsers)
	require.Equal(t, int64(12), dashboard.TotalActivities)
	require.Equal(t, int64(2), dashboard.ReportedPosts)
	require.Len(t, dashboard.DailySignups, 7)
	require.Equal(t, "2024-05-04", dashboard.DailySignups[0].Date)
	require.Equal(t, int64(1), dashboard.DailySignups[0].Count)
	require.Equal(t, "2024-05-10", dashboard.DailySignups[6].Date)
	require.Equal(t, int64(2), dashboard.DailySignups[6].Count)

	calls := repo.calls
	cached, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, calls, repo.calls, "cached dashboard must not hit the repository")

	svc.Invalidate(context.Background())
	fresh, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
}
