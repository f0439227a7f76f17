package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

type stubMapper struct {
	route [][]float64
}

func (m *stubMapper) URL(route [][]float64) (string, error) {
	m.route = route
	return "https://maps.example/static?path=enc:abc", nil
}

type stubImageStore struct {
	url string
	err error
}

func (s stubImageStore) UploadRemote(ctx context.Context, name, sourceURL string) (string, error) {
	return s.url, s.err
}

func newTrackingFixture(t *testing.T, images RouteImageStore) (TrackingService, repository.ActivityRepository, models.User, *stubMapper) {
	t.Helper()
	db := setupServiceDB(t)
	activities := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)
	mapper := &stubMapper{}
	svc := NewTrackingService(activities, NewActivityService(activities, users, testLogger()), mapper, images, validator.New(), 5*time.Millisecond, testLogger())
	t.Cleanup(svc.Close)
	return svc, activities, createUser(t, db, "Hiker"), mapper
}

func TestTrackingServiceSavesActivityAndRouteImage(t *testing.T) {
	svc, activities, hiker, mapper := newTrackingFixture(t, stubImageStore{url: "https://cdn.example/route.png"})
	ctx := context.Background()
	session := sessionFor(hiker)

	_, err := svc.Start(ctx, session)
	require.NoError(t, err)
	_, err = svc.Start(ctx, session)
	require.ErrorIs(t, err, ErrAlreadyTracking)

	_, err = svc.Sample(ctx, session, dto.TrackingSampleRequest{Latitude: 45.0, Longitude: 25.0, Speed: 1})
	require.NoError(t, err)
	snapshot, err := svc.Sample(ctx, session, dto.TrackingSampleRequest{Latitude: 45.01, Longitude: 25.0, Speed: -3})
	require.NoError(t, err)
	require.InDelta(t, 1.11, snapshot.DistanceKm, 0.01)
	require.Zero(t, snapshot.SpeedKmh)

	require.Eventually(t, func() bool {
		current, err := svc.Snapshot(ctx, session)
		return err == nil && current.Seconds >= 2
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Stop(ctx, session, dto.TrackingStopRequest{})
	require.Error(t, err, "trail name is required")

	saved, err := svc.Stop(ctx, session, dto.TrackingStopRequest{TrailName: "Creasta Pietrei Craiului"})
	require.NoError(t, err)
	require.Equal(t, "1.11", saved.Distance)
	require.Equal(t, time.Now().Format("2006-01-02"), saved.Date)

	svc.Close()

	stored, err := activities.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/route.png", stored.ImageURL)
	require.Len(t, mapper.route, 2)

	idle, err := svc.Snapshot(ctx, session)
	require.NoError(t, err)
	require.False(t, idle.Tracking)
	require.Equal(t, "00:00", idle.Elapsed)
}

func TestTrackingServiceKeepsActivityWhenImageFails(t *testing.T) {
	svc, activities, hiker, _ := newTrackingFixture(t, stubImageStore{err: errors.New("cloudinary down")})
	ctx := context.Background()
	session := sessionFor(hiker)
	failedBefore := testutil.ToFloat64(observability.RouteImages().WithLabelValues("failed"))

	_, err := svc.Start(ctx, session)
	require.NoError(t, err)
	_, err = svc.Sample(ctx, session, dto.TrackingSampleRequest{Latitude: 45.0, Longitude: 25.0})
	require.NoError(t, err)
	_, err = svc.Sample(ctx, session, dto.TrackingSampleRequest{Latitude: 45.002, Longitude: 25.0})
	require.NoError(t, err)

	saved, err := svc.Stop(ctx, session, dto.TrackingStopRequest{TrailName: "Valea Cerbului"})
	require.NoError(t, err)
	svc.Close()

	stored, err := activities.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Empty(t, stored.ImageURL)
	require.Equal(t, failedBefore+1, testutil.ToFloat64(observability.RouteImages().WithLabelValues("failed")))
}

func TestTrackingServiceSkipsRouteImageForSingleFix(t *testing.T) {
	svc, activities, hiker, mapper := newTrackingFixture(t, stubImageStore{url: "https://cdn.example/route.png"})
	ctx := context.Background()
	session := sessionFor(hiker)
	skippedBefore := testutil.ToFloat64(observability.RouteImages().WithLabelValues("skipped"))

	_, err := svc.Start(ctx, session)
	require.NoError(t, err)
	_, err = svc.Sample(ctx, session, dto.TrackingSampleRequest{Latitude: 45.0, Longitude: 25.0})
	require.NoError(t, err)

	saved, err := svc.Stop(ctx, session, dto.TrackingStopRequest{TrailName: "Poiana Brasov loop"})
	require.NoError(t, err)
	svc.Close()

	stored, err := activities.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Empty(t, stored.ImageURL)
	require.Nil(t, mapper.route)
	require.Equal(t, skippedBefore+1, testutil.ToFloat64(observability.RouteImages().WithLabelValues("skipped")))
}

func TestTrackingServiceRejectsSamplesWhenIdle(t *testing.T) {
	svc, _, hiker, _ := newTrackingFixture(t, nil)

	_, err := svc.Sample(context.Background(), sessionFor(hiker), dto.TrackingSampleRequest{Latitude: 45, Longitude: 25})
	require.ErrorIs(t, err, ErrNotTracking)

	_, err = svc.Stop(context.Background(), sessionFor(hiker), dto.TrackingStopRequest{TrailName: "Nowhere"})
	require.ErrorIs(t, err, ErrNotTracking)
}
