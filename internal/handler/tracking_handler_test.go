package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/tracker"
)

type trackingServiceMock struct {
	service.TrackingService
	sample dto.TrackingSampleRequest
	err    error
}

func (m *trackingServiceMock) Start(_ context.Context, _ service.Session) (tracker.Snapshot, error) {
	if m.err != nil {
		return tracker.Snapshot{}, m.err
	}
	return tracker.Snapshot{Tracking: true, Elapsed: "00:00:00"}, nil
}

func (m *trackingServiceMock) Sample(_ context.Context, _ service.Session, req dto.TrackingSampleRequest) (tracker.Snapshot, error) {
	m.sample = req
	if m.err != nil {
		return tracker.Snapshot{}, m.err
	}
	return tracker.Snapshot{Tracking: true, Points: 1}, nil
}

func (m *trackingServiceMock) Stop(_ context.Context, session service.Session, req dto.TrackingStopRequest) (dto.ActivityResponse, error) {
	if m.err != nil {
		return dto.ActivityResponse{}, m.err
	}
	return dto.ActivityResponse{ID: "a1", UserID: session.UserID, TrailName: req.TrailName}, nil
}

func newTrackingApp(svc service.TrackingService) *fiber.App {
	app := newTestApp("hiker-1", "user")
	handler.NewTrackingHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/tracking"))
	return app
}

func TestTrackingHandlerLifecycle(t *testing.T) {
	svc := &trackingServiceMock{}
	app := newTrackingApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/tracking/start", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = perform(t, app, http.MethodPost, "/api/v1/tracking/samples", dto.TrackingSampleRequest{Latitude: 45.59, Longitude: 25.46})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var snapshot tracker.Snapshot
	decodeEnvelope(t, resp, &snapshot)
	require.Equal(t, 1, snapshot.Points)
	require.InDelta(t, 45.59, svc.sample.Latitude, 1e-9)

	resp = perform(t, app, http.MethodPost, "/api/v1/tracking/stop", dto.TrackingStopRequest{TrailName: "Bucegi"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var activity dto.ActivityResponse
	decodeEnvelope(t, resp, &activity)
	require.Equal(t, "Bucegi", activity.TrailName)
}

func TestTrackingHandlerStateErrors(t *testing.T) {
	app := newTrackingApp(&trackingServiceMock{err: service.ErrAlreadyTracking})
	resp := perform(t, app, http.MethodPost, "/api/v1/tracking/start", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	app = newTrackingApp(&trackingServiceMock{err: service.ErrNotTracking})
	resp = perform(t, app, http.MethodPost, "/api/v1/tracking/samples", dto.TrackingSampleRequest{Latitude: 1, Longitude: 1})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
