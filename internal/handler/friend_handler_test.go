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
)

type friendServiceMock struct {
	service.FriendService
	target string
	err    error
}

func (m *friendServiceMock) SendRequest(_ context.Context, session service.Session, targetID string) (dto.FriendRequestResponse, error) {
	m.target = targetID
	if m.err != nil {
		return dto.FriendRequestResponse{}, m.err
	}
	return dto.FriendRequestResponse{RequesterID: session.UserID, AddresseeID: targetID}, nil
}

func (m *friendServiceMock) AcceptRequest(_ context.Context, _ service.Session, requesterID string) (dto.FriendStatusResponse, error) {
	m.target = requesterID
	return dto.FriendStatusResponse{UserID: requesterID, Status: "friends"}, m.err
}

func (m *friendServiceMock) Status(_ context.Context, _ service.Session, otherID string) (dto.FriendStatusResponse, error) {
	return dto.FriendStatusResponse{UserID: otherID, Status: "none"}, nil
}

func newFriendApp(svc service.FriendService) *fiber.App {
	app := newTestApp("hiker-1", "user")
	handler.NewFriendHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/friends"))
	return app
}

func TestFriendHandlerSendRequest(t *testing.T) {
	svc := &friendServiceMock{}
	app := newFriendApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/friends/requests/hiker-2", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var request dto.FriendRequestResponse
	decodeEnvelope(t, resp, &request)
	require.Equal(t, "hiker-1", request.RequesterID)
	require.Equal(t, "hiker-2", svc.target)
}

func TestFriendHandlerConflicts(t *testing.T) {
	cases := map[error]int{
		service.ErrAlreadyFriends:       fiber.StatusConflict,
		service.ErrFriendRequestPending: fiber.StatusConflict,
		service.ErrSelfFriendship:       fiber.StatusBadRequest,
		service.ErrUserNotFound:         fiber.StatusNotFound,
	}
	for serviceErr, status := range cases {
		app := newFriendApp(&friendServiceMock{err: serviceErr})
		resp := perform(t, app, http.MethodPost, "/api/v1/friends/requests/hiker-2", nil)
		require.Equal(t, status, resp.StatusCode, serviceErr.Error())
	}
}

func TestFriendHandlerAcceptAndStatus(t *testing.T) {
	svc := &friendServiceMock{}
	app := newFriendApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/friends/requests/hiker-3/accept", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var accepted dto.FriendStatusResponse
	decodeEnvelope(t, resp, &accepted)
	require.Equal(t, "friends", accepted.Status)
	require.Equal(t, "hiker-3", svc.target)

	resp = perform(t, app, http.MethodGet, "/api/v1/friends/status/hiker-4", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status dto.FriendStatusResponse
	decodeEnvelope(t, resp, &status)
	require.Equal(t, "hiker-4", status.UserID)
}
