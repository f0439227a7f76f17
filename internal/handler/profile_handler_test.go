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

type profileServiceMock struct {
	service.ProfileService
	requested string
	photoURL  string
	term      string
}

func (m *profileServiceMock) Get(_ context.Context, session service.Session, userID string) (dto.ProfileResponse, error) {
	m.requested = userID
	if userID == "" {
		userID = session.UserID
	}
	if userID == "ghost" {
		return dto.ProfileResponse{}, service.ErrUserNotFound
	}
	return dto.ProfileResponse{UserSummary: dto.UserSummary{ID: userID, DisplayName: "Ana"}, Level: "Incepator"}, nil
}

func (m *profileServiceMock) SetPhoto(_ context.Context, session service.Session, photoURL string) (dto.ProfileResponse, error) {
	m.photoURL = photoURL
	return dto.ProfileResponse{UserSummary: dto.UserSummary{ID: session.UserID, PhotoURL: photoURL}}, nil
}

func (m *profileServiceMock) Search(_ context.Context, _ service.Session, term string) ([]dto.UserSummary, error) {
	m.term = term
	return []dto.UserSummary{{ID: "hiker-2", DisplayName: "Mihai"}}, nil
}

func (m *profileServiceMock) AddReview(_ context.Context, session service.Session, userID string, req dto.ReviewRequest) (dto.ReviewResponse, error) {
	m.requested = userID
	if userID == session.UserID {
		return dto.ReviewResponse{}, service.ErrSelfReview
	}
	return dto.ReviewResponse{ID: "review-1", TargetUserID: userID, ReviewerID: session.UserID, Rating: req.Rating, Comment: req.Comment}, nil
}

func newProfileApp(profiles service.ProfileService, uploads service.UploadService) *fiber.App {
	app := newTestApp("hiker-1", "user")
	handler.NewProfileHandler(profiles, &postServiceMock{}, uploads, zerolog.Nop()).Register(app.Group("/api/v1/users"))
	return app
}

func TestProfileHandlerMeUsesSession(t *testing.T) {
	profiles := &profileServiceMock{}
	app := newProfileApp(profiles, &uploadServiceMock{})

	resp := perform(t, app, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var profile dto.ProfileResponse
	decodeEnvelope(t, resp, &profile)
	require.Equal(t, "hiker-1", profile.ID)
	require.Empty(t, profiles.requested)
}

func TestProfileHandlerUnknownUser(t *testing.T) {
	app := newProfileApp(&profileServiceMock{}, &uploadServiceMock{})
	resp := perform(t, app, http.MethodGet, "/api/v1/users/ghost", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProfileHandlerSearchTrimsTerm(t *testing.T) {
	profiles := &profileServiceMock{}
	app := newProfileApp(profiles, &uploadServiceMock{})

	resp := perform(t, app, http.MethodGet, "/api/v1/users?search=%20mih%20", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "mih", profiles.term)
}

func TestProfileHandlerPhotoUploadSetsAvatar(t *testing.T) {
	profiles := &profileServiceMock{}
	uploads := &uploadServiceMock{}
	app := newProfileApp(profiles, uploads)

	resp, err := app.Test(newUploadRequest(t, "/api/v1/users/me/photo", "file", "eu.png", []byte("png-bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "hiker-1", uploads.userID)
	require.Equal(t, "https://cdn.example.com/creasta.png", profiles.photoURL)
}

func TestProfileHandlerPhotoRejectedUploadSkipsProfile(t *testing.T) {
	profiles := &profileServiceMock{}
	app := newProfileApp(profiles, &uploadServiceMock{err: service.ErrUploadTypeNotAllowed})

	resp, err := app.Test(newUploadRequest(t, "/api/v1/users/me/photo", "file", "eu.txt", []byte("text")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, profiles.photoURL)
}

func TestProfileHandlerAddReview(t *testing.T) {
	profiles := &profileServiceMock{}
	app := newProfileApp(profiles, &uploadServiceMock{})

	resp := perform(t, app, http.MethodPost, "/api/v1/users/hiker-2/reviews", map[string]interface{}{"rating": 4, "comment": "Great pace"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var review dto.ReviewResponse
	decodeEnvelope(t, resp, &review)
	require.Equal(t, "hiker-2", review.TargetUserID)
	require.Equal(t, "hiker-1", review.ReviewerID)
	require.Equal(t, 4, review.Rating)

	resp = perform(t, app, http.MethodPost, "/api/v1/users/hiker-1/reviews", map[string]interface{}{"rating": 5})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
