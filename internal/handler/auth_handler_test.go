package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/service"
)

type authServiceMock struct {
	service.AuthService
	registered dto.RegisterRequest
	resetFor   string
	err        error
}

func (m *authServiceMock) Register(_ context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	m.registered = req
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return dto.AuthResponse{Token: "jwt", ExpiresIn: 3600, User: dto.UserSummary{ID: "u1", DisplayName: req.DisplayName}}, nil
}

func (m *authServiceMock) Login(_ context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return dto.AuthResponse{Token: "jwt"}, nil
}

func (m *authServiceMock) RequestPasswordReset(_ context.Context, req dto.PasswordResetRequest) error {
	m.resetFor = req.Email
	return m.err
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := newTestApp("", "")
	handler.NewAuthHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &authServiceMock{}
	app := newAuthApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email: "ana@hikelink.test", Password: "secret1", DisplayName: "Ana",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var auth dto.AuthResponse
	body := decodeEnvelope(t, resp, &auth)
	require.True(t, body.Success)
	require.Equal(t, "jwt", auth.Token)
	require.Equal(t, "Ana", svc.registered.DisplayName)
}

func TestAuthHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		path   string
		status int
	}{
		{service.ErrEmailTaken, "/api/v1/auth/register", fiber.StatusConflict},
		{fmt.Errorf("%w: password", service.ErrInvalidInput), "/api/v1/auth/register", fiber.StatusBadRequest},
		{service.ErrInvalidCredentials, "/api/v1/auth/login", fiber.StatusUnauthorized},
		{service.ErrAccountBanned, "/api/v1/auth/login", fiber.StatusForbidden},
		{fmt.Errorf("database exploded"), "/api/v1/auth/login", fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newAuthApp(&authServiceMock{err: tc.err})
		resp := perform(t, app, http.MethodPost, tc.path, map[string]string{"email": "a@b.co", "password": "x"})
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())

		body := decodeEnvelope(t, resp, nil)
		require.False(t, body.Success)
		if tc.status == fiber.StatusInternalServerError {
			require.Equal(t, "internal server error", body.Message)
		}
	}
}

func TestAuthHandlerForgotPasswordAlwaysAccepted(t *testing.T) {
	svc := &authServiceMock{}
	app := newAuthApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/auth/password/forgot", dto.PasswordResetRequest{Email: "ghost@hikelink.test"})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Equal(t, "ghost@hikelink.test", svc.resetFor)
}

func TestAuthHandlerRejectsMalformedJSON(t *testing.T) {
	app := newAuthApp(&authServiceMock{})
	resp := performRaw(t, app, http.MethodPost, "/api/v1/auth/login", "{")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
