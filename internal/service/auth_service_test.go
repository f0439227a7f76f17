package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

type capturedMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []capturedMail
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, capturedMail{to: to, subject: subject, body: body})
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *recordingMailer, *miniredis.Miniredis, repository.UserRepository) {
	t.Helper()
	db := setupServiceDB(t)
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repository.NewUserRepository(db)
	mailer := &recordingMailer{}
	svc := NewAuthService(users, client, mailer, validator.New(), AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, ResetCodeTTL: time.Minute}, testLogger())
	svc.(*authService).resetCode = func() (string, error) { return "0420", nil }
	return svc, mailer, server, users
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Email: "Ana@Example.com", Password: "trail123", DisplayName: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "ana@example.com", registered.User.Email)
	require.Equal(t, int64(3600), registered.ExpiresIn)

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "another1", DisplayName: "Ana Two"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "trail123"})
	require.NoError(t, err)

	token, err := jwt.Parse(loggedIn.Token, func(token *jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, registered.User.ID, claims["sub"])
	require.Equal(t, "user", claims["role"])
}

func TestAuthServiceRejectsShortPassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "dan@example.com", Password: "123", DisplayName: "Dan"})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestAuthServiceBannedUserCannotLogin(t *testing.T) {
	svc, _, _, users := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Email: "dan@example.com", Password: "trail123", DisplayName: "Dan"})
	require.NoError(t, err)
	_, err = users.Update(ctx, registered.User.ID, map[string]interface{}{"banned": true})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "dan@example.com", Password: "trail123"})
	require.ErrorIs(t, err, ErrAccountBanned)
}

func TestAuthServicePasswordReset(t *testing.T) {
	svc, mailer, server, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "ioana@example.com", Password: "trail123", DisplayName: "Ioana"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "ioana@example.com"}))
	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0].body, "0420")
	require.True(t, server.Exists("password_reset:ioana@example.com"))

	require.NoError(t, svc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "nobody@example.com"}))
	require.Len(t, mailer.sent, 1, "unknown addresses get no mail")

	err = svc.ResetPassword(ctx, dto.PasswordResetConfirmRequest{Email: "ioana@example.com", Code: "9999", NewPassword: "summit42"})
	require.ErrorIs(t, err, ErrInvalidResetCode)

	require.NoError(t, svc.ResetPassword(ctx, dto.PasswordResetConfirmRequest{Email: "ioana@example.com", Code: "0420", NewPassword: "summit42"}))
	require.False(t, server.Exists("password_reset:ioana@example.com"))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ioana@example.com", Password: "summit42"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, dto.PasswordResetConfirmRequest{Email: "ioana@example.com", Code: "0420", NewPassword: "again123"})
	require.ErrorIs(t, err, ErrInvalidResetCode, "codes are single use")
}
