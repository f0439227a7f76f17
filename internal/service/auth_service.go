package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

var (
	// ErrEmailTaken indicates an account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for any failed sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountBanned indicates the account was banned by an administrator.
	ErrAccountBanned = errors.New("account is banned")
	// ErrInvalidResetCode indicates a wrong or expired password reset code.
	ErrInvalidResetCode = errors.New("invalid or expired reset code")
	// ErrResetUnavailable indicates password reset has no backing store.
	ErrResetUnavailable = errors.New("password reset unavailable")
)

// AuthConfig holds token and reset settings.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	ResetCodeTTL time.Duration
}

// AuthService registers users, signs them in and resets passwords.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error
	ResetPassword(ctx context.Context, req dto.PasswordResetConfirmRequest) error
	IssueToken(user models.User) (string, int64, error)
}

type authService struct {
	users     repository.UserRepository
	cache     *redis.Client
	mailer    Mailer
	validator *validator.Validate
	config    AuthConfig
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	resetCode func() (string, error)
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, cache *redis.Client, mailer Mailer, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.ResetCodeTTL <= 0 {
		cfg.ResetCodeTTL = 15 * time.Minute
	}
	return &authService{
		users:     users,
		cache:     cache,
		mailer:    mailer,
		validator: validate,
		config:    cfg,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/auth"),
		now:       time.Now,
		resetCode: randomResetCode,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}
	ctx, span := s.tracer.Start(ctx, "auth.register")
	defer span.End()

	email := normalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.AuthResponse{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         models.RoleUser,
		Badges:       []string{},
	}
	if err := s.users.Create(ctx, &user); err != nil {
		span.RecordError(err)
		return dto.AuthResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		span.RecordError(err)
		return dto.AuthResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}
	if user.Banned {
		return dto.AuthResponse{}, ErrAccountBanned
	}

	return s.authResponse(user)
}

func (s *authService) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if s.cache == nil {
		return ErrResetUnavailable
	}
	ctx, span := s.tracer.Start(ctx, "auth.request_reset")
	defer span.End()

	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown addresses get the same answer as known ones.
			s.logger.Debug().Str("email", maskEmailAddress(email)).Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	code, err := s.resetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	if err := s.cache.Set(ctx, resetKey(email), code, s.config.ResetCodeTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store reset code: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\nYour HikeLink password reset code is %s. It expires in %d minutes.\n",
		user.DisplayName, code, int(s.config.ResetCodeTTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, "Your HikeLink reset code", body); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("user_id", user.ID).Str("email", maskEmailAddress(user.Email)).Msg("failed to send reset code")
		return fmt.Errorf("send reset code: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Str("email", maskEmailAddress(user.Email)).Msg("reset code sent")
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.PasswordResetConfirmRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if s.cache == nil {
		return ErrResetUnavailable
	}
	ctx, span := s.tracer.Start(ctx, "auth.reset_password")
	defer span.End()

	email := normalizeEmail(req.Email)
	stored, err := s.cache.Get(ctx, resetKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("load reset code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return ErrInvalidResetCode
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Update(ctx, user.ID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.cache.Del(ctx, resetKey(email)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear reset code")
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// IssueToken signs a bearer token carrying the user id, role and display name.
func (s *authService) IssueToken(user models.User) (string, int64, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"name": user.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(s.config.TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return token, int64(s.config.TokenTTL.Seconds()), nil
}

func (s *authService) authResponse(user models.User) (dto.AuthResponse, error) {
	token, expiresIn, err := s.IssueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return dto.AuthResponse{Token: token, ExpiresIn: expiresIn, User: dto.NewUserSummary(user)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func resetKey(email string) string {
	return "password_reset:" + email
}

func randomResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
