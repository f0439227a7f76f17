package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// DemoPassword is the password given to every seeded hiker.
const DemoPassword = "hikelink-demo"

var (
	demoMountains = []string{"Vârful Omu", "Moldoveanu", "Negoiu", "Pietrosul Rodnei", "Peleaga", "Ciucaș", "Piatra Craiului", "Vârful Toaca"}
	demoMeetings  = []string{"Gara Bușteni", "Cabana Bâlea Lac", "Parcare Zărnești", "Gara Sinaia", "Centru Borșa"}
)

// SeedService fills a fresh environment with demo hikers, posts and events.
type SeedService interface {
	SeedDemo(ctx context.Context, token string, req dto.SeedDemoRequest) (dto.SeedDemoResponse, error)
}

type seedService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	validate *validator.Validate
	enabled  bool
	token    string
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, posts repository.PostRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:    users,
		posts:    posts,
		validate: validate,
		enabled:  enabled,
		token:    token,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedDemo(ctx context.Context, token string, req dto.SeedDemoRequest) (dto.SeedDemoResponse, error) {
	if !s.enabled {
		return dto.SeedDemoResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedDemoResponse{}, ErrSeedUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return dto.SeedDemoResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.Hikers == 0 {
		req.Hikers = 10
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	faker := gofakeit.New(req.Seed)
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return dto.SeedDemoResponse{}, fmt.Errorf("hash demo password: %w", err)
	}

	hikers := make([]models.User, 0, req.Hikers)
	for i := 0; i < req.Hikers; i++ {
		user := models.User{
			Email:        fmt.Sprintf("%s.%s@demo.hikelink.app", strings.ToLower(faker.Username()), faker.UUID()[:8]),
			PasswordHash: string(hash),
			DisplayName:  faker.Name(),
			Bio:          faker.Sentence(10),
			PhotoURL:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", faker.UUID()),
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return dto.SeedDemoResponse{}, fmt.Errorf("create demo hiker: %w", err)
		}
		hikers = append(hikers, user)
	}

	resp := dto.SeedDemoResponse{Password: DemoPassword, Hikers: make([]string, 0, len(hikers))}
	for _, hiker := range hikers {
		resp.Hikers = append(resp.Hikers, hiker.Email)
	}

	for i := 0; i < req.Posts; i++ {
		owner := hikers[faker.Number(0, len(hikers)-1)]
		post := models.Post{
			OwnerID:       owner.ID,
			OwnerName:     owner.DisplayName,
			OwnerPhotoURL: owner.PhotoURL,
			Kind:          models.PostKindPost,
			Content:       faker.Paragraph(1, 3, 8, " "),
			ImageURL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", faker.UUID()),
		}
		if err := s.posts.Create(ctx, &post); err != nil {
			return resp, fmt.Errorf("create demo post: %w", err)
		}
		resp.Posts++
	}

	now := time.Now().UTC()
	for i := 0; i < req.Events; i++ {
		owner := hikers[faker.Number(0, len(hikers)-1)]
		mountain := faker.RandomString(demoMountains)
		date := faker.DateRange(now.Add(24*time.Hour), now.Add(60*24*time.Hour)).UTC()
		event := models.Post{
			OwnerName:     owner.DisplayName,
			OwnerPhotoURL: owner.PhotoURL,
			Title:         "Tură pe " + mountain,
			Description:   faker.Paragraph(1, 2, 10, " "),
			Location:      mountain,
			Distance:      fmt.Sprintf("%d km", faker.Number(5, 30)),
			MeetingPoint:  faker.RandomString(demoMeetings),
			ImageURL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/600", faker.UUID()),
			EventDate:     &date,
		}
		if err := s.posts.CreateEvent(ctx, &event, owner); err != nil {
			return resp, fmt.Errorf("create demo event: %w", err)
		}
		resp.Events++
	}

	s.logger.Info().Int("hikers", len(hikers)).Int("posts", resp.Posts).Int("events", resp.Events).Msg("demo data seeded")
	return resp, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
