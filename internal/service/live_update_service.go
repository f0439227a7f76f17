package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

var (
	// ErrNotEventMember is returned when someone outside the roster posts to an event.
	ErrNotEventMember = errors.New("only event participants can post live updates")
	// ErrLiveUpdateNotFound indicates the live update does not exist on the event.
	ErrLiveUpdateNotFound = errors.New("live update not found")
)

// LiveUpdateService lets participants post status messages to an event during the hike.
type LiveUpdateService interface {
	Post(ctx context.Context, session Session, eventID string, req dto.LiveUpdateRequest) (dto.LiveUpdateResponse, error)
	List(ctx context.Context, session Session, eventID string, limit, offset int) ([]dto.LiveUpdateResponse, error)
	Delete(ctx context.Context, session Session, eventID, updateID string) error
}

type liveUpdateService struct {
	repo          repository.LiveUpdateRepository
	posts         repository.PostRepository
	participation repository.ParticipationRepository
	users         repository.UserRepository
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewLiveUpdateService constructs the live update service.
func NewLiveUpdateService(
	repo repository.LiveUpdateRepository,
	posts repository.PostRepository,
	participation repository.ParticipationRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) LiveUpdateService {
	return &liveUpdateService{
		repo:          repo,
		posts:         posts,
		participation: participation,
		users:         users,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "live_update_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/live_update"),
	}
}

func (s *liveUpdateService) Post(ctx context.Context, session Session, eventID string, req dto.LiveUpdateRequest) (dto.LiveUpdateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "live_updates.post", trace.WithAttributes(attribute.String("event_id", eventID)))
	defer span.End()

	if err := requireSession(session); err != nil {
		return dto.LiveUpdateResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LiveUpdateResponse{}, err
	}
	message := strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if message == "" {
		return dto.LiveUpdateResponse{}, ErrEmptyContent
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.LiveUpdateResponse{}, err
	}
	roster, err := s.participation.Roster(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		return dto.LiveUpdateResponse{}, fmt.Errorf("load roster: %w", err)
	}
	if !slices.Contains(roster, session.UserID) {
		return dto.LiveUpdateResponse{}, ErrNotEventMember
	}

	authorName := session.DisplayName
	if authorName == "" {
		if author, err := s.users.FindByID(ctx, session.UserID); err == nil {
			authorName = author.DisplayName
		}
	}

	update := models.LiveUpdate{
		EventID:    event.ID,
		AuthorID:   session.UserID,
		AuthorName: authorName,
		Type:       req.Type,
		Message:    message,
		ImageURL:   strings.TrimSpace(req.ImageURL),
	}
	if err := s.repo.Create(ctx, &update); err != nil {
		span.RecordError(err)
		return dto.LiveUpdateResponse{}, fmt.Errorf("create live update: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("user_id", session.UserID).Str("type", update.Type).Msg("live update posted")
	return dto.NewLiveUpdateResponse(update), nil
}

func (s *liveUpdateService) List(ctx context.Context, session Session, eventID string, limit, offset int) ([]dto.LiveUpdateResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	updates, err := s.repo.ListByEvent(ctx, event.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LiveUpdateResponse, 0, len(updates))
	for _, update := range updates {
		out = append(out, dto.NewLiveUpdateResponse(update))
	}
	return out, nil
}

// Delete removes an update. The author, the event owner and admins may delete it.
func (s *liveUpdateService) Delete(ctx context.Context, session Session, eventID, updateID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(updateID); err != nil {
		return fmt.Errorf("%w: update id", ErrInvalidInput)
	}

	update, err := s.repo.FindByID(ctx, updateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLiveUpdateNotFound
		}
		return err
	}
	if update.EventID != event.ID {
		return ErrLiveUpdateNotFound
	}
	if update.AuthorID != session.UserID && event.OwnerID != session.UserID && !session.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, update.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLiveUpdateNotFound
		}
		return fmt.Errorf("delete live update: %w", err)
	}
	s.logger.Info().Str("event_id", event.ID).Str("update_id", update.ID).Str("user_id", session.UserID).Msg("live update deleted")
	return nil
}

func (s *liveUpdateService) loadEvent(ctx context.Context, eventID string) (models.Post, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return models.Post{}, fmt.Errorf("%w: event id", ErrInvalidInput)
	}
	event, err := s.posts.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrEventNotFound
		}
		return models.Post{}, fmt.Errorf("load event: %w", err)
	}
	if !event.IsEvent() {
		return models.Post{}, ErrNotAnEvent
	}
	return event, nil
}
