package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

var (
	// ErrOwnerCannotJoin is returned when the organiser asks to join their own event.
	ErrOwnerCannotJoin = errors.New("event owner cannot request to join their own event")
	// ErrOwnerCannotLeave is returned when the organiser would be taken off their own event.
	ErrOwnerCannotLeave = errors.New("event owner cannot leave their own event")
	// ErrNotEventOwner is returned when a non-owner tries to manage participants.
	ErrNotEventOwner = errors.New("only the event owner can manage participants")
	// ErrEventNotFound indicates the event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrNotAnEvent indicates the post exists but is not an event.
	ErrNotAnEvent = errors.New("post is not an event")
	// ErrParticipationConflict indicates the participation changed since it was read.
	ErrParticipationConflict = repository.ErrParticipationConflict
)

var activeStatuses = []models.ParticipationStatus{models.StatusPending, models.StatusAccepted}

// ParticipationService drives the join-request workflow of events.
type ParticipationService interface {
	Status(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error)
	RequestJoin(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error)
	Accept(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error)
	Reject(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error)
	Cancel(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error)
	Leave(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error)
	RemoveParticipant(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error)
	ListUpcoming(ctx context.Context, session Session) ([]dto.UpcomingEventResponse, error)
	ListRequests(ctx context.Context, session Session, eventID string) ([]dto.UpcomingEventResponse, error)
}

type participationService struct {
	posts         repository.PostRepository
	repo          repository.ParticipationRepository
	users         repository.UserRepository
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewParticipationService constructs the participation workflow service.
func NewParticipationService(
	posts repository.PostRepository,
	repo repository.ParticipationRepository,
	users repository.UserRepository,
	notifications NotificationService,
	logger zerolog.Logger,
) ParticipationService {
	return &participationService{
		posts:         posts,
		repo:          repo,
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "participation_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/participation"),
	}
}

func (s *participationService) Status(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}

	status, err := s.currentStatus(ctx, event.ID, session.UserID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, session.UserID, status), nil
}

func (s *participationService) RequestJoin(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.request_join", eventID, session.UserID)
	defer span.End()

	if err := requireSession(session); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	if event.OwnerID == session.UserID {
		return dto.ParticipationStatusResponse{}, ErrOwnerCannotJoin
	}

	requester := s.requesterProfile(ctx, session)
	change := repository.ParticipationChange{
		EventID: event.ID,
		UserID:  session.UserID,
		From:    []models.ParticipationStatus{models.StatusNone, models.StatusRejected},
		Upsert: &models.UpcomingEvent{
			UserName:     requester.DisplayName,
			UserPhotoURL: requester.PhotoURL,
			OwnerID:      event.OwnerID,
			Status:       models.StatusPending,
			Title:        event.Title,
			Location:     event.Location,
			Distance:     event.Distance,
			MeetingPoint: event.MeetingPoint,
			ImageURL:     event.ImageURL,
			EventDate:    event.EventDate,
		},
		Notify: []models.Notification{eventNotification(
			models.JoinRequestNotificationID(event.ID, session.UserID),
			models.NotificationEventJoinRequest,
			session.UserID, requester.DisplayName, event.OwnerID, event,
			fmt.Sprintf("%s wants to join %s", requester.DisplayName, event.Title),
		)},
	}

	if err := s.apply(ctx, span, "request_join", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, session.UserID, models.StatusPending), nil
}

func (s *participationService) Accept(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.accept", eventID, userID)
	defer span.End()

	event, err := s.loadOwnedEvent(ctx, session, eventID, userID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}

	change := repository.ParticipationChange{
		EventID:   event.ID,
		UserID:    userID,
		ChatTitle: event.Title,
		From:      []models.ParticipationStatus{models.StatusPending},
		SetStatus: models.StatusAccepted,
		Roster:    repository.MembershipAdd,
		Chat:      repository.MembershipAdd,
		Dismiss:   []string{models.JoinRequestNotificationID(event.ID, userID)},
		Notify: []models.Notification{eventNotification(
			"", models.NotificationEventJoinAccepted,
			session.UserID, session.DisplayName, userID, event,
			fmt.Sprintf("Your request to join %s was accepted", event.Title),
		)},
	}

	if err := s.apply(ctx, span, "accept", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, userID, models.StatusAccepted), nil
}

func (s *participationService) Reject(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.reject", eventID, userID)
	defer span.End()

	event, err := s.loadOwnedEvent(ctx, session, eventID, userID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}

	change := repository.ParticipationChange{
		EventID:   event.ID,
		UserID:    userID,
		From:      []models.ParticipationStatus{models.StatusPending},
		SetStatus: models.StatusRejected,
		Roster:    repository.MembershipRemove,
		Chat:      repository.MembershipRemove,
		Dismiss:   []string{models.JoinRequestNotificationID(event.ID, userID)},
		Notify: []models.Notification{eventNotification(
			"", models.NotificationEventJoinRejected,
			session.UserID, session.DisplayName, userID, event,
			fmt.Sprintf("Your request to join %s was declined", event.Title),
		)},
	}

	if err := s.apply(ctx, span, "reject", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, userID, models.StatusRejected), nil
}

func (s *participationService) Cancel(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.cancel", eventID, session.UserID)
	defer span.End()

	if err := requireSession(session); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}

	change := repository.ParticipationChange{
		EventID: event.ID,
		UserID:  session.UserID,
		From:    []models.ParticipationStatus{models.StatusPending},
		Delete:  true,
		Roster:  repository.MembershipRemove,
		Dismiss: []string{models.JoinRequestNotificationID(event.ID, session.UserID)},
	}

	if err := s.apply(ctx, span, "cancel", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, session.UserID, models.StatusNone), nil
}

func (s *participationService) Leave(ctx context.Context, session Session, eventID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.leave", eventID, session.UserID)
	defer span.End()

	if err := requireSession(session); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	if event.OwnerID == session.UserID {
		return dto.ParticipationStatusResponse{}, ErrOwnerCannotLeave
	}

	change := repository.ParticipationChange{
		EventID: event.ID,
		UserID:  session.UserID,
		From:    []models.ParticipationStatus{models.StatusAccepted},
		Delete:  true,
		Roster:  repository.MembershipRemove,
		Chat:    repository.MembershipRemove,
	}

	if err := s.apply(ctx, span, "leave", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, session.UserID, models.StatusNone), nil
}

func (s *participationService) RemoveParticipant(ctx context.Context, session Session, eventID, userID string) (dto.ParticipationStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "participation.remove", eventID, userID)
	defer span.End()

	event, err := s.loadOwnedEvent(ctx, session, eventID, userID)
	if err != nil {
		return dto.ParticipationStatusResponse{}, err
	}

	change := repository.ParticipationChange{
		EventID:   event.ID,
		UserID:    userID,
		From:      []models.ParticipationStatus{models.StatusAccepted},
		SetStatus: models.StatusRemoved,
		Roster:    repository.MembershipRemove,
		Chat:      repository.MembershipRemove,
		Notify: []models.Notification{eventNotification(
			"", models.NotificationEventRemoved,
			session.UserID, session.DisplayName, userID, event,
			fmt.Sprintf("You were removed from %s", event.Title),
		)},
	}

	if err := s.apply(ctx, span, "remove", change); err != nil {
		return dto.ParticipationStatusResponse{}, err
	}
	return statusResponse(event, userID, models.StatusNone), nil
}

func (s *participationService) ListUpcoming(ctx context.Context, session Session) ([]dto.UpcomingEventResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByUser(ctx, session.UserID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return dto.NewUpcomingEventResponseSlice(records), nil
}

func (s *participationService) ListRequests(ctx context.Context, session Session, eventID string) ([]dto.UpcomingEventResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != session.UserID {
		return nil, ErrNotEventOwner
	}

	records, err := s.repo.ListByEvent(ctx, event.ID, []models.ParticipationStatus{models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	return dto.NewUpcomingEventResponseSlice(records), nil
}

func (s *participationService) apply(ctx context.Context, span trace.Span, op string, change repository.ParticipationChange) error {
	previous, err := s.repo.Apply(ctx, change)
	switch {
	case err == nil:
		observability.ParticipationTransitions().WithLabelValues(op, "ok").Inc()
	case errors.Is(err, repository.ErrParticipationConflict):
		observability.ParticipationTransitions().WithLabelValues(op, "conflict").Inc()
		span.SetAttributes(attribute.String("participation.from", string(previous)))
		return ErrParticipationConflict
	default:
		observability.ParticipationTransitions().WithLabelValues(op, "error").Inc()
		span.RecordError(err)
		s.logger.Error().Err(err).Str("event_id", change.EventID).Str("user_id", change.UserID).Str("op", op).Msg("participation transition failed")
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Debug().
		Str("event_id", change.EventID).
		Str("user_id", change.UserID).
		Str("op", op).
		Str("from", string(previous)).
		Msg("participation transition committed")

	if len(change.Notify) > 0 && s.notifications != nil {
		s.notifications.Dispatch(ctx, change.Notify...)
	}
	return nil
}

func (s *participationService) startSpan(ctx context.Context, name, eventID, userID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("participation.event_id", eventID),
		attribute.String("participation.user_id", userID),
	))
}

func (s *participationService) loadEvent(ctx context.Context, eventID string) (models.Post, error) {
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

func (s *participationService) loadOwnedEvent(ctx context.Context, session Session, eventID, userID string) (models.Post, error) {
	if err := requireSession(session); err != nil {
		return models.Post{}, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return models.Post{}, fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return models.Post{}, err
	}
	if event.OwnerID != session.UserID {
		return models.Post{}, ErrNotEventOwner
	}
	if userID == event.OwnerID {
		return models.Post{}, ErrOwnerCannotLeave
	}
	return event, nil
}

func (s *participationService) currentStatus(ctx context.Context, eventID, userID string) (models.ParticipationStatus, error) {
	record, err := s.repo.Find(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StatusNone, nil
		}
		return "", fmt.Errorf("load participation: %w", err)
	}
	return record.Status.Effective(), nil
}

// requesterProfile prefers the stored profile so the owner sees the current name and photo.
func (s *participationService) requesterProfile(ctx context.Context, session Session) models.User {
	fallback := models.User{ID: session.UserID, DisplayName: session.DisplayName, PhotoURL: session.PhotoURL}
	if s.users == nil {
		return fallback
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", session.UserID).Msg("falling back to session profile")
		return fallback
	}
	return user
}

func eventNotification(id, kind, senderID, senderName, receiverID string, event models.Post, message string) models.Notification {
	eventID := event.ID
	return models.Notification{
		ID:         id,
		Type:       kind,
		SenderID:   senderID,
		SenderName: senderName,
		ReceiverID: receiverID,
		EventID:    &eventID,
		EventTitle: event.Title,
		Message:    message,
	}
}

func statusResponse(event models.Post, userID string, status models.ParticipationStatus) dto.ParticipationStatusResponse {
	return dto.ParticipationStatusResponse{
		EventID: event.ID,
		UserID:  userID,
		Status:  status.Effective(),
		IsOwner: event.OwnerID == userID,
	}
}
