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
	"github.com/noah-isme/hikelink-api/internal/repository"
)

var (
	// ErrSelfFriendship is returned when a user targets themselves.
	ErrSelfFriendship = errors.New("cannot befriend yourself")
	// ErrAlreadyFriends is returned when a request is sent to an existing friend.
	ErrAlreadyFriends = errors.New("users are already friends")
	// ErrFriendRequestPending is returned when a request between the users is already open.
	ErrFriendRequestPending = errors.New("friend request already pending")
	// ErrFriendRequestNotFound is returned when no matching pending request exists.
	ErrFriendRequestNotFound = errors.New("friend request not found")
	// ErrNotFriends is returned when removing someone who is not a friend.
	ErrNotFriends = errors.New("users are not friends")
	// ErrUserNotFound indicates the target user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// FriendService manages friend requests and friendships.
type FriendService interface {
	SendRequest(ctx context.Context, session Session, targetID string) (dto.FriendRequestResponse, error)
	CancelRequest(ctx context.Context, session Session, targetID string) error
	AcceptRequest(ctx context.Context, session Session, requesterID string) (dto.FriendStatusResponse, error)
	DeclineRequest(ctx context.Context, session Session, requesterID string) (dto.FriendStatusResponse, error)
	RemoveFriend(ctx context.Context, session Session, friendID string) error
	ListFriends(ctx context.Context, session Session) ([]dto.UserSummary, error)
	ListReceived(ctx context.Context, session Session) ([]dto.FriendRequestResponse, error)
	ListSent(ctx context.Context, session Session) ([]dto.FriendRequestResponse, error)
	Status(ctx context.Context, session Session, otherID string) (dto.FriendStatusResponse, error)
}

type friendService struct {
	repo          repository.FriendshipRepository
	users         repository.UserRepository
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewFriendService constructs the friend service.
func NewFriendService(repo repository.FriendshipRepository, users repository.UserRepository, notifications NotificationService, logger zerolog.Logger) FriendService {
	return &friendService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "friend_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/friend"),
	}
}

func (s *friendService) SendRequest(ctx context.Context, session Session, targetID string) (dto.FriendRequestResponse, error) {
	ctx, span := s.startSpan(ctx, "friends.send_request", session.UserID, targetID)
	defer span.End()

	target, err := s.loadTarget(ctx, session, targetID)
	if err != nil {
		return dto.FriendRequestResponse{}, err
	}

	existing, err := s.repo.Find(ctx, session.UserID, target.ID)
	switch {
	case err == nil:
		if existing.Status == models.FriendshipAccepted {
			return dto.FriendRequestResponse{}, ErrAlreadyFriends
		}
		return dto.FriendRequestResponse{}, ErrFriendRequestPending
	case !errors.Is(err, gorm.ErrRecordNotFound):
		span.RecordError(err)
		return dto.FriendRequestResponse{}, fmt.Errorf("load friendship: %w", err)
	}

	sender := s.profile(ctx, session)
	notification := models.Notification{
		ID:         models.FriendRequestNotificationID(session.UserID, target.ID),
		Type:       models.NotificationFriendRequest,
		SenderID:   session.UserID,
		SenderName: sender.DisplayName,
		ReceiverID: target.ID,
		Message:    fmt.Sprintf("%s sent you a friend request", sender.DisplayName),
	}

	friendship, err := s.repo.Request(ctx, session.UserID, target.ID, notification)
	if err != nil {
		if errors.Is(err, repository.ErrFriendshipConflict) {
			return dto.FriendRequestResponse{}, ErrFriendRequestPending
		}
		span.RecordError(err)
		return dto.FriendRequestResponse{}, fmt.Errorf("send friend request: %w", err)
	}

	s.dispatch(ctx, notification)
	return dto.NewFriendRequestResponse(friendship), nil
}

func (s *friendService) CancelRequest(ctx context.Context, session Session, targetID string) error {
	ctx, span := s.startSpan(ctx, "friends.cancel_request", session.UserID, targetID)
	defer span.End()

	if _, err := s.validPeer(session, targetID); err != nil {
		return err
	}
	if err := s.repo.Cancel(ctx, session.UserID, targetID); err != nil {
		return s.mapConflict(span, err, ErrFriendRequestNotFound)
	}
	return nil
}

func (s *friendService) AcceptRequest(ctx context.Context, session Session, requesterID string) (dto.FriendStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "friends.accept_request", requesterID, session.UserID)
	defer span.End()

	if _, err := s.validPeer(session, requesterID); err != nil {
		return dto.FriendStatusResponse{}, err
	}

	me := s.profile(ctx, session)
	notification := models.Notification{
		ID:         uuid.NewString(),
		Type:       models.NotificationFriendRequestAccepted,
		SenderID:   session.UserID,
		SenderName: me.DisplayName,
		ReceiverID: requesterID,
		Message:    fmt.Sprintf("%s accepted your friend request", me.DisplayName),
	}

	if _, err := s.repo.Accept(ctx, requesterID, session.UserID, notification); err != nil {
		return dto.FriendStatusResponse{}, s.mapConflict(span, err, ErrFriendRequestNotFound)
	}

	s.dispatch(ctx, notification)
	return dto.FriendStatusResponse{UserID: requesterID, Status: dto.FriendStatusFriends}, nil
}

func (s *friendService) DeclineRequest(ctx context.Context, session Session, requesterID string) (dto.FriendStatusResponse, error) {
	ctx, span := s.startSpan(ctx, "friends.decline_request", requesterID, session.UserID)
	defer span.End()

	if _, err := s.validPeer(session, requesterID); err != nil {
		return dto.FriendStatusResponse{}, err
	}

	me := s.profile(ctx, session)
	notification := models.Notification{
		ID:         uuid.NewString(),
		Type:       models.NotificationFriendRequestRejected,
		SenderID:   session.UserID,
		SenderName: me.DisplayName,
		ReceiverID: requesterID,
		Message:    fmt.Sprintf("%s declined your friend request", me.DisplayName),
	}

	if err := s.repo.Decline(ctx, requesterID, session.UserID, notification); err != nil {
		return dto.FriendStatusResponse{}, s.mapConflict(span, err, ErrFriendRequestNotFound)
	}

	s.dispatch(ctx, notification)
	return dto.FriendStatusResponse{UserID: requesterID, Status: dto.FriendStatusNone}, nil
}

func (s *friendService) RemoveFriend(ctx context.Context, session Session, friendID string) error {
	ctx, span := s.startSpan(ctx, "friends.remove", session.UserID, friendID)
	defer span.End()

	if _, err := s.validPeer(session, friendID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, session.UserID, friendID); err != nil {
		return s.mapConflict(span, err, ErrNotFriends)
	}
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, session Session) ([]dto.UserSummary, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListFriendIDs(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries := dto.NewUserSummarySlice(users)
	for i := range summaries {
		summaries[i].Email = ""
	}
	return summaries, nil
}

func (s *friendService) ListReceived(ctx context.Context, session Session) ([]dto.FriendRequestResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListIncoming(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return dto.NewFriendRequestResponseSlice(rows), nil
}

func (s *friendService) ListSent(ctx context.Context, session Session) ([]dto.FriendRequestResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListOutgoing(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return dto.NewFriendRequestResponseSlice(rows), nil
}

func (s *friendService) Status(ctx context.Context, session Session, otherID string) (dto.FriendStatusResponse, error) {
	if _, err := s.validPeer(session, otherID); err != nil {
		return dto.FriendStatusResponse{}, err
	}

	friendship, err := s.repo.Find(ctx, session.UserID, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FriendStatusResponse{UserID: otherID, Status: dto.FriendStatusNone}, nil
		}
		return dto.FriendStatusResponse{}, err
	}
	return dto.FriendStatusResponse{UserID: otherID, Status: friendStatus(friendship, session.UserID)}, nil
}

func friendStatus(friendship models.Friendship, viewerID string) string {
	switch {
	case friendship.Status == models.FriendshipAccepted:
		return dto.FriendStatusFriends
	case friendship.RequesterID == viewerID:
		return dto.FriendStatusPendingSent
	default:
		return dto.FriendStatusPendingReceived
	}
}

func (s *friendService) validPeer(session Session, otherID string) (string, error) {
	if err := requireSession(session); err != nil {
		return "", err
	}
	if _, err := uuid.Parse(otherID); err != nil {
		return "", fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	if otherID == session.UserID {
		return "", ErrSelfFriendship
	}
	return otherID, nil
}

func (s *friendService) loadTarget(ctx context.Context, session Session, targetID string) (models.User, error) {
	if _, err := s.validPeer(session, targetID); err != nil {
		return models.User{}, err
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return target, nil
}

func (s *friendService) profile(ctx context.Context, session Session) models.User {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return models.User{ID: session.UserID, DisplayName: session.DisplayName, PhotoURL: session.PhotoURL}
	}
	return user
}

func (s *friendService) dispatch(ctx context.Context, notification models.Notification) {
	if s.notifications != nil {
		s.notifications.Dispatch(ctx, notification)
	}
}

func (s *friendService) mapConflict(span trace.Span, err, conflict error) error {
	if errors.Is(err, repository.ErrFriendshipConflict) {
		return conflict
	}
	span.RecordError(err)
	s.logger.Error().Err(err).Msg("friendship write failed")
	return err
}

func (s *friendService) startSpan(ctx context.Context, name, requesterID, addresseeID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("friendship.requester_id", requesterID),
		attribute.String("friendship.addressee_id", addresseeID),
	))
}
