package service

import (
	"context"
	"errors"
	"fmt"
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
	// ErrPostNotFound indicates the post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrNotPostOwner is returned when someone other than the author edits a post.
	ErrNotPostOwner = errors.New("only the author can change this post")
	// ErrEmptyContent is returned when sanitising leaves nothing to store.
	ErrEmptyContent = errors.New("content is empty")
)

// PostService publishes posts and events and serves the feed.
type PostService interface {
	CreatePost(ctx context.Context, session Session, req dto.PostCreateRequest) (dto.PostResponse, error)
	CreateEvent(ctx context.Context, session Session, req dto.EventCreateRequest) (dto.PostResponse, error)
	Get(ctx context.Context, session Session, id string) (dto.PostResponse, error)
	Update(ctx context.Context, session Session, id string, req dto.PostUpdateRequest) (dto.PostResponse, error)
	Delete(ctx context.Context, session Session, id string) error
	Feed(ctx context.Context, session Session, query dto.FeedQuery) (dto.FeedResponse, error)
	ListByOwner(ctx context.Context, session Session, ownerID string) ([]dto.PostResponse, error)
	Like(ctx context.Context, session Session, id string) (dto.LikeResponse, error)
	Unlike(ctx context.Context, session Session, id string) (dto.LikeResponse, error)
	AddComment(ctx context.Context, session Session, id string, req dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListComments(ctx context.Context, id string, limit, offset int) ([]dto.CommentResponse, error)
	Report(ctx context.Context, session Session, id string, req dto.ReportPostRequest) error
}

type postService struct {
	repo          repository.PostRepository
	users         repository.UserRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewPostService constructs the post service.
func NewPostService(repo repository.PostRepository, users repository.UserRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) PostService {
	return &postService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "post_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/post"),
	}
}

func (s *postService) CreatePost(ctx context.Context, session Session, req dto.PostCreateRequest) (dto.PostResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.PostResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.PostResponse{}, err
	}

	content := s.clean(req.Content)
	if content == "" {
		return dto.PostResponse{}, ErrEmptyContent
	}

	author := s.author(ctx, session)
	post := models.Post{
		OwnerID:       author.ID,
		OwnerName:     author.DisplayName,
		OwnerPhotoURL: author.PhotoURL,
		Kind:          models.PostKindPost,
		Content:       content,
		ImageURL:      strings.TrimSpace(req.ImageURL),
	}

	ctx, span := s.tracer.Start(ctx, "posts.create")
	defer span.End()

	if err := s.repo.Create(ctx, &post); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, fmt.Errorf("create post: %w", err)
	}
	return dto.NewPostResponse(post, nil, false), nil
}

func (s *postService) CreateEvent(ctx context.Context, session Session, req dto.EventCreateRequest) (dto.PostResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.PostResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.PostResponse{}, err
	}

	title := s.clean(req.Title)
	if title == "" {
		return dto.PostResponse{}, ErrEmptyContent
	}

	owner := s.author(ctx, session)
	date := req.EventDate.UTC()
	event := models.Post{
		OwnerName:     owner.DisplayName,
		OwnerPhotoURL: owner.PhotoURL,
		Title:         title,
		Description:   s.clean(req.Description),
		EventDate:     &date,
		Location:      s.clean(req.Location),
		Distance:      s.clean(req.Distance),
		MeetingPoint:  s.clean(req.MeetingPoint),
		ImageURL:      strings.TrimSpace(req.ImageURL),
	}

	ctx, span := s.tracer.Start(ctx, "posts.create_event")
	defer span.End()

	if err := s.repo.CreateEvent(ctx, &event, owner); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("owner_id", owner.ID).Msg("event created")
	return dto.NewPostResponse(event, []string{owner.ID}, false), nil
}

func (s *postService) Get(ctx context.Context, session Session, id string) (dto.PostResponse, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}
	responses, err := s.decorate(ctx, session, []models.Post{post})
	if err != nil {
		return dto.PostResponse{}, err
	}
	return responses[0], nil
}

func (s *postService) Update(ctx context.Context, session Session, id string, req dto.PostUpdateRequest) (dto.PostResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.PostResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.PostResponse{}, err
	}

	post, err := s.load(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}
	if post.OwnerID != session.UserID {
		return dto.PostResponse{}, ErrNotPostOwner
	}

	if req.ImageURL != nil {
		post.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if post.IsEvent() {
		s.applyEventUpdate(&post, req)
	} else if req.Content != nil {
		content := s.clean(*req.Content)
		if content == "" {
			return dto.PostResponse{}, ErrEmptyContent
		}
		post.Content = content
	}

	ctx, span := s.tracer.Start(ctx, "posts.update", trace.WithAttributes(attribute.String("post.id", post.ID)))
	defer span.End()

	if err := s.repo.Update(ctx, &post); err != nil {
		span.RecordError(err)
		return dto.PostResponse{}, fmt.Errorf("update post: %w", err)
	}

	responses, err := s.decorate(ctx, session, []models.Post{post})
	if err != nil {
		return dto.PostResponse{}, err
	}
	return responses[0], nil
}

func (s *postService) applyEventUpdate(post *models.Post, req dto.PostUpdateRequest) {
	if req.Title != nil {
		if title := s.clean(*req.Title); title != "" {
			post.Title = title
		}
	}
	if req.Description != nil {
		post.Description = s.clean(*req.Description)
	}
	if req.EventDate != nil {
		date := req.EventDate.UTC()
		post.EventDate = &date
	}
	if req.Location != nil {
		post.Location = s.clean(*req.Location)
	}
	if req.Distance != nil {
		post.Distance = s.clean(*req.Distance)
	}
	if req.MeetingPoint != nil {
		post.MeetingPoint = s.clean(*req.MeetingPoint)
	}
}

func (s *postService) Delete(ctx context.Context, session Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.OwnerID != session.UserID && !session.IsAdmin() {
		return ErrNotPostOwner
	}

	ctx, span := s.tracer.Start(ctx, "posts.delete", trace.WithAttributes(attribute.String("post.id", post.ID)))
	defer span.End()

	if err := s.repo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *postService) Feed(ctx context.Context, session Session, query dto.FeedQuery) (dto.FeedResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.FeedResponse{}, err
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return dto.FeedResponse{}, fmt.Errorf("%w: date range", ErrInvalidInput)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	posts, total, err := s.repo.Feed(ctx, repository.FeedFilter{
		Search: strings.TrimSpace(query.Search),
		Kind:   query.Kind,
		From:   query.From,
		To:     query.To,
		Limit:  limit,
		Offset: query.Offset,
	})
	if err != nil {
		return dto.FeedResponse{}, err
	}

	items, err := s.decorate(ctx, session, posts)
	if err != nil {
		return dto.FeedResponse{}, err
	}
	return dto.FeedResponse{Items: items, Total: total, Limit: limit, Offset: query.Offset}, nil
}

func (s *postService) ListByOwner(ctx context.Context, session Session, ownerID string) ([]dto.PostResponse, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	posts, err := s.repo.ListByOwner(ctx, ownerID, 50)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, session, posts)
}

func (s *postService) Like(ctx context.Context, session Session, id string) (dto.LikeResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.LikeResponse{}, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	changed, count, err := s.repo.Like(ctx, post.ID, session.UserID)
	if err != nil {
		return dto.LikeResponse{}, fmt.Errorf("like post: %w", err)
	}

	if changed {
		liker := s.author(ctx, session)
		s.notify(ctx, models.Notification{
			Type:       models.NotificationPostLiked,
			SenderID:   liker.ID,
			SenderName: liker.DisplayName,
			ReceiverID: post.OwnerID,
			Message:    fmt.Sprintf("%s liked your post", liker.DisplayName),
		})
	}
	return dto.LikeResponse{PostID: post.ID, Liked: true, LikesCount: count}, nil
}

func (s *postService) Unlike(ctx context.Context, session Session, id string) (dto.LikeResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.LikeResponse{}, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return dto.LikeResponse{}, err
	}

	_, count, err := s.repo.Unlike(ctx, post.ID, session.UserID)
	if err != nil {
		return dto.LikeResponse{}, fmt.Errorf("unlike post: %w", err)
	}
	return dto.LikeResponse{PostID: post.ID, Liked: false, LikesCount: count}, nil
}

func (s *postService) AddComment(ctx context.Context, session Session, id string, req dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.CommentResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentResponse{}, err
	}
	content := s.clean(req.Content)
	if content == "" {
		return dto.CommentResponse{}, ErrEmptyContent
	}

	post, err := s.load(ctx, id)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	author := s.author(ctx, session)
	comment := models.PostComment{
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		Content:    content,
	}
	if err := s.repo.AddComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, fmt.Errorf("add comment: %w", err)
	}

	s.notify(ctx, models.Notification{
		Type:       models.NotificationPostCommented,
		SenderID:   author.ID,
		SenderName: author.DisplayName,
		ReceiverID: post.OwnerID,
		Message:    fmt.Sprintf("%s commented on your post", author.DisplayName),
	})
	return dto.NewCommentResponse(comment), nil
}

func (s *postService) ListComments(ctx context.Context, id string, limit, offset int) ([]dto.CommentResponse, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, post.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

func (s *postService) Report(ctx context.Context, session Session, id string, req dto.ReportPostRequest) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Flag(ctx, post.ID, s.clean(req.Reason)); err != nil {
		return fmt.Errorf("flag post: %w", err)
	}
	s.logger.Info().Str("post_id", post.ID).Str("reporter_id", session.UserID).Msg("post reported")
	return nil
}

// decorate attaches rosters and the caller's like state to posts.
func (s *postService) decorate(ctx context.Context, session Session, posts []models.Post) ([]dto.PostResponse, error) {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	participants, err := s.repo.Participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked := map[string]bool{}
	if session.UserID != "" {
		if liked, err = s.repo.LikedBy(ctx, session.UserID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, dto.NewPostResponse(post, participants[post.ID], liked[post.ID]))
	}
	return out, nil
}

func (s *postService) load(ctx context.Context, id string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, fmt.Errorf("%w: post id", ErrInvalidInput)
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, fmt.Errorf("load post: %w", err)
	}
	return post, nil
}

func (s *postService) author(ctx context.Context, session Session) models.User {
	fallback := models.User{ID: session.UserID, DisplayName: session.DisplayName, PhotoURL: session.PhotoURL}
	if s.users == nil {
		return fallback
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return fallback
	}
	return user
}

func (s *postService) notify(ctx context.Context, notification models.Notification) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Notify(ctx, notification); err != nil {
		s.logger.Warn().Err(err).Str("type", notification.Type).Msg("failed to store notification")
	}
}

func (s *postService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}
