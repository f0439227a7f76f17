package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// FeedFilter narrows the feed.
type FeedFilter struct {
	Search string
	Kind   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// PostRepository persists posts, events and their likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	CreateEvent(ctx context.Context, event *models.Post, owner models.User) error
	FindByID(ctx context.Context, id string) (models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	Feed(ctx context.Context, filter FeedFilter) ([]models.Post, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Post, error)
	Participants(ctx context.Context, postIDs []string) (map[string][]string, error)
	LikedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	Like(ctx context.Context, postID, userID string) (bool, int, error)
	Unlike(ctx context.Context, postID, userID string) (bool, int, error)
	AddComment(ctx context.Context, comment *models.PostComment) error
	ListComments(ctx context.Context, postID string, limit, offset int) ([]models.PostComment, error)
	Flag(ctx context.Context, postID, reason string) error
	ListReported(ctx context.Context, page, pageSize int) ([]models.Post, int64, error)
	ClearFlag(ctx context.Context, postID string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs the post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// CreateEvent inserts the event with its owner already on the roster, holding an
// accepted participation record and a seat in the event chat.
func (r *postRepository) CreateEvent(ctx context.Context, event *models.Post, owner models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event.Kind = models.PostKindEvent
		event.OwnerID = owner.ID
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.EventParticipant{EventID: event.ID, UserID: owner.ID}).Error; err != nil {
			return err
		}

		record := models.UpcomingEvent{
			ID:           models.UpcomingEventID(event.ID, owner.ID),
			EventID:      event.ID,
			UserID:       owner.ID,
			UserName:     owner.DisplayName,
			UserPhotoURL: owner.PhotoURL,
			OwnerID:      owner.ID,
			Status:       models.StatusAccepted,
			Title:        event.Title,
			Location:     event.Location,
			Distance:     event.Distance,
			MeetingPoint: event.MeetingPoint,
			ImageURL:     event.ImageURL,
			EventDate:    event.EventDate,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		chat := models.GroupChat{ID: models.GroupChatID(event.ID), EventID: event.ID, Title: event.Title}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		return tx.Create(&models.GroupChatMember{ChatID: chat.ID, UserID: owner.ID}).Error
	})
}

func (r *postRepository) FindByID(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Update saves the post and, for events, copies the hike fields onto every participation
// record and the chat title.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Counters move only through Like, Unlike and AddComment.
		if err := tx.Omit("likes_count", "comments_count").Save(post).Error; err != nil {
			return err
		}
		if !post.IsEvent() {
			return nil
		}

		err := tx.Model(&models.UpcomingEvent{}).
			Where("event_id = ?", post.ID).
			Updates(map[string]interface{}{
				"title":         post.Title,
				"location":      post.Location,
				"distance":      post.Distance,
				"meeting_point": post.MeetingPoint,
				"image_url":     post.ImageURL,
				"event_date":    post.EventDate,
				"updated_at":    time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.GroupChat{}).
			Where("event_id = ?", post.ID).
			Update("title", post.Title).Error
	})
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePostTree(tx, id)
	})
}

// deletePostTree removes a post and everything hanging off it.
func deletePostTree(tx *gorm.DB, postID string) error {
	chatID := models.GroupChatID(postID)

	steps := []struct {
		model interface{}
		query string
		arg   interface{}
	}{
		{&models.PostLike{}, "post_id = ?", postID},
		{&models.PostComment{}, "post_id = ?", postID},
		{&models.EventParticipant{}, "event_id = ?", postID},
		{&models.UpcomingEvent{}, "event_id = ?", postID},
		{&models.LiveUpdate{}, "event_id = ?", postID},
		{&models.Notification{}, "event_id = ?", postID},
		{&models.ChatMessage{}, "room_id = ?", chatID},
		{&models.GroupChatMember{}, "chat_id = ?", chatID},
		{&models.GroupChat{}, "id = ?", chatID},
	}
	for _, step := range steps {
		if err := tx.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
			return err
		}
	}

	result := tx.Where("id = ?", postID).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) Feed(ctx context.Context, filter FeedFilter) ([]models.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(content) LIKE ? OR LOWER(title) LIKE ? OR LOWER(location) LIKE ? OR LOWER(owner_name) LIKE ?",
			like, like, like, like,
		)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Participants(ctx context.Context, postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []models.EventParticipant
	if err := r.db.WithContext(ctx).Where("event_id IN ?", postIDs).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = append(out[row.EventID], row.UserID)
	}
	return out, nil
}

func (r *postRepository) LikedBy(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}

	var liked []string
	err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// Like adds the user to the post's likes. The boolean reports whether the set changed.
func (r *postRepository) Like(ctx context.Context, postID, userID string) (bool, int, error) {
	var changed bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{PostID: postID, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected > 0
		if changed {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).Select("likes_count").Scan(&count).Error
	})
	return changed, count, err
}

// Unlike removes the user from the post's likes. The boolean reports whether the set changed.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (bool, int, error) {
	var changed bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected > 0
		if changed {
			if err := tx.Model(&models.Post{}).Where("id = ? AND likes_count > 0", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).Select("likes_count").Scan(&count).Error
	})
	return changed, count, err
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.PostComment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

func (r *postRepository) ListComments(ctx context.Context, postID string, limit, offset int) ([]models.PostComment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var comments []models.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *postRepository) Flag(ctx context.Context, postID, reason string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Updates(map[string]interface{}{"reported": true, "report_reason": reason})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) ListReported(ctx context.Context, page, pageSize int) ([]models.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("reported = ?", true)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var posts []models.Post
	if err := query.Order("updated_at DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ClearFlag(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Updates(map[string]interface{}{"reported": false, "report_reason": ""})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
