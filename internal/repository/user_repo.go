package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// UserFilter narrows user listings for search and the admin panel.
type UserFilter struct {
	Search   string
	Role     string
	Banned   *bool
	Page     int
	PageSize int
}

// UserRepository persists registered hikers.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("display_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Banned != nil {
		query = query.Where("banned = ?", *filter.Banned)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes the user together with the rows that only make sense while the account exists.
// Events the user organised are removed with their rosters and chats.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ownedPosts []string
		if err := tx.Model(&models.Post{}).Where("owner_id = ?", id).Pluck("id", &ownedPosts).Error; err != nil {
			return err
		}
		for _, postID := range ownedPosts {
			if err := deletePostTree(tx, postID); err != nil {
				return err
			}
		}

		cleanups := []struct {
			model interface{}
			query string
		}{
			{&models.Friendship{}, "requester_id = ? OR addressee_id = ?"},
			{&models.Notification{}, "receiver_id = ? OR sender_id = ?"},
			{&models.Review{}, "target_user_id = ? OR reviewer_id = ?"},
		}
		for _, cleanup := range cleanups {
			if err := tx.Where(cleanup.query, id, id).Delete(cleanup.model).Error; err != nil {
				return err
			}
		}

		liked := tx.Model(&models.PostLike{}).Select("post_id").Where("user_id = ?", id)
		if err := tx.Model(&models.Post{}).
			Where("id IN (?) AND likes_count > 0", liked).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
			return err
		}

		if err := tx.Where("author_id = ?", id).Delete(&models.LiveUpdate{}).Error; err != nil {
			return err
		}

		single := []interface{}{
			&models.UpcomingEvent{},
			&models.EventParticipant{},
			&models.GroupChatMember{},
			&models.PostLike{},
			&models.Activity{},
		}
		for _, model := range single {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
