package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func TestSeedServiceTokenGuard(t *testing.T) {
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)

	disabled := NewSeedService(users, posts, validator.New(), false, "secret", testLogger())
	_, err := disabled.SeedDemo(context.Background(), "secret", dto.SeedDemoRequest{})
	require.ErrorIs(t, err, ErrSeedDisabled)

	svc := NewSeedService(users, posts, validator.New(), true, "secret", testLogger())
	_, err = svc.SeedDemo(context.Background(), "wrong", dto.SeedDemoRequest{})
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	_, err = svc.SeedDemo(context.Background(), "secret", dto.SeedDemoRequest{Hikers: 500})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSeedServiceCreatesDemoData(t *testing.T) {
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	svc := NewSeedService(users, posts, validator.New(), true, "secret", testLogger())

	resp, err := svc.SeedDemo(context.Background(), "secret", dto.SeedDemoRequest{Hikers: 4, Events: 2, Posts: 3, Seed: 42})
	require.NoError(t, err)
	require.Len(t, resp.Hikers, 4)
	require.Equal(t, 2, resp.Events)
	require.Equal(t, 3, resp.Posts)
	require.Equal(t, DemoPassword, resp.Password)

	var eventCount, chatCount int64
	require.NoError(t, db.Model(&models.Post{}).Where("kind = ?", models.PostKindEvent).Count(&eventCount).Error)
	require.NoError(t, db.Model(&models.GroupChat{}).Count(&chatCount).Error)
	require.Equal(t, int64(2), eventCount)
	require.Equal(t, int64(2), chatCount)

	user, err := users.FindByEmail(context.Background(), resp.Hikers[0])
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
}
