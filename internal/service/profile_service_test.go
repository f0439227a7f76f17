package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func newProfileService(t *testing.T) (ProfileService, *gorm.DB, repository.FriendshipRepository) {
	t.Helper()
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	friendships := repository.NewFriendshipRepository(db)
	activities := NewActivityService(repository.NewActivityRepository(db), users, testLogger())
	svc := NewProfileService(users, friendships, repository.NewReviewRepository(db), activities, validator.New(), testLogger())
	return svc, db, friendships
}

func TestProfileServiceGetAndUpdate(t *testing.T) {
	svc, db, friendships := newProfileService(t)
	ctx := context.Background()

	ana := createUser(t, db, "Ana")
	dan := createUser(t, db, "Dan")

	_, err := friendships.Request(ctx, ana.ID, dan.ID, models.Notification{ID: models.FriendRequestNotificationID(ana.ID, dan.ID), Type: models.NotificationFriendRequest, SenderID: ana.ID, ReceiverID: dan.ID})
	require.NoError(t, err)
	_, err = friendships.Accept(ctx, ana.ID, dan.ID, models.Notification{Type: models.NotificationFriendRequestAccepted, SenderID: dan.ID, ReceiverID: ana.ID})
	require.NoError(t, err)

	bio := "Weekend <i>scrambler</i>"
	updated, err := svc.Update(ctx, sessionFor(ana), dto.ProfileUpdateRequest{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "Weekend scrambler", updated.Bio)
	require.Equal(t, 1, updated.Friends)
	require.Equal(t, ana.Email, updated.Email)

	viewed, err := svc.Get(ctx, sessionFor(dan), ana.ID)
	require.NoError(t, err)
	require.Empty(t, viewed.Email, "email is private to the owner")
	require.Equal(t, []string{}, viewed.Badges)
	require.Equal(t, "Novice", viewed.Level)

	found, err := svc.Search(ctx, sessionFor(dan), "an")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, ana.ID, found[0].ID)
}

func TestProfileServiceReviews(t *testing.T) {
	svc, db, _ := newProfileService(t)
	ctx := context.Background()

	ana := createUser(t, db, "Ana")
	dan := createUser(t, db, "Dan")
	ioana := createUser(t, db, "Ioana")

	review, err := svc.AddReview(ctx, sessionFor(dan), ana.ID, dto.ReviewRequest{Rating: 5, Comment: "Steady <b>pace</b>"})
	require.NoError(t, err)
	require.Equal(t, "Steady pace", review.Comment)
	require.Equal(t, "Dan", review.ReviewerName)

	_, err = svc.AddReview(ctx, sessionFor(ioana), ana.ID, dto.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, sessionFor(ana), ana.ID, dto.ReviewRequest{Rating: 5})
	require.ErrorIs(t, err, ErrSelfReview)

	for _, rating := range []int{0, 6} {
		_, err = svc.AddReview(ctx, sessionFor(dan), ana.ID, dto.ReviewRequest{Rating: rating})
		require.Error(t, err)
	}

	_, err = svc.AddReview(ctx, sessionFor(dan), "not-a-user", dto.ReviewRequest{Rating: 3})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddReview(ctx, Session{}, ana.ID, dto.ReviewRequest{Rating: 3})
	require.ErrorIs(t, err, ErrUnauthenticated)

	listed, err := svc.ListReviews(ctx, sessionFor(dan), ana.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	profile, err := svc.Get(ctx, sessionFor(dan), ana.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), profile.ReviewCount)
	require.InDelta(t, 4.5, profile.AverageRating, 0.001)

	var stored int64
	require.NoError(t, db.Model(&models.Review{}).Where("target_user_id = ?", ana.ID).Count(&stored).Error)
	require.Equal(t, int64(2), stored)
}
