package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

func TestUserRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")
	_, err := repo.Update(ctx, bob.ID, map[string]interface{}{"banned": true})
	require.NoError(t, err)

	users, total, err := repo.List(ctx, UserFilter{Search: "ali", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Alice", users[0].DisplayName)

	banned := true
	users, total, err = repo.List(ctx, UserFilter{Banned: &banned})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, bob.ID, users[0].ID)

	found, err := repo.FindByEmail(ctx, "  BOB@hikelink.test ")
	require.NoError(t, err)
	require.Equal(t, bob.ID, found.ID)
}

func TestUserRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner")
	hiker := seedUser(t, db, "Hiker")
	event := createTestEvent(t, db, owner)
	_, err := NewParticipationRepository(db).Apply(ctx, requestChange(event, hiker))
	require.NoError(t, err)

	reviews := NewReviewRepository(db)
	require.NoError(t, reviews.Create(ctx, &models.Review{TargetUserID: hiker.ID, ReviewerID: owner.ID, Rating: 5}))
	require.NoError(t, reviews.Create(ctx, &models.Review{TargetUserID: owner.ID, ReviewerID: hiker.ID, Rating: 4}))
	other := createTestEvent(t, db, hiker)
	require.NoError(t, NewLiveUpdateRepository(db).Create(ctx, &models.LiveUpdate{EventID: other.ID, AuthorID: owner.ID, Message: "running late"}))

	require.NoError(t, repo.Delete(ctx, owner.ID))

	_, err = repo.FindByID(ctx, owner.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var records int64
	require.NoError(t, db.Model(&models.UpcomingEvent{}).Count(&records).Error)
	require.Equal(t, int64(1), records, "only the hiker's own event remains")

	for _, model := range []interface{}{&models.Review{}, &models.LiveUpdate{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}

	require.ErrorIs(t, repo.Delete(ctx, owner.ID), gorm.ErrRecordNotFound)
}

func TestReviewRepositorySummary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	target := seedUser(t, db, "Target")
	reviewer := seedUser(t, db, "Reviewer")

	empty, err := repo.Summary(ctx, target.ID)
	require.NoError(t, err)
	require.Zero(t, empty.Count)
	require.Zero(t, empty.Average)

	for _, rating := range []int{5, 4} {
		require.NoError(t, repo.Create(ctx, &models.Review{TargetUserID: target.ID, ReviewerID: reviewer.ID, Rating: rating}))
	}

	summary, err := repo.Summary(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.Count)
	require.InDelta(t, 4.5, summary.Average, 0.001)

	listed, err := repo.ListByTarget(ctx, target.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}
