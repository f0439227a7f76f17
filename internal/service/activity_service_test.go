package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/hikelink-api/internal/badges"
	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func TestActivityServiceEvaluateBadgesPersistsProgress(t *testing.T) {
	db := setupServiceDB(t)
	activities := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)
	svc := NewActivityService(activities, users, testLogger())
	ctx := context.Background()

	hiker := createUser(t, db, "Hiker")
	for _, km := range []float64{0.6, 0.3} {
		require.NoError(t, activities.Create(ctx, &models.Activity{
			UserID: hiker.ID, TrailName: "Valea Rea", DistanceKm: km, Distance: "0.00", Elapsed: "10:00", Date: "2026-05-01",
		}))
	}

	progress, err := svc.Badges(ctx, sessionFor(hiker))
	require.NoError(t, err)
	require.Equal(t, []string{badges.FirstHike, badges.FirstDistance}, progress.Earned)
	require.Equal(t, "Novice", progress.Level)
	require.ElementsMatch(t, []string{badges.FirstHike, badges.FirstDistance}, progress.Newly)
	require.Equal(t, dto.ActivityStats{Hikes: 2, DistanceKm: 1}, progress.Stats)

	stored, err := users.FindByID(ctx, hiker.ID)
	require.NoError(t, err)
	require.Equal(t, "Novice", stored.Level)
	require.Len(t, stored.Badges, 2)

	again, err := svc.EvaluateBadges(ctx, hiker.ID)
	require.NoError(t, err)
	require.Empty(t, again.Newly)

	listed, err := svc.List(ctx, sessionFor(hiker), 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestActivityServiceEvaluateBadgesNeverLowersProgress(t *testing.T) {
	db := setupServiceDB(t)
	activities := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)
	svc := NewActivityService(activities, users, testLogger())
	ctx := context.Background()

	veteran := createUser(t, db, "Veteran")
	_, err := users.Update(ctx, veteran.ID, map[string]interface{}{
		"level":  "Explorer",
		"badges": datatypes.JSONSlice[string]{badges.DistanceMaster},
	})
	require.NoError(t, err)
	require.NoError(t, activities.Create(ctx, &models.Activity{
		UserID: veteran.ID, TrailName: "Postavarul", DistanceKm: 2, Distance: "2.00", Elapsed: "40:00", Date: "2026-06-01",
	}))

	progress, err := svc.EvaluateBadges(ctx, veteran.ID)
	require.NoError(t, err)
	require.Equal(t, "Explorer", progress.Level)
	require.Equal(t, []string{badges.FirstHike, badges.FirstDistance, badges.DistanceMaster}, progress.Earned)
	require.Equal(t, []string{badges.FirstHike, badges.FirstDistance}, progress.Newly)

	newcomer := createUser(t, db, "Newcomer")
	fresh, err := svc.EvaluateBadges(ctx, newcomer.ID)
	require.NoError(t, err)
	require.Equal(t, "Novice", fresh.Level)
	require.Empty(t, fresh.Earned)
}
