package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/models"
)

func friendRequestNotification(from, to models.User) models.Notification {
	return models.Notification{
		ID:         models.FriendRequestNotificationID(from.ID, to.ID),
		Type:       models.NotificationFriendRequest,
		SenderID:   from.ID,
		ReceiverID: to.ID,
	}
}

func TestFriendshipRepositoryRequestAndAccept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana")
	dan := seedUser(t, db, "Dan")

	_, err := repo.Request(ctx, ana.ID, dan.ID, friendRequestNotification(ana, dan))
	require.NoError(t, err)

	_, err = repo.Request(ctx, dan.ID, ana.ID, friendRequestNotification(dan, ana))
	require.ErrorIs(t, err, ErrFriendshipConflict, "a pair shares one friendship row")

	incoming, err := repo.ListIncoming(ctx, dan.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	friendship, err := repo.Accept(ctx, ana.ID, dan.ID, models.Notification{
		Type:       models.NotificationFriendRequestAccepted,
		SenderID:   dan.ID,
		ReceiverID: ana.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.FriendshipAccepted, friendship.Status)

	var pending int64
	require.NoError(t, db.Model(&models.Notification{}).Where("type = ?", models.NotificationFriendRequest).Count(&pending).Error)
	require.Zero(t, pending)

	friends, err := repo.ListFriendIDs(ctx, dan.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ana.ID}, friends)

	count, err := repo.CountFriends(ctx, ana.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, repo.Remove(ctx, dan.ID, ana.ID))
	require.ErrorIs(t, repo.Remove(ctx, dan.ID, ana.ID), ErrFriendshipConflict)
}

func TestFriendshipRepositoryOnlyAddresseeCanAccept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana")
	dan := seedUser(t, db, "Dan")

	_, err := repo.Request(ctx, ana.ID, dan.ID, friendRequestNotification(ana, dan))
	require.NoError(t, err)

	_, err = repo.Accept(ctx, dan.ID, ana.ID, models.Notification{Type: models.NotificationFriendRequestAccepted, ReceiverID: dan.ID})
	require.ErrorIs(t, err, ErrFriendshipConflict)

	require.NoError(t, repo.Cancel(ctx, ana.ID, dan.ID))
	_, err = repo.Find(ctx, ana.ID, dan.ID)
	require.Error(t, err)
}
