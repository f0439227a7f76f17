package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func TestFriendServiceRequestAcceptRemove(t *testing.T) {
	db := setupServiceDB(t)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, testLogger())
	svc := NewFriendService(repository.NewFriendshipRepository(db), repository.NewUserRepository(db), notifications, testLogger())
	ctx := context.Background()

	ana := createUser(t, db, "Ana")
	mihai := createUser(t, db, "Mihai")

	stream, cancel := notifications.Subscribe(mihai.ID)
	defer cancel()

	_, err := svc.SendRequest(ctx, sessionFor(ana), mihai.ID)
	require.NoError(t, err)

	select {
	case pushed := <-stream:
		require.Equal(t, models.NotificationFriendRequest, pushed.Type)
		require.Equal(t, ana.ID, pushed.SenderID)
	case <-time.After(time.Second):
		t.Fatal("friend request was not pushed")
	}

	status, err := svc.Status(ctx, sessionFor(ana), mihai.ID)
	require.NoError(t, err)
	require.Equal(t, dto.FriendStatusPendingSent, status.Status)

	status, err = svc.Status(ctx, sessionFor(mihai), ana.ID)
	require.NoError(t, err)
	require.Equal(t, dto.FriendStatusPendingReceived, status.Status)

	_, err = svc.SendRequest(ctx, sessionFor(mihai), ana.ID)
	require.ErrorIs(t, err, ErrFriendRequestPending)

	received, err := svc.ListReceived(ctx, sessionFor(mihai))
	require.NoError(t, err)
	require.Len(t, received, 1)

	_, err = svc.AcceptRequest(ctx, sessionFor(mihai), ana.ID)
	require.NoError(t, err)

	var requestNotifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("type = ?", models.NotificationFriendRequest).Count(&requestNotifications).Error)
	require.Zero(t, requestNotifications)

	friends, err := svc.ListFriends(ctx, sessionFor(ana))
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, mihai.ID, friends[0].ID)

	_, err = svc.SendRequest(ctx, sessionFor(ana), mihai.ID)
	require.ErrorIs(t, err, ErrAlreadyFriends)

	_, err = svc.AcceptRequest(ctx, sessionFor(mihai), ana.ID)
	require.ErrorIs(t, err, ErrFriendRequestNotFound)

	require.NoError(t, svc.RemoveFriend(ctx, sessionFor(mihai), ana.ID))
	require.ErrorIs(t, svc.RemoveFriend(ctx, sessionFor(mihai), ana.ID), ErrNotFriends)

	status, err = svc.Status(ctx, sessionFor(ana), mihai.ID)
	require.NoError(t, err)
	require.Equal(t, dto.FriendStatusNone, status.Status)
}

func TestFriendServiceDeclineAndCancel(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewFriendService(repository.NewFriendshipRepository(db), repository.NewUserRepository(db), nil, testLogger())
	ctx := context.Background()

	ana := createUser(t, db, "Ana")
	mihai := createUser(t, db, "Mihai")

	_, err := svc.SendRequest(ctx, sessionFor(ana), ana.ID)
	require.ErrorIs(t, err, ErrSelfFriendship)

	_, err = svc.SendRequest(ctx, sessionFor(ana), mihai.ID)
	require.NoError(t, err)

	_, err = svc.DeclineRequest(ctx, sessionFor(mihai), ana.ID)
	require.NoError(t, err)

	var rejected int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ? AND receiver_id = ?", models.NotificationFriendRequestRejected, ana.ID).
		Count(&rejected).Error)
	require.Equal(t, int64(1), rejected)

	_, err = svc.SendRequest(ctx, sessionFor(ana), mihai.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.CancelRequest(ctx, sessionFor(mihai), ana.ID), ErrFriendRequestNotFound)
	require.NoError(t, svc.CancelRequest(ctx, sessionFor(ana), mihai.ID))

	sent, err := svc.ListSent(ctx, sessionFor(ana))
	require.NoError(t, err)
	require.Empty(t, sent)
}
