package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func receive(t *testing.T, ch <-chan dto.NotificationResponse) dto.NotificationResponse {
	t.Helper()
	select {
	case notification := <-ch:
		return notification
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
	return dto.NotificationResponse{}
}

func TestNotificationServicePersistsAndDeliversLocally(t *testing.T) {
	db := setupServiceDB(t)
	ana := createUser(t, db, "Ana")
	mihai := createUser(t, db, "Mihai")
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, testLogger())
	ctx := context.Background()

	stream, cancel := svc.Subscribe(mihai.ID)
	defer cancel()

	created, err := svc.Notify(ctx, models.Notification{
		Type:       "post_liked",
		SenderID:   ana.ID,
		SenderName: ana.DisplayName,
		ReceiverID: mihai.ID,
		Message:    "<b>Ana</b> liked your post",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Ana liked your post", created.Message)

	delivered := receive(t, stream)
	require.Equal(t, created.ID, delivered.ID)

	unread, err := svc.UnreadCount(ctx, mihai.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	read, err := svc.MarkRead(ctx, created.ID, mihai.ID)
	require.NoError(t, err)
	require.True(t, read.Read)

	unread, err = svc.UnreadCount(ctx, mihai.ID)
	require.NoError(t, err)
	require.Zero(t, unread)

	require.Error(t, svc.Delete(ctx, created.ID, ana.ID))
	require.NoError(t, svc.Delete(ctx, created.ID, mihai.ID))
}

func TestNotificationServiceSkipsSelfNotifications(t *testing.T) {
	db := setupServiceDB(t)
	ana := createUser(t, db, "Ana")
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, testLogger())

	created, err := svc.Notify(context.Background(), models.Notification{Type: "post_liked", SenderID: ana.ID, ReceiverID: ana.ID})
	require.NoError(t, err)
	require.Empty(t, created.ID)

	items, err := svc.List(context.Background(), ana.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.List(context.Background(), "", 10, 0)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotificationServiceRelaysAcrossNodes(t *testing.T) {
	db := setupServiceDB(t)
	ana := createUser(t, db, "Ana")
	mihai := createUser(t, db, "Mihai")
	repo := repository.NewNotificationRepository(db)

	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = clientA.Close()
		_ = clientB.Close()
	})

	nodeA := NewNotificationService(repo, clientA, "hikelink", nil, testLogger())
	nodeB := NewNotificationService(repo, clientB, "hikelink", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeA.Start(ctx)
	nodeB.Start(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("hikelink:notifications")["hikelink:notifications"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	remote, stopRemote := nodeB.Subscribe(mihai.ID)
	defer stopRemote()
	local, stopLocal := nodeA.Subscribe(mihai.ID)
	defer stopLocal()

	created, err := nodeA.Notify(ctx, models.Notification{Type: "friend_request", SenderID: ana.ID, ReceiverID: mihai.ID, Message: "Ana wants to be friends"})
	require.NoError(t, err)

	require.Equal(t, created.ID, receive(t, remote).ID)
	require.Equal(t, created.ID, receive(t, local).ID)

	// The publishing node ignores its own relayed copy.
	select {
	case extra := <-local:
		t.Fatalf("duplicate delivery: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}
