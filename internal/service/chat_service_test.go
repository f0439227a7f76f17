package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

func TestChatServiceMembersOnly(t *testing.T) {
	db := setupServiceDB(t)
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	posts := repository.NewPostRepository(db)
	svc := NewChatService(repository.NewChatRepository(db), client, "hikelink:test", nil, validator.New(), testLogger())
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	outsider := createUser(t, db, "Outsider")

	date := time.Now().Add(24 * time.Hour)
	event := models.Post{Title: "Ciucas plateau", EventDate: &date}
	require.NoError(t, posts.CreateEvent(ctx, &event, owner))
	chatID := models.GroupChatID(event.ID)

	sent, err := svc.Send(ctx, sessionFor(owner), chatID, dto.ChatSendRequest{Content: "Meet at 7 <b>sharp</b>"})
	require.NoError(t, err)
	require.Equal(t, "Meet at 7 sharp", sent.Content)
	require.Equal(t, "text", sent.Type)
	require.True(t, server.Exists("hikelink:test:chat:last:"+chatID))

	_, err = svc.Send(ctx, sessionFor(outsider), chatID, dto.ChatSendRequest{Content: "hello"})
	require.ErrorIs(t, err, ErrChatNotMember)

	_, err = svc.History(ctx, sessionFor(outsider), dto.ChatHistoryQuery{RoomID: chatID})
	require.ErrorIs(t, err, ErrChatNotMember)

	history, err := svc.History(ctx, sessionFor(owner), dto.ChatHistoryQuery{RoomID: chatID})
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.ErrorIs(t, svc.Authorize(ctx, sessionFor(owner), "11111111-1111-1111-1111-111111111111"), ErrChatNotFound)

	chats, err := svc.ListChats(ctx, sessionFor(owner))
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, AssistantChatID, chats[0].ID)
	require.Equal(t, chatID, chats[1].ID)
	require.NotNil(t, chats[1].LastMessage)
	require.Equal(t, "Meet at 7 sharp", chats[1].LastMessage.Content)
	require.Equal(t, []string{owner.ID}, chats[1].Participants)

	outsiderChats, err := svc.ListChats(ctx, sessionFor(outsider))
	require.NoError(t, err)
	require.Len(t, outsiderChats, 1)
}
