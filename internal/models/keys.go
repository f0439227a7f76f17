package models

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	upcomingEventNamespace = uuid.MustParse("6f1c6a3e-3c1d-4b8e-9a55-5d2f0f4b7a10")
	groupChatNamespace     = uuid.MustParse("0b9e2a47-8d3c-4f61-b2a9-1c7e5d4f3a21")
	notificationNamespace  = uuid.MustParse("c4d8e1f2-7a6b-4c3d-9e8f-2a1b0c9d8e7f")
	friendshipNamespace    = uuid.MustParse("9a7b6c5d-4e3f-4a2b-8c1d-0e9f8a7b6c5d")
)

// UpcomingEventID derives the identifier of the participation record for a user and event.
// The same pair always yields the same id, so repeated writes target one row.
func UpcomingEventID(eventID, userID string) string {
	return uuid.NewSHA1(upcomingEventNamespace, []byte(eventID+"/"+userID)).String()
}

// GroupChatID derives the chat identifier of an event.
func GroupChatID(eventID string) string {
	return uuid.NewSHA1(groupChatNamespace, []byte(eventID)).String()
}

// JoinRequestNotificationID derives the identifier of the join request notification
// sent to the owner when userID asks to join eventID.
func JoinRequestNotificationID(eventID, userID string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(NotificationEventJoinRequest+"/"+eventID+"/"+userID)).String()
}

// FriendRequestNotificationID derives the identifier of the friend request notification.
func FriendRequestNotificationID(requesterID, addresseeID string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(NotificationFriendRequest+"/"+requesterID+"/"+addresseeID)).String()
}

// FriendshipID derives the identifier of the friendship row shared by two users,
// independent of who sent the request.
func FriendshipID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return uuid.NewSHA1(friendshipNamespace, []byte(strings.Join(pair, "/"))).String()
}
