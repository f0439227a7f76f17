package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Friendship{},
		&Post{},
		&EventParticipant{},
		&PostLike{},
		&PostComment{},
		&UpcomingEvent{},
		&LiveUpdate{},
		&Notification{},
		&GroupChat{},
		&GroupChatMember{},
		&ChatMessage{},
		&Activity{},
		&Review{},
		&AuditLog{},
		&Report{},
		&UploadRecord{},
	}
}
