package service

import (
	"errors"
	"strings"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// Session identifies the caller of a service operation.
type Session struct {
	UserID      string
	DisplayName string
	PhotoURL    string
	Role        string
}

// IsAdmin reports whether the caller holds the admin role.
func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, models.RoleAdmin)
}

// Errors shared by several services.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not permitted")
	ErrInvalidInput    = errors.New("invalid input")
)

func requireSession(session Session) error {
	if strings.TrimSpace(session.UserID) == "" {
		return ErrUnauthenticated
	}
	return nil
}
