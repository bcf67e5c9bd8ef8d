package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// OwnedBy scopes a query to one tenant principal. Every session query must
// carry it; ownership is (user, organization), never user alone.
type OwnedBy struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND organization_id = ?", s.UserID, s.OrganizationID)
}

// ActiveOnly keeps the single designated active session.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ExcludeArchived drops archived sessions from listings.
type ExcludeArchived struct{}

func (s ExcludeArchived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_archived = ?", false)
}
