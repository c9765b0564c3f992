package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
	WorkspaceRoleMember WorkspaceRole = "member"
	WorkspaceRoleViewer WorkspaceRole = "viewer"
)

// Workspace names are unique per owner; slugs are unique across all
// workspaces.
type Workspace struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null;index" json:"name"`
	Slug        string            `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description *string           `json:"description,omitempty"`
	OwnerID     uuid.UUID         `gorm:"type:uuid;index;not null" json:"owner_id"`
	Members     []WorkspaceMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Projects    []Project         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (w *Workspace) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type WorkspaceMember struct {
	WorkspaceID uuid.UUID     `gorm:"type:uuid;primaryKey" json:"workspace_id"`
	UserID      uuid.UUID     `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role        WorkspaceRole `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`
}

type WorkspaceInvitationStatus string

const (
	InvitationPending  WorkspaceInvitationStatus = "pending"
	InvitationApproved WorkspaceInvitationStatus = "approved"
	InvitationDeclined WorkspaceInvitationStatus = "declined"
	InvitationExpired  WorkspaceInvitationStatus = "expired"
)

type WorkspaceInvitation struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID                 `gorm:"type:uuid;index;not null" json:"workspace_id"`
	InviterID   uuid.UUID                 `gorm:"type:uuid;not null" json:"inviter_id"`
	InviteeID   uuid.UUID                 `gorm:"type:uuid;index;not null" json:"invitee_id"`
	Role        WorkspaceRole             `gorm:"size:16;not null;default:member" json:"role"`
	Status      WorkspaceInvitationStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time                 `json:"created_at"`
	ExpiresAt   time.Time                 `json:"expires_at"`
}

func (i *WorkspaceInvitation) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.ExpiresAt.IsZero() {
		i.ExpiresAt = time.Now().UTC().Add(7 * 24 * time.Hour)
	}
	return nil
}
