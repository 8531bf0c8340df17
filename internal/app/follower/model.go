package follower

import (
	"time"

	"stockroom/internal/app/entity"
)

// Follower is one user's subscription to one entity's chatter thread.
// The composite key makes re-follow an upsert, never a duplicate row.
type Follower struct {
	EntityType  entity.Type `json:"entity_type" gorm:"primaryKey;column:entity_type"`
	EntityID    string      `json:"entity_id" gorm:"primaryKey;column:entity_id"`
	UserID      string      `json:"user_id" gorm:"primaryKey;type:uuid"`
	TenantID    string      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	// No column defaults: a zero-valued field with a default tag would be
	// dropped from the INSERT, turning an explicit false back into true.
	// Channel defaults live in the service layer instead.
	NotifyEmail bool      `json:"notify_email" gorm:"not null"`
	NotifyInApp bool      `json:"notify_in_app" gorm:"not null"`
	NotifyPush  bool      `json:"notify_push" gorm:"not null"`
	FollowedAt  time.Time   `json:"followed_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Follower) TableName() string {
	return "entity_followers"
}

// Preferences carries optional notification channel toggles; nil fields
// keep their current (or default) value.
type Preferences struct {
	NotifyEmail *bool `json:"notify_email,omitempty"`
	NotifyInApp *bool `json:"notify_in_app,omitempty"`
	NotifyPush  *bool `json:"notify_push,omitempty"`
}

// FollowerInfo is the follower row joined with its profile for display.
type FollowerInfo struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	UserAvatar  *string   `json:"user_avatar"`
	NotifyEmail bool      `json:"notify_email"`
	NotifyInApp bool      `json:"notify_in_app"`
	NotifyPush  bool      `json:"notify_push"`
	FollowedAt  time.Time `json:"followed_at"`
}

type FollowRequest struct {
	Preferences
}

type FollowerListResponse struct {
	Followers []*FollowerInfo `json:"followers"`
}

type FollowingResponse struct {
	Following bool `json:"following"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
