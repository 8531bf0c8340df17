package session

import "time"

type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

type Session struct {
	ID         string     `gorm:"primaryKey;type:uuid"`
	SessionKey string     `gorm:"unique;not null"`
	ProfileID  string     `gorm:"type:uuid;not null;index"`
	StartedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	EndedAt    *time.Time
	UserAgent  *string    `gorm:"type:text"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Context is the server-resolved caller identity. Every chatter operation
// takes it as an explicit argument; tenant and user ids never come from
// request payloads.
type Context struct {
	UserID    string
	TenantID  string
	UserName  string
	UserEmail string
}

type CreateSessionRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SessionResponse struct {
	SessionKey string    `json:"session_key"`
	UserID     string    `json:"user_id"`
	TenantID   string    `json:"tenant_id"`
	FullName   string    `json:"full_name"`
	StartedAt  time.Time `json:"started_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
