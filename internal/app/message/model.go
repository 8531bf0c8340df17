package message

import (
	"time"

	"stockroom/internal/app/entity"
)

// EventMessageCreated is published on the event bus after a message row
// commits; the notification dispatcher consumes it.
const EventMessageCreated = "chatter.message_created"

type Message struct {
	ID              string      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID        string      `json:"tenant_id" gorm:"type:uuid;not null;index:idx_chatter_scope"`
	EntityType      entity.Type `json:"entity_type" gorm:"not null;index:idx_chatter_scope"`
	EntityID        string      `json:"entity_id" gorm:"not null;index:idx_chatter_scope"`
	ParentID        *string     `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	AuthorID        string      `json:"author_id" gorm:"type:uuid;not null;index"`
	Content         string      `json:"content" gorm:"type:text;not null"`
	IsSystemMessage bool        `json:"is_system_message" gorm:"not null;default:false"`
	CreatedAt       time.Time   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	EditedAt        *time.Time  `json:"edited_at,omitempty"`
	// Soft delete is managed explicitly: the row is kept, reads filter on
	// deleted_at IS NULL.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Message) TableName() string {
	return "chatter_messages"
}

type Mention struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid"`
	MessageID       string     `json:"message_id" gorm:"type:uuid;not null;index"`
	MentionedUserID string     `json:"user_id" gorm:"type:uuid;not null;index"`
	UserName        string     `json:"user_name" gorm:"not null"`
	CreatedAt       time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

func (Mention) TableName() string {
	return "chatter_mentions"
}

type MentionRef struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// MessageView is a message annotated with its author profile, live reply
// count, and mentions, as served to clients.
type MessageView struct {
	ID              string       `json:"id"`
	Content         string       `json:"content"`
	AuthorID        string       `json:"author_id"`
	AuthorName      string       `json:"author_name"`
	AuthorEmail     string       `json:"author_email"`
	AuthorAvatar    *string      `json:"author_avatar"`
	ParentID        *string      `json:"parent_id"`
	IsSystemMessage bool         `json:"is_system_message"`
	CreatedAt       time.Time    `json:"created_at"`
	EditedAt        *time.Time   `json:"edited_at"`
	ReplyCount      int64        `json:"reply_count"`
	// Populated by a second query after the row scan, never by the ORM.
	Mentions []MentionRef `json:"mentions" gorm:"-"`
}

type CreateMessageRequest struct {
	Content          string   `json:"content" binding:"required"`
	ParentID         *string  `json:"parent_id,omitempty"`
	MentionedUserIDs []string `json:"mentioned_user_ids"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type CreateMessageResponse struct {
	ID string `json:"id"`
}

type MessageListResponse struct {
	Messages []*MessageView `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreatedEvent is the event-bus payload for EventMessageCreated.
type CreatedEvent struct {
	TenantID         string
	EntityType       entity.Type
	EntityID         string
	MessageID        string
	AuthorID         string
	AuthorName       string
	IsSystemMessage  bool
	MentionedUserIDs []string
}
