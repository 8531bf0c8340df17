package notification

import (
	"time"

	"stockroom/internal/app/entity"
)

const (
	TypeChatter = "chatter"

	SubtypeMessage = "message"
	SubtypeMention = "mention"
)

type Notification struct {
	ID                  string      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID            string      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UserID              string      `json:"user_id" gorm:"type:uuid;not null;index"`
	Title               string      `json:"title" gorm:"not null"`
	Message             string      `json:"message" gorm:"not null"`
	NotificationType    string      `json:"notification_type" gorm:"not null"`
	NotificationSubtype string      `json:"notification_subtype" gorm:"not null"`
	EntityType          entity.Type `json:"entity_type" gorm:"not null"`
	EntityID            string      `json:"entity_id" gorm:"not null"`
	IsRead              bool        `json:"is_read" gorm:"not null;default:false"`
	CreatedAt           time.Time   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
}

type UnreadMentionsResponse struct {
	Count int64 `json:"count"`
}

type MarkMentionsReadRequest struct {
	MessageIDs []string `json:"message_ids" binding:"required"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
