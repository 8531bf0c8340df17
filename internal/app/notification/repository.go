package notification

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(notifications []*Notification) error
	ListForUser(tenantID string, userID string, limit int, offset int) ([]*Notification, error)
	MarkAllRead(tenantID string, userID string) (int64, error)
	UnreadMentionsCount(tenantID string, userID string) (int64, error)
	MarkMentionsRead(tenantID string, userID string, messageIDs []string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(notifications []*Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

func (r *repository) ListForUser(tenantID string, userID string, limit int, offset int) ([]*Notification, error) {
	var notifications []*Notification
	err := r.db.
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repository) MarkAllRead(tenantID string, userID string) (int64, error) {
	result := r.db.Model(&Notification{}).
		Where("tenant_id = ? AND user_id = ? AND is_read = ?", tenantID, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Mention read state lives on the mention rows themselves; counts ignore
// mentions whose message has since been soft-deleted.
func (r *repository) UnreadMentionsCount(tenantID string, userID string) (int64, error) {
	var count int64
	err := r.db.Table("chatter_mentions").
		Joins("JOIN chatter_messages ON chatter_messages.id = chatter_mentions.message_id").
		Where("chatter_messages.tenant_id = ?", tenantID).
		Where("chatter_messages.deleted_at IS NULL").
		Where("chatter_mentions.mentioned_user_id = ?", userID).
		Where("chatter_mentions.read_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) MarkMentionsRead(tenantID string, userID string, messageIDs []string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	result := r.db.Table("chatter_mentions").
		Where("mentioned_user_id = ? AND read_at IS NULL", userID).
		Where("message_id IN (?)",
			r.db.Table("chatter_messages").Select("id").
				Where("tenant_id = ? AND id IN ?", tenantID, messageIDs),
		).
		Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}
