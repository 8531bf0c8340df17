package message

import (
	"time"

	"stockroom/internal/app/entity"

	"gorm.io/gorm"
)

type Repository interface {
	Create(msg *Message, mentions []*Mention) error
	GetByID(tenantID string, id string) (*Message, error)
	ListTopLevel(tenantID string, entityType entity.Type, entityID string, limit int, offset int) ([]*MessageView, error)
	ListReplies(tenantID string, parentID string, limit int) ([]*MessageView, error)
	UpdateContent(id string, content string, editedAt time.Time) error
	SoftDelete(id string, deletedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts the message and its mention rows atomically; a message is
// never visible half-written.
func (r *repository) Create(msg *Message, mentions []*Mention) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if len(mentions) > 0 {
			if err := tx.Create(&mentions).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) GetByID(tenantID string, id string) (*Message, error) {
	var msg Message
	err := r.db.
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

const viewColumns = `chatter_messages.id,
	chatter_messages.content,
	chatter_messages.author_id,
	profiles.full_name AS author_name,
	profiles.email AS author_email,
	profiles.avatar_url AS author_avatar,
	chatter_messages.parent_id,
	chatter_messages.is_system_message,
	chatter_messages.created_at,
	chatter_messages.edited_at`

func (r *repository) ListTopLevel(tenantID string, entityType entity.Type, entityID string, limit int, offset int) ([]*MessageView, error) {
	var views []*MessageView

	err := r.db.Table("chatter_messages").
		Select(viewColumns + `,
	(SELECT COUNT(*) FROM chatter_messages replies
		WHERE replies.parent_id = chatter_messages.id
		AND replies.deleted_at IS NULL) AS reply_count`).
		Joins("JOIN profiles ON profiles.id = chatter_messages.author_id").
		Where("chatter_messages.tenant_id = ?", tenantID).
		Where("chatter_messages.entity_type = ? AND chatter_messages.entity_id = ?", entityType, entityID).
		Where("chatter_messages.parent_id IS NULL").
		Where("chatter_messages.deleted_at IS NULL").
		Order("chatter_messages.created_at ASC, chatter_messages.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}

	if err := r.attachMentions(views); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repository) ListReplies(tenantID string, parentID string, limit int) ([]*MessageView, error) {
	var views []*MessageView

	err := r.db.Table("chatter_messages").
		Select(viewColumns+", 0 AS reply_count").
		Joins("JOIN profiles ON profiles.id = chatter_messages.author_id").
		Where("chatter_messages.tenant_id = ? AND chatter_messages.parent_id = ?", tenantID, parentID).
		Where("chatter_messages.deleted_at IS NULL").
		Order("chatter_messages.created_at ASC, chatter_messages.id ASC").
		Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}

	if err := r.attachMentions(views); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repository) attachMentions(views []*MessageView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]string, 0, len(views))
	for _, v := range views {
		v.Mentions = []MentionRef{}
		ids = append(ids, v.ID)
	}

	var mentions []*Mention
	if err := r.db.Where("message_id IN ?", ids).Order("created_at ASC").Find(&mentions).Error; err != nil {
		return err
	}

	byMessage := make(map[string][]MentionRef, len(ids))
	for _, m := range mentions {
		byMessage[m.MessageID] = append(byMessage[m.MessageID], MentionRef{
			UserID:   m.MentionedUserID,
			UserName: m.UserName,
		})
	}
	for _, v := range views {
		if refs, ok := byMessage[v.ID]; ok {
			v.Mentions = refs
		}
	}
	return nil
}

func (r *repository) UpdateContent(id string, content string, editedAt time.Time) error {
	return r.db.Model(&Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"edited_at":  editedAt,
			"updated_at": editedAt,
		}).Error
}

func (r *repository) SoftDelete(id string, deletedAt time.Time) error {
	return r.db.Model(&Message{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": deletedAt,
			"updated_at": deletedAt,
		}).Error
}
