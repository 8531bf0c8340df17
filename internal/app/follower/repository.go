package follower

import (
	"stockroom/internal/app/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Upsert(f *Follower) error
	EnsureExists(f *Follower) error
	UpdatePreferences(tenantID string, entityType entity.Type, entityID string, userID string, updates map[string]interface{}) (int64, error)
	Delete(tenantID string, entityType entity.Type, entityID string, userID string) error
	Exists(tenantID string, entityType entity.Type, entityID string, userID string) (bool, error)
	ListByEntity(tenantID string, entityType entity.Type, entityID string) ([]*FollowerInfo, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var conflictTarget = []clause.Column{
	{Name: "entity_type"},
	{Name: "entity_id"},
	{Name: "user_id"},
}

func (r *repository) Upsert(f *Follower) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoUpdates: clause.AssignmentColumns([]string{"notify_email", "notify_in_app", "notify_push"}),
	}).Create(f).Error
}

// EnsureExists inserts the row only when absent, so auto-follow never
// overwrites preferences a follower already chose.
func (r *repository) EnsureExists(f *Follower) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoNothing: true,
	}).Create(f).Error
}

func (r *repository) UpdatePreferences(tenantID string, entityType entity.Type, entityID string, userID string, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&Follower{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ?",
			tenantID, entityType, entityID, userID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) Delete(tenantID string, entityType entity.Type, entityID string, userID string) error {
	return r.db.
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ?",
			tenantID, entityType, entityID, userID).
		Delete(&Follower{}).Error
}

func (r *repository) Exists(tenantID string, entityType entity.Type, entityID string, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&Follower{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ?",
			tenantID, entityType, entityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByEntity(tenantID string, entityType entity.Type, entityID string) ([]*FollowerInfo, error) {
	var followers []*FollowerInfo
	err := r.db.Table("entity_followers").
		Select(`entity_followers.user_id,
			profiles.full_name AS user_name,
			profiles.email AS user_email,
			profiles.avatar_url AS user_avatar,
			entity_followers.notify_email,
			entity_followers.notify_in_app,
			entity_followers.notify_push,
			entity_followers.followed_at`).
		Joins("JOIN profiles ON profiles.id = entity_followers.user_id").
		Where("entity_followers.tenant_id = ? AND entity_followers.entity_type = ? AND entity_followers.entity_id = ?",
			tenantID, entityType, entityID).
		Order("entity_followers.followed_at ASC").
		Scan(&followers).Error
	if err != nil {
		return nil, err
	}
	return followers, nil
}
