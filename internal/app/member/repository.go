package member

import (
	"strings"

	"stockroom/internal/app/session"

	"gorm.io/gorm"
)

type Repository interface {
	SearchProfiles(tenantID string, query string, limit int) ([]*session.Profile, error)
	GetProfilesByIDs(tenantID string, ids []string) ([]*session.Profile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SearchProfiles(tenantID string, query string, limit int) ([]*session.Profile, error) {
	var profiles []*session.Profile

	q := r.db.Model(&session.Profile{}).
		Where("tenant_id = ?", tenantID).
		Order("full_name ASC").
		Limit(limit)

	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	if err := q.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) GetProfilesByIDs(tenantID string, ids []string) ([]*session.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []*session.Profile
	err := r.db.Model(&session.Profile{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
