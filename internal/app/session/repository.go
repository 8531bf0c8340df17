package session

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	GetSessionByKey(sessionKey string) (*Session, error)
	GetProfileByID(id string) (*Profile, error)
	GetProfileByEmail(email string) (*Profile, error)
	CreateSession(session *Session) error
	CloseProfileSessions(profileID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSessionByKey(sessionKey string) (*Session, error) {
	var session Session
	err := r.db.Where("session_key = ?", sessionKey).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) GetProfileByID(id string) (*Profile, error) {
	var profile Profile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetProfileByEmail(email string) (*Profile, error) {
	var profile Profile
	err := r.db.Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) CreateSession(session *Session) error {
	return r.db.Create(session).Error
}

func (r *repository) CloseProfileSessions(profileID string) error {
	return r.db.Model(&Session{}).
		Where("profile_id = ? AND ended_at IS NULL", profileID).
		Update("ended_at", time.Now().UTC()).Error
}
