package follower

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/app/entity"
	"stockroom/internal/app/session"
	"stockroom/internal/errs"

	"go.uber.org/zap"
)

type Service interface {
	Follow(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, prefs *Preferences) error
	Unfollow(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string) error
	IsFollowing(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string) (bool, error)
	UpdatePreferences(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, prefs *Preferences) error
	ListByEntity(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string) ([]*FollowerInfo, error)
	// EnsureFollowing is the auto-follow hook used by the message store:
	// it subscribes the author with default preferences but never touches
	// an existing follower row.
	EnsureFollowing(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string) error
}

type service struct {
	repo   Repository
	logger *zap.SugaredLogger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Sugar(),
	}
}

func defaultFollower(caller *session.Context, entityType entity.Type, entityID string) *Follower {
	return &Follower{
		EntityType:  entityType,
		EntityID:    entityID,
		UserID:      caller.UserID,
		TenantID:    caller.TenantID,
		NotifyEmail: true,
		NotifyInApp: true,
		NotifyPush:  false,
		FollowedAt:  time.Now().UTC(),
	}
}

func (s *service) Follow(_ context.Context, caller *session.Context, entityType entity.Type, entityID string, prefs *Preferences) error {
	f := defaultFollower(caller, entityType, entityID)
	if prefs != nil {
		if prefs.NotifyEmail != nil {
			f.NotifyEmail = *prefs.NotifyEmail
		}
		if prefs.NotifyInApp != nil {
			f.NotifyInApp = *prefs.NotifyInApp
		}
		if prefs.NotifyPush != nil {
			f.NotifyPush = *prefs.NotifyPush
		}
	}

	if err := s.repo.Upsert(f); err != nil {
		return fmt.Errorf("%w: follow entity: %v", errs.ErrDownstream, err)
	}
	return nil
}

func (s *service) Unfollow(_ context.Context, caller *session.Context, entityType entity.Type, entityID string) error {
	// Absence is not an error: unfollow is idempotent.
	if err := s.repo.Delete(caller.TenantID, entityType, entityID, caller.UserID); err != nil {
		return fmt.Errorf("%w: unfollow entity: %v", errs.ErrDownstream, err)
	}
	return nil
}

func (s *service) IsFollowing(_ context.Context, caller *session.Context, entityType entity.Type, entityID string) (bool, error) {
	following, err := s.repo.Exists(caller.TenantID, entityType, entityID, caller.UserID)
	if err != nil {
		return false, fmt.Errorf("%w: check following: %v", errs.ErrDownstream, err)
	}
	return following, nil
}

func (s *service) UpdatePreferences(_ context.Context, caller *session.Context, entityType entity.Type, entityID string, prefs *Preferences) error {
	if prefs == nil {
		return fmt.Errorf("%w: no preferences given", errs.ErrValidation)
	}

	updates := make(map[string]interface{}, 3)
	if prefs.NotifyEmail != nil {
		updates["notify_email"] = *prefs.NotifyEmail
	}
	if prefs.NotifyInApp != nil {
		updates["notify_in_app"] = *prefs.NotifyInApp
	}
	if prefs.NotifyPush != nil {
		updates["notify_push"] = *prefs.NotifyPush
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: no preferences given", errs.ErrValidation)
	}

	affected, err := s.repo.UpdatePreferences(caller.TenantID, entityType, entityID, caller.UserID, updates)
	if err != nil {
		return fmt.Errorf("%w: update preferences: %v", errs.ErrDownstream, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: not following entity", errs.ErrNotFound)
	}
	return nil
}

func (s *service) ListByEntity(_ context.Context, caller *session.Context, entityType entity.Type, entityID string) ([]*FollowerInfo, error) {
	followers, err := s.repo.ListByEntity(caller.TenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("%w: list followers: %v", errs.ErrDownstream, err)
	}
	return followers, nil
}

func (s *service) EnsureFollowing(_ context.Context, caller *session.Context, entityType entity.Type, entityID string) error {
	f := defaultFollower(caller, entityType, entityID)
	if err := s.repo.EnsureExists(f); err != nil {
		return fmt.Errorf("%w: auto-follow: %v", errs.ErrDownstream, err)
	}
	return nil
}
