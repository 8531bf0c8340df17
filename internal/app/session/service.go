package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// Resolve maps a session key to the caller's identity. The returned
	// Context is the only source of tenant_id and user_id for every
	// downstream operation.
	Resolve(ctx context.Context, sessionKey string) (*Context, error)
	CreateSession(ctx context.Context, email string, userAgent string) (*Session, *Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Resolve(_ context.Context, sessionKey string) (*Context, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("%w: missing session key", errs.ErrUnauthenticated)
	}

	sess, err := s.repo.GetSessionByKey(sessionKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown session", errs.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: session lookup: %v", errs.ErrDownstream, err)
	}
	if sess.EndedAt != nil {
		return nil, fmt.Errorf("%w: session ended", errs.ErrUnauthenticated)
	}

	profile, err := s.repo.GetProfileByID(sess.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile not found", errs.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: profile lookup: %v", errs.ErrDownstream, err)
	}

	return &Context{
		UserID:    profile.ID,
		TenantID:  profile.TenantID,
		UserName:  profile.FullName,
		UserEmail: profile.Email,
	}, nil
}

func (s *service) CreateSession(_ context.Context, email string, userAgent string) (*Session, *Profile, error) {
	profile, err := s.repo.GetProfileByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: no profile for email", errs.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%w: profile lookup: %v", errs.ErrDownstream, err)
	}

	_ = s.repo.CloseProfileSessions(profile.ID)

	sessionKey, err := generateSessionKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	sess := &Session{
		ID:         uuid.NewString(),
		SessionKey: sessionKey,
		ProfileID:  profile.ID,
		UserAgent:  &userAgent,
		StartedAt:  time.Now().UTC(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateSession(sess); err != nil {
		return nil, nil, fmt.Errorf("%w: create session: %v", errs.ErrDownstream, err)
	}

	return sess, profile, nil
}

func generateSessionKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
