package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stockroom/internal/app/entity"
	"stockroom/internal/app/follower"
	"stockroom/internal/app/member"
	"stockroom/internal/app/session"
	"stockroom/internal/errs"
	"stockroom/internal/providers/redis"
	"stockroom/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxContentRunes = 10000

const listCacheTTL = 5 * time.Minute

type Service interface {
	// Post creates a top-level message or a single-level reply. The
	// tenant always comes from the caller context, never the payload.
	// Auto-follow and notification dispatch are best-effort side effects
	// that never fail the post.
	Post(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, content string, parentID *string, mentionedUserIDs []string) (string, error)
	// PostSystem records an audit line (status change etc.) on behalf of
	// another subsystem; mentions are not allowed on system messages.
	PostSystem(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, content string) (string, error)
	ListByEntity(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, limit int, offset int) ([]*MessageView, error)
	ListReplies(ctx context.Context, caller *session.Context, messageID string, limit int) ([]*MessageView, error)
	Edit(ctx context.Context, caller *session.Context, messageID string, content string) error
	Delete(ctx context.Context, caller *session.Context, messageID string) error
}

type service struct {
	repo         Repository
	memberSvc    member.Service
	followerSvc  follower.Service
	redisP       *redis.RedisProvider
	eventBus     *utils.EventBus
	logger       *zap.SugaredLogger
	cachePrefix  string
	defaultLimit int
}

func NewService(
	repo Repository,
	memberSvc member.Service,
	followerSvc follower.Service,
	redisP *redis.RedisProvider,
	eventBus *utils.EventBus,
	logger *zap.Logger,
	defaultLimit int,
) Service {
	if defaultLimit < 1 {
		defaultLimit = 50
	}
	return &service{
		repo:         repo,
		memberSvc:    memberSvc,
		followerSvc:  followerSvc,
		redisP:       redisP,
		eventBus:     eventBus,
		logger:       logger.Sugar(),
		cachePrefix:  "chatter:messages",
		defaultLimit: defaultLimit,
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message content cannot be empty", errs.ErrValidation)
	}
	if n := utf8.RuneCountInString(content); n > maxContentRunes {
		return fmt.Errorf("%w: message content exceeds %d characters, got %d", errs.ErrValidation, maxContentRunes, n)
	}
	return nil
}

func (s *service) Post(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, content string, parentID *string, mentionedUserIDs []string) (string, error) {
	return s.post(ctx, caller, entityType, entityID, content, parentID, mentionedUserIDs, false)
}

func (s *service) PostSystem(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, content string) (string, error) {
	return s.post(ctx, caller, entityType, entityID, content, nil, nil, true)
}

func (s *service) post(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, content string, parentID *string, mentionedUserIDs []string, isSystem bool) (string, error) {
	if err := validateContent(content); err != nil {
		return "", err
	}

	if parentID != nil {
		parent, err := s.repo.GetByID(caller.TenantID, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", fmt.Errorf("%w: parent message", errs.ErrNotFound)
			}
			return "", fmt.Errorf("%w: resolve parent: %v", errs.ErrDownstream, err)
		}
		if parent.DeletedAt != nil {
			return "", fmt.Errorf("%w: parent message", errs.ErrNotFound)
		}
		if parent.ParentID != nil {
			return "", fmt.Errorf("%w: replies to replies are not allowed", errs.ErrValidation)
		}
		if parent.EntityType != entityType || parent.EntityID != entityID {
			return "", fmt.Errorf("%w: parent message belongs to a different entity", errs.ErrValidation)
		}
	}

	var mentions []*Mention
	var validMentionIDs []string
	if !isSystem && len(mentionedUserIDs) > 0 {
		profiles, err := s.memberSvc.ValidateMentions(ctx, caller, mentionedUserIDs)
		if err != nil {
			return "", err
		}
		for _, p := range profiles {
			mentions = append(mentions, &Mention{
				ID:              uuid.NewString(),
				MentionedUserID: p.ID,
				UserName:        p.FullName,
				CreatedAt:       time.Now().UTC(),
			})
			validMentionIDs = append(validMentionIDs, p.ID)
		}
	}

	now := time.Now().UTC()
	msg := &Message{
		ID:              uuid.NewString(),
		TenantID:        caller.TenantID,
		EntityType:      entityType,
		EntityID:        entityID,
		ParentID:        parentID,
		AuthorID:        caller.UserID,
		Content:         content,
		IsSystemMessage: isSystem,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, m := range mentions {
		m.MessageID = msg.ID
	}

	if err := s.repo.Create(msg, mentions); err != nil {
		return "", fmt.Errorf("%w: create message: %v", errs.ErrDownstream, err)
	}

	// Everything past the commit is best-effort: a failed follow, cache
	// drop, or dispatch never fails the post.
	if err := s.followerSvc.EnsureFollowing(ctx, caller, entityType, entityID); err != nil {
		s.logger.Warnw("Auto-follow failed",
			"error", err, "message_id", msg.ID, "user_id", caller.UserID)
	}

	s.invalidateCache(caller.TenantID, entityType, entityID)

	s.eventBus.Publish(EventMessageCreated, CreatedEvent{
		TenantID:         caller.TenantID,
		EntityType:       entityType,
		EntityID:         entityID,
		MessageID:        msg.ID,
		AuthorID:         caller.UserID,
		AuthorName:       authorDisplayName(caller),
		IsSystemMessage:  isSystem,
		MentionedUserIDs: validMentionIDs,
	})

	return msg.ID, nil
}

func authorDisplayName(caller *session.Context) string {
	if caller.UserName != "" {
		return caller.UserName
	}
	if caller.UserEmail != "" {
		return caller.UserEmail
	}
	return "Someone"
}

func (s *service) ListByEntity(ctx context.Context, caller *session.Context, entityType entity.Type, entityID string, limit int, offset int) ([]*MessageView, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%s:limit:%d:offset:%d",
		s.cachePrefix, caller.TenantID, entityType, entityID, limit, offset)
	if s.redisP != nil {
		cached, err := s.redisP.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var views []*MessageView
			if json.Unmarshal([]byte(cached), &views) == nil {
				return views, nil
			}
		}
	}

	views, err := s.repo.ListTopLevel(caller.TenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", errs.ErrDownstream, err)
	}

	if len(views) > 0 && s.redisP != nil {
		data, _ := json.Marshal(views)
		s.redisP.SetEX(ctx, cacheKey, data, listCacheTTL)
	}

	return views, nil
}

func (s *service) ListReplies(ctx context.Context, caller *session.Context, messageID string, limit int) ([]*MessageView, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > 100 {
		limit = 100
	}

	// The parent must exist in the caller's tenant. A soft-deleted parent
	// still serves its replies: reply rows have their own lifecycle.
	parent, err := s.repo.GetByID(caller.TenantID, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: resolve message: %v", errs.ErrDownstream, err)
	}
	if parent.ParentID != nil {
		return nil, fmt.Errorf("%w: message is not a top-level message", errs.ErrValidation)
	}

	views, err := s.repo.ListReplies(caller.TenantID, messageID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list replies: %v", errs.ErrDownstream, err)
	}
	return views, nil
}

func (s *service) Edit(ctx context.Context, caller *session.Context, messageID string, content string) error {
	msg, err := s.repo.GetByID(caller.TenantID, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message", errs.ErrNotFound)
		}
		return fmt.Errorf("%w: resolve message: %v", errs.ErrDownstream, err)
	}

	if msg.AuthorID != caller.UserID {
		return fmt.Errorf("%w: only the author can edit a message", errs.ErrForbidden)
	}
	if msg.DeletedAt != nil {
		return fmt.Errorf("%w: cannot edit a deleted message", errs.ErrForbidden)
	}

	if err := validateContent(content); err != nil {
		return err
	}

	if err := s.repo.UpdateContent(msg.ID, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: edit message: %v", errs.ErrDownstream, err)
	}

	s.invalidateCache(msg.TenantID, msg.EntityType, msg.EntityID)
	return nil
}

func (s *service) Delete(ctx context.Context, caller *session.Context, messageID string) error {
	msg, err := s.repo.GetByID(caller.TenantID, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message", errs.ErrNotFound)
		}
		return fmt.Errorf("%w: resolve message: %v", errs.ErrDownstream, err)
	}

	if msg.AuthorID != caller.UserID {
		return fmt.Errorf("%w: only the author can delete a message", errs.ErrForbidden)
	}

	// Deleting twice is a no-op success.
	if msg.DeletedAt != nil {
		return nil
	}

	if err := s.repo.SoftDelete(msg.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: delete message: %v", errs.ErrDownstream, err)
	}

	s.invalidateCache(msg.TenantID, msg.EntityType, msg.EntityID)
	return nil
}

func (s *service) invalidateCache(tenantID string, entityType entity.Type, entityID string) {
	if s.redisP == nil {
		return
	}
	pattern := fmt.Sprintf("%s:%s:%s:%s:*", s.cachePrefix, tenantID, entityType, entityID)
	deleted := s.redisP.DelByPattern(context.Background(), pattern)
	if deleted > 0 {
		s.logger.Debugw("Message list cache invalidated",
			"tenant_id", tenantID, "entity_type", entityType, "entity_id", entityID,
			"deleted_keys", deleted)
	}
}
