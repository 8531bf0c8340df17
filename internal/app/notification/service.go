package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stockroom/internal/app/follower"
	"stockroom/internal/app/message"
	"stockroom/internal/app/session"
	"stockroom/internal/errs"
	"stockroom/internal/providers/redis"
	"stockroom/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unreadCacheTTL = time.Minute

const dispatchTimeout = 10 * time.Second

type Service interface {
	// Run consumes the event bus until it closes. Dispatch failures are
	// logged and never reach the poster: the write already succeeded.
	Run()
	// Dispatch fans one created message out to its recipients. Exported
	// as the synchronous unit behind Run so behavior is testable.
	Dispatch(ctx context.Context, ev message.CreatedEvent) error

	ListForUser(ctx context.Context, caller *session.Context, limit int, offset int) ([]*Notification, error)
	MarkAllRead(ctx context.Context, caller *session.Context) (int64, error)
	UnreadMentionsCount(ctx context.Context, caller *session.Context) (int64, error)
	MarkMentionsRead(ctx context.Context, caller *session.Context, messageIDs []string) (int64, error)
}

type service struct {
	repo        Repository
	followerSvc follower.Service
	redisP      *redis.RedisProvider
	eventBus    *utils.EventBus
	logger      *zap.SugaredLogger
}

func NewService(
	repo Repository,
	followerSvc follower.Service,
	redisP *redis.RedisProvider,
	eventBus *utils.EventBus,
	logger *zap.Logger,
) Service {
	return &service{
		repo:        repo,
		followerSvc: followerSvc,
		redisP:      redisP,
		eventBus:    eventBus,
		logger:      logger.Sugar(),
	}
}

func (s *service) Run() {
	for ev := range s.eventBus.SubscribeCh() {
		if ev.Event != message.EventMessageCreated {
			continue
		}
		payload, ok := ev.Data.(message.CreatedEvent)
		if !ok {
			s.logger.Warnw("Unexpected event payload", "event", ev.Event)
			continue
		}

		// Detached from the request deadline on purpose.
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := s.Dispatch(ctx, payload); err != nil {
			s.logger.Errorw("Notification dispatch failed",
				"error", err, "message_id", payload.MessageID)
		}
		cancel()
	}
}

func (s *service) Dispatch(ctx context.Context, ev message.CreatedEvent) error {
	author := &session.Context{UserID: ev.AuthorID, TenantID: ev.TenantID}
	followers, err := s.followerSvc.ListByEntity(ctx, author, ev.EntityType, ev.EntityID)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}

	entityLabel := fmt.Sprintf("%s %s", ev.EntityType.Label(), ev.EntityID)
	now := time.Now().UTC()

	// Mentions always notify, regardless of follow status or channel
	// preferences; the author never notifies themselves.
	mentioned := make(map[string]struct{}, len(ev.MentionedUserIDs))
	var notifications []*Notification
	for _, userID := range ev.MentionedUserIDs {
		if userID == ev.AuthorID {
			continue
		}
		if _, ok := mentioned[userID]; ok {
			continue
		}
		mentioned[userID] = struct{}{}
		notifications = append(notifications, &Notification{
			ID:                  uuid.NewString(),
			TenantID:            ev.TenantID,
			UserID:              userID,
			Title:               fmt.Sprintf("%s mentioned you", ev.AuthorName),
			Message:             fmt.Sprintf("You were mentioned in a comment on %s", entityLabel),
			NotificationType:    TypeChatter,
			NotificationSubtype: SubtypeMention,
			EntityType:          ev.EntityType,
			EntityID:            ev.EntityID,
			CreatedAt:           now,
		})
	}

	// Remaining followers who opted into in-app delivery get a message
	// notification; anyone already mentioned is skipped so no recipient
	// is notified twice for the same message.
	for _, f := range followers {
		if f.UserID == ev.AuthorID {
			continue
		}
		if _, ok := mentioned[f.UserID]; ok {
			continue
		}
		if !f.NotifyInApp {
			continue
		}
		notifications = append(notifications, &Notification{
			ID:                  uuid.NewString(),
			TenantID:            ev.TenantID,
			UserID:              f.UserID,
			Title:               fmt.Sprintf("%s commented", ev.AuthorName),
			Message:             fmt.Sprintf("New comment on %s", entityLabel),
			NotificationType:    TypeChatter,
			NotificationSubtype: SubtypeMessage,
			EntityType:          ev.EntityType,
			EntityID:            ev.EntityID,
			CreatedAt:           now,
		})
	}

	if len(notifications) == 0 {
		return nil
	}

	if err := s.repo.CreateBatch(notifications); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}

	for userID := range mentioned {
		s.invalidateUnreadCache(ev.TenantID, userID)
	}

	s.logger.Debugw("Chatter notifications dispatched",
		"message_id", ev.MessageID, "recipients", len(notifications))
	return nil
}

func (s *service) ListForUser(_ context.Context, caller *session.Context, limit int, offset int) ([]*Notification, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.ListForUser(caller.TenantID, caller.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %v", errs.ErrDownstream, err)
	}
	return notifications, nil
}

func (s *service) MarkAllRead(_ context.Context, caller *session.Context) (int64, error) {
	updated, err := s.repo.MarkAllRead(caller.TenantID, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: mark all read: %v", errs.ErrDownstream, err)
	}
	return updated, nil
}

func (s *service) UnreadMentionsCount(ctx context.Context, caller *session.Context) (int64, error) {
	cacheKey := s.unreadCacheKey(caller.TenantID, caller.UserID)
	if s.redisP != nil {
		cached, err := s.redisP.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.UnreadMentionsCount(caller.TenantID, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: unread mentions count: %v", errs.ErrDownstream, err)
	}

	if s.redisP != nil {
		s.redisP.SetEX(ctx, cacheKey, strconv.FormatInt(count, 10), unreadCacheTTL)
	}
	return count, nil
}

func (s *service) MarkMentionsRead(_ context.Context, caller *session.Context, messageIDs []string) (int64, error) {
	updated, err := s.repo.MarkMentionsRead(caller.TenantID, caller.UserID, messageIDs)
	if err != nil {
		return 0, fmt.Errorf("%w: mark mentions read: %v", errs.ErrDownstream, err)
	}
	s.invalidateUnreadCache(caller.TenantID, caller.UserID)
	return updated, nil
}

func (s *service) unreadCacheKey(tenantID, userID string) string {
	return fmt.Sprintf("chatter:unread_mentions:%s:%s", tenantID, userID)
}

func (s *service) invalidateUnreadCache(tenantID, userID string) {
	if s.redisP == nil {
		return
	}
	s.redisP.Del(context.Background(), s.unreadCacheKey(tenantID, userID))
}
