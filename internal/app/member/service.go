package member

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/app/session"
	"stockroom/internal/errs"
	"stockroom/internal/providers/redis"

	"go.uber.org/zap"
)

const rosterCacheTTL = 5 * time.Minute

type Service interface {
	// SearchMentionable returns tenant members matching query by name or
	// email, case-insensitively. An empty query lists the roster.
	SearchMentionable(ctx context.Context, caller *session.Context, query string, limit int) ([]*TeamMember, error)
	// ValidateMentions resolves the given user ids within the caller's
	// tenant and silently drops anything else. Order is preserved,
	// duplicates are removed.
	ValidateMentions(ctx context.Context, caller *session.Context, userIDs []string) ([]*session.Profile, error)
}

type service struct {
	repo         Repository
	redisP       *redis.RedisProvider
	logger       *zap.SugaredLogger
	defaultLimit int
}

func NewService(repo Repository, redisP *redis.RedisProvider, logger *zap.Logger, defaultLimit int) Service {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &service{
		repo:         repo,
		redisP:       redisP,
		logger:       logger.Sugar(),
		defaultLimit: defaultLimit,
	}
}

func (s *service) SearchMentionable(ctx context.Context, caller *session.Context, query string, limit int) ([]*TeamMember, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > 50 {
		limit = 50
	}

	query = strings.TrimSpace(query)

	// The full roster is the hot path (autocomplete opens with an empty
	// query), so only that form is cached.
	cacheKey := ""
	if query == "" && s.redisP != nil {
		cacheKey = fmt.Sprintf("members:roster:%s:limit:%d", caller.TenantID, limit)
		cached, err := s.redisP.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var members []*TeamMember
			if json.Unmarshal([]byte(cached), &members) == nil {
				return members, nil
			}
		}
	}

	profiles, err := s.repo.SearchProfiles(caller.TenantID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search profiles: %v", errs.ErrDownstream, err)
	}

	members := make([]*TeamMember, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, &TeamMember{
			UserID:     p.ID,
			UserName:   p.FullName,
			UserEmail:  p.Email,
			UserAvatar: p.AvatarURL,
		})
	}

	if cacheKey != "" {
		data, _ := json.Marshal(members)
		s.redisP.SetEX(ctx, cacheKey, data, rosterCacheTTL)
	}

	return members, nil
}

func (s *service) ValidateMentions(ctx context.Context, caller *session.Context, userIDs []string) ([]*session.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(userIDs))
	unique := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	profiles, err := s.repo.GetProfilesByIDs(caller.TenantID, unique)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve mentions: %v", errs.ErrDownstream, err)
	}

	byID := make(map[string]*session.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	valid := make([]*session.Profile, 0, len(unique))
	dropped := 0
	for _, id := range unique {
		if p, ok := byID[id]; ok {
			valid = append(valid, p)
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		s.logger.Warnw("Dropped mention ids outside caller tenant",
			"tenant_id", caller.TenantID, "dropped", dropped)
	}

	return valid, nil
}
