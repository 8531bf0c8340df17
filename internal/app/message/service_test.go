package message

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"stockroom/internal/app/entity"
	"stockroom/internal/app/follower"
	"stockroom/internal/app/member"
	"stockroom/internal/app/session"
	"stockroom/internal/errs"
	redisprovider "stockroom/internal/providers/redis"
	"stockroom/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	svc         Service
	followerSvc follower.Service
	bus         *utils.EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&session.Tenant{}, &session.Profile{},
		&Message{}, &Mention{},
		&follower.Follower{},
	))

	mr := miniredis.RunT(t)
	redisP := redisprovider.NewRedisProvider(mr.Addr(), zap.NewNop(), time.Minute)

	bus := utils.NewEventBus()
	memberSvc := member.NewService(member.NewRepository(db), nil, zap.NewNop(), 10)
	followerSvc := follower.NewService(follower.NewRepository(db), zap.NewNop())
	svc := NewService(NewRepository(db), memberSvc, followerSvc, redisP, bus, zap.NewNop(), 50)

	return &fixture{db: db, svc: svc, followerSvc: followerSvc, bus: bus}
}

func (f *fixture) seedCaller(t *testing.T, tenantID, name string) *session.Context {
	t.Helper()
	p := session.Profile{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		FullName:  name,
		Email:     fmt.Sprintf("%s@test.local", uuid.NewString()),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&p).Error)
	return &session.Context{UserID: p.ID, TenantID: tenantID, UserName: name, UserEmail: p.Email}
}

func TestPostAndListTopLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")

	id, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "First comment", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "First comment", messages[0].Content)
	require.Equal(t, "Alice Martin", messages[0].AuthorName)
	require.EqualValues(t, 0, messages[0].ReplyCount)
	require.Nil(t, messages[0].ParentID)
}

func TestPostContentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")

	_, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "   ", nil, nil)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.Post(ctx, alice, entity.TypeItem, "item-1", strings.Repeat("a", 10000), nil, nil)
	require.NoError(t, err)

	_, err = f.svc.Post(ctx, alice, entity.TypeItem, "item-1", strings.Repeat("a", 10001), nil, nil)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestReplyThreadingIsSingleLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	parentID, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Top level", nil, nil)
	require.NoError(t, err)

	replyID, err := f.svc.Post(ctx, bob, entity.TypeItem, "item-1", "A reply", &parentID, nil)
	require.NoError(t, err)

	// Replies to replies are rejected.
	_, err = f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Nested", &replyID, nil)
	require.ErrorIs(t, err, errs.ErrValidation)

	// The parent must belong to the same entity scope.
	_, err = f.svc.Post(ctx, bob, entity.TypeItem, "item-2", "Wrong scope", &parentID, nil)
	require.ErrorIs(t, err, errs.ErrValidation)

	replies, err := f.svc.ListReplies(ctx, alice, parentID, 50)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "A reply", replies[0].Content)
}

func TestReplyCountIsLiveAndExcludesDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	parentID, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Top level", nil, nil)
	require.NoError(t, err)

	_, err = f.svc.Post(ctx, bob, entity.TypeItem, "item-1", "Reply one", &parentID, nil)
	require.NoError(t, err)
	replyTwo, err := f.svc.Post(ctx, bob, entity.TypeItem, "item-1", "Reply two", &parentID, nil)
	require.NoError(t, err)

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.EqualValues(t, 2, messages[0].ReplyCount)

	require.NoError(t, f.svc.Delete(ctx, bob, replyTwo))

	messages, err = f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, messages[0].ReplyCount)
}

func TestEditIsAuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	id, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Original", nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Edit(ctx, bob, id, "Hijacked"), errs.ErrForbidden)

	require.NoError(t, f.svc.Edit(ctx, alice, id, "Corrected"))

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Equal(t, "Corrected", messages[0].Content)
	require.NotNil(t, messages[0].EditedAt)
}

func TestEditDeletedMessageIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")

	id, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Short lived", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, alice, id))
	require.ErrorIs(t, f.svc.Edit(ctx, alice, id, "Too late"), errs.ErrForbidden)
}

func TestDeleteIsAuthorOnlyAndIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	id, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "To be removed", nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, bob, id), errs.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, alice, id))
	// Deleting twice is a no-op success.
	require.NoError(t, f.svc.Delete(ctx, alice, id))

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestRepliesOfDeletedParentStayReadable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	parentID, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Top level", nil, nil)
	require.NoError(t, err)
	_, err = f.svc.Post(ctx, bob, entity.TypeItem, "item-1", "Still here", &parentID, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, alice, parentID))

	replies, err := f.svc.ListReplies(ctx, bob, parentID, 50)
	require.NoError(t, err)
	require.Len(t, replies, 1)

	// But replying to a deleted parent is rejected.
	_, err = f.svc.Post(ctx, bob, entity.TypeItem, "item-1", "Too late", &parentID, nil)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPostAutoFollowsAuthorWithoutClobberingPrefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")

	_, err := f.svc.Post(ctx, alice, entity.TypePickList, "pl-1", "Hello", nil, nil)
	require.NoError(t, err)

	following, err := f.followerSvc.IsFollowing(ctx, alice, entity.TypePickList, "pl-1")
	require.NoError(t, err)
	require.True(t, following)

	// An existing follower's preferences survive another post.
	off := false
	require.NoError(t, f.followerSvc.Follow(ctx, bob, entity.TypePickList, "pl-1", &follower.Preferences{NotifyInApp: &off}))

	_, err = f.svc.Post(ctx, bob, entity.TypePickList, "pl-1", "Another", nil, nil)
	require.NoError(t, err)

	followers, err := f.followerSvc.ListByEntity(ctx, bob, entity.TypePickList, "pl-1")
	require.NoError(t, err)
	for _, fo := range followers {
		if fo.UserID == bob.UserID {
			require.False(t, fo.NotifyInApp)
		}
	}
}

func TestTenantIsolationUnderEntityIDCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")
	dana := f.seedCaller(t, uuid.NewString(), "Dana White")

	aliceMsg, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Tenant A comment", nil, nil)
	require.NoError(t, err)
	_, err = f.svc.Post(ctx, dana, entity.TypeItem, "item-1", "Tenant B comment", nil, nil)
	require.NoError(t, err)

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Tenant A comment", messages[0].Content)

	// Cross-tenant references surface as not found, never as forbidden.
	require.ErrorIs(t, f.svc.Edit(ctx, dana, aliceMsg, "Crossing over"), errs.ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, dana, aliceMsg), errs.ErrNotFound)
	_, err = f.svc.ListReplies(ctx, dana, aliceMsg, 50)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// A foreign parent id cannot be grafted onto this tenant's thread.
	_, err = f.svc.Post(ctx, dana, entity.TypeItem, "item-1", "Reply across tenants", &aliceMsg, nil)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPostStoresValidatedMentionsAndPublishesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.NewString()
	alice := f.seedCaller(t, tenantID, "Alice Martin")
	bob := f.seedCaller(t, tenantID, "Bob Johnson")
	outsider := f.seedCaller(t, uuid.NewString(), "Dana White")

	events := f.bus.SubscribeCh()

	id, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Hey @Bob Johnson",
		nil, []string{bob.UserID, outsider.UserID, "no-such-id"})
	require.NoError(t, err)

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Mentions, 1)
	require.Equal(t, bob.UserID, messages[0].Mentions[0].UserID)
	require.Equal(t, "Bob Johnson", messages[0].Mentions[0].UserName)

	select {
	case ev := <-events:
		require.Equal(t, EventMessageCreated, ev.Event)
		payload, ok := ev.Data.(CreatedEvent)
		require.True(t, ok)
		require.Equal(t, id, payload.MessageID)
		require.Equal(t, []string{bob.UserID}, payload.MentionedUserIDs)
		require.Equal(t, "Alice Martin", payload.AuthorName)
	case <-time.After(time.Second):
		t.Fatal("expected a message created event")
	}
}

func TestListPaginationIsStableUnderTailInserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")

	for i := 1; i <= 3; i++ {
		_, err := f.svc.Post(ctx, alice, entity.TypeItem, "item-1", fmt.Sprintf("Message %d", i), nil, nil)
		require.NoError(t, err)
		// created_at is the sort key; keep inserts strictly ordered.
		time.Sleep(2 * time.Millisecond)
	}

	firstPage, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.Equal(t, "Message 1", firstPage[0].Content)
	require.Equal(t, "Message 2", firstPage[1].Content)

	// A new message lands after the queried window.
	_, err = f.svc.Post(ctx, alice, entity.TypeItem, "item-1", "Message 4", nil, nil)
	require.NoError(t, err)

	firstPageAgain, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 2, 0)
	require.NoError(t, err)
	require.Equal(t, firstPage[0].ID, firstPageAgain[0].ID)
	require.Equal(t, firstPage[1].ID, firstPageAgain[1].ID)

	secondPage, err := f.svc.ListByEntity(ctx, alice, entity.TypeItem, "item-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.Equal(t, "Message 3", secondPage[0].Content)
	require.Equal(t, "Message 4", secondPage[1].Content)
}

func TestPostSystemMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedCaller(t, uuid.NewString(), "Alice Martin")

	_, err := f.svc.PostSystem(ctx, alice, entity.TypeReceive, "rcv-7", "Status changed to received")
	require.NoError(t, err)

	messages, err := f.svc.ListByEntity(ctx, alice, entity.TypeReceive, "rcv-7", 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.True(t, messages[0].IsSystemMessage)
}
