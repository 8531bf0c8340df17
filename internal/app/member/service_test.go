package member

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockroom/internal/app/session"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&session.Tenant{}, &session.Profile{}))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, tenantID, name, email string) *session.Profile {
	t.Helper()
	p := session.Profile{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		FullName:  name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	return NewService(NewRepository(db), nil, zap.NewNop(), 10)
}

func caller(tenantID string) *session.Context {
	return &session.Context{UserID: uuid.NewString(), TenantID: tenantID}
}

func TestSearchMentionableIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	seedMember(t, db, tenantA, "Alice Martin", "alice@acme.test")
	seedMember(t, db, tenantA, "Bob Johnson", "bob@acme.test")
	seedMember(t, db, tenantB, "Bobby Tables", "bobby@globex.test")

	members, err := svc.SearchMentionable(context.Background(), caller(tenantA), "bob", 10)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Bob Johnson", members[0].UserName)
}

func TestSearchMentionableMatchesNameAndEmailCaseInsensitively(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	tenantID := uuid.NewString()
	seedMember(t, db, tenantID, "Carol Reyes", "carol@acme.test")

	byName, err := svc.SearchMentionable(context.Background(), caller(tenantID), "CAROL", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byEmail, err := svc.SearchMentionable(context.Background(), caller(tenantID), "acme.test", 10)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
}

func TestSearchMentionableEmptyQueryReturnsRoster(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	tenantID := uuid.NewString()
	seedMember(t, db, tenantID, "Alice Martin", "alice@acme.test")
	seedMember(t, db, tenantID, "Bob Johnson", "bob@acme.test")
	seedMember(t, db, tenantID, "Carol Reyes", "carol@acme.test")

	members, err := svc.SearchMentionable(context.Background(), caller(tenantID), "", 2)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestValidateMentionsDropsForeignAndUnknownIDs(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	alice := seedMember(t, db, tenantA, "Alice Martin", "alice@acme.test")
	bob := seedMember(t, db, tenantA, "Bob Johnson", "bob@acme.test")
	outsider := seedMember(t, db, tenantB, "Dana White", "dana@globex.test")

	valid, err := svc.ValidateMentions(context.Background(), caller(tenantA),
		[]string{bob.ID, outsider.ID, "no-such-id", alice.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, valid, 2)
	require.Equal(t, bob.ID, valid[0].ID)
	require.Equal(t, alice.ID, valid[1].ID)
}

func TestValidateMentionsEmptyInput(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	valid, err := svc.ValidateMentions(context.Background(), caller(uuid.NewString()), nil)
	require.NoError(t, err)
	require.Empty(t, valid)
}
