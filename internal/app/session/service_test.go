package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockroom/internal/errs"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tenant{}, &Profile{}, &Session{}))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, name, email string) *Profile {
	t.Helper()
	tenant := Tenant{ID: uuid.NewString(), Name: name + " Co", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&tenant).Error)
	profile := Profile{
		ID:        uuid.NewString(),
		TenantID:  tenant.ID,
		FullName:  name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

func TestResolveReturnsServerDerivedIdentity(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db))

	profile := seedProfile(t, db, "Alice Martin", "alice@acme.test")

	sess, _, err := svc.CreateSession(context.Background(), "alice@acme.test", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, sess.SessionKey)

	caller, err := svc.Resolve(context.Background(), sess.SessionKey)
	require.NoError(t, err)
	require.Equal(t, profile.ID, caller.UserID)
	require.Equal(t, profile.TenantID, caller.TenantID)
	require.Equal(t, "Alice Martin", caller.UserName)
}

func TestResolveRejectsMissingAndUnknownKeys(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db))

	_, err := svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = svc.Resolve(context.Background(), "no-such-key")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestResolveRejectsEndedSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db))

	seedProfile(t, db, "Bob Johnson", "bob@acme.test")

	sess, _, err := svc.CreateSession(context.Background(), "bob@acme.test", "test-agent")
	require.NoError(t, err)

	// Issuing a new session closes the previous one.
	sess2, _, err := svc.CreateSession(context.Background(), "bob@acme.test", "test-agent")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), sess.SessionKey)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = svc.Resolve(context.Background(), sess2.SessionKey)
	require.NoError(t, err)
}

func TestCreateSessionUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db))

	_, _, err := svc.CreateSession(context.Background(), "ghost@nowhere.test", "test-agent")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
