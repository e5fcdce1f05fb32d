package services

import (
	"testing"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestStaff(t, db, "staff@example.com")
	svc := NewSessionService(db, time.Hour)

	session, err := svc.CreateSession(user.ID, "10.0.0.7", "go-test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "10.0.0.7", session.RemoteIP)

	loaded, err := svc.GetSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.UserID)
	// The session carries its user for the auth middleware.
	assert.Equal(t, user.Email, loaded.User.Email)
	assert.Equal(t, models.RoleStaff, loaded.User.Role)

	require.NoError(t, svc.DeleteSession(session.Token))
	_, err = svc.GetSession(session.Token)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetSessionRejectsExpired(t *testing.T) {
	db := setupTestDB(t)
	user := createTestStaff(t, db, "staff@example.com")
	svc := NewSessionService(db, time.Hour)

	session, err := svc.CreateSession(user.ID, "", "")
	require.NoError(t, err)

	// Force the expiry into the past.
	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", session.Token).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	_, err = svc.GetSession(session.Token)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	user := createTestStaff(t, db, "staff@example.com")
	svc := NewSessionService(db, time.Hour)

	live, err := svc.CreateSession(user.ID, "", "")
	require.NoError(t, err)

	stale, err := svc.CreateSession(user.ID, "", "")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", stale.Token).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	purged, err := svc.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = svc.GetSession(live.Token)
	assert.NoError(t, err)
}

func TestRevokeUserSessions(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestStaff(t, db, "alice@example.com")
	bob := createTestStaff(t, db, "bob@example.com")
	svc := NewSessionService(db, time.Hour)

	aliceSession, err := svc.CreateSession(alice.ID, "", "")
	require.NoError(t, err)
	bobSession, err := svc.CreateSession(bob.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeUserSessions(alice.ID))

	_, err = svc.GetSession(aliceSession.Token)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.GetSession(bobSession.Token)
	assert.NoError(t, err)
}
