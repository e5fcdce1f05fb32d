package services

import (
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionService interface {
	// CreateSession mints a new session token for the user.
	CreateSession(userID uint, remoteIP, userAgent string) (*models.Session, error)
	// GetSession returns the session with its user preloaded, or an error when
	// the token is unknown or expired. Valid lookups bump LastSeenAt.
	GetSession(token string) (*models.Session, error)
	DeleteSession(token string) error
	// RevokeUserSessions deletes every session belonging to the user.
	RevokeUserSessions(userID uint) error
	// PurgeExpired removes expired sessions and returns how many were deleted.
	PurgeExpired() (int64, error)
}

type sessionService struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewSessionService(db *gorm.DB, ttl time.Duration) SessionService {
	return &sessionService{db: db, ttl: ttl}
}

func (s *sessionService) CreateSession(userID uint, remoteIP, userAgent string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		Token:      uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.ttl),
		RemoteIP:   remoteIP,
		UserAgent:  userAgent,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) GetSession(token string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Preload("User").Where("token = ?", token).First(&session).Error; err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		// Expired sessions behave like unknown ones; the purge job removes the row.
		return nil, gorm.ErrRecordNotFound
	}

	s.db.Model(&session).Update("last_seen_at", time.Now().UTC())
	return &session, nil
}

func (s *sessionService) DeleteSession(token string) error {
	return s.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

func (s *sessionService) RevokeUserSessions(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (s *sessionService) PurgeExpired() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
