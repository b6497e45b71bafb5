// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model: token-based bearer sessions with a hard expiry.
//
// Error semantics:
//   - Lookup of an unknown or expired token surfaces gorm.ErrRecordNotFound,
//     which this package exports as the ErrNotFound alias; errors.Is matches
//     either name. Callers must not distinguish "expired" from "never
//     existed"; the service layer collapses both into its Unauthorized
//     sentinel.
//   - DeleteSession is idempotent: deleting an absent token is a no-op
//     success.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// CreateSession inserts a session row for userID with the given opaque token
// and expiry. Caller is responsible for having verified that the user exists
// and is active.
func CreateSession(ctx context.Context, db *gorm.DB, userID, token string, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetLiveSession returns the session for token only when its expiry is still
// in the future at now. Unknown and expired tokens both yield the raw
// gorm.ErrRecordNotFound (alias ErrNotFound); this is a single indexed point
// lookup, intentionally cheap enough to run on every authenticated request.
func GetLiveSession(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes the session for token. Deleting a token that does not
// exist succeeds; revocation is idempotent by contract.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&domain.Session{}).Error
}

// DeleteSessionsForUser removes every session owned by userID. Used when an
// account is deactivated so revocation takes effect immediately instead of at
// token expiry.
func DeleteSessionsForUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions removes all sessions whose expiry is at or before
// now and reports how many rows went away. Invoked by the periodic reaper;
// expired rows are already inert, this only bounds storage growth.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
