// Package services – AuthService
//
// This file implements the AuthService, which owns the account and session
// lifecycle: registration, password login, bearer-token validation, logout,
// profile updates, soft deactivation, and expired-session sweeping. Sessions are opaque random tokens persisted
// server-side; validation is a single indexed lookup. Service-level errors
// (e.g. ErrInvalidCredentials, ErrSessionInvalid) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
)

// sessionTokenBytes is the entropy of an opaque session token before
// base64url encoding.
const sessionTokenBytes = 32

// dummyBcryptHash is compared against when the login email is unknown, so a
// miss costs the same as a wrong password and timing does not leak account
// existence. Hash of an unguessable throwaway string.
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// minPasswordLen is the minimum accepted registration password length.
const minPasswordLen = 8

// AuthService implements the use-cases around accounts and sessions. It
// persists through the repo package directly; credential hashing uses bcrypt
// with a configurable cost.
type AuthService struct {
	// DB is the database handle used for all auth operations.
	DB *gorm.DB

	// SessionTTL is the lifetime of a newly issued session.
	SessionTTL time.Duration

	// BcryptCost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	BcryptCost int

	// Now returns the current time; overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// NewAuthService constructs an AuthService with the given session lifetime.
func NewAuthService(db *gorm.DB, ttl time.Duration, bcryptCost int) *AuthService {
	return &AuthService{DB: db, SessionTTL: ttl, BcryptCost: bcryptCost}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

// Register creates a new account with a bcrypt-hashed password and
// immediately issues a session for it.
//
// Semantics and validation:
//   - email is lowercased and trimmed before storage, so lookups are
//     case-insensitive by construction.
//   - password must be at least 8 characters; otherwise ErrWeakPassword.
//   - A duplicate email yields ErrEmailTaken. The check rides on the unique
//     index, so concurrent registrations cannot both win.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLen {
		return nil, nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.CreateUser(ctx, s.DB, email, strings.TrimSpace(name), string(hash), "user")
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	sess, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Login verifies credentials and issues a fresh session.
//
// Every failure path returns ErrInvalidCredentials: unknown email, wrong
// password, and deactivated account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if isNotFound(err) {
			// Burn a comparison anyway so the miss costs as much as a hit.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyBcryptHash), []byte(password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Validate resolves a bearer token to its owning user. A token that is
// unknown, expired, or owned by a deactivated account yields ErrSessionInvalid.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if token == "" {
		return nil, nil, ErrSessionInvalid
	}
	sess, err := repo.GetLiveSession(ctx, s.DB, token, s.now())
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, err
	}
	u, err := repo.GetUserByID(ctx, s.DB, sess.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, err
	}
	if !u.IsActive {
		return nil, nil, ErrSessionInvalid
	}
	return u, sess, nil
}

// Revoke deletes the session behind the token. Revoking an unknown or
// already-revoked token succeeds, so logout is idempotent.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	return repo.DeleteSession(ctx, s.DB, token)
}

// GetUser fetches an account by ID, mapping missing rows to ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUserByID(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the display name and/or password of an account. An
// empty argument leaves that field untouched; a non-empty password must meet
// the same minimum length as registration. Returns the updated user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, password string) (*domain.User, error) {
	if name = strings.TrimSpace(name); name != "" {
		if err := repo.UpdateUserName(ctx, s.DB, userID, name); err != nil {
			if isNotFound(err) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	if password != "" {
		if len(password) < minPasswordLen {
			return nil, ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := repo.UpdateUserPasswordHash(ctx, s.DB, userID, string(hash)); err != nil {
			if isNotFound(err) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	return s.GetUser(ctx, userID)
}

// SetActive flips the account's active flag. Deactivating also revokes every
// live session, so the lockout takes effect immediately rather than at token
// expiry.
func (s *AuthService) SetActive(ctx context.Context, userID string, active bool) error {
	if err := repo.SetUserActive(ctx, s.DB, userID, active); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if !active {
		return s.RevokeAllForUser(ctx, userID)
	}
	return nil
}

// RevokeAllForUser deletes every session owned by userID, logging the user
// out of all devices at once.
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID string) error {
	return repo.DeleteSessionsForUser(ctx, s.DB, userID)
}

// SweepExpired deletes all sessions whose expiry has passed and reports how
// many were removed. Intended to run on a schedule.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredSessions(ctx, s.DB, s.now())
}

// issueSession mints an opaque token and persists a session row for userID.
func (s *AuthService) issueSession(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}
	return repo.CreateSession(ctx, s.DB, userID, token, s.now().Add(s.SessionTTL))
}

// generateSessionToken returns a URL-safe random token with 256 bits of
// entropy. The token is the credential itself; nothing is derivable from it.
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
