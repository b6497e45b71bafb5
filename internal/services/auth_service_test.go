package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
)

func newAuthDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("auth_svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newAuthService uses bcrypt.MinCost so the test suite stays fast.
func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, time.Hour, bcrypt.MinCost)
}

func TestRegister_Success_IssuesSession(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, sess, err := svc.Register(ctx, "  Ana@Despacho.ES ", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ana@despacho.es" {
		t.Fatalf("email must be lowercased and trimmed, got %q", u.Email)
	}
	if u.Role != "user" || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "contraseña-larga" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if sess == nil || sess.Token == "" || !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected live session, got %+v", sess)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newAuthService(newAuthDB(t))
	if _, _, err := svc.Register(context.Background(), "a@b.es", "A", "corta"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newAuthDB(t))
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	// Same address with different casing still collides.
	if _, _, err := svc.Register(ctx, "ANA@despacho.es", "Otra", "contraseña-larga"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_TruthTable(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Correct credentials succeed and issue a fresh session.
	got, sess, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga")
	if err != nil || got.ID != u.ID || sess.Token == "" {
		t.Fatalf("login: user=%+v sess=%+v err=%v", got, sess, err)
	}

	// Wrong password, unknown email, and deactivated account are all the
	// same failure from outside.
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "nadie@despacho.es", "contraseña-larga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
	if err := repo.SetUserActive(ctx, db, u.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deactivated account: %v", err)
	}
}

func TestValidate_LiveExpiredRevokedDeactivated(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, sess, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Live token resolves to its owner.
	gotU, gotS, err := svc.Validate(ctx, sess.Token)
	if err != nil || gotU.ID != u.ID || gotS.ID != sess.ID {
		t.Fatalf("validate live: user=%+v sess=%+v err=%v", gotU, gotS, err)
	}

	// Unknown and empty tokens are invalid.
	if _, _, err := svc.Validate(ctx, "never-issued"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("unknown token: %v", err)
	}
	if _, _, err := svc.Validate(ctx, ""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("empty token: %v", err)
	}

	// Expired token is invalid: shift the service clock past the TTL.
	svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expired token: %v", err)
	}
	svc.Now = nil

	// Deactivating the owner kills an otherwise live token.
	if err := repo.SetUserActive(ctx, db, u.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("deactivated owner: %v", err)
	}
	if err := repo.SetUserActive(ctx, db, u.ID, true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	// Revocation is immediate and idempotent.
	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("revoked token: %v", err)
	}
	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("second Revoke must succeed: %v", err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, s1, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	u, s2, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.RevokeAllForUser(ctx, u.ID); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
	for _, tok := range []string{s1.Token, s2.Token} {
		if _, _, err := svc.Validate(ctx, tok); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("token %q should be dead: %v", tok, err)
		}
	}
}

func TestUpdateProfile_NameAndPassword(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Name-only update leaves the password alone.
	got, err := svc.UpdateProfile(ctx, u.ID, "Ana María", "")
	if err != nil || got.Name != "Ana María" {
		t.Fatalf("UpdateProfile(name): user=%+v err=%v", got, err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga"); err != nil {
		t.Fatalf("old password must still work after name change: %v", err)
	}

	// Password rotation invalidates the old credential.
	if _, err := svc.UpdateProfile(ctx, u.ID, "", "otra-contraseña"); err != nil {
		t.Fatalf("UpdateProfile(password): %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "otra-contraseña"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	// Short replacement passwords are refused.
	if _, err := svc.UpdateProfile(ctx, u.ID, "", "corta"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	// Unknown owner.
	if _, err := svc.UpdateProfile(ctx, "missing", "X", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetActive_DeactivationRevokesSessions(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, sess, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive(false): %v", err)
	}
	if _, _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("session should die with deactivation: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deactivated account must not log in: %v", err)
	}

	// Reactivation restores login but never resurrects old sessions.
	if err := svc.SetActive(ctx, u.ID, true); err != nil {
		t.Fatalf("SetActive(true): %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@despacho.es", "contraseña-larga"); err != nil {
		t.Fatalf("reactivated account must log in: %v", err)
	}
	if _, _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("revoked session must stay dead: %v", err)
	}

	if err := svc.SetActive(ctx, "missing", false); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSweepExpired_RemovesOnlyDead(t *testing.T) {
	db := newAuthDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	u, live, err := svc.Register(ctx, "ana@despacho.es", "Ana", "contraseña-larga")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Plant an already-expired session directly.
	if _, err := repo.CreateSession(ctx, db, u.ID, "stale", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("plant stale session: %v", err)
	}

	n, err := svc.SweepExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("SweepExpired: n=%d err=%v", n, err)
	}
	if _, _, err := svc.Validate(ctx, live.Token); err != nil {
		t.Fatalf("live session must survive sweep: %v", err)
	}
}

func TestGenerateSessionToken_UniqueAndURLSafe(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := generateSessionToken()
		if err != nil {
			t.Fatalf("generateSessionToken: %v", err)
		}
		if len(tok) < 40 {
			t.Fatalf("token too short: %q", tok)
		}
		for _, r := range tok {
			if !(r == '-' || r == '_' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Fatalf("token not URL-safe: %q", tok)
			}
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated")
		}
		seen[tok] = true
	}
}
