package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

func newSessionRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("session_repo_test_%d.db", time.Now().UnixNano()))
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

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedSessionUser(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, "ana@despacho.es", "Ana", "h", "user")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCreateSession_Error_NoTable(t *testing.T) {
	db := newSessionRepoDB(t /* no migrations */)
	s, err := CreateSession(context.Background(), db, "u1", "tok", time.Now().Add(time.Hour))
	if err == nil || s != nil {
		t.Fatalf("expected error creating without table, got session=%v err=%v", s, err)
	}
}

func TestGetLiveSession_TruthTable(t *testing.T) {
	db := newSessionRepoDB(t, &domain.User{}, &domain.Session{})
	u := seedSessionUser(t, db)
	now := time.Now().UTC()

	if _, err := CreateSession(context.Background(), db, u.ID, "live-token", now.Add(time.Hour)); err != nil {
		t.Fatalf("create live session: %v", err)
	}
	if _, err := CreateSession(context.Background(), db, u.ID, "expired-token", now.Add(-time.Minute)); err != nil {
		t.Fatalf("create expired session: %v", err)
	}

	// Live token resolves.
	got, err := GetLiveSession(context.Background(), db, "live-token", now)
	if err != nil || got.UserID != u.ID {
		t.Fatalf("live token: got=%+v err=%v", got, err)
	}

	// Expired token behaves exactly like a missing one.
	if _, err := GetLiveSession(context.Background(), db, "expired-token", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired token: expected ErrNotFound, got %v", err)
	}
	if _, err := GetLiveSession(context.Background(), db, "unknown-token", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token: expected ErrNotFound, got %v", err)
	}

	// Boundary: a session is dead at its exact expiry instant.
	exact := now.Add(time.Hour)
	if _, err := GetLiveSession(context.Background(), db, "live-token", exact); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token at exact expiry: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSession_IsIdempotent(t *testing.T) {
	db := newSessionRepoDB(t, &domain.User{}, &domain.Session{})
	u := seedSessionUser(t, db)
	now := time.Now().UTC()

	if _, err := CreateSession(context.Background(), db, u.ID, "tok", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := DeleteSession(context.Background(), db, "tok"); err != nil {
		t.Fatalf("first DeleteSession: %v", err)
	}
	if _, err := GetLiveSession(context.Background(), db, "tok", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	// Second delete of the same token must succeed too.
	if err := DeleteSession(context.Background(), db, "tok"); err != nil {
		t.Fatalf("second DeleteSession: %v", err)
	}
	// And deleting a never-seen token is not an error.
	if err := DeleteSession(context.Background(), db, "never-existed"); err != nil {
		t.Fatalf("DeleteSession unknown token: %v", err)
	}
}

func TestDeleteSessionsForUser_OnlyTouchesThatUser(t *testing.T) {
	db := newSessionRepoDB(t, &domain.User{}, &domain.Session{})
	u1 := seedSessionUser(t, db)
	u2, err := CreateUser(context.Background(), db, "otro@despacho.es", "Otro", "h", "user")
	if err != nil {
		t.Fatalf("seed second user: %v", err)
	}
	now := time.Now().UTC()

	for i, owner := range []string{u1.ID, u1.ID, u2.ID} {
		if _, err := CreateSession(context.Background(), db, owner, fmt.Sprintf("tok-%d", i), now.Add(time.Hour)); err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
	}

	if err := DeleteSessionsForUser(context.Background(), db, u1.ID); err != nil {
		t.Fatalf("DeleteSessionsForUser: %v", err)
	}

	var remaining []domain.Session
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(remaining) != 1 || remaining[0].UserID != u2.ID {
		t.Fatalf("expected only u2's session to survive, got %+v", remaining)
	}
}

func TestDeleteExpiredSessions_CountsOnlyExpired(t *testing.T) {
	db := newSessionRepoDB(t, &domain.User{}, &domain.Session{})
	u := seedSessionUser(t, db)
	now := time.Now().UTC()

	if _, err := CreateSession(context.Background(), db, u.ID, "old-1", now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("CreateSession old-1: %v", err)
	}
	if _, err := CreateSession(context.Background(), db, u.ID, "old-2", now.Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession old-2: %v", err)
	}
	if _, err := CreateSession(context.Background(), db, u.ID, "fresh", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession fresh: %v", err)
	}

	n, err := DeleteExpiredSessions(context.Background(), db, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 reaped sessions, got %d", n)
	}

	if _, err := GetLiveSession(context.Background(), db, "fresh", now); err != nil {
		t.Fatalf("fresh session should survive the sweep: %v", err)
	}

	// Sweep again: nothing left to reap.
	n, err = DeleteExpiredSessions(context.Background(), db, now)
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
}
