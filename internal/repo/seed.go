// This file provides first-boot seeding: an idempotent bootstrap of the
// administrative account so a fresh deployment is usable without manual SQL.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// EnsureAdminUser creates the admin account if no user with the given email
// exists yet. It is idempotent and safe to run on every startup: a second
// call finds the existing row and touches nothing, so an operator who later
// changed the admin's password is never clobbered.
//
// passwordHash must already be a bcrypt hash; seeding never sees plaintext.
func EnsureAdminUser(ctx context.Context, db *gorm.DB, email, name, passwordHash string) (*domain.User, bool, error) {
	existing, err := GetUserByEmail(ctx, db, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	u, err := CreateUser(ctx, db, email, name, passwordHash, "admin")
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
