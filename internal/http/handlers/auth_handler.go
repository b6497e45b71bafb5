// Authentication HTTP handlers.
//
// This file exposes REST endpoints for accounts and sessions:
//   - POST   /auth/register   (create account, returns session token)
//   - POST   /auth/login      (password login, returns session token)
//   - GET    /auth/me         (current account)
//   - PUT    /auth/me         (update display name and/or password)
//   - DELETE /auth/me         (deactivate the account, revokes all sessions)
//   - POST   /auth/logout     (revoke the presented token)
//   - PATCH  /admin/users/{id}/active  (admin: activate/deactivate any account)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Login failures are always the
// same 401 regardless of cause.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/http/middleware"
	"github.com/goyo-ia/legal-backend/internal/services"
)

// AuthService defines the account and session operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Register creates an account and issues its first session.
	Register(ctx context.Context, email, name, password string) (*domain.User, *domain.Session, error)
	// Login verifies credentials and issues a session.
	Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	// Revoke invalidates the given session token (idempotent).
	Revoke(ctx context.Context, token string) error
	// UpdateProfile changes the display name and/or password of an account.
	UpdateProfile(ctx context.Context, userID, name, password string) (*domain.User, error)
	// SetActive flips the account's active flag; deactivation revokes all
	// its sessions.
	SetActive(ctx context.Context, userID string, active bool) error
}

// UserReader fetches account data for the authenticated identity.
type UserReader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	// Email is the login identifier; stored lowercased.
	Email string `json:"email" binding:"required,email" example:"ana@despacho.es"`
	// Name is the display name.
	Name string `json:"name" binding:"required,min=1,max=200" example:"Ana García"`
	// Password must be at least 8 characters.
	Password string `json:"password" binding:"required,min=8" example:"correcthorse"`
}

// LoginRequest is the JSON payload for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@despacho.es"`
	Password string `json:"password" binding:"required" example:"correcthorse"`
}

// UpdateProfileRequest is the JSON payload for updating the current account.
// Both fields are optional; an omitted field stays as it is.
type UpdateProfileRequest struct {
	// Name is the new display name.
	Name string `json:"name" binding:"omitempty,min=1,max=200" example:"Ana García-Luengo"`
	// Password is the new password; same minimum length as registration.
	Password string `json:"password" binding:"omitempty,min=8" example:"horsecorrect"`
}

// SetActiveRequest is the JSON payload for the admin activation toggle.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SessionResponse carries a freshly issued bearer token and its owner.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new user and returns a session token for immediate use.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, sess, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		return
	case errors.Is(err, services.ErrWeakPassword):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "password too short")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusCreated, SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a session token. Every failure is the same 401.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, sess, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u})
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Description Returns the account that owns the presented bearer token.
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	u, err := h.users.GetUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Update the current account
// @Description Changes the display name and/or password. Omitted fields are left untouched. Existing sessions stay valid.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Profile changes"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/me [put]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.authSvc.UpdateProfile(c.Request.Context(), userID(c), req.Name, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrWeakPassword):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "password too short")
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// DeactivateMe godoc
// @ID          deactivateMe
// @Summary     Deactivate the current account
// @Description Marks the account inactive and revokes every live session. Accounts are never hard-deleted; an admin can reactivate later.
// @Tags        Auth
// @Security    BearerAuth
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/me [delete]
func (h *Handlers) DeactivateMe(c *gin.Context) {
	err := h.authSvc.SetActive(c.Request.Context(), userID(c), false)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// SetUserActive godoc
// @ID          setUserActive
// @Summary     Activate or deactivate an account (admin)
// @Description Flips the active flag on any account. Deactivation revokes that account's sessions. Requires the admin role.
// @Tags        Auth
// @Accept      json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "User ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SetActiveRequest  true  "Target state"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/users/{id}/active [patch]
func (h *Handlers) SetUserActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "active required")
		return
	}

	err := h.authSvc.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Revokes the presented bearer token. Revoking twice is not an error.
// @Tags        Auth
// @Security    BearerAuth
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := ""
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		token = strings.TrimSpace(header[7:])
	}
	if err := h.authSvc.Revoke(c.Request.Context(), token); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// userID extracts the authenticated user id from Gin context (set by the auth
// middleware). If absent, it falls back to the "X-User-ID" header (tests use
// it), and finally to "anonymous". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if uid, ok := middleware.UserIDFrom(c); ok {
		return uid
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "anonymous"
}
