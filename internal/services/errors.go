// Package services defines the business logic for authentication, case
// management, judgment search, and document templates. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Authentication errors.
var (
	// ErrEmailTaken is returned when registering with an email address that
	// already belongs to an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for any failed login, whether the
	// email is unknown, the password wrong, or the account deactivated. The
	// single sentinel keeps the response indistinguishable across causes.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInvalid is returned when a bearer token does not resolve to a
	// live session: unknown, expired, or belonging to a deactivated user.
	ErrSessionInvalid = errors.New("session invalid or expired")

	// ErrUserNotFound indicates the referenced user account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakPassword is returned when a registration password does not meet
	// the minimum length requirement.
	ErrWeakPassword = errors.New("password too short")
)

// Case-related errors.
var (
	// ErrCaseNotFound indicates that the requested case does not exist.
	ErrCaseNotFound = errors.New("case not found")

	// ErrCaseNumberTaken is returned when creating a case whose numero is
	// already registered.
	ErrCaseNumberTaken = errors.New("case number already exists")

	// ErrInvalidCaseInput is returned when a required case field (numero,
	// tribunal, materia) is blank.
	ErrInvalidCaseInput = errors.New("numero, tribunal and materia are required")

	// ErrInvalidStatus is returned when a case status value is outside the
	// allowed set (active, closed, archived).
	ErrInvalidStatus = errors.New("invalid case status")

	// ErrInvalidTransition is returned when a requested status change is not
	// permitted from the case's current state.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrDocumentNotFound indicates that the requested case document does not
	// exist under the given case.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmptyContent is returned when a case document carries no text.
	ErrEmptyContent = errors.New("document content is empty")

	// ErrInvalidProbability is returned when a prediction probability falls
	// outside [0, 1].
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")

	// ErrEmptyGrounds is returned when a prediction cites no grounding
	// judgments.
	ErrEmptyGrounds = errors.New("prediction must cite at least one judgment")

	// ErrPredictionNotFound indicates that the requested prediction does not
	// exist.
	ErrPredictionNotFound = errors.New("prediction not found")

	// ErrPredictorUnavailable is returned when prediction generation is
	// requested but no inference backend is configured.
	ErrPredictorUnavailable = errors.New("prediction backend not configured")
)

// Judgment and template errors.
var (
	// ErrJudgmentNotFound indicates that the requested judgment does not exist.
	ErrJudgmentNotFound = errors.New("judgment not found")

	// ErrInvalidJudgmentInput is returned when a required judgment field
	// (tribunal, materia, full text) is blank at ingestion.
	ErrInvalidJudgmentInput = errors.New("tribunal, materia and full text are required")

	// ErrTemplateNotFound indicates that the requested document template does
	// not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplateInput is returned when a required template field
	// (nombre, tipo, body) is blank.
	ErrInvalidTemplateInput = errors.New("nombre, tipo and template body are required")

	// ErrGeneratorUnavailable is returned when PDF rendering is requested but
	// no generator backend is configured.
	ErrGeneratorUnavailable = errors.New("pdf generator not configured")

	// ErrEmptyQuery is returned when a search request carries no query text.
	ErrEmptyQuery = errors.New("query is empty")
)
