package handlers

// Machine-readable error codes carried in the ErrorResponse envelope next to
// the HTTP status. Clients branch on the code, not on the message text, so
// these strings are part of the API contract: never rename one, only add.
//
// The first group mirrors plain HTTP status semantics. The second group marks
// outcomes the status alone cannot distinguish, such as a case status change
// rejected by the transition table (invalid_transition, 409) versus a
// duplicate case number (conflict, also 409).
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeValidationFailed  = "validation_failed"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeCreateFailed      = "create_failed"
	ErrCodeListFailed        = "list_failed"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
