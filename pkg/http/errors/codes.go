package errors

// Error codes for standardized error responses
const (
	// Authorization errors
	ErrCodeForbidden  = "forbidden"
	ErrCodeNotHost    = "not_host"
	ErrCodeNotSubject = "not_subject_player"
	ErrCodeNoIdentity = "no_identity_bound"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Temporal-window errors
	ErrCodeInvalidState    = "invalid_state"
	ErrCodeRoundNotStarted = "round_not_started"
	ErrCodeRoundNotActive  = "round_not_active"
	ErrCodeRoundNotEnded   = "round_not_ended"

	// Server errors
	ErrCodeInternalError  = "internal_error"
	ErrCodeUpstreamError  = "upstream_error"
	ErrCodeNotImplemented = "not_implemented"
)
