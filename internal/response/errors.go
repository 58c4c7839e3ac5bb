package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Practice ──────────────────────────────────────────────────────
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrInvalidConfig       ErrCode = "INVALID_CONFIG"
	ErrInvalidTransition   ErrCode = "INVALID_TRANSITION"
	ErrNotInProgress       ErrCode = "NOT_IN_PROGRESS"
	ErrAlreadyAnswered     ErrCode = "ALREADY_ANSWERED"
	ErrAtFirstQuestion     ErrCode = "AT_FIRST_QUESTION"
	ErrSessionNotCompleted ErrCode = "SESSION_NOT_COMPLETED"
	ErrInvalidOption       ErrCode = "INVALID_OPTION"
	ErrFetchFailed         ErrCode = "FETCH_FAILED"
	ErrTooManySessions     ErrCode = "TOO_MANY_SESSIONS"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Invalid authentication token."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Practice ──────────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "Practice session not found or expired."
	case ErrInvalidConfig:
		return "Invalid practice configuration."
	case ErrInvalidTransition:
		return "This action is not allowed right now."
	case ErrNotInProgress:
		return "Practice session is not in progress."
	case ErrAlreadyAnswered:
		return "This question has already been answered."
	case ErrAtFirstQuestion:
		return "Already at the first question."
	case ErrSessionNotCompleted:
		return "Practice session is not completed yet."
	case ErrInvalidOption:
		return "Option must be one of A, B, C or D."
	case ErrFetchFailed:
		return "Failed to load questions. Please check your connection."
	case ErrTooManySessions:
		return "Too many active practice sessions. Please try again later."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "File upload is required."
	case ErrUnsupportedFile:
		return "Only image files are allowed (JPEG, PNG, GIF)."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
