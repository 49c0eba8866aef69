package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidScope   ErrCode = "INVALID_SCOPE"
	ErrImportTooLarge ErrCode = "IMPORT_TOO_LARGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrExamNotFound ErrCode = "EXAM_NOT_FOUND"
	ErrPartNotFound ErrCode = "PART_NOT_FOUND"
	ErrNoReport     ErrCode = "NO_DISTRIBUTION_REPORT"

	// ─── Import / distribution ─────────────────────────────────────────
	ErrNothingParsed    ErrCode = "NOTHING_PARSED"
	ErrScopeBusy        ErrCode = "SCOPE_BUSY"
	ErrInsufficientBank ErrCode = "INSUFFICIENT_BANK"
	ErrInvalidQuota     ErrCode = "INVALID_QUOTA"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidScope:
		return "Bank scope must be 1-255 characters."
	case ErrImportTooLarge:
		return "Pasted text exceeds the import size limit."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrExamNotFound:
		return "Exam not found."
	case ErrPartNotFound:
		return "Exam part not found."
	case ErrNoReport:
		return "No distribution has been run for this scope yet."

	// ─── Import / distribution ─────────────────────────────────────────
	case ErrNothingParsed:
		return "No question could be parsed from the pasted text."
	case ErrScopeBusy:
		return "Another import or distribution is running for this bank. Try again shortly."
	case ErrInsufficientBank:
		return "The bank does not hold enough questions for the requested quotas."
	case ErrInvalidQuota:
		return "Quotas must be zero or positive."

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
