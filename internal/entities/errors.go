package entities

// ErrorCode is a stable machine-readable code API consumers can branch on.
// The set is closed: every business failure in the service maps to exactly
// one of these codes, storage errors are never surfaced raw.
type ErrorCode string

const (
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeDuplicateOrder ErrorCode = "DUPLICATE_ORDER"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeInvalidItemID  ErrorCode = "INVALID_ITEM_ID"
	CodeUnauthorized   ErrorCode = "AUTH_ERROR"
	CodeForbidden      ErrorCode = "FORBIDDEN"
)

// Error is a domain error. Message may change wording freely, Code may not.
type Error struct {
	Code    ErrorCode
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrOrderNotFound      = &Error{Code: CodeNotFound, Message: "order not found"}
	ErrOrderAlreadyExists = &Error{Code: CodeDuplicateOrder, Message: "order already exists"}

	ErrInvalidCredentials = &Error{Code: CodeUnauthorized, Message: "invalid credentials"}
	ErrInvalidToken       = &Error{Code: CodeUnauthorized, Message: "invalid token"}
	ErrMissingToken       = &Error{Code: CodeUnauthorized, Message: "missing authorization token"}
)

// NewValidationError reports a payload that fails schema validation.
func NewValidationError(message string, details any) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// NewInvalidItemIDError reports a non-numeric item identifier. Kept distinct
// from the generic validation kind so consumers can special-case it.
func NewInvalidItemIDError(message string) *Error {
	return &Error{Code: CodeInvalidItemID, Message: message}
}
