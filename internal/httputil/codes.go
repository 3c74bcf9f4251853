package httputil

// Machine-readable error codes returned alongside error messages.
// Clients should branch on these, not on message text.
const (
	CodeInvalidRequestBody   = "INVALID_REQUEST_BODY"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeEmailRequired        = "EMAIL_REQUIRED"
	CodeInvalidEmailFormat   = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired     = "PASSWORD_REQUIRED"
	CodePasswordTooShort     = "PASSWORD_TOO_SHORT"
	CodePasswordTooWeak      = "PASSWORD_TOO_WEAK"
	CodeEmailAlreadyExists   = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeRefreshTokenRequired = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeMissingAuth          = "MISSING_AUTH"
	CodeInvalidAuthHeader    = "INVALID_AUTH_HEADER"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
	CodeInternalError        = "INTERNAL_ERROR"
)
