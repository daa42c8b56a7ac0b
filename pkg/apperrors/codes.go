package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие коды
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Коды биллинга. Клиент ветвится по ним: предложить покупку или показать время сброса.
const (
	CodeInsufficientCredit ErrorCode = "INSUFFICIENT_CREDIT"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	CodeInvalidSignature   ErrorCode = "INVALID_SIGNATURE"
	CodeOrderNotFound      ErrorCode = "ORDER_NOT_FOUND"
	CodeGatewayError       ErrorCode = "GATEWAY_ERROR"
	CodeStorageConflict    ErrorCode = "STORAGE_CONFLICT"
	CodeGenerationFailed   ErrorCode = "GENERATION_FAILED"
	CodeOrderFailed        ErrorCode = "ORDER_FAILED"
)
