package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для доменных ошибок roast-процесса.
*/

// --- Фабрики ---

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - фабрика для невалидных переходов статуса (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or malformed token",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"auth",
	"Password does not meet the minimum requirements",
	http.StatusBadRequest,
)

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

// ErrInsufficientPermissions - caller не владеет ресурсом или роль не подходит.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Profiles ---

// ErrProfileRequired - переключение активной роли требует существующего
// профиля для этой роли.
var ErrProfileRequired = New(
	CodeInvalidOperation,
	"profile",
	"A profile for this role must be created first",
	http.StatusBadRequest,
)

// --- Roast requests ---

// ErrRequestClosed - заявки на этот запрос больше не принимаются.
var ErrRequestClosed = New(
	CodeInvalidStatus,
	"roast_request",
	"This roast request is no longer accepting applications",
	http.StatusConflict,
)

var ErrInvalidRequestStatus = New(
	CodeInvalidStatus,
	"roast_request",
	"Operation is not allowed in the current request status",
	http.StatusConflict,
)

var ErrCannotApplyToOwnRequest = New(
	CodeInvalidOperation,
	"roast_request",
	"You cannot apply to your own roast request",
	http.StatusBadRequest,
)

// --- Applications ---

// ErrAlreadyApplied - у ростера уже есть активная заявка на этот запрос.
var ErrAlreadyApplied = New(
	CodeConflict,
	"application",
	"You have already applied to this roast request",
	http.StatusConflict,
)

// ErrNoSlotsAvailable - все слоты запроса уже заняты.
var ErrNoSlotsAvailable = New(
	CodeConflict,
	"application",
	"No slots remaining on this roast request",
	http.StatusConflict,
)

// ErrApplicationDecided - заявка уже в терминальном статусе,
// повторное решение запрещено.
var ErrApplicationDecided = New(
	CodeInvalidStatus,
	"application",
	"Application has already been decided",
	http.StatusConflict,
)

// --- Feedback ---

var ErrFeedbackNotEditable = New(
	CodeInvalidStatus,
	"feedback",
	"Feedback can no longer be modified",
	http.StatusConflict,
)

var ErrFeedbackAlreadyRated = New(
	CodeConflict,
	"feedback",
	"Feedback has already been rated",
	http.StatusConflict,
)

var ErrFeedbackNotCompleted = New(
	CodeInvalidStatus,
	"feedback",
	"Feedback must be completed before it can be rated",
	http.StatusConflict,
)

// --- Uploads & Files ---

// ErrFileTooLarge - файл превышает максимальный размер для одного запроса.
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен.
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)
