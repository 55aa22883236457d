package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind классифицирует бизнес-ошибки инвентаря
type Kind string

const (
	KindNotFound          Kind = "NotFound"          // материал/партия/заявка/запись не найдены
	KindInsufficientStock Kind = "InsufficientStock" // запрошено больше, чем есть на складе
	KindInvalidState      Kind = "InvalidState"      // операция запрещена текущим статусом
	KindValidationError   Kind = "ValidationError"   // отсутствует обязательное поле
	KindInvalidReference  Kind = "InvalidReference"  // возврат ссылается не на выдачу
	KindAlreadyProcessed  Kind = "AlreadyProcessed"  // заявка уже обработана
	KindUnauthorized      Kind = "Unauthorized"
	KindInternal          Kind = "InternalError" // неожиданная ошибка хранилища
)

// Error — типизированная ошибка бизнес-правила с HTTP-маппингом для контроллеров
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus возвращает HTTP-статус для данного типа ошибки
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindInvalidState, KindValidationError, KindInvalidReference, KindAlreadyProcessed:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound — сущность не найдена
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: fmt.Sprintf("ID: %s", id),
	}
}

// InsufficientStock — недостаточно остатков для операции
func InsufficientStock(available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock, only %d available", available),
		Details: fmt.Sprintf("Available: %d, Requested: %d", available, requested),
	}
}

// InvalidState — операция несовместима с текущим статусом сущности
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// Validation — ошибка валидации конкретного поля
func Validation(message, field string) *Error {
	return &Error{
		Kind:    KindValidationError,
		Message: message,
		Details: fmt.Sprintf("Field: %s", field),
	}
}

// InvalidReference — ссылка на запись журнала неподходящего типа
func InvalidReference(message string) *Error {
	return &Error{Kind: KindInvalidReference, Message: message}
}

// AlreadyProcessed — заявка уже одобрена или отклонена
func AlreadyProcessed(requestID string) *Error {
	return &Error{
		Kind:    KindAlreadyProcessed,
		Message: "request has already been processed",
		Details: fmt.Sprintf("Request ID: %s", requestID),
	}
}

// Unauthorized создается при ошибке аутентификации
func Unauthorized(message string) *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Message: message,
	}
}

// Internal оборачивает неожиданную ошибку хранилища
func Internal(operation string, err error) *Error {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("operation failed: %s", operation),
		Details: details,
	}
}

// AsError извлекает *Error из цепочки; прочее оборачивается в InternalError
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Details: err.Error()}
}

// IsKind проверяет тип ошибки в цепочке
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
