package engine

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func InvalidPayloadError(msg string) *AppError {
	return NewAppError("INVALID_PAYLOAD", 400, msg)
}

func AmbiguousEntityError(name, first, second string) *AppError {
	return NewAppError("AMBIGUOUS_ENTITY", 400,
		fmt.Sprintf("The name %q is not unambiguous. Entity %q and %q correspond to this name.", name, first, second))
}

func UnknownEntityError(name string) *AppError {
	return NewAppError("UNKNOWN_ENTITY", 404,
		fmt.Sprintf("No entity corresponds to name %q.", name))
}

func InvalidEntityError(name string, cause error) *AppError {
	return &AppError{
		Code:    "UNKNOWN_ENTITY",
		Status:  404,
		Message: fmt.Sprintf("%q is not valid entity: %v", name, cause),
		Cause:   cause,
	}
}

func NotFoundError(entity, id string) *AppError {
	return NewAppError("NOT_FOUND", 404,
		fmt.Sprintf("Entity %q with identifier %q does not exist.", entity, id))
}

func NotUniqueError(entity, id string) *AppError {
	return NewAppError("NOT_UNIQUE", 409,
		fmt.Sprintf("Entity %q with identifier %q is not unique.", entity, id))
}

func SetterMissingError(setter string) *AppError {
	return NewAppError("SETTER_MISSING", 400,
		fmt.Sprintf("Setter %q does not exist.", setter))
}

func NotEditableError(setter string) *AppError {
	return NewAppError("NOT_EDITABLE", 403,
		fmt.Sprintf("Setter %q is not marked editable.", setter))
}

func ArityMismatchError(setter string, arity int) *AppError {
	if arity == 0 {
		return NewAppError("ARITY_MISMATCH", 400,
			fmt.Sprintf("First argument of setter %q is required.", setter))
	}
	return NewAppError("ARITY_MISMATCH", 400,
		fmt.Sprintf("Setter %q has too many arguments, exactly one required.", setter))
}

// ApplyFailedError wraps a failure that happened while changing a record.
// The code and status of an inner AppError are kept; anything else becomes
// APPLY_FAILED.
func ApplyFailedError(entity, id string, cause error) *AppError {
	appErr := &AppError{
		Code:    "APPLY_FAILED",
		Status:  400,
		Message: fmt.Sprintf("Value for entity %q with identifier %q can not be changed: %v", entity, id, cause),
		Cause:   cause,
	}
	var inner *AppError
	if errors.As(cause, &inner) {
		appErr.Code = inner.Code
		appErr.Status = inner.Status
	}
	return appErr
}
