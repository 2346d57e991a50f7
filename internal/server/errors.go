package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/assets"
	"github.com/jonathan/flower-resume/internal/fetch"
	"github.com/jonathan/flower-resume/internal/resumes"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) *ErrValidation {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "nefield":
		return "must differ from the current password"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists    *ErrEmailAlreadyExists
		badCredentials *ErrInvalidCredentials
		mismatch       *ErrPasswordMismatch
		userNotFound   *ErrUserNotFound
		validation     *ErrValidation
		docNotFound    *resumes.ErrNotFound
		docValidation  *resumes.ErrValidation
		providerErr    *ai.ProviderError
		outputErr      *ai.OutputError
		fetchErr       *fetch.Error
		uploadErr      *assets.UploadError
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCredentials), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &docNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &docValidation):
		return http.StatusBadRequest
	case errors.Is(err, assets.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, assets.ErrUnsupportedType), errors.Is(err, assets.ErrEmpty):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fetch.ErrForbiddenAddress):
		return http.StatusBadRequest
	case errors.Is(err, assets.ErrDisabled), errors.Is(err, ai.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetch.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.As(err, &providerErr), errors.As(err, &outputErr),
		errors.As(err, &fetchErr), errors.As(err, &uploadErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
