package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studyquest/internal/api/shared"
	"github.com/phrazzld/studyquest/internal/hearts"
	"github.com/phrazzld/studyquest/internal/progress"
	"github.com/phrazzld/studyquest/internal/service/study"
	"github.com/phrazzld/studyquest/internal/store"
)

// ErrInvalidPathParam is returned for a missing or malformed path parameter.
var ErrInvalidPathParam = errors.New("invalid path parameter")

// MapErrorToStatusCode maps service and storage errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var validationErrs validator.ValidationErrors
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, study.ErrSetNotFound),
		errors.Is(err, study.ErrCardNotFound):
		return http.StatusNotFound

	case errors.Is(err, hearts.ErrNoHearts):
		return http.StatusConflict

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, study.ErrInvalidInput),
		errors.Is(err, progress.ErrInvalidImport),
		errors.Is(err, ErrInvalidPathParam),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrMalformedBody),
		errors.As(err, &validationErrs),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return "Request body too large"
	case errors.Is(err, study.ErrSetNotFound):
		return "Set not found"
	case errors.Is(err, study.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, hearts.ErrNoHearts):
		return "No hearts left"
	case errors.Is(err, progress.ErrInvalidImport):
		return "Invalid import data"
	case errors.Is(err, ErrInvalidPathParam):
		return "Invalid path or query parameter"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, study.ErrInvalidInput):
		return "Invalid input"
	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		return "Invalid request body"
	case errors.Is(err, store.ErrClosed):
		return "Storage is unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError describes the first failed field of a validation
// error without exposing struct names.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte", "ltefield":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the generic message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, progress.ErrInvalidImport) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
