package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
)

// MapErrorToStatusCode maps engine and validation errors to HTTP status
// codes. Anything unrecognized is a 500.
func MapErrorToStatusCode(err error) int {
	var (
		verr  *domain.ValidationError
		verrs validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, library.ErrCommitFailed):
		return http.StatusInternalServerError

	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, library.ErrOutOfStock),
		errors.Is(err, library.ErrAlreadyHeld),
		errors.Is(err, library.ErrNotHeld),
		errors.Is(err, library.ErrInUse),
		errors.Is(err, library.ErrHasOutstandingLoans),
		errors.Is(err, library.ErrNothingToReturn):
		return http.StatusConflict

	case errors.Is(err, library.ErrInvalidField),
		errors.As(err, &verr),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message that can be shown to the client.
// Domain rejections carry the engine's own message, which only names
// catalog titles and member names. Server errors get a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, library.ErrCommitFailed):
		return "The change could not be saved"

	case errors.Is(err, library.ErrBookNotFound):
		return "Book not found"

	case errors.Is(err, library.ErrMemberNotFound):
		return "Member not found"
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusConflict:
		return err.Error()
	case http.StatusBadRequest:
		if errors.Is(err, library.ErrInvalidField) {
			return err.Error()
		}
		return SanitizeValidationError(err)
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validation failure into a short message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "gte":
		return "cannot be negative"
	case "person":
		return "only letters and spaces are allowed"
	case "words":
		return "only letters, spaces and hyphens are allowed"
	case "title":
		return "only letters, digits, spaces and .,:- are allowed"
	case "dni":
		return "must be 7 or 8 digits"
	case "phone":
		return "must look like 2284-123456"
	case "digits":
		return "only digits are allowed"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. defaultMsg replaces the
// generic message on 5xx responses when set. A refused member deletion
// lists the held titles in the response details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError && defaultMsg != "" && !errors.Is(err, library.ErrCommitFailed) {
		msg = defaultMsg
	}

	var opts []shared.ResponseOption
	// rejected loan and delete requests are logged at WARN
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	var loansErr *library.OutstandingLoansError
	if errors.As(err, &loansErr) {
		opts = append(opts, shared.WithDetails(loansErr.Titles...))
	}

	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
