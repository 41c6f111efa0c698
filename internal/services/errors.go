package services

import (
	"errors"

	apperrors "github.com/WPCM-2025/consultation-service/internal/errors"
	"github.com/WPCM-2025/consultation-service/internal/lifecycle"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Consultation specific errors
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrConsultationStale    = errors.New("consultation state is stale, please reload")
	ErrSummaryFailed        = errors.New("failed to generate summary")

	// User/department errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmailTaken         = errors.New("email address already in use")
	ErrRecordInUse        = errors.New("record is still referenced and cannot be deleted")

	// Content errors
	ErrArticleNotFound  = errors.New("news article not found")
	ErrDonationRejected = errors.New("donation details are invalid")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR CLASSIFICATION =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConsultationNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDepartmentNotFound) ||
		errors.Is(err, ErrArticleNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsForbidden checks if error represents a permission failure, including the
// lifecycle engine's actor checks.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, lifecycle.ErrNotParticipant) ||
		errors.Is(err, lifecycle.ErrOnlyConsultantEnds) ||
		errors.Is(err, lifecycle.ErrOnlyStudentAttests)
}

// IsValidation checks if error represents rejected input (state unchanged,
// user corrects and resubmits).
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, lifecycle.ErrEmptyMessage) ||
		errors.Is(err, lifecycle.ErrEmptyTestimonial) ||
		errors.Is(err, lifecycle.ErrNoConsultant) ||
		errors.Is(err, lifecycle.ErrNotConsultant) ||
		errors.Is(err, lifecycle.ErrDepartmentMismatch) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsPrecondition checks if error represents an action attempted in the wrong
// lifecycle status. The UI normally prevents these; the engine re-checks
// because UI state can be stale.
func IsPrecondition(err error) bool {
	return errors.Is(err, lifecycle.ErrNotAssignable) ||
		errors.Is(err, lifecycle.ErrNotAwaiting) ||
		errors.Is(err, lifecycle.ErrChatDisabled) ||
		errors.Is(err, lifecycle.ErrNotActive) ||
		errors.Is(err, lifecycle.ErrNotCompleted) ||
		errors.Is(err, lifecycle.ErrTestimonialExists) ||
		errors.Is(err, lifecycle.ErrNotPausable) ||
		errors.Is(err, lifecycle.ErrNotPaused)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrRecordInUse) ||
		errors.Is(err, repositories.ErrReferenced) ||
		IsPrecondition(err)
}

// IsStale checks for the lost-update guard: the caller acted on an outdated
// snapshot and should reload.
func IsStale(err error) bool {
	return errors.Is(err, ErrConsultationStale)
}
