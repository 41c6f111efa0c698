package repositories

import (
	"context"

	"github.com/WPCM-2025/consultation-service/internal/models"
)

// ConsultationRepository persists consultations and their append-only message
// log. All lifecycle mutations go through Mutate so that concurrent actions on
// the same consultation serialize on the row instead of overwriting each
// other.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *models.Consultation) error

	// GetByID loads the consultation with its messages in insertion order and
	// the student/consultant relations.
	GetByID(ctx context.Context, id string) (*models.Consultation, error)

	// Mutate runs fn against the row under a FOR UPDATE lock in one
	// transaction. fn sees the freshly read state; if it returns an error the
	// transaction rolls back and nothing is written. Messages fn appended to
	// the in-memory log are inserted as new rows; consultation fields are
	// saved as a whole. Returns the state as committed.
	Mutate(ctx context.Context, id string, fn func(c *models.Consultation) error) (*models.Consultation, error)

	List(ctx context.Context, filters ConsultationFilters) ([]*models.Consultation, int64, error)

	// ListTestimonials returns completed consultations that carry a
	// testimonial, newest first.
	ListTestimonials(ctx context.Context, limit, offset int) ([]*models.Consultation, error)

	// HasForUser reports whether any consultation references the user as
	// student or consultant (guard for user deletion).
	HasForUser(ctx context.Context, userID string) (bool, error)

	// HasForDepartment reports whether any consultation references the
	// department (guard for department deletion).
	HasForDepartment(ctx context.Context, departmentID string) (bool, error)
}
