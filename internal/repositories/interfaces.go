package repositories

import (
	"errors"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ConsultationFilters struct {
	Status       *models.ConsultationStatus `json:"status"`
	StudentID    *string                    `json:"student_id"`
	ConsultantID *string                    `json:"consultant_id"`
	DepartmentID *string                    `json:"department_id"`
	DateFrom     *time.Time                 `json:"date_from"`
	DateTo       *time.Time                 `json:"date_to"`
	Limit        int                        `json:"limit"`
	Offset       int                        `json:"offset"`
}

type UserFilters struct {
	Role         *models.UserRole `json:"role"`
	DepartmentID *string          `json:"department_id"`
	Active       *bool            `json:"active"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

type DonationFilters struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type NewsFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ===== AGGREGATE =====

// Repository bundles the per-collection repositories the services depend on.
type Repository interface {
	Consultation() ConsultationRepository
	User() UserRepository
	Department() DepartmentRepository
	Donation() DonationRepository
	News() NewsRepository
}

// ===== ERROR HELPERS =====

// ErrReferenced is returned by guarded deletes when other records still point
// at the row.
var ErrReferenced = errors.New("record is referenced by other records")

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
