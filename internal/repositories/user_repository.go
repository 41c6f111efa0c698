package repositories

import (
	"context"

	"github.com/WPCM-2025/consultation-service/internal/models"
)

// UserRepository owns profile records; authentication itself is delegated to
// the identity provider.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// GetConsultantsByDepartment lists active consultants eligible for
	// assignment within a department.
	GetConsultantsByDepartment(ctx context.Context, departmentID string) ([]*models.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id string) (*models.Department, error)
	Update(ctx context.Context, department *models.Department) error

	// Delete fails with ErrReferenced while consultants or consultations still
	// point at the department.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context) ([]*models.Department, error)
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	List(ctx context.Context, filters DonationFilters) ([]*models.Donation, int64, error)
}

type NewsRepository interface {
	Create(ctx context.Context, article *models.NewsArticle) error
	GetByID(ctx context.Context, id string) (*models.NewsArticle, error)
	Update(ctx context.Context, article *models.NewsArticle) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters NewsFilters) ([]*models.NewsArticle, int64, error)
}
