package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsultationPostgreSQL struct {
	db *gorm.DB
}

func NewConsultationPostgreSQL(db *gorm.DB) repositories.ConsultationRepository {
	return &ConsultationPostgreSQL{db: db}
}

func (r *ConsultationPostgreSQL) Create(ctx context.Context, consultation *models.Consultation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(consultation).Error; err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *ConsultationPostgreSQL) GetByID(ctx context.Context, id string) (*models.Consultation, error) {
	var consultation models.Consultation
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Consultant").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&consultation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &consultation, nil
}

// Mutate serializes lifecycle transitions on the consultation row. Two
// near-simultaneous accepts each re-read the flags under the lock, so the
// second one always sees the first one's write and the "both accepted" promotion
// cannot be lost.
func (r *ConsultationPostgreSQL) Mutate(ctx context.Context, id string, fn func(c *models.Consultation) error) (*models.Consultation, error) {
	var result *models.Consultation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var consultation models.Consultation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&consultation, "id = ?", id).Error; err != nil {
			return err
		}
		// The consultant relation is loaded without the lock; only the
		// consultation row itself is contended.
		if consultation.ConsultantID != nil {
			var consultant models.User
			switch err := tx.First(&consultant, "id = ?", *consultation.ConsultantID).Error; {
			case err == nil:
				consultation.Consultant = &consultant
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if err := fn(&consultation); err != nil {
			return err
		}

		// Messages the transition appended are the ones without a sequence yet.
		for i := range consultation.Messages {
			if consultation.Messages[i].Seq == 0 {
				if err := tx.Create(&consultation.Messages[i]).Error; err != nil {
					return fmt.Errorf("failed to append message: %w", err)
				}
			}
		}

		if err := tx.Omit(clause.Associations).Save(&consultation).Error; err != nil {
			return fmt.Errorf("failed to save consultation: %w", err)
		}

		result = &consultation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ConsultationPostgreSQL) List(ctx context.Context, filters repositories.ConsultationFilters) ([]*models.Consultation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Consultation{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.ConsultantID != nil {
		query = query.Where("consultant_id = ?", *filters.ConsultantID)
	}
	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count consultations: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var consultations []*models.Consultation
	err := query.
		Preload("Student").
		Preload("Consultant").
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, total, nil
}

func (r *ConsultationPostgreSQL) ListTestimonials(ctx context.Context, limit, offset int) ([]*models.Consultation, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", models.StatusCompleted).
		Where("testimonial IS NOT NULL").
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var consultations []*models.Consultation
	if err := query.Find(&consultations).Error; err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return consultations, nil
}

func (r *ConsultationPostgreSQL) HasForUser(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("student_id = ? OR consultant_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check consultations for user: %w", err)
	}
	return count > 0, nil
}

func (r *ConsultationPostgreSQL) HasForDepartment(ctx context.Context, departmentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check consultations for department: %w", err)
	}
	return count > 0, nil
}
