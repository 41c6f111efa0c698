package postgres

import (
	"context"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"gorm.io/gorm"
)

type DepartmentPostgreSQL struct {
	db            *gorm.DB
	consultations repositories.ConsultationRepository
}

func NewDepartmentPostgreSQL(db *gorm.DB, consultations repositories.ConsultationRepository) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{db: db, consultations: consultations}
}

func (r *DepartmentPostgreSQL) Create(ctx context.Context, department *models.Department) error {
	if err := r.db.WithContext(ctx).Create(department).Error; err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *DepartmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentPostgreSQL) Update(ctx context.Context, department *models.Department) error {
	if err := r.db.WithContext(ctx).Save(department).Error; err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	return nil
}

func (r *DepartmentPostgreSQL) Delete(ctx context.Context, id string) error {
	var consultantCount int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("department_id = ?", id).
		Count(&consultantCount).Error
	if err != nil {
		return fmt.Errorf("failed to check department members: %w", err)
	}
	if consultantCount > 0 {
		return repositories.ErrReferenced
	}

	referenced, err := r.consultations.HasForDepartment(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return repositories.ErrReferenced
	}

	result := r.db.WithContext(ctx).Delete(&models.Department{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete department: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DepartmentPostgreSQL) List(ctx context.Context) ([]*models.Department, error) {
	var departments []*models.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}
