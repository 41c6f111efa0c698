package services

import (
	"context"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
)

type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type DepartmentService interface {
	Create(ctx context.Context, req *CreateDepartmentRequest, actor Actor) (*models.Department, error)
	GetByID(ctx context.Context, id string) (*models.Department, error)
	Update(ctx context.Context, id string, req *UpdateDepartmentRequest, actor Actor) (*models.Department, error)
	Delete(ctx context.Context, id string, actor Actor) error
	List(ctx context.Context) ([]*models.Department, error)
}

type departmentService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewDepartmentService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) DepartmentService {
	return &departmentService{repo: repo, logger: logger, validator: validator}
}

func (s *departmentService) Create(ctx context.Context, req *CreateDepartmentRequest, actor Actor) (*models.Department, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	department := &models.Department{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Department().Create(ctx, department); err != nil {
		return nil, err
	}
	s.logger.Info("Department created", "department_id", department.ID, "created_by", actor.ID)
	return department, nil
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.Department().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to load department: %w", err)
	}
	return department, nil
}

func (s *departmentService) Update(ctx context.Context, id string, req *UpdateDepartmentRequest, actor Actor) (*models.Department, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	department, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if err := s.repo.Department().Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// Delete refuses while consultants or consultations still reference the
// department (no cascade, no dangling ids).
func (s *departmentService) Delete(ctx context.Context, id string, actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.repo.Department().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDepartmentNotFound
		}
		return err
	}
	s.logger.Info("Department deleted", "department_id", id, "deleted_by", actor.ID)
	return nil
}

func (s *departmentService) List(ctx context.Context) ([]*models.Department, error) {
	return s.repo.Department().List(ctx)
}
