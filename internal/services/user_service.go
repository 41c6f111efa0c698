package services

import (
	"context"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
)

// ===== REQUEST STRUCTURES =====

type CreateUserRequest struct {
	FullName     string  `json:"full_name" validate:"required,max=100"`
	Email        string  `json:"email" validate:"required,email"`
	Role         string  `json:"role" validate:"required,user_role"`
	DepartmentID *string `json:"department_id"`
	AvatarURL    *string `json:"avatar_url" validate:"omitempty,url"`
}

type UpdateUserRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,max=100"`
	Role         *string `json:"role" validate:"omitempty,user_role"`
	DepartmentID *string `json:"department_id"`
	AvatarURL    *string `json:"avatar_url" validate:"omitempty,url"`
	Active       *bool   `json:"active"`
}

// UpdateProfileRequest is the self-service subset; role and active status stay
// admin-only.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type ListUsersRequest struct {
	Role   *models.UserRole
	Limit  int
	Offset int
}

// ===== SERVICE INTERFACE =====

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, actor Actor) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest, actor Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest, actor Actor) (*models.User, error)
	Delete(ctx context.Context, id string, actor Actor) error
	List(ctx context.Context, req ListUsersRequest, actor Actor) ([]*models.User, int64, error)
	GetConsultantsByDepartment(ctx context.Context, departmentID string) ([]*models.User, error)
}

type userService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewUserService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) UserService {
	return &userService{repo: repo, logger: logger, validator: validator}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor Actor) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	role := models.UserRole(req.Role)
	departmentID, err := s.resolveDepartment(ctx, role, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         role,
		DepartmentID: departmentID,
		AvatarURL:    req.AvatarURL,
		Active:       true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "created_by", actor.ID)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, req *UpdateUserRequest, actor Actor) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.DepartmentID != nil || req.Role != nil {
		deptID := req.DepartmentID
		if deptID == nil {
			deptID = user.DepartmentID
		}
		user.DepartmentID, err = s.resolveDepartment(ctx, user.Role, deptID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User updated", "user_id", user.ID, "updated_by", actor.ID)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest, actor Actor) (*models.User, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string, actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info("User deleted", "user_id", id, "deleted_by", actor.ID)
	return nil
}

func (s *userService) List(ctx context.Context, req ListUsersRequest, actor Actor) ([]*models.User, int64, error) {
	if actor.Role != models.RoleAdmin {
		return nil, 0, ErrForbidden
	}
	return s.repo.User().List(ctx, repositories.UserFilters{
		Role:   req.Role,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

func (s *userService) GetConsultantsByDepartment(ctx context.Context, departmentID string) ([]*models.User, error) {
	return s.repo.User().GetConsultantsByDepartment(ctx, departmentID)
}

// resolveDepartment enforces the role/department invariant: consultants must
// reference an existing department, other roles carry none.
func (s *userService) resolveDepartment(ctx context.Context, role models.UserRole, departmentID *string) (*string, error) {
	if role != models.RoleConsultant {
		return nil, nil
	}
	if departmentID == nil || *departmentID == "" {
		return nil, ValidationErrors{*NewValidationError("department_id", "is required for consultants", departmentID)}
	}
	if _, err := s.repo.Department().GetByID(ctx, *departmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return departmentID, nil
}
