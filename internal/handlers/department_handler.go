package handlers

import (
	"net/http"

	"github.com/WPCM-2025/consultation-service/internal/services"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct {
	BaseHandler
	departmentService services.DepartmentService
	userService       services.UserService
}

func NewDepartmentHandler(
	departmentService services.DepartmentService,
	userService services.UserService,
	logger utils.Logger,
) *DepartmentHandler {
	return &DepartmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		departmentService: departmentService,
		userService:       userService,
	}
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req services.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	department, err := h.departmentService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	department, err := h.departmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	department, err := h.departmentService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Department deleted"})
}

func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departmentService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": departments})
}

// ListConsultants returns the active consultants of a department, used when
// picking an assignee.
func (h *DepartmentHandler) ListConsultants(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	consultants, err := h.userService.GetConsultantsByDepartment(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": consultants})
}
