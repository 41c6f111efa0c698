package handlers

import (
	"net/http"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/services"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	BaseHandler
	consultationService services.ConsultationService
	exportService       services.ExportService
}

func NewConsultationHandler(
	consultationService services.ConsultationService,
	exportService services.ExportService,
	logger utils.Logger,
) *ConsultationHandler {
	return &ConsultationHandler{
		BaseHandler:         NewBaseHandler(logger),
		consultationService: consultationService,
		exportService:       exportService,
	}
}

// CreateConsultation submits a new consultation request for the signed-in student.
func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	var req services.CreateConsultationRequest
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

	consultation, err := h.consultationService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, consultation)
}

// GetConsultation returns the consultation with the chat projected for the viewer.
func (h *ConsultationHandler) GetConsultation(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	detail, err := h.consultationService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListConsultations returns consultations scoped by role: students see their
// own, consultants their assignments, admins everything.
func (h *ConsultationHandler) ListConsultations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	req := services.ListConsultationsRequest{Limit: limit, Offset: offset}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ConsultationStatus(statusStr)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status filter",
				Details: statusStr,
			})
			return
		}
		req.Status = &status
	}

	consultations, total, err := h.consultationService.List(c.Request.Context(), req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: consultations, Total: total})
}

// AssignConsultant sets or replaces the consultant on a pending request.
func (h *ConsultationHandler) AssignConsultant(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.AssignConsultantRequest
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

	h.LogRequest(c, "Assigning consultant", "consultation_id", id, "consultant_id", req.ConsultantID)

	consultation, err := h.consultationService.Assign(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

// Accept records the caller's side of the mutual acceptance.
func (h *ConsultationHandler) Accept(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.AcceptRequest
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

	consultation, err := h.consultationService.Accept(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

// SendMessage appends a chat message to an active consultation.
func (h *ConsultationHandler) SendMessage(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SendMessageRequest
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

	message, err := h.consultationService.SendMessage(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// Complete ends an active consultation (assigned consultant only).
func (h *ConsultationHandler) Complete(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	consultation, err := h.consultationService.Complete(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

// SubmitTestimonial attaches the student's testimonial to a completed consultation.
func (h *ConsultationHandler) SubmitTestimonial(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SubmitTestimonialRequest
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

	consultation, err := h.consultationService.SubmitTestimonial(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

// SetPaused pauses or resumes an active consultation.
func (h *ConsultationHandler) SetPaused(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SetPausedRequest
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

	consultation, err := h.consultationService.SetPaused(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

// Summarize returns an on-demand summary of the chat so far.
func (h *ConsultationHandler) Summarize(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Generating consultation summary", "consultation_id", id)

	summary, err := h.consultationService.Summarize(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ListTestimonials is the public wall of submitted testimonials.
func (h *ConsultationHandler) ListTestimonials(c *gin.Context) {
	limit, offset := ParsePagination(c)
	testimonials, err := h.consultationService.ListTestimonials(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": testimonials})
}

// ExportConsultations streams an XLSX report of all consultations.
func (h *ConsultationHandler) ExportConsultations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportConsultations(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=consultations.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
