package handlers

import (
	"net/http"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/services"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ContentHandler serves the public-site content: news and donations.
type ContentHandler struct {
	BaseHandler
	newsService     services.NewsService
	donationService services.DonationService
	exportService   services.ExportService
}

func NewContentHandler(
	newsService services.NewsService,
	donationService services.DonationService,
	exportService services.ExportService,
	logger utils.Logger,
) *ContentHandler {
	return &ContentHandler{
		BaseHandler:     NewBaseHandler(logger),
		newsService:     newsService,
		donationService: donationService,
		exportService:   exportService,
	}
}

// ===== NEWS =====

func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req services.CreateNewsRequest
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

	article, err := h.newsService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

func (h *ContentHandler) GetNews(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	article, err := h.newsService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *ContentHandler) UpdateNews(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateNewsRequest
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

	article, err := h.newsService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *ContentHandler) DeleteNews(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.newsService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "News article deleted"})
}

// ListNews is public, no authentication required.
func (h *ContentHandler) ListNews(c *gin.Context) {
	limit, offset := ParsePagination(c)
	articles, total, err := h.newsService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: articles, Total: total})
}

// ===== DONATIONS =====

// CreateDonation is public: donors submit transfer details without an account.
func (h *ContentHandler) CreateDonation(c *gin.Context) {
	var req services.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	donation, err := h.donationService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, donation)
}

func (h *ContentHandler) ListDonations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	req := services.ListDonationsRequest{Limit: limit, Offset: offset}
	if fromStr := c.Query("date_from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_from, expected RFC3339",
				Details: fromStr,
			})
			return
		}
		req.DateFrom = &from
	}
	if toStr := c.Query("date_to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_to, expected RFC3339",
				Details: toStr,
			})
			return
		}
		req.DateTo = &to
	}

	donations, total, err := h.donationService.List(c.Request.Context(), req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: donations, Total: total})
}

// ExportDonations streams an XLSX report of all donations.
func (h *ContentHandler) ExportDonations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportDonations(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=donations.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
