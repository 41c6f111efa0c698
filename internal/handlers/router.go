package handlers

import (
	"net/http"

	"github.com/WPCM-2025/consultation-service/internal/auth"
	"github.com/WPCM-2025/consultation-service/internal/metrics"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/services"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	consultationHandler *ConsultationHandler
	userHandler         *UserHandler
	departmentHandler   *DepartmentHandler
	contentHandler      *ContentHandler

	users  repositories.UserRepository
	logger utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	users repositories.UserRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		consultationHandler: NewConsultationHandler(serviceManager.Consultation(), serviceManager.Export(), logger),
		userHandler:         NewUserHandler(serviceManager.User(), logger),
		departmentHandler:   NewDepartmentHandler(serviceManager.Department(), serviceManager.User(), logger),
		contentHandler:      NewContentHandler(serviceManager.News(), serviceManager.Donation(), serviceManager.Export(), logger),
		users:               users,
		logger:              logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public site endpoints, no authentication
	public := router.Group("/public")
	{
		public.GET("/news", hm.contentHandler.ListNews)
		public.GET("/news/:id", hm.contentHandler.GetNews)
		public.POST("/donations", hm.contentHandler.CreateDonation)
		public.GET("/testimonials", hm.consultationHandler.ListTestimonials)
	}

	// API v1 routes, authenticated
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.users, hm.logger))
	{
		// Consultation routes
		consultations := v1.Group("/consultations")
		{
			consultations.POST("", hm.consultationHandler.CreateConsultation)
			consultations.GET("", hm.consultationHandler.ListConsultations)
			consultations.GET("/:id", hm.consultationHandler.GetConsultation)
			consultations.POST("/:id/accept", hm.consultationHandler.Accept)
			consultations.POST("/:id/messages", hm.consultationHandler.SendMessage)
			consultations.POST("/:id/complete", hm.consultationHandler.Complete)
			consultations.POST("/:id/testimonial", hm.consultationHandler.SubmitTestimonial)
			consultations.POST("/:id/summary", hm.consultationHandler.Summarize)

			admin := consultations.Group("")
			admin.Use(auth.RequireRoles(models.RoleAdmin))
			{
				admin.POST("/:id/assign", hm.consultationHandler.AssignConsultant)
				admin.PUT("/:id/paused", hm.consultationHandler.SetPaused)
				admin.GET("/export", hm.consultationHandler.ExportConsultations)
			}
		}

		// Profile routes
		v1.GET("/profile", hm.userHandler.GetProfile)
		v1.PUT("/profile", hm.userHandler.UpdateProfile)

		// Department routes: reads for any signed-in user, writes admin-only
		departments := v1.Group("/departments")
		{
			departments.GET("", hm.departmentHandler.ListDepartments)
			departments.GET("/:id", hm.departmentHandler.GetDepartment)
			departments.GET("/:id/consultants", hm.departmentHandler.ListConsultants)

			admin := departments.Group("")
			admin.Use(auth.RequireRoles(models.RoleAdmin))
			{
				admin.POST("", hm.departmentHandler.CreateDepartment)
				admin.PUT("/:id", hm.departmentHandler.UpdateDepartment)
				admin.DELETE("/:id", hm.departmentHandler.DeleteDepartment)
			}
		}

		// User management, admin-only
		users := v1.Group("/users")
		users.Use(auth.RequireRoles(models.RoleAdmin))
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		// News management, admin-only
		news := v1.Group("/news")
		news.Use(auth.RequireRoles(models.RoleAdmin))
		{
			news.POST("", hm.contentHandler.CreateNews)
			news.PUT("/:id", hm.contentHandler.UpdateNews)
			news.DELETE("/:id", hm.contentHandler.DeleteNews)
		}

		// Donation management, admin-only
		donations := v1.Group("/donations")
		donations.Use(auth.RequireRoles(models.RoleAdmin))
		{
			donations.GET("", hm.contentHandler.ListDonations)
			donations.GET("/export", hm.contentHandler.ExportDonations)
		}
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "consultation-service",
	})
}
