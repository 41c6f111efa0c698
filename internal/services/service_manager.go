package services

import (
	"github.com/WPCM-2025/consultation-service/internal/ai"
	"github.com/WPCM-2025/consultation-service/internal/cache"
	"github.com/WPCM-2025/consultation-service/internal/events"
	"github.com/WPCM-2025/consultation-service/internal/lifecycle"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
)

// ServiceManager bundles all application services behind one constructor so
// handlers and main wire against a single dependency.
type ServiceManager interface {
	Consultation() ConsultationService
	User() UserService
	Department() DepartmentService
	News() NewsService
	Donation() DonationService
	Export() ExportService
}

type serviceManager struct {
	consultation ConsultationService
	user         UserService
	department   DepartmentService
	news         NewsService
	donation     DonationService
	export       ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	summarizer ai.Summarizer,
	logger utils.Logger,
	validator *utils.Validator,
) ServiceManager {
	engine := lifecycle.NewEngine()
	return &serviceManager{
		consultation: NewConsultationService(repo, engine, publisher, summarizer, logger, validator),
		user:         NewUserService(repo, logger, validator),
		department:   NewDepartmentService(repo, logger, validator),
		news:         NewNewsService(repo, cacheService, logger, validator),
		donation:     NewDonationService(repo, logger, validator),
		export:       NewExportService(repo, logger),
	}
}

func (m *serviceManager) Consultation() ConsultationService { return m.consultation }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Department() DepartmentService     { return m.department }
func (m *serviceManager) News() NewsService                 { return m.news }
func (m *serviceManager) Donation() DonationService         { return m.donation }
func (m *serviceManager) Export() ExportService             { return m.export }
