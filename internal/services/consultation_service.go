package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/ai"
	"github.com/WPCM-2025/consultation-service/internal/events"
	"github.com/WPCM-2025/consultation-service/internal/lifecycle"
	"github.com/WPCM-2025/consultation-service/internal/metrics"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"gorm.io/datatypes"
)

// Actor is the resolved identity a request acts as.
type Actor struct {
	ID   string
	Role models.UserRole
}

// ===== REQUEST / RESPONSE STRUCTURES =====

type CreateConsultationRequest struct {
	DepartmentID       string `json:"department_id" validate:"required"`
	ProblemDescription string `json:"problem_description" validate:"required"`
	PreferredTime      string `json:"preferred_time" validate:"max=100"`

	// Submitter's profile, captured as a snapshot on the request
	FullName         string   `json:"full_name" validate:"required,max=100"`
	Email            string   `json:"email" validate:"required,email"`
	PhoneNumber      string   `json:"phone_number" validate:"required,max=20"`
	TelegramUsername *string  `json:"telegram_username" validate:"omitempty,max=100"`
	MotherChurch     string   `json:"mother_church" validate:"required,max=200"`
	EntryYear        string   `json:"entry_year" validate:"max=10"`
	SchoolLevel      string   `json:"school_level" validate:"required,school_level"`
	GraduationYear   string   `json:"graduation_year" validate:"max=10"`
	StudentStatus1   string   `json:"student_status_1" validate:"required,oneof='Regular' 'Irregular (Private)'"`
	StudentStatus2   string   `json:"student_status_2" validate:"required,oneof='Degree Program' 'MS Program'"`
	StudentStatus3   string   `json:"student_status_3" validate:"required,oneof='Current WPCM' 'Alumni WPCM'"`
	Talents          []string `json:"talents"`
	SpecialCare      []string `json:"special_care"`
	PhotoURL         *string  `json:"photo_url" validate:"omitempty,url"`
	Comments         *string  `json:"comments"`
}

type AssignConsultantRequest struct {
	ConsultantID string `json:"consultant_id" validate:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`

	// Optional optimistic-concurrency guard: reject with a stale error when
	// the consultation status moved on since the client last loaded it.
	ExpectedStatus *models.ConsultationStatus `json:"expected_status" validate:"omitempty,consultation_status"`
}

type AcceptRequest struct {
	ExpectedStatus *models.ConsultationStatus `json:"expected_status" validate:"omitempty,consultation_status"`
}

type SubmitTestimonialRequest struct {
	Text string `json:"text" validate:"required"`
}

type SetPausedRequest struct {
	Paused bool `json:"paused"`
}

// ConsultationDetail is the full view a party sees: the document, the chat
// projected for the viewer, and the placeholder notice for non-open statuses.
type ConsultationDetail struct {
	Consultation *models.Consultation  `json:"consultation"`
	Chat         []lifecycle.ChatEntry `json:"chat"`
	ChatNotice   string                `json:"chat_notice,omitempty"`
}

type TestimonialView struct {
	Name      string  `json:"name"`
	Quote     string  `json:"quote"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ListConsultationsRequest struct {
	Status *models.ConsultationStatus
	Limit  int
	Offset int
}

// ===== SERVICE INTERFACE =====

type ConsultationService interface {
	Create(ctx context.Context, req *CreateConsultationRequest, actor Actor) (*models.Consultation, error)
	GetByID(ctx context.Context, id string, actor Actor) (*ConsultationDetail, error)
	List(ctx context.Context, req ListConsultationsRequest, actor Actor) ([]*models.Consultation, int64, error)

	Assign(ctx context.Context, id string, req *AssignConsultantRequest, actor Actor) (*models.Consultation, error)
	Accept(ctx context.Context, id string, req *AcceptRequest, actor Actor) (*models.Consultation, error)
	SendMessage(ctx context.Context, id string, req *SendMessageRequest, actor Actor) (*models.Message, error)
	Complete(ctx context.Context, id string, actor Actor) (*models.Consultation, error)
	SubmitTestimonial(ctx context.Context, id string, req *SubmitTestimonialRequest, actor Actor) (*models.Consultation, error)
	SetPaused(ctx context.Context, id string, req *SetPausedRequest, actor Actor) (*models.Consultation, error)

	Summarize(ctx context.Context, id string, actor Actor) (string, error)
	ListTestimonials(ctx context.Context, limit, offset int) ([]TestimonialView, error)
}

type consultationService struct {
	repo       repositories.Repository
	engine     *lifecycle.Engine
	publisher  events.EventPublisher
	summarizer ai.Summarizer
	logger     utils.Logger
	validator  *utils.Validator
}

func NewConsultationService(
	repo repositories.Repository,
	engine *lifecycle.Engine,
	publisher events.EventPublisher,
	summarizer ai.Summarizer,
	logger utils.Logger,
	validator *utils.Validator,
) ConsultationService {
	return &consultationService{
		repo:       repo,
		engine:     engine,
		publisher:  publisher,
		summarizer: summarizer,
		logger:     logger,
		validator:  validator,
	}
}

// ===== OPERATIONS =====

func (s *consultationService) Create(ctx context.Context, req *CreateConsultationRequest, actor Actor) (*models.Consultation, error) {
	s.logger.Info("Creating consultation request", "student_id", actor.ID, "department_id", req.DepartmentID)

	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	department, err := s.repo.Department().GetByID(ctx, req.DepartmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to load department: %w", err)
	}

	talents, err := toJSON(req.Talents)
	if err != nil {
		return nil, err
	}
	specialCare, err := toJSON(req.SpecialCare)
	if err != nil {
		return nil, err
	}

	consultation := &models.Consultation{
		StudentID:          actor.ID,
		DepartmentID:       department.ID,
		Status:             models.StatusPending,
		ProblemDescription: req.ProblemDescription,
		PreferredTime:      req.PreferredTime,

		FullName:         req.FullName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		TelegramUsername: req.TelegramUsername,
		MotherChurch:     req.MotherChurch,
		EntryYear:        req.EntryYear,
		DepartmentName:   department.Name,
		SchoolLevel:      models.SchoolLevel(req.SchoolLevel),
		GraduationYear:   req.GraduationYear,
		StudentStatus1:   req.StudentStatus1,
		StudentStatus2:   req.StudentStatus2,
		StudentStatus3:   req.StudentStatus3,
		Talents:          talents,
		SpecialCare:      specialCare,
		PhotoURL:         req.PhotoURL,
		Comments:         req.Comments,
	}

	if err := s.repo.Consultation().Create(ctx, consultation); err != nil {
		return nil, err
	}

	metrics.ObserveTransition("create")
	s.publish(ctx, events.NewConsultationEvent(events.EventConsultationRequested, consultation, actor.ID))
	s.logger.Info("Consultation created", "consultation_id", consultation.ID)
	return consultation, nil
}

func (s *consultationService) GetByID(ctx context.Context, id string, actor Actor) (*ConsultationDetail, error) {
	consultation, err := s.getConsultation(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && !consultation.IsParty(actor.ID) {
		return nil, ErrForbidden
	}

	return &ConsultationDetail{
		Consultation: consultation,
		Chat:         lifecycle.RenderChat(consultation, actor.ID),
		ChatNotice:   lifecycle.ChatNotice(consultation),
	}, nil
}

// List is role-scoped: students see their own requests, consultants their
// assignments, admins everything.
func (s *consultationService) List(ctx context.Context, req ListConsultationsRequest, actor Actor) ([]*models.Consultation, int64, error) {
	filters := repositories.ConsultationFilters{
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleConsultant:
		filters.ConsultantID = &actor.ID
	default:
		filters.StudentID = &actor.ID
	}
	return s.repo.Consultation().List(ctx, filters)
}

func (s *consultationService) Assign(ctx context.Context, id string, req *AssignConsultantRequest, actor Actor) (*models.Consultation, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	consultant, err := s.repo.User().GetByID(ctx, req.ConsultantID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load consultant: %w", err)
	}

	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		return s.engine.Assign(c, consultant)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition("assign")
	s.publish(ctx, events.NewConsultationEvent(events.EventConsultationAssigned, consultation, actor.ID))
	s.logger.Info("Consultant assigned", "consultation_id", id, "consultant_id", consultant.ID)
	return consultation, nil
}

func (s *consultationService) Accept(ctx context.Context, id string, req *AcceptRequest, actor Actor) (*models.Consultation, error) {
	var activated bool
	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		if err := checkExpected(c, req.ExpectedStatus); err != nil {
			return err
		}
		var err error
		activated, err = s.engine.Accept(c, actor.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition("accept")
	s.publish(ctx, events.NewConsultationEvent(events.EventConsultationAccepted, consultation, actor.ID))
	if activated {
		metrics.ObserveTransition("activate")
		s.publish(ctx, events.NewConsultationEvent(events.EventConsultationActivated, consultation, actor.ID))
		s.logger.Info("Consultation activated", "consultation_id", id)
	}
	return consultation, nil
}

func (s *consultationService) SendMessage(ctx context.Context, id string, req *SendMessageRequest, actor Actor) (*models.Message, error) {
	var message *models.Message
	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		if err := checkExpected(c, req.ExpectedStatus); err != nil {
			return err
		}
		var err error
		message, err = s.engine.AppendMessage(c, actor.ID, req.Text)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesAppended.Inc()
	s.publish(ctx, events.NewMessageSentEvent(consultation, actor.ID, message.ID))
	return message, nil
}

func (s *consultationService) Complete(ctx context.Context, id string, actor Actor) (*models.Consultation, error) {
	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		return s.engine.Complete(c, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition("complete")
	s.publish(ctx, events.NewConsultationEvent(events.EventConsultationCompleted, consultation, actor.ID))
	s.logger.Info("Consultation completed", "consultation_id", id, "consultant_id", actor.ID)
	return consultation, nil
}

func (s *consultationService) SubmitTestimonial(ctx context.Context, id string, req *SubmitTestimonialRequest, actor Actor) (*models.Consultation, error) {
	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		return s.engine.SubmitTestimonial(c, actor.ID, req.Text)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition("testimonial")
	s.publish(ctx, events.NewConsultationEvent(events.EventTestimonialSubmitted, consultation, actor.ID))
	return consultation, nil
}

func (s *consultationService) SetPaused(ctx context.Context, id string, req *SetPausedRequest, actor Actor) (*models.Consultation, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	consultation, err := s.mutate(ctx, id, func(c *models.Consultation) error {
		if req.Paused {
			return s.engine.Pause(c)
		}
		return s.engine.Resume(c)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition("pause_toggle")
	s.logger.Info("Consultation pause toggled", "consultation_id", id, "paused", req.Paused)
	return consultation, nil
}

// Summarize flattens the chat and asks the external collaborator for a
// summary. A failed call surfaces ErrSummaryFailed and leaves the
// consultation untouched; the conversation continues unaffected.
func (s *consultationService) Summarize(ctx context.Context, id string, actor Actor) (string, error) {
	consultation, err := s.getConsultation(ctx, id)
	if err != nil {
		return "", err
	}
	isAssignedConsultant := consultation.ConsultantID != nil && *consultation.ConsultantID == actor.ID
	if actor.Role != models.RoleAdmin && !isAssignedConsultant {
		return "", ErrForbidden
	}

	summary, err := s.summarizer.Summarize(ctx, lifecycle.Transcript(consultation))
	if err != nil {
		metrics.SummaryFailures.Inc()
		s.logger.LogError(err, "summarization failed", "consultation_id", id)
		return "", ErrSummaryFailed
	}
	return summary, nil
}

func (s *consultationService) ListTestimonials(ctx context.Context, limit, offset int) ([]TestimonialView, error) {
	consultations, err := s.repo.Consultation().ListTestimonials(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]TestimonialView, 0, len(consultations))
	for _, c := range consultations {
		if c.Testimonial == nil {
			continue
		}
		views = append(views, TestimonialView{
			Name:      c.FullName,
			Quote:     *c.Testimonial,
			AvatarURL: c.PhotoURL,
		})
	}
	return views, nil
}

// ===== HELPERS =====

func (s *consultationService) getConsultation(ctx context.Context, id string) (*models.Consultation, error) {
	consultation, err := s.repo.Consultation().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConsultationNotFound
		}
		return nil, fmt.Errorf("failed to load consultation: %w", err)
	}
	return consultation, nil
}

func (s *consultationService) mutate(ctx context.Context, id string, fn func(c *models.Consultation) error) (*models.Consultation, error) {
	consultation, err := s.repo.Consultation().Mutate(ctx, id, fn)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return consultation, nil
}

func (s *consultationService) publish(ctx context.Context, event *events.ConsultationEvent) {
	// Event delivery is best effort; a broker outage must not fail the action.
	if err := s.publisher.PublishConsultationEvent(ctx, event); err != nil {
		s.logger.LogError(err, "failed to publish consultation event", "event_type", event.Type)
	}
}

func checkExpected(c *models.Consultation, expected *models.ConsultationStatus) error {
	if expected != nil && c.Status != *expected {
		return ErrConsultationStale
	}
	return nil
}

func toJSON(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
