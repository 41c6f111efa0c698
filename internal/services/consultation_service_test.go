package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/WPCM-2025/consultation-service/internal/events"
	"github.com/WPCM-2025/consultation-service/internal/lifecycle"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ===== MOCKS =====

// stubConsultationRepo keeps consultations in memory and runs Mutate callbacks
// under a lock, the same serialization the row lock gives in production.
type stubConsultationRepo struct {
	mu            sync.Mutex
	consultations map[string]*models.Consultation
	nextSeq       uint64
}

func newStubConsultationRepo() *stubConsultationRepo {
	return &stubConsultationRepo{consultations: make(map[string]*models.Consultation)}
}

func (r *stubConsultationRepo) Create(ctx context.Context, c *models.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = "consultation-1"
	}
	r.consultations[c.ID] = c
	return nil
}

func (r *stubConsultationRepo) GetByID(ctx context.Context, id string) (*models.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubConsultationRepo) Mutate(ctx context.Context, id string, fn func(c *models.Consultation) error) (*models.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	for i := range c.Messages {
		if c.Messages[i].Seq == 0 {
			r.nextSeq++
			c.Messages[i].Seq = r.nextSeq
		}
	}
	return c, nil
}

func (r *stubConsultationRepo) List(ctx context.Context, filters repositories.ConsultationFilters) ([]*models.Consultation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Consultation
	for _, c := range r.consultations {
		if filters.StudentID != nil && c.StudentID != *filters.StudentID {
			continue
		}
		if filters.ConsultantID != nil && (c.ConsultantID == nil || *c.ConsultantID != *filters.ConsultantID) {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *stubConsultationRepo) ListTestimonials(ctx context.Context, limit, offset int) ([]*models.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Consultation
	for _, c := range r.consultations {
		if c.Status == models.StatusCompleted && c.Testimonial != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubConsultationRepo) HasForUser(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

func (r *stubConsultationRepo) HasForDepartment(ctx context.Context, departmentID string) (bool, error) {
	return false, nil
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetConsultantsByDepartment(ctx context.Context, departmentID string) ([]*models.User, error) {
	args := m.Called(ctx, departmentID)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockDepartmentRepository struct {
	mock.Mock
}

func (m *MockDepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	args := m.Called(ctx, department)
	return args.Error(0)
}

func (m *MockDepartmentRepository) GetByID(ctx context.Context, id string) (*models.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Department), args.Error(1)
}

func (m *MockDepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	args := m.Called(ctx, department)
	return args.Error(0)
}

func (m *MockDepartmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Department), args.Error(1)
}

// stubRepository bundles the per-collection doubles behind the aggregate
// interface the service consumes.
type stubRepository struct {
	consultations *stubConsultationRepo
	users         *MockUserRepository
	departments   *MockDepartmentRepository
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		consultations: newStubConsultationRepo(),
		users:         new(MockUserRepository),
		departments:   new(MockDepartmentRepository),
	}
}

func (r *stubRepository) Consultation() repositories.ConsultationRepository { return r.consultations }
func (r *stubRepository) User() repositories.UserRepository                 { return r.users }
func (r *stubRepository) Department() repositories.DepartmentRepository    { return r.departments }
func (r *stubRepository) Donation() repositories.DonationRepository        { return nil }
func (r *stubRepository) News() repositories.NewsRepository                { return nil }

type stubSummarizer struct {
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	return s.summary, s.err
}

// ===== FIXTURES =====

const (
	testStudentID    = "student-1"
	testConsultantID = "consultant-1"
	testAdminID      = "admin-1"
	testDepartmentID = "dept-1"
)

var (
	studentActor    = Actor{ID: testStudentID, Role: models.RoleStudent}
	consultantActor = Actor{ID: testConsultantID, Role: models.RoleConsultant}
	adminActor      = Actor{ID: testAdminID, Role: models.RoleAdmin}
)

func newTestService(repo *stubRepository, publisher events.EventPublisher, summarizer *stubSummarizer) ConsultationService {
	if summarizer == nil {
		summarizer = &stubSummarizer{summary: "fine"}
	}
	return NewConsultationService(
		repo,
		lifecycle.NewEngine(),
		publisher,
		summarizer,
		utils.NewDevelopmentLogger(),
		utils.NewValidator(),
	)
}

func validCreateRequest() *CreateConsultationRequest {
	return &CreateConsultationRequest{
		DepartmentID:       testDepartmentID,
		ProblemDescription: "I am struggling to balance studies and faith",
		FullName:           "Abel Tesfaye",
		Email:              "abel@example.com",
		PhoneNumber:        "+251911000000",
		MotherChurch:       "Addis Ababa Church",
		SchoolLevel:        string(models.LevelThirdYear),
		StudentStatus1:     models.EnrollmentRegular,
		StudentStatus2:     models.ProgramDegree,
		StudentStatus3:     models.MembershipCurrent,
	}
}

func testConsultant() *models.User {
	departmentID := testDepartmentID
	return &models.User{
		ID:           testConsultantID,
		FullName:     "Sara Bekele",
		Email:        "sara@example.com",
		Role:         models.RoleConsultant,
		DepartmentID: &departmentID,
		Active:       true,
	}
}

func seedConsultation(repo *stubRepository, status models.ConsultationStatus) *models.Consultation {
	consultantID := testConsultantID
	c := &models.Consultation{
		ID:                 "consultation-1",
		StudentID:          testStudentID,
		DepartmentID:       testDepartmentID,
		Status:             status,
		ProblemDescription: "problem",
		FullName:           "Abel Tesfaye",
		Consultant:         testConsultant(),
	}
	if status != models.StatusPending {
		c.ConsultantID = &consultantID
	}
	if status == models.StatusActive || status == models.StatusPaused || status == models.StatusCompleted {
		c.StudentAccepted = true
		c.ConsultantAccepted = true
	}
	repo.consultations.consultations[c.ID] = c
	return c
}

// ===== TESTS =====

func TestConsultationServiceCreate(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)

	repo.departments.On("GetByID", mock.Anything, testDepartmentID).
		Return(&models.Department{ID: testDepartmentID, Name: "Counseling"}, nil)

	consultation, err := service.Create(context.Background(), validCreateRequest(), studentActor)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, consultation.Status)
	assert.Equal(t, testStudentID, consultation.StudentID)
	assert.Equal(t, "Counseling", consultation.DepartmentName)
	assert.Nil(t, consultation.ConsultantID)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventConsultationRequested, published[0].Type)
}

func TestConsultationServiceCreateValidation(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(repo, events.NewMockEventPublisher(), nil)

	req := validCreateRequest()
	req.ProblemDescription = ""
	req.SchoolLevel = "Kindergarten"

	_, err := service.Create(context.Background(), req, studentActor)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestConsultationServiceAssign(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)
	seedConsultation(repo, models.StatusPending)

	repo.users.On("GetByID", mock.Anything, testConsultantID).Return(testConsultant(), nil)

	t.Run("only admins assign", func(t *testing.T) {
		_, err := service.Assign(context.Background(), "consultation-1",
			&AssignConsultantRequest{ConsultantID: testConsultantID}, consultantActor)
		assert.True(t, IsForbidden(err))
	})

	t.Run("admin assigns consultant", func(t *testing.T) {
		consultation, err := service.Assign(context.Background(), "consultation-1",
			&AssignConsultantRequest{ConsultantID: testConsultantID}, adminActor)
		require.NoError(t, err)

		assert.Equal(t, models.StatusAwaitingAcceptance, consultation.Status)
		require.NotNil(t, consultation.ConsultantID)
		assert.Equal(t, testConsultantID, *consultation.ConsultantID)
		assert.False(t, consultation.StudentAccepted)
		assert.False(t, consultation.ConsultantAccepted)
	})

	t.Run("department mismatch is rejected", func(t *testing.T) {
		otherDept := "dept-2"
		outsider := testConsultant()
		outsider.ID = "consultant-2"
		outsider.DepartmentID = &otherDept
		repo.users.On("GetByID", mock.Anything, "consultant-2").Return(outsider, nil)

		_, err := service.Assign(context.Background(), "consultation-1",
			&AssignConsultantRequest{ConsultantID: "consultant-2"}, adminActor)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lifecycle.ErrDepartmentMismatch))
	})
}

func TestConsultationServiceAccept(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)
	seedConsultation(repo, models.StatusAwaitingAcceptance)

	_, err := service.Accept(context.Background(), "consultation-1", &AcceptRequest{}, studentActor)
	require.NoError(t, err)

	consultation, err := service.Accept(context.Background(), "consultation-1", &AcceptRequest{}, consultantActor)
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, consultation.Status)
	assert.True(t, consultation.StudentAccepted)
	assert.True(t, consultation.ConsultantAccepted)

	var activations int
	for _, e := range publisher.GetPublishedEvents() {
		if e.Type == events.EventConsultationActivated {
			activations++
		}
	}
	assert.Equal(t, 1, activations, "activation should be published exactly once")
}

// Two parties accepting at the same time must both be recorded; neither write
// may clobber the other's flag.
func TestConsultationServiceAcceptConcurrent(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(repo, events.NewMockEventPublisher(), nil)
	seedConsultation(repo, models.StatusAwaitingAcceptance)

	var wg sync.WaitGroup
	for _, actor := range []Actor{studentActor, consultantActor} {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			_, err := service.Accept(context.Background(), "consultation-1", &AcceptRequest{}, a)
			assert.NoError(t, err)
		}(actor)
	}
	wg.Wait()

	consultation, err := repo.consultations.GetByID(context.Background(), "consultation-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, consultation.Status)
	assert.True(t, consultation.StudentAccepted)
	assert.True(t, consultation.ConsultantAccepted)
}

func TestConsultationServiceAcceptStale(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(repo, events.NewMockEventPublisher(), nil)
	seedConsultation(repo, models.StatusActive)

	expected := models.StatusAwaitingAcceptance
	_, err := service.Accept(context.Background(), "consultation-1",
		&AcceptRequest{ExpectedStatus: &expected}, studentActor)
	require.Error(t, err)
	assert.True(t, IsStale(err))
}

func TestConsultationServiceSendMessage(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)
	seedConsultation(repo, models.StatusActive)

	message, err := service.SendMessage(context.Background(), "consultation-1",
		&SendMessageRequest{Text: "hello"}, studentActor)
	require.NoError(t, err)
	assert.Equal(t, "hello", message.Text)
	assert.Equal(t, testStudentID, message.SenderID)

	consultation, _ := repo.consultations.GetByID(context.Background(), "consultation-1")
	require.Len(t, consultation.Messages, 1)
	assert.NotNil(t, consultation.LastMessageAt)

	t.Run("chat is closed outside ACTIVE", func(t *testing.T) {
		repo2 := newStubRepository()
		service2 := newTestService(repo2, events.NewMockEventPublisher(), nil)
		seedConsultation(repo2, models.StatusPaused)

		_, err := service2.SendMessage(context.Background(), "consultation-1",
			&SendMessageRequest{Text: "hello"}, studentActor)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lifecycle.ErrChatDisabled))
	})

	t.Run("stale status guard", func(t *testing.T) {
		expected := models.StatusPaused
		_, err := service.SendMessage(context.Background(), "consultation-1",
			&SendMessageRequest{Text: "hello", ExpectedStatus: &expected}, studentActor)
		require.Error(t, err)
		assert.True(t, IsStale(err))
	})
}

func TestConsultationServiceComplete(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)
	seedConsultation(repo, models.StatusActive)

	t.Run("student cannot end", func(t *testing.T) {
		_, err := service.Complete(context.Background(), "consultation-1", studentActor)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("consultant ends", func(t *testing.T) {
		consultation, err := service.Complete(context.Background(), "consultation-1", consultantActor)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, consultation.Status)
	})
}

func TestConsultationServiceSummarize(t *testing.T) {
	t.Run("assigned consultant gets summary", func(t *testing.T) {
		repo := newStubRepository()
		service := newTestService(repo, events.NewMockEventPublisher(), &stubSummarizer{summary: "they talked"})
		seedConsultation(repo, models.StatusActive)

		summary, err := service.Summarize(context.Background(), "consultation-1", consultantActor)
		require.NoError(t, err)
		assert.Equal(t, "they talked", summary)
	})

	t.Run("student is not allowed", func(t *testing.T) {
		repo := newStubRepository()
		service := newTestService(repo, events.NewMockEventPublisher(), &stubSummarizer{summary: "x"})
		seedConsultation(repo, models.StatusActive)

		_, err := service.Summarize(context.Background(), "consultation-1", studentActor)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("collaborator failure does not break the consultation", func(t *testing.T) {
		repo := newStubRepository()
		service := newTestService(repo, events.NewMockEventPublisher(), &stubSummarizer{err: errors.New("timeout")})
		c := seedConsultation(repo, models.StatusActive)

		_, err := service.Summarize(context.Background(), "consultation-1", consultantActor)
		require.ErrorIs(t, err, ErrSummaryFailed)
		assert.Equal(t, models.StatusActive, c.Status)
	})
}

func TestConsultationServiceListScoping(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(repo, events.NewMockEventPublisher(), nil)
	seedConsultation(repo, models.StatusActive)

	other := &models.Consultation{
		ID:        "consultation-2",
		StudentID: "student-2",
		Status:    models.StatusPending,
	}
	repo.consultations.consultations[other.ID] = other

	own, total, err := service.List(context.Background(), ListConsultationsRequest{}, studentActor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, "consultation-1", own[0].ID)

	all, total, err := service.List(context.Background(), ListConsultationsRequest{}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestConsultationServiceTestimonials(t *testing.T) {
	repo := newStubRepository()
	publisher := events.NewMockEventPublisher()
	service := newTestService(repo, publisher, nil)
	seedConsultation(repo, models.StatusCompleted)

	t.Run("only the student attests", func(t *testing.T) {
		_, err := service.SubmitTestimonial(context.Background(), "consultation-1",
			&SubmitTestimonialRequest{Text: "blessed"}, consultantActor)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("first submission wins", func(t *testing.T) {
		_, err := service.SubmitTestimonial(context.Background(), "consultation-1",
			&SubmitTestimonialRequest{Text: "it helped a lot"}, studentActor)
		require.NoError(t, err)

		_, err = service.SubmitTestimonial(context.Background(), "consultation-1",
			&SubmitTestimonialRequest{Text: "changed my mind"}, studentActor)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("public wall shows submitted quotes", func(t *testing.T) {
		views, err := service.ListTestimonials(context.Background(), 10, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "it helped a lot", views[0].Quote)
		assert.Equal(t, "Abel Tesfaye", views[0].Name)
	})
}

func TestConsultationServiceGetByIDAccess(t *testing.T) {
	repo := newStubRepository()
	service := newTestService(repo, events.NewMockEventPublisher(), nil)
	seedConsultation(repo, models.StatusActive)

	t.Run("party sees detail with chat", func(t *testing.T) {
		detail, err := service.GetByID(context.Background(), "consultation-1", studentActor)
		require.NoError(t, err)
		assert.Equal(t, "consultation-1", detail.Consultation.ID)
		assert.Empty(t, detail.ChatNotice)
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		outsider := Actor{ID: "student-2", Role: models.RoleStudent}
		_, err := service.GetByID(context.Background(), "consultation-1", outsider)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := service.GetByID(context.Background(), "missing", adminActor)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}
