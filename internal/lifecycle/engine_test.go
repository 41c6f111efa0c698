package lifecycle

import (
	"testing"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	studentID    = "user-student"
	consultantID = "user-consultant"
	departmentID = "dept-1"
)

func newConsultant() *models.User {
	dept := departmentID
	return &models.User{
		ID:           consultantID,
		FullName:     "Hanna Bekele",
		Role:         models.RoleConsultant,
		DepartmentID: &dept,
		Active:       true,
	}
}

func newConsultation() *models.Consultation {
	return &models.Consultation{
		ID:                 "cons-1",
		StudentID:          studentID,
		DepartmentID:       departmentID,
		Status:             models.StatusPending,
		FullName:           "Dawit Alemu",
		ProblemDescription: "Struggling to balance studies and service",
	}
}

func awaitingConsultation() *models.Consultation {
	c := newConsultation()
	id := consultantID
	c.ConsultantID = &id
	c.Status = models.StatusAwaitingAcceptance
	return c
}

func activeConsultation() *models.Consultation {
	c := awaitingConsultation()
	c.StudentAccepted = true
	c.ConsultantAccepted = true
	c.Status = models.StatusActive
	consultant := newConsultant()
	c.Consultant = consultant
	return c
}

func TestAssign(t *testing.T) {
	e := NewEngine()

	t.Run("pending consultation becomes awaiting acceptance", func(t *testing.T) {
		c := newConsultation()
		err := e.Assign(c, newConsultant())
		require.NoError(t, err)
		assert.Equal(t, models.StatusAwaitingAcceptance, c.Status)
		require.NotNil(t, c.ConsultantID)
		assert.Equal(t, consultantID, *c.ConsultantID)
		assert.False(t, c.StudentAccepted)
		assert.False(t, c.ConsultantAccepted)
	})

	t.Run("nil consultant is rejected", func(t *testing.T) {
		c := newConsultation()
		err := e.Assign(c, nil)
		assert.ErrorIs(t, err, ErrNoConsultant)
		assert.Equal(t, models.StatusPending, c.Status)
		assert.Nil(t, c.ConsultantID)
	})

	t.Run("department mismatch is rejected without state change", func(t *testing.T) {
		c := newConsultation()
		other := "dept-other"
		consultant := newConsultant()
		consultant.DepartmentID = &other
		err := e.Assign(c, consultant)
		assert.ErrorIs(t, err, ErrDepartmentMismatch)
		assert.Equal(t, models.StatusPending, c.Status)
		assert.Nil(t, c.ConsultantID)
	})

	t.Run("inactive consultant is rejected", func(t *testing.T) {
		c := newConsultation()
		consultant := newConsultant()
		consultant.Active = false
		assert.ErrorIs(t, e.Assign(c, consultant), ErrNotConsultant)
	})

	t.Run("student cannot be assigned", func(t *testing.T) {
		c := newConsultation()
		consultant := newConsultant()
		consultant.Role = models.RoleStudent
		assert.ErrorIs(t, e.Assign(c, consultant), ErrNotConsultant)
	})

	t.Run("reassignment resets acceptance flags", func(t *testing.T) {
		c := awaitingConsultation()
		c.StudentAccepted = true

		dept := departmentID
		replacement := &models.User{
			ID:           "user-consultant-2",
			Role:         models.RoleConsultant,
			DepartmentID: &dept,
			Active:       true,
		}
		require.NoError(t, e.Assign(c, replacement))
		assert.Equal(t, models.StatusAwaitingAcceptance, c.Status)
		assert.Equal(t, "user-consultant-2", *c.ConsultantID)
		assert.False(t, c.StudentAccepted)
		assert.False(t, c.ConsultantAccepted)
	})

	t.Run("assign is illegal once active", func(t *testing.T) {
		c := activeConsultation()
		assert.ErrorIs(t, e.Assign(c, newConsultant()), ErrNotAssignable)
		assert.Equal(t, models.StatusActive, c.Status)
	})
}

func TestAccept(t *testing.T) {
	e := NewEngine()

	t.Run("first acceptance does not activate", func(t *testing.T) {
		c := awaitingConsultation()
		activated, err := e.Accept(c, studentID)
		require.NoError(t, err)
		assert.False(t, activated)
		assert.True(t, c.StudentAccepted)
		assert.False(t, c.ConsultantAccepted)
		assert.Equal(t, models.StatusAwaitingAcceptance, c.Status)
	})

	t.Run("second party activates in the same transition", func(t *testing.T) {
		c := awaitingConsultation()
		_, err := e.Accept(c, studentID)
		require.NoError(t, err)
		activated, err := e.Accept(c, consultantID)
		require.NoError(t, err)
		assert.True(t, activated)
		assert.Equal(t, models.StatusActive, c.Status)
	})

	t.Run("acceptance is commutative", func(t *testing.T) {
		c := awaitingConsultation()
		_, err := e.Accept(c, consultantID)
		require.NoError(t, err)
		activated, err := e.Accept(c, studentID)
		require.NoError(t, err)
		assert.True(t, activated)
		assert.Equal(t, models.StatusActive, c.Status)
	})

	t.Run("accept is idempotent", func(t *testing.T) {
		c := awaitingConsultation()
		_, err := e.Accept(c, studentID)
		require.NoError(t, err)
		before := *c
		activated, err := e.Accept(c, studentID)
		require.NoError(t, err)
		assert.False(t, activated)
		assert.Equal(t, before, *c)
	})

	t.Run("outsider cannot accept", func(t *testing.T) {
		c := awaitingConsultation()
		_, err := e.Accept(c, "user-stranger")
		assert.ErrorIs(t, err, ErrNotParticipant)
		assert.False(t, c.StudentAccepted)
		assert.False(t, c.ConsultantAccepted)
	})

	t.Run("accept requires awaiting status", func(t *testing.T) {
		c := newConsultation()
		_, err := e.Accept(c, studentID)
		assert.ErrorIs(t, err, ErrNotAwaiting)
	})
}

func TestStatusFlagInvariant(t *testing.T) {
	// Walk every reachable state and check: ACTIVE iff both flags,
	// AWAITING_ACCEPTANCE iff assigned and not both flags.
	e := NewEngine()
	check := func(c *models.Consultation) {
		t.Helper()
		bothAccepted := c.StudentAccepted && c.ConsultantAccepted
		if c.Status == models.StatusActive {
			assert.True(t, bothAccepted)
		}
		if c.Status == models.StatusAwaitingAcceptance {
			assert.NotNil(t, c.ConsultantID)
			assert.False(t, bothAccepted)
		}
		if c.Status == models.StatusPending {
			assert.Nil(t, c.ConsultantID)
		}
	}

	c := newConsultation()
	check(c)
	require.NoError(t, e.Assign(c, newConsultant()))
	check(c)
	_, err := e.Accept(c, consultantID)
	require.NoError(t, err)
	check(c)
	_, err = e.Accept(c, studentID)
	require.NoError(t, err)
	check(c)
	require.NoError(t, e.Pause(c))
	require.NoError(t, e.Resume(c))
	check(c)
	require.NoError(t, e.Complete(c, consultantID))
	check(c)
}

func TestAppendMessage(t *testing.T) {
	t.Run("append while active", func(t *testing.T) {
		ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
		e := NewEngineWithClock(func() time.Time { return ts })
		c := activeConsultation()

		msg, err := e.AppendMessage(c, studentID, "Hello")
		require.NoError(t, err)
		assert.Equal(t, "Hello", msg.Text)
		assert.Equal(t, studentID, msg.SenderID)
		assert.Equal(t, ts, msg.Timestamp)
		assert.NotEmpty(t, msg.ID)
		require.Len(t, c.Messages, 1)
		require.NotNil(t, c.LastMessageAt)
		assert.Equal(t, ts, *c.LastMessageAt)
	})

	t.Run("chat gated on every non-active status", func(t *testing.T) {
		e := NewEngine()
		for _, status := range []models.ConsultationStatus{
			models.StatusPending,
			models.StatusAwaitingAcceptance,
			models.StatusPaused,
			models.StatusCompleted,
		} {
			c := activeConsultation()
			c.Status = status
			_, err := e.AppendMessage(c, studentID, "hi")
			assert.ErrorIs(t, err, ErrChatDisabled, "status %s", status)
			assert.Empty(t, c.Messages)
			assert.Nil(t, c.LastMessageAt)
		}
	})

	t.Run("whitespace-only text is rejected", func(t *testing.T) {
		e := NewEngine()
		c := activeConsultation()
		_, err := e.AppendMessage(c, studentID, "   \n\t")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, c.Messages)
	})

	t.Run("outsider cannot send", func(t *testing.T) {
		e := NewEngine()
		c := activeConsultation()
		_, err := e.AppendMessage(c, "user-stranger", "hi")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("log is append-only", func(t *testing.T) {
		e := NewEngine()
		c := activeConsultation()
		first, err := e.AppendMessage(c, studentID, "first")
		require.NoError(t, err)
		firstID, firstText := first.ID, first.Text

		for i, text := range []string{"second", "third", "fourth"} {
			sender := studentID
			if i%2 == 0 {
				sender = consultantID
			}
			_, err := e.AppendMessage(c, sender, text)
			require.NoError(t, err)
		}

		require.Len(t, c.Messages, 4)
		assert.Equal(t, firstID, c.Messages[0].ID)
		assert.Equal(t, firstText, c.Messages[0].Text)
		assert.Equal(t, []string{"first", "second", "third", "fourth"}, []string{
			c.Messages[0].Text, c.Messages[1].Text, c.Messages[2].Text, c.Messages[3].Text,
		})
	})
}

func TestComplete(t *testing.T) {
	e := NewEngine()

	t.Run("assigned consultant completes", func(t *testing.T) {
		c := activeConsultation()
		require.NoError(t, e.Complete(c, consultantID))
		assert.Equal(t, models.StatusCompleted, c.Status)
	})

	t.Run("student cannot complete", func(t *testing.T) {
		c := activeConsultation()
		assert.ErrorIs(t, e.Complete(c, studentID), ErrOnlyConsultantEnds)
		assert.Equal(t, models.StatusActive, c.Status)
	})

	t.Run("complete requires active status", func(t *testing.T) {
		c := awaitingConsultation()
		assert.ErrorIs(t, e.Complete(c, consultantID), ErrNotActive)
	})

	t.Run("no transitions after completion", func(t *testing.T) {
		c := activeConsultation()
		require.NoError(t, e.Complete(c, consultantID))

		_, err := e.Accept(c, studentID)
		assert.ErrorIs(t, err, ErrNotAwaiting)
		_, err = e.AppendMessage(c, studentID, "one more")
		assert.ErrorIs(t, err, ErrChatDisabled)
		assert.ErrorIs(t, e.Complete(c, consultantID), ErrNotActive)
	})
}

func TestSubmitTestimonial(t *testing.T) {
	e := NewEngine()

	completed := func() *models.Consultation {
		c := activeConsultation()
		require.NoError(t, e.Complete(c, consultantID))
		return c
	}

	t.Run("first write wins", func(t *testing.T) {
		c := completed()
		require.NoError(t, e.SubmitTestimonial(c, studentID, "Great help"))
		require.NotNil(t, c.Testimonial)
		assert.Equal(t, "Great help", *c.Testimonial)

		err := e.SubmitTestimonial(c, studentID, "Changed my mind")
		assert.ErrorIs(t, err, ErrTestimonialExists)
		assert.Equal(t, "Great help", *c.Testimonial)
	})

	t.Run("only the student", func(t *testing.T) {
		c := completed()
		assert.ErrorIs(t, e.SubmitTestimonial(c, consultantID, "nice"), ErrOnlyStudentAttests)
		assert.Nil(t, c.Testimonial)
	})

	t.Run("requires completed status", func(t *testing.T) {
		c := activeConsultation()
		assert.ErrorIs(t, e.SubmitTestimonial(c, studentID, "too soon"), ErrNotCompleted)
	})

	t.Run("text is trimmed and must be non-empty", func(t *testing.T) {
		c := completed()
		assert.ErrorIs(t, e.SubmitTestimonial(c, studentID, "  "), ErrEmptyTestimonial)
		require.NoError(t, e.SubmitTestimonial(c, studentID, "  trimmed  "))
		assert.Equal(t, "trimmed", *c.Testimonial)
	})
}

func TestPauseResume(t *testing.T) {
	e := NewEngine()

	c := activeConsultation()
	require.NoError(t, e.Pause(c))
	assert.Equal(t, models.StatusPaused, c.Status)

	_, err := e.AppendMessage(c, studentID, "anyone there?")
	assert.ErrorIs(t, err, ErrChatDisabled)

	require.NoError(t, e.Resume(c))
	assert.Equal(t, models.StatusActive, c.Status)

	assert.ErrorIs(t, e.Pause(newConsultation()), ErrNotPausable)
	assert.ErrorIs(t, e.Resume(c), ErrNotPaused)
}

func TestHappyPath(t *testing.T) {
	ts := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	e := NewEngineWithClock(func() time.Time { return ts })

	c := newConsultation()
	assert.Equal(t, models.StatusPending, c.Status)

	require.NoError(t, e.Assign(c, newConsultant()))
	assert.Equal(t, models.StatusAwaitingAcceptance, c.Status)
	assert.False(t, c.StudentAccepted)
	assert.False(t, c.ConsultantAccepted)

	activated, err := e.Accept(c, studentID)
	require.NoError(t, err)
	assert.False(t, activated)
	assert.Equal(t, models.StatusAwaitingAcceptance, c.Status)

	activated, err = e.Accept(c, consultantID)
	require.NoError(t, err)
	assert.True(t, activated)
	assert.Equal(t, models.StatusActive, c.Status)

	msg, err := e.AppendMessage(c, studentID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, studentID, msg.SenderID)
	assert.Equal(t, "Hello", msg.Text)

	require.NoError(t, e.Complete(c, consultantID))
	assert.Equal(t, models.StatusCompleted, c.Status)

	require.NoError(t, e.SubmitTestimonial(c, studentID, "Great help"))

	// Final document shape
	assert.Equal(t, models.StatusCompleted, c.Status)
	assert.True(t, c.StudentAccepted)
	assert.True(t, c.ConsultantAccepted)
	assert.Equal(t, consultantID, *c.ConsultantID)
	require.Len(t, c.Messages, 1)
	assert.Equal(t, "Hello", c.Messages[0].Text)
	assert.Equal(t, "Great help", *c.Testimonial)
}
