// Package lifecycle holds the consultation state machine. Every transition is
// a pure function over an in-memory Consultation: it validates first, then
// mutates, so a returned error always means the input was left untouched.
// Persisting the result is the caller's job.
package lifecycle

import (
	"strings"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/google/uuid"
)

type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock is used by tests that need deterministic timestamps.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Assign puts the consultation into the mutual-acceptance phase. It is legal
// from PENDING and from AWAITING_ACCEPTANCE (reassignment); reassignment
// resets both acceptance flags, so a party's earlier acceptance never carries
// over to a different consultant.
func (e *Engine) Assign(c *models.Consultation, consultant *models.User) error {
	if consultant == nil || consultant.ID == "" {
		return ErrNoConsultant
	}
	if consultant.Role != models.RoleConsultant || !consultant.Active {
		return ErrNotConsultant
	}
	if consultant.DepartmentID == nil || *consultant.DepartmentID != c.DepartmentID {
		return ErrDepartmentMismatch
	}
	if c.Status != models.StatusPending && c.Status != models.StatusAwaitingAcceptance {
		return ErrNotAssignable
	}

	id := consultant.ID
	c.ConsultantID = &id
	c.StudentAccepted = false
	c.ConsultantAccepted = false
	c.Status = models.StatusAwaitingAcceptance
	return nil
}

// Accept records the caller's acceptance. Repeated calls by the same party are
// a no-op. The ACTIVE promotion is recomputed from the merged flags on every
// call; whichever party accepts second triggers it. The returned bool reports
// whether this call activated the consultation.
func (e *Engine) Accept(c *models.Consultation, userID string) (bool, error) {
	if c.Status != models.StatusAwaitingAcceptance {
		return false, ErrNotAwaiting
	}
	if !c.IsParty(userID) {
		return false, ErrNotParticipant
	}

	if userID == c.StudentID {
		c.StudentAccepted = true
	} else {
		c.ConsultantAccepted = true
	}

	if c.StudentAccepted && c.ConsultantAccepted {
		c.Status = models.StatusActive
		return true, nil
	}
	return false, nil
}

// AppendMessage adds a chat message. Chat is open only while ACTIVE; text must
// be non-empty after trimming. The created message is appended to the log and
// returned; the log itself is never rewritten.
func (e *Engine) AppendMessage(c *models.Consultation, senderID, text string) (*models.Message, error) {
	if c.Status != models.StatusActive {
		return nil, ErrChatDisabled
	}
	if !c.IsParty(senderID) {
		return nil, ErrNotParticipant
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	now := e.now()
	msg := models.Message{
		ID:             uuid.NewString(),
		ConsultationID: c.ID,
		SenderID:       senderID,
		Text:           text,
		Timestamp:      now,
	}
	c.Messages = append(c.Messages, msg)
	c.LastMessageAt = &now
	return &c.Messages[len(c.Messages)-1], nil
}

// Complete closes the chat. Only the assigned consultant may do this, and only
// while the consultation is ACTIVE.
func (e *Engine) Complete(c *models.Consultation, userID string) error {
	if c.Status != models.StatusActive {
		return ErrNotActive
	}
	if c.ConsultantID == nil || *c.ConsultantID != userID {
		return ErrOnlyConsultantEnds
	}
	c.Status = models.StatusCompleted
	return nil
}

// SubmitTestimonial sets the student's testimonial on a completed
// consultation. First write wins; later calls fail and leave the original.
func (e *Engine) SubmitTestimonial(c *models.Consultation, userID, text string) error {
	if c.Status != models.StatusCompleted {
		return ErrNotCompleted
	}
	if userID != c.StudentID {
		return ErrOnlyStudentAttests
	}
	if c.Testimonial != nil {
		return ErrTestimonialExists
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTestimonial
	}
	c.Testimonial = &text
	return nil
}

// Pause and Resume cover the administratively reserved PAUSED status. There is
// no automatic entry or exit; an admin toggles it. While paused the chat is
// disabled like any other non-ACTIVE status.
func (e *Engine) Pause(c *models.Consultation) error {
	if c.Status != models.StatusActive {
		return ErrNotPausable
	}
	c.Status = models.StatusPaused
	return nil
}

func (e *Engine) Resume(c *models.Consultation) error {
	if c.Status != models.StatusPaused {
		return ErrNotPaused
	}
	// Both flags were true when the consultation went ACTIVE and acceptance
	// is never revoked, so resuming restores ACTIVE directly.
	c.Status = models.StatusActive
	return nil
}
