package events

import (
	"time"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EventConsultationRequested EventType = "consultation.requested"
	EventConsultationAssigned  EventType = "consultation.assigned"
	EventConsultationAccepted  EventType = "consultation.accepted"
	EventConsultationActivated EventType = "consultation.activated"
	EventMessageSent           EventType = "consultation.message_sent"
	EventConsultationCompleted EventType = "consultation.completed"
	EventTestimonialSubmitted  EventType = "consultation.testimonial_submitted"
)

// ConsultationEvent is the envelope published to the lifecycle stream.
type ConsultationEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type ConsultationEventData struct {
	ConsultationID string                    `json:"consultation_id"`
	StudentID      string                    `json:"student_id"`
	ConsultantID   *string                   `json:"consultant_id,omitempty"`
	DepartmentID   string                    `json:"department_id"`
	Status         models.ConsultationStatus `json:"status"`
	ActorID        string                    `json:"actor_id"`
}

type MessageSentEventData struct {
	ConsultationEventData
	MessageID string `json:"message_id"`
}

// NewConsultationEvent builds the envelope for a lifecycle transition.
func NewConsultationEvent(eventType EventType, c *models.Consultation, actorID string) *ConsultationEvent {
	return &ConsultationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "consultation-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data: ConsultationEventData{
			ConsultationID: c.ID,
			StudentID:      c.StudentID,
			ConsultantID:   c.ConsultantID,
			DepartmentID:   c.DepartmentID,
			Status:         c.Status,
			ActorID:        actorID,
		},
	}
}

// NewMessageSentEvent builds the envelope for a chat append.
func NewMessageSentEvent(c *models.Consultation, actorID, messageID string) *ConsultationEvent {
	return &ConsultationEvent{
		ID:        uuid.NewString(),
		Type:      EventMessageSent,
		Source:    "consultation-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data: MessageSentEventData{
			ConsultationEventData: ConsultationEventData{
				ConsultationID: c.ID,
				StudentID:      c.StudentID,
				ConsultantID:   c.ConsultantID,
				DepartmentID:   c.DepartmentID,
				Status:         c.Status,
				ActorID:        actorID,
			},
			MessageID: messageID,
		},
	}
}
