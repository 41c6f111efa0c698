package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConsultationStatus string

const (
	StatusPending            ConsultationStatus = "PENDING"
	StatusAwaitingAcceptance ConsultationStatus = "AWAITING_ACCEPTANCE"
	StatusActive             ConsultationStatus = "ACTIVE"
	StatusPaused             ConsultationStatus = "PAUSED"
	StatusCompleted          ConsultationStatus = "COMPLETED"
)

func (s ConsultationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAwaitingAcceptance, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

type SchoolLevel string

const (
	LevelRemedial    SchoolLevel = "Remedial"
	LevelFirstYear   SchoolLevel = "First Year"
	LevelSecondYear  SchoolLevel = "Second Year"
	LevelThirdYear   SchoolLevel = "Third Year"
	LevelFourthYear  SchoolLevel = "Fourth Year"
	LevelFifthYear   SchoolLevel = "Fifth Year"
	LevelSixthYear   SchoolLevel = "Sixth Year"
	LevelSeventhYear SchoolLevel = "Seventh Year"
)

const (
	EnrollmentRegular   = "Regular"
	EnrollmentIrregular = "Irregular (Private)"

	ProgramDegree = "Degree Program"
	ProgramMS     = "MS Program"

	MembershipCurrent = "Current WPCM"
	MembershipAlumni  = "Alumni WPCM"
)

type Consultation struct {
	ID           string  `json:"id" gorm:"primaryKey;size:255"`
	StudentID    string  `json:"student_id" gorm:"not null;size:255;index"`
	ConsultantID *string `json:"consultant_id" gorm:"size:255;index"`
	DepartmentID string  `json:"department_id" gorm:"not null;size:255;index"`

	// Lifecycle state
	Status             ConsultationStatus `json:"status" gorm:"not null;default:PENDING;index"`
	StudentAccepted    bool               `json:"student_accepted" gorm:"default:false"`
	ConsultantAccepted bool               `json:"consultant_accepted" gorm:"default:false"`

	// Request content
	ProblemDescription string     `json:"problem_description" gorm:"type:text;not null"`
	PreferredTime      string     `json:"preferred_time" gorm:"size:100"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	Testimonial        *string    `json:"testimonial" gorm:"type:text"`

	// Submitter's profile as it was at request time
	FullName         string         `json:"full_name" gorm:"not null;size:100"`
	Email            string         `json:"email" gorm:"not null;size:255"`
	PhoneNumber      string         `json:"phone_number" gorm:"size:20"`
	TelegramUsername *string        `json:"telegram_username" gorm:"size:100"`
	MotherChurch     string         `json:"mother_church" gorm:"size:200"`
	EntryYear        string         `json:"entry_year" gorm:"size:10"`
	DepartmentName   string         `json:"department_name" gorm:"size:100"`
	SchoolLevel      SchoolLevel    `json:"school_level" gorm:"size:20"`
	GraduationYear   string         `json:"graduation_year" gorm:"size:10"`
	StudentStatus1   string         `json:"student_status_1" gorm:"size:30"`
	StudentStatus2   string         `json:"student_status_2" gorm:"size:30"`
	StudentStatus3   string         `json:"student_status_3" gorm:"size:30"`
	Talents          datatypes.JSON `json:"talents"`
	SpecialCare      datatypes.JSON `json:"special_care"`
	PhotoURL         *string        `json:"photo_url" gorm:"size:500"`
	Comments         *string        `json:"comments" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student    *User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Consultant *User     `json:"consultant,omitempty" gorm:"foreignKey:ConsultantID"`
	Messages   []Message `json:"messages" gorm:"foreignKey:ConsultationID"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsParty reports whether userID is the student or the assigned consultant.
func (c *Consultation) IsParty(userID string) bool {
	if userID == c.StudentID {
		return true
	}
	return c.ConsultantID != nil && *c.ConsultantID == userID
}

// Message is one entry of a consultation's append-only chat log.
// Rows are never updated or deleted; Seq fixes insertion order even when
// two appends land with the same timestamp.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;size:255"`
	ConsultationID string    `json:"consultation_id" gorm:"not null;size:255;index"`
	Seq            uint64    `json:"seq" gorm:"autoIncrement;uniqueIndex"`
	SenderID       string    `json:"sender_id" gorm:"not null;size:255"`
	Text           string    `json:"text" gorm:"type:text;not null"`
	Timestamp      time.Time `json:"timestamp" gorm:"not null"`
}

func (Message) TableName() string {
	return "consultation_messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
