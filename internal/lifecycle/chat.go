package lifecycle

import (
	"strings"

	"github.com/WPCM-2025/consultation-service/internal/models"
)

// ChatEntry is one message classified for a particular viewer.
type ChatEntry struct {
	Message      models.Message `json:"message"`
	IsOwnMessage bool           `json:"is_own_message"`
}

// RenderChat projects the message log for display. Messages keep stored
// insertion order; nothing is re-sorted by timestamp.
func RenderChat(c *models.Consultation, viewerID string) []ChatEntry {
	entries := make([]ChatEntry, 0, len(c.Messages))
	for _, m := range c.Messages {
		entries = append(entries, ChatEntry{
			Message:      m,
			IsOwnMessage: m.SenderID == viewerID,
		})
	}
	return entries
}

// Transcript flattens the log into "<displayName>: <text>" lines for the
// summarization collaborator. The student's name comes from the request-time
// snapshot; the consultant's from the loaded relation when present.
func Transcript(c *models.Consultation) string {
	consultantName := "Consultant"
	if c.Consultant != nil && c.Consultant.FullName != "" {
		consultantName = c.Consultant.FullName
	}
	studentName := c.FullName
	if studentName == "" {
		studentName = "Student"
	}

	lines := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		name := consultantName
		if m.SenderID == c.StudentID {
			name = studentName
		}
		lines = append(lines, name+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// ChatNotice returns the placeholder text shown instead of (or above) the
// input box for statuses where chat is not open. Empty for ACTIVE.
func ChatNotice(c *models.Consultation) string {
	switch c.Status {
	case models.StatusPending:
		return "An admin will assign a consultant to this request soon. The chat will be enabled once a consultant is assigned."
	case models.StatusAwaitingAcceptance:
		return "Both you and your consultant need to accept before the conversation can begin."
	case models.StatusPaused:
		return "This consultation is paused. Chat is disabled until an admin resumes it."
	case models.StatusCompleted:
		return "This consultation has been completed. The chat is closed."
	default:
		return ""
	}
}
