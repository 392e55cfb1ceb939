package events

import (
	"time"

	"github.com/futuremakers/feedback-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketReplyRecorded EventType = "ticket_reply_recorded"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Code       string            `json:"code"`
	Department string            `json:"department"`
	Type       domain.TicketType `json:"type"`
	ViaChat    bool              `json:"via_chat"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Forced    bool                `json:"forced,omitempty"`
}

// TicketReplyRecordedPayload payload.
type TicketReplyRecordedPayload struct {
	ResponseID  string  `json:"response_id"`
	SentBy      string  `json:"sent_by"`
	Text        string  `json:"text"`
	SubmitterID *string `json:"submitter_id,omitempty"`
}
