package dto

import (
	"time"

	"github.com/futuremakers/feedback-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Content         string            `json:"content"`
	Department      string            `json:"department"`
	Deadline        time.Time         `json:"deadline"`
	Type            domain.TicketType `json:"type"`
	SubmitterID     *string           `json:"submitter_id"`
	SubmitterName   *string           `json:"submitter_name"`
	SubmitterHandle *string           `json:"submitter_handle"`
}

// UpdateStatusRequest payload. Force preserves the unconditional
// moderator override for transitions outside the intended lifecycle.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Force  bool                `json:"force"`
}

// ReplyRequest payload.
type ReplyRequest struct {
	Text   string `json:"text"`
	SentBy string `json:"sent_by"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID              string              `json:"id"`
	Code            string              `json:"code"`
	Content         string              `json:"content"`
	Department      string              `json:"department"`
	Status          domain.TicketStatus `json:"status"`
	Type            domain.TicketType   `json:"type"`
	CreatedAt       time.Time           `json:"created_at"`
	Deadline        time.Time           `json:"deadline"`
	SubmitterID     *string             `json:"submitter_id,omitempty"`
	SubmitterName   *string             `json:"submitter_name,omitempty"`
	SubmitterHandle *string             `json:"submitter_handle,omitempty"`
	Reply           *string             `json:"reply,omitempty"`
	Responses       []ResponseOut       `json:"responses"`
}

// ResponseOut is one moderator reply.
type ResponseOut struct {
	ID       string    `json:"id"`
	TicketID string    `json:"ticket_id"`
	Text     string    `json:"text"`
	SentBy   string    `json:"sent_by"`
	SentAt   time.Time `json:"sent_at"`
}
