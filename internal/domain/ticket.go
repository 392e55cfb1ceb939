package domain

import "time"

// TicketStatus enumerates lifecycle states for citizen tickets.
type TicketStatus string

const (
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
	TicketStatusOverdue    TicketStatus = "overdue"
)

// TicketType distinguishes complaints from idea submissions.
type TicketType string

const (
	TicketTypeComplaint TicketType = "complaint"
	TicketTypeIdea      TicketType = "idea"
)

// Ticket is the aggregate for one citizen submission tracked to resolution.
type Ticket struct {
	ID              string
	Code            string
	Content         string
	Department      string
	Status          TicketStatus
	Type            TicketType
	CreatedAt       time.Time
	Deadline        time.Time
	SubmitterID     *string
	SubmitterName   *string
	SubmitterHandle *string
	Reply           *string
	Responses       []Response
}

// IsOverdue reports whether the ticket should surface as overdue at the
// given instant. done is absorbing and is never reconsidered.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.Status != TicketStatusDone && t.Deadline.Before(now)
}
