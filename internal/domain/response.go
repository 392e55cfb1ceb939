package domain

import "time"

// DefaultModeratorName labels replies whose author is unspecified.
const DefaultModeratorName = "Модератор"

// Response is one moderator reply attached to a ticket. Responses are
// append-only and are removed only when their ticket is deleted.
type Response struct {
	ID       string
	TicketID string
	Text     string
	SentBy   string
	SentAt   time.Time
}
