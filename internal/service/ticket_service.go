package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/futuremakers/feedback-service/internal/classify"
	"github.com/futuremakers/feedback-service/internal/domain"
	"github.com/futuremakers/feedback-service/internal/events"
	"github.com/futuremakers/feedback-service/internal/repository"
	"github.com/futuremakers/feedback-service/internal/ticketcode"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

// maxCodeAttempts bounds retries against ticket code collisions.
const maxCodeAttempts = 5

// TicketService owns the ticket lifecycle: creation, lazy overdue
// recomputation, status transitions, and reply recording.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.ResponseRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        func() time.Time
}

// TicketCreateInput describes a ticket creation payload.
type TicketCreateInput struct {
	Content         string
	Department      string
	Deadline        time.Time
	Type            domain.TicketType
	SubmitterID     *string
	SubmitterName   *string
	SubmitterHandle *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Create validates the payload, derives a department when absent,
// allocates a unique code, and persists the ticket as in_progress.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if input.Deadline.IsZero() {
		return nil, apperrors.NewValidationError("deadline required", nil)
	}

	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = classify.Classify(content)
	}

	ticketType := input.Type
	if ticketType == "" {
		ticketType = domain.TicketTypeComplaint
	}

	ticket := &domain.Ticket{
		Content:         content,
		Department:      department,
		Status:          domain.TicketStatusInProgress,
		Type:            ticketType,
		Deadline:        input.Deadline,
		SubmitterID:     input.SubmitterID,
		SubmitterName:   input.SubmitterName,
		SubmitterHandle: input.SubmitterHandle,
	}

	year := s.now().Year()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		ticket.Code = ticketcode.Generate(year)
		err := s.tickets.Create(ctx, ticket)
		if err == nil {
			s.publishEvent(ctx, events.Event{
				Type:     events.EventTicketCreated,
				TicketID: ticket.ID,
				Payload: events.TicketCreatedPayload{
					Code:       ticket.Code,
					Department: ticket.Department,
					Type:       ticket.Type,
					ViaChat:    ticket.SubmitterID != nil,
				},
			})
			return ticket, nil
		}
		if errors.Is(err, repository.ErrCodeTaken) {
			s.logger.Warn("ticket code collision, retrying",
				zap.String("code", ticket.Code),
				zap.Int("attempt", attempt+1))
			continue
		}
		return nil, apperrors.NewStoreError(err)
	}
	return nil, apperrors.NewCodeExhausted(maxCodeAttempts)
}

// List returns every ticket with status freshly recomputed: tickets
// past deadline and not done are flipped to overdue and the flip is
// persisted as a side effect of the read.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	now := s.now()
	for i := range tickets {
		if err := s.repairOverdue(ctx, &tickets[i], now); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

// GetByCode fetches a ticket by its public code, responses attached.
func (s *TicketService) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"code": code})
		}
		return nil, apperrors.NewStoreError(err)
	}
	if err := s.repairOverdue(ctx, ticket, s.now()); err != nil {
		return nil, err
	}
	return s.withResponses(ctx, ticket)
}

// Get fetches a ticket by its store identifier, responses attached.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return s.withResponses(ctx, ticket)
}

// intendedTransitions models the expected lifecycle. done is terminal;
// overdue may still be resolved late.
var intendedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusInProgress: {domain.TicketStatusDone, domain.TicketStatusOverdue},
	domain.TicketStatusOverdue:    {domain.TicketStatusDone},
	domain.TicketStatusDone:       {},
}

func isIntendedTransition(current, next domain.TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range intendedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// UpdateStatus moves a ticket to newStatus. Transitions outside the
// intended lifecycle are rejected unless force is set, which preserves
// the unconditional moderator override.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, newStatus domain.TicketStatus, force bool) (*domain.Ticket, error) {
	switch newStatus {
	case domain.TicketStatusInProgress, domain.TicketStatusDone, domain.TicketStatusOverdue:
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}

	if !isIntendedTransition(ticket.Status, newStatus) {
		if !force {
			s.logger.Warn("rejected status transition",
				zap.String("ticket_id", ticket.ID),
				zap.String("from", string(ticket.Status)),
				zap.String("to", string(newStatus)))
			return nil, apperrors.NewConflict("status transition not allowed", map[string]any{
				"from": ticket.Status,
				"to":   newStatus,
			})
		}
		s.logger.Warn("forced status override",
			zap.String("ticket_id", ticket.ID),
			zap.String("from", string(ticket.Status)),
			zap.String("to", string(newStatus)))
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Forced:    force && oldStatus != newStatus && !isIntendedTransition(oldStatus, newStatus),
		},
	})
	return ticket, nil
}

// RecordReply appends a moderator response and denormalizes its text
// onto the ticket for quick display; both writes commit together.
// Ticket status is untouched.
func (s *TicketService) RecordReply(ctx context.Context, id, text, sentBy string) (*domain.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("reply text required", nil)
	}
	if strings.TrimSpace(sentBy) == "" {
		sentBy = domain.DefaultModeratorName
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}

	response := &domain.Response{
		TicketID: ticket.ID,
		Text:     text,
		SentBy:   sentBy,
	}
	if err := s.responses.Record(ctx, response); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	ticket.Reply = &text

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplyRecorded,
		TicketID: ticket.ID,
		Payload: events.TicketReplyRecordedPayload{
			ResponseID:  response.ID,
			SentBy:      response.SentBy,
			Text:        response.Text,
			SubmitterID: ticket.SubmitterID,
		},
	})
	return response, nil
}

// Delete removes a ticket; its responses cascade at the store level.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	deleted, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return apperrors.NewStoreError(err)
	}
	if !deleted {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
	})
	return nil
}

// repairOverdue persists the derived overdue status. Idempotent and
// never touches done tickets.
func (s *TicketService) repairOverdue(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	if ticket.Status == domain.TicketStatusOverdue || !ticket.IsOverdue(now) {
		return nil
	}
	ticket.Status = domain.TicketStatusOverdue
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.NewStoreError(err)
	}
	return nil
}

func (s *TicketService) withResponses(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	responses, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	ticket.Responses = responses
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
