package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futuremakers/feedback-service/internal/domain"
	"github.com/futuremakers/feedback-service/internal/events"
	"github.com/futuremakers/feedback-service/internal/notify"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

// NotificationService delivers moderator replies to submitters and
// logs lifecycle events of interest.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// DeliverReply pushes a recorded reply to the ticket's submitter.
// Called synchronously by the reply flow so a delivery failure reaches
// the caller; the stored reply is kept either way. Tickets filed
// outside the chat have no delivery channel and are skipped.
func (n *NotificationService) DeliverReply(ctx context.Context, ticket *domain.Ticket, text string) error {
	if ticket.SubmitterID == nil {
		return nil
	}
	message := fmt.Sprintf("📢 Ответ на ваше обращение:\n\n%s", text)
	if err := n.notifier.Send(ctx, *ticket.SubmitterID, message); err != nil {
		n.logger.Error("reply delivery failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("code", ticket.Code),
			zap.Error(err))
		return apperrors.NewNotifyError(err)
	}
	n.logger.Info("reply delivered",
		zap.String("ticket_id", ticket.ID),
		zap.String("code", ticket.Code))
	return nil
}

// RegisterHandlers subscribes to events for observability.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}
