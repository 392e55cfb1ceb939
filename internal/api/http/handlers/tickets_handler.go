package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/futuremakers/feedback-service/internal/api/dto"
	"github.com/futuremakers/feedback-service/internal/domain"
	"github.com/futuremakers/feedback-service/internal/service"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

// TicketsHandler manages ticket CRUD, status updates, and replies.
type TicketsHandler struct {
	tickets       *service.TicketService
	notifications *service.NotificationService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, notifications *service.NotificationService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, notifications: notifications}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	if req.Deadline.IsZero() {
		return apperrors.NewValidationError("deadline required", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		Content:         req.Content,
		Department:      req.Department,
		Deadline:        req.Deadline,
		Type:            req.Type,
		SubmitterID:     req.SubmitterID,
		SubmitterName:   req.SubmitterName,
		SubmitterHandle: req.SubmitterHandle,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicketByCode GET /tickets/code/:code.
func (h *TicketsHandler) GetTicketByCode(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateStatus PUT /tickets/:id.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, req.Force)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// Reply POST /tickets/:id/reply. The reply is stored first; a delivery
// failure surfaces as NOTIFY_FAILED but does not discard the reply.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	response, err := h.tickets.RecordReply(c.UserContext(), c.Params("id"), req.Text, req.SentBy)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.notifications.DeliverReply(c.UserContext(), ticket, response.Text); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": responseOut(response)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	responses := make([]dto.ResponseOut, 0, len(ticket.Responses))
	for i := range ticket.Responses {
		responses = append(responses, responseOut(&ticket.Responses[i]))
	}
	return dto.TicketResponse{
		ID:              ticket.ID,
		Code:            ticket.Code,
		Content:         ticket.Content,
		Department:      ticket.Department,
		Status:          ticket.Status,
		Type:            ticket.Type,
		CreatedAt:       ticket.CreatedAt,
		Deadline:        ticket.Deadline,
		SubmitterID:     ticket.SubmitterID,
		SubmitterName:   ticket.SubmitterName,
		SubmitterHandle: ticket.SubmitterHandle,
		Reply:           ticket.Reply,
		Responses:       responses,
	}
}

func responseOut(response *domain.Response) dto.ResponseOut {
	return dto.ResponseOut{
		ID:       response.ID,
		TicketID: response.TicketID,
		Text:     response.Text,
		SentBy:   response.SentBy,
		SentAt:   response.SentAt,
	}
}
