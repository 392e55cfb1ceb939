package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/futuremakers/feedback-service/internal/api/dto"
	"github.com/futuremakers/feedback-service/internal/conversation"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

// ChatHandler bridges the chat transport to the conversation engine.
type ChatHandler struct {
	sessions *conversation.Manager
}

// NewChatHandler constructs handler.
func NewChatHandler(sessions *conversation.Manager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// Message POST /chat/messages.
func (h *ChatHandler) Message(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	input := conversation.Input{
		Text:     req.Text,
		PhotoRef: req.PhotoRef,
	}
	if req.Location != nil {
		input.Location = &conversation.Coordinates{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}

	replies, state := h.sessions.HandleMessage(c.UserContext(), req.UserID, req.Username, req.FullName, input)
	return c.JSON(dto.ChatMessageResponse{
		Replies: replies,
		State:   string(state),
	})
}

// Cancel POST /chat/cancel.
func (h *ChatHandler) Cancel(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	state := h.sessions.Cancel(req.UserID)
	return c.JSON(dto.ChatMessageResponse{
		Replies: []string{"Диалог завершён."},
		State:   string(state),
	})
}
