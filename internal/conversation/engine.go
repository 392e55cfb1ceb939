package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futuremakers/feedback-service/internal/domain"
	"github.com/futuremakers/feedback-service/internal/service"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

// State identifies one step of the intake dialog.
type State string

const (
	StateSelectAction State = "select_action"
	StateChooseTopic  State = "choose_topic"
	StateEnterText    State = "enter_text"
	StatePhoto        State = "photo"
	StateLocation     State = "location"
	StateSubmitted    State = "submitted"
	StateCancelled    State = "cancelled"
	// StateEnded terminates a dialog without a submission: idea intake
	// and status lookups both land here.
	StateEnded State = "ended"
)

// Terminal reports whether the state accepts no further input.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateCancelled || s == StateEnded
}

// Input is one user turn as captured by the transport. Exactly one of
// the optional fields is set when the user sent an attachment or a
// location instead of plain text.
type Input struct {
	Text     string
	PhotoRef string
	Location *Coordinates
}

// Coordinates is a latitude/longitude pair from the transport.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g, %g", c.Lat, c.Lon)
}

// topicRule binds a selectable topic keyword to its department.
// Order matches the buttons the original bot displayed.
type topicRule struct {
	topic      string
	department string
}

var topics = []topicRule{
	{"мусор", "ЖКХ"},
	{"вода", "Коммунальные службы"},
	{"интернет", "Цифровизация"},
	{"дорога", "Отдел транспорта"},
	{"освещение", "Энергетика"},
	{"экология", "Экология"},
}

func departmentForTopic(topic string) (string, bool) {
	for _, rule := range topics {
		if rule.topic == topic {
			return rule.department, true
		}
	}
	return "", false
}

func topicPrompt() string {
	var b strings.Builder
	b.WriteString(msgAskTopic)
	for _, rule := range topics {
		b.WriteString("\n• ")
		b.WriteString(rule.topic)
	}
	return b.String()
}

// Session is the per-user intake state. Dialog fields are guarded by
// mu; inputs for one user are processed strictly one at a time.
// LastActivity belongs to the Manager and is guarded by its mutex.
type Session struct {
	mu sync.Mutex

	UserID   string
	Username string
	FullName string

	State       State
	Topic       string
	Department  string
	FreeText    string
	PhotoRef    string
	LocationRef string

	LastActivity time.Time
}

func newSession(userID, username, fullName string, now time.Time) *Session {
	return &Session{
		UserID:       userID,
		Username:     username,
		FullName:     fullName,
		State:        StateSelectAction,
		LastActivity: now,
	}
}

// ticketGateway is the slice of the ticket lifecycle the dialog needs:
// submitting a finished intake and looking up a status by code.
type ticketGateway interface {
	Create(ctx context.Context, input service.TicketCreateInput) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
}

func isCancel(text string) bool {
	switch strings.TrimSpace(text) {
	case "/cancel", "❌ Завершить":
		return true
	}
	return false
}

func looksLikeCode(text string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(text)), "FM-")
}

// advance applies one input to the session and returns the replies to
// render. The caller holds the session lock.
func (s *Session) advance(ctx context.Context, tickets ticketGateway, deadline time.Duration, now time.Time, input Input) []string {
	if isCancel(input.Text) {
		s.State = StateCancelled
		return []string{msgCancelled}
	}

	switch s.State {
	case StateSelectAction:
		return s.onSelectAction(ctx, tickets, input)
	case StateChooseTopic:
		return s.onChooseTopic(input)
	case StateEnterText:
		return s.onEnterText(input)
	case StatePhoto:
		return s.onPhoto(input)
	case StateLocation:
		return s.onLocation(ctx, tickets, deadline, now, input)
	default:
		return []string{msgGreeting}
	}
}

func (s *Session) onSelectAction(ctx context.Context, tickets ticketGateway, input Input) []string {
	text := strings.ToLower(strings.TrimSpace(input.Text))
	switch {
	case strings.Contains(text, "жалоб"):
		s.State = StateChooseTopic
		return []string{topicPrompt()}
	case strings.Contains(text, "иде"):
		s.State = StateEnded
		return []string{msgIdeasUnavailable}
	case strings.Contains(text, "статус"):
		return []string{msgAskCode}
	case looksLikeCode(input.Text):
		return s.statusLookup(ctx, tickets, strings.TrimSpace(input.Text))
	default:
		return []string{msgPickAction}
	}
}

// statusLookup is read-only and terminal regardless of outcome.
func (s *Session) statusLookup(ctx context.Context, tickets ticketGateway, code string) []string {
	s.State = StateEnded
	ticket, err := tickets.GetByCode(ctx, code)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []string{msgStatusNotFound}
		}
		return []string{fmt.Sprintf("⚠️ Ошибка при запросе: %v", err)}
	}
	msg := fmt.Sprintf("📋 Статус обращения %s:\n\n🗂 Отдел: %s\n📄 Статус: %s\n📆 Срок: %s",
		ticket.Code, ticket.Department, ticket.Status, ticket.Deadline.Format("2006-01-02 15:04"))
	if ticket.Reply != nil && *ticket.Reply != "" {
		msg += fmt.Sprintf("\n💬 Ответ: %s", *ticket.Reply)
	}
	return []string{msg}
}

func (s *Session) onChooseTopic(input Input) []string {
	topic := strings.ToLower(strings.TrimSpace(input.Text))
	department, ok := departmentForTopic(topic)
	if !ok {
		return []string{msgPickTopic}
	}
	s.Topic = topic
	s.Department = department
	s.State = StateEnterText
	return []string{msgAskText}
}

func (s *Session) onEnterText(input Input) []string {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return []string{msgAskText}
	}
	s.FreeText = text
	s.State = StatePhoto
	return []string{msgAskPhoto}
}

func (s *Session) onPhoto(input Input) []string {
	switch {
	case strings.EqualFold(strings.TrimSpace(input.Text), skipToken):
		s.PhotoRef = ""
	case input.PhotoRef != "":
		s.PhotoRef = input.PhotoRef
	default:
		return []string{msgPhotoRetry}
	}
	s.State = StateLocation
	return []string{msgAskLocation}
}

func (s *Session) onLocation(ctx context.Context, tickets ticketGateway, deadline time.Duration, now time.Time, input Input) []string {
	switch {
	case input.Location != nil:
		s.LocationRef = input.Location.String()
	case strings.EqualFold(strings.TrimSpace(input.Text), skipToken):
		s.LocationRef = ""
	default:
		return []string{msgLocationRetry}
	}
	return s.submit(ctx, tickets, deadline, now)
}

// submit assembles the accumulated fields into a ticket payload and
// files it. A failed submission still terminates the dialog: the user
// must restart, there is no automatic retry.
func (s *Session) submit(ctx context.Context, tickets ticketGateway, deadline time.Duration, now time.Time) []string {
	content := fmt.Sprintf("[%s] %s", strings.ToUpper(s.Topic), s.FreeText)
	if s.PhotoRef != "" {
		content += fmt.Sprintf("\n📷 Фото: %s", s.PhotoRef)
	}
	if s.LocationRef != "" {
		content += fmt.Sprintf("\n📍 Геолокация: %s", s.LocationRef)
	}

	input := service.TicketCreateInput{
		Content:     content,
		Department:  s.Department,
		Deadline:    now.Add(deadline),
		Type:        domain.TicketTypeComplaint,
		SubmitterID: &s.UserID,
	}
	if s.FullName != "" {
		name := s.FullName
		input.SubmitterName = &name
	}
	if s.Username != "" {
		handle := s.Username
		input.SubmitterHandle = &handle
	}

	ticket, err := tickets.Create(ctx, input)
	if err != nil {
		s.State = StateEnded
		return []string{fmt.Sprintf("⚠️ Ошибка сервера: %v", err)}
	}
	s.State = StateSubmitted
	return []string{fmt.Sprintf("✅ Жалоба зарегистрирована.\nНомер: %s", ticket.Code)}
}
