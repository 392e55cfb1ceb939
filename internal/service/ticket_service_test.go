package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/futuremakers/feedback-service/internal/domain"
	"github.com/futuremakers/feedback-service/internal/repository"
	"github.com/futuremakers/feedback-service/internal/ticketcode"
	"github.com/futuremakers/feedback-service/pkg/apperrors"
)

type memoryTicketRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Ticket
	idByCode map[string]string
	seq      int
	clock    func() time.Time

	createErr error
	updateErr error
}

func newMemoryTicketRepo(clock func() time.Time) *memoryTicketRepo {
	return &memoryTicketRepo{
		byID:     make(map[string]*domain.Ticket),
		idByCode: make(map[string]string),
		clock:    clock,
	}
}

func (m *memoryTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, taken := m.idByCode[ticket.Code]; taken {
		return repository.ErrCodeTaken
	}
	m.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", m.seq)
	ticket.CreatedAt = m.clock()
	copied := *ticket
	m.byID[ticket.ID] = &copied
	m.idByCode[ticket.Code] = ticket.ID
	return nil
}

func (m *memoryTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	m.byID[ticket.ID] = &copied
	return nil
}

func (m *memoryTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (m *memoryTicketRepo) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.idByCode[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *m.byID[id]
	return &copied, nil
}

func (m *memoryTicketRepo) List(ctx context.Context) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Ticket, 0, len(m.byID))
	for _, ticket := range m.byID {
		result = append(result, *ticket)
	}
	return result, nil
}

func (m *memoryTicketRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	delete(m.idByCode, ticket.Code)
	delete(m.byID, id)
	return true, nil
}

type memoryResponseRepo struct {
	mu       sync.Mutex
	tickets  *memoryTicketRepo
	byTicket map[string][]domain.Response
	seq      int
	clock    func() time.Time

	recordErr error
}

func newMemoryResponseRepo(tickets *memoryTicketRepo, clock func() time.Time) *memoryResponseRepo {
	return &memoryResponseRepo{
		tickets:  tickets,
		byTicket: make(map[string][]domain.Response),
		clock:    clock,
	}
}

// Record mirrors the transactional store contract: the response and the
// denormalized ticket reply land together or not at all.
func (m *memoryResponseRepo) Record(ctx context.Context, response *domain.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.seq++
	response.ID = fmt.Sprintf("response-%d", m.seq)
	response.SentAt = m.clock()
	m.byTicket[response.TicketID] = append(m.byTicket[response.TicketID], *response)

	m.tickets.mu.Lock()
	if ticket, ok := m.tickets.byID[response.TicketID]; ok {
		text := response.Text
		ticket.Reply = &text
	}
	m.tickets.mu.Unlock()
	return nil
}

func (m *memoryResponseRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Response{}, m.byTicket[ticketID]...), nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(clock func() time.Time) (*TicketService, *memoryTicketRepo, *memoryResponseRepo) {
	tickets := newMemoryTicketRepo(clock)
	responses := newMemoryResponseRepo(tickets, clock)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		ResponseRepo: responses,
		Clock:        clock,
	})
	return svc, tickets, responses
}

func TestCreateAssignsUniqueWellFormedCodes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ticket, err := svc.Create(context.Background(), TicketCreateInput{
			Content:  fmt.Sprintf("обращение %d", i),
			Deadline: now.Add(72 * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !ticketcode.Valid(ticket.Code) {
			t.Fatalf("code %q does not match the public format", ticket.Code)
		}
		if seen[ticket.Code] {
			t.Fatalf("duplicate code %q issued", ticket.Code)
		}
		seen[ticket.Code] = true
		if ticket.Status != domain.TicketStatusInProgress {
			t.Fatalf("new ticket status = %q, want in_progress", ticket.Status)
		}
		if ticket.Type != domain.TicketTypeComplaint {
			t.Fatalf("default type = %q, want complaint", ticket.Type)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	if _, err := svc.Create(context.Background(), TicketCreateInput{Content: "  ", Deadline: now}); err == nil {
		t.Fatal("expected validation error for empty content")
	}
	if _, err := svc.Create(context.Background(), TicketCreateInput{Content: "текст"}); err == nil {
		t.Fatal("expected validation error for missing deadline")
	}
}

func TestCreateDerivesDepartmentFromContent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "во дворе не вывозят мусор",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Department != "ЖКХ" {
		t.Fatalf("derived department = %q, want ЖКХ", ticket.Department)
	}

	fallback, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "просто жалуюсь",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fallback.Department != "Общие обращения" {
		t.Fatalf("fallback department = %q, want Общие обращения", fallback.Department)
	}
}

func TestCreateCodeExhaustion(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, tickets, _ := newTestService(fixedClock(now))
	tickets.createErr = repository.ErrCodeTaken

	_, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "текст",
		Deadline: now.Add(72 * time.Hour),
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CODE_EXHAUSTED" {
		t.Fatalf("err = %v, want CODE_EXHAUSTED", err)
	}
}

func TestCreatePropagatesStoreError(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, tickets, _ := newTestService(fixedClock(now))
	tickets.createErr = errors.New("connection reset")

	_, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "текст",
		Deadline: now.Add(72 * time.Hour),
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "STORE_ERROR" {
		t.Fatalf("err = %v, want STORE_ERROR", err)
	}
}

func TestListRecomputesAndPersistsOverdue(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	clock := func() time.Time { return current }
	svc, _, _ := newTestService(clock)

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "вода пропала",
		Deadline: start.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Before the deadline nothing changes.
	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].Status != domain.TicketStatusInProgress {
		t.Fatalf("status before deadline = %q", listed[0].Status)
	}

	current = start.Add(48 * time.Hour)
	listed, err = svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].Status != domain.TicketStatusOverdue {
		t.Fatalf("status after deadline = %q, want overdue", listed[0].Status)
	}

	// The flip is persisted: a direct read shows overdue too.
	got, err := svc.GetByCode(context.Background(), ticket.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Status != domain.TicketStatusOverdue {
		t.Fatalf("persisted status = %q, want overdue", got.Status)
	}
}

func TestGetByCodeReadRepairsOverdue(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	clock := func() time.Time { return current }
	svc, tickets, _ := newTestService(clock)

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "не горит освещение",
		Deadline: start.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A direct code lookup, with no List in between, must both return
	// and persist the derived overdue status.
	current = start.Add(48 * time.Hour)
	got, err := svc.GetByCode(context.Background(), ticket.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Status != domain.TicketStatusOverdue {
		t.Fatalf("returned status = %q, want overdue", got.Status)
	}

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.TicketStatusOverdue {
		t.Fatalf("persisted status = %q, want overdue", stored.Status)
	}
}

func TestDoneNeverRevertsToOverdue(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	clock := func() time.Time { return current }
	svc, _, _ := newTestService(clock)

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "разбитая дорога",
		Deadline: start.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusDone, false); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	current = start.Add(100 * time.Hour)
	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].Status != domain.TicketStatusDone {
		t.Fatalf("done ticket reverted to %q", listed[0].Status)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "освещение не работает",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// overdue is reachable from in_progress, and a late resolution is
	// still allowed.
	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusOverdue, false); err != nil {
		t.Fatalf("in_progress -> overdue: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusDone, false); err != nil {
		t.Fatalf("overdue -> done: %v", err)
	}

	// done is terminal without a forced override.
	_, err = svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, false)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("done -> in_progress = %v, want CONFLICT", err)
	}

	// The moderator override remains available.
	updated, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, true)
	if err != nil {
		t.Fatalf("forced override: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("forced status = %q", updated.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, "archived", false); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	if _, err := svc.UpdateStatus(context.Background(), "missing", domain.TicketStatusDone, false); !apperrors.IsNotFound(err) {
		t.Fatalf("missing ticket err = %v, want not found", err)
	}
}

func TestRecordReply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "интернет пропал",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	response, err := svc.RecordReply(context.Background(), ticket.ID, "Работы завершим завтра", "")
	if err != nil {
		t.Fatalf("RecordReply: %v", err)
	}
	if response.SentBy != domain.DefaultModeratorName {
		t.Fatalf("SentBy = %q, want default moderator label", response.SentBy)
	}

	got, err := svc.Get(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Reply == nil || *got.Reply != "Работы завершим завтра" {
		t.Fatalf("denormalized reply = %v", got.Reply)
	}
	if len(got.Responses) != 1 || got.Responses[0].Text != "Работы завершим завтра" {
		t.Fatalf("responses = %+v", got.Responses)
	}

	// Reply does not change status.
	if got.Status != domain.TicketStatusInProgress {
		t.Fatalf("status after reply = %q", got.Status)
	}

	if _, err := svc.RecordReply(context.Background(), "missing", "текст", ""); !apperrors.IsNotFound(err) {
		t.Fatalf("missing ticket err = %v, want not found", err)
	}
	if _, err := svc.RecordReply(context.Background(), ticket.ID, "  ", ""); err == nil {
		t.Fatal("expected validation error for empty reply")
	}
}

func TestRecordReplyFailureLeavesNoTrace(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, responses := newTestService(fixedClock(now))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "яма во дворе",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	responses.recordErr = errors.New("connection reset")
	_, err = svc.RecordReply(context.Background(), ticket.ID, "Починим", "")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "STORE_ERROR" {
		t.Fatalf("err = %v, want STORE_ERROR", err)
	}

	got, err := svc.Get(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Reply != nil {
		t.Fatalf("denormalized reply = %v, want none after a failed recording", got.Reply)
	}
	if len(got.Responses) != 0 {
		t.Fatalf("responses = %+v, want none after a failed recording", got.Responses)
	}
}

func TestGetByCodeNotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	_, err := svc.GetByCode(context.Background(), "FM-2025-0001")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(fixedClock(now))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Content:  "экология во дворе",
		Deadline: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), ticket.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), ticket.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}
