package service

import (
	"context"
	"testing"
	"time"

	"github.com/futuremakers/feedback-service/internal/domain"
)

type staticLister struct {
	tickets []domain.Ticket
}

func (s *staticLister) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets, nil
}

func TestStats(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lister := &staticLister{tickets: []domain.Ticket{
		{Department: "ЖКХ", Status: domain.TicketStatusDone, CreatedAt: base, Deadline: base.Add(5 * time.Hour)},
		{Department: "ЖКХ", Status: domain.TicketStatusInProgress, CreatedAt: base, Deadline: base.Add(72 * time.Hour)},
		{Department: "Энергетика", Status: domain.TicketStatusOverdue, CreatedAt: base, Deadline: base.Add(time.Hour)},
	}}
	svc := NewStatsService(lister)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := TicketStats{Total: 3, Done: 1, InProgress: 1, Overdue: 1}
	if stats != want {
		t.Fatalf("Stats = %+v, want %+v", stats, want)
	}
}

func TestDetailedStats(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lister := &staticLister{tickets: []domain.Ticket{
		// One done ticket with a five-hour window: average must be 5.0.
		{Department: "ЖКХ", Status: domain.TicketStatusDone, CreatedAt: base, Deadline: base.Add(5 * time.Hour)},
		{Department: "ЖКХ", Status: domain.TicketStatusInProgress, CreatedAt: base, Deadline: base.Add(72 * time.Hour)},
		// No done tickets: average must be exactly 0.
		{Department: "Энергетика", Status: domain.TicketStatusOverdue, CreatedAt: base, Deadline: base.Add(time.Hour)},
	}}
	svc := NewStatsService(lister)

	stats, err := svc.DetailedStats(context.Background())
	if err != nil {
		t.Fatalf("DetailedStats: %v", err)
	}

	utilities := stats["ЖКХ"]
	if utilities.Total != 2 || utilities.Done != 1 || utilities.InProgress != 1 {
		t.Fatalf("ЖКХ counts = %+v", utilities)
	}
	if utilities.AvgHours != 5.0 {
		t.Fatalf("ЖКХ avg hours = %v, want 5.0", utilities.AvgHours)
	}

	energy := stats["Энергетика"]
	if energy.Total != 1 || energy.Overdue != 1 {
		t.Fatalf("Энергетика counts = %+v", energy)
	}
	if energy.AvgHours != 0 {
		t.Fatalf("Энергетика avg hours = %v, want 0", energy.AvgHours)
	}
}

func TestDetailedStatsRounding(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lister := &staticLister{tickets: []domain.Ticket{
		{Department: "ЖКХ", Status: domain.TicketStatusDone, CreatedAt: base, Deadline: base.Add(5 * time.Hour)},
		{Department: "ЖКХ", Status: domain.TicketStatusDone, CreatedAt: base, Deadline: base.Add(5*time.Hour + 10*time.Minute)},
	}}
	svc := NewStatsService(lister)

	stats, err := svc.DetailedStats(context.Background())
	if err != nil {
		t.Fatalf("DetailedStats: %v", err)
	}
	// (5.0 + 5.1667) / 2 = 5.0833 -> 5.1 at one decimal.
	if got := stats["ЖКХ"].AvgHours; got != 5.1 {
		t.Fatalf("avg hours = %v, want 5.1", got)
	}
}
