package service

import (
	"context"
	"math"

	"github.com/futuremakers/feedback-service/internal/domain"
)

// TicketStats holds global status counts.
type TicketStats struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
}

// DepartmentStats holds per-department counts plus the mean allotted
// window of resolved tickets. The average deliberately measures
// deadline minus creation, not actual turnaround, matching the
// documented reporting formula.
type DepartmentStats struct {
	Total      int     `json:"total"`
	Done       int     `json:"done"`
	InProgress int     `json:"in_progress"`
	Overdue    int     `json:"overdue"`
	AvgHours   float64 `json:"avg_hours"`
}

// ticketLister is the read surface StatsService composes over.
type ticketLister interface {
	List(ctx context.Context) ([]domain.Ticket, error)
}

// StatsService is a stateless read-side view over the ticket lifecycle.
// Listing through TicketService means statuses are recomputed before
// aggregation.
type StatsService struct {
	tickets ticketLister
}

// NewStatsService constructs the aggregator.
func NewStatsService(tickets ticketLister) *StatsService {
	return &StatsService{tickets: tickets}
}

// Stats returns global counts over current statuses.
func (s *StatsService) Stats(ctx context.Context) (TicketStats, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return TicketStats{}, err
	}
	stats := TicketStats{Total: len(tickets)}
	for _, ticket := range tickets {
		switch ticket.Status {
		case domain.TicketStatusDone:
			stats.Done++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusOverdue:
			stats.Overdue++
		}
	}
	return stats, nil
}

// DetailedStats returns per-department counts and average hours.
func (s *StatsService) DetailedStats(ctx context.Context) (map[string]DepartmentStats, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]DepartmentStats)
	doneHours := make(map[string][]float64)

	for _, ticket := range tickets {
		entry := stats[ticket.Department]
		entry.Total++
		switch ticket.Status {
		case domain.TicketStatusDone:
			entry.Done++
			hours := ticket.Deadline.Sub(ticket.CreatedAt).Hours()
			doneHours[ticket.Department] = append(doneHours[ticket.Department], hours)
		case domain.TicketStatusInProgress:
			entry.InProgress++
		case domain.TicketStatusOverdue:
			entry.Overdue++
		}
		stats[ticket.Department] = entry
	}

	for dept, hours := range doneHours {
		var sum float64
		for _, h := range hours {
			sum += h
		}
		entry := stats[dept]
		entry.AvgHours = math.Round(sum/float64(len(hours))*10) / 10
		stats[dept] = entry
	}

	return stats, nil
}
