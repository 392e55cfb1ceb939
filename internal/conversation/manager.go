package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/futuremakers/feedback-service/internal/observability"
)

// Manager owns one Session per active user. Sessions live only in
// process memory: a restart drops in-flight dialogs by design.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	tickets  ticketGateway
	logger   *zap.Logger
	metrics  *observability.Metrics
	ttl      time.Duration
	deadline time.Duration
	now      func() time.Time
}

// ManagerOptions configures the session manager.
type ManagerOptions struct {
	Tickets    ticketGateway
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	SessionTTL time.Duration
	Deadline   time.Duration
	Clock      func() time.Time
}

// NewManager constructs the manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		tickets:  opts.Tickets,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		ttl:      opts.SessionTTL,
		deadline: opts.Deadline,
		now:      opts.Clock,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.ttl <= 0 {
		m.ttl = 30 * time.Minute
	}
	if m.deadline <= 0 {
		m.deadline = 3 * 24 * time.Hour
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// entry-point phrases that reset an active session (last-write-wins).
func isEntryPoint(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "/start" || trimmed == "📨 Оставить жалобу"
}

// HandleMessage feeds one user turn through that user's session and
// returns the replies plus the resulting state. Different users
// progress independently; turns of one user serialize on the session.
func (m *Manager) HandleMessage(ctx context.Context, userID, username, fullName string, input Input) ([]string, State) {
	now := m.now()
	session := m.obtainSession(userID, username, fullName, now, input.Text)
	if isEntryPoint(input.Text) {
		// The entry point only (re)opens the dialog; the action choice
		// arrives on the next turn.
		return []string{msgGreeting}, StateSelectAction
	}

	session.mu.Lock()
	replies := session.advance(ctx, m.tickets, m.deadline, now, input)
	state := session.State
	session.mu.Unlock()

	if state.Terminal() {
		m.evict(userID)
		m.logger.Info("session ended",
			zap.String("user_id", userID),
			zap.String("state", string(state)))
	}
	return replies, state
}

// Cancel ends a user's session explicitly, discarding accumulated
// fields. Takes effect immediately.
func (m *Manager) Cancel(userID string) State {
	m.mu.Lock()
	session, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return StateCancelled
	}
	session.mu.Lock()
	session.State = StateCancelled
	session.mu.Unlock()
	m.evict(userID)
	return StateCancelled
}

// ActiveSessions reports the number of in-flight dialogs.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle removes sessions whose last activity exceeds the TTL.
func (m *Manager) EvictIdle() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	evicted := 0
	for userID, session := range m.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(m.sessions, userID)
			evicted++
		}
	}
	size := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		m.logger.Info("evicted idle sessions", zap.Int("count", evicted))
	}
	m.metrics.SetActiveSessions(size)
	return evicted
}

// obtainSession returns the user's session, creating or resetting it
// when absent, expired, or re-entered (last-write-wins, no merge).
// LastActivity bookkeeping stays here so it is only ever touched under
// the manager mutex.
func (m *Manager) obtainSession(userID, username, fullName string, now time.Time, text string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	expired := ok && session.LastActivity.Before(now.Add(-m.ttl))
	if !ok || expired || isEntryPoint(text) {
		session = newSession(userID, username, fullName, now)
		m.sessions[userID] = session
		m.metrics.SetActiveSessions(len(m.sessions))
		return session
	}
	session.LastActivity = now
	return session
}

func (m *Manager) evict(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	size := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(size)
}
