package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/board"
	"github.com/coachboard-dev/coachboard/internal/msgcat"
	"github.com/coachboard-dev/coachboard/internal/obslog"
)

const (
	fallbackPlaceholder = "The coach has nothing to say about this position right now."
	fallbackThinking    = "Coach is thinking..."
)

// Advisor produces coach commentary for a position. May be slow, may fail.
type Advisor interface {
	Analyze(ctx context.Context, fen string, historySAN []string) (string, error)
}

// Manager opens board sessions against the shared store and advisor.
type Manager struct {
	store   Store
	advisor Advisor
	catalog *msgcat.Catalog
	ttl     time.Duration
	logger  *zap.Logger
}

func NewManager(store Store, advisor Advisor, catalog *msgcat.Catalog, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	return &Manager{
		store:   store,
		advisor: advisor,
		catalog: catalog,
		ttl:     ttl,
		logger:  obslog.L(),
	}, nil
}

// Open attaches to the stored session with the given id, or creates a fresh
// one when the id is empty or unknown. The sink receives the session's
// feedback events.
func (m *Manager) Open(ctx context.Context, id string, sink board.Sink) (*Session, error) {
	id = strings.TrimSpace(id)
	s := &Session{
		ID:   id,
		ctrl: board.NewController(sink, m.logger),
		mgr:  m,
	}
	if id == "" {
		s.ID = uuid.NewString()
		m.logger.Info("session_open", zap.String("session_id", s.ID), zap.Bool("resumed", false))
		return s, nil
	}

	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec == nil {
		m.logger.Info("session_open", zap.String("session_id", s.ID), zap.Bool("resumed", false))
		return s, nil
	}
	if err := s.ctrl.Restore(rec.Moves); err != nil {
		// A record that no longer replays is discarded rather than surfaced.
		m.logger.Warn("session_restore_failed", zap.String("session_id", id), zap.Error(err))
		_ = m.store.Delete(ctx, id)
		return s, nil
	}
	s.muted = rec.Muted
	m.logger.Info("session_open",
		zap.String("session_id", s.ID),
		zap.Bool("resumed", true),
		zap.Int("plies", len(rec.Moves)),
	)
	return s, nil
}

func (m *Manager) placeholder() string {
	return m.message("advisor.unavailable", nil, fallbackPlaceholder)
}

func (m *Manager) thinkingText() string {
	return m.message("advisor.thinking", nil, fallbackThinking)
}

// statusFor renders the one-line game status shown above the board.
func (m *Manager) statusFor(snap board.GameSnapshot) string {
	switch {
	case snap.IsCheckmate:
		winner := titleSide(string(snap.Winner))
		return m.message("game.checkmate", map[string]string{"Winner": winner},
			fmt.Sprintf("Checkmate. %s wins.", winner))
	case snap.IsDraw:
		return m.message("game.draw", nil, "Draw.")
	case snap.IsCheck:
		side := titleSide(string(snap.Turn))
		return m.message("game.check", map[string]string{"Side": side},
			fmt.Sprintf("%s is in check.", side))
	case len(snap.History) == 0:
		return m.message("game.started", nil, "New game. White to move.")
	default:
		side := titleSide(string(snap.Turn))
		return m.message("status.turn", map[string]string{"Side": side},
			fmt.Sprintf("%s to move", side))
	}
}

func (m *Manager) message(key string, data any, def string) string {
	if m.catalog == nil {
		return def
	}
	text, err := m.catalog.Render(key, data)
	if err != nil || strings.TrimSpace(text) == "" {
		return def
	}
	return text
}

func titleSide(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
