package session

import (
	"context"
	"strings"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/board"
	"github.com/coachboard-dev/coachboard/internal/rules"
)

// View is the complete renderable state pushed to the client after every
// command.
type View struct {
	SessionID   string                 `json:"session_id"`
	Snapshot    board.GameSnapshot     `json:"snapshot"`
	Interaction board.InteractionState `json:"interaction"`
	Status      string                 `json:"status"`
	Advisory    string                 `json:"advisory,omitempty"`
	Thinking    bool                   `json:"thinking,omitempty"`
	Muted       bool                   `json:"muted"`
}

// Session serializes all interaction with one board. The controller and its
// state are owned by this mutex; the advisory request is the only work that
// runs outside it.
type Session struct {
	ID string

	mu           sync.Mutex
	ctrl         *board.Controller
	mgr          *Manager
	muted        bool
	thinking     bool
	pendingToken string
}

// View returns the current renderable state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	snap := s.ctrl.Snapshot()
	advisory := s.ctrl.Advisory()
	if s.thinking && advisory == "" {
		advisory = s.mgr.thinkingText()
	}
	return View{
		SessionID:   s.ID,
		Snapshot:    snap,
		Interaction: s.ctrl.Interaction(),
		Status:      s.mgr.statusFor(snap),
		Advisory:    advisory,
		Thinking:    s.thinking,
		Muted:       s.muted,
	}
}

// Click feeds one square click through the interaction state machine.
func (s *Session) Click(ctx context.Context, square string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.ctrl.Snapshot().History)
	s.ctrl.ClickSquare(square)
	if len(s.ctrl.Snapshot().History) != before {
		s.persistLocked(ctx)
	}
	return s.viewLocked()
}

// Move applies an explicit move, the programmatic twin of two clicks.
func (s *Session) Move(ctx context.Context, from, to, promotion string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ctrl.AttemptMove(from, to, promoKind(promotion)); err == nil {
		s.persistLocked(ctx)
	}
	return s.viewLocked()
}

// NewGame resets the board to the starting position.
func (s *Session) NewGame(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ResetGame()
	s.persistLocked(ctx)
	return s.viewLocked()
}

// Undo pops the latest move; a no-op with empty history.
func (s *Session) Undo(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl.UndoLastMove() {
		s.persistLocked(ctx)
	}
	return s.viewLocked()
}

// SetMuted toggles sound emission without touching game logic.
func (s *Session) SetMuted(ctx context.Context, muted bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	s.persistLocked(ctx)
	return s.viewLocked()
}

// Muted reports the persisted mute preference.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Board exposes the current board for the PNG renderer. The returned board
// belongs to an immutable position, so it stays valid after later moves.
func (s *Session) Board() *nchess.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.BoardView()
}

// Analyze issues the coach request for the current position. The request is
// bound to the position it was issued against: if the board changes before
// the result arrives, the text is discarded and only the thinking indicator
// is cleared. deliver is called once with the resulting view.
func (s *Session) Analyze(ctx context.Context, deliver func(View)) View {
	s.mu.Lock()
	if s.thinking || s.mgr.advisor == nil {
		defer s.mu.Unlock()
		return s.viewLocked()
	}
	fen := s.ctrl.Snapshot().FEN
	history := s.ctrl.HistorySAN()
	token := uuid.NewString()
	s.pendingToken = token
	s.thinking = true
	view := s.viewLocked()
	s.mu.Unlock()

	go func() {
		text, err := s.mgr.advisor.Analyze(ctx, fen, history)
		if err != nil || strings.TrimSpace(text) == "" {
			s.mgr.logger.Warn("advisory_unavailable", zap.String("session_id", s.ID), zap.Error(err))
			text = s.mgr.placeholder()
		}

		s.mu.Lock()
		if s.pendingToken != token {
			s.mu.Unlock()
			return
		}
		s.pendingToken = ""
		s.thinking = false
		if s.ctrl.Snapshot().FEN != fen {
			// The position moved on while the request was in flight; the
			// text describes a board that no longer exists.
			result := s.viewLocked()
			s.mu.Unlock()
			s.mgr.logger.Info("advisory_stale", zap.String("session_id", s.ID))
			if deliver != nil {
				deliver(result)
			}
			return
		}
		s.ctrl.SetAdvisory(text)
		result := s.viewLocked()
		s.mu.Unlock()
		if deliver != nil {
			deliver(result)
		}
	}()

	return view
}

func (s *Session) persistLocked(ctx context.Context) {
	rec := &Record{
		Moves:     s.ctrl.MovesUCI(),
		Muted:     s.muted,
		UpdatedAt: time.Now(),
	}
	if err := s.mgr.store.Save(ctx, s.ID, rec, s.mgr.ttl); err != nil {
		s.mgr.logger.Warn("session_persist_failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func promoKind(p string) rules.PieceKind {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "q", "r", "b", "n":
		return rules.PieceKind(strings.ToLower(strings.TrimSpace(p)))
	default:
		return ""
	}
}
