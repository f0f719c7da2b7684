package board

import (
	"errors"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/rules"
)

var ErrGameOver = errors.New("game already over")

// Controller is the move orchestrator: it owns the rules engine, the derived
// snapshot, the transient interaction state and the advisory text. All
// mutations of game state flow through it, one at a time.
type Controller struct {
	engine   *rules.Engine
	snapshot GameSnapshot
	interact InteractionState
	advisory string
	sink     Sink
	logger   *zap.Logger
}

func NewController(sink Sink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := rules.NewEngine()
	return &Controller{
		engine:   engine,
		snapshot: BuildSnapshot(engine),
		sink:     sink,
		logger:   logger,
	}
}

// Restore replaces the game state with the given UCI move list, replayed
// from the starting position. Emits no feedback events.
func (c *Controller) Restore(moves []string) error {
	if err := c.engine.Replay(moves); err != nil {
		return err
	}
	c.snapshot = BuildSnapshot(c.engine)
	c.interact = InteractionState{}
	c.advisory = ""
	return nil
}

// Snapshot returns the current derived game state.
func (c *Controller) Snapshot() GameSnapshot { return c.snapshot }

// Interaction returns the current selection/highlight state.
func (c *Controller) Interaction() InteractionState { return c.interact }

// Advisory returns the current coach commentary, empty when absent or stale.
func (c *Controller) Advisory() string { return c.advisory }

// SetAdvisory installs coach commentary for the current position. The caller
// is responsible for dropping results that target an older position.
func (c *Controller) SetAdvisory(text string) {
	c.advisory = strings.TrimSpace(text)
}

// BoardView exposes the current board for rendering. Boards belong to
// immutable positions, so the returned value stays valid after later moves.
func (c *Controller) BoardView() *nchess.Board { return c.engine.Board() }

// MovesUCI returns the move list in the form the session store persists.
func (c *Controller) MovesUCI() []string { return c.engine.MovesUCI() }

// HistorySAN returns the move history in algebraic notation.
func (c *Controller) HistorySAN() []string { return c.engine.HistorySAN() }

// AttemptMove validates and applies a user-intended move. A rejected attempt
// mutates nothing and emits nothing. On success the snapshot is rebuilt, the
// selection and advisory text are cleared, and exactly one feedback event is
// emitted.
func (c *Controller) AttemptMove(from, to string, promotion rules.PieceKind) (rules.AppliedMove, error) {
	if c.snapshot.Terminal() {
		return rules.AppliedMove{}, ErrGameOver
	}
	if promotion == "" && c.engine.RequiresPromotion(from, to) {
		promotion = rules.Queen
	}
	res, err := c.engine.Apply(from, to, promotion)
	if err != nil {
		return rules.AppliedMove{}, err
	}

	c.snapshot = BuildSnapshot(c.engine)
	c.interact = InteractionState{}
	c.advisory = ""

	tag := Classify(res)
	c.play(tag)
	c.logger.Info("move_applied",
		zap.String("san", res.Move.SAN),
		zap.String("side", string(res.Move.Side)),
		zap.String("event", string(tag)),
		zap.Bool("terminal", c.snapshot.Terminal()),
	)
	return res.Move, nil
}

// UndoLastMove pops the most recent move. Undo is a neutral move event even
// when the undone move was a capture or a mate. No-op on empty history.
func (c *Controller) UndoLastMove() bool {
	if !c.engine.Undo() {
		return false
	}
	c.snapshot = BuildSnapshot(c.engine)
	c.interact = InteractionState{}
	c.advisory = ""
	c.play(EventMove)
	c.logger.Info("move_undone", zap.Int("plies", len(c.snapshot.History)))
	return true
}

// ResetGame discards all history and reinitializes the starting position.
func (c *Controller) ResetGame() {
	c.engine.Reset()
	c.snapshot = BuildSnapshot(c.engine)
	c.interact = InteractionState{}
	c.advisory = ""
	c.play(EventStart)
	c.logger.Info("game_reset")
}

func (c *Controller) play(tag EventTag) {
	if c.sink == nil {
		return
	}
	c.sink.Play(tag)
}
