package board

import (
	"slices"
)

// InteractionState is the transient UI-only selection state. The zero value
// is Idle.
type InteractionState struct {
	Selected string   `json:"selected,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

func (s InteractionState) Idle() bool { return s.Selected == "" }

// ClickSquare drives the square-click state machine. With a terminal
// snapshot every click is a no-op. A rejected move attempt leaves the
// selection untouched.
func (c *Controller) ClickSquare(square string) {
	if c.snapshot.Terminal() {
		return
	}

	_, side, occupied := c.engine.PieceAt(square)
	friendly := occupied && side == c.snapshot.Turn

	if c.interact.Idle() {
		if friendly {
			c.selectSquare(square)
		}
		return
	}

	switch {
	case square == c.interact.Selected:
		c.interact = InteractionState{}
	case slices.Contains(c.interact.Targets, square):
		// AttemptMove clears the selection on success and leaves it alone
		// on rejection.
		_, _ = c.AttemptMove(c.interact.Selected, square, "")
	case friendly:
		c.selectSquare(square)
	default:
		c.interact = InteractionState{}
	}
}

func (c *Controller) selectSquare(square string) {
	c.interact = InteractionState{
		Selected: square,
		Targets:  c.engine.LegalDestinations(square),
	}
}
