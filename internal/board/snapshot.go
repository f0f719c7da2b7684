package board

import (
	"github.com/coachboard-dev/coachboard/internal/rules"
)

// Winner is the snapshot's terminal-result marker: a side, "draw", or empty
// while the game is still running.
type Winner string

const WinnerDraw Winner = "draw"

// CapturedPieces lists, per color, the pieces that color has lost, in the
// order they came off the board.
type CapturedPieces struct {
	White []rules.PieceKind `json:"white"`
	Black []rules.PieceKind `json:"black"`
}

// GameSnapshot is a derived, immutable view of the whole game state.
// Consumers rebuild it after every mutation instead of patching fields.
type GameSnapshot struct {
	FEN         string              `json:"fen"`
	Turn        rules.Side          `json:"turn"`
	IsCheck     bool                `json:"is_check"`
	IsCheckmate bool                `json:"is_checkmate"`
	IsDraw      bool                `json:"is_draw"`
	Winner      Winner              `json:"winner,omitempty"`
	History     []rules.AppliedMove `json:"history"`
	Captured    CapturedPieces      `json:"captured"`
}

// Terminal reports whether no further moves are accepted.
func (s GameSnapshot) Terminal() bool {
	return s.IsCheckmate || s.IsDraw
}

// DeriveCaptures rescans the full move history and attributes every captured
// piece to the side opposite the mover. Recomputing from scratch keeps the
// multisets correct across undo.
func DeriveCaptures(history []rules.AppliedMove) CapturedPieces {
	var c CapturedPieces
	for _, m := range history {
		if m.Captured == "" {
			continue
		}
		switch m.Side {
		case rules.SideWhite:
			c.Black = append(c.Black, m.Captured)
		case rules.SideBlack:
			c.White = append(c.White, m.Captured)
		}
	}
	return c
}

// BuildSnapshot composes the engine queries into one renderable state value.
func BuildSnapshot(engine *rules.Engine) GameSnapshot {
	snap := GameSnapshot{
		FEN:         engine.FEN(),
		Turn:        engine.SideToMove(),
		IsCheck:     engine.InCheck(),
		IsCheckmate: engine.IsCheckmate(),
		IsDraw:      engine.IsDraw(),
		History:     engine.History(),
	}
	snap.Captured = DeriveCaptures(snap.History)
	switch {
	case snap.IsCheckmate:
		// Checkmate is detected after the mating move, so the side to move
		// is the loser.
		snap.Winner = Winner(snap.Turn.Opponent())
	case snap.IsDraw:
		snap.Winner = WinnerDraw
	}
	return snap
}
