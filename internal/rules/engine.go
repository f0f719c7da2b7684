package rules

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var ErrIllegalMove = errors.New("illegal move")

// Side identifies a chess color.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// PieceKind is a lowercase piece letter: p n b r q k.
type PieceKind string

const (
	Pawn   PieceKind = "p"
	Knight PieceKind = "n"
	Bishop PieceKind = "b"
	Rook   PieceKind = "r"
	Queen  PieceKind = "q"
	King   PieceKind = "k"
)

// AppliedMove is the immutable record of one committed move.
type AppliedMove struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
	Piece     PieceKind `json:"piece"`
	Side      Side      `json:"side"`
	Captured  PieceKind `json:"captured,omitempty"`
	SAN       string    `json:"san"`
}

// UCI returns the move in coordinate notation, e.g. "e7e8q".
func (m AppliedMove) UCI() string {
	return m.From + m.To + string(m.Promotion)
}

// MoveResult carries the metadata of a successfully applied move.
type MoveResult struct {
	Move           AppliedMove
	IsCheck        bool
	IsCheckmate    bool
	IsStalemate    bool
	IsInsufficient bool
	IsRepetition   bool
	IsFiftyMove    bool
}

// IsDraw reports whether any checkmate-independent draw condition holds.
func (r MoveResult) IsDraw() bool {
	return r.IsStalemate || r.IsInsufficient || r.IsRepetition || r.IsFiftyMove
}

// Engine wraps corentings/chess/v2 as the authoritative rules engine. The
// position is mutated only through Apply, Undo and Reset; undo is done the
// same way the move list is persisted: trim the UCI list and replay from the
// starting position.
type Engine struct {
	game    *nchess.Game
	moves   []string
	history []AppliedMove
}

func NewEngine() *Engine {
	return &Engine{game: nchess.NewGame()}
}

// Reset reinitializes the engine to the standard starting position.
func (e *Engine) Reset() {
	e.game = nchess.NewGame()
	e.moves = nil
	e.history = nil
}

// ParseSquare converts a square id like "e4" to a library square.
func ParseSquare(s string) (nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return nchess.NoSquare, false
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return nchess.NoSquare, false
	}
	return nchess.Square(int(rank-'1')*8 + int(file-'a')), true
}

// LegalDestinations returns the sorted destination square ids reachable from
// the given square in the current position.
func (e *Engine) LegalDestinations(square string) []string {
	from, ok := ParseSquare(square)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, m := range e.game.Position().ValidMoves() {
		if m.S1() == from {
			seen[m.S2().String()] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for sq := range seen {
		out = append(out, sq)
	}
	sort.Strings(out)
	return out
}

// PieceAt reports the piece kind and side on a square.
func (e *Engine) PieceAt(square string) (PieceKind, Side, bool) {
	sq, ok := ParseSquare(square)
	if !ok {
		return "", "", false
	}
	piece := e.game.Position().Board().Piece(sq)
	if piece == nchess.NoPiece {
		return "", "", false
	}
	return kindOf(piece.Type()), sideOf(piece.Color()), true
}

// RequiresPromotion reports whether moving from→to is a pawn reaching the
// last rank, i.e. a move that cannot be applied without a promotion choice.
func (e *Engine) RequiresPromotion(from, to string) bool {
	fromSq, ok := ParseSquare(from)
	if !ok {
		return false
	}
	toSq, ok := ParseSquare(to)
	if !ok {
		return false
	}
	piece := e.game.Position().Board().Piece(fromSq)
	if piece == nchess.NoPiece || piece.Type() != nchess.Pawn {
		return false
	}
	if piece.Color() == nchess.White && toSq.Rank() == nchess.Rank8 {
		return true
	}
	if piece.Color() == nchess.Black && toSq.Rank() == nchess.Rank1 {
		return true
	}
	return false
}

// Apply validates and applies a move. On success it appends to the history
// and returns the move's result metadata; on failure the position is
// untouched and ErrIllegalMove is returned.
func (e *Engine) Apply(from, to string, promotion PieceKind) (MoveResult, error) {
	fromSq, ok := ParseSquare(from)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: bad origin %q", ErrIllegalMove, from)
	}
	toSq, ok := ParseSquare(to)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: bad destination %q", ErrIllegalMove, to)
	}

	uci := fromSq.String() + toSq.String() + string(promotion)
	pos := e.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	board := pos.Board()
	moving := board.Piece(fromSq)
	if moving == nchess.NoPiece {
		return MoveResult{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from)
	}

	// Tags are authoritative on the generated legal moves, not on a decoded
	// move, so match against them before applying.
	var legal, isCapture, isEnPassant bool
	for _, valid := range pos.ValidMoves() {
		if valid.String() != uci {
			continue
		}
		legal = true
		isCapture = valid.HasTag(nchess.Capture)
		isEnPassant = valid.HasTag(nchess.EnPassant)
		break
	}
	if !legal {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	// Capture target must be read before the move mutates the board. En
	// passant removes the pawn behind the destination square.
	var captured PieceKind
	if isCapture || isEnPassant {
		captureSq := toSq
		if isEnPassant {
			if pos.Turn() == nchess.White {
				captureSq = nchess.NewSquare(toSq.File(), toSq.Rank()-1)
			} else {
				captureSq = nchess.NewSquare(toSq.File(), toSq.Rank()+1)
			}
		}
		if taken := board.Piece(captureSq); taken != nchess.NoPiece {
			captured = kindOf(taken.Type())
		}
	}

	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	mover := sideOf(pos.Turn())

	if err := e.game.Move(mv, nil); err != nil {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	applied := AppliedMove{
		From:      fromSq.String(),
		To:        toSq.String(),
		Promotion: promotion,
		Piece:     kindOf(moving.Type()),
		Side:      mover,
		Captured:  captured,
		SAN:       san,
	}
	e.moves = append(e.moves, uci)
	e.history = append(e.history, applied)

	res := MoveResult{
		Move:        applied,
		IsCheck:     e.InCheck(),
		IsCheckmate: e.game.Position().Status() == nchess.Checkmate,
	}
	e.fillDrawState(&res)
	return res, nil
}

// Undo pops the most recent move and replays the remainder from the start
// position. Returns false when there is nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.moves) == 0 {
		return false
	}
	e.moves = e.moves[:len(e.moves)-1]
	e.history = e.history[:len(e.history)-1]
	game, err := replay(e.moves)
	if err != nil {
		// History was produced by Apply, so a replay failure means the
		// engine state is corrupt; start over rather than limp on.
		e.Reset()
		return false
	}
	e.game = game
	return true
}

// Replay discards the current state and applies the given UCI moves from the
// starting position. Used to reattach a stored session.
func (e *Engine) Replay(moves []string) error {
	game := nchess.NewGame()
	fresh := &Engine{game: game}
	for _, uci := range moves {
		uci = strings.ToLower(strings.TrimSpace(uci))
		if len(uci) < 4 {
			return fmt.Errorf("replay move %q: %w", uci, ErrIllegalMove)
		}
		var promo PieceKind
		if len(uci) > 4 {
			promo = PieceKind(uci[4:5])
		}
		if _, err := fresh.Apply(uci[:2], uci[2:4], promo); err != nil {
			return fmt.Errorf("replay move %s: %w", uci, err)
		}
	}
	*e = *fresh
	return nil
}

func replay(moves []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	for _, uci := range moves {
		mv, err := nchess.UCINotation{}.Decode(game.Position(), uci)
		if err != nil {
			return nil, fmt.Errorf("decode move %s: %w", uci, err)
		}
		if err := game.Move(mv, nil); err != nil {
			return nil, fmt.Errorf("apply move %s: %w", uci, err)
		}
	}
	return game, nil
}

// FEN serializes the authoritative position.
func (e *Engine) FEN() string { return e.game.FEN() }

// Board exposes the current board for rendering.
func (e *Engine) Board() *nchess.Board { return e.game.Position().Board() }

// SideToMove returns the color on the move.
func (e *Engine) SideToMove() Side { return sideOf(e.game.Position().Turn()) }

// InCheck reports whether the side to move is in check.
func (e *Engine) InCheck() bool {
	moves := e.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(nchess.Check)
}

// IsCheckmate reports whether the side to move is checkmated.
func (e *Engine) IsCheckmate() bool {
	return e.game.Position().Status() == nchess.Checkmate
}

// IsDraw reports the union of the recognized draw conditions: stalemate,
// insufficient material, threefold repetition and the fifty-move rule.
func (e *Engine) IsDraw() bool {
	var res MoveResult
	e.fillDrawState(&res)
	return res.IsDraw()
}

// History returns a copy of the committed move records, oldest first.
func (e *Engine) History() []AppliedMove {
	return append([]AppliedMove(nil), e.history...)
}

// HistorySAN returns the move history in algebraic notation.
func (e *Engine) HistorySAN() []string {
	out := make([]string, len(e.history))
	for i, m := range e.history {
		out[i] = m.SAN
	}
	return out
}

// MovesUCI returns the move history in coordinate notation, the form the
// session store persists.
func (e *Engine) MovesUCI() []string {
	return append([]string(nil), e.moves...)
}

func (e *Engine) fillDrawState(res *MoveResult) {
	pos := e.game.Position()
	res.IsStalemate = pos.Status() == nchess.Stalemate
	res.IsInsufficient = insufficientMaterial(pos.Board())
	res.IsRepetition = e.repetitionCount() >= 3
	res.IsFiftyMove = halfmoveClock(e.game.FEN()) >= 100
	// The library auto-draws fivefold repetition and the 75-move rule; fold
	// those into the repetition/fifty flags they extend.
	if e.game.Outcome() == nchess.Draw {
		if !res.IsStalemate && !res.IsInsufficient && !res.IsFiftyMove {
			res.IsRepetition = true
		}
	}
}

// repetitionCount counts how often the current position (piece placement,
// side to move, castling and en passant rights) has occurred.
func (e *Engine) repetitionCount() int {
	positions := e.game.Positions()
	if len(positions) == 0 {
		return 0
	}
	current := repetitionKey(positions[len(positions)-1].String())
	count := 0
	for _, pos := range positions {
		if repetitionKey(pos.String()) == current {
			count++
		}
	}
	return count
}

// repetitionKey strips the halfmove and fullmove counters from a FEN.
func repetitionKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}

func halfmoveClock(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return n
}

// insufficientMaterial covers the dead positions neither side can win: bare
// kings, king+minor vs king, and same-colored bishops only.
func insufficientMaterial(board *nchess.Board) bool {
	type minor struct {
		bishop      bool
		lightSquare bool
	}
	var minors []minor
	for sq := nchess.Square(0); sq <= nchess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == nchess.NoPiece {
			continue
		}
		switch piece.Type() {
		case nchess.King:
		case nchess.Knight:
			minors = append(minors, minor{})
		case nchess.Bishop:
			light := (int(sq.File())+int(sq.Rank()))%2 == 1
			minors = append(minors, minor{bishop: true, lightSquare: light})
		default:
			return false
		}
		if len(minors) > 2 {
			return false
		}
	}
	switch len(minors) {
	case 0, 1:
		return true
	case 2:
		return minors[0].bishop && minors[1].bishop && minors[0].lightSquare == minors[1].lightSquare
	default:
		return false
	}
}

func kindOf(t nchess.PieceType) PieceKind {
	switch t {
	case nchess.Pawn:
		return Pawn
	case nchess.Knight:
		return Knight
	case nchess.Bishop:
		return Bishop
	case nchess.Rook:
		return Rook
	case nchess.Queen:
		return Queen
	case nchess.King:
		return King
	default:
		return ""
	}
}

func sideOf(c nchess.Color) Side {
	if c == nchess.White {
		return SideWhite
	}
	return SideBlack
}
