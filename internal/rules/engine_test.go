package rules

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func engineFromFEN(t *testing.T, fen string) *Engine {
	t.Helper()
	option, err := nchess.FEN(fen)
	if err != nil {
		t.Fatalf("parse fen %q: %v", fen, err)
	}
	return &Engine{game: nchess.NewGame(option)}
}

func apply(t *testing.T, e *Engine, moves ...string) MoveResult {
	t.Helper()
	var res MoveResult
	var err error
	for _, uci := range moves {
		var promo PieceKind
		if len(uci) > 4 {
			promo = PieceKind(uci[4:5])
		}
		res, err = e.Apply(uci[:2], uci[2:4], promo)
		if err != nil {
			t.Fatalf("apply %s: %v", uci, err)
		}
	}
	return res
}

func TestLegalDestinationsFromStart(t *testing.T) {
	e := NewEngine()
	dests := e.LegalDestinations("e2")
	if len(dests) != 2 || dests[0] != "e3" || dests[1] != "e4" {
		t.Fatalf("e2 destinations = %v, want [e3 e4]", dests)
	}
	if got := e.LegalDestinations("e5"); got != nil {
		t.Fatalf("empty square destinations = %v, want nil", got)
	}
	if got := e.LegalDestinations("z9"); got != nil {
		t.Fatalf("bad square destinations = %v, want nil", got)
	}
}

func TestApplyUpdatesState(t *testing.T) {
	e := NewEngine()
	res := apply(t, e, "e2e4")
	if res.Move.SAN != "e4" {
		t.Fatalf("SAN = %q, want e4", res.Move.SAN)
	}
	if res.Move.Side != SideWhite || res.Move.Piece != Pawn {
		t.Fatalf("unexpected move record: %+v", res.Move)
	}
	if e.SideToMove() != SideBlack {
		t.Fatalf("side to move = %s, want black", e.SideToMove())
	}
	if got := e.MovesUCI(); len(got) != 1 || got[0] != "e2e4" {
		t.Fatalf("moves = %v", got)
	}
}

func TestIllegalMoveLeavesPositionUntouched(t *testing.T) {
	e := NewEngine()
	before := e.FEN()
	_, err := e.Apply("e2", "e5", "")
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if e.FEN() != before {
		t.Fatalf("position changed by rejected move:\n%s\n%s", before, e.FEN())
	}
	if len(e.History()) != 0 {
		t.Fatalf("history grew on rejected move")
	}
}

func TestUndo(t *testing.T) {
	e := NewEngine()
	if e.Undo() {
		t.Fatal("undo on empty history should be a no-op")
	}
	apply(t, e, "e2e4")
	afterFirst := e.FEN()
	apply(t, e, "e7e5")
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.FEN() != afterFirst {
		t.Fatalf("undo FEN = %s, want %s", e.FEN(), afterFirst)
	}
	if got := e.MovesUCI(); len(got) != 1 {
		t.Fatalf("moves after undo = %v", got)
	}
}

func TestCaptureMetadata(t *testing.T) {
	e := NewEngine()
	res := apply(t, e, "e2e4", "d7d5", "e4d5")
	if res.Move.Captured != Pawn {
		t.Fatalf("captured = %q, want pawn", res.Move.Captured)
	}
	if res.Move.SAN != "exd5" {
		t.Fatalf("SAN = %q, want exd5", res.Move.SAN)
	}
}

func TestEnPassantCapture(t *testing.T) {
	e := NewEngine()
	res := apply(t, e, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")
	if res.Move.Captured != Pawn {
		t.Fatalf("en passant captured = %q, want pawn", res.Move.Captured)
	}
}

func TestScholarsMate(t *testing.T) {
	e := NewEngine()
	res := apply(t, e, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7")
	if !res.IsCheckmate {
		t.Fatal("expected checkmate")
	}
	if res.Move.Captured != Pawn {
		t.Fatalf("mating move captured = %q, want pawn", res.Move.Captured)
	}
	if !e.IsCheckmate() {
		t.Fatal("engine should report checkmate")
	}
}

func TestCheckFlag(t *testing.T) {
	e := NewEngine()
	res := apply(t, e, "e2e4", "f7f6", "d1h5")
	if !res.IsCheck {
		t.Fatal("Qh5+ should be check")
	}
	if res.IsCheckmate {
		t.Fatal("Qh5+ is not mate")
	}
}

func TestPromotion(t *testing.T) {
	e := NewEngine()
	apply(t, e, "a2a4", "b7b5", "a4b5", "a7a6", "b5a6", "c8b7", "a6b7", "b8a6")
	if !e.RequiresPromotion("b7", "a8") {
		t.Fatal("b7a8 should require a promotion choice")
	}
	if e.RequiresPromotion("e2", "e4") {
		t.Fatal("e2e4 is not a promotion")
	}
	res := apply(t, e, "b7a8q")
	if res.Move.Promotion != Queen {
		t.Fatalf("promotion = %q, want queen", res.Move.Promotion)
	}
	if res.Move.Captured != Rook {
		t.Fatalf("captured = %q, want rook", res.Move.Captured)
	}
}

func TestThreefoldRepetition(t *testing.T) {
	e := NewEngine()
	res := apply(t, e,
		"g1f3", "g8f6", "f3g1", "f6g8",
		"g1f3", "g8f6", "f3g1", "f6g8",
	)
	if !res.IsRepetition {
		t.Fatal("expected threefold repetition")
	}
	if !e.IsDraw() {
		t.Fatal("engine should report draw")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want bool
	}{
		{"bare kings", "8/8/8/4k3/8/8/4K3/8 w - - 0 1", true},
		{"king and bishop vs king", "8/8/8/4k3/8/1B6/4K3/8 w - - 0 1", true},
		{"king and knight vs king", "8/8/8/4k3/8/1N6/4K3/8 w - - 0 1", true},
		{"same-colored bishops", "8/8/8/4k3/5b2/8/4K3/2B5 w - - 0 1", true},
		{"opposite-colored bishops", "8/8/8/4k3/4b3/8/4K3/2B5 w - - 0 1", false},
		{"two knights", "8/8/8/4k3/8/N1N5/4K3/8 w - - 0 1", false},
		{"rook on the board", "8/8/8/4k3/8/8/4K3/R7 w - - 0 1", false},
		{"pawn on the board", "8/8/8/4k3/4p3/8/4K3/8 w - - 0 1", false},
	}
	for _, tc := range cases {
		e := engineFromFEN(t, tc.fen)
		if got := insufficientMaterial(e.Board()); got != tc.want {
			t.Errorf("%s: insufficientMaterial = %v, want %v", tc.name, got, tc.want)
		}
		if got := e.IsDraw(); got != tc.want {
			t.Errorf("%s: IsDraw = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStalematePosition(t *testing.T) {
	e := engineFromFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if !e.IsDraw() {
		t.Fatal("stalemate should be a draw")
	}
	if e.IsCheckmate() {
		t.Fatal("stalemate is not checkmate")
	}
}

func TestStalemateByPlay(t *testing.T) {
	// The shortest known stalemate game (Sam Loyd).
	e := NewEngine()
	res := apply(t, e,
		"c2c4", "h7h5", "h2h4", "a7a5", "d1a4", "a8a6",
		"a4a5", "a6h6", "a5c7", "f7f6", "c7d7", "e8f7",
		"d7b7", "d8d3", "b7b8", "d3h7", "b8c8", "f7g6",
		"c8e6",
	)
	if !res.IsStalemate {
		t.Fatal("final position should be stalemate")
	}
	if res.IsCheckmate || res.IsCheck {
		t.Fatalf("stalemate flags wrong: %+v", res)
	}
	if !e.IsDraw() {
		t.Fatal("engine should report draw")
	}
}

func TestReplayRoundTrip(t *testing.T) {
	e := NewEngine()
	apply(t, e, "e2e4", "e7e5", "g1f3")
	want := e.FEN()

	fresh := NewEngine()
	if err := fresh.Replay(e.MovesUCI()); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if fresh.FEN() != want {
		t.Fatalf("replay FEN = %s, want %s", fresh.FEN(), want)
	}
	if len(fresh.History()) != 3 {
		t.Fatalf("replay history = %d moves, want 3", len(fresh.History()))
	}
}

func TestReplayRejectsGarbage(t *testing.T) {
	e := NewEngine()
	apply(t, e, "e2e4")
	if err := e.Replay([]string{"e2e4", "zzzz"}); err == nil {
		t.Fatal("garbage move should fail replay")
	}
}

func TestHalfmoveClock(t *testing.T) {
	if got := halfmoveClock("8/8/8/8/8/8/8/K6k w - - 100 72"); got != 100 {
		t.Fatalf("halfmove clock = %d, want 100", got)
	}
	if got := halfmoveClock("bogus"); got != 0 {
		t.Fatalf("bad FEN clock = %d, want 0", got)
	}
}

func TestRepetitionKeyStripsCounters(t *testing.T) {
	a := repetitionKey("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	b := repetitionKey("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 4 3")
	if a != b {
		t.Fatalf("keys differ:\n%s\n%s", a, b)
	}
}
