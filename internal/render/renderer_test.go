package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestRenderPNGStartPosition(t *testing.T) {
	r := NewRenderer()
	board := nchess.NewGame().Position().Board()

	data, err := r.RenderPNG(context.Background(), board, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	want := boardSize + 2*margin
	if b := img.Bounds(); b.Dx() != want || b.Dy() != want {
		t.Fatalf("image size = %dx%d, want %dx%d", b.Dx(), b.Dy(), want, want)
	}
}

func TestRenderPNGWithOverlays(t *testing.T) {
	r := NewRenderer()
	board := nchess.NewGame().Position().Board()

	plain, err := r.RenderPNG(context.Background(), board, Options{})
	if err != nil {
		t.Fatalf("plain render: %v", err)
	}
	decorated, err := r.RenderPNG(context.Background(), board, Options{
		LastFrom: "e2", LastTo: "e4",
		Selected: "d2", Targets: []string{"d3", "d4"},
	})
	if err != nil {
		t.Fatalf("decorated render: %v", err)
	}
	if bytes.Equal(plain, decorated) {
		t.Fatal("overlays should change the image")
	}
}

func TestRenderPNGNilBoard(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatal("nil board should error")
	}
}

func TestSpritesForAllPieces(t *testing.T) {
	sprites := newSpriteSet()
	board := nchess.NewGame().Position().Board()
	for file := 0; file < 8; file++ {
		for _, rank := range []int{0, 1, 6, 7} {
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			piece := board.Piece(sq)
			if piece == nchess.NoPiece {
				t.Fatalf("expected a piece on %s", sq)
			}
			if _, err := sprites.sprite(piece, 48); err != nil {
				t.Fatalf("sprite for %s: %v", sq, err)
			}
		}
	}
}
