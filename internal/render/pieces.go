package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type spriteKey struct {
	piece nchess.Piece
	size  int
}

// spriteSet rasterizes the embedded SVG glyphs on demand and keeps the
// results, one bitmap per piece and size.
type spriteSet struct {
	mu      sync.Mutex
	sprites map[spriteKey]image.Image
}

func newSpriteSet() *spriteSet {
	return &spriteSet{sprites: make(map[spriteKey]image.Image)}
}

func (s *spriteSet) sprite(piece nchess.Piece, size int) (image.Image, error) {
	key := spriteKey{piece: piece, size: size}

	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.sprites[key]; ok {
		return img, nil
	}

	img, err := rasterizeGlyph(glyphFile(piece), size)
	if err != nil {
		return nil, err
	}
	s.sprites[key] = img
	return img, nil
}

func rasterizeGlyph(name string, size int) (image.Image, error) {
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece glyph %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece glyph %s: %w", name, err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}

func glyphFile(piece nchess.Piece) string {
	side := "w"
	if piece.Color() == nchess.Black {
		side = "b"
	}
	var kind string
	switch piece.Type() {
	case nchess.Pawn:
		kind = "p"
	case nchess.Knight:
		kind = "n"
	case nchess.Bishop:
		kind = "b"
	case nchess.Rook:
		kind = "r"
	case nchess.Queen:
		kind = "q"
	case nchess.King:
		kind = "k"
	}
	return fmt.Sprintf("assets/pieces/%s%s.svg", side, kind)
}
