package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/coachboard-dev/coachboard/internal/obslog"
	"github.com/coachboard-dev/coachboard/internal/rules"
)

const (
	squareSize    = 72
	margin        = 22
	boardSize     = squareSize * 8
	pieceDrawSize = 62
)

var (
	lightSquare  = color.NRGBA{R: 0xEE, G: 0xE0, B: 0xC8, A: 0xFF}
	darkSquare   = color.NRGBA{R: 0xA6, G: 0x7B, B: 0x5B, A: 0xFF}
	frameColor   = color.NRGBA{R: 0x3A, G: 0x2E, B: 0x24, A: 0xFF}
	labelColor   = color.NRGBA{R: 0xE8, G: 0xDC, B: 0xC8, A: 0xFF}
	selectedTint = color.NRGBA{R: 0x3C, G: 0x96, B: 0x4B, A: 0x78}
	targetTint   = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0x46}
	lastMoveTint = color.NRGBA{R: 0xE8, G: 0xC5, B: 0x32, A: 0x5A}
	checkTint    = color.NRGBA{R: 0xCC, G: 0x2A, B: 0x2A, A: 0x6E}
)

// Options selects the overlays painted on top of the position.
type Options struct {
	// LastFrom/LastTo highlight the most recent move when both are set.
	LastFrom string
	LastTo   string
	// Selected marks the square the user picked, Targets its legal
	// destinations.
	Selected string
	Targets  []string
	// CheckSquare marks the king square while in check.
	CheckSquare string
}

// Renderer rasterizes positions into PNG board images.
type Renderer struct {
	sprites *spriteSet
	logger  *zap.Logger
}

func NewRenderer() *Renderer {
	return &Renderer{sprites: newSpriteSet(), logger: obslog.L()}
}

// RenderPNG draws the given board with overlays and returns the encoded PNG.
func (r *Renderer) RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("nil board")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := boardSize + 2*margin
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)

	for file := 0; file < 8; file++ {
		for rank := 0; rank < 8; rank++ {
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			rect := squareRect(file, rank)

			fill := lightSquare
			if (file+rank)%2 == 0 {
				fill = darkSquare
			}
			draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Src)

			name := sq.String()
			if name == opts.LastFrom || name == opts.LastTo {
				tint(img, rect, lastMoveTint)
			}
			if name == opts.CheckSquare {
				tint(img, rect, checkTint)
			}
			if name == opts.Selected {
				tint(img, rect, selectedTint)
			}
			for _, t := range opts.Targets {
				if name == t {
					drawTargetDot(img, rect, board.Piece(sq) != nchess.NoPiece)
					break
				}
			}

			if piece := board.Piece(sq); piece != nchess.NoPiece {
				if err := r.drawPiece(img, rect, piece); err != nil {
					return nil, err
				}
			}
		}
	}

	drawCoordinates(img, total)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode board png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSnapshotPNG derives the overlay set from snapshot-level state: last
// move, current selection and the checked king.
func (r *Renderer) RenderSnapshotPNG(ctx context.Context, board *nchess.Board, last *rules.AppliedMove, selected string, targets []string, checkedSide rules.Side) ([]byte, error) {
	opts := Options{Selected: selected, Targets: targets}
	if last != nil {
		opts.LastFrom = last.From
		opts.LastTo = last.To
	}
	if checkedSide != "" {
		opts.CheckSquare = kingSquare(board, checkedSide)
	}
	return r.RenderPNG(ctx, board, opts)
}

func squareRect(file, rank int) image.Rectangle {
	x := margin + file*squareSize
	y := margin + (7-rank)*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func tint(img draw.Image, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawTargetDot paints a centered dot on quiet destinations and a ring on
// occupied ones.
func drawTargetDot(img draw.Image, rect image.Rectangle, occupied bool) {
	cx := rect.Min.X + squareSize/2
	cy := rect.Min.Y + squareSize/2
	outer := squareSize / 7
	inner := 0
	if occupied {
		outer = squareSize/2 - 4
		inner = outer - 5
	}
	for y := -outer; y <= outer; y++ {
		for x := -outer; x <= outer; x++ {
			d2 := x*x + y*y
			if d2 > outer*outer || d2 < inner*inner {
				continue
			}
			img.Set(cx+x, cy+y, targetTint)
		}
	}
}

func (r *Renderer) drawPiece(img draw.Image, rect image.Rectangle, piece nchess.Piece) error {
	sprite, err := r.sprites.sprite(piece, pieceDrawSize)
	if err != nil {
		return err
	}
	offset := (squareSize - pieceDrawSize) / 2
	at := image.Pt(rect.Min.X+offset, rect.Min.Y+offset)
	draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(pieceDrawSize, pieceDrawSize))}, sprite, image.Point{}, draw.Over)
	return nil
}

func drawCoordinates(img draw.Image, total int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
	}
	for file := 0; file < 8; file++ {
		label := string(rune('a' + file))
		x := margin + file*squareSize + squareSize/2 - 3
		d.Dot = fixed.P(x, total-7)
		d.DrawString(label)
	}
	for rank := 0; rank < 8; rank++ {
		label := string(rune('1' + rank))
		y := margin + (7-rank)*squareSize + squareSize/2 + 4
		d.Dot = fixed.P(7, y)
		d.DrawString(label)
	}
}

func kingSquare(board *nchess.Board, side rules.Side) string {
	want := nchess.White
	if side == rules.SideBlack {
		want = nchess.Black
	}
	for file := 0; file < 8; file++ {
		for rank := 0; rank < 8; rank++ {
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			piece := board.Piece(sq)
			if piece != nchess.NoPiece && piece.Type() == nchess.King && piece.Color() == want {
				return sq.String()
			}
		}
	}
	return ""
}
