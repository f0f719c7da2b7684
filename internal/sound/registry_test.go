package sound

import (
	"errors"
	"testing"

	"github.com/coachboard-dev/coachboard/internal/board"
)

type emitRecorder struct {
	tags   []string
	assets []string
	err    error
}

func (e *emitRecorder) EmitSound(tag, asset string) error {
	e.tags = append(e.tags, tag)
	e.assets = append(e.assets, asset)
	return e.err
}

func TestPlayResolvesAssets(t *testing.T) {
	rec := &emitRecorder{}
	p := NewPlayer(rec, false)

	p.Play(board.EventCapture)
	p.Play(board.EventEnd)

	if len(rec.tags) != 2 || rec.tags[0] != "capture" || rec.tags[1] != "end" {
		t.Fatalf("tags = %v", rec.tags)
	}
	if rec.assets[0] != "capture.mp3" || rec.assets[1] != "game-end.mp3" {
		t.Fatalf("assets = %v", rec.assets)
	}
}

func TestUnknownTagIsSwallowed(t *testing.T) {
	rec := &emitRecorder{}
	p := NewPlayer(rec, false)
	p.Play(board.EventTag("fanfare"))
	if len(rec.tags) != 0 {
		t.Fatalf("unknown tag emitted %v", rec.tags)
	}
}

func TestMuteSuppressesEmission(t *testing.T) {
	rec := &emitRecorder{}
	p := NewPlayer(rec, true)
	p.Play(board.EventMove)
	if len(rec.tags) != 0 {
		t.Fatalf("muted player emitted %v", rec.tags)
	}

	p.SetMuted(false)
	p.Play(board.EventMove)
	if len(rec.tags) != 1 {
		t.Fatal("unmuted player should emit")
	}
}

func TestEmitFailureDoesNotPanic(t *testing.T) {
	rec := &emitRecorder{err: errors.New("speaker unplugged")}
	p := NewPlayer(rec, false)
	p.Play(board.EventCheck)
	if len(rec.tags) != 1 {
		t.Fatal("emit should still be attempted")
	}
}

func TestNilEmitterIsSafe(t *testing.T) {
	p := NewPlayer(nil, false)
	p.Play(board.EventMove)
}
