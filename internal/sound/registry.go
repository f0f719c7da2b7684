package sound

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/board"
	"github.com/coachboard-dev/coachboard/internal/obslog"
)

// assets maps feedback event tags to playable resource names. Populated once
// at startup, read-only afterwards.
var assets = map[board.EventTag]string{
	board.EventMove:    "move.mp3",
	board.EventCapture: "capture.mp3",
	board.EventCheck:   "check.mp3",
	board.EventStart:   "game-start.mp3",
	board.EventEnd:     "game-end.mp3",
}

// Emitter delivers a resolved sound to wherever playback happens (for the
// web surface, the client's speaker via the websocket).
type Emitter interface {
	EmitSound(tag, asset string) error
}

// Player resolves feedback tags against the asset registry. Unknown tags and
// emit failures are logged and swallowed; playback must never fail the game
// loop. Muting suppresses emission without touching game logic.
type Player struct {
	emitter Emitter
	muted   atomic.Bool
	logger  *zap.Logger
}

func NewPlayer(emitter Emitter, muted bool) *Player {
	p := &Player{emitter: emitter, logger: obslog.L()}
	p.muted.Store(muted)
	return p
}

// Play implements board.Sink.
func (p *Player) Play(tag board.EventTag) {
	if p == nil || p.emitter == nil || p.muted.Load() {
		return
	}
	asset, ok := assets[tag]
	if !ok {
		p.logger.Debug("sound_unknown_tag", zap.String("tag", string(tag)))
		return
	}
	if err := p.emitter.EmitSound(string(tag), asset); err != nil {
		p.logger.Warn("sound_emit_failed", zap.String("tag", string(tag)), zap.Error(err))
	}
}

func (p *Player) SetMuted(muted bool) { p.muted.Store(muted) }

func (p *Player) Muted() bool { return p.muted.Load() }
