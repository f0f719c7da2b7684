package board

import (
	"github.com/coachboard-dev/coachboard/internal/rules"
)

// EventTag identifies the audio/visual feedback for one game event.
type EventTag string

const (
	EventMove    EventTag = "move"
	EventCapture EventTag = "capture"
	EventCheck   EventTag = "check"
	EventStart   EventTag = "start"
	EventEnd     EventTag = "end"
)

// Sink receives exactly one feedback event per state-changing operation.
type Sink interface {
	Play(tag EventTag)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(tag EventTag)

func (f SinkFunc) Play(tag EventTag) { f(tag) }

// Classify maps a move's result metadata to one feedback event. The priority
// order is load-bearing: a checkmating capture is an end event, not a
// capture.
func Classify(res rules.MoveResult) EventTag {
	switch {
	case res.IsCheckmate || res.IsDraw():
		return EventEnd
	case res.IsCheck:
		return EventCheck
	case res.Move.Captured != "":
		return EventCapture
	default:
		return EventMove
	}
}
