package uiserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/coachboard-dev/coachboard/internal/session"
	"github.com/coachboard-dev/coachboard/internal/sound"
)

const wsWriteTimeout = 10 * time.Second

// command is one client request over the websocket.
type command struct {
	Type      string `json:"type"`
	Square    string `json:"square,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Muted     bool   `json:"muted,omitempty"`
}

type stateEvent struct {
	Type string       `json:"type"`
	View session.View `json:"view"`
}

type soundEvent struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Asset string `json:"asset"`
}

// wsWriter serializes all writes to one connection. wsjson.Write is not safe
// for concurrent use, and the advisory goroutine writes alongside the command
// loop.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) write(ctx context.Context, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, w.conn, v)
}

// wsEmitter implements sound.Emitter by pushing the event to the client,
// where playback actually happens.
type wsEmitter struct {
	ctx    context.Context
	writer *wsWriter
}

func (e *wsEmitter) EmitSound(tag, asset string) error {
	return e.writer.write(e.ctx, soundEvent{Type: "sound", Event: tag, Asset: asset})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	ctx := r.Context()
	writer := &wsWriter{conn: conn}

	player := sound.NewPlayer(&wsEmitter{ctx: ctx, writer: writer}, s.muted)
	sess, err := s.mgr.Open(ctx, r.URL.Query().Get("session"), player)
	if err != nil {
		s.logger.Warn("ws_session_open_failed", zap.Error(err))
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	player.SetMuted(sess.Muted())
	s.track(sess)
	defer s.untrack(sess.ID)

	deliver := func(v session.View) {
		if err := writer.write(ctx, stateEvent{Type: "state", View: v}); err != nil {
			s.logger.Debug("ws_push_failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	// Initial state so the client can draw before the first command.
	deliver(sess.View())

	for {
		var cmd command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			s.logger.Debug("ws_read_failed", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}

		switch cmd.Type {
		case "click":
			deliver(sess.Click(ctx, cmd.Square))
		case "move":
			deliver(sess.Move(ctx, cmd.From, cmd.To, cmd.Promotion))
		case "new":
			deliver(sess.NewGame(ctx))
		case "undo":
			deliver(sess.Undo(ctx))
		case "analyze":
			// The immediate view carries the thinking flag; the final view
			// arrives through deliver when the coach responds.
			deliver(sess.Analyze(context.WithoutCancel(ctx), deliver))
		case "mute":
			player.SetMuted(cmd.Muted)
			deliver(sess.SetMuted(ctx, cmd.Muted))
		case "view":
			deliver(sess.View())
		default:
			s.logger.Debug("ws_unknown_command", zap.String("type", cmd.Type))
		}
	}
}
