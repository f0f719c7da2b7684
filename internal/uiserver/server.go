package uiserver

import (
	"context"
	"embed"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/obslog"
	"github.com/coachboard-dev/coachboard/internal/render"
	"github.com/coachboard-dev/coachboard/internal/rules"
	"github.com/coachboard-dev/coachboard/internal/session"
)

//go:embed assets/index.html
var assetFiles embed.FS

// Server is the user-facing surface: one page, one websocket per board, and a
// PNG rendition of any live session.
type Server struct {
	addr     string
	mgr      *session.Manager
	renderer *render.Renderer
	muted    bool
	logger   *zap.Logger

	mu   sync.RWMutex
	live map[string]*session.Session

	httpSrv *http.Server
}

func New(addr string, mgr *session.Manager, renderer *render.Renderer, mutedByDefault bool) *Server {
	return &Server{
		addr:     addr,
		mgr:      mgr,
		renderer: renderer,
		muted:    mutedByDefault,
		logger:   obslog.L(),
		live:     make(map[string]*session.Session),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/board.png", s.handleBoardPNG)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http_listen", zap.String("addr", s.addr))
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := assetFiles.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleBoardPNG renders the current position of a live session, with the
// last move, the active selection and a checked king highlighted.
func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session"))
	sess := s.lookup(id)
	if sess == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	view := sess.View()
	var last *rules.AppliedMove
	if n := len(view.Snapshot.History); n > 0 {
		last = &view.Snapshot.History[n-1]
	}
	var checked rules.Side
	if view.Snapshot.IsCheck || view.Snapshot.IsCheckmate {
		checked = view.Snapshot.Turn
	}

	img, err := s.renderer.RenderSnapshotPNG(r.Context(), sess.Board(), last,
		view.Interaction.Selected, view.Interaction.Targets, checked)
	if err != nil {
		s.logger.Error("board_render_failed", zap.String("session_id", id), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

func (s *Server) lookup(id string) *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live[id]
}

func (s *Server) track(sess *session.Session) {
	s.mu.Lock()
	s.live[sess.ID] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}
