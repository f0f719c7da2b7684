package uiserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coachboard-dev/coachboard/internal/render"
	"github.com/coachboard-dev/coachboard/internal/session"
)

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	mgr, err := session.NewManager(session.NewMemoryStore(), nil, nil, time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return New(":0", mgr, render.NewRenderer(), false), mgr
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestIndexServed(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Coachboard") {
		t.Fatal("index page missing")
	}

	resp2, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", resp2.StatusCode)
	}
}

func TestBoardPNG(t *testing.T) {
	srv, mgr := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/board.png?session=ghost")
	if err != nil {
		t.Fatalf("GET board.png: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session status = %d", resp.StatusCode)
	}

	sess, err := mgr.Open(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	srv.track(sess)

	resp2, err := http.Get(ts.URL + "/board.png?session=" + sess.ID)
	if err != nil {
		t.Fatalf("GET board.png: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("live session status = %d", resp2.StatusCode)
	}
	if ct := resp2.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
}
