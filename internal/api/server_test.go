package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pagetoc/internal/config"
	"github.com/dgallion1/pagetoc/internal/toc"
	"github.com/gorilla/websocket"
	"golang.org/x/net/html"
)

// stepMeasurer places the i-th target at (i+1)*500 pixels.
type stepMeasurer struct{}

func (stepMeasurer) Measure(ctx context.Context, doc *html.Node, targets []*html.Node) ([]float64, error) {
	out := make([]float64, len(targets))
	for i := range targets {
		out[i] = float64(i+1) * 500
	}
	return out, nil
}

const guideHTML = `<!DOCTYPE html>
<html><head><title>Guide</title></head>
<body>
<h1>Intro</h1>
<p>It's short.</p>
<h2>Usage</h2>
<h2>Setup</h2>
</body></html>`

func setupTest(t *testing.T) (*Server, *config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "guide.html"), []byte(guideHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "notes.md"), []byte("# Notes\n\n## First\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Root = dir
	cfg.HideDelay = 5 * time.Millisecond
	cfg.LocateDelay = 40 * time.Millisecond
	cfg.RevealDelay = 50 * time.Millisecond

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(NewPageStore(cfg, stepMeasurer{}, log), log, cfg)
	return s, cfg, dir
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestPage(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/pages/guide.html")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{`id="toc-full"`, `href="#usage"`, `"/ws/guide.html"`, "It’s short."} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestPage_Markdown(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/pages/docs/notes.md")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `<h2 id="first">First</h2>`) {
		t.Errorf("expected slugged heading in %s", w.Body.String())
	}
}

func TestPage_Errors(t *testing.T) {
	s, _, _ := setupTest(t)
	tests := []struct {
		target string
		code   int
	}{
		{"/pages/missing.html", http.StatusNotFound},
		{"/pages/docs.html", http.StatusNotFound},
		{"/pages/../../etc/passwd.html", http.StatusNotFound},
		{"/pages/notes.txt", http.StatusUnsupportedMediaType},
		{"/api/outline/report.pdf", http.StatusUnsupportedMediaType},
	}
	for _, tc := range tests {
		w := get(t, s, tc.target)
		if w.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.target, tc.code, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body["error"] == "" {
			t.Errorf("%s: expected JSON error body, got %v", tc.target, err)
		}
	}
}

func TestOutline(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/api/outline/guide.html")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Title   string      `json:"title"`
		Entries []toc.Entry `json:"entries"`
		Outline []*toc.Node `json:"outline"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Title != "Guide" {
		t.Errorf("title %q", resp.Title)
	}
	if len(resp.Entries) != 3 || resp.Entries[0].Offset != 500 {
		t.Fatalf("entries %+v", resp.Entries)
	}
	if len(resp.Outline) != 1 || len(resp.Outline[0].Children) != 2 {
		t.Fatalf("expected intro with two children, got %+v", resp.Outline)
	}
	if resp.Outline[0].Children[1].Entry.ID != "setup" {
		t.Errorf("second child %q", resp.Outline[0].Children[1].Entry.ID)
	}
}

func TestLocate(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/api/locate/guide.html?y=900")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Position   int         `json:"position"`
		Breadcrumb []toc.Entry `json:"breadcrumb"`
		HTML       string      `json:"html"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Position != 900 {
		t.Errorf("position %d", resp.Position)
	}
	if len(resp.Breadcrumb) != 2 || resp.Breadcrumb[1].ID != "usage" {
		t.Errorf("breadcrumb %+v", resp.Breadcrumb)
	}
	if !strings.Contains(resp.HTML, `<a href="#intro">Intro</a> &gt; <a href="#usage">Usage</a>`) {
		t.Errorf("html %s", resp.HTML)
	}
}

func TestLocate_BeforeFirstHeading(t *testing.T) {
	s, _, _ := setupTest(t)
	w := get(t, s, "/api/locate/guide.html?y=0")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"breadcrumb":[]`) {
		t.Errorf("expected empty breadcrumb, got %s", w.Body.String())
	}
}

func TestLocate_BadPosition(t *testing.T) {
	s, _, _ := setupTest(t)
	for _, target := range []string{"/api/locate/guide.html", "/api/locate/guide.html?y=top"} {
		if w := get(t, s, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestPageStore_CachesUntilFileChanges(t *testing.T) {
	s, _, dir := setupTest(t)
	ctx := context.Background()

	first, err := s.pages.Get(ctx, "guide.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := s.pages.Get(ctx, "/guide.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("expected cached page to be reused")
	}
	if s.pages.Len() != 1 {
		t.Errorf("cached pages %d", s.pages.Len())
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "guide.html"), later, later); err != nil {
		t.Fatal(err)
	}
	third, err := s.pages.Get(ctx, "guide.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if third == first {
		t.Error("expected a modified file to be processed again")
	}
}

func TestStats(t *testing.T) {
	s, _, _ := setupTest(t)
	get(t, s, "/pages/guide.html")

	w := get(t, s, "/api/stats")
	var resp struct {
		CachedPages int    `json:"cached_pages"`
		Sessions    int64  `json:"sessions"`
		Layout      string `json:"layout"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CachedPages != 1 || resp.Sessions != 0 || resp.Layout != config.LayoutEstimate {
		t.Errorf("stats %+v", resp)
	}
}

func dialTracker(t *testing.T, s *Server, page string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + page
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	var hello serverMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read session message: %v", err)
	}
	if hello.Type != "session" || hello.ID == "" {
		t.Fatalf("expected session message, got %+v", hello)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket_ScrollSequence(t *testing.T) {
	s, _, _ := setupTest(t)
	conn := dialTracker(t, s, "guide.html")

	if err := conn.WriteJSON(clientMessage{Type: "scroll", Y: 900}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if msg := readMessage(t, conn); msg.Type != "hide" {
		t.Fatalf("expected hide first, got %+v", msg)
	}
	bar := readMessage(t, conn)
	if bar.Type != "bar" || !strings.Contains(bar.HTML, `href="#usage"`) {
		t.Fatalf("expected breadcrumb for usage, got %+v", bar)
	}
	if msg := readMessage(t, conn); msg.Type != "reveal" {
		t.Fatalf("expected reveal last, got %+v", msg)
	}
}

func TestWebSocket_ClickHides(t *testing.T) {
	s, _, _ := setupTest(t)
	conn := dialTracker(t, s, "guide.html")

	if err := conn.WriteJSON(clientMessage{Type: "click"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "hide" {
		t.Errorf("expected hide, got %+v", msg)
	}
}

func TestWebSocket_BadMessages(t *testing.T) {
	s, _, _ := setupTest(t)
	conn := dialTracker(t, s, "guide.html")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" || msg.Content != "invalid message format" {
		t.Errorf("expected format error, got %+v", msg)
	}

	if err := conn.WriteJSON(clientMessage{Type: "zoom"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" || !strings.Contains(msg.Content, "zoom") {
		t.Errorf("expected unknown type error, got %+v", msg)
	}
}

func TestWebSocket_MissingPage(t *testing.T) {
	s, _, _ := setupTest(t)
	server := httptest.NewServer(s)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/missing.html"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %v", resp)
	}
}
