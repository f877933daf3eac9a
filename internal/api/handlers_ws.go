package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dgallion1/pagetoc/internal/tracker"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type string `json:"type"` // "scroll" or "click"
	Y    int    `json:"y"`
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type    string `json:"type"` // "session", "hide", "bar", "reveal" or "error"
	ID      string `json:"id,omitempty"`
	HTML    string `json:"html,omitempty"`
	Content string `json:"content,omitempty"`
}

// wsView forwards tracker updates to the page over its websocket.
type wsView struct {
	conn *websocket.Conn
	log  *slog.Logger
	mu   sync.Mutex
}

func (v *wsView) send(msg serverMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := v.conn.WriteJSON(msg); err != nil {
		v.log.Debug("websocket write failed", "type", msg.Type, "error", err)
	}
}

func (v *wsView) Hide()                     { v.send(serverMessage{Type: "hide"}) }
func (v *wsView) RenderBar(fragment string) { v.send(serverMessage{Type: "bar", HTML: fragment}) }
func (v *wsView) Reveal()                   { v.send(serverMessage{Type: "reveal"}) }

// handleWebSocket runs one scroll tracker session for the page named in the
// route. Page errors are reported before the upgrade as JSON.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.log.With("session", id, "page", p.result.Name)
	view := &wsView{conn: conn, log: log}
	tr := tracker.New(p.result.Controller, view, s.cfg.Tracker(), log)
	defer tr.Close()

	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	log.Info("tracker session opened")
	view.send(serverMessage{Type: "session", ID: id})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			break
		}

		var req clientMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			view.send(serverMessage{Type: "error", Content: "invalid message format"})
			continue
		}
		switch req.Type {
		case "scroll":
			tr.Scroll(req.Y)
		case "click":
			tr.Click()
		default:
			view.send(serverMessage{Type: "error", Content: "unknown message type: " + req.Type})
		}
	}
	log.Info("tracker session closed")
}
