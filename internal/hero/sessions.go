package hero

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type session struct {
	ID string
	ws *websocket.Conn

	// writes come from the read loop and from controller callbacks
	writeMu sync.Mutex
}

func (s *session) send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteJSON(v)
}

// Sessions tracks the open live-list websocket connections.
type Sessions struct {
	mu   sync.Mutex
	live map[string]*session
}

func NewSessions() *Sessions {
	return &Sessions{live: make(map[string]*session)}
}

func (h *Sessions) open(ws *websocket.Conn) *session {
	s := &session{ID: uuid.NewString(), ws: ws}
	h.mu.Lock()
	h.live[s.ID] = s
	h.mu.Unlock()
	return s
}

func (h *Sessions) close(s *session) {
	h.mu.Lock()
	delete(h.live, s.ID)
	h.mu.Unlock()
	_ = s.ws.Close()
}

func (h *Sessions) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// CloseAll drops every connection; each read loop then unmounts its view.
// http.Server.Shutdown does not reach hijacked connections.
func (h *Sessions) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.live {
		_ = s.ws.Close()
	}
}
