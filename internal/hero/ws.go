package hero

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"herohub/internal/present"
	"herohub/internal/viewstate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is sent by a live session client.
type ClientMessage struct {
	Type   string `json:"type"` // query | page | goto
	Q      string `json:"q,omitempty"`
	Action string `json:"action,omitempty"` // next | prev
	Page   int    `json:"page,omitempty"`
}

// ServerMessage is pushed on every view change.
type ServerMessage struct {
	Type    string            `json:"type"` // state | error
	Session string            `json:"session"`
	View    *present.ListPage `json:"view,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (h *Handler) live(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s := h.Sessions.open(ws)
	log := h.Log.With(zap.String("session", s.ID))
	log.Info("live session opened")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	opts := h.View
	opts.Logger = log
	opts.OnChange = func(st viewstate.State) {
		view := present.List(st)
		if err := s.send(ServerMessage{Type: "state", Session: s.ID, View: &view}); err != nil {
			log.Debug("push failed", zap.Error(err))
		}
	}
	ctl := viewstate.New(ctx, h.Source, opts)

	var mounting sync.WaitGroup
	mounting.Add(1)
	go func() {
		defer mounting.Done()
		ctl.Mount()
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = s.send(ServerMessage{Type: "error", Session: s.ID, Error: "invalid message"})
			continue
		}
		if errText := apply(ctl, msg); errText != "" {
			_ = s.send(ServerMessage{Type: "error", Session: s.ID, Error: errText})
		}
	}

	ctl.Unmount()
	ctl.Settle()
	mounting.Wait()
	h.Sessions.close(s)
	log.Info("live session closed")
}

func apply(ctl *viewstate.Controller, msg ClientMessage) string {
	switch strings.ToLower(msg.Type) {
	case "query":
		ctl.SetQuery(msg.Q)
	case "page":
		switch strings.ToLower(msg.Action) {
		case "next":
			ctl.Next()
		case "prev":
			ctl.Prev()
		default:
			return "unknown page action " + msg.Action
		}
	case "goto":
		ctl.GoTo(msg.Page)
	default:
		return "unknown message type " + msg.Type
	}
	return ""
}
