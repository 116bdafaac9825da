package editor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ziadkadry99/vizlab/internal/workspace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveRequest is the incoming WebSocket message format.
type liveRequest struct {
	Type string `json:"type"` // "edit" or "options"
	Text string `json:"text,omitempty"`
	optionsRequest
}

// liveMessage is the outgoing format for messages that are not workspace
// events.
type liveMessage struct {
	Type   string            `json:"type"` // "state", "notice" or "error"
	State  *workspace.State  `json:"state,omitempty"`
	Notice *workspace.Notice `json:"notice,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (e *Editor) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("editor: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := e.ws.Subscribe()
	defer unsubscribe()

	out := make(chan any, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		writeLoop(conn, events, out)
	}()

	state := e.ws.State()
	out <- liveMessage{Type: "state", State: &state}
	if n, ok := e.ws.RestoreNotice(); ok {
		out <- liveMessage{Type: "notice", Notice: &n}
	}

	e.readLoop(r.Context(), conn, out, done)

	unsubscribe()
	<-done
}

// writeLoop is the only writer on conn.
func writeLoop(conn *websocket.Conn, events <-chan workspace.Event, out <-chan any) {
	for {
		var msg any
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg = ev
		case m := <-out:
			msg = m
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("editor: websocket write: %v", err)
			return
		}
	}
}

func (e *Editor) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- any, done <-chan struct{}) {
	send := func(m liveMessage) {
		select {
		case out <- m:
		case <-done:
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("editor: websocket read: %v", err)
			}
			return
		}

		var req liveRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			send(liveMessage{Type: "error", Error: "invalid message format"})
			continue
		}

		switch req.Type {
		case "edit":
			e.ws.SetText(req.Text)
		case "options":
			if err := e.applyOptions(context.WithoutCancel(ctx), req.optionsRequest); err != nil {
				send(liveMessage{Type: "error", Error: err.Error()})
			}
		default:
			send(liveMessage{Type: "error", Error: "unknown message type: " + req.Type})
		}
	}
}
