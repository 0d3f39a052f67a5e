// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"net/http"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"
)

// log is this package's subsystem logger. It is a no-op until
// UseLogger wires in a real one.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by the package.
func UseLogger(logger slog.Logger) {
	log = logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Event relay is a read-only observational feed; any origin may
	// open a connection to it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketServer relays a Server's events to external subscribers as
// JSON frames. It holds no SCDB state and never affects the events it
// relays.
type WebsocketServer struct {
	events *Server
}

// NewWebsocketServer wraps events for websocket relay.
func NewWebsocketServer(events *Server) *WebsocketServer {
	return &WebsocketServer{events: events}
}

// ServeHTTP implements http.Handler, upgrading the connection and
// streaming events to it until the client disconnects.
func (w *WebsocketServer) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(resp, req, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, events := w.events.Subscribe()
	defer w.events.Unsubscribe(id)

	// A reader goroutine is required so gorilla/websocket processes
	// control frames (ping/close) from the client; this relay has
	// nothing to read from the client otherwise.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
