package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/observability"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second

	// statePollInterval is how often the feed checks the session revision.
	statePollInterval = 250 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin is enforced by the CORS layer; the socket carries no
	// credentials beyond the already-verified bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// editorSocket streams session state snapshots to the editor UI. A snapshot
// is pushed on connect and whenever the session revision advances, so every
// open canvas converges on the same state without polling the REST API.
func (h *handlers) editorSocket(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	log := observability.LoggerFrom(r.Context(), h.deps.Log)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Reader goroutine: consume control frames and detect the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	state := store.State()
	if err := writeState(conn, state); err != nil {
		return
	}
	lastRevision := state.Revision

	poll := time.NewTicker(statePollInterval)
	defer poll.Stop()
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
			state := store.State()
			if state.Revision == lastRevision {
				continue
			}
			if err := writeState(conn, state); err != nil {
				return
			}
			lastRevision = state.Revision
		}
	}
}

func writeState(conn *websocket.Conn, state any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(stateEvent{Type: "state", State: state})
}

type stateEvent struct {
	Type  string `json:"type"`
	State any    `json:"state"`
}
