package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// upgrader keeps gorilla's same-origin check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

// liveScript reloads the preview in place whenever the server pushes a
// new snapshot.
const liveScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var first = true;
  function connect() {
    var ws = new WebSocket(proto + location.host + "/api/live");
    ws.onmessage = function () {
      if (first) { first = false; return; }
      fetch("/preview", {cache: "no-store"}).then(function (r) { return r.text(); }).then(function (html) {
        var next = new DOMParser().parseFromString(html, "text/html");
        document.head.innerHTML = next.head.innerHTML;
        document.body.innerHTML = next.body.innerHTML;
      });
    };
    ws.onclose = function () { first = true; setTimeout(connect, 1000); };
  }
  connect();
})();
</script>
`

// handleLive streams the document to a websocket client: the current
// snapshot on connect, then one message per commit or template change.
// Messages are coalesced so a slow client only ever sees the latest one.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("live: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := make(chan DocumentResponse, 1)
	unsubscribe := s.editor.Subscribe(func(doc domain.Document, t domain.Template) {
		msg := DocumentResponse{Template: t, Document: doc}
		select {
		case updates <- msg:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- msg:
			default:
			}
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go readPump(conn, closed)

	initial := DocumentResponse{Template: s.editor.Template(), Document: s.editor.Snapshot()}
	if err := writeMessage(conn, initial); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case msg := <-updates:
			if err := writeMessage(conn, msg); err != nil {
				logger.Debug("live: write failed: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg DocumentResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
