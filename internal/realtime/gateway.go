package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Transport timing. Pongs must arrive within pongWait; pings go out a
// little more often than that so a healthy client always answers in time.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Gateway upgrades HTTP requests to websocket connections and runs the
// read/write pumps that bridge each connection to the hub. The pumps own
// the websocket.Conn; the hub never touches the transport directly.
type Gateway struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewGateway creates a gateway bound to the given hub.
func NewGateway(hub *Hub, log *slog.Logger) *Gateway {
	return &Gateway{
		hub:    hub,
		logger: log.With("component", "realtime_gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the app origin; tightening
			// this check is a deployment concern handled by the proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles the websocket upgrade. The connection starts
// unauthenticated; the client must issue an authenticate command before
// it is addressable by user or role.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug("websocket upgrade failed",
			"remote_addr", r.RemoteAddr,
			"error", err)
		return
	}

	session := NewSession(conn)
	g.hub.Register(session)

	go g.writePump(session)
	go g.readPump(session)
}

// readPump reads client commands and feeds them to the hub until the
// connection drops. It is the sole reader of the connection.
func (g *Gateway) readPump(s *Session) {
	defer func() {
		g.hub.Unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("websocket read error",
					"conn_id", s.ID(),
					"error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			g.logger.Debug("ignoring malformed client message",
				"conn_id", s.ID(),
				"error", err)
			continue
		}
		g.hub.Dispatch(s, msg)
	}
}

// writePump drains the session's send channel onto the wire and keeps the
// connection alive with pings. It is the sole writer of the connection.
// When the hub closes the send channel the pump sends a close frame and
// shuts the transport down.
func (g *Gateway) writePump(s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				g.logger.Debug("websocket write error",
					"conn_id", s.ID(),
					"error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
