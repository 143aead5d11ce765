package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Session is the authenticated context for one live connection. It is built
// once at upgrade time and passed to every operation handler for that
// connection, so handlers never re-derive the identity claim.
type Session struct {
	Key    live.Key
	ConnID live.ConnectionID

	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(key live.Key, connID live.ConnectionID, conn *websocket.Conn, logger zerolog.Logger) *Session {
	return &Session{
		Key:    key,
		ConnID: connID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With().Str("key", string(key)).Str("conn", string(connID)).Logger(),
		closed: make(chan struct{}),
	}
}

// enqueue hands a pre-encoded frame to the write pump without blocking. A
// client whose buffer is full is disconnected rather than allowed to stall
// broadcasts for everyone else.
func (s *Session) enqueue(frame []byte) {
	select {
	case <-s.closed:
	case s.send <- frame:
	default:
		s.logger.Warn().Msg("send buffer full, dropping slow client")
		s.close()
	}
}

// close makes the pumps wind down. Safe to call more than once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. It owns all writes to the underlying connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.closed:
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Debug().Err(err).Msg("write failed, closing session")
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

// readPump reads inbound frames and hands them to the hub's dispatcher. It
// returns when the client disconnects or errs, which triggers cleanup.
func (s *Session) readPump(dispatch func(*Session, []byte)) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
		dispatch(s, data)
	}
}
