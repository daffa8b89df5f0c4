package server

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"go.uber.org/atomic"

	"uno/socketapi"
)

var ErrOutgoingQueueFull = errors.New("outgoing queue full")

type session struct {
	sync.Mutex
	id         uuid.UUID
	clientIP   string
	clientPort string

	pingPeriodTime time.Duration
	pongWaitTime   time.Duration
	writeWaitTime  time.Duration

	sessionHolder *SessionHolder
	config        *Config
	stats         *Stats
	logger        *Logger
	conn          *websocket.Conn

	receivedMsgDecrement int
	pingTimer            *time.Timer
	pingTimerCas         *atomic.Uint32

	outgoingCh chan []byte

	closed bool
}

func NewSession(clientIP string, clientPort string, conn *websocket.Conn, config *Config, sessionHolder *SessionHolder, stats *Stats, logger *Logger) Session {
	sessionID := uuid.NewV4()

	stats.IncrSocketConnection()

	return &session{
		id:         sessionID,
		clientIP:   clientIP,
		clientPort: clientPort,

		pingPeriodTime: time.Duration(config.SocketConfig.PingPeriodTime) * time.Millisecond,
		pongWaitTime:   time.Duration(config.SocketConfig.PongWaitTime) * time.Millisecond,
		writeWaitTime:  time.Duration(config.SocketConfig.WriteWaitTime) * time.Millisecond,

		config:        config,
		conn:          conn,
		sessionHolder: sessionHolder,
		stats:         stats,
		logger:        logger.With("sessionID", sessionID.String()),

		receivedMsgDecrement: config.SocketConfig.ReceivedMessageDecrementCount,
		pingTimer:            time.NewTimer(time.Duration(config.SocketConfig.PingPeriodTime) * time.Millisecond),
		pingTimerCas:         atomic.NewUint32(1),

		outgoingCh: make(chan []byte, config.SocketConfig.OutgoingQueueSize),
	}
}

func (s *session) ID() uuid.UUID {
	return s.id
}

func (s *session) ClientIP() string {
	return s.clientIP
}

func (s *session) ClientPort() string {
	return s.clientPort
}

// Consume reads frames until the connection fails. Frames that do not decode into a known
// message are dropped and the connection stays open.
func (s *session) Consume(handlerFunc func(session Session, message socketapi.Message) bool) {
	defer s.Close()
	s.conn.SetReadLimit(s.config.SocketConfig.MaxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(s.pongWaitTime)); err != nil {
		s.logger.Infow("Error occured while trying to set read deadline", "error", err)
		return
	}
	// A pong proves the client is alive, so the ping can wait another period.
	s.conn.SetPongHandler(func(string) error {
		s.resetPingTimer()
		return nil
	})

	go s.processOutgoing()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Infow("Socket connection was closed")
			} else if e, ok := err.(*net.OpError); ok && e.Err.Error() == "use of closed network connection" {
				s.logger.Infow("Socket connection was closed")
			} else {
				s.logger.Warnw("Error occured while reading message on socket connection", "error", err)
			}
			break
		}
		s.stats.IncrSocketRequest()

		// Enough traffic arrived in this period to know the connection is open, no ping needed.
		s.receivedMsgDecrement--
		if s.receivedMsgDecrement < 1 {
			s.receivedMsgDecrement = s.config.SocketConfig.ReceivedMessageDecrementCount
			if !s.resetPingTimer() {
				return
			}
		}

		request, err := socketapi.Decode(data)
		if err != nil {
			s.logger.Debugw("Dropping unreadable message", "error", err)
			continue
		}

		if !handlerFunc(s, request) {
			break
		}
	}
}

func (s *session) resetPingTimer() bool {
	if !s.pingTimerCas.CAS(1, 0) {
		return true
	}
	defer s.pingTimerCas.CAS(0, 1)

	s.Lock()
	if s.closed {
		s.Unlock()
		return false
	}

	if !s.pingTimer.Stop() {
		select {
		case <-s.pingTimer.C:
		default:
		}
	}

	s.pingTimer.Reset(s.pingPeriodTime)
	err := s.conn.SetReadDeadline(time.Now().Add(s.pongWaitTime))
	s.Unlock()
	if err != nil {
		s.logger.Warnw("Error while trying to set read deadline on socket connection", "error", err)
		s.Close()
		return false
	}
	return true
}

func (s *session) processOutgoing() {
	defer s.Close()
	// Send only queues payloads, this loop is the single writer of the connection. Writes run
	// without the session lock so a stuck client never holds up Send.
	for {
		select {
		case <-s.pingTimer.C:
			if !s.pingNow() {
				return
			}
		case payload, ok := <-s.outgoingCh:
			if !ok || s.isClosed() {
				return
			}

			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWaitTime)); err != nil {
				s.logger.Warnw("Could not set write deadline", "error", err)
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Warnw("Could not write message", "error", err)
				return
			}
		}
	}
}

func (s *session) pingNow() bool {
	if s.isClosed() {
		return false
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWaitTime)); err != nil {
		s.logger.Warnw("Could not set write deadline to ping", "error", err)
		return false
	}
	if err := s.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
		s.logger.Warnw("Could not send ping", "error", err)
		return false
	}

	return true
}

func (s *session) Send(message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Errorw("Could not marshal message", "message", message, "error", err)
		return errors.WithStack(err)
	}

	return s.SendBytes(payload)
}

// SendBytes never blocks. A client that cannot keep up with its queue is disconnected, the only
// other choice would be dropping messages and leaving it with a stale game.
func (s *session) SendBytes(payload []byte) error {
	s.Lock()
	if s.closed {
		s.Unlock()
		return ErrSessionClosed
	}

	select {
	case s.outgoingCh <- payload:
		s.Unlock()
		return nil
	default:
		s.Unlock()
		s.logger.Warnw("Could not write message, session outgoing queue full", "clientIP", s.clientIP)
		// Closing waits on the close frame write, the caller may be holding a match lock.
		go s.Close()
		return ErrOutgoingQueueFull
	}
}

func (s *session) Close() {
	s.Lock()
	// Close is reached from the reader, the writer and failed sends, only the first one runs.
	if s.closed {
		s.Unlock()
		return
	}
	s.closed = true
	s.Unlock()

	s.stats.DecrSocketConnection()
	s.logger.Infow("Session was closed", "clientIP", s.ClientIP(), "clientPort", s.ClientPort())

	s.sessionHolder.remove(s.id)

	s.pingTimer.Stop()
	close(s.outgoingCh)

	if err := s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(s.writeWaitTime)); err != nil {
		s.logger.Debugw("Couldn't send close message to client", "error", err)
	}

	if err := s.conn.Close(); err != nil {
		s.logger.Debugw("Couldn't close socket connection", "error", err)
	}
}

func (s *session) isClosed() bool {
	s.Lock()
	defer s.Unlock()
	return s.closed
}
