package server

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/satori/go.uuid"

	"uno/socketapi"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrPlayerNotBound = errors.New("player has no live connection")
)

type Session interface {
	ID() uuid.UUID
	ClientIP() string
	ClientPort() string

	Consume(func(session Session, message socketapi.Message) bool)

	Send(message interface{}) error
	Close()
}

// SessionHolder tracks live sessions and which session speaks for each player id.
type SessionHolder struct {
	sync.RWMutex
	sessions map[uuid.UUID]Session
	players  map[string]uuid.UUID
	stats    *Stats
	logger   *Logger
}

func NewSessionHolder(stats *Stats, logger *Logger) *SessionHolder {
	return &SessionHolder{
		sessions: make(map[uuid.UUID]Session),
		players:  make(map[string]uuid.UUID),
		stats:    stats,
		logger:   logger,
	}
}

func (r *SessionHolder) Get(sessionID uuid.UUID) Session {
	r.RLock()
	defer r.RUnlock()
	return r.sessions[sessionID]
}

func (r *SessionHolder) GetByPlayerID(playerID string) Session {
	r.RLock()
	defer r.RUnlock()
	sessionID, ok := r.players[playerID]
	if !ok {
		return nil
	}
	return r.sessions[sessionID]
}

func (r *SessionHolder) Count() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.sessions)
}

// Bind routes messages for playerID to s, replacing any previous binding. A session that is not
// registered, because it never was or because it already closed, is not bound and Bind reports false.
func (r *SessionHolder) Bind(playerID string, s Session) bool {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.sessions[s.ID()]; !ok {
		return false
	}
	r.players[playerID] = s.ID()
	return true
}

func (r *SessionHolder) Unbind(playerID string) {
	r.Lock()
	delete(r.players, playerID)
	r.Unlock()
}

// Send is best effort. When the message cannot be queued the player is treated as
// disconnected and unbound; other players and the caller's operation are unaffected.
func (r *SessionHolder) Send(playerID string, message interface{}) error {
	s := r.GetByPlayerID(playerID)
	if s == nil {
		return ErrPlayerNotBound
	}

	if err := s.Send(message); err != nil {
		r.unbindSession(playerID, s.ID())
		r.stats.IncrDeliveryFailure()
		r.logger.Infow("Dropping player after failed delivery", "playerID", playerID, "sessionID", s.ID().String(), "clientIP", s.ClientIP(), "error", err)
		return err
	}
	return nil
}

// CloseAll closes every live session, each one removes itself from the holder.
func (r *SessionHolder) CloseAll() {
	r.RLock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (r *SessionHolder) add(s Session) {
	r.Lock()
	r.sessions[s.ID()] = s
	r.Unlock()
}

// remove forgets the session together with every player bound to it.
func (r *SessionHolder) remove(sessionID uuid.UUID) {
	r.Lock()
	delete(r.sessions, sessionID)
	for playerID, id := range r.players {
		if id == sessionID {
			delete(r.players, playerID)
		}
	}
	r.Unlock()
}

// unbindSession drops the binding only if it still points at the failed session.
func (r *SessionHolder) unbindSession(playerID string, sessionID uuid.UUID) {
	r.Lock()
	if r.players[playerID] == sessionID {
		delete(r.players, playerID)
	}
	r.Unlock()
}
