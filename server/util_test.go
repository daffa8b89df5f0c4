package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"

	"uno/game"
	"uno/socketapi"
)

var (
	sharedStats     *Stats
	sharedStatsOnce sync.Once
	sharedStatsErr  error
)

// testStats shares one exporter across the package, views are registered process wide anyway.
func testStats(t *testing.T) *Stats {
	sharedStatsOnce.Do(func() {
		sharedStats, sharedStatsErr = NewStats()
	})
	require.NoError(t, sharedStatsErr)
	return sharedStats
}

type fakeSession struct {
	sync.Mutex
	id     uuid.UUID
	sent   []interface{}
	fail   bool
	closed bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{id: uuid.NewV4()}
}

func (f *fakeSession) ID() uuid.UUID      { return f.id }
func (f *fakeSession) ClientIP() string   { return "127.0.0.1" }
func (f *fakeSession) ClientPort() string { return "0" }

func (f *fakeSession) Consume(func(session Session, message socketapi.Message) bool) {}

func (f *fakeSession) Send(message interface{}) error {
	f.Lock()
	defer f.Unlock()
	if f.fail || f.closed {
		return ErrOutgoingQueueFull
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeSession) Close() {
	f.Lock()
	f.closed = true
	f.Unlock()
}

func (f *fakeSession) setFail(fail bool) {
	f.Lock()
	f.fail = fail
	f.Unlock()
}

func (f *fakeSession) isClosed() bool {
	f.Lock()
	defer f.Unlock()
	return f.closed
}

func (f *fakeSession) messages() []interface{} {
	f.Lock()
	defer f.Unlock()
	return append([]interface{}(nil), f.sent...)
}

func (f *fakeSession) reset() {
	f.Lock()
	f.sent = nil
	f.Unlock()
}

// types lists the "type" field of every message sent so far.
func (f *fakeSession) types(t *testing.T) []string {
	var out []string
	for _, m := range f.messages() {
		out = append(out, messageType(t, m))
	}
	return out
}

func (f *fakeSession) lastState(t *testing.T) *game.Snapshot {
	msgs := f.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if state, ok := msgs[i].(*socketapi.GameState); ok {
			return state.GameState
		}
	}
	t.Fatal("no game state was sent")
	return nil
}

func (f *fakeSession) lastError(t *testing.T) string {
	msgs := f.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if e, ok := msgs[i].(*socketapi.Error); ok {
			return e.Message
		}
	}
	t.Fatal("no error was sent")
	return ""
}

func messageType(t *testing.T, message interface{}) string {
	data, err := json.Marshal(message)
	require.NoError(t, err)
	var envelope struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope.Type
}

type harness struct {
	sessions *SessionHolder
	matches  *MatchHolder
	pipeline *Pipeline
}

func newHarness(t *testing.T, rules game.Rules) *harness {
	stats := testStats(t)
	logger := NewNopLogger()
	sessions := NewSessionHolder(stats, logger)
	broadcaster := NewBroadcaster(sessions, false, stats, logger)
	matches := NewMatchHolder(rules, broadcaster, stats, logger)
	return &harness{
		sessions: sessions,
		matches:  matches,
		pipeline: NewPipeline(matches, sessions, logger),
	}
}

// handle registers s like the socket acceptor does, then runs the message.
func (h *harness) handle(s Session, message socketapi.Message) {
	if h.sessions.Get(s.ID()) == nil {
		h.sessions.add(s)
	}
	h.pipeline.handleSocketRequests(s, message)
}

// lobby creates a match hosted by "host" and lets the given guests join. Every session starts clean.
func (h *harness) lobby(t *testing.T, guests ...string) (string, *fakeSession, map[string]*fakeSession) {
	host := newFakeSession()
	h.handle(host, &socketapi.CreateGame{PlayerID: "host", PlayerName: "Host"})
	created, ok := host.messages()[0].(*socketapi.GameCreated)
	require.True(t, ok)

	sessions := map[string]*fakeSession{"host": host}
	for _, id := range guests {
		s := newFakeSession()
		h.handle(s, &socketapi.JoinGame{GameCode: created.GameCode, PlayerID: id, PlayerName: id})
		sessions[id] = s
	}
	for _, s := range sessions {
		s.reset()
	}
	return created.GameCode, host, sessions
}

// bind registers s and binds playerID to it.
func bind(t *testing.T, r *SessionHolder, playerID string, s Session) {
	r.add(s)
	require.True(t, r.Bind(playerID, s))
}
