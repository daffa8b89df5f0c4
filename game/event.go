package game

import "uno/model"

type EventKind int

const (
	EventCreated EventKind = iota
	EventJoined
	EventLobbyUpdate
	EventStarted
	EventUpdated
	EventOver
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventJoined:
		return "joined"
	case EventLobbyUpdate:
		return "lobby_update"
	case EventStarted:
		return "started"
	case EventUpdated:
		return "updated"
	case EventOver:
		return "over"
	}
	return "unknown"
}

// Event is emitted by a match while its lock is held. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Code   string
	Lobby  []LobbyPlayer
	State  *Snapshot
	Winner string
	// Played is the card that caused the event, set for plays only.
	Played *model.Card
}

// Publisher delivers match events to the given players. It is called with the match lock held,
// so it must not block on the network and must not call back into the match.
type Publisher interface {
	Publish(recipients []string, event Event)
}

type PublisherFunc func(recipients []string, event Event)

func (f PublisherFunc) Publish(recipients []string, event Event) {
	f(recipients, event)
}
