package server

import (
	"uno/game"
	"uno/socketapi"
)

// Broadcaster turns match events into socket messages for every recipient.
type Broadcaster struct {
	sessionHolder *SessionHolder
	revealHands   bool
	stats         *Stats
	logger        *Logger
}

func NewBroadcaster(sessionHolder *SessionHolder, revealHands bool, stats *Stats, logger *Logger) *Broadcaster {
	return &Broadcaster{
		sessionHolder: sessionHolder,
		revealHands:   revealHands,
		stats:         stats,
		logger:        logger,
	}
}

func (b *Broadcaster) Publish(recipients []string, event game.Event) {
	if event.Played != nil {
		b.stats.IncrCardPlayed(string(event.Played.Value))
	}
	if event.Kind == game.EventOver {
		b.stats.IncrMatchFinished()
		b.logger.Infow("Match is over", "code", event.Code, "winner", event.Winner)
	}

	for _, playerID := range recipients {
		message := b.message(playerID, event)
		if message == nil {
			continue
		}
		if err := b.sessionHolder.Send(playerID, message); err != nil && err != ErrPlayerNotBound {
			b.logger.Debugw("Could not deliver event", "code", event.Code, "event", event.Kind.String(), "playerID", playerID, "error", err)
		}
	}
}

func (b *Broadcaster) message(playerID string, event game.Event) interface{} {
	switch event.Kind {
	case game.EventCreated:
		return socketapi.NewGameCreated(event.Code)
	case game.EventJoined:
		return socketapi.NewGameJoined(event.Code)
	case game.EventLobbyUpdate:
		return socketapi.NewLobbyUpdate(event.Lobby)
	case game.EventStarted:
		return socketapi.NewGameStarted(b.view(playerID, event.State))
	case game.EventUpdated:
		return socketapi.NewGameUpdate(b.view(playerID, event.State))
	case game.EventOver:
		return socketapi.NewGameOver(event.Winner)
	}
	b.logger.Warnw("Unknown match event", "event", event.Kind.String())
	return nil
}

func (b *Broadcaster) view(playerID string, state *game.Snapshot) *game.Snapshot {
	if b.revealHands || state == nil {
		return state
	}
	return state.RedactedFor(playerID)
}
