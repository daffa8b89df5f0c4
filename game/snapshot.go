package game

import "uno/model"

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

type LobbyPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type PlayerView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	IsHost    bool         `json:"isHost"`
	Hand      []model.Card `json:"hand,omitempty"`
	HandCount int          `json:"handCount"`
	CalledUno bool         `json:"calledUno"`
}

// Snapshot is a detached copy of a match, safe to read and serialize without the match lock.
type Snapshot struct {
	Code               string       `json:"code"`
	Phase              Phase        `json:"phase"`
	Players            []PlayerView `json:"players"`
	DrawPile           []model.Card `json:"deck,omitempty"`
	DrawPileCount      int          `json:"deckCount"`
	DiscardPile        []model.Card `json:"discardPile"`
	CurrentColor       model.Color  `json:"currentColor,omitempty"`
	CurrentValue       model.Value  `json:"currentValue,omitempty"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Direction          int          `json:"direction"`
	HasDrawn           bool         `json:"hasDrawn"`
	Winner             string       `json:"winner,omitempty"`
}

// RedactedFor hides every hand but the viewer's and the draw pile contents, keeping the counts.
func (s *Snapshot) RedactedFor(viewerID string) *Snapshot {
	out := *s
	out.DrawPile = nil
	out.Players = make([]PlayerView, len(s.Players))
	for i, p := range s.Players {
		if p.ID != viewerID {
			p.Hand = nil
		}
		out.Players[i] = p
	}
	return &out
}

// CardCount sums hands, draw pile and discard pile.
func (s *Snapshot) CardCount() int {
	n := s.DrawPileCount + len(s.DiscardPile)
	for _, p := range s.Players {
		n += p.HandCount
	}
	return n
}

func (s *Snapshot) Player(id string) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}
