// Package socketapi holds the JSON messages exchanged over the game websocket.
package socketapi

import (
	"encoding/json"

	"github.com/pkg/errors"

	"uno/model"
)

const (
	TypeCreateGame = "create_game"
	TypeJoinGame   = "join_game"
	TypeStartGame  = "start_game"
	TypePlayCard   = "play_card"
	TypeDrawCard   = "draw_card"
	TypeCallUno    = "call_uno"
)

var (
	ErrUnknownType   = errors.New("unknown message type")
	ErrMissingFields = errors.New("missing required fields")
)

// Message is one of the inbound client messages.
type Message interface {
	Type() string
	validate() error
}

type CreateGame struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type JoinGame struct {
	GameCode   string `json:"gameCode"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

type PlayCard struct {
	GameCode    string      `json:"gameCode"`
	PlayerID    string      `json:"playerId"`
	CardID      string      `json:"cardId"`
	ChosenColor model.Color `json:"chosenColor,omitempty"`
}

type DrawCard struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

type CallUno struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

func (CreateGame) Type() string { return TypeCreateGame }
func (JoinGame) Type() string   { return TypeJoinGame }
func (StartGame) Type() string  { return TypeStartGame }
func (PlayCard) Type() string   { return TypePlayCard }
func (DrawCard) Type() string   { return TypeDrawCard }
func (CallUno) Type() string    { return TypeCallUno }

func (m CreateGame) validate() error { return requireFields(m.PlayerID) }
func (m JoinGame) validate() error   { return requireFields(m.GameCode, m.PlayerID) }
func (m StartGame) validate() error  { return requireFields(m.GameCode, m.PlayerID) }
func (m PlayCard) validate() error   { return requireFields(m.GameCode, m.PlayerID, m.CardID) }
func (m DrawCard) validate() error   { return requireFields(m.GameCode, m.PlayerID) }
func (m CallUno) validate() error    { return requireFields(m.GameCode, m.PlayerID) }

func requireFields(fields ...string) error {
	for _, f := range fields {
		if f == "" {
			return ErrMissingFields
		}
	}
	return nil
}

// Decode parses a client frame into its concrete message.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(err, "decode message type")
	}

	var msg Message
	switch head.Type {
	case TypeCreateGame:
		msg = &CreateGame{}
	case TypeJoinGame:
		msg = &JoinGame{}
	case TypeStartGame:
		msg = &StartGame{}
	case TypePlayCard:
		msg = &PlayCard{}
	case TypeDrawCard:
		msg = &DrawCard{}
	case TypeCallUno:
		msg = &CallUno{}
	default:
		return nil, errors.Wrapf(ErrUnknownType, "type %q", head.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrapf(err, "decode %s", head.Type)
	}
	if err := msg.validate(); err != nil {
		return nil, errors.Wrap(err, head.Type)
	}
	return msg, nil
}
