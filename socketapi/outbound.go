package socketapi

import "uno/game"

const (
	TypeGameCreated = "game_created"
	TypeGameJoined  = "game_joined"
	TypeLobbyUpdate = "lobby_update"
	TypeGameStarted = "game_started"
	TypeGameUpdate  = "game_update"
	TypeGameOver    = "game_over"
	TypeError       = "error"
)

type GameCreated struct {
	Type     string `json:"type"`
	GameCode string `json:"gameCode"`
}

type GameJoined struct {
	Type     string `json:"type"`
	GameCode string `json:"gameCode"`
}

type LobbyUpdate struct {
	Type    string             `json:"type"`
	Players []game.LobbyPlayer `json:"players"`
}

// GameState carries game_started and game_update.
type GameState struct {
	Type      string         `json:"type"`
	GameState *game.Snapshot `json:"gameState"`
}

type GameOver struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewGameCreated(code string) *GameCreated {
	return &GameCreated{Type: TypeGameCreated, GameCode: code}
}

func NewGameJoined(code string) *GameJoined {
	return &GameJoined{Type: TypeGameJoined, GameCode: code}
}

func NewLobbyUpdate(players []game.LobbyPlayer) *LobbyUpdate {
	return &LobbyUpdate{Type: TypeLobbyUpdate, Players: players}
}

func NewGameStarted(state *game.Snapshot) *GameState {
	return &GameState{Type: TypeGameStarted, GameState: state}
}

func NewGameUpdate(state *game.Snapshot) *GameState {
	return &GameState{Type: TypeGameUpdate, GameState: state}
}

func NewGameOver(winner string) *GameOver {
	return &GameOver{Type: TypeGameOver, Winner: winner}
}

func NewError(message string) *Error {
	return &Error{Type: TypeError, Message: message}
}
