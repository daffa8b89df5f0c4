package server

import (
	"cirello.io/goherokuname"
	"github.com/pkg/errors"

	"uno/game"
	"uno/socketapi"
)

type Pipeline struct {
	matchHolder   *MatchHolder
	sessionHolder *SessionHolder
	logger        *Logger
}

func NewPipeline(matchHolder *MatchHolder, sessionHolder *SessionHolder, logger *Logger) *Pipeline {
	return &Pipeline{
		matchHolder:   matchHolder,
		sessionHolder: sessionHolder,
		logger:        logger,
	}
}

// handleSocketRequests runs one decoded client message. Returning false closes the session.
func (p *Pipeline) handleSocketRequests(session Session, message socketapi.Message) bool {
	var err error

	switch msg := message.(type) {
	case *socketapi.CreateGame:
		err = p.createGame(session, msg)
	case *socketapi.JoinGame:
		err = p.joinGame(session, msg)
	case *socketapi.StartGame:
		err = p.startGame(msg)
	case *socketapi.PlayCard:
		err = p.playCard(msg)
	case *socketapi.DrawCard:
		err = p.drawCard(msg)
	case *socketapi.CallUno:
		err = p.callUno(msg)
	default:
		// Decode only yields the types above, anything else is a programming error worth a log line.
		p.logger.Warnw("Unrecognizable message received", "type", message.Type(), "sessionID", session.ID().String())
		return true
	}

	if err != nil {
		p.replyError(session, message, err)
	}
	return true
}

func (p *Pipeline) createGame(session Session, msg *socketapi.CreateGame) error {
	host := game.PlayerInfo{ID: msg.PlayerID, Name: displayName(msg.PlayerName)}
	_, err := p.matchHolder.Create(host, func() {
		p.bind(msg.PlayerID, session)
	})
	return err
}

func (p *Pipeline) joinGame(session Session, msg *socketapi.JoinGame) error {
	m, err := p.matchHolder.Get(msg.GameCode)
	if err != nil {
		return err
	}
	info := game.PlayerInfo{ID: msg.PlayerID, Name: displayName(msg.PlayerName)}
	return m.Join(info, func() {
		p.bind(msg.PlayerID, session)
	})
}

func (p *Pipeline) startGame(msg *socketapi.StartGame) error {
	m, err := p.matchHolder.Get(msg.GameCode)
	if err != nil {
		return err
	}
	if err := m.Start(msg.PlayerID); err != nil {
		return err
	}
	p.logger.Infow("Match was started", "code", m.Code(), "players", len(m.PlayerIDs()))
	return nil
}

func (p *Pipeline) playCard(msg *socketapi.PlayCard) error {
	m, err := p.matchHolder.Get(msg.GameCode)
	if err != nil {
		return err
	}
	return m.Play(msg.PlayerID, msg.CardID, msg.ChosenColor)
}

func (p *Pipeline) drawCard(msg *socketapi.DrawCard) error {
	m, err := p.matchHolder.Get(msg.GameCode)
	if err != nil {
		return err
	}
	_, err = m.Draw(msg.PlayerID)
	return err
}

func (p *Pipeline) callUno(msg *socketapi.CallUno) error {
	m, err := p.matchHolder.Get(msg.GameCode)
	if err != nil {
		return err
	}
	_, err = m.DeclareLowHand(msg.PlayerID)
	return err
}

func (p *Pipeline) bind(playerID string, session Session) {
	if !p.sessionHolder.Bind(playerID, session) {
		p.logger.Debugw("Session closed before the player was bound", "playerID", playerID, "sessionID", session.ID().String())
	}
}

// replyError reports a rejected operation to the session that asked for it, nobody else.
func (p *Pipeline) replyError(session Session, message socketapi.Message, err error) {
	cause := errors.Cause(err)
	p.logger.Debugw("Request was rejected", "type", message.Type(), "sessionID", session.ID().String(), "clientIP", session.ClientIP(), "error", cause)
	if sendErr := session.Send(socketapi.NewError(cause.Error())); sendErr != nil {
		p.logger.Debugw("Could not send error reply", "sessionID", session.ID().String(), "error", sendErr)
	}
}

func displayName(name string) string {
	if name != "" {
		return name
	}
	return goherokuname.Haikunate()
}
