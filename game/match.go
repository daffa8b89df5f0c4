package game

import (
	"math/rand"
	"sync"
	"time"

	"uno/model"
)

const (
	defaultHandSize   = 7
	defaultMaxPlayers = 10
	penaltyCards      = 2
	// Cards kept out of the deal so the seed discard can always skip past every wild card.
	seedReserve = 9
)

// Rules tune the engine. The zero value gives the permissive house rules: seven card hands,
// no legality check and no draw four penalty.
type Rules struct {
	HandSize        int
	MaxPlayers      int
	EnforceLegality bool
	DrawFourPenalty bool
}

// withDefaults fills zero values and clamps the deal so two players and the seed reserve
// always fit in one deck.
func (r Rules) withDefaults() Rules {
	if r.HandSize <= 0 {
		r.HandSize = defaultHandSize
	}
	if maxHand := (DeckSize - seedReserve) / 2; r.HandSize > maxHand {
		r.HandSize = maxHand
	}
	maxFit := (DeckSize - seedReserve) / r.HandSize
	if r.MaxPlayers <= 0 {
		r.MaxPlayers = defaultMaxPlayers
	}
	if r.MaxPlayers > maxFit {
		r.MaxPlayers = maxFit
	}
	return r
}

type PlayerInfo struct {
	ID   string
	Name string
}

type player struct {
	id        string
	name      string
	isHost    bool
	hand      Pile
	calledUno bool
}

// Match is one UNO game. Every exported method takes the match lock for the whole mutation and
// the publish that follows it.
type Match struct {
	mu sync.Mutex

	code      string
	rules     Rules
	publisher Publisher
	rand      *rand.Rand

	phase     Phase
	players   []*player
	draw      Pile
	discard   Pile
	color     model.Color
	value     model.Value
	current   int
	direction int
	hasDrawn  bool
	winner    *player

	createdAt  time.Time
	finishedAt time.Time
}

func NewMatch(code string, host PlayerInfo, rules Rules, publisher Publisher, r *rand.Rand) *Match {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Match{
		code:      code,
		rules:     rules.withDefaults(),
		publisher: publisher,
		rand:      r,
		phase:     PhaseLobby,
		players: []*player{{
			id:     host.ID,
			name:   host.Name,
			isHost: true,
		}},
		direction: 1,
		createdAt: time.Now(),
	}
}

func (m *Match) Code() string {
	return m.code
}

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// FinishedAt is zero until the match is over.
func (m *Match) FinishedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishedAt
}

func (m *Match) PlayerIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roster()
}

// Open announces a freshly created match to its host. admit runs before anything is published.
func (m *Match) Open(admit func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if admit != nil {
		admit()
	}
	host := m.players[0]
	m.publish([]string{host.id}, Event{Kind: EventCreated, Code: m.code})
	m.publishLobby()
}

func (m *Match) Join(p PlayerInfo, admit func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseLobby {
		return ErrMatchAlreadyStarted
	}
	if m.find(p.ID) >= 0 {
		return ErrAlreadyJoined
	}
	if len(m.players) >= m.rules.MaxPlayers {
		return ErrMatchFull
	}

	m.players = append(m.players, &player{id: p.ID, name: p.Name})
	if admit != nil {
		admit()
	}
	m.publish([]string{p.ID}, Event{Kind: EventJoined, Code: m.code})
	m.publishLobby()
	return nil
}

func (m *Match) Start(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.find(playerID); i < 0 || !m.players[i].isHost {
		return ErrNotHost
	}
	if m.phase != PhaseLobby {
		return ErrMatchAlreadyStarted
	}

	deck := BuildDeck(m.rand)
	hands := make([]Pile, len(m.players))
	for i := range hands {
		hands[i] = make(Pile, 0, m.rules.HandSize)
		for j := 0; j < m.rules.HandSize; j++ {
			c, ok := deck.Pop()
			if !ok {
				return ErrDeckExhausted
			}
			hands[i].Push(c)
		}
	}

	seed, ok := deck.Pop()
	if !ok {
		return ErrDeckExhausted
	}
	for tries := deck.Len(); seed.IsWild() && tries > 0; tries-- {
		deck.InsertBottom(seed)
		seed, _ = deck.Pop()
	}

	for i, p := range m.players {
		p.hand = hands[i]
		p.calledUno = false
	}
	m.draw = deck
	m.discard = Pile{seed}
	m.color = seed.Color
	m.value = seed.Value
	m.current = 0
	m.direction = 1
	m.hasDrawn = false
	m.phase = PhasePlaying

	m.publish(m.roster(), Event{Kind: EventStarted, Code: m.code, State: m.snapshot()})
	return nil
}

// Play resolves a card played by the current player. chosenColor is only read for wild cards.
func (m *Match) Play(playerID string, cardID string, chosenColor model.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPlaying(); err != nil {
		return err
	}
	p := m.players[m.current]
	if p.id != playerID {
		return ErrNotYourTurn
	}
	i := p.hand.Index(cardID)
	if i < 0 {
		return ErrCardNotInHand
	}
	card := p.hand[i]
	if card.IsWild() && !chosenColor.IsPlayable() {
		return ErrInvalidColor
	}
	if m.rules.EnforceLegality && !card.Matches(m.color, m.value) {
		return ErrIllegalPlay
	}

	p.hand.Remove(cardID)
	m.discard.Push(card)
	if card.IsWild() {
		m.color = chosenColor
	} else {
		m.color = card.Color
	}
	m.value = card.Value

	if p.hand.Len() == 0 {
		m.winner = p
		m.phase = PhaseFinished
		m.finishedAt = time.Now()
		m.publish(m.roster(), Event{Kind: EventOver, Code: m.code, Winner: p.name, State: m.snapshot(), Played: &card})
		return nil
	}

	if p.hand.Len() == 1 && !p.calledUno {
		m.deal(p, penaltyCards)
	}
	p.calledUno = false

	switch {
	case card.Value == model.ValueReverse:
		m.direction = -m.direction
	case card.Value == model.ValueSkip:
		m.current = m.next()
	case card.Value == model.ValueDrawTwo:
		m.deal(m.players[m.next()], 2)
		m.current = m.next()
	case card.Value == model.ValueWildDraw && m.rules.DrawFourPenalty:
		m.deal(m.players[m.next()], 4)
		m.current = m.next()
	}

	m.current = m.next()
	m.hasDrawn = false

	m.publish(m.roster(), Event{Kind: EventUpdated, Code: m.code, State: m.snapshot(), Played: &card})
	return nil
}

// Draw gives the current player one card. The turn does not advance.
func (m *Match) Draw(playerID string) (model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPlaying(); err != nil {
		return model.Card{}, err
	}
	p := m.players[m.current]
	if p.id != playerID {
		return model.Card{}, ErrNotYourTurn
	}

	c, err := drawFrom(&m.draw, &m.discard, m.rand)
	if err != nil {
		return model.Card{}, err
	}
	p.hand.Push(c)
	m.hasDrawn = true

	m.publish(m.roster(), Event{Kind: EventUpdated, Code: m.code, State: m.snapshot()})
	return c, nil
}

// DeclareLowHand marks a player holding exactly two cards as having called UNO in advance.
// It reports whether the declaration was recorded.
func (m *Match) DeclareLowHand(playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPlaying(); err != nil {
		return false, err
	}
	i := m.find(playerID)
	if i < 0 {
		return false, ErrPlayerNotInMatch
	}
	p := m.players[i]
	if p.hand.Len() != 2 {
		return false, nil
	}
	p.calledUno = true

	m.publish(m.roster(), Event{Kind: EventUpdated, Code: m.code, State: m.snapshot()})
	return true, nil
}

func (m *Match) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Match) Lobby() []LobbyPlayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lobby()
}

func (m *Match) checkPlaying() error {
	switch m.phase {
	case PhaseLobby:
		return ErrMatchNotStarted
	case PhaseFinished:
		return ErrMatchFinished
	}
	return nil
}

// deal moves up to n cards to p, stopping early if both piles run dry.
func (m *Match) deal(p *player, n int) {
	for i := 0; i < n; i++ {
		c, err := drawFrom(&m.draw, &m.discard, m.rand)
		if err != nil {
			return
		}
		p.hand.Push(c)
	}
}

func (m *Match) next() int {
	n := len(m.players)
	return ((m.current+m.direction)%n + n) % n
}

func (m *Match) find(playerID string) int {
	for i, p := range m.players {
		if p.id == playerID {
			return i
		}
	}
	return -1
}

func (m *Match) roster() []string {
	ids := make([]string, len(m.players))
	for i, p := range m.players {
		ids[i] = p.id
	}
	return ids
}

func (m *Match) lobby() []LobbyPlayer {
	out := make([]LobbyPlayer, len(m.players))
	for i, p := range m.players {
		out[i] = LobbyPlayer{ID: p.id, Name: p.name, IsHost: p.isHost}
	}
	return out
}

func (m *Match) publishLobby() {
	m.publish(m.roster(), Event{Kind: EventLobbyUpdate, Code: m.code, Lobby: m.lobby()})
}

func (m *Match) publish(recipients []string, ev Event) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(recipients, ev)
}

func (m *Match) snapshot() *Snapshot {
	s := &Snapshot{
		Code:               m.code,
		Phase:              m.phase,
		Players:            make([]PlayerView, len(m.players)),
		DrawPile:           m.draw.Clone(),
		DrawPileCount:      m.draw.Len(),
		DiscardPile:        m.discard.Clone(),
		CurrentColor:       m.color,
		CurrentValue:       m.value,
		CurrentPlayerIndex: m.current,
		Direction:          m.direction,
		HasDrawn:           m.hasDrawn,
	}
	for i, p := range m.players {
		s.Players[i] = PlayerView{
			ID:        p.id,
			Name:      p.name,
			IsHost:    p.isHost,
			Hand:      p.hand.Clone(),
			HandCount: p.hand.Len(),
			CalledUno: p.calledUno,
		}
	}
	if m.winner != nil {
		s.Winner = m.winner.name
	}
	return s
}
