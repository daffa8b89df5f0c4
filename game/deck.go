package game

import (
	"math/rand"

	"uno/model"
)

// DeckSize is the number of cards in a full UNO deck.
const DeckSize = 108

// Pile is a stack of cards, the top is the last element.
type Pile []model.Card

func (p Pile) Len() int {
	return len(p)
}

func (p *Pile) Push(c model.Card) {
	*p = append(*p, c)
}

func (p *Pile) Pop() (model.Card, bool) {
	n := len(*p)
	if n == 0 {
		return model.Card{}, false
	}
	c := (*p)[n-1]
	*p = (*p)[:n-1]
	return c, true
}

func (p Pile) Top() (model.Card, bool) {
	if len(p) == 0 {
		return model.Card{}, false
	}
	return p[len(p)-1], true
}

func (p *Pile) InsertBottom(c model.Card) {
	*p = append(Pile{c}, *p...)
}

func (p Pile) Index(cardID string) int {
	for i, c := range p {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// Remove takes the card with the given id out of the pile keeping the order of the rest.
func (p *Pile) Remove(cardID string) (model.Card, bool) {
	i := p.Index(cardID)
	if i < 0 {
		return model.Card{}, false
	}
	c := (*p)[i]
	*p = append((*p)[:i], (*p)[i+1:]...)
	return c, true
}

func (p Pile) Shuffle(r *rand.Rand) {
	r.Shuffle(len(p), func(i, j int) {
		p[i], p[j] = p[j], p[i]
	})
}

func (p Pile) Clone() Pile {
	if p == nil {
		return Pile{}
	}
	out := make(Pile, len(p))
	copy(out, p)
	return out
}

// BuildDeck returns a shuffled 108 card deck: per color one zero and two of every other value,
// then four wild and four wild draw four cards.
func BuildDeck(r *rand.Rand) Pile {
	deck := make(Pile, 0, DeckSize)
	for _, color := range model.Colors {
		for _, value := range model.ColoredValues {
			deck = append(deck, model.NewColoredCard(color, value, 1))
			if value != "0" {
				deck = append(deck, model.NewColoredCard(color, value, 2))
			}
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, model.NewWildCard(model.ValueWild, i))
		deck = append(deck, model.NewWildCard(model.ValueWildDraw, i))
	}
	deck.Shuffle(r)
	return deck
}

// recycle turns every discard except the top into a freshly shuffled draw pile.
func recycle(draw, discard *Pile, r *rand.Rand) {
	top, ok := discard.Pop()
	if !ok {
		return
	}
	*draw = append(*draw, (*discard)...)
	draw.Shuffle(r)
	*discard = Pile{top}
}

// drawFrom pops the top of the draw pile, recycling the discard pile when the draw pile is empty.
func drawFrom(draw, discard *Pile, r *rand.Rand) (model.Card, error) {
	if draw.Len() == 0 {
		recycle(draw, discard, r)
	}
	c, ok := draw.Pop()
	if !ok {
		return model.Card{}, ErrDeckExhausted
	}
	return c, nil
}
