package model

import "strconv"

type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorWild   Color = "wild"
)

// Colors lists the four playable colors in deck building order.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

func (c Color) IsPlayable() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	}
	return false
}

type Value string

const (
	ValueSkip     Value = "skip"
	ValueReverse  Value = "reverse"
	ValueDrawTwo  Value = "draw2"
	ValueWild     Value = "wild"
	ValueWildDraw Value = "wild4"
)

// ColoredValues lists every value printed on a colored card.
var ColoredValues = []Value{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ValueSkip, ValueReverse, ValueDrawTwo}

// Card is immutable once built. ID tells apart the two copies of a colored card.
type Card struct {
	Color Color  `json:"color"`
	Value Value  `json:"value"`
	ID    string `json:"id"`
}

func NewColoredCard(color Color, value Value, copyNumber int) Card {
	return Card{
		Color: color,
		Value: value,
		ID:    string(color) + "-" + string(value) + "-" + strconv.Itoa(copyNumber),
	}
}

func NewWildCard(value Value, n int) Card {
	return Card{
		Color: ColorWild,
		Value: value,
		ID:    string(value) + "-" + strconv.Itoa(n),
	}
}

func (c Card) IsWild() bool {
	return c.Color == ColorWild
}

// Matches reports whether c may be played on top of the given active color and value.
func (c Card) Matches(color Color, value Value) bool {
	return c.IsWild() || c.Color == color || c.Value == value
}

func (c Card) String() string {
	return c.ID
}
