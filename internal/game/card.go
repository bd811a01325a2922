// internal/game/card.go
//
// Card attributes for the Set deck.
// Each card carries four independent attributes, each drawn from a closed
// domain of exactly three values. Values are small integers (0..2) so the
// validator can reason about them arithmetically; names are only used at the
// presentation boundary (String / MarshalText).

package game

import "fmt"

// Symbol is the shape printed on a card.
type Symbol uint8

const (
	Triangle Symbol = iota
	Circle
	Square
)

// Count is the number of symbols printed on a card.
type Count uint8

const (
	One Count = iota
	Two
	Three
)

// Color is the ink color of a card's symbols.
type Color uint8

const (
	Red Color = iota
	Green
	Purple
)

// Shading is the fill style of a card's symbols.
type Shading uint8

const (
	Filled Shading = iota
	Striped
	Outlined
)

// attributeValues is the size of every attribute domain.
const attributeValues = 3

var (
	symbolNames  = [attributeValues]string{"triangle", "circle", "square"}
	countNames   = [attributeValues]string{"one", "two", "three"}
	colorNames   = [attributeValues]string{"red", "green", "purple"}
	shadingNames = [attributeValues]string{"filled", "striped", "outlined"}
)

func attrName(names [attributeValues]string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

func (s Symbol) String() string  { return attrName(symbolNames, uint8(s)) }
func (c Count) String() string   { return attrName(countNames, uint8(c)) }
func (c Color) String() string   { return attrName(colorNames, uint8(c)) }
func (s Shading) String() string { return attrName(shadingNames, uint8(s)) }

func (s Symbol) MarshalText() ([]byte, error)  { return []byte(s.String()), nil }
func (c Count) MarshalText() ([]byte, error)   { return []byte(c.String()), nil }
func (c Color) MarshalText() ([]byte, error)   { return []byte(c.String()), nil }
func (s Shading) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Card is an immutable value; two cards are the same card iff all four
// attributes match.
type Card struct {
	Symbol  Symbol  `json:"symbol"`
	Count   Count   `json:"count"`
	Color   Color   `json:"color"`
	Shading Shading `json:"shading"`
}

// String renders a card as "count color shading symbol", e.g. "two red striped circle".
func (c Card) String() string {
	return fmt.Sprintf("%s %s %s %s", c.Count, c.Color, c.Shading, c.Symbol)
}

func (c Card) attrs() [4]uint8 {
	return [4]uint8{uint8(c.Symbol), uint8(c.Count), uint8(c.Color), uint8(c.Shading)}
}

// AllCards returns the full attribute product (81 cards) in canonical order.
func AllCards() []Card {
	out := make([]Card, 0, MaxDeckSize)
	for s := Symbol(0); s < attributeValues; s++ {
		for n := Count(0); n < attributeValues; n++ {
			for c := Color(0); c < attributeValues; c++ {
				for f := Shading(0); f < attributeValues; f++ {
					out = append(out, Card{Symbol: s, Count: n, Color: c, Shading: f})
				}
			}
		}
	}
	return out
}
