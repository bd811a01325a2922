package game

import (
	"testing"

	"golang.org/x/exp/rand"
)

func card(s, n, c, f uint8) Card {
	return Card{Symbol: Symbol(s), Count: Count(n), Color: Color(c), Shading: Shading(f)}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// capCards returns the 16 cards whose attributes are all 0 or 1.
// No three of them form a Set.
func capCards() []Card {
	var out []Card
	for s := uint8(0); s < 2; s++ {
		for n := uint8(0); n < 2; n++ {
			for c := uint8(0); c < 2; c++ {
				for f := uint8(0); f < 2; f++ {
					out = append(out, card(s, n, c, f))
				}
			}
		}
	}
	return out
}

var (
	setA = card(0, 0, 0, 0)
	setB = card(1, 0, 0, 0)
	setC = card(2, 0, 0, 0)
)

// oneSetLayout places twelve cards holding exactly one Set, at positions 2, 5 and 9.
func oneSetLayout() map[int]Card {
	layout := map[int]Card{2: setA, 5: setB, 9: setC}
	var filler []Card
	for _, c := range capCards() {
		if c != setA && c != setB {
			filler = append(filler, c)
		}
	}
	for i := 0; i < 12; i++ {
		if _, ok := layout[i]; ok {
			continue
		}
		layout[i] = filler[0]
		filler = filler[1:]
	}
	return layout
}

// noSetLayout places twelve cards without any Set at positions 0..11.
func noSetLayout() map[int]Card {
	layout := map[int]Card{}
	for i, c := range capCards()[:12] {
		layout[i] = c
	}
	return layout
}

// rigged returns a default-sized engine whose board holds layout and whose deck
// holds every other card.
func rigged(t *testing.T, layout map[int]Card) *Engine {
	t.Helper()
	used := map[Card]bool{}
	for _, c := range layout {
		used[c] = true
	}
	var rest []Card
	for _, c := range AllCards() {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	return riggedWithDeck(t, layout, rest)
}

func riggedWithDeck(t *testing.T, layout map[int]Card, deck []Card) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), seeded(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := NewBoard(MaxBoardPositions)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	for i, c := range layout {
		b.place(i, c, Unselected)
	}
	e.board = b
	e.deck = &Deck{cards: append([]Card(nil), deck...), rng: e.rng}
	e.clearHints()
	return e
}

func statesOf(e *Engine) []State {
	out := make([]State, e.board.Len())
	for i, p := range e.board.positions {
		out[i] = p.State
	}
	return out
}

func countState(e *Engine, s State) int {
	n := 0
	for _, p := range e.board.positions {
		if !p.Empty() && p.State == s {
			n++
		}
	}
	return n
}
