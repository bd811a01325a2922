package game

import (
	"time"

	"golang.org/x/exp/rand"
)

// Deck holds the cards that have not been dealt yet.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds the full 81-card product, shuffles it with rng and keeps the
// first size cards. A nil rng is replaced by a time-seeded source.
func NewDeck(size int, rng *rand.Rand) (*Deck, error) {
	if err := checkRange("deckSize", size, 1, MaxDeckSize); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = newRand()
	}
	all := AllCards()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return &Deck{cards: all[:size:size], rng: rng}, nil
}

// Len is the number of undealt cards.
func (d *Deck) Len() int { return len(d.cards) }

// Draw removes and returns a uniformly random card.
// ok is false once the deck is empty.
func (d *Deck) Draw() (c Card, ok bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	i := d.rng.Intn(len(d.cards))
	c = d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return c, true
}

// Cards returns a copy of the remaining cards in deck order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}
