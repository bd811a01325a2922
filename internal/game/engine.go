// internal/game/engine.go
//
// Core game engine for a single Set session.
// Responsibilities:
//   - Start new games: validate sizes, rebuild deck and board, deal the opening cards.
//   - Handle position clicks: select/deselect, resolve a completed triple, clear a matched one.
//   - Deal extra cards, charging a penalty only when a Set was already on the board.
//   - Score triples and toggle hints.
//
// Notes:
//   - An Engine is not safe for concurrent use; callers serialize access per session.
//   - All randomness (shuffle, draw, slot choice) comes from the injected *rand.Rand.
//   - The hint cache is invalidated by every command and recomputed lazily.
package game

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

const defaultHintsLabel = "Hints"

// Engine owns the board, deck and score of one game.
type Engine struct {
	ID string

	cfg   Config
	rng   *rand.Rand
	board *Board
	deck  *Deck

	score      int
	extraDeals int // extra deals taken while a Set was on the board
	setsFound  int
	removed    int // cards permanently out of play

	status     string
	hintsLabel string

	hintsVisible bool
	shown        []Hint // hints currently displayed

	hints      []Hint // cache of FindSets for the current board
	hintsFresh bool
}

// New constructs an engine and starts its first game.
// If rng is nil a time-seeded source is used.
func New(cfg Config, rng *rand.Rand) (*Engine, error) {
	if rng == nil {
		rng = newRand()
	}
	e := &Engine{ID: uuid.NewString(), cfg: cfg, rng: rng}
	if err := e.NewGame(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewGame resets score and penalties, rebuilds deck and board, and deals up to
// InitialDeal cards without highlight.
func (e *Engine) NewGame() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	board, err := NewBoard(e.cfg.BoardPositions)
	if err != nil {
		return err
	}
	deck, err := NewDeck(e.cfg.DeckSize, e.rng)
	if err != nil {
		return err
	}

	e.board, e.deck = board, deck
	e.score, e.extraDeals, e.setsFound, e.removed = 0, 0, 0, 0

	e.deal(min(e.cfg.DeckSize, InitialDeal), false)
	e.clearHints()
	return nil
}

// DealExtraCards deals DealSize more cards with highlight. The extra-deal
// penalty counter only grows when a Set was already on the board.
func (e *Engine) DealExtraCards() View {
	if len(e.findSets()) > 0 {
		e.extraDeals++
	}
	e.deal(DealSize, true)
	return e.View()
}

// SelectPosition handles a click on a board position. Out-of-range indices
// are ignored.
//
// A resolved triple is settled first: a Successful one is removed and
// replaced (and a click on one of its cards ends there), a Failed one is
// reset. Then the clicked card's selection is toggled and, if three cards are
// selected, the triple is validated and scored.
func (e *Engine) SelectPosition(index int) View {
	if !e.board.inRange(index) {
		return e.View()
	}
	e.board.ClearState(Dealt)
	if !e.hintsVisible {
		e.status = ""
	}

	if sel := e.board.SelectedPositions(); len(sel) == 3 {
		cleared := false
		for _, i := range sel {
			switch e.board.positions[i].State {
			case Successful:
				e.board.remove(i)
				e.removed++
				cleared = true
			case Failed:
				e.board.setState(i, Unselected)
			}
		}
		if cleared {
			e.deal(DealSize, true)
			if slices.Contains(sel, index) {
				return e.View()
			}
		}
	}

	if p := e.board.positions[index]; !p.Empty() {
		switch p.State {
		case Unselected, Dealt:
			e.board.setState(index, Selected)
		default:
			e.board.setState(index, Unselected)
		}
	}

	if sel := e.board.SelectedPositions(); len(sel) == 3 {
		e.resolve(sel)
	}
	e.invalidateHints()
	return e.View()
}

// ToggleHints hides visible hints, or computes and shows them.
// Showing hints is free; scoring a Set while they are visible is not.
func (e *Engine) ToggleHints() View {
	if e.hintsVisible {
		e.clearHints()
		return e.View()
	}
	found := e.findSets()
	if len(found) == 0 {
		e.status = "No Sets among the cards shown"
		e.hintsLabel = defaultHintsLabel
		return e.View()
	}
	e.shown = append([]Hint(nil), found...)
	e.status = formatHints(found)
	e.hintsLabel = fmt.Sprintf("%s (%d)", defaultHintsLabel, len(found))
	e.hintsVisible = true
	return e.View()
}

// resolve marks a complete triple Successful or Failed and applies the scoring
// policy exactly once.
func (e *Engine) resolve(sel []int) {
	ok := e.isSetAt(sel)
	state := Failed
	if ok {
		state = Successful
	}
	for _, i := range sel {
		e.board.setState(i, state)
	}

	points := -PenaltyFailed
	if ok {
		points = ScoreSuccess - e.extraDeals*PenaltyExtraDeal
		if e.hintsVisible {
			points -= PenaltyHintsVisible
		}
		e.setsFound++
	}
	e.score += points
	e.status = fmt.Sprintf("%d points recorded for this Set", points)
}

// deal clears the previous deal highlight, removes a pending Successful
// triple, then places up to n cards into random available positions. It stops
// early when the deck or the board runs out and returns the number dealt.
func (e *Engine) deal(n int, highlight bool) int {
	e.board.ClearState(Dealt)

	if sel := e.board.SelectedPositions(); len(sel) == 3 && e.isSetAt(sel) {
		for _, i := range sel {
			e.board.remove(i)
			e.removed++
		}
	}

	state := Unselected
	if highlight {
		state = Dealt
	}
	count := 0
	for count < n {
		avail := e.board.AvailablePositions()
		if len(avail) == 0 {
			break
		}
		c, ok := e.deck.Draw()
		if !ok {
			break
		}
		if e.board.place(avail[e.rng.Intn(len(avail))], c, state) {
			e.removed++
		}
		count++
	}

	e.clearHints()
	e.status = fmt.Sprintf("%d new cards have been dealt", count)
	return count
}

func (e *Engine) isSetAt(sel []int) bool {
	if len(sel) != 3 {
		return false
	}
	cards := make([]Card, 0, 3)
	for _, i := range sel {
		p := e.board.positions[i]
		if p.Empty() {
			return false
		}
		cards = append(cards, *p.Card)
	}
	return IsSet(cards...)
}

// findSets returns the cached hint search, recomputing it if stale.
func (e *Engine) findSets() []Hint {
	if !e.hintsFresh {
		e.hints = FindSets(e.board)
		e.hintsFresh = true
	}
	return e.hints
}

func (e *Engine) invalidateHints() {
	e.hints = nil
	e.hintsFresh = false
}

func (e *Engine) clearHints() {
	e.invalidateHints()
	e.shown = nil
	e.hintsLabel = defaultHintsLabel
	e.hintsVisible = false
	e.status = ""
}

// CanDeal reports whether a deal could place at least one card.
func (e *Engine) CanDeal() bool {
	return e.deck.Len() > 0 && len(e.board.AvailablePositions()) > 0
}

// Over reports whether the game is finished: the deck is exhausted and no
// Set remains on the board.
func (e *Engine) Over() bool {
	return e.deck.Len() == 0 && len(e.findSets()) == 0
}

func (e *Engine) Config() Config     { return e.cfg }
func (e *Engine) Score() int         { return e.score }
func (e *Engine) Status() string     { return e.status }
func (e *Engine) HintsLabel() string { return e.hintsLabel }
func (e *Engine) HintsVisible() bool { return e.hintsVisible }
func (e *Engine) ExtraDeals() int    { return e.extraDeals }
func (e *Engine) SetsFound() int     { return e.setsFound }
func (e *Engine) DeckRemaining() int { return e.deck.Len() }
func (e *Engine) Removed() int       { return e.removed }

// Board returns a deep copy of the board; changes to it never reach the engine.
func (e *Engine) Board() *Board {
	positions := make([]Position, len(e.board.positions))
	for i, p := range e.board.positions {
		if p.Card != nil {
			c := *p.Card
			p.Card = &c
		}
		positions[i] = p
	}
	return &Board{positions: positions}
}

// View snapshots the engine for the presentation layer.
func (e *Engine) View() View {
	positions := make([]PositionView, len(e.board.positions))
	for i, p := range e.board.positions {
		pv := PositionView{Index: i}
		if p.Card != nil {
			c := *p.Card
			pv.Card = &c
			pv.State = p.State
		}
		positions[i] = pv
	}
	return View{
		ID:            e.ID,
		Positions:     positions,
		Score:         e.score,
		Status:        e.status,
		HintsLabel:    e.hintsLabel,
		HintsVisible:  e.hintsVisible,
		Hints:         append([]Hint(nil), e.shown...),
		CanDeal:       e.CanDeal(),
		DeckRemaining: e.deck.Len(),
		Removed:       e.removed,
		SetsFound:     e.setsFound,
		ExtraDeals:    e.extraDeals,
		Over:          e.Over(),
	}
}
