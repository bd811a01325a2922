// internal/game/types.go
//
// Core type definitions for the Set game engine.
// Defines:
//   - State: per-position visual/selection state.
//   - Config: board and deck sizes, validated at game start.
//   - ConfigurationError: the only error the engine returns.
//   - View / PositionView: read-only snapshots handed to the presentation layer.

package game

import "fmt"

// Game-wide limits and scoring constants.
const (
	MaxBoardPositions = 24
	MaxDeckSize       = 81

	InitialDeal = 12 // cards dealt by NewGame
	DealSize    = 3  // cards dealt by DealExtraCards and after a cleared Set

	ScoreSuccess        = 100
	PenaltyFailed       = 15
	PenaltyExtraDeal    = 5  // per extra deal taken while a Set was on the board
	PenaltyHintsVisible = 25 // scoring a Set while hints are shown
)

// State is the visual/selection state of a board position.
// It is only meaningful while the position holds a card.
type State uint8

const (
	Unselected State = iota
	Selected
	Dealt // highlight for positions filled by the most recent deal
	Successful
	Failed
)

var stateNames = [...]string{"unselected", "selected", "dealt", "successful", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Config sizes a game.
type Config struct {
	BoardPositions int
	DeckSize       int
}

// DefaultConfig is the standard 24-position board with the full 81-card deck.
func DefaultConfig() Config {
	return Config{BoardPositions: MaxBoardPositions, DeckSize: MaxDeckSize}
}

// Validate checks both sizes against their supported ranges.
func (c Config) Validate() error {
	if err := checkRange("boardPositions", c.BoardPositions, 1, MaxBoardPositions); err != nil {
		return err
	}
	return checkRange("deckSize", c.DeckSize, 1, MaxDeckSize)
}

// ConfigurationError reports a game size outside its supported range.
type ConfigurationError struct {
	Param string
	Value int
	Min   int
	Max   int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("game: %s [%d] must be in the range %d...%d", e.Param, e.Value, e.Min, e.Max)
}

func checkRange(param string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &ConfigurationError{Param: param, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// PositionView is one board slot as seen by the presentation layer.
// Card is nil for an empty slot, whose State is always Unselected.
type PositionView struct {
	Index int   `json:"index"`
	Card  *Card `json:"card"`
	State State `json:"state"`
}

// View is a read-only snapshot of an Engine taken after a command.
type View struct {
	ID            string         `json:"id"`
	Positions     []PositionView `json:"positions"`
	Score         int            `json:"score"`
	Status        string         `json:"status"`
	HintsLabel    string         `json:"hintsLabel"`
	HintsVisible  bool           `json:"hintsVisible"`
	Hints         []Hint         `json:"hints,omitempty"`
	CanDeal       bool           `json:"canDeal"`
	DeckRemaining int            `json:"deckRemaining"`
	Removed       int            `json:"removed"`
	SetsFound     int            `json:"setsFound"`
	ExtraDeals    int            `json:"extraDeals"`
	Over          bool           `json:"over"`
}
