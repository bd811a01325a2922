package game

// Position is one fixed board slot.
type Position struct {
	Card  *Card
	State State
}

// Empty reports whether the slot holds no card.
func (p Position) Empty() bool { return p.Card == nil }

// Board is a fixed-length sequence of positions; an index is a visual slot
// and stays stable for the lifetime of a game.
type Board struct {
	positions []Position
}

// NewBoard returns a board of size empty positions.
func NewBoard(size int) (*Board, error) {
	if err := checkRange("boardPositions", size, 1, MaxBoardPositions); err != nil {
		return nil, err
	}
	return &Board{positions: make([]Position, size)}, nil
}

// Len is the number of positions.
func (b *Board) Len() int { return len(b.positions) }

// At returns the position at i; ok is false when i is out of range.
func (b *Board) At(i int) (p Position, ok bool) {
	if !b.inRange(i) {
		return Position{}, false
	}
	return b.positions[i], true
}

// PositionsWithCards lists occupied indices in ascending order.
func (b *Board) PositionsWithCards() []int {
	return b.indices(func(p Position) bool { return !p.Empty() })
}

// AvailablePositions lists indices that can take a new card: empty slots and
// slots whose card belongs to a matched (Successful) triple.
func (b *Board) AvailablePositions() []int {
	return b.indices(func(p Position) bool { return p.Empty() || p.State == Successful })
}

// SelectedPositions lists occupied indices taking part in the current triple:
// Selected, Successful or Failed. Dealt highlights are not selections.
func (b *Board) SelectedPositions() []int {
	return b.indices(func(p Position) bool {
		if p.Empty() {
			return false
		}
		switch p.State {
		case Selected, Successful, Failed:
			return true
		}
		return false
	})
}

// ClearState resets every occupied position in state s to Unselected.
func (b *Board) ClearState(s State) {
	for i := range b.positions {
		if !b.positions[i].Empty() && b.positions[i].State == s {
			b.positions[i].State = Unselected
		}
	}
}

// Cards returns the cards currently on the board in index order.
func (b *Board) Cards() []Card {
	out := make([]Card, 0, len(b.positions))
	for _, p := range b.positions {
		if p.Card != nil {
			out = append(out, *p.Card)
		}
	}
	return out
}

func (b *Board) indices(keep func(Position) bool) []int {
	out := []int{}
	for i, p := range b.positions {
		if keep(p) {
			out = append(out, i)
		}
	}
	return out
}

func (b *Board) inRange(i int) bool { return i >= 0 && i < len(b.positions) }

// place puts c at i and reports whether a card was displaced.
func (b *Board) place(i int, c Card, s State) (displaced bool) {
	displaced = b.positions[i].Card != nil
	b.positions[i] = Position{Card: &c, State: s}
	return displaced
}

func (b *Board) remove(i int) {
	b.positions[i] = Position{}
}

func (b *Board) setState(i int, s State) {
	b.positions[i].State = s
}
