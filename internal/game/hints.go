package game

import (
	"fmt"
	"strings"
)

// Hint is a triple of board indices (ascending) that formed a Set when the
// hints were computed.
type Hint [3]int

// String renders the triple with 1-based position numbers, e.g. "3,6,10".
func (h Hint) String() string {
	return fmt.Sprintf("%d,%d,%d", h[0]+1, h[1]+1, h[2]+1)
}

// FindSets enumerates every triple i<j<k of occupied, non-Successful positions
// in lexicographic order and returns those forming a Set.
func FindSets(b *Board) []Hint {
	var idx []int
	for i, p := range b.positions {
		if p.Card != nil && p.State != Successful {
			idx = append(idx, i)
		}
	}
	if len(idx) < 3 {
		return nil
	}

	var out []Hint
	for i := 0; i < len(idx)-2; i++ {
		for j := i + 1; j < len(idx)-1; j++ {
			for k := j + 1; k < len(idx); k++ {
				p, q, r := idx[i], idx[j], idx[k]
				if IsSet(*b.positions[p].Card, *b.positions[q].Card, *b.positions[r].Card) {
					out = append(out, Hint{p, q, r})
				}
			}
		}
	}
	return out
}

// formatHints is the status text shown while hints are visible.
func formatHints(hints []Hint) string {
	var sb strings.Builder
	for _, h := range hints {
		sb.WriteString(h.String())
		sb.WriteString("   ")
	}
	return sb.String()
}
