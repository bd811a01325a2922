package game

// IsSet reports whether cards form a Set: exactly three distinct cards such
// that, for every attribute, the three values are all equal or all different.
//
// With values in 0..2 an attribute is consistent iff the three values sum to
// a multiple of 3; two-equal-one-different never does.
func IsSet(cards ...Card) bool {
	if len(cards) != 3 {
		return false
	}
	a, b, c := cards[0], cards[1], cards[2]
	if a == b || b == c || a == c {
		return false
	}
	x, y, z := a.attrs(), b.attrs(), c.attrs()
	for i := range x {
		if (x[i]+y[i]+z[i])%attributeValues != 0 {
			return false
		}
	}
	return true
}
