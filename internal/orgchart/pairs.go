package orgchart

// Pair associates a person's name with the organizational role that
// most recently preceded it.
type Pair struct {
	Position string `json:"position"`
	Name     string `json:"name"`
}

// BuildPairs scans blocks in order, remembering only the most recent
// position block. Each name block pairs with that position; a name seen
// before any position is dropped. The last-seen state is local to the
// call, so callers get page isolation for free by calling per page.
func BuildPairs(blocks []TextBlock) []Pair {
	pairs := []Pair{}
	lastPosition := ""
	seenPosition := false
	for _, b := range blocks {
		switch b.Type {
		case BlockPosition:
			lastPosition = b.Text
			seenPosition = true
		case BlockName:
			if seenPosition {
				pairs = append(pairs, Pair{Position: lastPosition, Name: b.Text})
			}
		}
	}
	return pairs
}
