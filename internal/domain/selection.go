package domain

// Side identifies which leg of a selection a token is picked for.
type Side int

const (
	SideFrom Side = iota
	SideTo
)

// String returns the string representation of the side.
func (s Side) String() string {
	switch s {
	case SideFrom:
		return "from"
	case SideTo:
		return "to"
	default:
		return "unknown"
	}
}

// ParseSide converts a string into a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "from":
		return SideFrom, true
	case "to":
		return SideTo, true
	}
	return SideFrom, false
}

// Selection holds the current from/to token pair.
// When both sides are present they always reference distinct symbols.
type Selection struct {
	From *Token
	To   *Token
}

// SelectionPatch carries partial selection updates; nil sides are left untouched.
type SelectionPatch struct {
	From *Token
	To   *Token
}

// Pick returns the selection after picking token for the given side.
// Picking the symbol currently on the opposite side exchanges the pair
// instead of producing a duplicate, so the distinct-pair invariant holds.
func (s Selection) Pick(side Side, token Token) Selection {
	t := token
	switch side {
	case SideFrom:
		if s.To != nil && s.To.Symbol == t.Symbol {
			return Selection{From: s.To, To: s.From}
		}
		return Selection{From: &t, To: s.To}
	case SideTo:
		if s.From != nil && s.From.Symbol == t.Symbol {
			return Selection{From: s.To, To: s.From}
		}
		return Selection{From: s.From, To: &t}
	}
	return s
}

// Switch exchanges the from and to legs.
// Returns the selection unchanged if either side is absent.
func (s Selection) Switch() Selection {
	if s.From == nil || s.To == nil {
		return s
	}
	return Selection{From: s.To, To: s.From}
}

// Complete reports whether both sides are selected.
func (s Selection) Complete() bool {
	return s.From != nil && s.To != nil
}
