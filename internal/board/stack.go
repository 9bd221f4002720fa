package board

// Stack is the content of one square: zero or more pieces, bottom to top.
// Every piece below the top is implicitly flat; only the top carries a Kind.
//
// Stacks are stored bottom-first so that picking up the top n pieces for a
// spread is a slice of the tail, and dropping pieces back on undo is a plain
// append.
type Stack struct {
	colors []Color
	top    Kind
}

// Len returns the number of pieces in the stack.
func (s Stack) Len() int {
	return len(s.colors)
}

// Empty reports whether the square is unoccupied.
func (s Stack) Empty() bool {
	return len(s.colors) == 0
}

// TopColor returns the color of the top piece. Only valid if !Empty().
func (s Stack) TopColor() Color {
	return s.colors[len(s.colors)-1]
}

// TopKind returns the kind of the top piece. Only valid if !Empty().
func (s Stack) TopKind() Kind {
	return s.top
}

// RoadColor returns the color this square contributes to a road, and
// whether it contributes at all (false for empty squares and walls).
func (s Stack) RoadColor() (c Color, ok bool) {
	if s.Empty() || !s.top.RoadPiece() {
		return 0, false
	}
	return s.TopColor(), true
}

// CountColor returns how many pieces of the given color are in the stack.
func (s Stack) CountColor(c Color) int {
	n := 0
	for _, sc := range s.colors {
		if sc == c {
			n++
		}
	}
	return n
}

// clone returns an independent copy, used by Position.Clone and the symmetry
// transforms when a full position snapshot is needed rather than
// mutate-and-undo.
func (s Stack) clone() Stack {
	cp := Stack{top: s.top}
	if len(s.colors) > 0 {
		cp.colors = append([]Color(nil), s.colors...)
	}
	return cp
}

// push places a new piece of the given color and kind on top.
func (s *Stack) push(c Color, k Kind) {
	s.colors = append(s.colors, c)
	s.top = k
}

// take removes the top n pieces (bottom to top, preserving order) and
// returns them. The square's new top kind becomes Flat, since only a carried
// piece may be a wall or capstone and those always move as the sole top
// piece of the carry.
func (s *Stack) take(n int) []Color {
	idx := len(s.colors) - n
	taken := append([]Color(nil), s.colors[idx:]...)
	s.colors = s.colors[:idx]
	if idx == 0 {
		// An emptied square goes back to the nil slice of a fresh one.
		s.colors = nil
	}
	s.top = Flat
	return taken
}

// drop appends carried pieces on top, with the given final kind (Flat unless
// this is the last square of the spread and the carried top piece is a wall
// or capstone).
func (s *Stack) drop(pieces []Color, finalKind Kind) {
	s.colors = append(s.colors, pieces...)
	s.top = finalKind
}
