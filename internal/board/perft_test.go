package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// perft counts leaf positions at the given depth, verifying along the way
// that every DoMove/UndoMove pair restores the position exactly: the
// property mutate-and-undo search traversal depends on.
func perft(t *testing.T, p *Position, depth int) int64 {
	t.Helper()
	if depth == 0 {
		return 1
	}
	moves := p.GenerateMoves(nil)
	if p.IsTerminal() {
		return 1
	}
	var total int64
	before := snapshot(p)
	for _, mv := range moves {
		tok := p.DoMove(mv)
		total += perft(t, p, depth-1)
		p.UndoMove(tok)
		require.Equal(t, before, snapshot(p), "position not restored after %s", p.FormatMove(mv))
	}
	return total
}

type positionSnapshot struct {
	squares  string
	toMove   Color
	ply      int
	reserves [2]Reserves
}

func snapshot(p *Position) positionSnapshot {
	s := make([]byte, 0, len(p.squares)*3)
	for _, st := range p.squares {
		s = append(s, byte(st.top))
		for _, c := range st.colors {
			s = append(s, byte(c)+1)
		}
		s = append(s, 0xff)
	}
	return positionSnapshot{
		squares:  string(s),
		toMove:   p.toMove,
		ply:      p.ply,
		reserves: p.reserves,
	}
}

func TestPerftSmallBoard(t *testing.T) {
	p := New(3)
	// Depth 2 keeps this fast; from the start it covers exactly the two
	// opening-swap plies.
	n := perft(t, p, 2)
	require.True(t, n > 0)
}

func TestPerftAfterOpeningOnFiveByFive(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5")
	n := perft(t, p, 2)
	require.True(t, n > 0)
}

func TestGenerateMovesCacheStableAcrossCalls(t *testing.T) {
	p := New(5)
	first := p.GenerateMoves(nil)
	second := p.GenerateMoves(nil)
	require.Equal(t, first, second)
}

// TestMoveGenerationSymmetry checks that perft counts are invariant under
// flip-x, flip-y, flip-colors, and the three non-trivial rotations, at every
// depth up to 2: none of these transforms changes which moves are legal or
// how many positions they reach.
func TestMoveGenerationSymmetry(t *testing.T) {
	base := MustParseAndApply(5, "c3 e5 c2 d5")
	basePerft := []int64{perft(t, base.Clone(), 0), perft(t, base.Clone(), 1), perft(t, base.Clone(), 2)}

	transforms := map[string]func(*Position) *Position{
		"flip-x":      (*Position).FlipX,
		"flip-y":      (*Position).FlipY,
		"flip-colors": (*Position).FlipColors,
		"rotate-90":   (*Position).Rotate90,
		"rotate-180":  (*Position).Rotate180,
		"rotate-270":  (*Position).Rotate270,
	}
	for name, transform := range transforms {
		t.Run(name, func(t *testing.T) {
			transformed := transform(base.Clone())
			for depth, want := range basePerft {
				require.Equal(t, want, perft(t, transformed.Clone(), depth), "depth %d under %s", depth, name)
			}
		})
	}
}
