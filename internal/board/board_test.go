package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPositionReserves(t *testing.T) {
	p := New(5)
	require.Equal(t, Reserves{Flats: 21, Capstones: 1}, p.Reserves(White))
	require.Equal(t, Reserves{Flats: 21, Capstones: 1}, p.Reserves(Black))
	require.Equal(t, White, p.SideToMove())
	require.Equal(t, 1, p.Ply())
}

func TestOpeningSwapPlacesOpponentColor(t *testing.T) {
	p := New(5)
	moves := p.GenerateMoves(nil)
	for _, m := range moves {
		require.Equal(t, Place, m.Kind)
		require.Equal(t, Flat, m.Placed)
	}
	mv, err := p.ParseMove("a1")
	require.NoError(t, err)
	tok := p.DoMove(mv)
	require.Equal(t, Black, p.StackAt(mv.Square).TopColor())
	p.UndoMove(tok)
	require.True(t, p.StackAt(mv.Square).Empty())
}

func TestDoUndoMoveRoundTrip(t *testing.T) {
	p := New(5)
	var tokens []ReverseToken
	script := []string{"a1", "e5", "a2", "e4", "b2", "Sb3", "Cc3"}
	for _, s := range script {
		mv, err := p.ParseMove(s)
		require.NoError(t, err, s)
		tokens = append(tokens, p.DoMove(mv))
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		p.UndoMove(tokens[i])
	}
	fresh := New(5)
	require.Equal(t, fresh.squares, p.squares)
	require.Equal(t, fresh.reserves, p.reserves)
	require.Equal(t, fresh.toMove, p.toMove)
	require.Equal(t, fresh.ply, p.ply)
}

func TestSpreadNotationRoundTrip(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5 a2 e4 b2 e3")
	mv, err := p.ParseMove("2b2>11")
	require.NoError(t, err)
	require.Equal(t, Spread, mv.Kind)
	require.Equal(t, int8(2), mv.Count)
	require.Equal(t, int8(2), mv.DropCount)
	require.Equal(t, "2b2>11", p.FormatMove(mv))
}

func TestSpreadMovesTopToFarSquare(t *testing.T) {
	// a1 gets a 2-high stack: bottom is the swap-placed Black flat, top is a
	// White flat carried over from b1.
	p := MustParseAndApply(5, "a1 e5 b1 e4 b1<")
	a1 := squareAt(5, 0, 0)
	require.Equal(t, 2, p.StackAt(a1).Len())

	mv, err := p.ParseMove("2a1>11")
	require.NoError(t, err)
	tok := p.DoMove(mv)
	require.True(t, p.StackAt(a1).Empty())
	b1 := p.StackAt(squareAt(5, 1, 0))
	require.Equal(t, 1, b1.Len())
	require.Equal(t, Black, b1.TopColor())
	c1 := p.StackAt(squareAt(5, 2, 0))
	require.Equal(t, 1, c1.Len())
	require.Equal(t, White, c1.TopColor())
	p.UndoMove(tok)
	require.Equal(t, 2, p.StackAt(a1).Len())
}

func TestWallBlocksSpreadUnlessFlattenedByCapstone(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5 a2 e4 b2 e3 Sc2 e2")
	moves := p.GenerateMoves(nil)
	for _, m := range moves {
		if m.Kind == Spread && m.Square == squareAt(5, 1, 1) && m.Direction == Right {
			// A single flat can never enter a wall.
			t.Fatalf("flat spread into wall should not be legal: %s", p.FormatMove(m))
		}
	}
}

func TestCapstoneFlattensWall(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5 a2 e4 Sc2 e3")
	mv, err := p.ParseMove("Cb2")
	require.NoError(t, err)
	p.DoMove(mv)
	mv2, err := p.ParseMove("b2>*")
	require.NoError(t, err)
	require.True(t, mv2.Flattens)
	tok := p.DoMove(mv2)
	// The capstone itself ends up on top; the wall it flattened is buried
	// (implicitly flat) underneath it.
	require.Equal(t, Cap, p.StackAt(squareAt(5, 2, 1)).TopKind())
	p.UndoMove(tok)
	require.Equal(t, Wall, p.StackAt(squareAt(5, 2, 1)).TopKind())
}

func TestRoadWinDetection(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5 a2 b4 b2 c4 c2 d4 d2 c3 e2")
	result, reason := p.GameResult()
	require.Equal(t, WhiteWin, result)
	require.Equal(t, RoadWin, reason)
	require.True(t, p.IsTerminal())
}

func TestFlatWinOnFullBoard(t *testing.T) {
	// 3x3 with no road: fill the board in a checkerboard (White a1 c1 b2 a3
	// c3, Black b1 a2 c2 b3) and compare flat counts.
	p := MustParseAndApply(3, "b3 a3 c3 a2 b2 c2 a1 b1 c1")
	result, reason := p.GameResult()
	require.NotEqual(t, NoResult, result)
	require.Equal(t, FlatWin, reason)
}

func TestMoveGenerationDoesNotAllocateWithCapacity(t *testing.T) {
	p := New(5)
	buf := make([]Move, 0, 64)
	moves := p.GenerateMoves(buf)
	require.True(t, len(moves) > 0)
}

func TestRenderShowsPiecesAndToMove(t *testing.T) {
	p := MustParseAndApply(5, "a1 e5 Sa2")
	out := p.Render()
	require.Contains(t, out, "Black to move")
	require.Contains(t, out, "wS") // a2's wall is White's own piece (ply 3, past the swap window)
}

func TestResultAndWinReasonStrings(t *testing.T) {
	require.Equal(t, "WhiteWin", WhiteWin.String())
	require.Equal(t, "BlackWin", BlackWin.String())
	require.Equal(t, "Draw", DrawResult.String())
	require.Equal(t, "NoResult", NoResult.String())
	require.Equal(t, "RoadWin", RoadWin.String())
	require.Equal(t, "FlatWin", FlatWin.String())
	require.Equal(t, "NoWin", NoWin.String())
}
