package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticEvalCoefficientsLength(t *testing.T) {
	p := New(5)
	out := make([]float32, NumValueFeatures)
	p.StaticEvalCoefficients(out)
	require.Equal(t, float32(1), out[NumValueFeatures-1], "bias feature must be 1")
	require.Equal(t, float32(21), out[2], "white flat reserves at start")
}

func TestStaticEvalCoefficientsPanicsOnBadLength(t *testing.T) {
	p := New(5)
	require.Panics(t, func() {
		p.StaticEvalCoefficients(make([]float32, 3))
	})
}

func TestCoefficientsForMoveBiasAndLegalMoveCount(t *testing.T) {
	p := New(5)
	gd := p.GroupData()
	moves := p.GenerateMoves(nil)
	out := make([]float32, NumPolicyFeatures)
	p.CoefficientsForMove(out, moves[0], gd, len(moves))
	require.Equal(t, float32(1), out[0], "bias feature must be 1")
	require.InDelta(t, 1.0/float32(len(moves)), out[8], 1e-6)
}

func TestCoefficientsForMoveReflectsGroupConnectivity(t *testing.T) {
	// Ply order under the opening swap: ply1/2 place the opponent's color,
	// so "e5 b1" leaves White holding b1 (placed on Black's ply2 "turn"),
	// then "a1 e1" is White's own ply3 flat at a1 (adjacent to b1) and
	// Black's ply4 flat at e1. White to move at ply5 has one connected
	// group {a1, b1}; placing at a2 (adjacent to it) should score higher
	// on the connectivity feature than the isolated square e4.
	p := MustParseAndApply(5, "e5 b1 a1 e1")
	require.Equal(t, White, p.SideToMove())
	gd := p.GroupData()
	moves := p.GenerateMoves(nil)

	var a2Move, e4Move Move
	var foundA2, foundE4 bool
	for _, mv := range moves {
		if mv.Kind != Place || mv.Placed != Flat {
			continue
		}
		switch mv.Square.string(5) {
		case "a2":
			a2Move, foundA2 = mv, true
		case "e4":
			e4Move, foundE4 = mv, true
		}
	}
	require.True(t, foundA2)
	require.True(t, foundE4)

	outA2 := make([]float32, NumPolicyFeatures)
	p.CoefficientsForMove(outA2, a2Move, gd, len(moves))
	outE4 := make([]float32, NumPolicyFeatures)
	p.CoefficientsForMove(outE4, e4Move, gd, len(moves))

	require.Greater(t, outA2[10], outE4[10])
	require.Equal(t, float32(0), outE4[10])
}
