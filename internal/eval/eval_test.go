package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hoelzro/taklet/internal/board"
)

func TestSigmoidBounds(t *testing.T) {
	require.InDelta(t, 0.5, Sigmoid(0), 1e-6)
	require.True(t, Sigmoid(10) > 0.99)
	require.True(t, Sigmoid(-10) < 0.01)
}

func TestSigmoidGradientMatchesDerivative(t *testing.T) {
	s := Sigmoid(0.3)
	got := SigmoidGradient(s)
	// Numeric derivative via central difference.
	h := float32(1e-3)
	numeric := (Sigmoid(0.3+h) - Sigmoid(0.3-h)) / (2 * h)
	require.InDelta(t, numeric, got, 1e-3)
}

func TestSoftmaxSumsToOne(t *testing.T) {
	logits := []float32{1, 2, 3, -1}
	Softmax(logits)
	var sum float32
	for _, l := range logits {
		require.True(t, l > 0)
		sum += l
	}
	require.InDelta(t, 1.0, sum, 1e-5)
}

func TestSoftmaxUniformOnEqualLogits(t *testing.T) {
	logits := []float32{2, 2, 2}
	Softmax(logits)
	for _, l := range logits {
		require.InDelta(t, 1.0/3, l, 1e-6)
	}
}

func TestNewValueRejectsWrongLength(t *testing.T) {
	_, err := NewValue([]float32{1, 2, 3})
	require.Error(t, err)
}

func TestValueScoreAtStartingPositionIsNeutral(t *testing.T) {
	v := NewZeroValue()
	p := board.New(5)
	require.InDelta(t, 0.5, v.Score(p), 1e-6)
}

func TestValueScoreRespondsToWeights(t *testing.T) {
	weights := make([]float32, board.NumValueFeatures)
	weights[0] = 1 // own flat count
	v, err := NewValue(weights)
	require.NoError(t, err)
	p := board.MustParseAndApply(5, "a1 e5 a2")
	require.True(t, v.Score(p) > 0.5)
}

func TestPolicyPriorsSumToOne(t *testing.T) {
	p := NewZeroPolicy()
	pos := board.New(5)
	moves := pos.GenerateMoves(nil)
	priors := p.Priors(pos, moves)
	require.Equal(t, len(moves), len(priors))
	var sum float32
	for _, pr := range priors {
		sum += pr
	}
	require.InDelta(t, 1.0, sum, 1e-4)
}
