package eval

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/hoelzro/taklet/internal/board"
)

// Policy is a linear evaluator over board.NumPolicyFeatures features,
// producing one logit per candidate move; Priors turns those logits into a
// probability distribution via softmax, the prior the selector mixes with
// visit statistics per the PUCT term.
type Policy struct {
	weights []float32
}

// NewPolicy wraps a weight vector of length board.NumPolicyFeatures.
func NewPolicy(weights []float32) (*Policy, error) {
	if len(weights) != board.NumPolicyFeatures {
		return nil, errors.Errorf("eval: policy weights must have length %d, got %d", board.NumPolicyFeatures, len(weights))
	}
	return &Policy{weights: weights}, nil
}

// NewZeroPolicy returns a Policy initialized to all-zero weights.
func NewZeroPolicy() *Policy {
	return &Policy{weights: make([]float32, board.NumPolicyFeatures)}
}

// Weights exposes the underlying weight vector; shared, not copied.
func (p *Policy) Weights() []float32 {
	return p.weights
}

// Clone returns an independent copy.
func (p *Policy) Clone() *Policy {
	return &Policy{weights: slices.Clone(p.weights)}
}

// Priors computes the softmax prior over every legal move at pos. The
// returned slice is indexed in parallel with moves.
func (p *Policy) Priors(pos *board.Position, moves []board.Move) []float32 {
	gd := pos.GroupData()
	logits := make([]float32, len(moves))
	var features [board.NumPolicyFeatures]float32
	for i, mv := range moves {
		pos.CoefficientsForMove(features[:], mv, gd, len(moves))
		logits[i] = dot(features[:], p.weights)
	}
	Softmax(logits)
	return logits
}

func (p *Policy) String() string {
	return fmt.Sprintf("eval.Policy(%d features)", len(p.weights))
}
