// Package eval implements the linear value and policy evaluators the
// searcher treats as an oracle: a dot product between a position's (or a
// candidate move's) feature vector and a learned weight vector, squashed
// into a probability. Neither evaluator has internal synchronization of its
// own; concurrent reads (as done from parallel self-play games sharing one
// evaluator) are safe, concurrent writes through the slice returned by
// Weights are not and must be serialized by the caller.
package eval

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/hoelzro/taklet/internal/board"
)

// Sigmoid squashes a logit into a (0,1) win probability, per the value
// convention in the oracle contract.
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// SigmoidGradient returns d(sigmoid)/dx given the already-computed sigmoid
// output (not the input), since that is what the chain rule needs in
// practice: score*(1-score).
func SigmoidGradient(score float32) float32 {
	return score * (1 - score)
}

// Softmax normalizes a slice of logits into a probability distribution,
// in place, using the standard max-subtraction for numeric stability.
func Softmax(logits []float32) {
	if len(logits) == 0 {
		return
	}
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}
	var sum float32
	for i, l := range logits {
		e := math32.Exp(l - max)
		logits[i] = e
		sum += e
	}
	if sum == 0 {
		return
	}
	for i := range logits {
		logits[i] /= sum
	}
}

func dot(features, weights []float32) float32 {
	var sum float32
	for i, f := range features {
		sum += f * weights[i]
	}
	return sum
}

// NumValueFeatures and NumPolicyFeatures are the weight-vector lengths of
// Value and Policy: the board package's feature-vector lengths.
const (
	NumValueFeatures  = board.NumValueFeatures
	NumPolicyFeatures = board.NumPolicyFeatures
)

// Value is a linear evaluator over board.NumValueFeatures features,
// squashed through a sigmoid into a win probability for the side to move.
type Value struct {
	weights []float32
}

// NewValue wraps a weight vector of length board.NumValueFeatures. Ownership
// of weights is transferred to the Value.
func NewValue(weights []float32) (*Value, error) {
	if len(weights) != board.NumValueFeatures {
		return nil, errors.Errorf("eval: value weights must have length %d, got %d", board.NumValueFeatures, len(weights))
	}
	return &Value{weights: weights}, nil
}

// NewZeroValue returns a Value initialized to all-zero weights, the usual
// starting point before tuning.
func NewZeroValue() *Value {
	return &Value{weights: make([]float32, board.NumValueFeatures)}
}

// Weights exposes the underlying weight vector. The slice is shared with the
// Value, not copied; internal/tuner.Tune copies it before training.
func (v *Value) Weights() []float32 {
	return v.weights
}

// Clone returns an independent copy.
func (v *Value) Clone() *Value {
	return &Value{weights: slices.Clone(v.weights)}
}

// Score returns the predicted win probability for the side to move.
func (v *Value) Score(pos *board.Position) float32 {
	var features [board.NumValueFeatures]float32
	pos.StaticEvalCoefficients(features[:])
	return v.PredictFeatures(features[:])
}

// PredictFeatures scores an already-extracted feature vector; Score calls it
// after extracting the features from a Position.
func (v *Value) PredictFeatures(features []float32) float32 {
	return Sigmoid(dot(features, v.weights))
}

func (v *Value) String() string {
	return fmt.Sprintf("eval.Value(%d features)", len(v.weights))
}
