// Package tuner implements supervised gradient-descent tuning of the linear
// value and policy parameter vectors from pools of self-play samples: a
// sigmoid-matching gradient and MSE loss, wrapped in a learning-rate
// schedule, Polyak momentum, and a parallel two-stage (f32 chunks, then f64)
// gradient reduction for self-play sample volumes.
package tuner

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/hoelzro/taklet/internal/eval"
)

// Sample is one labelled training example: a feature vector (value features
// or policy features, depending on which tuner entry point is used) and its
// target in [0,1].
type Sample struct {
	Features []float32
	Label    float32
}

// Config controls the gradient-descent schedule.
type Config struct {
	InitialLearningRate float32
	Momentum            float32 // Polyak momentum beta, default 0.95
	Parallelism         int     // goroutines used to reduce the gradient; 0 means runtime.GOMAXPROCS(0)

	// PlateauIterations is how many consecutive non-improving iterations
	// end a learning-rate phase.
	PlateauIterations int
	// ImprovementFactor is the minimum test-loss improvement ratio that
	// counts as progress; below it counts toward PlateauIterations.
	ImprovementFactor float32
}

// DefaultConfig returns the documented training schedule: momentum 0.95, a
// 100-iteration plateau window, and a 1.000001 improvement threshold.
func DefaultConfig(initialLearningRate float32) Config {
	return Config{
		InitialLearningRate: initialLearningRate,
		Momentum:            0.95,
		PlateauIterations:   100,
		ImprovementFactor:   1.000001,
	}
}

// learningRatePhaseDivisors is tried in order, each restarted from the best
// parameters found by the previous phase.
var learningRatePhaseDivisors = []float32{1, 3, 10, 30}

// Result is the outcome of a Tune call.
type Result struct {
	Weights       []float32
	TestLoss      float32
	InitialLoss   float32
	IterationsRun int
}

// Tune runs full-batch gradient descent with Polyak momentum over a
// learning-rate schedule, training on the first half of samples and
// early-stopping on the second half's loss (the orchestrator is expected to
// have already shuffled samples). It never returns a worse result than the
// parameters it started with.
func Tune(initial []float32, samples []Sample, cfg Config) Result {
	weights := append([]float32(nil), initial...)
	if len(samples) < 2 {
		return Result{Weights: weights, TestLoss: loss(weights, samples)}
	}

	train, test := splitHalves(samples)
	initialLoss := loss(weights, test)

	best := append([]float32(nil), weights...)
	bestLoss := initialLoss
	totalIters := 0

	for _, divisor := range learningRatePhaseDivisors {
		eta := cfg.InitialLearningRate / divisor
		weights = append([]float32(nil), best...)
		momentum := make([]float32, len(weights))

		noImprove := 0
		for noImprove < cfg.PlateauIterations {
			grad := gradient(weights, train, cfg.Parallelism)
			for i := range weights {
				momentum[i] = cfg.Momentum*momentum[i] + (1-cfg.Momentum)*grad[i]
				weights[i] -= eta * momentum[i]
			}
			totalIters++
			testLoss := loss(weights, test)
			if testLoss < bestLoss {
				improved := bestLoss == 0 || bestLoss/testLoss > cfg.ImprovementFactor
				bestLoss = testLoss
				best = append([]float32(nil), weights...)
				if improved {
					noImprove = 0
					continue
				}
			}
			noImprove++
		}
		klog.V(2).Infof("tuner: phase eta=%.6g done after %d total iterations, best test loss %.6f", eta, totalIters, bestLoss)
	}

	if bestLoss > initialLoss {
		klog.V(1).Infof("tuner: no improvement found, returning initial parameters (initial=%.6f, best-tried=%.6f)", initialLoss, bestLoss)
		return Result{Weights: initial, TestLoss: initialLoss, InitialLoss: initialLoss, IterationsRun: totalIters}
	}
	return Result{Weights: best, TestLoss: bestLoss, InitialLoss: initialLoss, IterationsRun: totalIters}
}

func splitHalves(samples []Sample) (train, test []Sample) {
	mid := len(samples) / 2
	return samples[:mid], samples[mid:]
}

func predict(weights, features []float32) float32 {
	var z float32
	for i, f := range features {
		z += f * weights[i]
	}
	return eval.Sigmoid(z)
}

func loss(weights []float32, samples []Sample) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float32
	for _, s := range samples {
		diff := predict(weights, s.Features) - s.Label
		sum += diff * diff
	}
	return sum / float32(len(samples))
}

// gradient computes half the mean gradient of the MSE loss over samples (the
// per-sample term (sigmoid(z)-y)*sigmoid'(z)*x, without the constant factor
// 2, which the learning rate absorbs), parallelized across goroutines that each accumulate a private slice and
// combine results with a two-stage precision-aware reduction (f32 chunks of
// 256, then a f64 accumulator) to keep summation error from drifting at
// self-play sample counts.
func gradient(weights []float32, samples []Sample, parallelism int) []float32 {
	n := len(weights)
	if len(samples) == 0 {
		return make([]float32, n)
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if parallelism > len(samples) {
		parallelism = len(samples)
	}

	partials := make([][]float32, parallelism)
	var g errgroup.Group
	chunkSize := (len(samples) + parallelism - 1) / parallelism
	for worker := 0; worker < parallelism; worker++ {
		worker := worker
		start := worker * chunkSize
		end := start + chunkSize
		if start >= len(samples) {
			partials[worker] = make([]float32, n)
			continue
		}
		if end > len(samples) {
			end = len(samples)
		}
		g.Go(func() error {
			partials[worker] = accumulateGradient(weights, samples[start:end])
			return nil
		})
	}
	_ = g.Wait()

	grad := reducePartials(partials, n)
	for i := range grad {
		grad[i] /= float32(len(samples))
	}
	return grad
}

// accumulateGradient sums one worker's share of the gradient using chunked
// f32 summation (blocks of 256) to bound rounding error before the
// cross-worker reduction promotes to f64.
func accumulateGradient(weights []float32, samples []Sample) []float32 {
	const blockSize = 256
	n := len(weights)
	total := make([]float64, n)
	block := make([]float32, n)
	inBlock := 0

	flush := func() {
		for i := 0; i < n; i++ {
			total[i] += float64(block[i])
			block[i] = 0
		}
		inBlock = 0
	}

	for _, s := range samples {
		score := predict(weights, s.Features)
		c := (score - s.Label) * eval.SigmoidGradient(score)
		for i, f := range s.Features {
			block[i] += c * f
		}
		inBlock++
		if inBlock >= blockSize {
			flush()
		}
	}
	if inBlock > 0 {
		flush()
	}

	out := make([]float32, n)
	for i, v := range total {
		out[i] = float32(v)
	}
	return out
}

// reducePartials combines per-worker gradients (each already a f64-stable
// sum of its own f32 chunks) into a single vector, again accumulating in
// f64 to avoid compounding error across workers.
func reducePartials(partials [][]float32, n int) []float32 {
	acc := make([]float64, n)
	for _, p := range partials {
		for i, v := range p {
			acc[i] += float64(v)
		}
	}
	out := make([]float32, n)
	for i, v := range acc {
		out[i] = float32(v)
	}
	return out
}
