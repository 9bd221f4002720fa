package mcts

import (
	"time"

	distrand "golang.org/x/exp/rand"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/eval"
)

// minIterations is the floor imposed when a caller asks for zero (or
// negative) search nodes: one iteration only expands the root, so at least
// two are required before a best move is meaningful.
const minIterations = 2

// Search runs a fixed-node PUCT search (the `mcts` entry point) and returns
// the most-visited root move along with its win probability.
func Search(pos *board.Position, value *eval.Value, policy *eval.Policy, cfg Config, nodes int) (board.Move, float32) {
	if nodes < minIterations {
		nodes = minIterations
	}
	tree := New(pos, value, policy, cfg, nil)
	for i := 0; i < nodes; i++ {
		tree.Iterate()
	}
	return bestByVisits(tree.RootEdges())
}

// SearchTime runs in batches of growing size (100, 200, 300, ... iterations)
// until either the wall
// clock budget is nearly spent, only one move is available, or the visit
// gap between the best and second-best child makes the outcome unlikely to
// change before the deadline (the `play_move_time` entry point).
func SearchTime(pos *board.Position, value *eval.Value, policy *eval.Policy, cfg Config, maxTime time.Duration) (board.Move, float32) {
	tree := New(pos, value, policy, cfg, nil)
	tree.Iterate() // expand the root so RootEdges is non-empty below

	const safetyMargin = 50 * time.Millisecond
	start := time.Now()
	for batch := 1; ; batch++ {
		for i := 0; i < batch*100; i++ {
			tree.Iterate()
		}
		edges := tree.RootEdges()
		if len(edges) <= 1 {
			break
		}
		elapsed := time.Since(start)
		if elapsed >= maxTime-safetyMargin {
			break
		}
		best, second, ok := topTwoByVisits(edges)
		if !ok {
			continue
		}
		// A second-best child with zero visits would make the ratio below
		// 0, which should trigger an immediate stop; skipping the check
		// here instead means a freshly-expanded-but-unvisited runner-up
		// costs one extra batch before the early stop can fire.
		if second.Visits == 0 {
			continue
		}
		r := float32(second.Visits) / float32(best.Visits)
		t := float32(elapsed) / float32(maxTime)
		if t*t > r/2 && !otherChildHasHigherQ(edges, best) {
			break
		}
	}
	return bestByVisits(tree.RootEdges())
}

// RootVisit is one root move's share of total search effort, the label used
// by policy tuning.
type RootVisit struct {
	Move       board.Move
	VisitShare float32
}

// SearchTraining runs nodes iterations (at least minIterations) with Dirichlet root noise
// enabled and returns the empirical visit distribution over root moves (the
// `mcts_training` entry point). cfg.DirichletAlpha must be set by the caller.
func SearchTraining(pos *board.Position, value *eval.Value, policy *eval.Policy, cfg Config, nodes int, src distrand.Source) []RootVisit {
	cfg.Noise = true
	if nodes < minIterations {
		nodes = minIterations
	}
	tree := New(pos, value, policy, cfg, src)
	for i := 0; i < nodes; i++ {
		tree.Iterate()
	}
	edges := tree.RootEdges()
	var total uint32
	for _, e := range edges {
		total += e.Visits
	}
	out := make([]RootVisit, len(edges))
	for i, e := range edges {
		share := float32(0)
		if total > 0 {
			share = float32(e.Visits) / float32(total)
		}
		out[i] = RootVisit{Move: e.Move, VisitShare: share}
	}
	return out
}

func bestByVisits(edges []Edge) (board.Move, float32) {
	if len(edges) == 0 {
		return board.Move{}, 0.5
	}
	best := 0
	for i, e := range edges {
		if e.Visits > edges[best].Visits {
			best = i
		}
	}
	return edges[best].Move, 1 - edges[best].MeanActionValue
}

func topTwoByVisits(edges []Edge) (best, second Edge, ok bool) {
	if len(edges) < 2 {
		return Edge{}, Edge{}, false
	}
	bi, si := 0, -1
	for i := 1; i < len(edges); i++ {
		if edges[i].Visits > edges[bi].Visits {
			si = bi
			bi = i
		} else if si == -1 || edges[i].Visits > edges[si].Visits {
			si = i
		}
	}
	return edges[bi], edges[si], true
}

func otherChildHasHigherQ(edges []Edge, best Edge) bool {
	bestQ := 1 - best.MeanActionValue
	for _, e := range edges {
		if (1 - e.MeanActionValue) > bestQ {
			return true
		}
	}
	return false
}
