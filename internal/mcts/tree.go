// Package mcts implements the PUCT-guided Monte Carlo Tree Search: an
// arena-indexed tree of nodes and edges, grown lazily as the selector visits
// unexpanded edges, evaluated by a linear value/policy pair from
// internal/eval. A Tree is single-threaded: selection, expansion and
// backpropagation mutate it without locks, and parallelism is expected to
// come from running independent Trees (e.g. one per self-play game) across a
// goroutine pool rather than sharing one tree.
package mcts

import (
	"github.com/chewxy/math32"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/eval"
)

// Edge is one candidate move out of a node: its prior, visit statistics, and
// (once expanded) the node it leads to.
type Edge struct {
	Move            board.Move
	Prior           float32
	Visits          uint32
	MeanActionValue float32
	Child           int32 // index into Tree.nodes, or -1 if never expanded
}

// Node is a materialized position in the tree: either terminal (no edges,
// a fixed value), or carrying the ordered list of legal moves as edges.
type Node struct {
	Edges         []Edge
	Terminal      bool
	TerminalValue float32
}

// Config bundles the parameters that are fixed for the duration of one
// search, per the MctsSetting entity.
type Config struct {
	CPuctInit      float32
	CPuctBase      float32
	DirichletAlpha float64
	Noise          bool // mix Dirichlet noise into the root's priors once expanded
}

// DefaultConfig returns the configuration surface's documented defaults.
func DefaultConfig() Config {
	return Config{
		CPuctInit: 0.57,
		CPuctBase: 10000.0,
	}
}

// Tree is a fresh search tree over one position. Create one per mcts_* call;
// nothing is reused across calls or shared across goroutines.
type Tree struct {
	nodes    []Node
	rootEdge Edge // virtual: Child becomes 0 once the root is expanded
	expanded bool

	pos    *board.Position
	value  *eval.Value
	policy *eval.Policy
	cfg    Config
	src    distrand.Source
}

// New creates a tree rooted at pos. pos is mutated and restored during each
// Iterate call (mutate-and-undo traversal); by the time Iterate returns, pos
// is back to its original state. src is only consulted when cfg.Noise is
// set; pass nil otherwise.
func New(pos *board.Position, value *eval.Value, policy *eval.Policy, cfg Config, src distrand.Source) *Tree {
	return &Tree{
		rootEdge: Edge{Child: -1},
		pos:      pos,
		value:    value,
		policy:   policy,
		cfg:      cfg,
		src:      src,
	}
}

// RootEdges returns the root's candidate moves and their current statistics.
// The tree must have run at least one Iterate first.
func (t *Tree) RootEdges() []Edge {
	if !t.expanded || t.nodes[0].Terminal {
		return nil
	}
	return t.nodes[0].Edges
}

// Iterate runs one selection/expansion/backpropagation pass. The first call
// on a fresh tree only expands the root (generating its children and, in
// training mode, mixing in Dirichlet noise) and counts as the root's first
// visit; every subsequent call performs a full PUCT descent.
func (t *Tree) Iterate() {
	if !t.expanded {
		t.expandRoot()
		t.expanded = true
		return
	}
	t.iterateOnce()
}

func (t *Tree) expandRoot() {
	if t.pos.IsTerminal() {
		result, _ := t.pos.GameResult()
		v := result.ResultForSideToMove(t.pos.SideToMove())
		t.nodes = append(t.nodes, Node{Terminal: true, TerminalValue: v})
		t.rootEdge.Child = 0
		t.backprop(nil, v)
		return
	}
	moves := t.pos.GenerateMoves(nil)
	priors := t.policy.Priors(t.pos, moves)
	if t.cfg.Noise && len(moves) > 0 {
		mixDirichletNoise(priors, t.cfg.DirichletAlpha, t.src)
	}
	edges := make([]Edge, len(moves))
	for i, mv := range moves {
		edges[i] = Edge{Move: mv, Prior: priors[i], Child: -1}
	}
	t.nodes = append(t.nodes, Node{Edges: edges})
	t.rootEdge.Child = 0
	t.backprop(nil, t.value.Score(t.pos))
}

type pathStep struct {
	nodeIdx, edgeIdx int
}

func (t *Tree) iterateOnce() {
	var path []pathStep
	var tokens []board.ReverseToken
	nodeIdx := 0
	parentMean := float32(1.0) // first-play urgency: always 1.0 (optimistic) at the root, the mean of the edge just taken below it

	var leafValue float32
	for {
		if t.nodes[nodeIdx].Terminal {
			leafValue = t.nodes[nodeIdx].TerminalValue
			break
		}
		ei := t.selectEdge(nodeIdx, parentMean)
		path = append(path, pathStep{nodeIdx, ei})
		mv := t.nodes[nodeIdx].Edges[ei].Move
		tokens = append(tokens, t.pos.DoMove(mv))

		childIdx := t.nodes[nodeIdx].Edges[ei].Child
		if childIdx == -1 {
			if t.pos.IsTerminal() {
				result, _ := t.pos.GameResult()
				leafValue = result.ResultForSideToMove(t.pos.SideToMove())
				t.nodes = append(t.nodes, Node{Terminal: true, TerminalValue: leafValue})
			} else {
				leafValue = t.value.Score(t.pos)
				moves := t.pos.GenerateMoves(nil)
				priors := t.policy.Priors(t.pos, moves)
				childEdges := make([]Edge, len(moves))
				for i, m := range moves {
					childEdges[i] = Edge{Move: m, Prior: priors[i], Child: -1}
				}
				t.nodes = append(t.nodes, Node{Edges: childEdges})
			}
			t.nodes[nodeIdx].Edges[ei].Child = int32(len(t.nodes) - 1)
			break
		}
		parentMean = t.nodes[nodeIdx].Edges[ei].MeanActionValue
		nodeIdx = int(childIdx)
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		t.pos.UndoMove(tokens[i])
	}
	t.backprop(path, leafValue)
}

// selectEdge picks the child of nodes[nodeIdx] with the highest PUCT score,
// breaking ties toward the earliest edge.
func (t *Tree) selectEdge(nodeIdx int, fpu float32) int {
	edges := t.nodes[nodeIdx].Edges
	var nParent uint32
	for _, e := range edges {
		nParent += e.Visits
	}
	cPuct := t.cfg.CPuctInit + math32.Log((1+float32(nParent)+t.cfg.CPuctBase)/t.cfg.CPuctBase)
	sqrtN := math32.Sqrt(float32(nParent))

	best := 0
	bestScore := float32(math32.Inf(-1))
	for i, e := range edges {
		q := fpu
		if e.Visits > 0 {
			q = 1 - e.MeanActionValue
		}
		u := e.Prior * sqrtN / float32(1+e.Visits)
		score := q + cPuct*u
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// backprop walks the visited path from the frontier back to the root,
// updating visit counts and mean action values, flipping perspective at
// every step; it finishes by updating the virtual root edge.
func (t *Tree) backprop(path []pathStep, v float32) {
	for i := len(path) - 1; i >= 0; i-- {
		e := &t.nodes[path[i].nodeIdx].Edges[path[i].edgeIdx]
		e.Visits++
		e.MeanActionValue += (v - e.MeanActionValue) / float32(e.Visits)
		v = 1 - v
	}
	t.rootEdge.Visits++
	t.rootEdge.MeanActionValue += (v - t.rootEdge.MeanActionValue) / float32(t.rootEdge.Visits)
}

// mixDirichletNoise perturbs priors in place with symmetric Dirichlet(alpha)
// noise, per the root-exploration rule used during training self-play.
func mixDirichletNoise(priors []float32, alpha float64, src distrand.Source) {
	alphaVec := make([]float64, len(priors))
	for i := range alphaVec {
		alphaVec[i] = alpha
	}
	dir := distmv.NewDirichlet(alphaVec, src)
	noise := dir.Rand(nil)
	for i := range priors {
		priors[i] = 0.75*priors[i] + 0.25*float32(noise[i])
	}
}
