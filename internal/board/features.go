package board

// NumValueFeatures and NumPolicyFeatures are the fixed dimensions of the
// coefficient vectors the oracle emits; internal/eval's parameter vectors
// must have exactly these lengths. Both counts include the bias term, an
// always-1 feature: the last slot of the value vector and the first slot of
// the policy vector.
const (
	NumValueFeatures  = 17
	NumPolicyFeatures = 11
)

// StaticEvalCoefficients writes the value feature vector for the current
// position, from the perspective of the side to move, into out. out must
// have length NumValueFeatures; every entry is overwritten.
func (p *Position) StaticEvalCoefficients(out []float32) {
	if len(out) != NumValueFeatures {
		panic("board: StaticEvalCoefficients: bad output length")
	}
	mover, opp := p.toMove, p.toMove.Opponent()
	gd := p.GroupData()

	out[0] = float32(p.FlatCount(mover))
	out[1] = float32(p.FlatCount(opp))
	out[2] = float32(p.reserves[mover].Flats)
	out[3] = float32(p.reserves[opp].Flats)
	out[4] = float32(p.reserves[mover].Capstones)
	out[5] = float32(p.reserves[opp].Capstones)
	out[6] = float32(gd.NumGroups(mover))
	out[7] = float32(gd.NumGroups(opp))
	out[8] = float32(largestGroup(gd, mover))
	out[9] = float32(largestGroup(gd, opp))
	out[10] = float32(groupsTouchingMultipleEdges(gd, mover))
	out[11] = float32(groupsTouchingMultipleEdges(gd, opp))
	wallsMover, wallsOpp, capsMover, capsOpp := 0, 0, 0, 0
	for _, s := range p.squares {
		if s.Empty() {
			continue
		}
		switch {
		case s.TopKind() == Wall && s.TopColor() == mover:
			wallsMover++
		case s.TopKind() == Wall && s.TopColor() == opp:
			wallsOpp++
		case s.TopKind() == Cap && s.TopColor() == mover:
			capsMover++
		case s.TopKind() == Cap && s.TopColor() == opp:
			capsOpp++
		}
	}
	out[12] = float32(wallsMover)
	out[13] = float32(wallsOpp)
	out[14] = float32(capsMover)
	out[15] = float32(capsOpp)
	out[16] = 1 // bias
}

func largestGroup(gd *GroupData, c Color) int {
	best := 0
	for i := range gd.groups[c] {
		if n := gd.GroupSize(c, int16(i)); n > best {
			best = n
		}
	}
	return best
}

func groupsTouchingMultipleEdges(gd *GroupData, c Color) int {
	n := 0
	for i := range gd.groups[c] {
		if gd.GroupTouchesEdges(c, int16(i)) >= 2 {
			n++
		}
	}
	return n
}

// CoefficientsForMove writes the policy feature vector for one candidate
// move into out, given the group-data cache ctx computed once per expansion
// and the number of legal moves at this position. out must have length
// NumPolicyFeatures.
func (p *Position) CoefficientsForMove(out []float32, mv Move, ctx *GroupData, nLegalMoves int) {
	if len(out) != NumPolicyFeatures {
		panic("board: CoefficientsForMove: bad output length")
	}
	for i := range out {
		out[i] = 0
	}
	out[0] = 1 // bias
	anchor := mv.Square
	switch mv.Kind {
	case Place:
		switch mv.Placed {
		case Flat:
			out[1] = 1
		case Wall:
			out[2] = 1
		case Cap:
			out[3] = 1
		}
	case Spread:
		out[4] = 1
		out[5] = float32(mv.DropCount) / float32(p.size)
		out[6] = float32(mv.Count) / float32(p.size)
		if mv.Flattens {
			out[9] = 1
		}
	}
	out[7] = centerDistance(anchor, p.size)
	if nLegalMoves > 0 {
		out[8] = 1 / float32(nLegalMoves)
	}
	out[10] = float32(adjacentGroupCount(ctx, p.moveDestination(mv), p.toMove)) / 4
}

// moveDestination returns the square a move's carried pieces end up on: the
// placement square itself, or the final drop square of a spread.
func (p *Position) moveDestination(mv Move) Square {
	if mv.Kind == Place {
		return mv.Square
	}
	path := p.pathSquares(mv.Square, mv.Direction, int(mv.DropCount))
	return path[len(path)-1]
}

// adjacentGroupCount returns how many distinct existing road-colored groups
// of c border sq, so a move that would connect or merge several groups
// scores higher than one played in open space — the connectivity impact
// GroupData exists to make available to the policy evaluator.
func adjacentGroupCount(gd *GroupData, sq Square, c Color) int {
	file, rank := sq.file(gd.size), sq.rank(gd.size)
	seen := map[int16]bool{}
	for _, dir := range allDirections {
		df, dr := dir.delta()
		nf, nr := file+df, rank+dr
		if nf < 0 || nf >= gd.size || nr < 0 || nr >= gd.size {
			continue
		}
		idx := gd.GroupOf(c, squareAt(gd.size, nf, nr))
		if idx >= 0 {
			seen[idx] = true
		}
	}
	return len(seen)
}

// centerDistance returns a [0,1]-normalized Chebyshev distance of sq from
// the board center, used as an edge/center-play policy feature.
func centerDistance(sq Square, size int) float32 {
	file, rank := sq.file(size), sq.rank(size)
	mid := float32(size-1) / 2
	df := float32(file) - mid
	dr := float32(rank) - mid
	dist := df
	if dr > dist {
		dist = dr
	}
	if -df > dist {
		dist = -df
	}
	if -dr > dist {
		dist = -dr
	}
	if dist < 0 {
		dist = -dist
	}
	return dist / mid
}
