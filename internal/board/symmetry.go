package board

// remapSquares builds a new squares slice by applying a file/rank bijection
// to every occupied square, the shared plumbing behind the five geometric
// symmetry transforms below.
func (p *Position) remapSquares(remap func(file, rank int) (int, int)) []Stack {
	out := make([]Stack, len(p.squares))
	for sq := Square(0); int(sq) < len(p.squares); sq++ {
		f, r := sq.file(p.size), sq.rank(p.size)
		nf, nr := remap(f, r)
		out[squareAt(p.size, nf, nr)] = p.squares[sq].clone()
	}
	return out
}

// withSquares returns a fresh Position sharing size/toMove/ply/reserves with
// p but holding squares in place of p.squares; derived caches (moves,
// groupData, result) start unset and get recomputed lazily.
func (p *Position) withSquares(squares []Stack) *Position {
	return &Position{
		size:     p.size,
		squares:  squares,
		toMove:   p.toMove,
		ply:      p.ply,
		reserves: p.reserves,
	}
}

// FlipX mirrors the board left-to-right (file -> size-1-file). Move
// generation has no notion of an "a file" versus a "last file", so this is a
// symmetry of every legal-move count.
func (p *Position) FlipX() *Position {
	return p.withSquares(p.remapSquares(func(f, r int) (int, int) {
		return p.size - 1 - f, r
	}))
}

// FlipY mirrors the board top-to-bottom (rank -> size-1-rank).
func (p *Position) FlipY() *Position {
	return p.withSquares(p.remapSquares(func(f, r int) (int, int) {
		return f, p.size - 1 - r
	}))
}

// Rotate90 rotates the board a quarter turn; four applications return the
// original layout.
func (p *Position) Rotate90() *Position {
	return p.withSquares(p.remapSquares(func(f, r int) (int, int) {
		return r, p.size - 1 - f
	}))
}

// Rotate180 rotates the board a half turn.
func (p *Position) Rotate180() *Position {
	return p.withSquares(p.remapSquares(func(f, r int) (int, int) {
		return p.size - 1 - f, p.size - 1 - r
	}))
}

// Rotate270 rotates the board three quarter turns, the inverse of Rotate90.
func (p *Position) Rotate270() *Position {
	return p.withSquares(p.remapSquares(func(f, r int) (int, int) {
		return p.size - 1 - r, f
	}))
}

// FlipColors swaps every piece's color, the side to move, and the two
// reserve pools: the symmetry that makes a position's value from White's
// perspective equal its mirror's value from Black's.
func (p *Position) FlipColors() *Position {
	squares := make([]Stack, len(p.squares))
	for i, s := range p.squares {
		cp := Stack{top: s.top}
		if len(s.colors) > 0 {
			cp.colors = make([]Color, len(s.colors))
			for j, c := range s.colors {
				cp.colors[j] = c.Opponent()
			}
		}
		squares[i] = cp
	}
	out := p.withSquares(squares)
	out.toMove = p.toMove.Opponent()
	out.reserves = [2]Reserves{p.reserves[Black], p.reserves[White]}
	return out
}
