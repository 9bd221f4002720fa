package board

// GroupData is the per-position cache of road-connectivity groups: which
// squares of each color are 4-connected to each other, and which board edges
// each group touches. It is computed once per position (lazily, on first
// request) and reused by every CoefficientsForMove call at that position,
// since the flood fill is too expensive to redo for every candidate move.
type GroupData struct {
	size   int
	groups [2][]group
	// groupOf[c][sq] is the index into groups[c] that sq belongs to, or -1.
	groupOf [2][]int16
}

type group struct {
	squares                            []Square
	left, right, top, bottom, hasAnyAt bool
}

// HasRoad reports whether the given color has a group connecting two
// opposite edges of the board.
func (gd *GroupData) HasRoad(c Color) bool {
	for _, g := range gd.groups[c] {
		if (g.left && g.right) || (g.top && g.bottom) {
			return true
		}
	}
	return false
}

// NumGroups returns how many disjoint road-colored groups a color has.
// Used as a policy/value feature: more groups generally means a weaker
// position (connectivity is split up).
func (gd *GroupData) NumGroups(c Color) int {
	return len(gd.groups[c])
}

// GroupOf returns the index of the group sq belongs to for color c, or -1 if
// sq does not hold a road piece of that color.
func (gd *GroupData) GroupOf(c Color, sq Square) int16 {
	return gd.groupOf[c][sq]
}

// GroupTouchesEdges reports how many of the four board edges a group
// touches; used as a connectivity-strength feature.
func (gd *GroupData) GroupTouchesEdges(c Color, groupIdx int16) int {
	if groupIdx < 0 {
		return 0
	}
	g := gd.groups[c][groupIdx]
	n := 0
	for _, touches := range [4]bool{g.left, g.right, g.top, g.bottom} {
		if touches {
			n++
		}
	}
	return n
}

// GroupSize returns the number of squares in the group, or 0 if groupIdx<0.
func (gd *GroupData) GroupSize(c Color, groupIdx int16) int {
	if groupIdx < 0 {
		return 0
	}
	return len(gd.groups[c][groupIdx].squares)
}

// GroupData computes (or returns the cached) road-connectivity groups for
// the current position.
func (p *Position) GroupData() *GroupData {
	if p.groupData != nil {
		return p.groupData
	}
	gd := &GroupData{size: p.size}
	for c := White; c <= Black; c++ {
		gd.groupOf[c] = make([]int16, len(p.squares))
		for i := range gd.groupOf[c] {
			gd.groupOf[c][i] = -1
		}
	}
	visited := make([]bool, len(p.squares))
	var stack []Square
	for sq := Square(0); int(sq) < len(p.squares); sq++ {
		if visited[sq] {
			continue
		}
		st := p.squares[sq]
		c, ok := st.RoadColor()
		if !ok {
			visited[sq] = true
			continue
		}
		// Flood fill this color's connected component starting at sq.
		g := group{}
		idx := int16(len(gd.groups[c]))
		stack = stack[:0]
		stack = append(stack, sq)
		visited[sq] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.squares = append(g.squares, cur)
			gd.groupOf[c][cur] = idx
			file, rank := cur.file(p.size), cur.rank(p.size)
			if file == 0 {
				g.left = true
			}
			if file == p.size-1 {
				g.right = true
			}
			if rank == 0 {
				g.bottom = true
			}
			if rank == p.size-1 {
				g.top = true
			}
			for _, dir := range allDirections {
				df, dr := dir.delta()
				nf, nr := file+df, rank+dr
				if nf < 0 || nf >= p.size || nr < 0 || nr >= p.size {
					continue
				}
				nsq := squareAt(p.size, nf, nr)
				if visited[nsq] {
					continue
				}
				nc, nok := p.squares[nsq].RoadColor()
				if !nok || nc != c {
					continue
				}
				visited[nsq] = true
				stack = append(stack, nsq)
			}
		}
		gd.groups[c] = append(gd.groups[c], g)
	}
	p.groupData = gd
	return gd
}
