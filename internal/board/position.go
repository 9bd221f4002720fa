package board

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Result is the outcome of a finished game, from no one's perspective in
// particular; Result.ResultForSideToMove converts it to the value the
// evaluator needs.
type Result uint8

const (
	NoResult Result = iota
	WhiteWin
	BlackWin
	DrawResult
)

func (r Result) String() string {
	switch r {
	case WhiteWin:
		return "WhiteWin"
	case BlackWin:
		return "BlackWin"
	case DrawResult:
		return "Draw"
	default:
		return "NoResult"
	}
}

// WinReason records why a game ended. It is informational only: neither the
// evaluator nor the selector look at it; internal/selfplay names it in its
// verbose per-game log message, and the CLI prints it with the result.
type WinReason uint8

const (
	NoWin WinReason = iota
	RoadWin
	FlatWin
)

func (r WinReason) String() string {
	switch r {
	case RoadWin:
		return "RoadWin"
	case FlatWin:
		return "FlatWin"
	default:
		return "NoWin"
	}
}

// Position is the concrete implementation of the Board Oracle contract:
// clone, move generation, move application/reversal, game-result detection,
// and (in features.go) the two coefficient emitters the evaluator consumes.
//
// Position is not safe for concurrent use; each self-play game and each
// internal/mcts.Tree works on its own Position (or its own clone of one).
type Position struct {
	size     int
	squares  []Stack
	toMove   Color
	ply      int // 1-based ply counter; ply 1 and 2 are the opening swap
	reserves [2]Reserves

	moves     []Move // legal moves cache, valid for the current position
	movesOK   bool
	groupData *GroupData
	result    Result
	reason    WinReason
	resultOK  bool
}

// New returns the starting position for a board of the given size (3..8).
func New(size int) *Position {
	if size < 3 || size > 8 {
		panic(fmt.Sprintf("board: size must be 3..8, got %d", size))
	}
	return &Position{
		size:     size,
		squares:  make([]Stack, size*size),
		toMove:   White,
		ply:      1,
		reserves: [2]Reserves{reservesForSize(size), reservesForSize(size)},
	}
}

// Size returns the board's edge length.
func (p *Position) Size() int { return p.size }

// SideToMove returns the color about to move.
func (p *Position) SideToMove() Color { return p.toMove }

// Ply returns the 1-based ply number about to be played.
func (p *Position) Ply() int { return p.ply }

// Clone returns an independent deep copy, for callers that need a snapshot
// instead of mutate-and-undo.
func (p *Position) Clone() *Position {
	cp := &Position{
		size:     p.size,
		squares:  make([]Stack, len(p.squares)),
		toMove:   p.toMove,
		ply:      p.ply,
		reserves: p.reserves,
	}
	for i, s := range p.squares {
		cp.squares[i] = s.clone()
	}
	return cp
}

// invalidateCaches must be called after any mutation to the board.
func (p *Position) invalidateCaches() {
	p.movesOK = false
	p.groupData = nil
	p.resultOK = false
}

// Reserves returns the remaining pieces for a color.
func (p *Position) Reserves(c Color) Reserves { return p.reserves[c] }

// StackAt returns the stack occupying a square.
func (p *Position) StackAt(sq Square) Stack { return p.squares[sq] }

// FormatMove renders a move using this position's board size.
func (p *Position) FormatMove(m Move) string { return m.format(p.size) }

// ParseMove parses a move string for this position's board size.
func (p *Position) ParseMove(s string) (Move, error) { return ParseMove(p.size, s) }

// isOpeningSwap reports whether the current ply is one of the two opening
// plies, where each side places a flatstone of the opponent's color.
func (p *Position) isOpeningSwap() bool { return p.ply <= 2 }

// GenerateMoves appends every legal move at the current position to out and
// returns the (possibly reallocated) slice. Order is deterministic: all
// placements (by square, then Flat/Wall/Cap), then all spreads (by square,
// then direction Up/Down/Left/Right, then by number of pieces carried, then
// by number of squares touched, then lexicographically by drop composition).
//
// out is not reallocated if it already has capacity for the moves. The first
// call at a position does allocate: it stores its own copy of the moves as a
// cache that later calls at the same position append from.
func (p *Position) GenerateMoves(out []Move) []Move {
	if p.movesOK {
		return append(out, p.moves...)
	}
	start := len(out)
	moves := p.appendPlacements(out)
	if !p.isOpeningSwap() {
		moves = p.appendSpreads(moves)
	}
	p.moves = append([]Move(nil), moves[start:]...)
	p.movesOK = true
	return moves
}

func (p *Position) appendPlacements(out []Move) []Move {
	placeColor := p.toMove
	if p.isOpeningSwap() {
		placeColor = p.toMove.Opponent()
	}
	pool := p.reserves[placeColor]
	for sq := Square(0); int(sq) < len(p.squares); sq++ {
		if !p.squares[sq].Empty() {
			continue
		}
		if pool.Flats > 0 {
			out = append(out, Move{Kind: Place, Square: sq, Placed: Flat})
		}
		if !p.isOpeningSwap() {
			if pool.Flats > 0 {
				out = append(out, Move{Kind: Place, Square: sq, Placed: Wall})
			}
			if pool.Capstones > 0 {
				out = append(out, Move{Kind: Place, Square: sq, Placed: Cap})
			}
		}
	}
	return out
}

var allDirections = [4]Direction{Up, Down, Left, Right}

func (p *Position) appendSpreads(out []Move) []Move {
	carryLimit := p.size
	for sq := Square(0); int(sq) < len(p.squares); sq++ {
		st := p.squares[sq]
		if st.Empty() || st.TopColor() != p.toMove {
			continue
		}
		maxCount := carryLimit
		if st.Len() < maxCount {
			maxCount = st.Len()
		}
		for _, dir := range allDirections {
			out = p.appendSpreadsInDirection(out, sq, dir, maxCount, st.TopKind())
		}
	}
	return out
}

// appendSpreadsInDirection enumerates every legal (count, drop composition)
// pair for a spread starting at sq in direction dir.
func (p *Position) appendSpreadsInDirection(out []Move, sq Square, dir Direction, maxCount int, carriedTop Kind) []Move {
	path := p.pathSquares(sq, dir, maxCount)
	if len(path) == 0 {
		return out
	}
	for count := 1; count <= maxCount; count++ {
		maxK := count
		if maxK > len(path) {
			maxK = len(path)
		}
		for k := 1; k <= maxK; k++ {
			blocked, flattenOnly := p.pathLegality(path[:k], carriedTop)
			if blocked {
				// Any longer k would pass through the same blocking square.
				break
			}
			for _, drops := range compositions(count, k) {
				if flattenOnly && drops[k-1] != 1 {
					continue
				}
				m := Move{Kind: Spread, Square: sq, Direction: dir, Count: int8(count)}
				m.DropCount = int8(k)
				for i, d := range drops {
					m.Drops[i] = int8(d)
				}
				if flattenOnly && drops[k-1] == 1 {
					m.Flattens = true
				}
				out = append(out, m)
			}
		}
	}
	return out
}

// pathSquares returns up to maxLen squares starting one step from sq in
// direction dir, stopping at the board edge.
func (p *Position) pathSquares(sq Square, dir Direction, maxLen int) []Square {
	df, dr := dir.delta()
	file, rank := sq.file(p.size), sq.rank(p.size)
	path := make([]Square, 0, maxLen)
	for i := 1; i <= maxLen; i++ {
		f, r := file+df*i, rank+dr*i
		if f < 0 || f >= p.size || r < 0 || r >= p.size {
			break
		}
		path = append(path, squareAt(p.size, f, r))
	}
	return path
}

// pathLegality reports whether a path of squares (not including the origin)
// is blocked for a spread, and whether the final square may only be entered
// by dropping exactly one piece there (flattening a wall with a lone
// capstone).
func (p *Position) pathLegality(path []Square, carriedTop Kind) (blocked, flattenOnly bool) {
	for i, sq := range path {
		st := p.squares[sq]
		if st.Empty() {
			continue
		}
		last := i == len(path)-1
		switch st.TopKind() {
		case Cap:
			return true, false
		case Wall:
			if !last || carriedTop != Cap {
				return true, false
			}
			flattenOnly = true
		}
	}
	return false, flattenOnly
}

// compositions returns every ordered way to split total into exactly parts
// positive integers, in ascending lexicographic order of the split points.
func compositions(total, parts int) [][]int {
	if parts == 1 {
		return [][]int{{total}}
	}
	var out [][]int
	for first := 1; first <= total-(parts-1); first++ {
		for _, rest := range compositions(total-first, parts-1) {
			out = append(out, append([]int{first}, rest...))
		}
	}
	return out
}

// ReverseToken is returned by DoMove and consumed by UndoMove to restore the
// position bit-exactly without recomputing derived state from scratch.
type ReverseToken struct {
	move            Move
	mover           Color
	reserveColor    Color
	reserveKind     Kind // Flat or Cap; only meaningful for Place moves
	originTopBefore Kind
	destTopBefore   [7]Kind
}

// DoMove applies a move and returns a token that reverses it exactly.
//
// It stops the program through klog.Fatalf (an oracle-contract violation) if
// mv is not structurally consistent with the position; it does not
// re-verify full legality (callers are expected to only apply moves returned
// by GenerateMoves).
func (p *Position) DoMove(mv Move) ReverseToken {
	tok := ReverseToken{move: mv, mover: p.toMove}
	switch mv.Kind {
	case Place:
		placeColor := p.toMove
		if p.isOpeningSwap() {
			placeColor = p.toMove.Opponent()
		}
		if !p.squares[mv.Square].Empty() {
			klog.Fatalf("board: DoMove: place on occupied square %s", mv.Square.string(p.size))
		}
		tok.reserveColor = placeColor
		tok.reserveKind = mv.Placed
		p.consumeReserve(placeColor, mv.Placed)
		p.squares[mv.Square].push(placeColor, mv.Placed)
	case Spread:
		tok.originTopBefore = p.squares[mv.Square].TopKind()
		carried := p.squares[mv.Square].take(int(mv.Count))
		path := p.pathSquares(mv.Square, mv.Direction, int(mv.DropCount))
		if len(path) != int(mv.DropCount) {
			klog.Fatalf("board: DoMove: spread %s runs off board", mv.format(p.size))
		}
		idx := 0
		for i, sq := range path {
			n := int(mv.Drops[i])
			tok.destTopBefore[i] = p.squares[sq].TopKind()
			// The piece dropped last at each square is always the
			// highest-remaining piece of the carry; at every square but
			// the last that piece was originally buried, hence Flat. At
			// the last square it is the original top-of-stack piece,
			// whatever kind it was (a bare capstone there flattens a wall,
			// legal only because GenerateMoves only offers that
			// composition when the wall-flatten rule is satisfied).
			finalKind := Flat
			if i == len(path)-1 {
				finalKind = tok.originTopBefore
			}
			p.squares[sq].drop(carried[idx:idx+n], finalKind)
			idx += n
		}
	default:
		klog.Fatalf("board: DoMove: unknown move kind")
	}
	p.toMove = p.toMove.Opponent()
	p.ply++
	p.invalidateCaches()
	return tok
}

func (p *Position) consumeReserve(c Color, k Kind) {
	switch k {
	case Cap:
		if p.reserves[c].Capstones == 0 {
			klog.Fatalf("board: no capstones left for %s", c)
		}
		p.reserves[c].Capstones--
	default: // Flat or Wall share the flat pool.
		if p.reserves[c].Flats == 0 {
			klog.Fatalf("board: no flats left for %s", c)
		}
		p.reserves[c].Flats--
	}
}

func (p *Position) refundReserve(c Color, k Kind) {
	switch k {
	case Cap:
		p.reserves[c].Capstones++
	default:
		p.reserves[c].Flats++
	}
}

// UndoMove reverses a move applied via DoMove. tok must be the token that
// move produced; applying tokens out of order is an oracle-contract
// violation.
func (p *Position) UndoMove(tok ReverseToken) {
	p.toMove = tok.mover
	p.ply--
	mv := tok.move
	switch mv.Kind {
	case Place:
		p.squares[mv.Square].take(1)
		p.refundReserve(tok.reserveColor, tok.reserveKind)
	case Spread:
		path := p.pathSquares(mv.Square, mv.Direction, int(mv.DropCount))
		// Reassemble the carried pieces by popping drops back off in
		// reverse square order, then push them back onto the origin.
		carried := make([]Color, 0, mv.Count)
		for i := len(path) - 1; i >= 0; i-- {
			sq := path[i]
			n := int(mv.Drops[i])
			taken := p.squares[sq].take(n)
			carried = append(taken, carried...)
			if p.squares[sq].Len() > 0 {
				p.squares[sq].top = tok.destTopBefore[i]
			}
		}
		p.squares[mv.Square].colors = append(p.squares[mv.Square].colors, carried...)
		p.squares[mv.Square].top = tok.originTopBefore
	}
	p.invalidateCaches()
}

// boardFull reports whether every square is occupied.
func (p *Position) boardFull() bool {
	for _, s := range p.squares {
		if s.Empty() {
			return false
		}
	}
	return true
}

// FlatCount returns the number of squares topped by a flat of the given
// color; buried pieces (and walls/capstones) do not count.
func (p *Position) FlatCount(c Color) int {
	n := 0
	for _, s := range p.squares {
		if !s.Empty() && s.TopKind() == Flat && s.TopColor() == c {
			n++
		}
	}
	return n
}

// GameResult returns the outcome of the game if it has ended, along with why.
func (p *Position) GameResult() (Result, WinReason) {
	if p.resultOK {
		return p.result, p.reason
	}
	gd := p.GroupData()
	switch {
	case gd.HasRoad(White) && gd.HasRoad(Black):
		// Both sides connected simultaneously (possible after a spread,
		// which can uncover the opponent's pieces while extending the
		// mover's own): the player who just moved wins.
		if p.toMove == Black {
			p.result, p.reason = WhiteWin, RoadWin
		} else {
			p.result, p.reason = BlackWin, RoadWin
		}
	case gd.HasRoad(White):
		p.result, p.reason = WhiteWin, RoadWin
	case gd.HasRoad(Black):
		p.result, p.reason = BlackWin, RoadWin
	case p.boardFull() || p.reserves[White].Empty() || p.reserves[Black].Empty():
		wf, bf := p.FlatCount(White), p.FlatCount(Black)
		switch {
		case wf > bf:
			p.result, p.reason = WhiteWin, FlatWin
		case bf > wf:
			p.result, p.reason = BlackWin, FlatWin
		default:
			p.result, p.reason = DrawResult, FlatWin
		}
	default:
		p.result, p.reason = NoResult, NoWin
	}
	p.resultOK = true
	return p.result, p.reason
}

// IsTerminal reports whether the game has ended.
func (p *Position) IsTerminal() bool {
	r, _ := p.GameResult()
	return r != NoResult
}

// ResultForSideToMove converts a finished Result into the {0, 0.5, 1} label
// a value sample is trained against, from the perspective of the side to
// move at the sampled position.
func (r Result) ResultForSideToMove(sideToMove Color) float32 {
	switch {
	case r == DrawResult:
		return 0.5
	case r == WhiteWin && sideToMove == White, r == BlackWin && sideToMove == Black:
		return 1
	default:
		return 0
	}
}

// MustParseAndApply is a convenience used by tests and tactical fixtures: it
// parses and applies a whitespace-separated sequence of PTN moves starting
// from the standard opening position.
func MustParseAndApply(size int, moveText string) *Position {
	p := New(size)
	var mv string
	for _, mv = range splitFields(moveText) {
		m, err := p.ParseMove(mv)
		if err != nil {
			panic(errors.Wrapf(err, "MustParseAndApply: %q", mv))
		}
		p.DoMove(m)
	}
	return p
}

func splitFields(s string) []string {
	var fields []string
	cur := ""
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if cur != "" {
				fields = append(fields, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		fields = append(fields, cur)
	}
	return fields
}
