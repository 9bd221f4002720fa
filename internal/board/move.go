package board

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Square is a board coordinate packed as rank*size+file, file='a' at 0,
// rank='1' at 0 (bottom-left of the printed board).
type Square int16

// squareAt builds a Square from zero-based file/rank.
func squareAt(size, file, rank int) Square {
	return Square(rank*size + file)
}

func (sq Square) file(size int) int { return int(sq) % size }
func (sq Square) rank(size int) int { return int(sq) / size }

// string renders a square in PTN notation, e.g. "c2".
func (sq Square) string(size int) string {
	return fmt.Sprintf("%c%d", 'a'+sq.file(size), sq.rank(size)+1)
}

func parseSquare(size int, s string) (Square, error) {
	if len(s) < 2 {
		return 0, errors.Errorf("square %q too short", s)
	}
	file := int(s[0] - 'a')
	if file < 0 || file >= size {
		return 0, errors.Errorf("square %q: file out of range for size %d", s, size)
	}
	rank := 0
	if _, err := fmt.Sscanf(s[1:], "%d", &rank); err != nil {
		return 0, errors.Wrapf(err, "square %q: bad rank", s)
	}
	rank--
	if rank < 0 || rank >= size {
		return 0, errors.Errorf("square %q: rank out of range for size %d", s, size)
	}
	return squareAt(size, file, rank), nil
}

// Direction a stack spreads in. The names follow the PTN convention: '+' is
// toward higher ranks (north/up the printed board), '-' toward lower ranks.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) delta() (df, dr int) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		panic("board: bad direction")
	}
}

func (d Direction) rune() rune {
	switch d {
	case Up:
		return '+'
	case Down:
		return '-'
	case Left:
		return '<'
	case Right:
		return '>'
	default:
		panic("board: bad direction")
	}
}

func directionFromRune(r rune) (Direction, bool) {
	switch r {
	case '+':
		return Up, true
	case '-':
		return Down, true
	case '<':
		return Left, true
	case '>':
		return Right, true
	default:
		return 0, false
	}
}

// MoveKind distinguishes a placement from a stack spread.
type MoveKind uint8

const (
	Place MoveKind = iota
	Spread
)

// Move is either: place a piece of Placed kind on Square, or pick up Count
// pieces from Square and spread them one direction, dropping Drops[i]
// pieces on the i-th square along the way. Moves are plain values: cheap to
// copy, compare with ==, and store on edges.
type Move struct {
	Kind      MoveKind
	Square    Square
	Placed    Kind      // valid iff Kind == Place
	Direction Direction // valid iff Kind == Spread
	Count     int8      // valid iff Kind == Spread: pieces picked up
	Drops     [7]int8   // valid iff Kind == Spread: Drops[:DropCount]
	DropCount int8
	Flattens  bool // valid iff Kind == Spread: final drop flattens a wall
}

// String formats the move in PTN notation.
func (m Move) String() string {
	return m.format(defaultFormatSize)
}

// defaultFormatSize is used by String() when no size is threaded through;
// Position.FormatMove should be preferred wherever a size is available.
const defaultFormatSize = 5

func (m Move) format(size int) string {
	if m.Kind == Place {
		sq := m.Square.string(size)
		switch m.Placed {
		case Wall:
			return "S" + sq
		case Cap:
			return "C" + sq
		default:
			return sq
		}
	}
	var b strings.Builder
	if m.Count > 1 {
		fmt.Fprintf(&b, "%d", m.Count)
	}
	b.WriteString(m.Square.string(size))
	b.WriteRune(m.Direction.rune())
	if m.DropCount > 1 {
		for i := int8(0); i < m.DropCount; i++ {
			fmt.Fprintf(&b, "%d", m.Drops[i])
		}
	}
	if m.Flattens {
		b.WriteRune('*')
	}
	return b.String()
}

// ParseMove parses a PTN-style move string for a board of the given size.
// It does not validate legality against any position; that is the job of
// GenerateMoves / DoMove.
func ParseMove(size int, s string) (Move, error) {
	if s == "" {
		return Move{}, errors.New("empty move")
	}
	orig := s

	// Placement: optional leading piece letter, then a square.
	if c := s[0]; c == 'C' || c == 'S' {
		sq, err := parseSquare(size, s[1:])
		if err != nil {
			return Move{}, errors.Wrapf(err, "move %q", orig)
		}
		kind := Wall
		if c == 'C' {
			kind = Cap
		}
		return Move{Kind: Place, Square: sq, Placed: kind}, nil
	}
	if c := s[0]; c >= 'a' && c <= 'a'+byte(size)-1 {
		// Could still be a bare flat placement like "c2", try that first.
		if isSpreadNotation(s) {
			return parseSpread(size, s)
		}
		sq, err := parseSquare(size, s)
		if err != nil {
			return Move{}, errors.Wrapf(err, "move %q", orig)
		}
		return Move{Kind: Place, Square: sq, Placed: Flat}, nil
	}
	// Leading digit: a count-prefixed spread, e.g. "3a3-111" or "2a3-11".
	if s[0] >= '1' && s[0] <= '9' {
		return parseSpread(size, s)
	}
	return Move{}, errors.Errorf("move %q: unrecognized notation", orig)
}

// isSpreadNotation reports whether a string starting with a file letter is
// actually a spread (has a direction character) rather than a bare flat
// placement.
func isSpreadNotation(s string) bool {
	for _, r := range s {
		if _, ok := directionFromRune(r); ok {
			return true
		}
	}
	return false
}

func parseSpread(size int, s string) (Move, error) {
	orig := s
	count := int8(1)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 {
		n := 0
		fmt.Sscanf(s[:i], "%d", &n)
		count = int8(n)
	}
	rest := s[i:]
	if len(rest) < 3 {
		return Move{}, errors.Errorf("move %q: too short for a spread", orig)
	}
	sq, err := parseSquare(size, rest[:2])
	if err != nil {
		return Move{}, errors.Wrapf(err, "move %q", orig)
	}
	rest = rest[2:]
	if rest == "" {
		return Move{}, errors.Errorf("move %q: missing direction", orig)
	}
	dir, ok := directionFromRune(rune(rest[0]))
	if !ok {
		return Move{}, errors.Errorf("move %q: bad direction %q", orig, rest[0])
	}
	rest = rest[1:]
	flattens := false
	if strings.HasSuffix(rest, "*") {
		flattens = true
		rest = rest[:len(rest)-1]
	}
	m := Move{Kind: Spread, Square: sq, Direction: dir, Count: count, Flattens: flattens}
	if rest == "" {
		m.Drops[0] = count
		m.DropCount = 1
		return m, nil
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return Move{}, errors.Errorf("move %q: bad drop digit %q", orig, r)
		}
		if m.DropCount >= int8(len(m.Drops)) {
			return Move{}, errors.Errorf("move %q: too many drops", orig)
		}
		m.Drops[m.DropCount] = int8(r - '0')
		m.DropCount++
	}
	return m, nil
}
