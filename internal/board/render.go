package board

import (
	"fmt"
	"strings"
)

// Render draws an ASCII view of the position, one row per rank from the top
// (highest rank) down, with files labelled underneath: a compact text grid
// rather than a full TUI.
func (p *Position) Render() string {
	const cellWidth = 9 // fits an 8-high stack plus its kind suffix
	var b strings.Builder
	for rank := p.size - 1; rank >= 0; rank-- {
		fmt.Fprintf(&b, "%d ", rank+1)
		for file := 0; file < p.size; file++ {
			sq := squareAt(p.size, file, rank)
			fmt.Fprintf(&b, "%-*s", cellWidth, renderStack(p.squares[sq]))
		}
		b.WriteByte('\n')
	}
	b.WriteString("  ")
	for file := 0; file < p.size; file++ {
		fmt.Fprintf(&b, "%-*c", cellWidth, rune('a'+file))
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s to move, ply %d\n", p.toMove, p.ply)
	return b.String()
}

func renderStack(s Stack) string {
	if s.Empty() {
		return "."
	}
	var b strings.Builder
	for _, c := range s.colors {
		if c == White {
			b.WriteByte('w')
		} else {
			b.WriteByte('b')
		}
	}
	switch s.top {
	case Wall:
		b.WriteByte('S')
	case Cap:
		b.WriteByte('C')
	}
	return b.String()
}
