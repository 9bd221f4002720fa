package main

import (
	"fmt"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/mcts"
)

// newMemUsageCmd reports per-node arena footprint. Full memory profiling is
// out of scope here; this stays a thin stub reporting the arena's element
// sizes, not a pprof wrapper.
func newMemUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mem_usage",
		Short: "Report the search tree arena's per-node and per-edge footprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			var node mcts.Node
			var edge mcts.Edge
			var move board.Move
			fmt.Printf("sizeof(Node header) = %d bytes\n", unsafe.Sizeof(node))
			fmt.Printf("sizeof(Edge)        = %d bytes\n", unsafe.Sizeof(edge))
			fmt.Printf("sizeof(Move)        = %d bytes\n", unsafe.Sizeof(move))
			return nil
		},
	}
}
