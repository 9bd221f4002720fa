package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/mcts"
)

// newBenchCmd measures raw search throughput: nodes/sec of Iterate on the
// starting position, with no pinned target — this just reports what the
// local build achieves.
func newBenchCmd() *cobra.Command {
	var nodes int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark raw search throughput on the starting position",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			pos := board.New(cfg.boardSize)
			tree := mcts.New(pos, cfg.value, cfg.policy, cfg.mcts, nil)

			start := time.Now()
			for i := 0; i < nodes; i++ {
				tree.Iterate()
			}
			elapsed := time.Since(start)

			fmt.Printf("%d iterations in %s (%.0f iterations/sec)\n",
				nodes, elapsed, float64(nodes)/elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().IntVar(&nodes, "nodes", 200000, "iterations to run")
	return cmd
}
