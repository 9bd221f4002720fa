package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/generics"
	"github.com/hoelzro/taklet/internal/mcts"
)

func newAnalyzeCmd() *cobra.Command {
	var nodes int
	cmd := &cobra.Command{
		Use:   "analyze <moves...>",
		Short: "Run a fixed-node search on a position and print the candidate moves by visit count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			pos := board.New(cfg.boardSize)
			for _, mv := range args {
				m, err := pos.ParseMove(mv)
				if err != nil {
					return err
				}
				pos.DoMove(m)
			}

			tree := mcts.New(pos, cfg.value, cfg.policy, cfg.mcts, nil)
			for i := 0; i < nodes; i++ {
				tree.Iterate()
			}

			scores := make(map[string]float32)
			for _, e := range tree.RootEdges() {
				scores[pos.FormatMove(e.Move)] = float32(e.Visits)
			}
			fmt.Print(pos.Render())
			for notation, visits := range generics.SortedKeysAndValues(scores) {
				fmt.Printf("%-8s visits=%.0f\n", notation, visits)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&nodes, "nodes", 10000, "search iterations to run")
	return cmd
}
