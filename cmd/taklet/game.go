package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/board"
)

// newGameCmd replays a single PTN-ish move list (as written by
// internal/selfplay to its games{id}_{S}s_batch{k} files) and reports the
// final result, per the notation-parse-error taxonomy: a bad move is a
// recoverable error reported with its move number, not a crash.
func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game <file>",
		Short: "Replay a recorded game and print its final result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pos := board.New(cfg.boardSize)
			fields := strings.Fields(strings.SplitN(string(data), "\n\n", 2)[0])
			for i, mv := range fields {
				m, err := pos.ParseMove(mv)
				if err != nil {
					return errors.Wrapf(err, "move %d (%q)", i+1, mv)
				}
				if !slices.Contains(pos.GenerateMoves(nil), m) {
					return errors.Errorf("move %d (%q): not legal in this position", i+1, mv)
				}
				pos.DoMove(m)
			}
			fmt.Print(pos.Render())
			result, reason := pos.GameResult()
			fmt.Printf("Result: %v (%v)\n", result, reason)
			return nil
		},
	}
	return cmd
}
