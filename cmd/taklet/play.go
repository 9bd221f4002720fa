package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/mcts"
)

func newPlayCmd() *cobra.Command {
	var humanColor string
	var nodes int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an interactive game against the engine over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			human := board.White
			if humanColor == "black" {
				human = board.Black
			}

			pos := board.New(cfg.boardSize)
			scanner := bufio.NewScanner(os.Stdin)
			for !pos.IsTerminal() {
				fmt.Print(pos.Render())
				if pos.SideToMove() == human {
					fmt.Print("your move> ")
					if !scanner.Scan() {
						return nil
					}
					mv, err := pos.ParseMove(scanner.Text())
					if err != nil {
						fmt.Println("invalid move:", err)
						continue
					}
					pos.DoMove(mv)
				} else {
					mv, winProb := mcts.Search(pos, cfg.value, cfg.policy, cfg.mcts, nodes)
					fmt.Printf("engine plays %s (win prob %.3f)\n", pos.FormatMove(mv), winProb)
					pos.DoMove(mv)
				}
			}
			result, reason := pos.GameResult()
			fmt.Printf("%s\nGame over: %v (%v)\n", pos.Render(), result, reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&humanColor, "color", "white", "human color: white or black")
	cmd.Flags().IntVar(&nodes, "nodes", 10000, "engine search iterations per move")
	return cmd
}
