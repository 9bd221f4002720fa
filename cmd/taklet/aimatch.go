package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/eval"
	"github.com/hoelzro/taklet/internal/selfplay"
)

// newAIMatchCmd plays one batch of candidate-vs-previous games between two
// named weight sets and reports the tally; it is selfplay.RunBatch with no
// retraining step, useful for comparing two already-tuned models head to
// head.
func newAIMatchCmd() *cobra.Command {
	var previousValuePath, previousPolicyPath string
	var batchSize, nodes int
	var trainingID string
	cmd := &cobra.Command{
		Use:   "aimatch",
		Short: "Play candidate-vs-previous games and report the win tally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			previous := selfplay.Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
			if previousValuePath != "" {
				if previous.Value, err = eval.LoadValue(previousValuePath); err != nil {
					return err
				}
			}
			if previousPolicyPath != "" {
				if previous.Policy, err = eval.LoadPolicy(previousPolicyPath); err != nil {
					return err
				}
			}
			candidate := selfplay.Players{Value: cfg.value, Policy: cfg.policy}

			spCfg := selfplay.DefaultConfig(cfg.boardSize, trainingID)
			spCfg.BatchSize = batchSize
			spCfg.NodesPerMove = nodes
			spCfg.MCTS = cfg.mcts

			result, err := selfplay.RunBatch(context.Background(), candidate, previous, spCfg, 0, 1)
			if err != nil {
				return err
			}
			fmt.Printf("candidate=%d previous=%d draws=%d\n", result.CandidateWins, result.PreviousWins, result.Draws)
			return nil
		},
	}
	cmd.Flags().StringVar(&previousValuePath, "previous-value-weights", "", "path to the previous value model")
	cmd.Flags().StringVar(&previousPolicyPath, "previous-policy-weights", "", "path to the previous policy model")
	cmd.Flags().IntVar(&batchSize, "pairs", 20, "number of candidate-vs-previous pairs to play")
	cmd.Flags().IntVar(&nodes, "nodes", 1000, "mcts_training node count per move")
	cmd.Flags().StringVar(&trainingID, "training-id", "aimatch", "training id used in the persisted log file names")
	return cmd
}
