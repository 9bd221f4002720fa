package main

import (
	"context"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/hoelzro/taklet/internal/eval"
	"github.com/hoelzro/taklet/internal/selfplay"
	"github.com/hoelzro/taklet/internal/tuner"
)

// newSelfplayCmd drives the full training loop: play a batch, retrain the
// candidate on the accumulated samples, and promote the candidate to
// "previous" whenever it clears the win-rate bar. The per-batch mechanics
// live in internal/selfplay and internal/tuner; this is the thin I/O loop
// gluing them together and persisting weights between runs.
//
// Value and policy tuning start from very different learning rates (10 and
// 10000 by default), so each gets its own flag rather than sharing one.
func newSelfplayCmd() *cobra.Command {
	var batches int
	var promoteThreshold float64
	var valueLearningRate float64
	var policyLearningRate float64
	var outputDir string
	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Run the self-play / retrain / promote training loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(cmd)
			if err != nil {
				return err
			}
			trainingID, _ := cmd.Flags().GetString("training-id")

			candidateValue := cfg.value.Clone()
			candidatePolicy := cfg.policy.Clone()
			previousValue := cfg.value.Clone()
			previousPolicy := cfg.policy.Clone()

			spCfg := selfplay.DefaultConfig(cfg.boardSize, trainingID)
			spCfg.MCTS = cfg.mcts
			spCfg.NodesPerMove = cfg.nodesPerMove
			spCfg.OutputDir = outputDir

			valueTunerCfg := tuner.DefaultConfig(float32(valueLearningRate))
			policyTunerCfg := tuner.DefaultConfig(float32(policyLearningRate))

			var valueHistory, policyHistory []tuner.Sample

			for batch := 0; batch < batches; batch++ {
				candidate := selfplay.Players{Value: candidateValue, Policy: candidatePolicy}
				previous := selfplay.Players{Value: previousValue, Policy: previousPolicy}

				result, err := selfplay.RunBatch(context.Background(), candidate, previous, spCfg, batch, uint64(batch)+1)
				if err != nil {
					return err
				}

				valueHistory = append(valueHistory, result.ValueSamples...)
				policyHistory = append(policyHistory, result.PolicySamples...)
				if len(valueHistory) > result.RetainedGames*2 {
					valueHistory = valueHistory[len(valueHistory)-result.RetainedGames*2:]
				}
				if len(policyHistory) > result.RetainedGames*2 {
					policyHistory = policyHistory[len(policyHistory)-result.RetainedGames*2:]
				}

				valueResult := tuner.Tune(candidateValue.Weights(), valueHistory, valueTunerCfg)
				policyResult := tuner.Tune(candidatePolicy.Weights(), policyHistory, policyTunerCfg)
				if candidateValue, err = eval.NewValue(valueResult.Weights); err != nil {
					return err
				}
				if candidatePolicy, err = eval.NewPolicy(policyResult.Weights); err != nil {
					return err
				}

				totalGames := result.CandidateWins + result.PreviousWins + result.Draws
				winRate := float64(result.CandidateWins) / float64(totalGames)
				klog.Infof("selfplay: batch %d win-rate=%.3f value-loss=%.4f policy-loss=%.4f",
					batch, winRate, valueResult.TestLoss, policyResult.TestLoss)

				if winRate >= promoteThreshold {
					klog.Infof("selfplay: batch %d promotes candidate (win-rate %.3f >= %.3f)", batch, winRate, promoteThreshold)
					previousValue = candidateValue.Clone()
					previousPolicy = candidatePolicy.Clone()
				}
			}

			if err := candidateValue.Save(mustFlagString(cmd, "value-weights")); err != nil {
				return err
			}
			return candidatePolicy.Save(mustFlagString(cmd, "policy-weights"))
		},
	}
	cmd.Flags().IntVar(&batches, "batches", 10, "number of self-play batches to run")
	cmd.Flags().Float64Var(&promoteThreshold, "promote-threshold", 0.55, "candidate win-rate required to replace the previous model")
	cmd.Flags().Float64Var(&valueLearningRate, "value-learning-rate", 10, "initial gradient-descent learning rate for the value model")
	cmd.Flags().Float64Var(&policyLearningRate, "policy-learning-rate", 10000, "initial gradient-descent learning rate for the policy model")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory for persisted game and move-score logs")
	cmd.Flags().String("training-id", "run1", "training id used in the persisted log file names")
	return cmd
}

func mustFlagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		v = name
	}
	return v
}
