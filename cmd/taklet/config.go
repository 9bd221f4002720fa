package main

import (
	"github.com/spf13/cobra"

	"github.com/hoelzro/taklet/internal/eval"
	"github.com/hoelzro/taklet/internal/mcts"
	"github.com/hoelzro/taklet/internal/parameters"
)

// engineConfig bundles the flags every subcommand that runs a search shares:
// board size, the evaluator weights, and the MCTS settings, the latter
// overridable through --config per the documented configuration surface
// (c_puct_init, c_puct_base, dirichlet_alpha, nodes_per_move).
type engineConfig struct {
	boardSize    int
	value        *eval.Value
	policy       *eval.Policy
	mcts         mcts.Config
	nodesPerMove int
}

func loadEngineConfig(cmd *cobra.Command) (engineConfig, error) {
	boardSize, _ := cmd.Flags().GetInt("board-size")
	valuePath, _ := cmd.Flags().GetString("value-weights")
	policyPath, _ := cmd.Flags().GetString("policy-weights")
	configStr, _ := cmd.Flags().GetString("config")

	cfg := engineConfig{
		boardSize:    boardSize,
		value:        eval.NewZeroValue(),
		policy:       eval.NewZeroPolicy(),
		mcts:         mcts.DefaultConfig(),
		nodesPerMove: 10000,
	}

	if valuePath != "" {
		v, err := eval.LoadValue(valuePath)
		if err != nil {
			return cfg, err
		}
		cfg.value = v
	}
	if policyPath != "" {
		p, err := eval.LoadPolicy(policyPath)
		if err != nil {
			return cfg, err
		}
		cfg.policy = p
	}

	params := parameters.NewFromConfigString(configStr)
	var err error
	if cfg.mcts.CPuctInit, err = parameters.GetParamOr(params, "c_puct_init", cfg.mcts.CPuctInit); err != nil {
		return cfg, err
	}
	if cfg.mcts.CPuctBase, err = parameters.GetParamOr(params, "c_puct_base", cfg.mcts.CPuctBase); err != nil {
		return cfg, err
	}
	if cfg.mcts.DirichletAlpha, err = parameters.GetParamOr(params, "dirichlet_alpha", cfg.mcts.DirichletAlpha); err != nil {
		return cfg, err
	}
	if cfg.nodesPerMove, err = parameters.GetParamOr(params, "nodes_per_move", cfg.nodesPerMove); err != nil {
		return cfg, err
	}
	return cfg, nil
}
