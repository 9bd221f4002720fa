package selfplay

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hoelzro/taklet/internal/eval"
	"github.com/hoelzro/taklet/internal/mcts"
)

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig(4, "unit")
	cfg.BatchSize = 1
	cfg.NodesPerMove = 4
	cfg.Parallelism = 2
	cfg.OutputDir = t.TempDir()
	cfg.MCTS = mcts.DefaultConfig()
	cfg.MCTS.DirichletAlpha = 0.3
	return cfg
}

func TestRunBatchPlaysGamesAndTalliesOutcomes(t *testing.T) {
	cfg := testConfig(t)
	candidate := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
	previous := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}

	result, err := RunBatch(context.Background(), candidate, previous, cfg, 0, 1)
	require.NoError(t, err)

	require.Equal(t, 2*cfg.BatchSize, result.CandidateWins+result.PreviousWins+result.Draws)
	require.NotEmpty(t, result.ValueSamples)
	require.NotEmpty(t, result.PolicySamples)
	for _, s := range result.ValueSamples {
		require.True(t, s.Label == 0 || s.Label == 0.5 || s.Label == 1)
	}
}

func TestRunBatchWritesPersistedFiles(t *testing.T) {
	cfg := testConfig(t)
	candidate := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
	previous := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}

	_, err := RunBatch(context.Background(), candidate, previous, cfg, 3, 1)
	require.NoError(t, err)

	gamesPath := batchFileName(cfg, "games", 3)
	scoresPath := batchFileName(cfg, "move_scores", 3)

	gamesContent, err := os.ReadFile(gamesPath)
	require.NoError(t, err)
	require.NotEmpty(t, gamesContent)

	scoresContent, err := os.ReadFile(scoresPath)
	require.NoError(t, err)
	require.NotEmpty(t, scoresContent)
}

func TestRunBatchBacksUpExistingFile(t *testing.T) {
	cfg := testConfig(t)
	gamesPath := batchFileName(cfg, "games", 0)
	require.NoError(t, os.WriteFile(gamesPath, []byte("stale data\n"), 0644))

	candidate := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
	previous := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
	_, err := RunBatch(context.Background(), candidate, previous, cfg, 0, 1)
	require.NoError(t, err)

	backup, err := os.ReadFile(gamesPath + "~")
	require.NoError(t, err)
	require.Equal(t, "stale data\n", string(backup))
}

func TestRunBatchRetainedGamesRespectsCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchesForTraining = 1
	candidate := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}
	previous := Players{Value: eval.NewZeroValue(), Policy: eval.NewZeroPolicy()}

	result, err := RunBatch(context.Background(), candidate, previous, cfg, 0, 1)
	require.NoError(t, err)
	require.LessOrEqual(t, result.RetainedGames, cfg.BatchesForTraining*cfg.BatchSize)
}
