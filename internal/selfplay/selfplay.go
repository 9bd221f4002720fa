// Package selfplay implements the orchestrator: it pits a candidate
// parameter set against the previous one over a batch of paired, color-
// swapped games, tallies wins, and turns every recorded ply into the labelled
// value and policy samples internal/tuner consumes.
package selfplay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	distrand "golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/hoelzro/taklet/internal/board"
	"github.com/hoelzro/taklet/internal/eval"
	"github.com/hoelzro/taklet/internal/mcts"
	"github.com/hoelzro/taklet/internal/tuner"
)

// Players bundles the value/policy pair that plays one side of a game.
type Players struct {
	Value  *eval.Value
	Policy *eval.Policy
}

// Config controls one batch of self-play.
type Config struct {
	BoardSize    int
	BatchSize    int // B game pairs; 2*BatchSize games are spawned
	NodesPerMove int
	TrainingID   string
	OutputDir    string

	// BatchesForTraining bounds how many recent batches' worth of games the
	// orchestrator is expected to retain; RunBatch itself only reports the
	// retention target via RetainedGames, the caller (which owns the
	// cross-batch history) does the actual trimming.
	BatchesForTraining int

	MCTS        mcts.Config
	Parallelism int // 0 means runtime.GOMAXPROCS(0)
}

// DefaultConfig returns the documented defaults: ten retained batches and
// O(10^4) nodes per move.
func DefaultConfig(boardSize int, trainingID string) Config {
	return Config{
		BoardSize:          boardSize,
		BatchSize:          50,
		NodesPerMove:       10000,
		TrainingID:         trainingID,
		BatchesForTraining: 10,
		MCTS:               mcts.DefaultConfig(),
	}
}

// BatchResult is the outcome of one RunBatch call.
type BatchResult struct {
	CandidateWins int
	PreviousWins  int
	Draws         int

	ValueSamples  []tuner.Sample
	PolicySamples []tuner.Sample

	// RetainedGames is min(half of total games played so far across the
	// caller's history, BatchesForTraining*BatchSize), the in-memory game
	// retention bound; callers combine it with their own running total to
	// decide how many old games to drop.
	RetainedGames int
}

// RunBatch spawns 2*cfg.BatchSize games: each pair plays candidate-vs-previous
// once with candidate as White and once with colors swapped, so the win tally
// is not biased by the first-move advantage. baseSeed seeds each game's own
// independent RNG stream (baseSeed^gameIndex) rather than sharing one stream
// across the pool.
func RunBatch(ctx context.Context, candidate, previous Players, cfg Config, batchIndex int, baseSeed uint64) (BatchResult, error) {
	gamesFile, scoresFile, err := openBatchFiles(cfg, batchIndex)
	if err != nil {
		return BatchResult{}, err
	}
	defer gamesFile.Close()
	defer scoresFile.Close()

	numGames := 2 * cfg.BatchSize
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		result  BatchResult
		writeMu sync.Mutex
	)

	bar := progressbar.Default(int64(numGames), fmt.Sprintf("self-play batch %d", batchIndex))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for gameIdx := 0; gameIdx < numGames; gameIdx++ {
		gameIdx := gameIdx
		g.Go(func() error {
			isSwapped := gameIdx%2 == 1
			white, black := candidate, previous
			if isSwapped {
				white, black = previous, candidate
			}
			seed := baseSeed ^ uint64(gameIdx)
			outcome, err := playGame(gctx, white, black, cfg, seed)
			if err != nil {
				return err
			}
			if gctx.Err() != nil {
				// Cancelled mid-game: outcome is a zero value, not a real result.
				return nil
			}

			writeMu.Lock()
			appendGame(gamesFile, outcome)
			appendMoveScores(scoresFile, outcome)
			writeMu.Unlock()

			mu.Lock()
			defer mu.Unlock()
			switch outcome.Winner {
			case board.DrawResult:
				result.Draws++
			case board.WhiteWin:
				recordWin(&result, !isSwapped)
			case board.BlackWin:
				recordWin(&result, isSwapped)
			}
			if klog.V(2).Enabled() {
				klog.Infof("selfplay: game %d finished %v by %v (%d plies)", gameIdx, outcome.Winner, outcome.Reason, len(outcome.MoveNotation))
			}
			result.ValueSamples = append(result.ValueSamples, outcome.ValueSamples...)
			result.PolicySamples = append(result.PolicySamples, outcome.PolicySamples...)
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, errors.Wrap(err, "selfplay: batch failed")
	}

	totalGamesSoFar := (batchIndex + 1) * numGames
	capGames := cfg.BatchesForTraining * cfg.BatchSize
	result.RetainedGames = min(totalGamesSoFar/2, capGames)

	klog.Infof("selfplay: batch %d done: candidate=%d previous=%d draws=%d (%d value samples, %d policy samples)",
		batchIndex, result.CandidateWins, result.PreviousWins, result.Draws, len(result.ValueSamples), len(result.PolicySamples))
	return result, nil
}

func recordWin(result *BatchResult, candidateWon bool) {
	if candidateWon {
		result.CandidateWins++
	} else {
		result.PreviousWins++
	}
}

// gameOutcome is one finished game's full record, already rendered to PTN
// strings (the board that produced them does not outlive playGame): the move
// list for the notation log, the per-ply candidate-move score lines, and the
// samples harvested for tuning.
type gameOutcome struct {
	MoveNotation  []string
	MoveLines     []moveScoreLine
	ValueSamples  []tuner.Sample
	PolicySamples []tuner.Sample
	Winner        board.Result
	Reason        board.WinReason
}

type moveScoreLine struct {
	Played     string
	Candidates []string
	Scores     []float32
}

// playGame drives one game to completion with mcts_training at every ply,
// recording a value-sample draft per ply (label filled in once the game's
// result is known) and a policy sample per candidate move.
func playGame(ctx context.Context, white, black Players, cfg Config, seed uint64) (gameOutcome, error) {
	pos := board.New(cfg.BoardSize)
	src := distrand.NewSource(seed)

	type valueDraft struct {
		features []float32
		mover    board.Color
	}
	var (
		notation []string
		lines    []moveScoreLine
		drafts   []valueDraft
		policy   []tuner.Sample
	)

	for !pos.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return gameOutcome{}, nil
		}
		mover := pos.SideToMove()
		players := black
		if mover == board.White {
			players = white
		}

		visits := mcts.SearchTraining(pos, players.Value, players.Policy, cfg.MCTS, cfg.NodesPerMove, src)
		if len(visits) == 0 {
			return gameOutcome{}, errors.Errorf("selfplay: no legal moves at non-terminal position (ply %d)", pos.Ply())
		}
		played := bestVisitShare(visits)

		var features [board.NumValueFeatures]float32
		pos.StaticEvalCoefficients(features[:])
		drafts = append(drafts, valueDraft{features: append([]float32(nil), features[:]...), mover: mover})

		gd := pos.GroupData()
		var pf [board.NumPolicyFeatures]float32
		line := moveScoreLine{Played: pos.FormatMove(played.Move)}
		for _, rv := range visits {
			pos.CoefficientsForMove(pf[:], rv.Move, gd, len(visits))
			line.Candidates = append(line.Candidates, pos.FormatMove(rv.Move))
			line.Scores = append(line.Scores, rv.VisitShare)
			policy = append(policy, tuner.Sample{
				Features: append([]float32(nil), pf[:]...),
				Label:    rv.VisitShare,
			})
		}
		lines = append(lines, line)
		notation = append(notation, pos.FormatMove(played.Move))
		pos.DoMove(played.Move)
	}

	result, reason := pos.GameResult()
	valueSamples := make([]tuner.Sample, len(drafts))
	for i, d := range drafts {
		valueSamples[i] = tuner.Sample{
			Features: d.features,
			Label:    result.ResultForSideToMove(d.mover),
		}
	}

	return gameOutcome{
		MoveNotation:  notation,
		MoveLines:     lines,
		ValueSamples:  valueSamples,
		PolicySamples: policy,
		Winner:        result,
		Reason:        reason,
	}, nil
}

func bestVisitShare(visits []mcts.RootVisit) mcts.RootVisit {
	best := visits[0]
	for _, rv := range visits[1:] {
		if rv.VisitShare > best.VisitShare {
			best = rv
		}
	}
	return best
}

func appendGame(f *os.File, outcome gameOutcome) {
	line := strings.Join(outcome.MoveNotation, " ") + "\n\n"
	if _, err := f.WriteString(line); err != nil {
		klog.Errorf("selfplay: failed writing game record: %v", err)
	}
}

func appendMoveScores(f *os.File, outcome gameOutcome) {
	var sb strings.Builder
	for _, ln := range outcome.MoveLines {
		sb.WriteString(ln.Played)
		sb.WriteString(": ")
		for i := range ln.Candidates {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s %.6f", ln.Candidates[i], ln.Scores[i])
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if _, err := f.WriteString(sb.String()); err != nil {
		klog.Errorf("selfplay: failed writing move-score record: %v", err)
	}
}

// openBatchFiles opens (creating if needed) the per-batch games and
// move-score log files in append mode, backing up any pre-existing file from
// an earlier aborted run first by renaming it to the same path with a
// trailing "~".
func openBatchFiles(cfg Config, batchIndex int) (games, scores *os.File, err error) {
	gamesName := batchFileName(cfg, "games", batchIndex)
	scoresName := batchFileName(cfg, "move_scores", batchIndex)

	if games, err = openAppendWithBackup(gamesName); err != nil {
		return nil, nil, errors.Wrapf(err, "selfplay: opening %s", gamesName)
	}
	if scores, err = openAppendWithBackup(scoresName); err != nil {
		games.Close()
		return nil, nil, errors.Wrapf(err, "selfplay: opening %s", scoresName)
	}
	return games, scores, nil
}

func batchFileName(cfg Config, prefix string, batchIndex int) string {
	name := fmt.Sprintf("%s%s_%ds_batch%d", prefix, cfg.TrainingID, cfg.BoardSize, batchIndex)
	if cfg.OutputDir == "" {
		return name
	}
	return filepath.Join(cfg.OutputDir, name)
}

func openAppendWithBackup(path string) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+"~"); err != nil {
			klog.Warningf("selfplay: failed to back up %s: %v", path, err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
