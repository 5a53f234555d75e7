// Package reward implements C6: combining correctness, tool-use, novelty
// and uncertainty signals into a scalar reward plus a component breakdown.
// The computation itself is pure arithmetic directly off spec §4.6; the
// output-shape convention (a map of named components alongside the total)
// follows the teacher's metric-map pattern in internal/metrics/collector.go.
package reward

import (
	"sync"

	"coevolve/internal/config"
	"coevolve/internal/types"
)

// Weights holds the reward engine's configured weights and thresholds.
type Weights struct {
	Uncertainty           float64
	ToolUse               float64
	Novelty               float64
	Correctness           float64
	TargetSuccess         float64
	RepetitionSimilarity  float64
}

// WeightsFromConfig extracts Weights from the recognized configuration
// surface (spec §6 "rewards" section).
func WeightsFromConfig(c config.RewardsConfig) Weights {
	return Weights{
		Uncertainty:          c.WeightUncertainty,
		ToolUse:              c.WeightToolUse,
		Novelty:              c.WeightNovelty,
		Correctness:          c.WeightCorrectness,
		TargetSuccess:        c.TargetSuccessRate,
		RepetitionSimilarity: c.RepetitionSimilarityThreshold,
	}
}

// recentSignatureWindow is the "last 100 signatures" window from spec §4.6.
const recentSignatureWindow = 100

// Engine computes reward breakdowns for trajectories, tracking the recent
// novelty-signature window that the novelty component's repetition check
// depends on. The novelty index (C4)'s own embedding similarity search is a
// separate, independent signal (max_similarity is passed in).
type Engine struct {
	weights Weights

	mu          sync.Mutex
	recentSigs  []string
	seenRecent  map[string]int // signature -> count currently in window
}

// New constructs a reward Engine with the given weights.
func New(weights Weights) *Engine {
	return &Engine{weights: weights, seenRecent: make(map[string]int)}
}

// Compute produces the reward breakdown for one trajectory, given the
// uncertainty estimator's success_prob, the step's novelty signature, and
// the novelty index's max_similarity query result. It also records the
// signature into the recent-signature window for future repetition checks.
func (e *Engine) Compute(traj types.Trajectory, successProb float64, noveltySig string, maxSimilarity float64) types.RewardBreakdown {
	rCorrect := -0.5
	if traj.Success {
		rCorrect = 1.0
	}

	rUnc := 1 - abs(successProb-e.weights.TargetSuccess)

	var okCalls int
	for _, tc := range traj.ToolCalls {
		if tc.Status == types.ToolStatusOK {
			okCalls++
		}
	}
	var rTool float64
	if len(traj.ToolCalls) == 0 {
		rTool = -0.2
	} else {
		rTool = 0.25 * float64(okCalls)
		if rTool > 1.0 {
			rTool = 1.0
		}
	}

	rNov := e.noveltyComponent(noveltySig, maxSimilarity)

	total := e.weights.Uncertainty*rUnc + e.weights.ToolUse*rTool + e.weights.Novelty*rNov + e.weights.Correctness*rCorrect

	return types.RewardBreakdown{
		Uncertainty: rUnc,
		ToolUse:     rTool,
		Novelty:     rNov,
		Correctness: rCorrect,
		Total:       total,
	}
}

func (e *Engine) noveltyComponent(sig string, maxSimilarity float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	rNov := 1.0
	if e.seenRecent[sig] > 0 {
		rNov -= 0.5
	}
	if maxSimilarity > e.weights.RepetitionSimilarity {
		rNov -= 0.5
	}
	if rNov < -1.0 {
		rNov = -1.0
	}

	e.recentSigs = append(e.recentSigs, sig)
	e.seenRecent[sig]++
	if len(e.recentSigs) > recentSignatureWindow {
		evicted := e.recentSigs[0]
		e.recentSigs = e.recentSigs[1:]
		e.seenRecent[evicted]--
		if e.seenRecent[evicted] <= 0 {
			delete(e.seenRecent, evicted)
		}
	}

	return rNov
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
