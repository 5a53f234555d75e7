// Package uncertainty implements C5: a calibrated success-probability
// estimate for a (task, answer) pair. It prefers per-token log-probabilities
// from the inference endpoint when available, falls back to an N-sample
// self-critique loop (the endpoint rating its own answer), and finally a
// fixed 0.5 when nothing parses — the same "preferred path with graceful
// degradation" shape the teacher's self-evaluator uses for thought quality
// assessment (internal/metacognition/self_eval.go), here keyed to a
// numeric estimate instead of a struct of scores.
package uncertainty

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"coevolve/internal/calibration"
	"coevolve/internal/inference"
)

// DefaultSamples is N, the number of self-critique samples taken when
// logprobs are unavailable (spec §4.5).
const DefaultSamples = 3

// fallback is returned when no self-critique sample parses.
const fallback = 0.5

var scoreRe = regexp.MustCompile(`0(?:\.\d+)?|1(?:\.0+)?`)

// Estimator produces p_success estimates for (prompt, answer) pairs.
type Estimator struct {
	endpoint inference.Endpoint
	samples  int
	tracker  *calibration.Tracker
}

// New constructs an Estimator. samples <= 0 uses DefaultSamples.
func New(endpoint inference.Endpoint, samples int) *Estimator {
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Estimator{endpoint: endpoint, samples: samples, tracker: calibration.New()}
}

// Record stores one (predicted confidence, observed success) pair in the
// estimator's calibration tracker, so that Report reflects every step the
// coordinator has driven through Estimate.
func (e *Estimator) Record(confidence float64, success bool) {
	e.tracker.Record(confidence, success)
}

// Report returns the current calibration report over every pair Record has
// seen, letting the coordinator expose how well this run's p_success
// predictions track observed verifier outcomes.
func (e *Estimator) Report() calibration.Report {
	return e.tracker.Report()
}

// Estimate returns p_success in [0,1] for a candidate answer to prompt.
func (e *Estimator) Estimate(ctx context.Context, prompt, answer string) float64 {
	if p, ok := e.fromLogprobs(ctx, prompt, answer); ok {
		return p
	}
	if p, ok := e.fromSelfCritique(ctx, prompt, answer); ok {
		return p
	}
	return fallback
}

// fromLogprobs asks the endpoint for a reply to the critique prompt with
// per-token log-probabilities, averages them, and maps the mean into [0,1]
// via exp(mean_logprob), clamped. The log-probabilities are those of the
// generated reply; the candidate answer's own tokens are not scored.
func (e *Estimator) fromLogprobs(ctx context.Context, prompt, answer string) (float64, bool) {
	_, logprobs, err := e.endpoint.GenerateWithLogprobs(ctx, critiquePrompt(prompt, answer), inference.GenerateOptions{Temperature: 0})
	if err != nil || len(logprobs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, lp := range logprobs {
		sum += lp
	}
	mean := sum / float64(len(logprobs))
	p := math.Exp(mean)
	return clamp01(p), true
}

// fromSelfCritique asks the model N independent low-temperature times to
// rate its own answer as a real in [0,1], parses with scoreRe, and returns
// the mean over samples that parsed.
func (e *Estimator) fromSelfCritique(ctx context.Context, prompt, answer string) (float64, bool) {
	var total float64
	var parsed int
	for i := 0; i < e.samples; i++ {
		text, err := e.endpoint.Generate(ctx, critiquePrompt(prompt, answer), inference.GenerateOptions{Temperature: 0.1})
		if err != nil {
			continue
		}
		match := scoreRe.FindString(text)
		if match == "" {
			continue
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		total += clamp01(v)
		parsed++
	}
	if parsed == 0 {
		return 0, false
	}
	return total / float64(parsed), true
}

func critiquePrompt(prompt, answer string) string {
	var b strings.Builder
	b.WriteString("Task: ")
	b.WriteString(prompt)
	b.WriteString("\nCandidate answer: ")
	b.WriteString(answer)
	b.WriteString("\nRate your confidence that this answer is correct as a single number between 0 and 1.")
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
