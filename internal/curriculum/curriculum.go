// Package curriculum implements C9: the frontier scheduler that selects
// the next (domain, difficulty) signal to keep the student near a target
// success rate, and updates per-domain difficulty from observed outcomes.
// Per-domain bookkeeping (a windowed success history feeding a running
// rate) follows the shape of the teacher's reinforcement Strategy counters
// (internal/reinforcement/types.go: TotalTrials/TotalSuccesses/
// SuccessRate()); the frontier scoring and epsilon-exploration rule itself
// is the spec's own, not Thompson sampling (see DESIGN.md's Open Question
// decision on this point).
package curriculum

import (
	"math/rand"
	"sort"

	"coevolve/internal/types"
)

// Config controls scheduler behavior (spec §6 "curriculum" section).
type Config struct {
	EnableFrontier bool
	TargetSuccess  float64
	Domains        []types.Domain
	WindowSize     int
	Epsilon        float64
	Stride         int // fixed-stride rotation period when frontier is disabled
	Band           float64
}

// DefaultConfig matches spec §4.9's defaults.
func DefaultConfig() Config {
	return Config{
		EnableFrontier: true,
		TargetSuccess:  0.5,
		Domains:        []types.Domain{types.DomainMath, types.DomainLogic, types.DomainCode},
		WindowSize:     20,
		Epsilon:        0.2,
		Stride:         5,
		Band:           0.1,
	}
}

// Scheduler holds the per-run curriculum state and serves next_signal/update.
type Scheduler struct {
	cfg   Config
	rng   *rand.Rand
	state types.CurriculumState
}

// New constructs a Scheduler with fresh state: every domain starts at
// difficulty 0.5 with an empty history.
func New(cfg Config, rng *rand.Rand) *Scheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	difficulty := make(map[types.Domain]float64, len(cfg.Domains))
	history := make(map[types.Domain][]bool, len(cfg.Domains))
	for _, d := range cfg.Domains {
		difficulty[d] = 0.5
		history[d] = nil
	}
	current := types.Domain("")
	if len(cfg.Domains) > 0 {
		current = cfg.Domains[0]
	}
	return &Scheduler{
		cfg: cfg,
		rng: rng,
		state: types.CurriculumState{
			Difficulty:    difficulty,
			History:       history,
			Step:          0,
			CurrentDomain: current,
		},
	}
}

// State returns a read-only snapshot of the scheduler's persistent state.
func (s *Scheduler) State() types.CurriculumState {
	return s.state
}

// successRate returns the current domain's windowed success rate, or the
// configured target when its history is empty (spec §3).
func (s *Scheduler) successRate(d types.Domain) float64 {
	h := s.state.History[d]
	if len(h) == 0 {
		return s.cfg.TargetSuccess
	}
	n := 0
	for _, b := range h {
		if b {
			n++
		}
	}
	return float64(n) / float64(len(h))
}

// NextSignal selects the next (domain, difficulty) pair. Besides the
// epsilon-exploration draw, its one effect on scheduler state is recording
// the chosen domain as CurrentDomain, which the following Update credits;
// history, difficulty and the step counter are left unchanged.
func (s *Scheduler) NextSignal(nextTaskID string) types.Signal {
	var domain types.Domain
	if !s.cfg.EnableFrontier {
		domain = s.cfg.Domains[(s.state.Step/s.cfg.Stride)%len(s.cfg.Domains)]
	} else {
		domain = s.frontierPick()
	}
	s.state.CurrentDomain = domain
	return types.Signal{
		Domain:     domain,
		Difficulty: s.state.Difficulty[domain],
		NextTaskID: nextTaskID,
	}
}

type scored struct {
	domain types.Domain
	score  float64
}

// frontierPick scores each domain by |rate - target| (lower is closer to
// frontier) and, with probability 1-epsilon, picks the lowest score; with
// probability epsilon, the second-lowest (exploration). Ties are broken by
// lexicographic domain name.
func (s *Scheduler) frontierPick() types.Domain {
	scores := make([]scored, 0, len(s.cfg.Domains))
	for _, d := range s.cfg.Domains {
		rate := s.successRate(d)
		score := abs(rate - s.cfg.TargetSuccess)
		scores = append(scores, scored{domain: d, score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score < scores[j].score
		}
		return scores[i].domain < scores[j].domain
	})

	if len(scores) == 1 || s.rng.Float64() < 1-s.cfg.Epsilon {
		return scores[0].domain
	}
	return scores[1].domain
}

// Update records the outcome of the step just run against the current
// domain, adjusts its difficulty, and advances the global step counter.
// It is the only method that changes history, difficulty, or the step
// counter.
func (s *Scheduler) Update(success bool) {
	d := s.state.CurrentDomain
	h := append(s.state.History[d], success)
	if len(h) > s.cfg.WindowSize {
		h = h[len(h)-s.cfg.WindowSize:]
	}
	s.state.History[d] = h

	rate := s.successRate(d)
	diff := s.state.Difficulty[d]
	switch {
	case rate > s.cfg.TargetSuccess+s.cfg.Band:
		diff += 0.05
	case rate < s.cfg.TargetSuccess-s.cfg.Band:
		diff -= 0.05
	}
	s.state.Difficulty[d] = clamp(diff, 0.1, 0.9)

	s.state.Step++
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
