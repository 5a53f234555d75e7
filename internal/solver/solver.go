// Package solver implements C8: it drives the student model through a
// task — templating a domain-specific prompt, calling the inference
// endpoint, parsing the response via internal/parser, executing the
// extracted tool plan via internal/tools, and extracting a final answer.
// Optional self-verification repeats the whole pipeline k times and keeps
// the modal answer. The retry/backoff shape for inference failures follows
// the teacher's connection-retry pattern in
// internal/knowledge/neo4j_client.go, generalized from a DB connection to
// the external inference endpoint's 3-retry/exponential-backoff rule.
package solver

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"coevolve/internal/inference"
	"coevolve/internal/parser"
	"coevolve/internal/tools"
	"coevolve/internal/types"
)

// DefaultMaxRetries is the tool-plan retry budget (spec §4.1 max_retries).
const DefaultMaxRetries = 1

// DefaultVerificationSamples is k, the self-verification sample count.
const DefaultVerificationSamples = 3

// DefaultVerificationThreshold is the modal-vote confidence floor below
// which a trajectory is marked non-verified.
const DefaultVerificationThreshold = 0.7

var numericExtract = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// Config controls solver behavior.
type Config struct {
	MaxToolRetries         int
	EnableVerification     bool
	VerificationSamples    int
	VerificationThreshold  float64
}

// Solver drives the student model end to end for one task.
type Solver struct {
	endpoint inference.Endpoint
	registry *tools.Registry
	cfg      Config
}

// New constructs a Solver.
func New(endpoint inference.Endpoint, registry *tools.Registry, cfg Config) *Solver {
	if cfg.MaxToolRetries <= 0 {
		cfg.MaxToolRetries = DefaultMaxRetries
	}
	if cfg.VerificationSamples <= 0 {
		cfg.VerificationSamples = DefaultVerificationSamples
	}
	if cfg.VerificationThreshold <= 0 {
		cfg.VerificationThreshold = DefaultVerificationThreshold
	}
	return &Solver{endpoint: endpoint, registry: registry, cfg: cfg}
}

// Outcome is one independent attempt's result, prior to any modal voting.
type Outcome struct {
	Answer    string
	Reasoning string
	ToolCalls []types.ToolCall
}

// Solve drives the student through task and returns a complete Trajectory
// (success is left to the caller/verifier — this package only produces a
// candidate answer and trace).
func (s *Solver) Solve(ctx context.Context, task types.Task) types.Trajectory {
	if !s.cfg.EnableVerification {
		o := s.attemptWithRetry(ctx, task)
		return types.Trajectory{
			Task:      task,
			Result:    o.Answer,
			ToolCalls: o.ToolCalls,
			Reasoning: o.Reasoning,
			Timestamp: time.Now(),
			Route:     "direct",
		}
	}

	k := s.cfg.VerificationSamples
	outcomes := make([]Outcome, 0, k)
	for i := 0; i < k; i++ {
		outcomes = append(outcomes, s.attemptWithRetry(ctx, task))
	}

	modal, confidence := modalAnswer(outcomes)
	best := outcomes[0]
	for _, o := range outcomes {
		if o.Answer == modal {
			best = o
			break
		}
	}

	traj := types.Trajectory{
		Task:      task,
		Result:    modal,
		ToolCalls: best.ToolCalls,
		Reasoning: best.Reasoning,
		Timestamp: time.Now(),
		Route:     "self-verified",
	}
	c := confidence
	traj.Verification = &c
	if confidence < s.cfg.VerificationThreshold {
		traj.Success = false
	}
	return traj
}

// modalAnswer returns the most frequent answer and count_of_mode / k. Ties
// are broken by the answer that appeared first, for determinism.
func modalAnswer(outcomes []Outcome) (string, float64) {
	counts := make(map[string]int)
	order := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if _, seen := counts[o.Answer]; !seen {
			order = append(order, o.Answer)
		}
		counts[o.Answer]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) == 0 {
		return "", 0
	}
	modal := order[0]
	return modal, float64(counts[modal]) / float64(len(outcomes))
}

// attemptWithRetry runs one full template->generate->parse->execute->extract
// pass, retrying the inference call on failure with exponential backoff
// (1s, 2s, 4s) per spec §4.8. A persistent failure returns an empty-answer,
// no-tool-calls outcome.
func (s *Solver) attemptWithRetry(ctx context.Context, task types.Task) Outcome {
	prompt := PromptTemplate(task)

	backoffs := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	var text string
	var err error
	for attempt := 0; attempt <= len(backoffs); attempt++ {
		text, err = s.endpoint.Generate(ctx, prompt, inference.GenerateOptions{Temperature: 0.2})
		if err == nil {
			break
		}
		if attempt < len(backoffs) {
			select {
			case <-ctx.Done():
				return Outcome{}
			case <-time.After(backoffs[attempt]):
			}
		}
	}
	if err != nil {
		return Outcome{}
	}

	parsed := parser.Parse(text)

	var results []types.ToolCall
	if len(parsed.ToolCalls) > 0 {
		results, err = s.registry.ExecutePlan(ctx, parsed.ToolCalls, s.cfg.MaxToolRetries)
		if err != nil {
			results = parsed.ToolCalls
		}
	}

	answer := extractAnswer(parsed, results)
	return Outcome{Answer: answer, Reasoning: text, ToolCalls: results}
}

// extractAnswer follows the preference order from spec §4.8: (a) the
// parsed Answer: field, (b) the last ok tool's result via numeric
// extraction, (c) empty.
func extractAnswer(parsed parser.Result, results []types.ToolCall) string {
	if parsed.Answer != "" {
		return parsed.Answer
	}
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Status == types.ToolStatusOK {
			if m := numericExtract.FindString(results[i].Result); m != "" {
				return m
			}
			return results[i].Result
		}
	}
	return ""
}

// PromptTemplate builds the domain-specific reasoning prompt for a task,
// substituting its fields into a fixed template that instructs the model
// to use the Thought:/Tool:/ToolInput:/Answer: grammar the parser expects.
func PromptTemplate(task types.Task) string {
	var toolHint string
	switch task.Domain {
	case types.DomainMath:
		toolHint = "You may use the `math` tool to simplify expressions or solve equations."
	case types.DomainCode:
		toolHint = "You may use the `python` tool to write and test candidate code."
	default:
		toolHint = "Use tools only if they help; plain reasoning is fine otherwise."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s (difficulty %.2f)\n", task.Domain, task.Difficulty)
	fmt.Fprintf(&b, "Task: %s\n", task.Prompt)
	if len(task.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(task.Constraints, "; "))
	}
	b.WriteString(toolHint)
	b.WriteString("\nRespond using Thought:, optionally Tool: and ToolInput: pairs, and finish with Answer: <final answer>.\n")
	return b.String()
}
