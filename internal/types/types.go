// Package types defines the core data structures shared across the
// co-evolution core: tasks proposed by the teacher, the verifier
// specification attached to each task, tool-call records produced by the
// solver, the trajectory emitted at the end of a step, and the curriculum
// scheduler's persistent state.
package types

import "time"

// Domain identifies one of the task domains the teacher can draw from.
type Domain string

const (
	DomainMath  Domain = "math"
	DomainLogic Domain = "logic"
	DomainCode  Domain = "code"
)

// Metadata is a mapping from short string keys to primitive values, used
// wherever the spec calls for an open-ended, informational bag of fields.
type Metadata map[string]interface{}

// VerifierKind tags the variant carried by a VerifierSpec.
type VerifierKind string

const (
	VerifierExactString     VerifierKind = "exact_string"
	VerifierNumeric         VerifierKind = "numeric"
	VerifierNumericSet      VerifierKind = "numeric_set"
	VerifierPythonPredicate VerifierKind = "python_predicate"
	VerifierPythonAssert    VerifierKind = "python_assert"
	VerifierRegexMatch      VerifierKind = "regex_match"
)

// VerifierSpec is a tagged variant describing how a candidate answer for a
// task should be judged. Only the fields relevant to Kind are populated;
// the rest are left at their zero value.
type VerifierSpec struct {
	Kind VerifierKind `json:"kind"`

	// exact_string
	Expected string `json:"expected,omitempty"`

	// numeric
	ExpectedNumeric float64 `json:"expected_numeric,omitempty"`
	Tolerance       float64 `json:"tolerance,omitempty"`

	// numeric_set
	ExpectedSet []float64 `json:"expected_set,omitempty"`

	// python_predicate / python_assert
	Body string `json:"body,omitempty"`

	// regex_match
	Pattern string `json:"pattern,omitempty"`
}

// Task is an immutable record describing one unit of work proposed by the
// teacher. Once constructed a Task is never mutated.
type Task struct {
	TaskID      string       `json:"task_id"`
	Domain      Domain       `json:"domain"`
	Difficulty  float64      `json:"difficulty"`
	Prompt      string       `json:"prompt"`
	Constraints []string     `json:"constraints"`
	Verifier    VerifierSpec `json:"verifier"`
	Metadata    Metadata     `json:"metadata"`
}

// ToolCallStatus is the outcome of executing a single tool-call step.
type ToolCallStatus string

const (
	ToolStatusOK      ToolCallStatus = "ok"
	ToolStatusError   ToolCallStatus = "error"
	ToolStatusBlocked ToolCallStatus = "blocked"
	ToolStatusTimeout ToolCallStatus = "timeout"
)

// ToolCall records one invocation of a tool within a plan, before and after
// execution. DependsOn names the step IDs whose outputs this step's Input
// may reference via "{{step_k.result}}" / "{{step_k.stdout}}" substitution.
type ToolCall struct {
	StepID    string         `json:"step_id"`
	Tool      string         `json:"tool"`
	Input     string         `json:"input"`
	DependsOn []string       `json:"depends_on,omitempty"`
	Optional  bool           `json:"-"`
	Status    ToolCallStatus `json:"status"`
	Result    string         `json:"result"`
	Stdout    string         `json:"stdout"`
	Stderr    string         `json:"stderr"`
	ElapsedMs int64          `json:"elapsed_ms"`
}

// RewardBreakdown holds the individual reward components plus their
// weighted total, as computed by the reward engine (C6).
type RewardBreakdown struct {
	Uncertainty float64 `json:"uncertainty"`
	ToolUse     float64 `json:"tool_use"`
	Novelty     float64 `json:"novelty"`
	Correctness float64 `json:"correctness"`
	Total       float64 `json:"total"`
}

// Trajectory is the complete emitted record of one co-evolution step.
type Trajectory struct {
	Task         Task            `json:"task"`
	Result       string          `json:"result"`
	ToolCalls    []ToolCall      `json:"tool_calls"`
	Reasoning    string          `json:"reasoning"`
	Success      bool            `json:"success"`
	Confidence   float64         `json:"confidence"`
	Reward       RewardBreakdown `json:"reward"`
	Verification *float64        `json:"verification"`
	Route        string          `json:"route"`
	Timestamp    time.Time       `json:"timestamp"`
}

// CurriculumState is the scheduler's per-run mutable state: per-domain
// difficulty and a bounded success/failure window, plus a global step
// counter and the domain most recently dispatched.
type CurriculumState struct {
	Difficulty    map[Domain]float64 `json:"difficulty"`
	History       map[Domain][]bool  `json:"history"`
	Step          int                `json:"step"`
	CurrentDomain Domain             `json:"current_domain"`
}

// Signal is what the curriculum scheduler hands the task generator: the
// (domain, difficulty) pair to draw from, plus optional caller overrides.
type Signal struct {
	Domain           Domain        `json:"domain"`
	Difficulty       float64       `json:"difficulty"`
	NextTaskID       string        `json:"next_task_id"`
	PromptOverride   *string       `json:"prompt_override,omitempty"`
	VerifierOverride *VerifierSpec `json:"verifier_override,omitempty"`
}
