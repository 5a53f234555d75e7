// Package taskgen implements C7, the teacher's task generator: given a
// (domain, difficulty) signal, draw a concrete task from the matching
// domain/tier template, attach its verifier, and self-validate before
// emission. The per-domain tier tables follow the shape of the teacher's
// DomainTemplate/DomainStep tables (internal/reasoning/domain_templates.go)
// repurposed from decomposition checklists to generator tiers; each tier
// draws with a task_id-seeded math/rand source so generation is
// reproducible in tests; metadata.created_at is likewise not a wall-clock
// time but the number of tasks this Generator has emitted so far.
package taskgen

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"coevolve/internal/coerr"
	"coevolve/internal/types"
)

const maxPromptLen = 1000

var controlChar = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

// Generator produces validated Task records from scheduler signals.
type Generator struct {
	mu      sync.Mutex
	seen    map[string]bool
	created int
}

// New constructs an empty Generator.
func New() *Generator {
	return &Generator{seen: make(map[string]bool)}
}

// Generate builds a Task from signal, retrying once internally on a
// self-validation failure before returning GeneratorExhausted.
func (g *Generator) Generate(signal types.Signal) (types.Task, error) {
	for attempt := 0; attempt < 2; attempt++ {
		task, err := g.draft(signal, attempt)
		if err != nil {
			continue
		}
		if verr := g.validate(task); verr != nil {
			continue
		}
		g.mu.Lock()
		g.seen[task.TaskID] = true
		g.created++
		g.mu.Unlock()
		return task, nil
	}
	return types.Task{}, coerr.New(coerr.KindGeneratorExhausted, map[string]interface{}{
		"domain":     signal.Domain,
		"difficulty": signal.Difficulty,
		"task_id":    signal.NextTaskID,
	}, fmt.Errorf("no valid task could be generated after retry"))
}

func (g *Generator) draft(signal types.Signal, attempt int) (types.Task, error) {
	taskID := signal.NextTaskID
	if taskID == "" {
		return types.Task{}, fmt.Errorf("next_task_id required")
	}

	g.mu.Lock()
	createdAt := g.created
	g.mu.Unlock()

	meta := types.Metadata{"created_at": createdAt, "attempt": attempt}

	if signal.PromptOverride != nil {
		spec := types.VerifierSpec{Kind: types.VerifierExactString}
		if signal.VerifierOverride != nil {
			spec = *signal.VerifierOverride
		}
		return types.Task{
			TaskID:     taskID,
			Domain:     signal.Domain,
			Difficulty: clamp01(signal.Difficulty),
			Prompt:     *signal.PromptOverride,
			Verifier:   spec,
			Metadata:   meta,
		}, nil
	}

	rng := rand.New(rand.NewSource(seedFor(taskID, attempt)))
	difficulty := clamp01(signal.Difficulty)

	switch signal.Domain {
	case types.DomainMath:
		return genMath(taskID, difficulty, rng, meta)
	case types.DomainLogic:
		return genLogic(taskID, difficulty, rng, meta)
	case types.DomainCode:
		return genCode(taskID, difficulty, rng, meta)
	default:
		return types.Task{}, fmt.Errorf("unknown domain %q", signal.Domain)
	}
}

// validate applies the internal self-validation rules spec §4.7 requires
// before emission.
func (g *Generator) validate(t types.Task) error {
	if strings.TrimSpace(t.Prompt) == "" {
		return fmt.Errorf("empty prompt")
	}
	if len(t.Prompt) > maxPromptLen {
		return fmt.Errorf("prompt exceeds %d chars", maxPromptLen)
	}
	if controlChar.MatchString(t.Prompt) {
		return fmt.Errorf("prompt contains control characters")
	}
	if strings.ContainsRune(t.Prompt, 0) {
		return fmt.Errorf("prompt contains NUL")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[t.TaskID] {
		return fmt.Errorf("task_id %q already used in this run", t.TaskID)
	}
	return nil
}

func seedFor(taskID string, attempt int) int64 {
	var h int64 = 1469598103934665603
	for _, b := range []byte(taskID) {
		h ^= int64(b)
		h *= 1099511628211
	}
	return h + int64(attempt)*104729
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
