package taskgen

import (
	"testing"

	"coevolve/internal/types"
)

func TestGenerateProducesValidTaskPerDomain(t *testing.T) {
	g := New()
	for _, domain := range []types.Domain{types.DomainMath, types.DomainLogic, types.DomainCode} {
		task, err := g.Generate(types.Signal{Domain: domain, Difficulty: 0.4, NextTaskID: "t-" + string(domain)})
		if err != nil {
			t.Fatalf("domain %s: unexpected error: %v", domain, err)
		}
		if task.Prompt == "" {
			t.Fatalf("domain %s: expected non-empty prompt", domain)
		}
		if task.Domain != domain {
			t.Fatalf("domain %s: task domain mismatch: %s", domain, task.Domain)
		}
		if task.Verifier.Kind == "" {
			t.Fatalf("domain %s: expected a verifier to be attached", domain)
		}
	}
}

func TestGenerateIsDeterministicForSameTaskID(t *testing.T) {
	g1 := New()
	g2 := New()
	t1, err := g1.Generate(types.Signal{Domain: types.DomainMath, Difficulty: 0.1, NextTaskID: "fixed-id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := g2.Generate(types.Signal{Domain: types.DomainMath, Difficulty: 0.1, NextTaskID: "fixed-id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if t1.Prompt != t2.Prompt {
		t.Fatalf("expected deterministic generation for same task_id, got %q vs %q", t1.Prompt, t2.Prompt)
	}
}

func TestGenerateRejectsDuplicateTaskID(t *testing.T) {
	g := New()
	signal := types.Signal{Domain: types.DomainMath, Difficulty: 0.2, NextTaskID: "dup-id"}
	if _, err := g.Generate(signal); err != nil {
		t.Fatalf("unexpected error on first generation: %v", err)
	}
	if _, err := g.Generate(signal); err == nil {
		t.Fatalf("expected GeneratorExhausted on duplicate task_id")
	}
}

func TestGenerateUnknownDomainExhausts(t *testing.T) {
	g := New()
	if _, err := g.Generate(types.Signal{Domain: types.Domain("unknown"), Difficulty: 0.5, NextTaskID: "x"}); err == nil {
		t.Fatalf("expected GeneratorExhausted for unknown domain")
	}
}

func TestGeneratePromptOverrideUsesProvidedVerifier(t *testing.T) {
	g := New()
	prompt := "custom prompt text"
	spec := types.VerifierSpec{Kind: types.VerifierExactString, Expected: "42"}
	task, err := g.Generate(types.Signal{
		Domain:           types.DomainMath,
		Difficulty:       0.5,
		NextTaskID:       "override-id",
		PromptOverride:   &prompt,
		VerifierOverride: &spec,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Prompt != prompt {
		t.Fatalf("expected override prompt, got %q", task.Prompt)
	}
	if task.Verifier.Kind != types.VerifierExactString || task.Verifier.Expected != "42" {
		t.Fatalf("expected override verifier to be used, got %+v", task.Verifier)
	}
}

func TestValidateRejectsEmptyPrompt(t *testing.T) {
	g := New()
	err := g.validate(types.Task{TaskID: "x", Prompt: "   "})
	if err == nil {
		t.Fatalf("expected validation error for blank prompt")
	}
}

func TestValidateRejectsOversizedPrompt(t *testing.T) {
	g := New()
	long := make([]byte, maxPromptLen+1)
	for i := range long {
		long[i] = 'a'
	}
	err := g.validate(types.Task{TaskID: "x", Prompt: string(long)})
	if err == nil {
		t.Fatalf("expected validation error for oversized prompt")
	}
}
