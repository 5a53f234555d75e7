package taskgen

import (
	"math/rand"
	"strings"
	"testing"

	"coevolve/internal/types"
)

func TestGenDeductionUsesRegexVerifier(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	task := genDeduction("t1", 0.1, rng, types.Metadata{})
	if task.Verifier.Kind != types.VerifierRegexMatch {
		t.Fatalf("expected regex_match verifier, got %s", task.Verifier.Kind)
	}
	if task.Prompt == "" {
		t.Fatalf("expected non-empty prompt")
	}
}

func TestGenChainProducesThreeStepImplication(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	task := genChain("t2", 0.4, rng, types.Metadata{})
	if task.Verifier.Kind != types.VerifierRegexMatch {
		t.Fatalf("expected regex_match verifier, got %s", task.Verifier.Kind)
	}
	if n := strings.Count(task.Prompt, "If "); n != 2 {
		t.Fatalf("expected a chain of two implications (three propositions), got %d in %q", n, task.Prompt)
	}
}

func TestGenPuzzleThirdAssignmentIsDeducibleByElimination(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		task := genPuzzle("t3", 0.8, rng, types.Metadata{})
		if task.Verifier.Kind != types.VerifierExactString || task.Verifier.Expected == "" {
			t.Fatalf("seed %d: expected an exact_string verifier with a non-empty answer, got %+v", seed, task.Verifier)
		}
		// The answer must be one of the three people named, but not one of
		// the two whose profession the prompt states outright.
		if !strings.Contains(task.Prompt, task.Verifier.Expected) || strings.Contains(task.Prompt, task.Verifier.Expected+" is ") {
			t.Fatalf("seed %d: expected answer %q to be deducible only by elimination in %q", seed, task.Verifier.Expected, task.Prompt)
		}
	}
}

func TestGenLogicDispatchesByDifficultyTier(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	easy, err := genLogic("t4", 0.1, rng, types.Metadata{})
	if err != nil || easy.Verifier.Kind != types.VerifierRegexMatch {
		t.Fatalf("expected easy tier to use regex_match, got %+v (err=%v)", easy.Verifier, err)
	}
	hard, err := genLogic("t5", 0.9, rng, types.Metadata{})
	if err != nil || hard.Verifier.Kind != types.VerifierExactString {
		t.Fatalf("expected hard tier to use exact_string, got %+v (err=%v)", hard.Verifier, err)
	}
}
