package taskgen

import (
	"fmt"
	"math/rand"
	"testing"

	"coevolve/internal/types"
)

func TestGenLinearVerifierIsNumericAndSatisfiedBySolution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	task, err := genLinear("t1", 0.1, rng, types.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Verifier.Kind != types.VerifierNumeric {
		t.Fatalf("expected numeric verifier, got %s", task.Verifier.Kind)
	}
	var a, b, c int
	if _, err := fmt.Sscanf(task.Prompt, "Solve for x: %dx + %d = %d", &a, &b, &c); err != nil {
		t.Fatalf("could not read coefficients from prompt %q: %v", task.Prompt, err)
	}
	if x := task.Verifier.ExpectedNumeric; float64(a)*x+float64(b) != float64(c) {
		t.Fatalf("expected x=%v to satisfy %q", x, task.Prompt)
	}
}

func TestTryQuadraticProducesTwoRoots(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	task, ok := tryQuadratic("t2", 0.5, rng, types.Metadata{})
	if !ok {
		t.Fatalf("expected a quadratic draw to succeed")
	}
	if task.Verifier.Kind != types.VerifierNumericSet || len(task.Verifier.ExpectedSet) != 2 {
		t.Fatalf("expected a 2-element numeric_set verifier, got %+v", task.Verifier)
	}
}

func TestTrySystemRejectsSingularMatrix(t *testing.T) {
	// trySystem draws a1, b1, a2, b2 first; replaying those four draws from
	// the same seed shows which seeds give det = a1*b2 - a2*b1 = 0 (e.g.
	// a1=1,b1=1,a2=1,b2=1), and those draws must be rejected.
	sawSingular := false
	for seed := int64(0); seed < 500; seed++ {
		probe := rand.New(rand.NewSource(seed))
		a1, b1, a2, b2 := probe.Intn(9)+1, probe.Intn(9)+1, probe.Intn(9)+1, probe.Intn(9)+1
		singular := a1*b2-a2*b1 == 0
		task, ok := trySystem("t3", 0.8, rand.New(rand.NewSource(seed)), types.Metadata{})
		if singular {
			sawSingular = true
			if ok {
				t.Fatalf("seed %d: expected singular draw %d,%d,%d,%d to be rejected", seed, a1, b1, a2, b2)
			}
			continue
		}
		if !ok || task.Verifier.ExpectedSet == nil || len(task.Verifier.ExpectedSet) != 2 {
			t.Fatalf("seed %d: a successful system draw must produce a 2-value verifier", seed)
		}
	}
	if !sawSingular {
		t.Fatalf("expected at least one seed to draw a singular matrix")
	}
}

func TestGenMathDispatchesByDifficultyTier(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	easy, err := genMath("t4", 0.1, rng, types.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if easy.Verifier.Kind != types.VerifierNumeric {
		t.Fatalf("expected easy tier to use numeric verifier, got %s", easy.Verifier.Kind)
	}

	hard, err := genMath("t5", 0.9, rng, types.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Falls back to the linear (numeric) tier if every degenerate-retry
	// draw at the system tier produces a singular matrix.
	if hard.Verifier.Kind != types.VerifierNumericSet && hard.Verifier.Kind != types.VerifierNumeric {
		t.Fatalf("expected hard tier to use numeric_set or fallback numeric verifier, got %s", hard.Verifier.Kind)
	}
}
