package taskgen

import (
	"fmt"
	"math/rand"

	"coevolve/internal/types"
)

const maxDegenerateRetries = 10

// genMath dispatches to the linear, quadratic, or 2x2-system tier by
// difficulty, retrying degenerate draws (spec §4.7) up to
// maxDegenerateRetries before falling back to the easiest tier.
func genMath(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, error) {
	switch {
	case difficulty < 0.3:
		return genLinear(taskID, difficulty, rng, meta)
	case difficulty < 0.6:
		for i := 0; i < maxDegenerateRetries; i++ {
			if t, ok := tryQuadratic(taskID, difficulty, rng, meta); ok {
				return t, nil
			}
		}
		return genLinear(taskID, difficulty, rng, meta)
	default:
		for i := 0; i < maxDegenerateRetries; i++ {
			if t, ok := trySystem(taskID, difficulty, rng, meta); ok {
				return t, nil
			}
		}
		return genLinear(taskID, difficulty, rng, meta)
	}
}

func genLinear(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, error) {
	for i := 0; i < maxDegenerateRetries; i++ {
		a := 1 + rng.Intn(9) // [1,9]
		b := rng.Intn(41) - 20 // [-20,20]
		x := rng.Intn(21) - 10 // [-10,10]
		if a == 0 {
			continue
		}
		c := a*x + b
		prompt := fmt.Sprintf("Solve for x: %dx + %d = %d", a, b, c)
		return types.Task{
			TaskID:     taskID,
			Domain:     types.DomainMath,
			Difficulty: difficulty,
			Prompt:     prompt,
			Verifier: types.VerifierSpec{
				Kind:            types.VerifierNumeric,
				ExpectedNumeric: float64(x),
				Tolerance:       1e-6,
			},
			Metadata: meta,
		}, nil
	}
	return types.Task{}, fmt.Errorf("could not draw a non-degenerate linear equation")
}

func tryQuadratic(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, bool) {
	r1 := rng.Intn(11) - 5 // [-5,5]
	r2 := rng.Intn(11) - 5

	b := -(r1 + r2)
	c := r1 * r2
	prompt := fmt.Sprintf("Find all real roots x of: x^2 + (%d)x + (%d) = 0", b, c)
	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainMath,
		Difficulty: difficulty,
		Prompt:     prompt,
		Verifier: types.VerifierSpec{
			Kind:        types.VerifierNumericSet,
			ExpectedSet: []float64{float64(r1), float64(r2)},
			Tolerance:   1e-6,
		},
		Metadata: meta,
	}, true
}

func trySystem(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, bool) {
	a1 := rng.Intn(9) + 1
	b1 := rng.Intn(9) + 1
	a2 := rng.Intn(9) + 1
	b2 := rng.Intn(9) + 1

	det := a1*b2 - a2*b1
	if det == 0 {
		return types.Task{}, false
	}

	x := rng.Intn(11) - 5
	y := rng.Intn(11) - 5
	c1 := a1*x + b1*y
	c2 := a2*x + b2*y

	prompt := fmt.Sprintf(
		"Solve the system for x and y (report x,y): %dx + %dy = %d; %dx + %dy = %d",
		a1, b1, c1, a2, b2, c2,
	)
	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainMath,
		Difficulty: difficulty,
		Prompt:     prompt,
		Verifier: types.VerifierSpec{
			Kind:        types.VerifierNumericSet,
			ExpectedSet: []float64{float64(x), float64(y)},
			Tolerance:   1e-6,
		},
		Metadata: meta,
	}, true
}
