package taskgen

import (
	"fmt"
	"math/rand"

	"coevolve/internal/types"
)

var logicSubjects = []string{"Alice", "Bob", "Carol", "Dave", "Eve"}
var logicCategories = []string{"a musician", "a painter", "a chef", "an engineer", "a pilot"}

// genLogic dispatches to the easy deduction, medium chain, or hard puzzle
// tier by difficulty.
func genLogic(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, error) {
	switch {
	case difficulty < 0.3:
		return genDeduction(taskID, difficulty, rng, meta), nil
	case difficulty < 0.6:
		return genChain(taskID, difficulty, rng, meta), nil
	default:
		return genPuzzle(taskID, difficulty, rng, meta), nil
	}
}

// genDeduction is a single-step syllogism: All A are B; X is A; is X B?
// The answer is always affirmative by construction, verified with a
// regex_match that accepts "yes" in any letter case, with an optional
// trailing period and surrounding whitespace.
func genDeduction(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) types.Task {
	subject := logicSubjects[rng.Intn(len(logicSubjects))]
	category := logicCategories[rng.Intn(len(logicCategories))]
	prompt := fmt.Sprintf(
		"Every person at the workshop is %s. %s is at the workshop. Is %s %s? Answer yes or no.",
		category, subject, subject, category,
	)
	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainLogic,
		Difficulty: difficulty,
		Prompt:     prompt,
		Verifier:   types.VerifierSpec{Kind: types.VerifierRegexMatch, Pattern: `(?i)\s*yes\.?\s*`},
		Metadata:   meta,
	}
}

// genChain is a multi-step implication chain: A -> B -> C, A holds, is C?
func genChain(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) types.Task {
	names := []string{"the alarm is armed", "the light turns on", "the door unlocks", "the system logs the event"}
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	a, b, c := names[0], names[1], names[2]
	prompt := fmt.Sprintf(
		"If %s, then %s. If %s, then %s. Suppose %s is true. Is it true that %s? Answer yes or no.",
		a, b, b, c, a, c,
	)
	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainLogic,
		Difficulty: difficulty,
		Prompt:     prompt,
		Verifier:   types.VerifierSpec{Kind: types.VerifierRegexMatch, Pattern: `(?i)\s*yes\.?\s*`},
		Metadata:   meta,
	}
}

// genPuzzle is a small three-person, one-attribute constraint puzzle
// answered with a single name, verified with exact_string against that
// name as the prompt writes it (capitalized; exact_string trims
// whitespace but compares case-sensitively).
func genPuzzle(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) types.Task {
	people := append([]string(nil), logicSubjects[:3]...)
	rng.Shuffle(len(people), func(i, j int) { people[i], people[j] = people[j], people[i] })
	roles := append([]string(nil), logicCategories[:3]...)
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	// Ground truth: people[i] holds roles[i]. Reveal the first two
	// assignments directly and ask for the third, deducible by elimination.
	prompt := fmt.Sprintf(
		"Three people — %s, %s, and %s — each have exactly one profession among: %s, %s, %s. "+
			"%s is %s. %s is %s. Who is %s?",
		people[0], people[1], people[2],
		roles[0], roles[1], roles[2],
		people[0], roles[0],
		people[1], roles[1],
		roles[2],
	)
	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainLogic,
		Difficulty: difficulty,
		Prompt:     prompt,
		Verifier:   types.VerifierSpec{Kind: types.VerifierExactString, Expected: people[2]},
		Metadata:   meta,
	}
}
