package taskgen

import (
	"fmt"
	"math/rand"
	"strings"

	"coevolve/internal/types"
)

type codeSpec struct {
	prompt  string
	vectors string // python literal list of (input..., expected) tuples
	argc    int
}

var easyCodeSpecs = []codeSpec{
	{
		prompt:  "Write a Python lambda `f(n)` that returns the sum of the integers from 1 to n inclusive. Answer with the lambda expression only, e.g. `lambda n: n`.",
		vectors: "[(1, 1), (5, 15), (10, 55)]",
		argc:    1,
	},
	{
		prompt:  "Write a Python lambda `f(n)` that returns True if n is even and False otherwise. Answer with the lambda expression only, e.g. `lambda n: n`.",
		vectors: "[(2, True), (3, False), (0, True)]",
		argc:    1,
	},
}

var mediumCodeSpecs = []codeSpec{
	{
		prompt:  "Write a Python lambda `f(xs)` that returns a new list with the elements of xs in reverse order. Answer with the lambda expression only, e.g. `lambda xs: xs`.",
		vectors: "[([1, 2, 3], [3, 2, 1]), ([], []), ([5], [5])]",
		argc:    1,
	},
	{
		prompt:  "Write a Python lambda `f(xs)` that returns the maximum value in the non-empty list xs. Answer with the lambda expression only, e.g. `lambda xs: xs[0]`.",
		vectors: "[([1, 5, 3], 5), ([-2, -1, -9], -1), ([7], 7)]",
		argc:    1,
	},
}

var hardCodeSpecs = []codeSpec{
	{
		prompt:  "Write a Python lambda `f(xs, target)` that returns the index of target in the sorted list xs using binary search, or -1 if absent. Answer with the lambda expression only, e.g. `lambda xs, target: -1`.",
		vectors: "[(([1, 3, 5, 7, 9], 7), 3), (([1, 3, 5, 7, 9], 4), -1), (([], 1), -1)]",
		argc:    2,
	},
	{
		prompt:  "Write a Python lambda `f(n)` that returns True if n is a prime number and False otherwise. Answer with the lambda expression only, e.g. `lambda n: n`.",
		vectors: "[(2, True), (1, False), (17, True), (18, False)]",
		argc:    1,
	},
}

// genCode dispatches to the easy/medium/hard function-spec tier by
// difficulty and attaches a python_predicate verifier built from the
// spec's fixed test vectors.
func genCode(taskID string, difficulty float64, rng *rand.Rand, meta types.Metadata) (types.Task, error) {
	var tier []codeSpec
	switch {
	case difficulty < 0.3:
		tier = easyCodeSpecs
	case difficulty < 0.6:
		tier = mediumCodeSpecs
	default:
		tier = hardCodeSpecs
	}

	spec := tier[rng.Intn(len(tier))]
	body := buildPredicateBody(spec)

	return types.Task{
		TaskID:     taskID,
		Domain:     types.DomainCode,
		Difficulty: difficulty,
		Prompt:     spec.prompt,
		Verifier:   types.VerifierSpec{Kind: types.VerifierPythonPredicate, Body: body},
		Metadata:   meta,
	}, nil
}

// buildPredicateBody produces a single Python boolean expression that calls
// the candidate lambda against every fixed test vector. {{candidate}} is
// substituted as raw source text (verifier.verifyPythonPredicate's
// convention, shared with numeric predicates), so the candidate answer must
// itself be one Python expression — a lambda — rather than a function
// definition, which a single-expression predicate body could not embed.
func buildPredicateBody(spec codeSpec) string {
	var call string
	if spec.argc == 2 {
		call = "({{candidate}})(*args) == expected"
	} else {
		call = "({{candidate}})(args) == expected"
	}
	return fmt.Sprintf("all(%s for args, expected in %s)", call, strings.TrimSpace(spec.vectors))
}
