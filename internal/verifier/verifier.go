// Package verifier dispatches on a task's VerifierSpec variant to judge a
// candidate answer, the same tagged-variant switch-dispatch idiom the
// teacher uses for reinforcement strategy modes and symbolic constraints.
package verifier

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"coevolve/internal/tools"
	"coevolve/internal/types"
)

// Status is the verdict status.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// Verdict is the outcome of verifying a candidate answer.
type Verdict struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Verifier evaluates a task's VerifierSpec against a candidate answer. It
// never mutates its inputs.
type Verifier struct {
	registry *tools.Registry
}

// New constructs a Verifier. registry is used to execute python_predicate
// and python_assert bodies through the same review-gated path the python
// tool uses.
func New(registry *tools.Registry) *Verifier {
	return &Verifier{registry: registry}
}

// Verify dispatches on spec.Kind and returns a verdict.
func (v *Verifier) Verify(ctx context.Context, spec types.VerifierSpec, candidate string) Verdict {
	switch spec.Kind {
	case types.VerifierExactString:
		return verifyExactString(spec, candidate)
	case types.VerifierNumeric:
		return verifyNumeric(spec, candidate)
	case types.VerifierNumericSet:
		return verifyNumericSet(spec, candidate)
	case types.VerifierPythonPredicate:
		return v.verifyPythonPredicate(ctx, spec, candidate)
	case types.VerifierPythonAssert:
		return v.verifyPythonAssert(ctx, spec, candidate)
	case types.VerifierRegexMatch:
		return verifyRegexMatch(spec, candidate)
	default:
		return Verdict{Status: StatusError, Reason: "unknown verifier kind: " + string(spec.Kind)}
	}
}

func verifyExactString(spec types.VerifierSpec, candidate string) Verdict {
	if strings.TrimSpace(candidate) == strings.TrimSpace(spec.Expected) {
		return Verdict{Status: StatusPass}
	}
	return Verdict{Status: StatusFail, Reason: "candidate does not match expected string"}
}

func withinTolerance(candidate, expected, tolerance float64) bool {
	allowed := math.Max(tolerance*math.Abs(expected), tolerance)
	return math.Abs(candidate-expected) <= allowed
}

func verifyNumeric(spec types.VerifierSpec, candidate string) Verdict {
	val, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
	if err != nil {
		return Verdict{Status: StatusError, Reason: "candidate is not numeric"}
	}
	if withinTolerance(val, spec.ExpectedNumeric, spec.Tolerance) {
		return Verdict{Status: StatusPass}
	}
	return Verdict{Status: StatusFail, Reason: "candidate outside tolerance"}
}

func verifyNumericSet(spec types.VerifierSpec, candidate string) Verdict {
	parts := strings.Split(candidate, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Verdict{Status: StatusError, Reason: "candidate set contains a non-numeric value"}
		}
		vals = append(vals, f)
	}
	if len(vals) != len(spec.ExpectedSet) {
		return Verdict{Status: StatusFail, Reason: "candidate set size does not match expected"}
	}

	remaining := append([]float64(nil), spec.ExpectedSet...)
	sort.Float64s(remaining)
	sort.Float64s(vals)

	used := make([]bool, len(remaining))
	for _, v := range vals {
		matched := false
		for i, e := range remaining {
			if used[i] {
				continue
			}
			if withinTolerance(v, e, spec.Tolerance) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return Verdict{Status: StatusFail, Reason: "candidate set does not match expected as a multiset"}
		}
	}
	return Verdict{Status: StatusPass}
}

func verifyRegexMatch(spec types.VerifierSpec, candidate string) Verdict {
	pattern := spec.Pattern
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern = pattern + "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Verdict{Status: StatusError, Reason: "invalid regex pattern: " + err.Error()}
	}
	if re.MatchString(candidate) {
		return Verdict{Status: StatusPass}
	}
	return Verdict{Status: StatusFail, Reason: "candidate does not match pattern"}
}

var candidatePlaceholder = regexp.MustCompile(`\{\{\s*candidate\s*\}\}`)

func (v *Verifier) verifyPythonPredicate(ctx context.Context, spec types.VerifierSpec, candidate string) Verdict {
	escaped := strings.ReplaceAll(candidate, `"`, `\"`)
	body := candidatePlaceholder.ReplaceAllString(spec.Body, escaped)
	program := fmt.Sprintf("print(bool(%s))", body)

	call := v.registry.Execute(ctx, "verify_predicate", "python", program)
	if call.Status == types.ToolStatusBlocked {
		return Verdict{Status: StatusError, Reason: "verifier_blocked"}
	}
	if call.Status != types.ToolStatusOK {
		return Verdict{Status: StatusError, Reason: "predicate execution failed: " + call.Stderr}
	}
	if strings.TrimSpace(call.Result) == "True" {
		return Verdict{Status: StatusPass}
	}
	return Verdict{Status: StatusFail, Reason: "predicate evaluated to false"}
}

func (v *Verifier) verifyPythonAssert(ctx context.Context, spec types.VerifierSpec, candidate string) Verdict {
	escaped := strings.ReplaceAll(candidate, `"`, `\"`)
	body := candidatePlaceholder.ReplaceAllString(spec.Body, escaped)
	program := body + "\nprint(\"__assert_ok__\")"

	call := v.registry.Execute(ctx, "verify_assert", "python", program)
	if call.Status == types.ToolStatusBlocked {
		return Verdict{Status: StatusError, Reason: "verifier_blocked"}
	}
	if call.Status != types.ToolStatusOK {
		return Verdict{Status: StatusFail, Reason: "assertion raised: " + call.Stderr}
	}
	if strings.TrimSpace(call.Result) == "__assert_ok__" {
		return Verdict{Status: StatusPass}
	}
	return Verdict{Status: StatusFail, Reason: "assertion block did not complete"}
}
