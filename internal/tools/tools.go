// Package tools implements the tool registry and DAG-based plan composer.
// Plan ordering is built on github.com/dominikbraun/graph, the same library
// the teacher uses for its Graph-of-Thoughts controller, repurposed here
// from reasoning vertices to tool-call steps.
package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dominikbraun/graph"

	"coevolve/internal/config"
	"coevolve/internal/coerr"
	"coevolve/internal/review"
	"coevolve/internal/types"
)

// Tool is the contract every built-in and future tool satisfies.
type Tool interface {
	Execute(ctx context.Context, input string, cfg *config.ToolingConfig) types.ToolCall
}

// Registry maps tool names to implementations.
type Registry struct {
	tools map[string]Tool
	cfg   *config.ToolingConfig
}

// NewRegistry builds the registry of built-in tools enabled by cfg.
func NewRegistry(cfg *config.ToolingConfig) *Registry {
	r := &Registry{tools: map[string]Tool{}, cfg: cfg}
	if cfg.EnableMath {
		r.tools["math"] = mathTool{}
	}
	if cfg.EnablePython {
		r.tools["python"] = pythonTool{}
	}
	if cfg.EnableShell {
		r.tools["shell"] = shellTool{}
	}
	if cfg.EnableTests {
		r.tools["test"] = testTool{}
	}
	return r
}

// Execute runs a single named tool by hand, without going through plan
// substitution. stepID is carried into the returned ToolCall for logging.
func (r *Registry) Execute(ctx context.Context, stepID, toolName, input string) types.ToolCall {
	tool, ok := r.tools[toolName]
	if !ok {
		return types.ToolCall{
			StepID: stepID,
			Tool:   toolName,
			Input:  input,
			Status: types.ToolStatusBlocked,
			Stderr: fmt.Sprintf("unknown or disabled tool %q", toolName),
		}
	}
	call := tool.Execute(ctx, input, r.cfg)
	call.StepID = stepID
	call.Tool = toolName
	call.Input = input
	return call
}

// stepRef matches {{step_j.result}} / {{step_j.stdout}} placeholders.
var stepRef = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\.(result|stdout)\s*\}\}`)

// substitute replaces every {{step_j.field}} reference with the
// corresponding completed step's value. ok is false if any referenced step
// is missing or did not complete ok.
func substitute(input string, completed map[string]types.ToolCall) (string, bool) {
	ok := true
	out := stepRef.ReplaceAllStringFunc(input, func(m string) string {
		parts := stepRef.FindStringSubmatch(m)
		stepID, field := parts[1], parts[2]
		prior, found := completed[stepID]
		if !found || prior.Status != types.ToolStatusOK {
			ok = false
			return m
		}
		if field == "stdout" {
			return prior.Stdout
		}
		return prior.Result
	})
	return out, ok
}

// ExecutePlan runs an ordered sequence of ToolCall templates as a DAG: it
// builds the dependency graph (rejecting cycles with PlanCyclic), executes
// steps in topological order, substitutes prior results, and applies the
// retry policy.
func (r *Registry) ExecutePlan(ctx context.Context, plan []types.ToolCall, maxRetries int) ([]types.ToolCall, error) {
	g := graph.New(func(c types.ToolCall) string { return c.StepID }, graph.Directed(), graph.PreventCycles())

	byID := make(map[string]types.ToolCall, len(plan))
	declaredOrder := make(map[string]int, len(plan))
	for i, step := range plan {
		byID[step.StepID] = step
		declaredOrder[step.StepID] = i
		if err := g.AddVertex(step); err != nil {
			return nil, coerr.New(coerr.KindPlanCyclic, map[string]interface{}{"step_id": step.StepID}, err)
		}
	}
	for _, step := range plan {
		for _, dep := range step.DependsOn {
			if err := g.AddEdge(dep, step.StepID); err != nil {
				return nil, coerr.New(coerr.KindPlanCyclic, map[string]interface{}{"step_id": step.StepID, "depends_on": dep}, err)
			}
		}
	}

	// StableTopologicalSort (rather than plain TopologicalSort) is required
	// here: graph.TopologicalSort does not guarantee any particular order
	// among mutually-independent vertices, and §4.1 forbids the composer
	// from silently reordering independent steps relative to their declared
	// order in the plan.
	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return declaredOrder[a] < declaredOrder[b]
	})
	if err != nil {
		return nil, coerr.New(coerr.KindPlanCyclic, nil, err)
	}

	completed := make(map[string]types.ToolCall, len(plan))
	results := make([]types.ToolCall, 0, len(plan))

	for _, stepID := range order {
		tmpl := byID[stepID]

		depsOK := true
		for _, dep := range tmpl.DependsOn {
			if prior, ok := completed[dep]; !ok || prior.Status != types.ToolStatusOK {
				depsOK = false
				break
			}
		}
		if !depsOK {
			blocked := tmpl
			blocked.Status = types.ToolStatusBlocked
			blocked.Stderr = "a required dependency did not complete ok"
			completed[stepID] = blocked
			results = append(results, blocked)
			continue
		}

		input, ok := substitute(tmpl.Input, completed)
		if !ok {
			blocked := tmpl
			blocked.Status = types.ToolStatusBlocked
			blocked.Stderr = "referenced step is missing or not ok"
			completed[stepID] = blocked
			results = append(results, blocked)
			continue
		}

		var call types.ToolCall
		attempts := 0
		for {
			call = r.Execute(ctx, stepID, tmpl.Tool, input)
			attempts++
			if call.Status != types.ToolStatusError || attempts > maxRetries {
				break
			}
		}
		completed[stepID] = call
		results = append(results, call)
	}

	return results, nil
}

// PlanOK reports whether every required (non-optional) step in a completed
// plan finished ok.
func PlanOK(results []types.ToolCall, optional map[string]bool) bool {
	for _, r := range results {
		if optional[r.StepID] {
			continue
		}
		if r.Status != types.ToolStatusOK {
			return false
		}
	}
	return true
}

func elapsedSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// reviewGate runs the static code reviewer and converts a rejection into a
// blocked ToolCall shell, or nil if the code is safe to run.
func reviewGate(code string) *types.ToolCall {
	v := review.Review(code)
	if v.Safe {
		return nil
	}
	return &types.ToolCall{
		Status: types.ToolStatusBlocked,
		Stderr: strings.Join(v.Issues, "; "),
	}
}
