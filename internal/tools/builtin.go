package tools

import (
	"bytes"
	"context"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coevolve/internal/config"
	"coevolve/internal/types"
)

// pythonTool shells out to a python3 interpreter, generalized from the
// teacher's RunShell (bash -c, wall-clock timeout, stdout/stderr capture)
// to a fixed `python3 -c` invocation with a configurable timeout, gated by
// the review package.
type pythonTool struct{}

func (pythonTool) Execute(ctx context.Context, input string, cfg *config.ToolingConfig) types.ToolCall {
	if v := reviewGate(input); v != nil {
		return *v
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "python3", "-c", input)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	elapsed := elapsedSince(start)

	if ctx.Err() != nil {
		return types.ToolCall{Status: types.ToolStatusTimeout, Stderr: "python execution timed out", ElapsedMs: elapsed}
	}
	if err != nil {
		return types.ToolCall{Status: types.ToolStatusError, Stdout: out.String(), Stderr: errOut.String(), ElapsedMs: elapsed}
	}

	result := lastNonEmptyLine(out.String())
	return types.ToolCall{Status: types.ToolStatusOK, Result: result, Stdout: out.String(), Stderr: errOut.String(), ElapsedMs: elapsed}
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return strings.TrimSpace(lines[i])
		}
	}
	return ""
}

// mathTool solves a linear equation in x of the form a*x + b = c, or
// normalizes a single numeric literal; any other input, including an
// expression to simplify, gets an error status. It has no side effects and
// is never blocked by the review gate.
type mathTool struct{}

var linearEq = regexp.MustCompile(`^\s*([\-+]?\d*\.?\d*)\s*\*?\s*x\s*([\-+]\s*\d+\.?\d*)?\s*=\s*([\-+]?\d+\.?\d*)\s*$`)

func (mathTool) Execute(_ context.Context, input string, _ *config.ToolingConfig) types.ToolCall {
	start := time.Now()
	input = strings.TrimSpace(input)

	if m := linearEq.FindStringSubmatch(input); m != nil {
		a := parseCoefficient(m[1])
		b := parseOffset(m[2])
		c := parseCoefficient(m[3])
		if a == 0 {
			return types.ToolCall{Status: types.ToolStatusError, Stderr: "coefficient of x is zero", ElapsedMs: elapsedSince(start)}
		}
		x := (c - b) / a
		return types.ToolCall{Status: types.ToolStatusOK, Result: formatNumber(x), ElapsedMs: elapsedSince(start)}
	}

	if v, err := strconv.ParseFloat(input, 64); err == nil {
		return types.ToolCall{Status: types.ToolStatusOK, Result: formatNumber(v), ElapsedMs: elapsedSince(start)}
	}

	return types.ToolCall{Status: types.ToolStatusError, Stderr: "unable to simplify expression", ElapsedMs: elapsedSince(start)}
}

func parseCoefficient(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "+" {
		return 1
	}
	if s == "-" {
		return -1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return v
}

func parseOffset(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// shellTool runs an allowlisted command head with no shell metacharacters.
// Disabled by default.
type shellTool struct{}

var shellMetacharacters = regexp.MustCompile("[;&|`<>]|\\$\\(")

func (shellTool) Execute(ctx context.Context, input string, cfg *config.ToolingConfig) types.ToolCall {
	start := time.Now()

	if shellMetacharacters.MatchString(input) {
		return types.ToolCall{Status: types.ToolStatusBlocked, Stderr: "command contains disallowed shell metacharacters", ElapsedMs: elapsedSince(start)}
	}

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return types.ToolCall{Status: types.ToolStatusError, Stderr: "empty command", ElapsedMs: elapsedSince(start)}
	}

	allowed := false
	for _, a := range cfg.AllowedShell {
		if fields[0] == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return types.ToolCall{Status: types.ToolStatusBlocked, Stderr: "command head not in allowlist: " + fields[0], ElapsedMs: elapsedSince(start)}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	elapsed := elapsedSince(start)
	if ctx.Err() != nil {
		return types.ToolCall{Status: types.ToolStatusTimeout, Stderr: "shell command timed out", ElapsedMs: elapsed}
	}
	if err != nil {
		return types.ToolCall{Status: types.ToolStatusError, Stdout: out.String(), Stderr: errOut.String(), ElapsedMs: elapsed}
	}
	return types.ToolCall{Status: types.ToolStatusOK, Result: lastNonEmptyLine(out.String()), Stdout: out.String(), Stderr: errOut.String(), ElapsedMs: elapsed}
}

// testTool evaluates a candidate against a predicate body, the same
// review-gated python execution path used by python_predicate verifiers.
// Disabled by default.
type testTool struct{}

func (testTool) Execute(ctx context.Context, input string, cfg *config.ToolingConfig) types.ToolCall {
	return pythonTool{}.Execute(ctx, input, cfg)
}
