// Package parser turns free-text model output into an ordered sequence of
// tool call templates plus an extracted final answer, recognizing the
// Thought:/Tool:/ToolInput:/Answer: line prefixes.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"coevolve/internal/types"
)

// ParseError records a non-fatal defect encountered while parsing a trace:
// other valid tool calls are still returned alongside it.
type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

var (
	thoughtPrefix   = regexp.MustCompile(`(?i)^\s*thought\s*:\s*`)
	toolPrefix      = regexp.MustCompile(`(?i)^\s*tool\s*:\s*`)
	toolInputPrefix = regexp.MustCompile(`(?i)^\s*toolinput\s*:\s*`)
	answerPrefix    = regexp.MustCompile(`(?i)^\s*answer\s*:\s*`)
)

// Result is the parsed trace.
type Result struct {
	ToolCalls []types.ToolCall
	Answer    string
	Errors    []ParseError
}

// Parse scans trace line by line and extracts tool call templates and the
// final answer.
func Parse(trace string) Result {
	lines := strings.Split(trace, "\n")

	var res Result
	var pendingTool string
	haveTool := false
	var answerLines []string
	inAnswer := false
	stepCounter := 0

	flushPending := func(lineNo int) {
		if haveTool {
			res.Errors = append(res.Errors, ParseError{Line: lineNo, Reason: "Tool: without a matching ToolInput:"})
			haveTool = false
			pendingTool = ""
		}
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := raw

		switch {
		case answerPrefix.MatchString(line):
			flushPending(lineNo)
			inAnswer = true
			// A later Answer: marker starts a fresh answer rather than
			// extending the first one: §4.2 defines the final answer as the
			// concatenation of lines after the *last* Answer: marker.
			answerLines = answerLines[:0]
			answerLines = append(answerLines, answerPrefix.ReplaceAllString(line, ""))
		case inAnswer:
			answerLines = append(answerLines, line)
		case thoughtPrefix.MatchString(line):
			flushPending(lineNo)
		case toolPrefix.MatchString(line):
			flushPending(lineNo)
			pendingTool = strings.TrimSpace(toolPrefix.ReplaceAllString(line, ""))
			haveTool = true
		case toolInputPrefix.MatchString(line):
			input := strings.TrimSpace(toolInputPrefix.ReplaceAllString(line, ""))
			if !haveTool {
				res.Errors = append(res.Errors, ParseError{Line: lineNo, Reason: "ToolInput: without a preceding Tool:"})
				continue
			}
			stepCounter++
			res.ToolCalls = append(res.ToolCalls, types.ToolCall{
				StepID: "step_" + strconv.Itoa(stepCounter),
				Tool:   pendingTool,
				Input:  input,
			})
			haveTool = false
			pendingTool = ""
		}
	}
	flushPending(len(lines))

	res.Answer = strings.TrimSpace(strings.Join(answerLines, "\n"))
	return res
}
