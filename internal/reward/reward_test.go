package reward

import (
	"testing"

	"coevolve/internal/types"
)

func testWeights() Weights {
	return Weights{
		Uncertainty:          0.2,
		ToolUse:              0.2,
		Novelty:              0.3,
		Correctness:          0.3,
		TargetSuccess:        0.5,
		RepetitionSimilarity: 0.9,
	}
}

func TestComputeSuccessfulTrajectory(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: true}
	rb := e.Compute(traj, 0.5, "math:1", 0.0)
	if rb.Correctness != 1.0 {
		t.Fatalf("expected correctness 1.0 for success, got %f", rb.Correctness)
	}
	if rb.Uncertainty != 1.0 {
		t.Fatalf("expected uncertainty reward 1.0 when successProb matches target exactly, got %f", rb.Uncertainty)
	}
}

func TestComputeFailedTrajectory(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: false}
	rb := e.Compute(traj, 0.5, "math:1", 0.0)
	if rb.Correctness != -0.5 {
		t.Fatalf("expected correctness -0.5 for failure, got %f", rb.Correctness)
	}
}

func TestComputeToolUseRewardScalesWithOKCalls(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{
		Success: true,
		ToolCalls: []types.ToolCall{
			{Status: types.ToolStatusOK},
			{Status: types.ToolStatusOK},
			{Status: types.ToolStatusError},
		},
	}
	rb := e.Compute(traj, 0.5, "math:1", 0.0)
	if rb.ToolUse != 0.5 {
		t.Fatalf("expected tool_use 0.5 for 2 ok calls, got %f", rb.ToolUse)
	}
}

func TestComputeNoToolCallsPenalized(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: true}
	rb := e.Compute(traj, 0.5, "novel-sig", 0.0)
	if rb.ToolUse != -0.2 {
		t.Fatalf("expected tool_use -0.2 for no tool calls, got %f", rb.ToolUse)
	}
}

func TestComputeNoveltyPenalizesRepeatedSignature(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: true}

	first := e.Compute(traj, 0.5, "repeat-me", 0.0)
	if first.Novelty != 1.0 {
		t.Fatalf("expected first occurrence novelty 1.0, got %f", first.Novelty)
	}

	second := e.Compute(traj, 0.5, "repeat-me", 0.0)
	if second.Novelty != 0.5 {
		t.Fatalf("expected repeated-signature novelty 0.5, got %f", second.Novelty)
	}
}

func TestComputeNoveltyPenalizesHighSimilarity(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: true}
	rb := e.Compute(traj, 0.5, "unique-sig", 0.95)
	if rb.Novelty != 0.5 {
		t.Fatalf("expected novelty penalty for high max_similarity, got %f", rb.Novelty)
	}
}

func TestComputeTotalIsWeightedSum(t *testing.T) {
	e := New(testWeights())
	traj := types.Trajectory{Success: true, ToolCalls: []types.ToolCall{{Status: types.ToolStatusOK}}}
	rb := e.Compute(traj, 0.5, "sig", 0.0)
	expected := testWeights().Uncertainty*rb.Uncertainty +
		testWeights().ToolUse*rb.ToolUse +
		testWeights().Novelty*rb.Novelty +
		testWeights().Correctness*rb.Correctness
	if rb.Total != expected {
		t.Fatalf("expected total %f, got %f", expected, rb.Total)
	}
}
