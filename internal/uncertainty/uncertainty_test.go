package uncertainty

import (
	"context"
	"math"
	"testing"

	"coevolve/internal/inference"
)

func TestEstimatePrefersLogprobsWhenSupported(t *testing.T) {
	e := inference.NewScripted(nil, "ok")
	e.SupportsLogprob = true
	est := New(e, 0)
	p := est.Estimate(context.Background(), "prompt", "answer")
	if p <= 0 || p > 1 {
		t.Fatalf("expected p_success in (0,1], got %f", p)
	}
}

func TestEstimateFallsBackToSelfCritique(t *testing.T) {
	e := inference.NewScripted(nil, "0.8")
	est := New(e, 3)
	p := est.Estimate(context.Background(), "prompt", "answer")
	if math.Abs(p-0.8) > 1e-9 {
		t.Fatalf("expected self-critique mean 0.8, got %v", p)
	}
}

func TestEstimateFallsBackToDefaultWhenNothingParses(t *testing.T) {
	e := inference.NewScripted(nil, "no numeric score here")
	est := New(e, 2)
	p := est.Estimate(context.Background(), "prompt", "answer")
	if p != fallback {
		t.Fatalf("expected default fallback %f, got %f", fallback, p)
	}
}

func TestNewDefaultsSamples(t *testing.T) {
	e := inference.NewScripted(nil, "ok")
	est := New(e, 0)
	if est.samples != DefaultSamples {
		t.Fatalf("expected DefaultSamples, got %d", est.samples)
	}
}

func TestRecordFeedsCalibrationReport(t *testing.T) {
	e := inference.NewScripted(nil, "ok")
	est := New(e, 0)

	est.Record(0.9, true)
	est.Record(0.2, false)
	est.Record(0.85, true)

	report := est.Report()
	if report.TotalSamples != 3 {
		t.Fatalf("expected 3 recorded samples, got %d", report.TotalSamples)
	}
}
