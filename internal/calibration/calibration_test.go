package calibration

import "testing"

func TestReportEmptyTracker(t *testing.T) {
	tr := New()
	r := tr.Report()
	if r.TotalSamples != 0 {
		t.Fatalf("expected 0 samples, got %d", r.TotalSamples)
	}
	if r.Bias != BiasNone {
		t.Fatalf("expected no bias on empty tracker, got %s", r.Bias)
	}
}

func TestReportBucketsAccuracy(t *testing.T) {
	tr := New()
	tr.Record(0.92, true)
	tr.Record(0.93, true)
	tr.Record(0.12, false)

	r := tr.Report()
	if r.TotalSamples != 3 {
		t.Fatalf("expected 3 samples, got %d", r.TotalSamples)
	}

	var totalCount, totalCorrect int
	for _, b := range r.Buckets {
		totalCount += b.Count
		totalCorrect += b.CorrectCount
		if b.Count > 0 && b.Accuracy != float64(b.CorrectCount)/float64(b.Count) {
			t.Fatalf("bucket accuracy inconsistent with counts: %+v", b)
		}
	}
	if totalCount != 3 || totalCorrect != 2 {
		t.Fatalf("expected 3 total samples / 2 correct across buckets, got %d/%d", totalCount, totalCorrect)
	}
}

func TestReportDetectsOverconfidence(t *testing.T) {
	tr := New()
	for i := 0; i < 10; i++ {
		tr.Record(0.95, false)
	}
	r := tr.Report()
	if r.Bias != BiasOverconfident {
		t.Fatalf("expected overconfident bias, got %s (magnitude %f)", r.Bias, r.BiasMagnitude)
	}
}

func TestReportDetectsUnderconfidence(t *testing.T) {
	tr := New()
	for i := 0; i < 10; i++ {
		tr.Record(0.05, true)
	}
	r := tr.Report()
	if r.Bias != BiasUnderconfident {
		t.Fatalf("expected underconfident bias, got %s (magnitude %f)", r.Bias, r.BiasMagnitude)
	}
}
