// Package calibration tracks how well the uncertainty estimator's
// success-probability predictions match observed verifier outcomes, a
// supporting signal for C5 trimmed from the teacher's CalibrationTracker
// (internal/validation/calibration.go) down to the bucket + bias-direction
// logic a co-evolution run actually consumes; the per-mode ECE breakdown
// that tracker also computes has no counterpart here (this core has no
// "thinking modes") and is dropped.
package calibration

import "sync"

// bucketWidth is the width of each confidence bucket used for the report.
const bucketWidth = 0.1

// Bucket is one confidence-range slice of the calibration report.
type Bucket struct {
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
	Count         int     `json:"count"`
	CorrectCount  int     `json:"correct_count"`
	Accuracy      float64 `json:"accuracy"`
}

// BiasDirection categorizes systematic over/under confidence.
type BiasDirection string

const (
	BiasNone           BiasDirection = "none"
	BiasOverconfident  BiasDirection = "overconfident"
	BiasUnderconfident BiasDirection = "underconfident"
)

// Report summarizes calibration across every recorded (confidence, success)
// pair.
type Report struct {
	TotalSamples int           `json:"total_samples"`
	Buckets      []Bucket      `json:"buckets"`
	Bias         BiasDirection `json:"bias"`
	BiasMagnitude float64      `json:"bias_magnitude"`
}

type sample struct {
	confidence float64
	success    bool
}

// Tracker accumulates (predicted confidence, observed success) pairs across
// a run and produces a calibration report on demand.
type Tracker struct {
	mu      sync.Mutex
	samples []sample
}

// New constructs an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Record stores one (confidence, success) observation.
func (t *Tracker) Record(confidence float64, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, sample{confidence: confidence, success: success})
}

// Report computes the current calibration report over all recorded samples.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	numBuckets := int(1/bucketWidth) + 1
	buckets := make([]Bucket, numBuckets)
	for i := range buckets {
		buckets[i].MinConfidence = float64(i) * bucketWidth
		buckets[i].MaxConfidence = buckets[i].MinConfidence + bucketWidth
	}

	var meanConfidence, meanAccuracy float64
	for _, s := range t.samples {
		idx := int(s.confidence / bucketWidth)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
		if s.success {
			buckets[idx].CorrectCount++
		}
		meanConfidence += s.confidence
		if s.success {
			meanAccuracy++
		}
	}

	nonEmpty := make([]Bucket, 0, numBuckets)
	for _, b := range buckets {
		if b.Count > 0 {
			b.Accuracy = float64(b.CorrectCount) / float64(b.Count)
		}
		nonEmpty = append(nonEmpty, b)
	}

	report := Report{TotalSamples: len(t.samples), Buckets: nonEmpty, Bias: BiasNone}
	if len(t.samples) == 0 {
		return report
	}

	meanConfidence /= float64(len(t.samples))
	meanAccuracy /= float64(len(t.samples))
	diff := meanConfidence - meanAccuracy
	report.BiasMagnitude = diff
	switch {
	case diff > 0.05:
		report.Bias = BiasOverconfident
	case diff < -0.05:
		report.Bias = BiasUnderconfident
	}
	return report
}
