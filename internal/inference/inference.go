// Package inference defines the boundary to the external language-model
// inference endpoint (spec §6). The endpoint itself — cloud or local — is
// an external collaborator out of scope for this core; this package only
// defines the interface and a deterministic fake used for tests, the same
// interface-plus-fake convention the teacher uses for its embeddings.Embedder
// (internal/embeddings/embedder.go, formerly paired with a MockEmbedder).
package inference

import (
	"context"
	"fmt"
)

// GenerateOptions controls one generation call.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Seed        *int64
}

// Endpoint is the request/response interface to the backing language model.
// GenerateWithLogprobs and Embed are optional capabilities: an
// implementation that cannot support them should return ErrUnsupported so
// callers fall back per spec §4.4/§4.5.
type Endpoint interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateWithLogprobs additionally returns one log-probability per
	// answer token, used by the uncertainty estimator's preferred path.
	GenerateWithLogprobs(ctx context.Context, prompt string, opts GenerateOptions) (text string, perTokenLogprobs []float64, err error)

	// Embed returns a vector representation of text, used by the novelty
	// index when the endpoint offers it directly instead of falling back
	// to the n-gram hash embedder.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrUnsupported is returned by an Endpoint implementation that does not
// support a given optional capability.
var ErrUnsupported = fmt.Errorf("inference: capability not supported by this endpoint")

// ScriptedEndpoint is a deterministic in-memory fake: it returns
// pre-programmed responses keyed by exact prompt match, falling back to a
// default response. It never calls out over the network and is the
// Endpoint used throughout this package's and its callers' tests.
type ScriptedEndpoint struct {
	Responses       map[string]string
	Default         string
	SupportsLogprob bool
	SupportsEmbed   bool
	FailCount       int // number of leading calls to fail, for retry tests
	calls           int
}

// NewScripted builds a ScriptedEndpoint returning def for any prompt not
// present in responses.
func NewScripted(responses map[string]string, def string) *ScriptedEndpoint {
	return &ScriptedEndpoint{Responses: responses, Default: def}
}

func (s *ScriptedEndpoint) Generate(_ context.Context, prompt string, _ GenerateOptions) (string, error) {
	s.calls++
	if s.calls <= s.FailCount {
		return "", fmt.Errorf("inference: simulated transient failure")
	}
	if resp, ok := s.Responses[prompt]; ok {
		return resp, nil
	}
	return s.Default, nil
}

func (s *ScriptedEndpoint) GenerateWithLogprobs(ctx context.Context, prompt string, opts GenerateOptions) (string, []float64, error) {
	if !s.SupportsLogprob {
		return "", nil, ErrUnsupported
	}
	text, err := s.Generate(ctx, prompt, opts)
	if err != nil {
		return "", nil, err
	}
	logprobs := make([]float64, len([]rune(text)))
	for i := range logprobs {
		logprobs[i] = -0.1
	}
	return text, logprobs, nil
}

func (s *ScriptedEndpoint) Embed(_ context.Context, _ string) ([]float32, error) {
	if !s.SupportsEmbed {
		return nil, ErrUnsupported
	}
	return []float32{1, 0, 0, 0}, nil
}
