// Package archpipe runs the intent-to-system pipeline: structured
// generation, normalization, and graph synthesis behind one service type.
// Every record is request-scoped; the only shared state is a bounded result
// cache keyed by operation and input.
package archpipe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"archflow/internal/graph"
	"archflow/internal/llm"
	"archflow/internal/llmclient"
	"archflow/internal/llmtool"
	"archflow/internal/schema"
)

// DefaultObjective is used when an optimization request does not name one.
const DefaultObjective = "resilience"

type Service struct {
	loop  *llmtool.StructuredLoop
	cache *lru.Cache[string, any]
	log   *log.Logger
}

type Options struct {
	MaxRetries int
	CacheSize  int
	Logger     *log.Logger
}

func New(client llmclient.LLMClient, opts Options) (*Service, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	cache, err := lru.New[string, any](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		loop:  &llmtool.StructuredLoop{LLM: client, MaxRetries: opts.MaxRetries},
		cache: cache,
		log:   logger,
	}, nil
}

// AnalyzeIntent decomposes a free-form intent into goals, constraints,
// actors, and success metrics.
func (s *Service) AnalyzeIntent(ctx context.Context, content string) (schema.IntentAnalysis, *llmtool.FailureSentinel) {
	var out schema.IntentAnalysis
	sentinel := s.generate(ctx, "analyze_intent", content, intentPrompt(content), func(v any) any {
		out = schema.NormalizeIntent(v)
		return out
	}, &out)
	return out, sentinel
}

// GenerateSystem designs a system architecture from an intent analysis.
func (s *Service) GenerateSystem(ctx context.Context, intent schema.IntentAnalysis) (schema.SystemArchitecture, *llmtool.FailureSentinel) {
	var out schema.SystemArchitecture
	sentinel := s.generate(ctx, "generate_system", intent, architecturePrompt(intent), func(v any) any {
		out = schema.NormalizeArchitecture(v)
		return out
	}, &out)
	return out, sentinel
}

// SimulateFailure analyzes failure modes of an architecture.
func (s *Service) SimulateFailure(ctx context.Context, arch schema.SystemArchitecture) (schema.FailureSimulation, *llmtool.FailureSentinel) {
	var out schema.FailureSimulation
	sentinel := s.generate(ctx, "simulate_failure", arch, failurePrompt(arch), func(v any) any {
		out = schema.NormalizeFailureSimulation(v)
		return out
	}, &out)
	return out, sentinel
}

// OptimizeSystem rewrites an architecture for an objective and reports the
// tradeoffs made.
func (s *Service) OptimizeSystem(ctx context.Context, arch schema.SystemArchitecture, objective string) (schema.OptimizationResult, *llmtool.FailureSentinel) {
	if objective == "" {
		objective = DefaultObjective
	}
	key := struct {
		Arch      schema.SystemArchitecture `json:"arch"`
		Objective string                    `json:"objective"`
	}{arch, objective}
	var out schema.OptimizationResult
	sentinel := s.generate(ctx, "optimize_system", key, optimizePrompt(arch, objective), func(v any) any {
		out = schema.NormalizeOptimization(v)
		return out
	}, &out)
	return out, sentinel
}

// ExplainSystem produces per-decision explanations for an architecture.
func (s *Service) ExplainSystem(ctx context.Context, arch schema.SystemArchitecture) (schema.SystemExplanation, *llmtool.FailureSentinel) {
	var out schema.SystemExplanation
	sentinel := s.generate(ctx, "explain_system", arch, explainPrompt(arch), func(v any) any {
		out = schema.NormalizeExplanations(v)
		return out
	}, &out)
	return out, sentinel
}

// SystemGraph derives the visualization graph. No generation involved, so
// no sentinel path.
func (s *Service) SystemGraph(arch schema.SystemArchitecture) graph.SystemGraph {
	return graph.Build(arch)
}

// generate runs one structured generation: cache lookup, prompt, bounded
// retry loop, normalization, cache store. The sentinel is data, not an
// error; out is only valid when the sentinel is nil.
func (s *Service) generate(ctx context.Context, op string, cacheInput any, prompt promptResult, normalize func(any) any, out any) *llmtool.FailureSentinel {
	if prompt.err != nil {
		// Prompt specs are static; a build error is a programming error,
		// surfaced as a sentinel so callers keep a single failure path.
		s.log.Printf("prompt build failed (%s): %v", op, prompt.err)
		return &llmtool.FailureSentinel{Error: llmtool.ErrGenerationInvalidOutput, RawOutput: prompt.err.Error()}
	}

	key := cacheKey(op, cacheInput)
	if key != "" {
		if cached, ok := s.cache.Get(key); ok {
			assignCached(cached, out)
			return nil
		}
	}

	parsed, sentinel := s.loop.Generate(llm.WithOperation(ctx, op), prompt.text)
	if sentinel != nil {
		s.log.Printf("generation failed (%s): %s", op, sentinel.Error)
		return sentinel
	}
	record := normalize(parsed)
	if key != "" {
		s.cache.Add(key, record)
	}
	return nil
}

func cacheKey(op string, input any) string {
	b, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return op + ":" + hex.EncodeToString(sum[:])
}

// assignCached copies a cached record into the caller's typed output via a
// JSON round-trip. Cached values are the same concrete types, so this
// cannot lose fields.
func assignCached(cached any, out any) {
	b, err := json.Marshal(cached)
	if err != nil {
		return
	}
	_ = json.Unmarshal(b, out)
}
