// Package screenlore answers natural-language questions about a fixed
// narrative corpus by routing each question to one of four deterministic
// answer-construction strategies over two pre-built graph stores.
package screenlore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/screenlore/go-screenlore/pkg/answer"
	"github.com/screenlore/go-screenlore/pkg/mentions"
	"github.com/screenlore/go-screenlore/pkg/router"
	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/synthesis"
	"github.com/screenlore/go-screenlore/pkg/types"
)

var (
	// ErrEmptyQuestion rejects requests whose question is blank.
	ErrEmptyQuestion = errors.New("question must not be empty")
	// ErrInvalidMode rejects requests whose preferred_mode is not in the
	// closed request-mode set.
	ErrInvalidMode = errors.New("preferred_mode is not a recognized mode")
	// ErrContractViolation marks an internally built answer that failed
	// contract validation. This is a fault, not a user error.
	ErrContractViolation = errors.New("answer violates the response contract")
)

// Service answers questions over the pre-built graph stores.
type Service interface {
	// Answer runs the full pipeline for one request.
	Answer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error)

	// BaselineAnswer forces the lexical baseline and never attaches a
	// comparison.
	BaselineAnswer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error)

	// Reload invalidates the memoized store snapshot and mention lexicon.
	Reload()
}

// Client is the Service implementation.
type Client struct {
	store    *store.Store
	detector *mentions.Detector

	kgBuilder       *answer.KGBuilder
	traceBuilder    *answer.TraceBuilder
	hybridBuilder   *answer.HybridBuilder
	baselineBuilder *answer.BaselineBuilder

	rewriter *synthesis.Rewriter
	log      *slog.Logger
}

// New wires the pipeline over an artifact store. rewriter may be nil to
// run without the synthesis layer.
func New(artifacts *store.Store, rewriter *synthesis.Rewriter, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	kg := store.NewKGView(artifacts)
	trace := store.NewTraceView(artifacts)
	kgBuilder := answer.NewKGBuilder(kg)
	traceBuilder := answer.NewTraceBuilder(trace, kg)
	return &Client{
		store:           artifacts,
		detector:        mentions.NewDetector(kg),
		kgBuilder:       kgBuilder,
		traceBuilder:    traceBuilder,
		hybridBuilder:   answer.NewHybridBuilder(kgBuilder, traceBuilder),
		baselineBuilder: answer.NewBaselineBuilder(trace, kg),
		rewriter:        rewriter,
		log:             log,
	}
}

// Answer runs detection, routing, building, normalization, the optional
// rewrite, and the optional baseline comparison for one request.
func (c *Client) Answer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	started := time.Now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !types.IsRequestMode(req.PreferredMode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.PreferredMode)
	}

	detected := c.detector.Detect(question)
	decision := router.Route(question, router.Options{
		PreferredMode: req.PreferredMode,
		EntityCount:   len(detected),
	})
	in := answer.Input{Question: question, Decision: decision, Mentions: detected}

	wantBaseline := req.IncludeBaselineComparison || decision.QueryType == types.QueryTypeComparison

	// The baseline comparison is independent of the main answer; both run
	// read-only over the same snapshot, so they can proceed in parallel.
	var baselineCh chan types.Answer
	if wantBaseline {
		baselineCh = make(chan types.Answer, 1)
		go func() { baselineCh <- c.baselineBuilder.Build(in) }()
	}

	a := c.build(in)
	a.ReasoningNotes = joinNotes(decision.Reasoning, a.ReasoningNotes)
	a = answer.Normalize(a)
	if err := answer.Validate(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	if c.rewriter != nil {
		a = answer.Normalize(c.rewriter.Rewrite(ctx, question, a))
	}

	resp := &types.QueryResponse{Question: question, Answer: a}
	if wantBaseline {
		baseline := answer.Normalize(<-baselineCh)
		if err := answer.Validate(baseline); err != nil {
			return nil, fmt.Errorf("%w: baseline comparison: %v", ErrContractViolation, err)
		}
		resp.BaselineComparison = &baseline
	}
	if !req.IncludeEvidence {
		stripEvidence(resp)
	}

	if err := answer.ValidateResponse(*resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	c.log.Info("question answered",
		"query_type", a.QueryType,
		"mode", a.ModeUsed,
		"entities", len(detected),
		"confidence", a.Confidence,
		"duration", time.Since(started))
	return resp, nil
}

// BaselineAnswer forces the lexical baseline for the comparison endpoint.
func (c *Client) BaselineAnswer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !types.IsRequestMode(req.PreferredMode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.PreferredMode)
	}
	req.PreferredMode = types.ModeBaselineRAG
	req.IncludeBaselineComparison = false

	detected := c.detector.Detect(question)
	decision := router.Route(question, router.Options{
		PreferredMode: req.PreferredMode,
		EntityCount:   len(detected),
	})
	in := answer.Input{Question: question, Decision: decision, Mentions: detected}

	a := c.baselineBuilder.Build(in)
	a.ReasoningNotes = joinNotes(decision.Reasoning, a.ReasoningNotes)
	a = answer.Normalize(a)
	if err := answer.Validate(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	resp := &types.QueryResponse{Question: question, Answer: a}
	if !req.IncludeEvidence {
		stripEvidence(resp)
	}
	return resp, nil
}

// Reload exposes the cache invalidation hooks. Never called mid-request.
func (c *Client) Reload() {
	c.store.Invalidate()
	c.detector.Invalidate()
	c.log.Info("store snapshot and mention lexicon invalidated")
}

func (c *Client) build(in answer.Input) types.Answer {
	switch in.Decision.ModeUsed {
	case types.ModeKG:
		return c.kgBuilder.Build(in)
	case types.ModeNTG:
		return c.traceBuilder.Build(in)
	case types.ModeHybrid:
		return c.hybridBuilder.Build(in)
	default:
		return c.baselineBuilder.Build(in)
	}
}

// stripEvidence clears evidence refs when the caller opted out, then
// re-normalizes so the evidence warning reflects the serialized lists:
// cited events with their refs stripped still carry the warning.
func stripEvidence(resp *types.QueryResponse) {
	resp.EvidenceRefs = []string{}
	resp.Answer = answer.Normalize(resp.Answer)
	if resp.BaselineComparison != nil {
		resp.BaselineComparison.EvidenceRefs = []string{}
		baseline := answer.Normalize(*resp.BaselineComparison)
		resp.BaselineComparison = &baseline
	}
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " | " + b
	}
}
