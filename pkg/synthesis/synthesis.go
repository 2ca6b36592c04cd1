// Package synthesis is the optional best-effort rewrite layer: it asks an
// external text-generation provider to rephrase a deterministic answer.
// It only ever touches answer text; structured fields pass through
// untouched, and every failure falls back to the deterministic text.
package synthesis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/screenlore/go-screenlore/pkg/cache"
	"github.com/screenlore/go-screenlore/pkg/llm"
	"github.com/screenlore/go-screenlore/pkg/types"
)

const systemPrompt = `You rewrite answers about a screenplay knowledge base into clear prose.
Rules:
- Do not invent facts that are not in the structured answer.
- Do not contradict the structured answer.
- Preserve the distinction between explicit and inferred claims.
- Keep entity names, scene references, and event references intact.`

// Fallback notes appended to reasoning when the rewrite is skipped or
// fails. They are informational only; the deterministic answer stands.
const (
	noteDisabled  = "synthesis skipped: rewrite layer disabled or no credential configured"
	noteFailed    = "synthesis fallback: rewrite call failed; deterministic answer text retained"
	noteEmpty     = "synthesis fallback: provider returned empty text; deterministic answer text retained"
	assistedLabel = "answer text rewritten by the synthesis layer (assisted)"
)

const defaultTimeout = 8 * time.Second
const cacheTTL = 24 * time.Hour

// GenerateResult is the outcome of one generation call.
type GenerateResult struct {
	OK    bool
	Text  string
	Model string
	Err   string
}

// Rewriter wraps the generation client with a timeout, a circuit breaker,
// and an optional response cache. A nil client means the layer is
// disabled; Rewrite then only annotates.
type Rewriter struct {
	client  llm.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	cache   cache.Cache
	log     *slog.Logger
}

// New creates a rewriter. client and responseCache may both be nil.
func New(client llm.Client, timeout time.Duration, responseCache cache.Cache, log *slog.Logger) *Rewriter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "synthesis",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Rewriter{
		client:  client,
		timeout: timeout,
		breaker: breaker,
		cache:   responseCache,
		log:     log,
	}
}

// Rewrite returns the answer with its text possibly replaced by an
// assisted rewrite. Structured fields are never modified, and Rewrite
// never fails: any error path returns the input answer with an appended
// note.
func (r *Rewriter) Rewrite(ctx context.Context, question string, a types.Answer) types.Answer {
	if r.client == nil {
		return annotate(a, noteDisabled)
	}

	key := cacheKey(question, a.AnswerText)
	if text, ok := r.cachedText(key); ok {
		a.AnswerText = text
		return annotate(a, assistedLabel+" (cached)")
	}

	result := r.generate(ctx, question, a)
	if !result.OK {
		r.log.Warn("synthesis call failed", "error", result.Err)
		return annotate(a, noteFailed)
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return annotate(a, noteEmpty)
	}

	r.storeText(key, text)
	a.AnswerText = text
	return annotate(a, fmt.Sprintf("%s via %s", assistedLabel, result.Model))
}

// generate performs the single bounded external call.
func (r *Rewriter) generate(ctx context.Context, question string, a types.Answer) GenerateResult {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Question: %s\n\nDeterministic answer (%s/%s, confidence %.2f):\n%s\n\nRewrite this answer as clear prose.",
		question, a.ModeUsed, a.QueryType, a.Confidence, a.AnswerText)

	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Chat(callCtx, []llm.Message{
			llm.NewSystemMessage(systemPrompt),
			llm.NewUserMessage(userPrompt),
		})
	})
	if err != nil {
		return GenerateResult{Err: err.Error()}
	}
	resp, ok := out.(*llm.Response)
	if !ok || resp == nil {
		return GenerateResult{Err: "malformed provider response"}
	}
	model := resp.Model
	if model == "" {
		model = "external provider"
	}
	return GenerateResult{OK: true, Text: resp.Content, Model: model}
}

func (r *Rewriter) cachedText(key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	val, err := r.cache.Get(key)
	if err != nil || len(val) == 0 {
		return "", false
	}
	return string(val), true
}

func (r *Rewriter) storeText(key, text string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(key, []byte(text), cacheTTL); err != nil {
		r.log.Warn("synthesis cache write failed", "error", err)
	}
}

func cacheKey(question, answerText string) string {
	sum := sha256.Sum256([]byte(question + "\x00" + answerText))
	return "synth:" + hex.EncodeToString(sum[:])
}

func annotate(a types.Answer, note string) types.Answer {
	if a.ReasoningNotes != "" {
		a.ReasoningNotes += " | "
	}
	a.ReasoningNotes += note
	return a
}
