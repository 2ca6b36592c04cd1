// Package answer hosts the four answer-construction strategies and the
// contract normalizer that every response passes through.
package answer

import (
	"fmt"
	"math"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// EvidenceWarning is appended to reasoning notes when events or state
// changes are cited without any evidence reference. Tests assert on the
// exact string, so it lives here rather than inline.
const EvidenceWarning = "warning: events or state changes cited without evidence references"

// Normalize returns a cleaned copy of the answer: trimmed text fields,
// confidence clamped to [0,1] (non-finite maps to 0), ID lists deduplicated
// in first-seen order, and the evidence warning enforced. Normalize is
// idempotent.
func Normalize(a types.Answer) types.Answer {
	a.AnswerText = strings.TrimSpace(a.AnswerText)
	a.ReasoningNotes = strings.TrimSpace(a.ReasoningNotes)
	a.Confidence = clampConfidence(a.Confidence)
	a.EntitiesUsed = dedupe(a.EntitiesUsed)
	a.EventsUsed = dedupe(a.EventsUsed)
	a.StateChangesUsed = dedupe(a.StateChangesUsed)
	a.EvidenceRefs = dedupe(a.EvidenceRefs)

	cited := len(a.EventsUsed) > 0 || len(a.StateChangesUsed) > 0
	if cited && len(a.EvidenceRefs) == 0 && !strings.Contains(a.ReasoningNotes, EvidenceWarning) {
		if a.ReasoningNotes != "" {
			a.ReasoningNotes += " | "
		}
		a.ReasoningNotes += EvidenceWarning
	}
	return a
}

// Validate checks the structural contract of a built answer. A failure
// here is a programming error in a builder, not a user error.
func Validate(a types.Answer) error {
	if strings.TrimSpace(a.AnswerText) == "" {
		return fmt.Errorf("answer_text is empty")
	}
	if !containsMode(types.AnswerModes, a.ModeUsed) {
		return fmt.Errorf("mode_used %q is not a valid answer mode", a.ModeUsed)
	}
	if !containsQueryType(types.QueryTypes, a.QueryType) {
		return fmt.Errorf("query_type %q is not a valid query type", a.QueryType)
	}
	if math.IsNaN(a.Confidence) || math.IsInf(a.Confidence, 0) || a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", a.Confidence)
	}
	for name, list := range map[string][]string{
		"entities_used":      a.EntitiesUsed,
		"events_used":        a.EventsUsed,
		"state_changes_used": a.StateChangesUsed,
		"evidence_refs":      a.EvidenceRefs,
	} {
		if list == nil {
			return fmt.Errorf("%s is nil, want empty array", name)
		}
		for _, id := range list {
			if id == "" {
				return fmt.Errorf("%s contains an empty id", name)
			}
		}
	}
	return nil
}

// ValidateResponse validates a complete response including the optional
// baseline comparison.
func ValidateResponse(r types.QueryResponse) error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question is empty")
	}
	if err := Validate(r.Answer); err != nil {
		return err
	}
	if r.BaselineComparison != nil {
		if err := Validate(*r.BaselineComparison); err != nil {
			return fmt.Errorf("baseline_comparison: %w", err)
		}
	}
	return nil
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// dedupe keeps the first occurrence of each ID, drops empties, and always
// returns a non-nil slice so the JSON field serializes as an array.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func containsMode(list []types.Mode, m types.Mode) bool {
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}

func containsQueryType(list []types.QueryType, q types.QueryType) bool {
	for _, x := range list {
		if x == q {
			return true
		}
	}
	return false
}
