// Package router classifies questions into query types and selects an
// answer mode. Classification is an ordered table of keyword rules
// evaluated first-match-wins; it is heuristic by design.
package router

import (
	"fmt"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// Rule maps a set of textual cues to a query type. Phrases match as
// substrings; Words match only on token boundaries so short cues like
// "rag" or "vs" cannot fire inside longer words.
type Rule struct {
	Label   types.QueryType
	Phrases []string
	Words   []string
	// Pairs fire when a cue from each side is present (e.g. relationship
	// vocabulary combined with trajectory phrasing).
	Pairs []CuePair
}

// CuePair is a conjunction of two cue groups.
type CuePair struct {
	Left  []string
	Right []string
}

// Rules is the classification table, evaluated top to bottom. The order
// is load-bearing: state_change is checked before timeline on purpose,
// even though phrasings like "the timeline of their relationship change"
// then classify as state_change.
var Rules = []Rule{
	{
		Label:   types.QueryTypeComparison,
		Phrases: []string{"compare", "versus", "baseline"},
		Words:   []string{"vs", "rag"},
	},
	{
		Label:   types.QueryTypeEvidence,
		Phrases: []string{"evidence", "which scene", "show proof"},
		Pairs: []CuePair{
			{Left: []string{"show"}, Right: []string{"scene"}},
		},
	},
	{
		Label: types.QueryTypeStateChange,
		Pairs: []CuePair{
			{
				Left:  []string{"relationship"},
				Right: []string{"change", "evolve", "shift", "deteriorate"},
			},
			{
				Left:  []string{"relationship", "trust", "loyalty", "alliance", "falling out", "feelings"},
				Right: []string{"how does", "how do", "over time", "trajectory"},
			},
		},
	},
	{
		Label:   types.QueryTypeCausalChain,
		Phrases: []string{"lead up to", "leads up to", "led up to", "leads to", "why did", "because", "what caused"},
	},
	{
		Label:   types.QueryTypeTimeline,
		Phrases: []string{"timeline", "in order", "chronological", "sequence", "when does"},
		Words:   []string{"before", "after", "when"},
	},
}

// defaultModes maps each query type to the mode used when the caller does
// not force one.
var defaultModes = map[types.QueryType]types.Mode{
	types.QueryTypeFact:        types.ModeKG,
	types.QueryTypeTimeline:    types.ModeNTG,
	types.QueryTypeStateChange: types.ModeNTG,
	types.QueryTypeCausalChain: types.ModeHybrid,
	types.QueryTypeEvidence:    types.ModeHybrid,
	types.QueryTypeComparison:  types.ModeHybrid,
}

// Classify returns the query type for a question along with the cues that
// fired. A question matching no rule is a fact question.
func Classify(question string) (types.QueryType, []string) {
	q := normalize(question)
	for _, rule := range Rules {
		if signals := rule.signals(q); len(signals) > 0 {
			return rule.Label, signals
		}
	}
	return types.QueryTypeFact, nil
}

// Options carries the caller-controlled routing inputs.
type Options struct {
	PreferredMode types.Mode
	EntityCount   int
}

// Route classifies the question and selects a mode. A non-auto preferred
// mode is honored verbatim (with the baseline alias mapped) and the
// rationale records the override.
func Route(question string, opts Options) types.RouteDecision {
	queryType, signals := Classify(question)
	decision := types.RouteDecision{
		QueryType:   queryType,
		Signals:     signals,
		EntityCount: opts.EntityCount,
	}

	preferred := opts.PreferredMode
	if preferred == types.ModeBaselineAlias {
		preferred = types.ModeBaselineRAG
	}
	if preferred != "" && preferred != types.ModeAuto {
		decision.ModeUsed = preferred
		decision.Reasoning = fmt.Sprintf(
			"manual override: caller forced mode %s (classified as %s)", preferred, queryType)
		return decision
	}

	decision.ModeUsed = defaultModes[queryType]
	if len(signals) > 0 {
		decision.Reasoning = fmt.Sprintf(
			"classified as %s (cues: %s); routed to default mode %s",
			queryType, strings.Join(signals, ", "), decision.ModeUsed)
	} else {
		decision.Reasoning = fmt.Sprintf(
			"no classification cues fired; treated as fact lookup; routed to default mode %s",
			decision.ModeUsed)
	}
	return decision
}

func (r Rule) signals(q string) []string {
	var signals []string
	for _, p := range r.Phrases {
		if strings.Contains(q, p) {
			signals = append(signals, p)
		}
	}
	for _, w := range r.Words {
		if containsWord(q, w) {
			signals = append(signals, w)
		}
	}
	for _, pair := range r.Pairs {
		left := firstCue(q, pair.Left)
		right := firstCue(q, pair.Right)
		if left != "" && right != "" {
			signals = append(signals, left+"+"+right)
		}
	}
	return signals
}

func firstCue(q string, cues []string) string {
	for _, c := range cues {
		if strings.Contains(q, c) {
			return c
		}
	}
	return ""
}

func containsWord(q, w string) bool {
	for _, tok := range strings.Fields(q) {
		if strings.Trim(tok, ".,;:!?'\"()-") == w {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
