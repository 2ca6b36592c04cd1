package answer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// Baseline scoring knobs.
const (
	baselineTopK           = 6
	baselineSubstringBonus = 2
	baselineMinTokenLen    = 2
	baselineSnippetLen     = 160
	baselineZeroMatchConf  = 0.12
)

// BaselineBuilder is the deliberately naive lexical-retrieval foil. It
// scores events, state changes, and raw script blocks by token overlap
// alone and never consults temporal edges or state-change semantics.
type BaselineBuilder struct {
	trace store.TraceReader
	kg    store.KGReader
}

// NewBaselineBuilder creates the lexical baseline.
func NewBaselineBuilder(trace store.TraceReader, kg store.KGReader) *BaselineBuilder {
	return &BaselineBuilder{trace: trace, kg: kg}
}

type baselineCandidate struct {
	id           string
	sceneID      string
	kind         string // "event", "state_change", "script_block"
	text         string
	participants []string
	evidenceRefs []string
	score        int
}

// Build scores all stored text against the question and reports the top
// overlapping rows.
func (b *BaselineBuilder) Build(in Input) types.Answer {
	a := types.Answer{
		ModeUsed:         types.ModeBaselineRAG,
		QueryType:        in.Decision.QueryType,
		EntitiesUsed:     []string{},
		EventsUsed:       []string{},
		StateChangesUsed: []string{},
		EvidenceRefs:     []string{},
	}

	questionNorm := strings.Join(tokenize(in.Question), " ")
	questionTokens := map[string]bool{}
	for _, tok := range tokenize(in.Question) {
		questionTokens[tok] = true
	}

	mentioned := map[string]bool{}
	for _, m := range in.Mentions {
		mentioned[m.EntityID] = true
	}

	candidates := b.collect(in)
	scored := make([]baselineCandidate, 0, len(candidates))
	for _, c := range candidates {
		if len(mentioned) > 0 && !touchesAny(c.participants, mentioned) {
			continue
		}
		c.score = overlapScore(questionTokens, c.text)
		if questionNorm != "" && strings.Contains(strings.Join(tokenize(c.text), " "), questionNorm) {
			c.score += baselineSubstringBonus
		}
		if c.score > 0 {
			scored = append(scored, c)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].sceneID != scored[j].sceneID {
			return scored[i].sceneID < scored[j].sceneID
		}
		return scored[i].id < scored[j].id
	})
	if len(scored) > baselineTopK {
		scored = scored[:baselineTopK]
	}

	if len(scored) == 0 {
		a.AnswerText = "No stored text shares tokens with the question; the lexical baseline has nothing to report."
		a.Confidence = baselineZeroMatchConf
		a.ReasoningNotes = "baseline_rag: zero candidates scored above zero; no structural reasoning applied"
		return a
	}

	var lines []string
	lines = append(lines, "Top lexical matches by token overlap:")
	for _, c := range scored {
		lines = append(lines, fmt.Sprintf("- (score %d) [%s] %s", c.score, c.id, snippet(c.text)))
		switch c.kind {
		case "event":
			a.EventsUsed = append(a.EventsUsed, c.id)
		case "state_change":
			a.StateChangesUsed = append(a.StateChangesUsed, c.id)
		}
		a.EvidenceRefs = append(a.EvidenceRefs, c.evidenceRefs...)
		a.EntitiesUsed = append(a.EntitiesUsed, c.participants...)
	}

	a.AnswerText = strings.Join(lines, "\n")
	a.Confidence = minFloat(0.78, 0.28+float64(scored[0].score)/12)
	a.ReasoningNotes = fmt.Sprintf(
		"baseline_rag: kept %d of %d candidates by token overlap; no structural reasoning applied",
		len(scored), len(candidates))
	return a
}

func (b *BaselineBuilder) collect(in Input) []baselineCandidate {
	names := nameIndex{}
	if b.kg != nil {
		for _, e := range b.kg.AllEntities() {
			names[e.EntityID] = e.CanonicalName
		}
	}

	var out []baselineCandidate
	for _, ev := range b.trace.ListTraceEvents(store.EventFilter{}) {
		out = append(out, baselineCandidate{
			id:           ev.EventID,
			sceneID:      ev.SceneID,
			kind:         "event",
			text:         ev.Summary,
			participants: ev.Participants,
			evidenceRefs: ev.EvidenceRefs,
		})
	}
	for _, sc := range b.trace.ListStateChanges(store.StateChangeFilter{}) {
		text := fmt.Sprintf("%s %s %s %s",
			names.display(sc.SubjectID), names.display(sc.ObjectID), sc.StateDimension, sc.Direction)
		out = append(out, baselineCandidate{
			id:           sc.StateChangeID,
			sceneID:      sc.SceneID,
			kind:         "state_change",
			text:         text,
			participants: []string{sc.SubjectID, sc.ObjectID},
			evidenceRefs: sc.EvidenceRefs,
		})
	}
	for _, blk := range b.trace.ScriptBlocks() {
		out = append(out, baselineCandidate{
			id:           blk.BlockID,
			sceneID:      blk.SceneID,
			kind:         "script_block",
			text:         blk.Text,
			participants: blk.Participants,
			evidenceRefs: blk.EvidenceRefs,
		})
	}
	return out
}

// overlapScore counts distinct question tokens present in the candidate
// text.
func overlapScore(questionTokens map[string]bool, text string) int {
	score := 0
	seen := map[string]bool{}
	for _, tok := range tokenize(text) {
		if questionTokens[tok] && !seen[tok] {
			seen[tok] = true
			score++
		}
	}
	return score
}

// tokenize lowercases, splits on whitespace and punctuation, and keeps
// tokens of at least two characters.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= baselineMinTokenLen {
			out = append(out, f)
		}
	}
	return out
}

func touchesAny(participants []string, wanted map[string]bool) bool {
	for _, p := range participants {
		if wanted[p] {
			return true
		}
	}
	return false
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= baselineSnippetLen {
		return text
	}
	return text[:baselineSnippetLen] + "..."
}
