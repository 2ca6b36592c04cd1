package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// Row and scene limits for narrative-trace answers.
const (
	traceStateChangeLimit  = 8
	traceTriggerEventLimit = 2
	traceEvidenceRowLimit  = 8
	traceEventLimit        = 8
	traceCausalEventLimit  = 10
	traceSceneLimit        = 6
	traceEventsPerScene    = 3
)

const causalDisclaimer = "Note: this is a heuristic narrative ordering, not a proven causal chain."

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// TraceBuilder answers from the narrative-trace store, dispatching on the
// query type: state-change claims, evidence rows, or a scene-ordered
// timeline walk. The KG reader is used only to render display names and
// may be nil.
type TraceBuilder struct {
	trace store.TraceReader
	kg    store.KGReader
}

// NewTraceBuilder creates a narrative-trace builder.
func NewTraceBuilder(trace store.TraceReader, kg store.KGReader) *TraceBuilder {
	return &TraceBuilder{trace: trace, kg: kg}
}

// Build produces a narrative-trace answer. All paths return a valid
// answer even when the filtered result set is empty or artifacts are
// missing.
func (b *TraceBuilder) Build(in Input) types.Answer {
	a := types.Answer{
		ModeUsed:         types.ModeNTG,
		QueryType:        in.Decision.QueryType,
		EntitiesUsed:     []string{},
		EventsUsed:       []string{},
		StateChangesUsed: []string{},
		EvidenceRefs:     []string{},
	}

	if missing := b.trace.MissingArtifacts(); containsAny(missing, store.ArtifactEvents, store.ArtifactStateChanges) {
		a.AnswerText = fmt.Sprintf(
			"The narrative-trace store is unavailable (missing artifacts: %s), so no trace answer can be built.",
			strings.Join(missing, ", "))
		a.Confidence = 0.2
		a.ReasoningNotes = "ntg: store artifacts missing; degraded answer"
		return a
	}

	switch in.Decision.QueryType {
	case types.QueryTypeStateChange:
		return b.buildStateChange(in, a)
	case types.QueryTypeEvidence:
		return b.buildEvidence(in, a)
	default:
		return b.buildTimeline(in, a)
	}
}

func (b *TraceBuilder) buildStateChange(in Input, a types.Answer) types.Answer {
	filter := store.StateChangeFilter{Limit: traceStateChangeLimit}
	if len(in.Mentions) >= 2 {
		filter.PairKey = types.PairKey(in.Mentions[0].EntityID, in.Mentions[1].EntityID)
	} else if len(in.Mentions) == 1 {
		filter.EntityID = in.Mentions[0].EntityID
	}

	rows := b.trace.ListStateChanges(filter)
	if len(rows) == 0 {
		a.AnswerText = "No relationship state changes matched the question."
		a.Confidence = 0.25
		a.ReasoningNotes = "ntg/state_change: filtered claim set is empty"
		return a
	}

	names := b.nameIndex()
	var lines []string
	lines = append(lines, "Relationship state changes, in stable claim order:")
	for _, sc := range rows {
		lines = append(lines, fmt.Sprintf("- %s -> %s: %s %s (%.2f) [%s] in %s (confidence %.2f)",
			names.display(sc.SubjectID), names.display(sc.ObjectID),
			sc.StateDimension, sc.Direction, sc.Magnitude, sc.ClaimType, sc.SceneID, sc.Confidence))
		a.StateChangesUsed = append(a.StateChangesUsed, sc.StateChangeID)
		a.EntitiesUsed = append(a.EntitiesUsed, sc.SubjectID, sc.ObjectID)
		a.EvidenceRefs = append(a.EvidenceRefs, sc.EvidenceRefs...)

		triggers := sc.TriggerEventIDs
		if len(triggers) > traceTriggerEventLimit {
			triggers = triggers[:traceTriggerEventLimit]
		}
		for _, ev := range b.trace.GetEvents(triggers) {
			lines = append(lines, fmt.Sprintf("    triggered by %s: %s", ev.EventID, ev.Summary))
			a.EventsUsed = append(a.EventsUsed, ev.EventID)
		}
	}

	a.AnswerText = strings.Join(lines, "\n")
	a.Confidence = minFloat(0.92, 0.58+float64(len(rows))*0.04)
	a.ReasoningNotes = fmt.Sprintf("ntg/state_change: %d claims shown (pair=%q entity=%q)",
		len(rows), filter.PairKey, filter.EntityID)
	return a
}

func (b *TraceBuilder) buildEvidence(in Input, a types.Answer) types.Answer {
	filter := store.EventFilter{
		Text:  in.Question,
		Year:  inferYear(in.Question),
		Limit: traceEvidenceRowLimit,
	}
	if len(in.Mentions) >= 2 {
		filter.PairKey = types.PairKey(in.Mentions[0].EntityID, in.Mentions[1].EntityID)
	} else if len(in.Mentions) == 1 {
		filter.EntityID = in.Mentions[0].EntityID
	}

	rows := b.trace.ListTraceEvents(filter)
	if len(rows) == 0 {
		a.AnswerText = "No trace events with evidence matched the question."
		a.Confidence = 0.25
		a.ReasoningNotes = "ntg/evidence: filtered event set is empty"
		return a
	}

	var lines []string
	lines = append(lines, "Events with their backing evidence:")
	for _, ev := range rows {
		snippet := "(no evidence ref)"
		if len(ev.EvidenceRefs) > 0 {
			snippet = ev.EvidenceRefs[0]
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (scene %s) evidence: %s",
			ev.EventID, ev.Summary, ev.SceneID, snippet))
		a.EventsUsed = append(a.EventsUsed, ev.EventID)
		a.EvidenceRefs = append(a.EvidenceRefs, ev.EvidenceRefs...)
		a.EntitiesUsed = append(a.EntitiesUsed, ev.Participants...)
	}

	a.AnswerText = strings.Join(lines, "\n")
	a.Confidence = minFloat(0.86, 0.45+float64(len(rows))*0.04)
	a.ReasoningNotes = fmt.Sprintf("ntg/evidence: %d events shown (year=%q)", len(rows), filter.Year)
	return a
}

func (b *TraceBuilder) buildTimeline(in Input, a types.Answer) types.Answer {
	queryType := in.Decision.QueryType
	eventLimit := traceEventLimit
	if queryType == types.QueryTypeCausalChain {
		eventLimit = traceCausalEventLimit
	}

	eventFilter := store.EventFilter{
		Year:  inferYear(in.Question),
		Limit: eventLimit,
	}
	// Free-text filtering over-filters natural-language timeline questions
	// down to zero rows, so timeline mode relies on the structured filters
	// only.
	if queryType != types.QueryTypeTimeline {
		eventFilter.Text = in.Question
	}
	timelineFilter := store.TimelineFilter{Year: eventFilter.Year, MaxScenes: traceSceneLimit}
	if len(in.Mentions) >= 2 {
		eventFilter.PairKey = types.PairKey(in.Mentions[0].EntityID, in.Mentions[1].EntityID)
		timelineFilter.PairKey = eventFilter.PairKey
	} else if len(in.Mentions) == 1 {
		eventFilter.EntityID = in.Mentions[0].EntityID
		timelineFilter.EntityID = eventFilter.EntityID
	}

	slices := b.trace.GetTimelineSlice(timelineFilter)
	events := b.trace.ListTraceEvents(eventFilter)
	if len(slices) == 0 && len(events) == 0 {
		a.AnswerText = "No narrative events matched the question."
		a.Confidence = 0.25
		a.ReasoningNotes = "ntg/timeline: filtered scene and event sets are empty"
		return a
	}

	var lines []string
	for _, slice := range slices {
		header := slice.HeaderRaw
		if header == "" {
			header = slice.SceneID
		}
		lines = append(lines, fmt.Sprintf("Scene %s [%d state changes]:", header, slice.StateChangeCount))
		shown := slice.Events
		if len(shown) > traceEventsPerScene {
			shown = shown[:traceEventsPerScene]
		}
		for _, ev := range shown {
			lines = append(lines, fmt.Sprintf("  %d. %s", ev.SequenceInScene, ev.Summary))
			a.EventsUsed = append(a.EventsUsed, ev.EventID)
			a.EvidenceRefs = append(a.EvidenceRefs, ev.EvidenceRefs...)
			a.EntitiesUsed = append(a.EntitiesUsed, ev.Participants...)
		}
	}
	if len(events) > 0 {
		lines = append(lines, "Flat event order:")
		for _, ev := range events {
			lines = append(lines, fmt.Sprintf("- [%s] %s", ev.EventID, ev.Summary))
			a.EventsUsed = append(a.EventsUsed, ev.EventID)
			a.EvidenceRefs = append(a.EvidenceRefs, ev.EvidenceRefs...)
			a.EntitiesUsed = append(a.EntitiesUsed, ev.Participants...)
		}
	}
	if queryType == types.QueryTypeCausalChain {
		lines = append(lines, causalDisclaimer)
	}

	a.AnswerText = strings.Join(lines, "\n")
	shown := len(events)
	if shown > 10 {
		shown = 10
	}
	a.Confidence = minFloat(0.88, 0.5+float64(shown)*0.03)
	a.ReasoningNotes = fmt.Sprintf("ntg/%s: %d scenes, %d flat events shown", queryType, len(slices), len(events))
	return a
}

// nameIndex resolves entity IDs to display names, falling back to the raw
// ID when the KG store is unavailable.
type nameIndex map[string]string

func (n nameIndex) display(entityID string) string {
	if name, ok := n[entityID]; ok {
		return name
	}
	return entityID
}

func (b *TraceBuilder) nameIndex() nameIndex {
	idx := nameIndex{}
	if b.kg == nil {
		return idx
	}
	for _, e := range b.kg.AllEntities() {
		idx[e.EntityID] = e.CanonicalName
	}
	return idx
}

// inferYear returns the first 19xx/20xx token in the question, or "".
func inferYear(question string) string {
	return yearPattern.FindString(question)
}
