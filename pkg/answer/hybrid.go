package answer

import (
	"github.com/screenlore/go-screenlore/pkg/types"
)

// HybridBuilder fans out to the KG and trace builders concurrently and
// merges their answers. The two builders are independent and read-only,
// so no synchronization beyond the join is needed.
type HybridBuilder struct {
	kg    *KGBuilder
	trace *TraceBuilder
}

// NewHybridBuilder composes the two structural builders.
func NewHybridBuilder(kg *KGBuilder, trace *TraceBuilder) *HybridBuilder {
	return &HybridBuilder{kg: kg, trace: trace}
}

// Build runs both builders and merges the results.
func (b *HybridBuilder) Build(in Input) types.Answer {
	kgCh := make(chan types.Answer, 1)
	go func() { kgCh <- b.kg.Build(in) }()
	traceAnswer := b.trace.Build(in)
	kgAnswer := <-kgCh

	merged := types.Answer{
		ModeUsed:         types.ModeHybrid,
		QueryType:        in.Decision.QueryType,
		EntitiesUsed:     unionIDs(kgAnswer.EntitiesUsed, traceAnswer.EntitiesUsed),
		EventsUsed:       unionIDs(kgAnswer.EventsUsed, traceAnswer.EventsUsed),
		StateChangesUsed: unionIDs(kgAnswer.StateChangesUsed, traceAnswer.StateChangesUsed),
		EvidenceRefs:     unionIDs(kgAnswer.EvidenceRefs, traceAnswer.EvidenceRefs),
	}

	higher := kgAnswer.Confidence
	if traceAnswer.Confidence > higher {
		higher = traceAnswer.Confidence
	}
	merged.Confidence = minFloat(0.93, higher*0.97+0.03)

	if in.Decision.QueryType == types.QueryTypeComparison {
		merged.AnswerText = "KG view:\n" + kgAnswer.AnswerText + "\n\nNTG view:\n" + traceAnswer.AnswerText
	} else {
		merged.AnswerText = kgAnswer.AnswerText + "\n\n" + traceAnswer.AnswerText
	}
	merged.ReasoningNotes = "hybrid: " + kgAnswer.ReasoningNotes + " | " + traceAnswer.ReasoningNotes
	return merged
}

// unionIDs merges two ID lists preserving first-seen order.
func unionIDs(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := map[string]bool{}
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
