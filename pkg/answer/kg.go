package answer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// Input is what every builder consumes: the question, the routing
// decision, and the mentions detected in the question.
type Input struct {
	Question string
	Decision types.RouteDecision
	Mentions []types.DetectedMention
}

// focusEntity is the first detected mention, if any.
func (in Input) focusEntity() (types.DetectedMention, bool) {
	if len(in.Mentions) == 0 {
		return types.DetectedMention{}, false
	}
	return in.Mentions[0], true
}

// predicatePriorities rank relationship kinds from most to least
// informative. Unknown predicates land in the generic bucket; dialogue
// co-presence stays at the bottom because it is pure co-occurrence.
var predicatePriorities = map[string]int{
	"family":              100,
	"associated_with":     80,
	"works_with":          70,
	"allied_with":         70,
	"advisor":             60,
	"counsel":             60,
	"co_present_dialogue": 10,
}

const genericPredicatePriority = 40

func predicatePriority(predicate string) int {
	if p, ok := predicatePriorities[predicate]; ok {
		return p
	}
	return genericPredicatePriority
}

// Limits for how many neighbors a KG answer shows.
const (
	kgCharacterOnlyLimit = 6
	kgMixedLimit         = 8
	kgCharacterThreshold = 3
)

// KGBuilder answers from the graph-neighborhood store: the focus entity's
// ranked relationships, or a free-text entity search when no entity was
// detected.
type KGBuilder struct {
	kg store.KGReader
}

// NewKGBuilder creates a graph-neighborhood builder.
func NewKGBuilder(kg store.KGReader) *KGBuilder {
	return &KGBuilder{kg: kg}
}

// Build produces a KG answer. It never fails: missing data degrades to a
// low-confidence answer naming what was unavailable.
func (b *KGBuilder) Build(in Input) types.Answer {
	a := types.Answer{
		ModeUsed:         types.ModeKG,
		QueryType:        in.Decision.QueryType,
		EntitiesUsed:     []string{},
		EventsUsed:       []string{},
		StateChangesUsed: []string{},
		EvidenceRefs:     []string{},
	}

	if missing := b.kg.MissingArtifacts(); containsAny(missing, store.ArtifactEntities, store.ArtifactKGEdges) {
		a.AnswerText = fmt.Sprintf(
			"The graph-neighborhood store is unavailable (missing artifacts: %s), so no relationship answer can be built.",
			strings.Join(missing, ", "))
		a.Confidence = 0.2
		a.ReasoningNotes = "kg: store artifacts missing; degraded answer"
		return a
	}

	focus, ok := in.focusEntity()
	if !ok {
		return b.buildFallback(in, a)
	}

	hood, found := b.kg.GetNeighbors(focus.EntityID)
	if !found || len(hood.Neighbors) == 0 {
		a.AnswerText = fmt.Sprintf("No recorded relationships were found for %s.", focus.CanonicalName)
		a.Confidence = 0.2
		a.EntitiesUsed = []string{focus.EntityID}
		a.ReasoningNotes = fmt.Sprintf("kg: %s has no neighborhood in the store", focus.EntityID)
		return a
	}

	ranked := make([]types.Neighbor, len(hood.Neighbors))
	copy(ranked, hood.Neighbors)
	sort.Slice(ranked, func(i, j int) bool {
		pi := predicatePriority(ranked[i].Edge.Predicate)
		pj := predicatePriority(ranked[j].Edge.Predicate)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Neighbor.CanonicalName < ranked[j].Neighbor.CanonicalName
	})

	characterCount := 0
	for _, n := range ranked {
		if n.Neighbor.EntityType == "character" {
			characterCount++
		}
	}

	var shown []types.Neighbor
	if characterCount >= kgCharacterThreshold {
		for _, n := range ranked {
			if n.Neighbor.EntityType != "character" {
				continue
			}
			shown = append(shown, n)
			if len(shown) == kgCharacterOnlyLimit {
				break
			}
		}
	} else {
		shown = ranked
		if len(shown) > kgMixedLimit {
			shown = shown[:kgMixedLimit]
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%s is connected to:", hood.Entity.CanonicalName))
	a.EntitiesUsed = append(a.EntitiesUsed, hood.Entity.EntityID)
	for _, n := range shown {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)",
			n.Neighbor.CanonicalName, n.Edge.Predicate, n.Edge.Stability))
		a.EntitiesUsed = append(a.EntitiesUsed, n.Neighbor.EntityID)
		a.EvidenceRefs = append(a.EvidenceRefs, n.Edge.EvidenceRefs...)
	}

	a.AnswerText = strings.Join(lines, "\n")
	a.Confidence = minFloat(0.95, 0.55+float64(len(shown))*0.05)
	focusNote := fmt.Sprintf("kg: ranked %d edges around %s, showing %d", len(ranked), hood.Entity.EntityID, len(shown))
	if characterCount >= kgCharacterThreshold {
		focusNote += " (character neighbors only)"
	}
	a.ReasoningNotes = focusNote
	return a
}

// buildFallback handles questions with no detected entity by reporting
// free-text entity candidates instead of relationships.
func (b *KGBuilder) buildFallback(in Input, a types.Answer) types.Answer {
	candidates := b.kg.ListEntities(in.Question, "", 5)
	if len(candidates) == 0 {
		a.AnswerText = "No entity in the question matched the graph-neighborhood store, and no candidates were found by name search."
		a.Confidence = 0.2
		a.ReasoningNotes = "kg: no focus entity and no name-search candidates"
		return a
	}
	var lines []string
	lines = append(lines, "No entity mention was detected; closest entity candidates by name search:")
	for _, c := range candidates {
		lines = append(lines, fmt.Sprintf("- %s (%s)", c.CanonicalName, c.EntityType))
		a.EntitiesUsed = append(a.EntitiesUsed, c.EntityID)
	}
	a.AnswerText = strings.Join(lines, "\n")
	a.Confidence = 0.42
	a.ReasoningNotes = fmt.Sprintf("kg: no focus entity; reporting %d name-search candidates", len(candidates))
	return a
}

func containsAny(list []string, wants ...string) bool {
	for _, w := range wants {
		for _, s := range list {
			if s == w {
				return true
			}
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
