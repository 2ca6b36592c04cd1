package answer

import (
	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// stubKG is a canned KGReader that records the last search query.
type stubKG struct {
	entities  []types.Entity
	hoods     map[string]*types.Neighborhood
	searched  []types.Entity
	missing   []string
	lastQuery string
}

func (s *stubKG) ListEntities(query, typeFilter string, limit int) []types.Entity {
	s.lastQuery = query
	if limit > 0 && len(s.searched) > limit {
		return s.searched[:limit]
	}
	return s.searched
}

func (s *stubKG) GetNeighbors(entityID string) (*types.Neighborhood, bool) {
	h, ok := s.hoods[entityID]
	return h, ok
}

func (s *stubKG) AllEntities() []types.Entity         { return s.entities }
func (s *stubKG) CuratedAliases() []types.EntityAlias { return nil }
func (s *stubKG) MissingArtifacts() []string          { return s.missing }

// stubTrace is a canned TraceReader that records the filters it was
// called with so tests can assert on them.
type stubTrace struct {
	stateChanges []types.StateChange
	events       []types.TraceEvent
	eventsByID   map[string]types.TraceEvent
	slices       []types.SceneSlice
	blocks       []types.ScriptBlock
	missing      []string

	lastSCFilter store.StateChangeFilter
	lastEvFilter store.EventFilter
	lastTLFilter store.TimelineFilter
}

func (s *stubTrace) ListStateChanges(f store.StateChangeFilter) []types.StateChange {
	s.lastSCFilter = f
	return s.stateChanges
}

func (s *stubTrace) ListTraceEvents(f store.EventFilter) []types.TraceEvent {
	s.lastEvFilter = f
	return s.events
}

func (s *stubTrace) GetEvents(ids []string) []types.TraceEvent {
	var out []types.TraceEvent
	for _, id := range ids {
		if ev, ok := s.eventsByID[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}

func (s *stubTrace) GetTimelineSlice(f store.TimelineFilter) []types.SceneSlice {
	s.lastTLFilter = f
	return s.slices
}

func (s *stubTrace) ScriptBlocks() []types.ScriptBlock { return s.blocks }
func (s *stubTrace) MissingArtifacts() []string        { return s.missing }

func mention(entityID, name string) types.DetectedMention {
	return types.DetectedMention{
		EntityID:      entityID,
		CanonicalName: name,
		EntityType:    "character",
		MatchedText:   name,
		MatchKind:     types.MatchCanonical,
	}
}

func inputFor(question string, queryType types.QueryType, mode types.Mode, ms ...types.DetectedMention) Input {
	return Input{
		Question: question,
		Decision: types.RouteDecision{
			QueryType:   queryType,
			ModeUsed:    mode,
			EntityCount: len(ms),
		},
		Mentions: ms,
	}
}
