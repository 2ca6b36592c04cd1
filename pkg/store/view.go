package store

import "github.com/screenlore/go-screenlore/pkg/types"

// KGView and TraceView adapt a memoized Store to the reader interfaces.
// When no snapshot can be loaded at all they report every artifact as
// missing and return empty results, so callers degrade instead of
// erroring.

// KGView is a lazy KGReader over a Store.
type KGView struct {
	store *Store
}

// NewKGView creates a KG reader over the store.
func NewKGView(s *Store) *KGView {
	return &KGView{store: s}
}

func (v *KGView) snapshot() *Snapshot {
	snap, err := v.store.Snapshot()
	if err != nil {
		return nil
	}
	return snap
}

// ListEntities implements KGReader.
func (v *KGView) ListEntities(query, typeFilter string, limit int) []types.Entity {
	if sn := v.snapshot(); sn != nil {
		return sn.ListEntities(query, typeFilter, limit)
	}
	return nil
}

// GetNeighbors implements KGReader.
func (v *KGView) GetNeighbors(entityID string) (*types.Neighborhood, bool) {
	if sn := v.snapshot(); sn != nil {
		return sn.GetNeighbors(entityID)
	}
	return nil, false
}

// AllEntities implements KGReader.
func (v *KGView) AllEntities() []types.Entity {
	if sn := v.snapshot(); sn != nil {
		return sn.AllEntities()
	}
	return nil
}

// CuratedAliases implements KGReader.
func (v *KGView) CuratedAliases() []types.EntityAlias {
	if sn := v.snapshot(); sn != nil {
		return sn.CuratedAliases()
	}
	return nil
}

// MissingArtifacts implements KGReader.
func (v *KGView) MissingArtifacts() []string {
	if sn := v.snapshot(); sn != nil {
		return sn.MissingArtifacts()
	}
	return allArtifacts()
}

// TraceView is a lazy TraceReader over a Store.
type TraceView struct {
	store *Store
}

// NewTraceView creates a trace reader over the store.
func NewTraceView(s *Store) *TraceView {
	return &TraceView{store: s}
}

func (v *TraceView) snapshot() *Snapshot {
	snap, err := v.store.Snapshot()
	if err != nil {
		return nil
	}
	return snap
}

// ListStateChanges implements TraceReader.
func (v *TraceView) ListStateChanges(f StateChangeFilter) []types.StateChange {
	if sn := v.snapshot(); sn != nil {
		return sn.ListStateChanges(f)
	}
	return nil
}

// ListTraceEvents implements TraceReader.
func (v *TraceView) ListTraceEvents(f EventFilter) []types.TraceEvent {
	if sn := v.snapshot(); sn != nil {
		return sn.ListTraceEvents(f)
	}
	return nil
}

// GetEvents implements TraceReader.
func (v *TraceView) GetEvents(ids []string) []types.TraceEvent {
	if sn := v.snapshot(); sn != nil {
		return sn.GetEvents(ids)
	}
	return nil
}

// GetTimelineSlice implements TraceReader.
func (v *TraceView) GetTimelineSlice(f TimelineFilter) []types.SceneSlice {
	if sn := v.snapshot(); sn != nil {
		return sn.GetTimelineSlice(f)
	}
	return nil
}

// ScriptBlocks implements TraceReader.
func (v *TraceView) ScriptBlocks() []types.ScriptBlock {
	if sn := v.snapshot(); sn != nil {
		return sn.ScriptBlocks()
	}
	return nil
}

// MissingArtifacts implements TraceReader.
func (v *TraceView) MissingArtifacts() []string {
	if sn := v.snapshot(); sn != nil {
		return sn.MissingArtifacts()
	}
	return allArtifacts()
}

func allArtifacts() []string {
	return []string{
		ArtifactEntities,
		ArtifactAliases,
		ArtifactKGEdges,
		ArtifactEvents,
		ArtifactTemporalEdges,
		ArtifactStateChanges,
		ArtifactSceneIndex,
		ArtifactScriptBlocks,
	}
}
