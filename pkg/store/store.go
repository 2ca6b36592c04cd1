// Package store loads the JSON graph artifacts produced by the offline
// pipeline and exposes them to the query pipeline through typed, read-only
// snapshots. Loading is memoized process-wide; Invalidate drops the cached
// snapshot so the next read reloads from disk.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// Artifact file names, as written by the offline build pipeline.
const (
	ArtifactEntities      = "entities.json"
	ArtifactAliases       = "entity_aliases.json"
	ArtifactKGEdges       = "kg_edges.json"
	ArtifactEvents        = "events.json"
	ArtifactTemporalEdges = "temporal_edges.json"
	ArtifactStateChanges  = "state_changes.json"
	ArtifactSceneIndex    = "scene_index.json"
	ArtifactScriptBlocks  = "script_blocks.json"
)

// ErrNotLoaded is returned when a snapshot is requested before any
// artifact could be read.
var ErrNotLoaded = errors.New("store: no artifacts loaded")

// KGReader is the read API over the graph-neighborhood store.
type KGReader interface {
	// ListEntities searches entities by free text over canonical names and
	// aliases. An empty typeFilter matches every type.
	ListEntities(query, typeFilter string, limit int) []types.Entity
	// GetNeighbors returns an entity and every edge touching it.
	GetNeighbors(entityID string) (*types.Neighborhood, bool)
	// AllEntities returns every entity record, ordered by entity ID.
	AllEntities() []types.Entity
	// CuratedAliases returns alias records whose source is manual curation.
	CuratedAliases() []types.EntityAlias
	// MissingArtifacts names the artifact files that could not be read.
	MissingArtifacts() []string
}

// TraceReader is the read API over the narrative-trace store.
type TraceReader interface {
	ListStateChanges(f StateChangeFilter) []types.StateChange
	ListTraceEvents(f EventFilter) []types.TraceEvent
	// GetEvents resolves event IDs to records, skipping unknown IDs.
	GetEvents(ids []string) []types.TraceEvent
	GetTimelineSlice(f TimelineFilter) []types.SceneSlice
	// ScriptBlocks returns the raw screenplay blocks for lexical retrieval.
	ScriptBlocks() []types.ScriptBlock
	MissingArtifacts() []string
}

// StateChangeFilter narrows state-change claims. Zero values match all.
type StateChangeFilter struct {
	EntityID string
	PairKey  string
	Limit    int
}

// EventFilter narrows trace events. Zero values match all.
type EventFilter struct {
	EntityID  string
	PairKey   string
	Text      string
	Year      string
	EventType string
	Limit     int
}

// TimelineFilter narrows a scene-ordered timeline view.
type TimelineFilter struct {
	EntityID  string
	PairKey   string
	Year      string
	MaxScenes int
}

// Store memoizes a Snapshot of the artifact directory.
type Store struct {
	dir string

	mu   sync.Mutex
	snap *Snapshot
}

// New creates a store over an artifact directory. Nothing is read until
// the first Snapshot call.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Snapshot returns the memoized snapshot, loading it on first use. A
// snapshot is returned even when some artifact files are missing; the
// missing files are recorded on the snapshot so builders can degrade
// gracefully. ErrNotLoaded is returned only when no artifact at all could
// be read.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}
	snap := loadSnapshot(s.dir)
	if len(snap.missing) == artifactCount {
		return nil, fmt.Errorf("%w: no readable artifacts in %s", ErrNotLoaded, s.dir)
	}
	s.snap = snap
	return snap, nil
}

// Invalidate drops the cached snapshot. Used by the reload hook only,
// never mid-request.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

const artifactCount = 8

// Snapshot is an immutable view of all loaded artifacts plus the indexes
// the readers need. Safe for concurrent use.
type Snapshot struct {
	entities     []types.Entity
	aliases      []types.EntityAlias
	edges        []types.KGEdge
	events       []types.TraceEvent
	temporal     []types.TemporalEdge
	stateChanges []types.StateChange
	scenes       []sceneRow
	blocks       []types.ScriptBlock

	entityByID   map[string]types.Entity
	edgesByID    map[string][]types.KGEdge
	eventByID    map[string]types.TraceEvent
	sceneOrder   map[string]int
	sceneHeaders map[string]string

	missing []string
	dropped map[string]int
}

type sceneRow struct {
	SceneID    string `json:"scene_id"`
	SceneIndex int    `json:"scene_index"`
	HeaderRaw  string `json:"header_raw"`
}

// MissingArtifacts names the artifact files that were absent or unreadable.
func (sn *Snapshot) MissingArtifacts() []string {
	out := make([]string, len(sn.missing))
	copy(out, sn.missing)
	return out
}

// DroppedRecords reports how many records per artifact failed strict
// field validation and were discarded.
func (sn *Snapshot) DroppedRecords() map[string]int {
	out := make(map[string]int, len(sn.dropped))
	for k, v := range sn.dropped {
		out[k] = v
	}
	return out
}

// RecordCounts reports loaded record counts per artifact file.
func (sn *Snapshot) RecordCounts() map[string]int {
	return map[string]int{
		ArtifactEntities:      len(sn.entities),
		ArtifactAliases:       len(sn.aliases),
		ArtifactKGEdges:       len(sn.edges),
		ArtifactEvents:        len(sn.events),
		ArtifactTemporalEdges: len(sn.temporal),
		ArtifactStateChanges:  len(sn.stateChanges),
		ArtifactSceneIndex:    len(sn.scenes),
		ArtifactScriptBlocks:  len(sn.blocks),
	}
}

func (sn *Snapshot) sceneRank(sceneID string) int {
	if i, ok := sn.sceneOrder[sceneID]; ok {
		return i
	}
	return 1 << 30
}

func (sn *Snapshot) buildIndexes() {
	sn.entityByID = make(map[string]types.Entity, len(sn.entities))
	for _, e := range sn.entities {
		sn.entityByID[e.EntityID] = e
	}
	sn.edgesByID = make(map[string][]types.KGEdge)
	for _, e := range sn.edges {
		sn.edgesByID[e.SubjectID] = append(sn.edgesByID[e.SubjectID], e)
		sn.edgesByID[e.ObjectID] = append(sn.edgesByID[e.ObjectID], e)
	}
	sn.sceneOrder = make(map[string]int, len(sn.scenes))
	sn.sceneHeaders = make(map[string]string, len(sn.scenes))
	for _, row := range sn.scenes {
		sn.sceneOrder[row.SceneID] = row.SceneIndex
		sn.sceneHeaders[row.SceneID] = row.HeaderRaw
	}
	sort.Slice(sn.events, func(i, j int) bool {
		a, b := sn.events[i], sn.events[j]
		if ra, rb := sn.sceneRank(a.SceneID), sn.sceneRank(b.SceneID); ra != rb {
			return ra < rb
		}
		if a.SequenceInScene != b.SequenceInScene {
			return a.SequenceInScene < b.SequenceInScene
		}
		return a.EventID < b.EventID
	})
	sn.eventByID = make(map[string]types.TraceEvent, len(sn.events))
	for _, ev := range sn.events {
		sn.eventByID[ev.EventID] = ev
	}
	sort.Slice(sn.stateChanges, func(i, j int) bool {
		return sn.stateChanges[i].StateChangeID < sn.stateChanges[j].StateChangeID
	})
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
