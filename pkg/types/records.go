package types

// Records in this file mirror the offline pipeline's JSON artifacts. They
// are read-only from the query pipeline's point of view: builders consume
// them by ID and never mutate them.

// Entity is a canonical entity record from the graph-neighborhood store.
type Entity struct {
	EntityID      string   `json:"entity_id"`
	EntityType    string   `json:"entity_type"`
	CanonicalName string   `json:"canonical_name"`
	Aliases       []string `json:"aliases,omitempty"`
	FirstSceneID  string   `json:"first_scene_id,omitempty"`
	MentionCount  int      `json:"mention_count,omitempty"`
}

// EntityAlias is one surface form mapped to an entity, tagged with where
// the alias came from so the mention lexicon can pick curated tiers.
type EntityAlias struct {
	AliasRecordID   string `json:"alias_record_id"`
	AliasRaw        string `json:"alias_raw"`
	AliasNormalized string `json:"alias_normalized"`
	EntityID        string `json:"entity_id"`
	EntityType      string `json:"entity_type"`
	AliasKind       string `json:"alias_kind"`
	Source          string `json:"source"`
}

// KGEdge is a labeled, stability-tagged relationship between two entities.
type KGEdge struct {
	EdgeID       string   `json:"edge_id"`
	SubjectID    string   `json:"subject_id"`
	Predicate    string   `json:"predicate"`
	ObjectID     string   `json:"object_id"`
	Stability    string   `json:"stability"`
	EvidenceRefs []string `json:"evidence_refs"`
}

// NeighborDirection says which side of an edge the focus entity is on.
type NeighborDirection string

const (
	DirectionOut NeighborDirection = "out"
	DirectionIn  NeighborDirection = "in"
)

// Neighbor pairs an edge with the entity on its far side.
type Neighbor struct {
	Direction NeighborDirection `json:"direction"`
	Edge      KGEdge            `json:"edge"`
	Neighbor  Entity            `json:"neighbor"`
}

// Neighborhood is an entity plus all edges touching it.
type Neighborhood struct {
	Entity    Entity     `json:"entity"`
	Neighbors []Neighbor `json:"neighbors"`
}

// TraceEvent is a narrative event extracted from one scene.
type TraceEvent struct {
	EventID         string   `json:"event_id"`
	SceneID         string   `json:"scene_id"`
	EventTypeL1     string   `json:"event_type_l1"`
	EventTypeL2     string   `json:"event_type_l2"`
	Summary         string   `json:"summary"`
	Participants    []string `json:"participants"`
	EvidenceRefs    []string `json:"evidence_refs"`
	SequenceInScene int      `json:"sequence_in_scene"`
	Confidence      float64  `json:"confidence"`
}

// TemporalEdge orders two events in the narrative-trace store.
type TemporalEdge struct {
	TemporalEdgeID string `json:"temporal_edge_id"`
	FromEventID    string `json:"from_event_id"`
	ToEventID      string `json:"to_event_id"`
	Relation       string `json:"relation"`
	Basis          string `json:"basis"`
}

// ClaimType distinguishes directly stated state changes from heuristically
// derived ones.
type ClaimType string

const (
	ClaimExplicit ClaimType = "explicit"
	ClaimInferred ClaimType = "inferred"
)

// StateChange is an inferred or explicit relationship state-change claim.
type StateChange struct {
	StateChangeID   string    `json:"state_change_id"`
	SceneID         string    `json:"scene_id"`
	SubjectID       string    `json:"subject_id"`
	ObjectID        string    `json:"object_id"`
	StateDimension  string    `json:"state_dimension"`
	Direction       string    `json:"direction"`
	Magnitude       float64   `json:"magnitude"`
	ClaimType       ClaimType `json:"claim_type"`
	TriggerEventIDs []string  `json:"trigger_event_ids"`
	EvidenceRefs    []string  `json:"evidence_refs"`
	Confidence      float64   `json:"confidence"`
}

// SceneSlice is one scene of a timeline view: its ordered events plus the
// number of state-change claims anchored in the scene.
type SceneSlice struct {
	SceneID          string       `json:"scene_id"`
	SceneIndex       int          `json:"scene_index"`
	HeaderRaw        string       `json:"header_raw"`
	Events           []TraceEvent `json:"events"`
	StateChangeCount int          `json:"state_change_count"`
}

// ScriptBlock is a raw text block from the source screenplay, used only by
// the lexical baseline.
type ScriptBlock struct {
	BlockID      string   `json:"block_id"`
	SceneID      string   `json:"scene_id"`
	BlockType    string   `json:"block_type"`
	Text         string   `json:"text"`
	Participants []string `json:"participants,omitempty"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

// PairKey builds the canonical `a::b` key for an unordered entity pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "::" + b
}
