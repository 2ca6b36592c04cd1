// Package types defines the core data model shared by the query pipeline:
// requests, route decisions, structured answers, and the read-only records
// exposed by the graph stores.
package types

// Mode identifies the answer-construction strategy used for a request.
type Mode string

const (
	// ModeAuto lets the router pick a mode from the query type.
	ModeAuto Mode = "auto"
	// ModeKG answers from the graph-neighborhood store.
	ModeKG Mode = "kg"
	// ModeNTG answers from the narrative-trace store.
	ModeNTG Mode = "ntg"
	// ModeHybrid composes the KG and NTG strategies.
	ModeHybrid Mode = "hybrid"
	// ModeBaselineRAG is the lexical-retrieval foil.
	ModeBaselineRAG Mode = "baseline_rag"
	// ModeBaselineAlias is accepted on input and mapped to ModeBaselineRAG.
	ModeBaselineAlias Mode = "baseline"
)

// AnswerModes are the modes a response may report. ModeAuto and the
// baseline alias are request-only values.
var AnswerModes = []Mode{ModeKG, ModeNTG, ModeHybrid, ModeBaselineRAG}

// RequestModes are the modes a request may carry: every answer mode plus
// the request-only auto and baseline alias values.
var RequestModes = []Mode{
	ModeAuto, ModeKG, ModeNTG, ModeHybrid, ModeBaselineRAG, ModeBaselineAlias,
}

// IsRequestMode reports whether m is an accepted preferred_mode value.
// The empty mode is accepted and treated as auto.
func IsRequestMode(m Mode) bool {
	if m == "" {
		return true
	}
	for _, x := range RequestModes {
		if x == m {
			return true
		}
	}
	return false
}

// QueryType classifies what kind of question was asked.
type QueryType string

const (
	QueryTypeFact        QueryType = "fact"
	QueryTypeTimeline    QueryType = "timeline"
	QueryTypeStateChange QueryType = "state_change"
	QueryTypeCausalChain QueryType = "causal_chain"
	QueryTypeEvidence    QueryType = "evidence"
	QueryTypeComparison  QueryType = "comparison"
)

// QueryTypes is the closed set of query types.
var QueryTypes = []QueryType{
	QueryTypeFact,
	QueryTypeTimeline,
	QueryTypeStateChange,
	QueryTypeCausalChain,
	QueryTypeEvidence,
	QueryTypeComparison,
}

// QueryRequest is an inbound question. It is immutable once created.
type QueryRequest struct {
	Question                  string `json:"question"`
	PreferredMode             Mode   `json:"preferred_mode,omitempty"`
	IncludeEvidence           bool   `json:"include_evidence,omitempty"`
	IncludeBaselineComparison bool   `json:"include_baseline_comparison,omitempty"`
}

// MatchKind says which lexicon tier produced an entity mention.
type MatchKind string

const (
	MatchCanonical MatchKind = "canonical"
	MatchAlias     MatchKind = "alias"
	MatchHint      MatchKind = "hint"
)

// DetectedMention is one entity mention found in a question. At most one
// mention is reported per entity, ordered by first occurrence.
type DetectedMention struct {
	EntityID      string    `json:"entity_id"`
	CanonicalName string    `json:"canonical_name"`
	EntityType    string    `json:"entity_type"`
	MatchedText   string    `json:"matched_text"`
	MatchKind     MatchKind `json:"match_kind"`
	StartIndex    int       `json:"start_index"`
}

// RouteDecision is the router's output. It is a pure function of the
// question text, the preferred mode, and the detected entity count.
type RouteDecision struct {
	QueryType   QueryType `json:"query_type"`
	ModeUsed    Mode      `json:"mode_used"`
	Reasoning   string    `json:"reasoning"`
	Signals     []string  `json:"signals,omitempty"`
	EntityCount int       `json:"entity_count"`
}

// Answer is the structured answer core produced by every builder and
// returned to callers after normalization.
type Answer struct {
	AnswerText       string    `json:"answer_text"`
	ModeUsed         Mode      `json:"mode_used"`
	QueryType        QueryType `json:"query_type"`
	Confidence       float64   `json:"confidence"`
	EntitiesUsed     []string  `json:"entities_used"`
	EventsUsed       []string  `json:"events_used"`
	StateChangesUsed []string  `json:"state_changes_used"`
	EvidenceRefs     []string  `json:"evidence_refs"`
	ReasoningNotes   string    `json:"reasoning_notes"`
}

// QueryResponse is the stable response contract for the query endpoint.
type QueryResponse struct {
	Question string `json:"question"`
	Answer
	BaselineComparison *Answer `json:"baseline_comparison"`
}
