package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, artifactType string, items []map[string]any) {
	t.Helper()
	env := map[string]any{
		"metadata": map[string]any{
			"artifact_type":  artifactType,
			"schema_version": "1.0",
			"record_count":   len(items),
		},
		"items": items,
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}

// writeDemoArtifacts lays down a small but complete artifact directory
// with one deliberately invalid record in entities and state_changes.
func writeDemoArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeArtifact(t, dir, ArtifactEntities, "entities", []map[string]any{
		{
			"entity_id": "char_frank_sheeran", "entity_type": "character",
			"canonical_name": "Frank Sheeran", "aliases": []string{"Frank", "The Irishman"},
			"mention_count": 120,
		},
		{
			"entity_id": "char_russell_bufalino", "entity_type": "character",
			"canonical_name": "Russell Bufalino", "mention_count": 80,
		},
		{
			"entity_id": "char_jimmy_hoffa", "entity_type": "character",
			"canonical_name": "Jimmy Hoffa", "mention_count": 100,
		},
		{
			"entity_id": "org_teamsters", "entity_type": "organization",
			"canonical_name": "Teamsters", "mention_count": 40,
		},
		// Missing canonical_name, must be dropped.
		{"entity_id": "char_broken", "entity_type": "character"},
	})

	writeArtifact(t, dir, ArtifactAliases, "entity_aliases", []map[string]any{
		{
			"alias_record_id": "al_001", "alias_raw": "The Irishman",
			"alias_normalized": "the irishman", "entity_id": "char_frank_sheeran",
			"entity_type": "character", "alias_kind": "nickname", "source": "manual_curation",
		},
		{
			"alias_record_id": "al_002", "alias_raw": "Russ",
			"alias_normalized": "russ", "entity_id": "char_russell_bufalino",
			"entity_type": "character", "alias_kind": "short_form", "source": "auto_ngram",
		},
	})

	writeArtifact(t, dir, ArtifactKGEdges, "kg_edges", []map[string]any{
		{
			"edge_id": "edge_001", "subject_id": "char_frank_sheeran",
			"predicate": "works_with", "object_id": "char_russell_bufalino",
			"stability": "stable", "evidence_refs": []string{"sc_002:blk_001"},
		},
		{
			"edge_id": "edge_002", "subject_id": "char_frank_sheeran",
			"predicate": "member_of", "object_id": "org_teamsters",
			"stability": "stable", "evidence_refs": []string{},
		},
		{
			"edge_id": "edge_003", "subject_id": "char_jimmy_hoffa",
			"predicate": "works_with", "object_id": "char_frank_sheeran",
			"stability": "volatile", "evidence_refs": []string{},
		},
		// Dangling object, kept in the edge list but invisible to
		// GetNeighbors.
		{
			"edge_id": "edge_004", "subject_id": "char_frank_sheeran",
			"predicate": "knows", "object_id": "char_ghost",
			"stability": "stable", "evidence_refs": []string{},
		},
	})

	writeArtifact(t, dir, ArtifactEvents, "events", []map[string]any{
		{
			"event_id": "ev_001", "scene_id": "sc_002",
			"event_type_l1": "meeting", "summary": "Frank meets Russell at the gas station in 1955",
			"participants":      []string{"char_frank_sheeran", "char_russell_bufalino"},
			"evidence_refs":     []string{"sc_002:blk_001"},
			"sequence_in_scene": 1, "confidence": 0.9,
		},
		{
			"event_id": "ev_002", "scene_id": "sc_001",
			"event_type_l1": "action", "summary": "Frank drives the meat truck",
			"participants":      []string{"char_frank_sheeran"},
			"evidence_refs":     []string{},
			"sequence_in_scene": 1, "confidence": 0.8,
		},
		{
			"event_id": "ev_003", "scene_id": "sc_002",
			"event_type_l1": "interaction", "summary": "Russell fixes the engine",
			"participants":      []string{"char_russell_bufalino"},
			"evidence_refs":     []string{},
			"sequence_in_scene": 2, "confidence": 0.7,
		},
		{
			"event_id": "ev_004", "scene_id": "sc_003",
			"event_type_l1": "conversation", "summary": "Frank and Hoffa talk on the phone",
			"participants":      []string{"char_frank_sheeran", "char_jimmy_hoffa"},
			"evidence_refs":     []string{"sc_003:blk_004"},
			"sequence_in_scene": 1, "confidence": 0.85,
		},
	})

	writeArtifact(t, dir, ArtifactTemporalEdges, "temporal_edges", []map[string]any{
		{
			"temporal_edge_id": "te_001", "from_event_id": "ev_002",
			"to_event_id": "ev_001", "relation": "before", "basis": "scene_order",
		},
	})

	writeArtifact(t, dir, ArtifactStateChanges, "state_changes", []map[string]any{
		{
			"state_change_id": "stc_001", "scene_id": "sc_002",
			"subject_id": "char_frank_sheeran", "object_id": "char_russell_bufalino",
			"state_dimension": "trust", "direction": "up", "magnitude": 0.4,
			"claim_type":        "explicit",
			"trigger_event_ids": []string{"ev_001"},
			"evidence_refs":     []string{"sc_002:blk_001"}, "confidence": 0.8,
		},
		{
			"state_change_id": "stc_002", "scene_id": "sc_003",
			"subject_id": "char_frank_sheeran", "object_id": "char_jimmy_hoffa",
			"state_dimension": "loyalty", "direction": "up", "magnitude": 0.3,
			"claim_type":        "inferred",
			"trigger_event_ids": []string{},
			"evidence_refs":     []string{}, "confidence": 0.6,
		},
		// Unknown claim type, must be dropped.
		{
			"state_change_id": "stc_broken", "scene_id": "sc_003",
			"subject_id": "char_frank_sheeran", "object_id": "char_jimmy_hoffa",
			"state_dimension": "trust", "direction": "down", "magnitude": 0.1,
			"claim_type": "guess",
		},
	})

	writeArtifact(t, dir, ArtifactSceneIndex, "scene_index", []map[string]any{
		{"scene_id": "sc_001", "scene_index": 1, "header_raw": "EXT. HIGHWAY - DAY"},
		{"scene_id": "sc_002", "scene_index": 2, "header_raw": "EXT. GAS STATION - DAY (1955)"},
		{"scene_id": "sc_003", "scene_index": 3, "header_raw": "INT. HOTEL ROOM - NIGHT"},
	})

	writeArtifact(t, dir, ArtifactScriptBlocks, "script_blocks", []map[string]any{
		{
			"block_id": "blk_001", "scene_id": "sc_002", "block_type": "dialogue",
			"text":          "You can get your truck fixed here.",
			"participants":  []string{"char_russell_bufalino"},
			"evidence_refs": []string{"sc_002:blk_001"},
		},
	})

	return dir
}
