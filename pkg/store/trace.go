package store

import (
	"strings"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// ListStateChanges returns state-change claims matching the filter, in
// stable ID order.
func (sn *Snapshot) ListStateChanges(f StateChangeFilter) []types.StateChange {
	var out []types.StateChange
	for _, sc := range sn.stateChanges {
		if f.PairKey != "" && types.PairKey(sc.SubjectID, sc.ObjectID) != f.PairKey {
			continue
		}
		if f.EntityID != "" && sc.SubjectID != f.EntityID && sc.ObjectID != f.EntityID {
			continue
		}
		out = append(out, sc)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// ListTraceEvents returns events matching the filter in narrative order
// (scene order, then in-scene sequence).
func (sn *Snapshot) ListTraceEvents(f EventFilter) []types.TraceEvent {
	terms := textTerms(f.Text)
	var out []types.TraceEvent
	for _, ev := range sn.events {
		if !sn.eventMatches(ev, f, terms) {
			continue
		}
		out = append(out, ev)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

func (sn *Snapshot) eventMatches(ev types.TraceEvent, f EventFilter, terms []string) bool {
	if f.EventType != "" && ev.EventTypeL1 != f.EventType && ev.EventTypeL2 != f.EventType {
		return false
	}
	if f.EntityID != "" && !containsString(ev.Participants, f.EntityID) {
		return false
	}
	if f.PairKey != "" {
		ids := strings.SplitN(f.PairKey, "::", 2)
		if len(ids) != 2 || !containsString(ev.Participants, ids[0]) || !containsString(ev.Participants, ids[1]) {
			return false
		}
	}
	if f.Year != "" {
		haystack := ev.Summary + " " + sn.sceneHeaders[ev.SceneID]
		if !strings.Contains(haystack, f.Year) {
			return false
		}
	}
	if len(terms) > 0 {
		summary := normalizeText(ev.Summary)
		matched := false
		for _, term := range terms {
			if strings.Contains(summary, term) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// GetEvents resolves event IDs to records, skipping unknown IDs.
func (sn *Snapshot) GetEvents(ids []string) []types.TraceEvent {
	var out []types.TraceEvent
	for _, id := range ids {
		if ev, ok := sn.eventByID[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// GetTimelineSlice groups matching events by scene in scene order, up to
// MaxScenes scenes, and overlays per-scene state-change counts.
func (sn *Snapshot) GetTimelineSlice(f TimelineFilter) []types.SceneSlice {
	maxScenes := f.MaxScenes
	if maxScenes <= 0 {
		maxScenes = 6
	}
	eventFilter := EventFilter{EntityID: f.EntityID, PairKey: f.PairKey, Year: f.Year}

	changesByScene := map[string]int{}
	for _, sc := range sn.stateChanges {
		changesByScene[sc.SceneID]++
	}

	var slices []types.SceneSlice
	sliceIndex := map[string]int{}
	for _, ev := range sn.events {
		if !sn.eventMatches(ev, eventFilter, nil) {
			continue
		}
		idx, ok := sliceIndex[ev.SceneID]
		if !ok {
			if len(slices) >= maxScenes {
				break
			}
			idx = len(slices)
			sliceIndex[ev.SceneID] = idx
			slices = append(slices, types.SceneSlice{
				SceneID:          ev.SceneID,
				SceneIndex:       sn.sceneOrder[ev.SceneID],
				HeaderRaw:        sn.sceneHeaders[ev.SceneID],
				StateChangeCount: changesByScene[ev.SceneID],
			})
		}
		slices[idx].Events = append(slices[idx].Events, ev)
	}
	return slices
}

// ScriptBlocks returns the raw screenplay blocks.
func (sn *Snapshot) ScriptBlocks() []types.ScriptBlock {
	out := make([]types.ScriptBlock, len(sn.blocks))
	copy(out, sn.blocks)
	return out
}

// textTerms extracts the free-text filter terms: normalized tokens of at
// least four characters, so short function words never filter anything.
func textTerms(text string) []string {
	var terms []string
	for _, tok := range strings.Fields(normalizeText(text)) {
		tok = strings.Trim(tok, ".,;:!?'\"()-")
		if len(tok) >= 4 {
			terms = append(terms, tok)
		}
	}
	return terms
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
