package store

import (
	"path/filepath"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// loadSnapshot reads every artifact it can find under dir. Missing or
// unreadable files are recorded, not fatal: builders answer with degraded
// confidence naming the absent artifacts.
func loadSnapshot(dir string) *Snapshot {
	sn := &Snapshot{dropped: map[string]int{}}

	load := func(name string, decode func(*envelope) int) {
		env, err := readEnvelope(filepath.Join(dir, name))
		if err != nil {
			sn.missing = append(sn.missing, name)
			return
		}
		sn.dropped[name] = decode(env)
	}

	load(ArtifactEntities, func(env *envelope) int {
		var n int
		sn.entities, n = decodeItems(env, func(e types.Entity) bool {
			return e.EntityID != "" && e.CanonicalName != "" && e.EntityType != ""
		})
		return n
	})
	load(ArtifactAliases, func(env *envelope) int {
		var n int
		sn.aliases, n = decodeItems(env, func(a types.EntityAlias) bool {
			return a.EntityID != "" && (a.AliasNormalized != "" || a.AliasRaw != "")
		})
		return n
	})
	load(ArtifactKGEdges, func(env *envelope) int {
		var n int
		sn.edges, n = decodeItems(env, func(e types.KGEdge) bool {
			return e.EdgeID != "" && e.SubjectID != "" && e.Predicate != "" && e.ObjectID != ""
		})
		return n
	})
	load(ArtifactEvents, func(env *envelope) int {
		var n int
		sn.events, n = decodeItems(env, func(e types.TraceEvent) bool {
			return e.EventID != "" && e.SceneID != ""
		})
		return n
	})
	load(ArtifactTemporalEdges, func(env *envelope) int {
		var n int
		sn.temporal, n = decodeItems(env, func(e types.TemporalEdge) bool {
			return e.TemporalEdgeID != "" && e.FromEventID != "" && e.ToEventID != ""
		})
		return n
	})
	load(ArtifactStateChanges, func(env *envelope) int {
		var n int
		sn.stateChanges, n = decodeItems(env, func(sc types.StateChange) bool {
			return sc.StateChangeID != "" && sc.SubjectID != "" && sc.ObjectID != "" &&
				sc.StateDimension != "" && sc.Direction != "" &&
				(sc.ClaimType == types.ClaimExplicit || sc.ClaimType == types.ClaimInferred)
		})
		return n
	})
	load(ArtifactSceneIndex, func(env *envelope) int {
		var n int
		sn.scenes, n = decodeItems(env, func(r sceneRow) bool {
			return r.SceneID != ""
		})
		return n
	})
	load(ArtifactScriptBlocks, func(env *envelope) int {
		var n int
		sn.blocks, n = decodeItems(env, func(b types.ScriptBlock) bool {
			return b.BlockID != "" && b.Text != ""
		})
		return n
	})

	sn.buildIndexes()
	return sn
}
