package store

import (
	"sort"
	"strings"

	"github.com/screenlore/go-screenlore/pkg/types"
)

// ListEntities searches canonical names and aliases for each term in the
// query. Results are ordered by match quality (canonical-name hits before
// alias hits), then mention count descending, then entity ID.
func (sn *Snapshot) ListEntities(query, typeFilter string, limit int) []types.Entity {
	if limit <= 0 {
		limit = 10
	}
	terms := strings.Fields(normalizeText(query))

	type scored struct {
		entity types.Entity
		score  int
	}
	var hits []scored
	for _, e := range sn.entities {
		if typeFilter != "" && e.EntityType != typeFilter {
			continue
		}
		name := normalizeText(e.CanonicalName)
		score := 0
		for _, term := range terms {
			if len(term) < 3 {
				continue
			}
			if strings.Contains(name, term) {
				score += 2
				continue
			}
			for _, alias := range e.Aliases {
				if strings.Contains(normalizeText(alias), term) {
					score++
					break
				}
			}
		}
		if score > 0 || len(terms) == 0 {
			hits = append(hits, scored{entity: e, score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].entity.MentionCount != hits[j].entity.MentionCount {
			return hits[i].entity.MentionCount > hits[j].entity.MentionCount
		}
		return hits[i].entity.EntityID < hits[j].entity.EntityID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]types.Entity, len(hits))
	for i, h := range hits {
		out[i] = h.entity
	}
	return out
}

// GetNeighbors returns the entity and every KG edge touching it. The
// second return is false when the entity is unknown.
func (sn *Snapshot) GetNeighbors(entityID string) (*types.Neighborhood, bool) {
	entity, ok := sn.entityByID[entityID]
	if !ok {
		return nil, false
	}
	hood := &types.Neighborhood{Entity: entity}
	for _, edge := range sn.edgesByID[entityID] {
		direction := types.DirectionOut
		otherID := edge.ObjectID
		if edge.ObjectID == entityID && edge.SubjectID != entityID {
			direction = types.DirectionIn
			otherID = edge.SubjectID
		}
		other, ok := sn.entityByID[otherID]
		if !ok {
			continue
		}
		hood.Neighbors = append(hood.Neighbors, types.Neighbor{
			Direction: direction,
			Edge:      edge,
			Neighbor:  other,
		})
	}
	return hood, true
}

// AllEntities returns every entity record ordered by entity ID.
func (sn *Snapshot) AllEntities() []types.Entity {
	out := make([]types.Entity, len(sn.entities))
	copy(out, sn.entities)
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// CuratedAliases returns alias records tagged as manually sourced.
func (sn *Snapshot) CuratedAliases() []types.EntityAlias {
	var out []types.EntityAlias
	for _, a := range sn.aliases {
		if strings.Contains(a.Source, "manual") {
			out = append(out, a)
		}
	}
	return out
}
