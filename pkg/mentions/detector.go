// Package mentions detects entity mentions in question text using a
// tiered lexicon built from the graph-neighborhood store.
package mentions

import (
	"sort"
	"strings"
	"sync"

	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// Lexicon entry priorities. Longer phrases always win over shorter ones;
// priority only breaks ties between equal-length phrases.
const (
	priorityCanonical = 100
	priorityHint      = 90
	priorityNickname  = 80
	priorityAlias     = 75
	prioritySurname   = 70
)

// surnameMinLen filters out short surnames that are too collision-prone.
const surnameMinLen = 4

// shortFormHints maps hand-authored short forms to the canonical names of
// recurring demo entities. First names that several characters share stay
// out on purpose; an ambiguous token must not produce a match at all.
var shortFormHints = map[string][]string{
	"frank sheeran":    {"frank", "the irishman"},
	"jimmy hoffa":      {"hoffa", "jimmy"},
	"russell bufalino": {"russell", "russ"},
	"peggy sheeran":    {"peggy"},
	"bill bufalino":    {"bill"},
}

type entry struct {
	entityID      string
	canonicalName string
	entityType    string
	phrase        string
	kind          types.MatchKind
	priority      int
}

// Detector scans questions for entity mentions. The lexicon is built
// lazily from the KG store on first use and cached until Invalidate.
type Detector struct {
	kg store.KGReader

	mu      sync.Mutex
	lexicon []entry
	built   bool
}

// NewDetector creates a detector over the graph-neighborhood store.
func NewDetector(kg store.KGReader) *Detector {
	return &Detector{kg: kg}
}

// Invalidate drops the cached lexicon so the next Detect rebuilds it.
func (d *Detector) Invalidate() {
	d.mu.Lock()
	d.lexicon = nil
	d.built = false
	d.mu.Unlock()
}

// Detect returns the entity mentions found in question, at most one per
// entity, ordered by first occurrence. An unavailable store yields no
// mentions, never an error.
func (d *Detector) Detect(question string) []types.DetectedMention {
	lexicon := d.buildLexicon()
	if len(lexicon) == 0 {
		return nil
	}
	normalized := normalize(question)
	if normalized == "" {
		return nil
	}

	type span struct {
		entry entry
		start int
		end   int
	}
	var accepted []span
	for _, e := range lexicon {
		start := boundaryIndex(normalized, e.phrase)
		if start < 0 {
			continue
		}
		end := start + len(e.phrase)
		overlaps := false
		for _, a := range accepted {
			if start < a.end && a.start < end {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		accepted = append(accepted, span{entry: e, start: start, end: end})
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	seen := map[string]bool{}
	var out []types.DetectedMention
	for _, a := range accepted {
		if seen[a.entry.entityID] {
			continue
		}
		seen[a.entry.entityID] = true
		out = append(out, types.DetectedMention{
			EntityID:      a.entry.entityID,
			CanonicalName: a.entry.canonicalName,
			EntityType:    a.entry.entityType,
			MatchedText:   normalized[a.start:a.end],
			MatchKind:     a.entry.kind,
			StartIndex:    a.start,
		})
	}
	return out
}

func (d *Detector) buildLexicon() []entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.built {
		return d.lexicon
	}

	entities := d.kg.AllEntities()
	var raw []entry

	byCanonical := map[string]types.Entity{}
	for _, e := range entities {
		byCanonical[normalize(e.CanonicalName)] = e
		raw = append(raw, entry{
			entityID:      e.EntityID,
			canonicalName: e.CanonicalName,
			entityType:    e.EntityType,
			phrase:        normalize(e.CanonicalName),
			kind:          types.MatchCanonical,
			priority:      priorityCanonical,
		})
	}

	for canonical, hints := range shortFormHints {
		e, ok := byCanonical[canonical]
		if !ok {
			continue
		}
		for _, hint := range hints {
			raw = append(raw, entry{
				entityID:      e.EntityID,
				canonicalName: e.CanonicalName,
				entityType:    e.EntityType,
				phrase:        normalize(hint),
				kind:          types.MatchHint,
				priority:      priorityHint,
			})
		}
	}

	entityByID := map[string]types.Entity{}
	for _, e := range entities {
		entityByID[e.EntityID] = e
	}
	for _, alias := range d.kg.CuratedAliases() {
		e, ok := entityByID[alias.EntityID]
		if !ok {
			continue
		}
		phrase := alias.AliasNormalized
		if phrase == "" {
			phrase = alias.AliasRaw
		}
		priority := priorityAlias
		if alias.AliasKind == "nickname" {
			priority = priorityNickname
		}
		raw = append(raw, entry{
			entityID:      e.EntityID,
			canonicalName: e.CanonicalName,
			entityType:    e.EntityType,
			phrase:        normalize(phrase),
			kind:          types.MatchAlias,
			priority:      priority,
		})
	}

	// Surnames are auto-derived, but only when exactly one character owns
	// the surname: a shared surname must never produce a match.
	surnameOwners := map[string][]types.Entity{}
	for _, e := range entities {
		if e.EntityType != "character" {
			continue
		}
		parts := strings.Fields(normalize(e.CanonicalName))
		if len(parts) < 2 {
			continue
		}
		surname := parts[len(parts)-1]
		if len(surname) < surnameMinLen {
			continue
		}
		surnameOwners[surname] = append(surnameOwners[surname], e)
	}
	for surname, owners := range surnameOwners {
		if len(owners) != 1 {
			continue
		}
		e := owners[0]
		raw = append(raw, entry{
			entityID:      e.EntityID,
			canonicalName: e.CanonicalName,
			entityType:    e.EntityType,
			phrase:        surname,
			kind:          types.MatchAlias,
			priority:      prioritySurname,
		})
	}

	// Dedupe by (entity, phrase, kind), then order longest phrase first,
	// then priority, then lexicographic, so the most specific phrase is
	// always tried before its prefixes.
	seen := map[string]bool{}
	lexicon := make([]entry, 0, len(raw))
	for _, e := range raw {
		if e.phrase == "" {
			continue
		}
		key := e.entityID + "\x00" + e.phrase + "\x00" + string(e.kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		lexicon = append(lexicon, e)
	}
	sort.Slice(lexicon, func(i, j int) bool {
		a, b := lexicon[i], lexicon[j]
		if len(a.phrase) != len(b.phrase) {
			return len(a.phrase) > len(b.phrase)
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.phrase < b.phrase
	})

	d.lexicon = lexicon
	d.built = true
	return lexicon
}

// normalize lowercases and collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// boundaryIndex finds the first occurrence of phrase in text that is not
// flanked by alphanumeric characters. Returns -1 when no such occurrence
// exists.
func boundaryIndex(text, phrase string) int {
	offset := 0
	for {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(phrase)
		if (start == 0 || !isAlnum(text[start-1])) && (end == len(text) || !isAlnum(text[end])) {
			return start
		}
		offset = start + 1
		if offset >= len(text) {
			return -1
		}
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z'
}
