package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenlore/go-screenlore/pkg/types"
)

type fakeKG struct {
	entities []types.Entity
	aliases  []types.EntityAlias
	missing  []string
}

func (f *fakeKG) ListEntities(query, typeFilter string, limit int) []types.Entity { return nil }
func (f *fakeKG) GetNeighbors(entityID string) (*types.Neighborhood, bool)        { return nil, false }
func (f *fakeKG) AllEntities() []types.Entity                                     { return f.entities }
func (f *fakeKG) CuratedAliases() []types.EntityAlias                             { return f.aliases }
func (f *fakeKG) MissingArtifacts() []string                                      { return f.missing }

func demoKG() *fakeKG {
	return &fakeKG{
		entities: []types.Entity{
			{EntityID: "char_frank_sheeran", EntityType: "character", CanonicalName: "Frank Sheeran"},
			{EntityID: "char_peggy_sheeran", EntityType: "character", CanonicalName: "Peggy Sheeran"},
			{EntityID: "char_jimmy_hoffa", EntityType: "character", CanonicalName: "Jimmy Hoffa"},
			{EntityID: "char_russell_bufalino", EntityType: "character", CanonicalName: "Russell Bufalino"},
			{EntityID: "char_bill_bufalino", EntityType: "character", CanonicalName: "Bill Bufalino"},
			{EntityID: "org_teamsters", EntityType: "organization", CanonicalName: "Teamsters"},
		},
		aliases: []types.EntityAlias{
			{
				AliasRecordID:   "alias_001",
				AliasRaw:        "McGee",
				AliasNormalized: "mcgee",
				EntityID:        "char_russell_bufalino",
				AliasKind:       "nickname",
				Source:          "manual_curation",
			},
		},
	}
}

func ids(ms []types.DetectedMention) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.EntityID)
	}
	return out
}

func TestDetectCanonicalName(t *testing.T) {
	d := NewDetector(demoKG())
	got := d.Detect("Who are the key people connected to Frank Sheeran?")
	require.Len(t, got, 1)
	assert.Equal(t, "char_frank_sheeran", got[0].EntityID)
	assert.Equal(t, types.MatchCanonical, got[0].MatchKind)
	assert.Equal(t, "frank sheeran", got[0].MatchedText)
}

func TestDetectLongestPhraseWins(t *testing.T) {
	// "frank sheeran" must consume the span before the "frank" hint can.
	d := NewDetector(demoKG())
	got := d.Detect("Tell me about Frank Sheeran.")
	require.Len(t, got, 1)
	assert.Equal(t, types.MatchCanonical, got[0].MatchKind)
}

func TestDetectShortFormHints(t *testing.T) {
	d := NewDetector(demoKG())
	got := d.Detect("How does Peggy's relationship with Frank change over time?")
	require.Len(t, got, 2)
	// Ordered by first occurrence in the question.
	assert.Equal(t, "char_peggy_sheeran", got[0].EntityID)
	assert.Equal(t, "char_frank_sheeran", got[1].EntityID)
	assert.Equal(t, types.MatchHint, got[0].MatchKind)
	assert.Equal(t, types.MatchHint, got[1].MatchKind)
}

func TestDetectSharedSurnameNeverMatches(t *testing.T) {
	d := NewDetector(demoKG())
	// Two Sheerans and two Bufalinos exist, so bare surnames stay silent.
	assert.Empty(t, d.Detect("What did Sheeran do?"))
	assert.Empty(t, d.Detect("Where does Bufalino live?"))
	// Hoffa has exactly one owner and resolves.
	got := d.Detect("What happened to Hoffa at the end?")
	require.Len(t, got, 1)
	assert.Equal(t, "char_jimmy_hoffa", got[0].EntityID)
}

func TestDetectCuratedNickname(t *testing.T) {
	d := NewDetector(demoKG())
	got := d.Detect("Why does everyone call him McGee?")
	require.Len(t, got, 1)
	assert.Equal(t, "char_russell_bufalino", got[0].EntityID)
	assert.Equal(t, types.MatchAlias, got[0].MatchKind)

	got = d.Detect("Why do they call him the Irishman?")
	require.Len(t, got, 1)
	assert.Equal(t, "char_frank_sheeran", got[0].EntityID)
}

func TestDetectOnePerEntity(t *testing.T) {
	d := NewDetector(demoKG())
	got := d.Detect("Frank Sheeran, also called Frank, drove with Russell.")
	assert.Equal(t, []string{"char_frank_sheeran", "char_russell_bufalino"}, ids(got))
}

func TestDetectWordBoundaries(t *testing.T) {
	d := NewDetector(demoKG())
	// "hoffa" inside a longer token must not fire.
	assert.Empty(t, d.Detect("The hoffas1975 file is sealed."))
	// Punctuation is a valid boundary.
	got := d.Detect("Was it Hoffa?")
	require.Len(t, got, 1)
	assert.Equal(t, "char_jimmy_hoffa", got[0].EntityID)
}

func TestDetectNoOverlappingSpans(t *testing.T) {
	d := NewDetector(demoKG())
	got := d.Detect("Russell Bufalino and Jimmy Hoffa meet Frank.")
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		prev := got[i-1]
		assert.GreaterOrEqual(t, got[i].StartIndex, prev.StartIndex+len(prev.MatchedText))
	}
}

func TestDetectEmptyStore(t *testing.T) {
	d := NewDetector(&fakeKG{missing: []string{"entities.json"}})
	assert.Empty(t, d.Detect("Who is Frank Sheeran?"))
}

func TestInvalidateRebuildsLexicon(t *testing.T) {
	kg := &fakeKG{}
	d := NewDetector(kg)
	assert.Empty(t, d.Detect("Who is Frank Sheeran?"))

	kg.entities = demoKG().entities
	// Still served from the cached empty lexicon.
	assert.Empty(t, d.Detect("Who is Frank Sheeran?"))

	d.Invalidate()
	assert.NotEmpty(t, d.Detect("Who is Frank Sheeran?"))
}
