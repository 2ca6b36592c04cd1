package answer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenlore/go-screenlore/pkg/types"
)

func validAnswer() types.Answer {
	return types.Answer{
		AnswerText:       "Frank Sheeran is connected to:\n- Russell Bufalino (works_with, stable)",
		ModeUsed:         types.ModeKG,
		QueryType:        types.QueryTypeFact,
		Confidence:       0.6,
		EntitiesUsed:     []string{"char_frank_sheeran", "char_russell_bufalino"},
		EventsUsed:       []string{},
		StateChangesUsed: []string{},
		EvidenceRefs:     []string{"sc_012:blk_044"},
		ReasoningNotes:   "kg: ranked 1 edges around char_frank_sheeran, showing 1",
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		a := validAnswer()
		a.Confidence = tt.in
		assert.Equal(t, tt.want, Normalize(a).Confidence)
	}
}

func TestNormalizeDedupesAndTrims(t *testing.T) {
	a := validAnswer()
	a.AnswerText = "  padded text \n"
	a.EntitiesUsed = []string{"e1", "e2", "e1", "", " e2 "}
	got := Normalize(a)
	assert.Equal(t, "padded text", got.AnswerText)
	assert.Equal(t, []string{"e1", "e2"}, got.EntitiesUsed)
}

func TestNormalizeNeverReturnsNilLists(t *testing.T) {
	got := Normalize(types.Answer{AnswerText: "x"})
	assert.NotNil(t, got.EntitiesUsed)
	assert.NotNil(t, got.EventsUsed)
	assert.NotNil(t, got.StateChangesUsed)
	assert.NotNil(t, got.EvidenceRefs)
}

func TestNormalizeEvidenceWarning(t *testing.T) {
	a := validAnswer()
	a.EventsUsed = []string{"ev_001"}
	a.EvidenceRefs = nil
	got := Normalize(a)
	assert.Contains(t, got.ReasoningNotes, EvidenceWarning)

	// Cited events backed by evidence get no warning.
	a = validAnswer()
	a.EventsUsed = []string{"ev_001"}
	got = Normalize(a)
	assert.NotContains(t, got.ReasoningNotes, EvidenceWarning)

	// State changes alone also trigger the warning.
	a = validAnswer()
	a.StateChangesUsed = []string{"stc_004"}
	a.EvidenceRefs = nil
	a.ReasoningNotes = ""
	got = Normalize(a)
	assert.Equal(t, EvidenceWarning, got.ReasoningNotes)
}

func TestNormalizeIdempotent(t *testing.T) {
	a := validAnswer()
	a.EventsUsed = []string{"ev_001", "ev_001"}
	a.EvidenceRefs = nil
	a.Confidence = 1.4
	once := Normalize(a)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
	// The warning must not be appended a second time.
	assert.Equal(t, 1, countOccurrences(twice.ReasoningNotes, EvidenceWarning))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestValidateAcceptsWellFormedAnswer(t *testing.T) {
	require.NoError(t, Validate(validAnswer()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Answer)
	}{
		{"empty answer text", func(a *types.Answer) { a.AnswerText = "  " }},
		{"unknown mode", func(a *types.Answer) { a.ModeUsed = "oracle" }},
		{"auto is not an answer mode", func(a *types.Answer) { a.ModeUsed = types.ModeAuto }},
		{"unknown query type", func(a *types.Answer) { a.QueryType = "riddle" }},
		{"confidence above one", func(a *types.Answer) { a.Confidence = 1.01 }},
		{"negative confidence", func(a *types.Answer) { a.Confidence = -0.1 }},
		{"nan confidence", func(a *types.Answer) { a.Confidence = math.NaN() }},
		{"nil events list", func(a *types.Answer) { a.EventsUsed = nil }},
		{"empty id in list", func(a *types.Answer) { a.EntitiesUsed = []string{"e1", ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAnswer()
			tt.mutate(&a)
			assert.Error(t, Validate(a))
		})
	}
}

func TestValidateBaselineAliasIsNotAMode(t *testing.T) {
	a := validAnswer()
	a.ModeUsed = types.ModeBaselineAlias
	assert.Error(t, Validate(a))
	a.ModeUsed = types.ModeBaselineRAG
	assert.NoError(t, Validate(a))
}

func TestValidateResponse(t *testing.T) {
	resp := types.QueryResponse{Question: "Who is Frank?", Answer: validAnswer()}
	require.NoError(t, ValidateResponse(resp))

	resp.Question = ""
	assert.Error(t, ValidateResponse(resp))

	resp.Question = "Who is Frank?"
	bad := validAnswer()
	bad.AnswerText = ""
	resp.BaselineComparison = &bad
	err := ValidateResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline_comparison")
}
