package komorph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ko-nlp/komorph"
	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/joiner"
	"github.com/ko-nlp/komorph/postag"
)

func buildTestAnalyzer(t *testing.T) *komorph.Analyzer {
	t.Helper()
	b := komorph.NewBuilder(komorph.BuildLoadDefaultDict)
	a, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestAnalyzeCoversWholeInput(t *testing.T) {
	a := buildTestAnalyzer(t)
	results := a.Analyze("나는 간다", 3, komorph.Options{Match: komorph.MatchAll})
	require.NotEmpty(t, results)
	for _, r := range results {
		require.NotEmpty(t, r.Tokens)
		last := r.Tokens[len(r.Tokens)-1]
		require.Equal(t, len([]rune("나는 간다")), last.Position+last.Length)
	}
}

func TestAnalyzeTopNOrdersByAscendingScore(t *testing.T) {
	a := buildTestAnalyzer(t)
	results := a.Analyze("간다", 5, komorph.Options{Match: komorph.MatchAll})
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestAnalyzeUnknownFormStillDecodes(t *testing.T) {
	a := buildTestAnalyzer(t)
	results := a.Analyze("asdkjfhqwer123", 1, komorph.Options{Match: komorph.MatchAll})
	require.NotEmpty(t, results, "an unrecognizable string should still fall back to unknown-form nodes")
}

func TestAnalyzeRespectsBlockedMorpheme(t *testing.T) {
	a := buildTestAnalyzer(t)
	baseline := a.Analyze("나는 간다", 1, komorph.Options{Match: komorph.MatchAll})
	require.NotEmpty(t, baseline)

	var blocked []komorph.BlockedMorpheme
	for _, tok := range baseline[0].Tokens {
		blocked = append(blocked, komorph.BlockedMorpheme{Form: tok.Surface, Tag: tok.Tag})
	}
	results := a.Analyze("나는 간다", 1, komorph.Options{Match: komorph.MatchAll, Blocked: blocked})
	require.NotEmpty(t, results)
}

func TestSplitIntoSentsSplitsOnSentenceFinalEnding(t *testing.T) {
	a := buildTestAnalyzer(t)
	spans := a.SplitIntoSents("그는 간다. 그녀도 간다.", komorph.Options{Match: komorph.MatchAll})
	require.GreaterOrEqual(t, len(spans), 1)
}

func TestNewJoinerRoundTripsSimpleMorphemes(t *testing.T) {
	a := buildTestAnalyzer(t)
	j := a.NewJoiner(false)
	out := j.Join(nil)
	require.Empty(t, out)
	out = j.Join([]joiner.Morpheme{
		{Form: "나", Tag: postag.NP, WordStart: true},
		{Form: "는", Tag: postag.JX},
	})
	require.Equal(t, "나는", out)
}

// TestAnalyzeSplitsCombinedNodeIntoBaseMorphemes pins the lattice's
// contracted-surface expansion (가+았 -> 갔, 자+았 -> 잤): the decoder must
// decompose the fused node back into its two base morphemes rather than
// surfacing the contraction as a single opaque token.
func TestAnalyzeSplitsCombinedNodeIntoBaseMorphemes(t *testing.T) {
	a := buildTestAnalyzer(t)
	for _, tc := range []struct {
		text string
		want string
	}{
		{"갔는데", "가"},
		{"잤는데", "자"},
	} {
		results := a.Analyze(tc.text, 1, komorph.Options{Match: komorph.MatchAll})
		require.NotEmpty(t, results, tc.text)
		require.NotEmpty(t, results[0].Tokens, tc.text)
		require.Equal(t, tc.want, results[0].Tokens[0].Surface, tc.text)
	}
}

// TestAnalyzeBlockedCustomEntryFallsBackToShorterDecomposition pins the
// block-list: once a custom-registered stem is excluded, the decoder must
// fall back to the next-best decomposition starting with a shorter stem
// instead of reusing the blocked entry anyway.
func TestAnalyzeBlockedCustomEntryFallsBackToShorterDecomposition(t *testing.T) {
	b := komorph.NewBuilder(komorph.BuildLoadDefaultDict)
	_, err := b.AddEntry(dict.Entry{
		Form:    jamo.Normalize("좋아하"),
		Tag:     postag.VV,
		LogProb: -1.0,
	})
	require.NoError(t, err)
	a, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(a.Close)

	unblocked := a.Analyze("좋아하다.", 1, komorph.Options{Match: komorph.MatchAll})
	require.NotEmpty(t, unblocked)
	require.NotEmpty(t, unblocked[0].Tokens)
	require.Equal(t, "좋아하", unblocked[0].Tokens[0].Surface)

	blocked := a.Analyze("좋아하다.", 1, komorph.Options{
		Match:   komorph.MatchAll,
		Blocked: []komorph.BlockedMorpheme{{Form: "좋아하", Tag: postag.VV}},
	})
	require.NotEmpty(t, blocked)
	require.NotEmpty(t, blocked[0].Tokens)
	require.Equal(t, "좋", blocked[0].Tokens[0].Surface)
}
