package joiner

import (
	"testing"

	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/rule"
)

func emptyRuleSet(t *testing.T) *rule.Set {
	t.Helper()
	s, errs := rule.Load("")
	if len(errs) > 0 {
		t.Fatalf("unexpected rule load errors: %v", errs)
	}
	return s
}

func defaultRuleSet(t *testing.T) *rule.Set {
	t.Helper()
	s, errs := rule.Default()
	if len(errs) > 0 {
		t.Fatalf("unexpected rule load errors: %v", errs)
	}
	return s
}

func defaultDict(t *testing.T) *dict.Dict {
	t.Helper()
	b, err := dict.Default()
	if err != nil {
		t.Fatalf("unexpected dict load error: %v", err)
	}
	return b.Build()
}

func TestJoinSingleMorpheme(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	out := j.Join([]Morpheme{{Form: "가", Tag: postag.VV, WordStart: true}})
	if out != "가" {
		t.Fatalf("expected %q, got %q", "가", out)
	}
}

func TestJoinEmptyInput(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	if out := j.Join(nil); out != "" {
		t.Fatalf("expected empty string, got %q", out)
	}
}

func TestJoinInsertsSpaceAtWordStart(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	out := j.Join([]Morpheme{
		{Form: "나", Tag: postag.NP, WordStart: true},
		{Form: "가다", Tag: postag.VV, WordStart: true},
	})
	if out != "나 가다" {
		t.Fatalf("expected %q, got %q", "나 가다", out)
	}
}

func TestJoinFallsBackToVerbatimConcatWithoutMatchingRule(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	out := j.Join([]Morpheme{
		{Form: "가", Tag: postag.VV, WordStart: true},
		{Form: "다", Tag: postag.EF, WordStart: false},
	})
	if out != "가다" {
		t.Fatalf("expected %q, got %q", "가다", out)
	}
}

func TestJoinAppliesPolaritySwapFallback(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	out := j.Join([]Morpheme{
		{Form: "하", Tag: postag.VV, WordStart: true},
		{Form: "어요", Tag: postag.EF, WordStart: false},
	})
	if out != "하아요" {
		t.Fatalf("expected %q, got %q", "하아요", out)
	}
}

// TestJoinElidesBareCodaParticleAfterVowel pins a caller-supplied coda-only
// JKO allomorph (the colloquial contraction of 를) splicing onto a
// vowel-final pronoun via plain jamo composition, with no combining rule or
// dictionary involved.
func TestJoinElidesBareCodaParticleAfterVowel(t *testing.T) {
	j := New(emptyRuleSet(t), nil)
	out := j.Join([]Morpheme{
		{Form: "나", Tag: postag.NP, WordStart: true},
		{Form: "ᆯ", Tag: postag.JKO, WordStart: false},
	})
	if out != "날" {
		t.Fatalf("expected %q, got %q", "날", out)
	}
}

// TestJoinSelectsAllomorphBeforeCombine pins the fix requiring AutoJoiner to
// pre-select a right morpheme's dictionary allomorph before splicing it on,
// so a consonant-final noun gets "을" rather than the literal "를" spliced
// on verbatim.
func TestJoinSelectsAllomorphBeforeCombine(t *testing.T) {
	j := New(defaultRuleSet(t), defaultDict(t))
	out := j.Join([]Morpheme{
		{Form: "시동", Tag: postag.NNG, WordStart: true},
		{Form: "를", Tag: postag.JKO, WordStart: false},
	})
	if out != "시동을" {
		t.Fatalf("expected %q, got %q", "시동을", out)
	}
}

// TestJoinHonorificHumpContraction pins the ㄹ-coda elision before 시, the
// 시-honorific diphthongization of 았/었 to 셨, and the 면/으면 allomorph
// selection, chained across four morphemes into a single contracted
// surface.
func TestJoinHonorificHumpContraction(t *testing.T) {
	j := New(defaultRuleSet(t), defaultDict(t))
	out := j.Join([]Morpheme{
		{Form: "갈", Tag: postag.VV, WordStart: true},
		{Form: "시", Tag: postag.EP, WordStart: false},
		{Form: "았", Tag: postag.EP, WordStart: false},
		{Form: "면", Tag: postag.EC, WordStart: false},
	})
	if out != "가셨으면" {
		t.Fatalf("expected %q, got %q", "가셨으면", out)
	}
}
