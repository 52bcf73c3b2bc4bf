package lattice

import (
	"testing"

	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/pattern"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/rule"
)

func smallDict(t *testing.T) *dict.Dict {
	t.Helper()
	b := dict.NewBuilder()
	b.Add(dict.Entry{Form: jamo.Normalize("가"), Tag: postag.VV, LogProb: -1})
	b.Add(dict.Entry{Form: jamo.Normalize("다"), Tag: postag.EF, LogProb: -1})
	b.Add(dict.Entry{Form: jamo.Normalize("나"), Tag: postag.NP, LogProb: -1})
	return b.Build()
}

func emptyRules(t *testing.T) *rule.Set {
	t.Helper()
	s, errs := rule.Load("")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	return s
}

func TestBuildCoversEveryPosition(t *testing.T) {
	d := smallDict(t)
	rs := emptyRules(t)
	lb := NewBuilder(d, rs)
	j := jamo.Normalize("가다")
	nodes := lb.Build(j, Options{Match: pattern.OptAll})

	covered := make(map[int]bool)
	for _, n := range nodes {
		covered[n.Start] = true
	}
	for i := range j {
		if !covered[i] {
			t.Errorf("position %d has no covering node", i)
		}
	}
}

func TestBuildFindsDictionaryEntries(t *testing.T) {
	d := smallDict(t)
	rs := emptyRules(t)
	lb := NewBuilder(d, rs)
	j := jamo.Normalize("나")
	nodes := lb.Build(j, Options{})

	found := false
	for _, n := range nodes {
		if n.Tag == postag.NP && n.Start == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a NP node covering the whole input, got %+v", nodes)
	}
}

func TestBuildEmitsUnknownFallbackForUncoveredInput(t *testing.T) {
	d := dict.NewBuilder().Build()
	rs := emptyRules(t)
	lb := NewBuilder(d, rs)
	j := jamo.Normalize("XYZ123 text with no dict hits !@#")
	nodes := lb.Build(j, Options{})
	covered := make(map[int]bool)
	for _, n := range nodes {
		covered[n.Start] = true
	}
	for i := range j {
		if !covered[i] {
			t.Errorf("position %d uncovered despite unknown fallback", i)
		}
	}
}

func TestBuildPatternMatchesURL(t *testing.T) {
	d := dict.NewBuilder().Build()
	rs := emptyRules(t)
	lb := NewBuilder(d, rs)
	j := jamo.Normalize("http://example.com 입니다")
	nodes := lb.Build(j, Options{Match: pattern.OptAll})

	sawURL := false
	for _, n := range nodes {
		if n.Tag == postag.WURL && n.Start == 0 {
			sawURL = true
		}
	}
	if !sawURL {
		t.Fatalf("expected a WURL node at position 0, got %+v", nodes)
	}
}
