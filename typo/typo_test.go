package typo

import (
	"testing"

	"github.com/ko-nlp/komorph/jamo"
)

func TestGenerateIdentityAlwaysPresent(t *testing.T) {
	s := BasicTypoSet()
	input := jamo.Normalize("외않됀데")
	alts := s.Generate(input)
	foundIdentity := false
	for _, a := range alts {
		if string(a.Text) == string(input) {
			foundIdentity = true
			if a.Cost != 0 {
				t.Errorf("identity alternative should have cost 0, got %v", a.Cost)
			}
		}
	}
	if !foundIdentity {
		t.Fatalf("Generate(%q) did not include the identity alternative", input)
	}
}

func TestGenerateEmptySetReturnsIdentityOnly(t *testing.T) {
	s := New()
	input := jamo.Normalize("가나다")
	alts := s.Generate(input)
	if len(alts) != 1 || string(alts[0].Text) != string(input) {
		t.Fatalf("expected only identity alternative, got %+v", alts)
	}
}

func TestGenerateAppliesRuleWithCost(t *testing.T) {
	s := New()
	s.AddRunes([]rune{jamo.NucleusOf(1)}, Replacement{Text: []rune{jamo.NucleusOf(5)}, Cost: 2.0})
	input := []rune{jamo.OnsetOf(0), jamo.NucleusOf(1)} // 애
	alts := s.Generate(input)
	sawReplacement := false
	for _, a := range alts {
		if len(a.Text) == 2 && a.Text[1] == jamo.NucleusOf(5) {
			sawReplacement = true
			if a.Cost != 2.0 {
				t.Errorf("expected cost 2.0, got %v", a.Cost)
			}
		}
	}
	if !sawReplacement {
		t.Fatalf("Generate did not apply the registered rule: %+v", alts)
	}
}

func TestContinualTypoSetCollapsesDoubledCoda(t *testing.T) {
	s := ContinualTypoSet()
	c, _ := jamo.CodaOf(19) // ㅅ
	input := []rune{jamo.OnsetOf(0), jamo.NucleusOf(0), c, c}
	alts := s.Generate(input)
	sawCollapsed := false
	for _, a := range alts {
		if len(a.Text) == 3 {
			sawCollapsed = true
		}
	}
	if !sawCollapsed {
		t.Fatalf("expected a 3-unit collapsed alternative among %+v", alts)
	}
}

func TestMergeCombinesRules(t *testing.T) {
	merged := BasicTypoSet().Merge(ContinualTypoSet())
	if len(merged.rules) != len(BasicTypoSet().rules)+len(ContinualTypoSet().rules) {
		t.Fatalf("Merge did not combine both rule sets")
	}
}

func TestScaleMultipliesCost(t *testing.T) {
	base := BasicTypoSet()
	scaled := base.Scale(2.0)
	for i := range base.rules {
		if scaled.rules[i].repl.Cost != base.rules[i].repl.Cost*2.0 {
			t.Fatalf("Scale did not double rule %d's cost", i)
		}
	}
}
