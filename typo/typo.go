// Package typo implements the typo transformer: a compiled map from
// jamo substring to a small set of alternative spellings, each carrying an
// added cost. Generate expands an input jamo string into every alternative
// reachable by applying at most one replacement per non-overlapping
// position, mirroring the allomorph/irregular-stem expansion style of
// dict.Expand but over typing mistakes instead of phonological alternation.
package typo

import "github.com/ko-nlp/komorph/jamo"

// Guard optionally restricts when a replacement is allowed to fire, given
// the jamo text immediately preceding the match. A nil Guard always fires.
type Guard func(before []rune) bool

// Replacement is one candidate rewrite of a matched key.
type Replacement struct {
	Text []rune
	Cost float64
	Cond Guard
}

type rule struct {
	key  []rune
	repl Replacement
}

// Set is a compiled, immutable collection of typo rules. Build with New,
// populate with Add, then call Generate any number of times.
type Set struct {
	rules     []rule
	maxKeyLen int
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Add registers a rule rewriting the literal jamo key into repl wherever key
// occurs in input text. key is ordinary Hangul text (precomposed syllables
// are jamo-normalized before matching); for a rule over a bare nucleus or
// coda jamo rather than a whole syllable, use AddRunes instead.
func (s *Set) Add(key string, repl Replacement) {
	s.AddRunes(jamo.Normalize(key), repl)
}

// AddRunes registers a rule over an already jamo-normalized key, for rules
// that target a bare onset/nucleus/coda unit rather than a whole syllable
// (e.g. the ㅐ/ㅔ nucleus confusion, which has no meaning as a standalone
// precomposed syllable for Add to decompose).
func (s *Set) AddRunes(key []rune, repl Replacement) {
	if len(key) > s.maxKeyLen {
		s.maxKeyLen = len(key)
	}
	s.rules = append(s.rules, rule{key: key, repl: repl})
}

// Merge returns a new Set containing the rules of s and other.
func (s *Set) Merge(other *Set) *Set {
	out := &Set{maxKeyLen: s.maxKeyLen}
	if other.maxKeyLen > out.maxKeyLen {
		out.maxKeyLen = other.maxKeyLen
	}
	out.rules = append(append([]rule{}, s.rules...), other.rules...)
	return out
}

// Scale returns a new Set with every rule's cost multiplied by factor.
func (s *Set) Scale(factor float64) *Set {
	out := &Set{maxKeyLen: s.maxKeyLen, rules: make([]rule, len(s.rules))}
	for i, r := range s.rules {
		r.repl.Cost *= factor
		out.rules[i] = r
	}
	return out
}

// Alternative is one jamo string reachable from the original input by
// applying a non-overlapping set of typo replacements, with the summed cost
// of those replacements.
type Alternative struct {
	Text []rune
	Cost float64
}

// maxAlternatives bounds the branching of Generate so that a string with
// many overlapping candidate rules cannot blow up combinatorially; this
// mirrors the decoder's own top-k bound rather than introducing a new
// unbounded search.
const maxAlternatives = 64

// Generate returns every alternative jamo string reachable from input by
// applying at most one replacement per non-overlapping span, including the
// identity alternative (cost 0, unless input itself is empty in which case
// only the identity is returned).
func (s *Set) Generate(input []rune) []Alternative {
	if len(s.rules) == 0 || len(input) == 0 {
		return []Alternative{{Text: append([]rune{}, input...), Cost: 0}}
	}
	var out []Alternative
	var walk func(pos int, built []rune, cost float64)
	walk = func(pos int, built []rune, cost float64) {
		if len(out) >= maxAlternatives {
			return
		}
		if pos >= len(input) {
			out = append(out, Alternative{Text: append([]rune{}, built...), Cost: cost})
			return
		}
		// Always allow copying the current unit forward unmodified.
		walk(pos+1, append(built, input[pos]), cost)
		for _, r := range s.rules {
			n := len(r.key)
			if pos+n > len(input) {
				continue
			}
			if !runesEqual(input[pos:pos+n], r.key) {
				continue
			}
			if r.repl.Cond != nil && !r.repl.Cond(input[:pos]) {
				continue
			}
			walk(pos+n, append(built, r.repl.Text...), cost+r.repl.Cost)
		}
	}
	walk(0, make([]rune, 0, len(input)), 0)
	return dedup(out)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedup(alts []Alternative) []Alternative {
	seen := make(map[string]bool, len(alts))
	out := make([]Alternative, 0, len(alts))
	for _, a := range alts {
		key := string(a.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// BasicTypoSet returns the bundled set of common Korean spelling confusions:
// vowel-pair confusions (ㅐ/ㅔ, ㅒ/ㅖ) that modern speakers no longer
// distinguish by ear, plus the whole-syllable 왜/외/웨/되/돼 confusions that
// follow from the same merged pronunciation.
func BasicTypoSet() *Set {
	s := New()
	const cost = 1.0
	// Nucleus indices in the 21-vowel block: ㅐ=1 ㅒ=3 ㅔ=5 ㅖ=7.
	nucleusPairs := [][2]int{{1, 5}, {5, 1}, {3, 7}, {7, 3}}
	for _, p := range nucleusPairs {
		s.AddRunes([]rune{jamo.NucleusOf(p[0])}, Replacement{Text: []rune{jamo.NucleusOf(p[1])}, Cost: cost})
	}
	syllablePairs := [][2]string{
		{"왜", "외"}, {"외", "왜"}, {"웨", "외"}, {"외", "웨"},
		{"돼", "되"}, {"되", "돼"},
	}
	for _, p := range syllablePairs {
		s.Add(p[0], Replacement{Text: jamo.Normalize(p[1]), Cost: cost})
	}
	return s
}

// ContinualTypoSet returns the bundled set of consonant-doubling typos that
// arise from typing across a syllable boundary too quickly (e.g. a coda ㅅ
// struck twice where a single coda was meant), collapsing a doubled coda
// rune into a single one.
func ContinualTypoSet() *Set {
	s := New()
	const cost = 1.5
	// Coda indices in the 28-slot trailing block (0 = no coda):
	// ㄱ=1 ㄴ=4 ㄷ=7 ㄹ=8 ㅁ=16 ㅂ=17 ㅅ=19 ㅇ=21.
	for _, idx := range []int{1, 4, 7, 8, 16, 17, 19, 21} {
		c, ok := jamo.CodaOf(idx)
		if !ok {
			continue
		}
		s.AddRunes([]rune{c, c}, Replacement{Text: []rune{c}, Cost: cost})
	}
	return s
}
