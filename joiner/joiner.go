// Package joiner implements the inverse of analysis: splicing a sequence of
// (surface, tag) morphemes back into a single surface string. It reuses
// rule.Set.CombineWithFallback, the same combining-rule engine the lattice
// builder uses forward, applied backward one morpheme at a time.
package joiner

import (
	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/lm"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/rule"
)

// Morpheme is one input unit to Join: a surface form tagged with its part
// of speech, and whether it begins a new space-separated word (the first
// morpheme of an eojeol, in Korean tokenization terms).
type Morpheme struct {
	Form      string
	Tag       postag.Tag
	WordStart bool
}

// AutoJoiner reassembles a morpheme stream into surface text using a
// compiled rule.Set for phonological combination at every boundary, and,
// when a dictionary is configured, pre-selecting the allomorph a right
// morpheme's (Form, Tag) belongs to before combining — the same selection
// lattice.Builder.Build applies on the analysis side (see dedupAllomorphs),
// applied here so e.g. a caller-supplied particle "를" after a consonant-
// final noun is first rewritten to its "을" variant rather than spliced on
// verbatim.
type AutoJoiner struct {
	rules   *rule.Set
	dict    *dict.Dict
	dialect rule.Dialect
	scorer  lm.Scorer // optional; non-nil enables LM-scored disambiguation
}

// Option configures a New AutoJoiner.
type Option func(*AutoJoiner)

// WithDialect restricts which dialect-tagged rules are eligible.
func WithDialect(d rule.Dialect) Option {
	return func(j *AutoJoiner) { j.dialect = d }
}

// WithScorer enables scored disambiguation: when more than one compiled
// rule matches a boundary, the candidate with the lowest rule Score is kept
// instead of the first rule in source order. The scorer's cost is the same
// for every candidate at a boundary, so it does not change which one wins.
func WithScorer(s lm.Scorer) Option {
	return func(j *AutoJoiner) { j.scorer = s }
}

// New returns an AutoJoiner backed by rules. d may be nil, in which case
// allomorph pre-selection is skipped and every right morpheme is combined
// exactly as supplied.
func New(rules *rule.Set, d *dict.Dict, opts ...Option) *AutoJoiner {
	j := &AutoJoiner{rules: rules, dict: d, dialect: rule.Dialect(^uint32(0))}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Join reassembles morphemes into a single surface string, applying a
// space before every WordStart morpheme after the first and combining
// adjacent morphemes phonologically at every other boundary.
func (j *AutoJoiner) Join(morphemes []Morpheme) string {
	if len(morphemes) == 0 {
		return ""
	}
	buf := jamo.Normalize(morphemes[0].Form)
	activeStart := 0
	prevTag := morphemes[0].Tag

	for i := 1; i < len(morphemes); i++ {
		m := morphemes[i]
		right := jamo.Normalize(m.Form)

		if m.WordStart {
			buf = append(buf, ' ')
			activeStart = len(buf)
			buf = append(buf, right...)
			prevTag = m.Tag
			continue
		}

		left := buf[activeStart:]
		right = j.selectAllomorph(left, right, m.Tag)
		result := j.bestCombine(left, right, prevTag, m.Tag)

		newBuf := append(append([]rune{}, buf[:activeStart]...), result.Output...)
		activeStart = activeStart + (len(left) - result.LeftConsumed)
		buf = newBuf
		prevTag = m.Tag
	}

	return jamo.Join(buf)
}

// selectAllomorph rewrites right to the dict-selected variant of its own
// allomorph group (if any) for the given left context, mirroring
// lattice.dedupAllomorphs on the analysis side: a caller that hands Join the
// citation form of a particle/ending (e.g. "를") gets back the form the
// dictionary says actually attaches after left (e.g. "을" after a
// consonant-final noun), rather than the literal form spliced on verbatim.
func (j *AutoJoiner) selectAllomorph(left, right []rune, rightTag postag.Tag) []rune {
	if j.dict == nil {
		return right
	}
	group := int32(0)
	for i := int32(0); i < int32(j.dict.NumEntries()); i++ {
		e := j.dict.Entry(i)
		if e.Tag != rightTag || string(e.Form) != string(right) {
			continue
		}
		group = e.AllomorphGroup
		break
	}
	if group == 0 {
		return right
	}
	selected, ok := j.dict.SelectAllomorph(group, left)
	if !ok {
		return right
	}
	return selected.Form
}

// bestCombine picks among the rule.Set's matching results for (left,
// right, leftTag, rightTag): with no scorer configured, or fewer than two
// candidates, it defers to CombineWithFallback's own first-match-wins
// policy; with a scorer configured and multiple rules firing, it keeps the
// candidate whose rule Score plus the scorer's cost for rightTag from its
// initial state is lowest (ties keep the earlier candidate). That scorer
// cost does not depend on the candidate, so the rule Score alone decides.
func (j *AutoJoiner) bestCombine(left, right []rune, leftTag, rightTag postag.Tag) rule.Result {
	candidates := j.rules.Combine(left, right, leftTag, rightTag, j.dialect)
	if len(candidates) == 0 || j.scorer == nil {
		return j.rules.CombineWithFallback(left, right, leftTag, rightTag, j.dialect)
	}
	state := j.scorer.Init()
	lmCost, _ := j.scorer.Score(state, rightTag)
	best := candidates[0]
	bestCost := best.Score + lmCost
	for _, c := range candidates[1:] {
		cost := c.Score + lmCost
		if cost < bestCost {
			best = c
			bestCost = cost
		}
	}
	return best
}
