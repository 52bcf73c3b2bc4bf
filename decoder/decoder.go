// Package decoder implements the k-best Viterbi search over a lattice: the
// node cost model (LM score plus rule/typo/space penalties), POS-bigram
// legality, boundary scoring, pre-tokenized span constraints, and the
// block-list filter. A bounded-width beam keyed by end position searches a
// whole pre-built lattice.Node graph instead of re-deriving successor
// states from a phonology table at each step.
package decoder

import (
	"sort"

	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/lattice"
	"github.com/ko-nlp/komorph/lm"
	"github.com/ko-nlp/komorph/postag"
)

// PretokenizedSpan is a caller-supplied pre-tokenized constraint: the decoder only
// accepts paths whose node boundaries align with [Start, End), and, if
// Subtokens is non-empty, whose morpheme sequence inside the span matches
// it exactly (by surface form and tag).
type PretokenizedSpan struct {
	Start, End int
	Subtokens  []SubToken
}

// SubToken pins one morpheme within a PretokenizedSpan.
type SubToken struct {
	Form string
	Tag  postag.Tag
}

// Options configures one Decode call.
type Options struct {
	TopN               int
	SpaceTolerance     int
	SpacePenalty       float64
	IntegrateAllomorph bool
	Blocked            map[int32]bool
	Pretokenized       []PretokenizedSpan
	// beamWidth bounds the per-position priority queue; 0 selects a default
	// proportional to TopN.
	BeamWidth int
}

// Token is one decoded morpheme in a returned Path.
type Token struct {
	Surface     string
	Tag         postag.Tag
	Start, End  int // jamo offsets
	Score       float64
	TypoCost    float64
	SpaceBefore bool
}

// Path is one complete decode of the input, cost ascending (lower is
// better), matching the Viterbi minimization convention.
type Path struct {
	Tokens []Token
	Cost   float64
}

type beamEntry struct {
	cost     float64
	stepCost float64 // cost contributed by this entry's own node, cost - prev.cost
	nodeIdx  int      // index into the nodes slice of the node ending this entry
	prev     *beamEntry
	state    lm.State
	lastTag  postag.Tag
	morph    int32 // lowest morpheme id on this entry, used for tie-breaking
}

// Decode runs k-best Viterbi over nodes (as built by lattice.Builder.Build)
// covering the jamo buffer j, scored by scorer, and returns up to
// opts.TopN complete paths sorted by ascending cost.
func Decode(j []rune, nodes []lattice.Node, scorer lm.Scorer, opts Options) []Path {
	topN := opts.TopN
	if topN <= 0 {
		topN = 1
	}
	beamWidth := opts.BeamWidth
	if beamWidth <= 0 {
		beamWidth = topN * 4
		if beamWidth < 8 {
			beamWidth = 8
		}
	}

	byEnd := make(map[int][]int, len(j)+1)
	for i, n := range nodes {
		byEnd[n.End] = append(byEnd[n.End], i)
	}

	beams := make(map[int][]*beamEntry, len(j)+1)
	beams[0] = []*beamEntry{{cost: 0, nodeIdx: -1, state: scorer.Init(), lastTag: postag.Unknown, morph: -1}}

	n := len(j)
	for end := 1; end <= n; end++ {
		idxs := byEnd[end]
		var candidates []*beamEntry
		for _, idx := range idxs {
			node := nodes[idx]
			if opts.Blocked != nil && node.EntryIdx >= 0 && opts.Blocked[node.EntryIdx] {
				continue
			}
			if !spanAllows(node, opts.Pretokenized) {
				continue
			}
			for _, entry := range beams[node.Start] {
				if !IsAllowedSeq(entry.lastTag, node.Tag) {
					continue
				}
				scoreCost, next := scorer.Score(entry.state, node.Tag)
				cost := entry.cost + scoreCost - node.LogProb + node.RuleScore + node.TypoCost
				cost += boundaryPenalty(node.Tag, entry.nodeIdx == -1)
				cost += spacePenalty(node, opts)
				candidates = append(candidates, &beamEntry{
					cost:     cost,
					stepCost: cost - entry.cost,
					nodeIdx:  idx,
					prev:     entry,
					state:    next,
					lastTag:  node.Tag,
					morph:    nodeMorphID(node),
				})
			}
		}
		beams[end] = topK(candidates, beamWidth)
	}

	final := topK(beams[n], topN)
	paths := make([]Path, 0, len(final))
	for _, e := range final {
		paths = append(paths, reconstruct(e, nodes, j))
	}
	return paths
}

func nodeMorphID(n lattice.Node) int32 {
	if n.EntryIdx >= 0 {
		return n.EntryIdx
	}
	return -1
}

// spacePenalty charges SpacePenalty on every Combined node while
// SpaceTolerance is 0, and nothing on any other node. The lattice carries
// no space markers, so the charge does not depend on where spaces stand in
// the original text, and violations are not counted: any positive
// SpaceTolerance turns the charge off entirely.
func spacePenalty(n lattice.Node, opts Options) float64 {
	if !n.Combined {
		return 0
	}
	if opts.SpaceTolerance > 0 {
		return 0
	}
	return opts.SpacePenalty
}

// spanAllows reports whether node is compatible with every pretokenized
// span: it may not straddle a span boundary without landing exactly on it,
// and if the span pins a subtoken sequence, a node inside that span must
// match one of the pinned (Form, Tag) pairs at the position it starts.
func spanAllows(node lattice.Node, spans []PretokenizedSpan) bool {
	for _, sp := range spans {
		crossesStart := node.Start < sp.Start && node.End > sp.Start
		crossesEnd := node.Start < sp.End && node.End > sp.End
		if crossesStart || crossesEnd {
			return false
		}
		if len(sp.Subtokens) == 0 {
			continue
		}
		if node.Start < sp.Start || node.End > sp.End {
			continue
		}
		pos := sp.Start
		matches := false
		for _, st := range sp.Subtokens {
			if node.Start == pos {
				matches = st.Tag == node.Tag && st.Form == string(node.Form)
				break
			}
			pos += len([]rune(st.Form))
		}
		if !matches {
			return false
		}
	}
	return true
}

// IsAllowedSeq implements the POS-bigram legality check: noun-class may not
// be followed by an ending, a verb-class tag may only be followed by an
// ending, an ending may not be followed by VCP, and a non-(verb|ending) tag
// may not be followed by an ending. prev == postag.Unknown (the sentence
// start sentinel) is always allowed through.
func IsAllowedSeq(prev, next postag.Tag) bool {
	if prev == postag.Unknown {
		return true
	}
	if prev.IsNoun() && next.IsEClass() {
		return false
	}
	if prev.IsVerbClass() && !next.IsEClass() {
		return false
	}
	if prev.IsEClass() && next == postag.VCP {
		return false
	}
	if !prev.IsVerbClass() && !prev.IsEClass() && next.IsEClass() {
		return false
	}
	return true
}

// boundaryPenalty implements the TagSequenceScorer: a small cost added when
// a token immediately at the left text boundary is a proper noun/pronoun,
// or an ending/particle/suffix tag, both of which are more plausible
// mid-sentence than sentence-initial.
func boundaryPenalty(tag postag.Tag, atStart bool) float64 {
	if !atStart {
		return 0
	}
	const boundaryCost = 0.5
	switch {
	case tag == postag.NNP || tag == postag.NP:
		return boundaryCost
	case tag.IsEClass() || tag.IsJClass() || tag.IsSuffixClass():
		return boundaryCost
	default:
		return 0
	}
}

// topK returns the k lowest-cost entries of cands, ties broken by lower
// morph id then by the earlier (lower nodeIdx) back-pointer, matching the
// decided deterministic tie-break order.
func topK(cands []*beamEntry, k int) []*beamEntry {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if a.morph != b.morph {
			return a.morph < b.morph
		}
		return a.nodeIdx < b.nodeIdx
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}

// reconstruct walks a beamEntry's back-pointer chain into a Path of Tokens.
// A Combined node (one the lattice fused from two dictionary entries across
// a phonological contraction, e.g. 가+았 -> 갔) decomposes back into its two
// base morphemes here rather than surfacing as one fused token, per
// ChunkForms/ChunkTags/SplitAt: the node's own span still covers the whole
// contracted surface, but the two emitted tokens divide that span at
// SplitAt and carry each morpheme's own citation form and tag.
func reconstruct(e *beamEntry, nodes []lattice.Node, j []rune) Path {
	var tokens []Token
	for cur := e; cur != nil && cur.nodeIdx >= 0; cur = cur.prev {
		node := nodes[cur.nodeIdx]
		if node.Combined && len(node.ChunkForms) == 2 && len(node.ChunkTags) == 2 {
			split := node.Start + node.SplitAt
			tokens = append([]Token{
				{
					Surface: jamo.Join(node.ChunkForms[0]),
					Tag:     node.ChunkTags[0],
					Start:   node.Start,
					End:     split,
					Score:   cur.stepCost,
				},
				{
					Surface: jamo.Join(node.ChunkForms[1]),
					Tag:     node.ChunkTags[1],
					Start:   split,
					End:     node.End,
				},
			}, tokens...)
			continue
		}
		surface := jamo.Join(node.Form)
		tokens = append([]Token{{
			Surface:  surface,
			Tag:      node.Tag,
			Start:    node.Start,
			End:      node.End,
			Score:    cur.stepCost,
			TypoCost: node.TypoCost,
		}}, tokens...)
	}
	return Path{Tokens: tokens, Cost: e.cost}
}
