// Package lattice builds the candidate morpheme graph the decoder searches:
// for a jamo-normalized input buffer, every node that could plausibly cover
// some span of it, drawn from the dictionary trie, irregular-stem
// expansion, the combining-rule engine, the pattern matcher, an optional
// typo transformer, and an unknown-form fallback so the graph is always
// connected. Rather than a single best-path scan over one word, Build
// produces a full multi-node-per-position graph a separate decoder searches.
package lattice

import (
	"unicode/utf8"

	"github.com/czcorpus/cnc-gokit/collections"

	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/pattern"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/rule"
	"github.com/ko-nlp/komorph/typo"
)

// Node is one candidate morpheme spanning [Start, End) of the jamo buffer.
type Node struct {
	Start, End int
	Form       []rune // surface jamo actually emitted for this span
	Tag        postag.Tag
	SenseID    int32
	EntryIdx   int32 // dictionary entry index, or -1 for a non-dictionary node
	LogProb    float64
	RuleScore  float64 // additive cost/bonus from a combining rule match
	Combined   bool
	ChunkTags  []postag.Tag // for Combined nodes, the tags of the base morphemes
	ChunkForms [][]rune     // for Combined nodes, the base morphemes' own citation forms
	SplitAt    int          // for Combined nodes, offset from Start where the left chunk ends
	Irregular  bool
	TypoCost   float64
}

// dedupKey identifies one candidate node for the plain seen-map in Build.
type dedupKey struct {
	start, end int
	entryIdx   int32
	form       string
}

// spanGroup identifies one (span, allomorph group) pair. It implements
// collections.Comparable so dedupAllomorphs can walk its groups through a
// cnc-gokit collections.BinTree in sorted, deterministic order instead of
// ranging a Go map directly (map iteration order is randomized, which would
// make Build's output order nondeterministic across runs) — the same
// dedup-via-BinTree idiom cnc-gokit's udex command uses to collapse UD
// feature sets into a unique, orderable set.
type spanGroup struct {
	start, end int
	group      int32
}

func (k spanGroup) Compare(other collections.Comparable) int {
	o, ok := other.(spanGroup)
	if !ok {
		return -1
	}
	switch {
	case k.start != o.start:
		return k.start - o.start
	case k.end != o.end:
		return k.end - o.end
	default:
		return int(k.group - o.group)
	}
}

// Options configures one Build call.
type Options struct {
	Match          pattern.Options
	Dialect        rule.Dialect
	Typos          *typo.Set // nil disables typo expansion
	MaxUnkFormSize int       // 0 is read as 1; unknown-form fallback nodes are one jamo unit long whatever the value
	UnkScoreScale  float64
	UnkScoreBias   float64
}

// Builder enumerates candidate Nodes against a fixed dictionary and rule
// set. A Builder is safe for concurrent Build calls once constructed, since
// dict.Dict and rule.Set are themselves immutable after their own Build.
type Builder struct {
	dict  *dict.Dict
	rules *rule.Set
}

// NewBuilder returns a lattice Builder over d and rs.
func NewBuilder(d *dict.Dict, rs *rule.Set) *Builder {
	return &Builder{dict: d, rules: rs}
}

// Build enumerates every candidate node for the jamo-normalized buffer j.
// The returned slice is not sorted by any particular field beyond grouping
// convenience; callers (the decoder) index it by Start/End as needed.
func (b *Builder) Build(j []rune, opts Options) []Node {
	if opts.MaxUnkFormSize <= 0 {
		opts.MaxUnkFormSize = 1
	}

	seen := make(map[dedupKey]bool)
	var nodes []Node
	add := func(n Node) {
		k := dedupKey{start: n.Start, end: n.End, entryIdx: n.EntryIdx, form: string(n.Form)}
		if seen[k] {
			return
		}
		seen[k] = true
		nodes = append(nodes, n)
	}

	// 1. Dictionary scan.
	occurrences := b.dict.FindAll(j)
	for _, occ := range occurrences {
		add(Node{
			Start:     occ.Start,
			End:       occ.End,
			Form:      occ.Entry.Form,
			Tag:       occ.Entry.Tag,
			SenseID:   occ.Entry.SenseID,
			EntryIdx:  indexOfEntry(b.dict, occ),
			LogProb:   occ.Entry.LogProb,
			Irregular: occ.Entry.Irregular,
		})
	}

	// 2. Irregular-stem expansion: for every irregular-capable dictionary
	// entry, also try its alternate stem spellings as literal matches at
	// every position, since the alternation (e.g. 듣 -> 들) is exactly what
	// appears in running text before a vowel-initial ending.
	for idx := int32(0); idx < int32(b.dict.NumEntries()); idx++ {
		e := b.dict.Entry(idx)
		if e.Class == dict.IrregularNone || b.dict.IsBlocked(idx) {
			continue
		}
		for _, alt := range dict.Expand(e.Form, e.Class) {
			for _, start := range findLiteral(j, alt) {
				add(Node{
					Start:     start,
					End:       start + len(alt),
					Form:      alt,
					Tag:       e.Tag,
					SenseID:   e.SenseID,
					EntryIdx:  idx,
					LogProb:   e.LogProb,
					Irregular: true,
				})
			}
		}
	}

	// 3. Allomorph selection: among dictionary nodes sharing a span and an
	// AllomorphGroup, keep only the one SelectAllomorph picks for that left
	// context, per the decided tie-break order (see dict.SelectAllomorph).
	nodes = dedupAllomorphs(b.dict, nodes, j)

	// 4. Combined-form expansion: for every dictionary/irregular node, try
	// fusing it with the rule engine against each dictionary entry as the
	// right morpheme.
	nodes = append(nodes, b.combinedNodes(nodes, j, opts.Dialect)...)

	// 5. Pattern-matched nodes.
	nodes = append(nodes, b.patternNodes(j, opts.Match)...)

	// 6. Typo expansion.
	if opts.Typos != nil {
		nodes = append(nodes, b.typoNodes(j, opts.Typos, opts.Match, opts.Dialect)...)
	}

	// 7. Unknown-form fallback: guarantee every position has at least one
	// outgoing node so the graph stays connected.
	nodes = append(nodes, b.unknownFallback(nodes, j, opts)...)

	return nodes
}

// indexOfEntry recovers the dictionary index for a trie occurrence by
// content match: dict.Occurrence does not carry the index directly, but
// FindAll only ever returns occurrences drawn from entries actually stored
// in the dictionary, so a (form, tag, sense, logprob) match is unambiguous.
func indexOfEntry(d *dict.Dict, occ dict.Occurrence) int32 {
	for i := int32(0); i < int32(d.NumEntries()); i++ {
		e := d.Entry(i)
		if sameEntry(e, *occ.Entry) {
			return i
		}
	}
	return -1
}

func sameEntry(a, b dict.Entry) bool {
	return string(a.Form) == string(b.Form) && a.Tag == b.Tag && a.SenseID == b.SenseID && a.LogProb == b.LogProb
}

// findLiteral returns every start offset in j at which key occurs as a
// literal substring.
func findLiteral(j, key []rune) []int {
	if len(key) == 0 || len(key) > len(j) {
		return nil
	}
	var starts []int
	for i := 0; i+len(key) <= len(j); i++ {
		if runesEqual(j[i:i+len(key)], key) {
			starts = append(starts, i)
		}
	}
	return starts
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

// dedupAllomorphs collapses nodes at the same span sharing a non-zero
// AllomorphGroup down to the single variant dict.SelectAllomorph picks for
// the jamo preceding that span.
func dedupAllomorphs(d *dict.Dict, nodes []Node, j []rune) []Node {
	bySpan := make(map[spanGroup][]int)
	var keys collections.BinTree[spanGroup]
	keys.UniqValues = true
	for i, n := range nodes {
		g := entryAllomorphGroup(d, n.EntryIdx)
		if g == 0 {
			continue
		}
		key := spanGroup{n.Start, n.End, g}
		if _, seen := bySpan[key]; !seen {
			keys.Add(key)
		}
		bySpan[key] = append(bySpan[key], i)
	}
	drop := make(map[int]bool)
	for _, key := range keys.ToSlice() {
		idxs := bySpan[key]
		if len(idxs) < 2 {
			continue
		}
		selected, ok := d.SelectAllomorph(key.group, j[:key.start])
		if !ok {
			continue
		}
		for _, i := range idxs {
			if string(nodes[i].Form) != string(selected.Form) {
				drop[i] = true
			}
		}
	}
	if len(drop) == 0 {
		return nodes
	}
	out := make([]Node, 0, len(nodes)-len(drop))
	for i, n := range nodes {
		if !drop[i] {
			out = append(out, n)
		}
	}
	return out
}

func entryAllomorphGroup(d *dict.Dict, idx int32) int32 {
	if idx < 0 || idx >= int32(d.NumEntries()) {
		return 0
	}
	return d.Entry(idx).AllomorphGroup
}

// combinedNodes enumerates every dictionary entry as a candidate right
// morpheme for each left candidate already on the graph, fuses the pair with
// the rule engine, and keeps only the results whose fused jamo sequence
// literally matches the input span it would cover. This is what lets a
// contracted spelling (가+았 -> 갔, 하+아 -> 해) enter the lattice: the right
// morpheme's surface never appears adjacent to the left one in the input, so
// a node-adjacency scan alone (as with pattern/typo nodes) could never find
// it — only a dictionary-wide search verified against the real input text
// can.
func (b *Builder) combinedNodes(nodes []Node, j []rune, dialect rule.Dialect) []Node {
	var out []Node
	for _, left := range nodes {
		for idx := int32(0); idx < int32(b.dict.NumEntries()); idx++ {
			if b.dict.IsBlocked(idx) {
				continue
			}
			e := b.dict.Entry(idx)
			if len(b.rules.RightCandidates(e.Form)) == 0 {
				continue
			}
			for _, res := range b.rules.Combine(left.Form, e.Form, left.Tag, e.Tag, dialect) {
				end := left.Start + len(res.Output)
				if end > len(j) || !runesEqual(j[left.Start:end], res.Output) {
					continue
				}
				out = append(out, Node{
					Start:      left.Start,
					End:        end,
					Form:       res.Output,
					Tag:        e.Tag,
					EntryIdx:   -1,
					LogProb:    left.LogProb + e.LogProb,
					RuleScore:  res.Score,
					Combined:   true,
					ChunkTags:  []postag.Tag{left.Tag, e.Tag},
					ChunkForms: [][]rune{append([]rune{}, left.Form...), append([]rune{}, e.Form...)},
					SplitAt:    res.LeftEnd,
				})
			}
		}
	}
	return out
}

// patternNodes runs the pattern matcher at every position of j, treating
// the jamo buffer's string form as the scan target: ASCII content (URLs,
// emails, numerics, and the rest of the pattern matcher's targets) passes
// through jamo.Normalize unchanged, so byte offsets into string(j) agree
// with rune offsets for every matched span.
func (b *Builder) patternNodes(j []rune, opts pattern.Options) []Node {
	if opts == 0 {
		return nil
	}
	s := string(j)
	byteOffsets := make([]int, len(j)+1)
	off := 0
	for i, r := range j {
		byteOffsets[i] = off
		off += utf8.RuneLen(r)
	}
	byteOffsets[len(j)] = off

	var out []Node
	for i := range j {
		n, tag := pattern.Match(s, byteOffsets[i], opts)
		if n == 0 {
			continue
		}
		matched := s[byteOffsets[i] : byteOffsets[i]+n]
		runeLen := utf8.RuneCountInString(matched)
		out = append(out, Node{
			Start:    i,
			End:      i + runeLen,
			Form:     []rune(matched),
			Tag:      tag,
			EntryIdx: -1,
		})
	}
	return out
}

// typoNodes consults opts at every position for alternative spellings and
// re-scans the dictionary against each alternative, charging its cost to
// every node produced from it.
func (b *Builder) typoNodes(j []rune, typos *typo.Set, matchOpts pattern.Options, dialect rule.Dialect) []Node {
	var out []Node
	for pos := range j {
		alts := typos.Generate(j[pos:min(pos+8, len(j))])
		for _, alt := range alts {
			if alt.Cost == 0 {
				continue // identity alternative, already covered by the plain scan
			}
			spliced := append(append([]rune{}, alt.Text...), j[min(pos+8, len(j)):]...)
			for _, occ := range b.dict.FindAll(spliced) {
				if occ.Start != 0 {
					continue
				}
				out = append(out, Node{
					Start:    pos,
					End:      pos + occ.End,
					Form:     occ.Entry.Form,
					Tag:      occ.Entry.Tag,
					SenseID:  occ.Entry.SenseID,
					EntryIdx: -1,
					LogProb:  occ.Entry.LogProb,
					TypoCost: alt.Cost,
				})
			}
		}
	}
	return out
}

// unknownFallback emits a single-character unknown-tagged node at every
// position that no other node covers, scaled/biased per opts, so the graph
// never has a dead end.
func (b *Builder) unknownFallback(nodes []Node, j []rune, opts Options) []Node {
	covered := make(map[int]bool, len(j))
	for _, n := range nodes {
		covered[n.Start] = true
	}
	scale := opts.UnkScoreScale
	if scale == 0 {
		scale = 1
	}
	var out []Node
	for i := range j {
		if covered[i] {
			continue
		}
		end := i + 1
		if end > len(j) {
			end = len(j)
		}
		out = append(out, Node{
			Start:    i,
			End:      end,
			Form:     append([]rune{}, j[i:end]...),
			Tag:      postag.Unknown,
			EntryIdx: -1,
			LogProb:  -(float64(end-i)*scale + opts.UnkScoreBias),
		})
	}
	return out
}
