// Package trie implements an Aho–Corasick automaton over jamo-normalized
// morpheme forms. A single linear scan of a jamo buffer reports every
// dictionary form ending at every position, which is exactly the candidate
// enumeration the lattice builder's dictionary scan needs: rather than
// re-walking the trie from the root at each start offset to answer one stem
// at a time, the failure-link automaton answers every start/end pair for
// the whole sentence in one pass.
package trie

// noValue marks a node that does not itself terminate a dictionary form.
const noValue = int32(-1)

type node struct {
	// children maps a jamo code unit to the offset (childIdx - ownIdx) of
	// the child reached by that unit. Storing an offset instead of an
	// absolute index lets the node array be copied or relocated (e.g. a
	// future mmap-backed build) without rewriting every pointer.
	children map[rune]int32

	// failOffset is (failIdx - ownIdx); 0 at the root, whose failure
	// state is itself, and -ownIdx at every depth-1 node (whose failure
	// state is always the root).
	failOffset int32

	// outputOffset is (outputIdx - ownIdx), the offset to the nearest
	// ancestor along the failure chain that itself terminates a form.
	// hasOutput is false when no such ancestor exists, so a scan can skip
	// straight past the run of non-terminal suffix nodes that Aho-Corasick
	// construction otherwise introduces, instead of walking every link.
	outputOffset int32
	hasOutput    bool

	value int32 // form id terminating at this node, or noValue
	depth int32 // path length from the root, i.e. the match length when value != noValue
}

// Trie is an Aho–Corasick automaton keyed by jamo-normalized rune sequences.
// Build Insert calls first, then call Build once before any FindAll/Get.
type Trie struct {
	nodes []node
	built bool
}

// New returns an empty trie ready for Insert.
func New() *Trie {
	return &Trie{nodes: []node{{children: map[rune]int32{}, value: noValue}}}
}

// Insert adds key, a jamo-normalized rune sequence, mapping to formID. Insert
// must not be called after Build. Inserting the same key twice overwrites the
// earlier formID.
func (t *Trie) Insert(key []rune, formID int32) {
	if t.built {
		panic("trie: Insert called after Build")
	}
	if len(key) == 0 {
		return
	}
	cur := int32(0)
	for _, r := range key {
		if off, ok := t.nodes[cur].children[r]; ok {
			cur = cur + off
			continue
		}
		next := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{children: map[rune]int32{}, value: noValue, depth: t.nodes[cur].depth + 1})
		t.nodes[cur].children[r] = next - cur
		cur = next
	}
	t.nodes[cur].value = formID
}

// Build computes failure and output links via breadth-first traversal. It
// must be called exactly once, after all Insert calls and before any lookup.
func (t *Trie) Build() {
	const root = int32(0)
	queue := make([]int32, 0, len(t.nodes))

	for _, off := range t.nodes[root].children {
		child := root + off
		t.nodes[child].failOffset = root - child
		t.setOutput(child, root)
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		uFail := u + t.nodes[u].failOffset
		for label, off := range t.nodes[u].children {
			v := u + off

			f := uFail
			for f != root {
				if _, ok := t.nodes[f].children[label]; ok {
					break
				}
				f = f + t.nodes[f].failOffset
			}

			var failTarget int32
			if fo, ok := t.nodes[f].children[label]; ok && f+fo != v {
				failTarget = f + fo
			} else {
				failTarget = root
			}
			t.nodes[v].failOffset = failTarget - v
			t.setOutput(v, failTarget)
			queue = append(queue, v)
		}
	}
	t.built = true
}

// setOutput records v's output link as failTarget itself (if it terminates a
// form) or failTarget's own output link (transitively).
func (t *Trie) setOutput(v, failTarget int32) {
	switch {
	case t.nodes[failTarget].value != noValue:
		t.nodes[v].outputOffset = failTarget - v
		t.nodes[v].hasOutput = true
	case t.nodes[failTarget].hasOutput:
		origin := failTarget + t.nodes[failTarget].outputOffset
		t.nodes[v].outputOffset = origin - v
		t.nodes[v].hasOutput = true
	default:
		t.nodes[v].hasOutput = false
	}
}

// step applies the goto/failure transition for r from state, per the
// standard Aho-Corasick automaton construction.
func (t *Trie) step(state int32, r rune) int32 {
	for {
		if off, ok := t.nodes[state].children[r]; ok {
			return state + off
		}
		if state == 0 {
			return 0
		}
		state = state + t.nodes[state].failOffset
	}
}

// Match reports one dictionary form found by FindAll.
type Match struct {
	FormID int32
	Start  int
	End    int
}

// FindAll scans key once and reports every dictionary form occurring
// anywhere in it, in order of increasing End and, within one End, longest
// match first.
func (t *Trie) FindAll(key []rune) []Match {
	if !t.built {
		panic("trie: FindAll called before Build")
	}
	var matches []Match
	state := int32(0)
	for i, r := range key {
		state = t.step(state, r)
		end := i + 1
		if t.nodes[state].value != noValue {
			matches = append(matches, Match{FormID: t.nodes[state].value, Start: end - int(t.nodes[state].depth), End: end})
		}
		s := state
		for t.nodes[s].hasOutput {
			s = s + t.nodes[s].outputOffset
			matches = append(matches, Match{FormID: t.nodes[s].value, Start: end - int(t.nodes[s].depth), End: end})
		}
	}
	return matches
}

// Get walks key from the root along exact child edges only (no failure
// links) and reports the form id stored at the end of key, if key was
// inserted verbatim: a direct point lookup, without automaton scanning
// semantics.
func (t *Trie) Get(key []rune) (formID int32, ok bool) {
	cur := int32(0)
	for _, r := range key {
		off, has := t.nodes[cur].children[r]
		if !has {
			return 0, false
		}
		cur = cur + off
	}
	if t.nodes[cur].value == noValue {
		return 0, false
	}
	return t.nodes[cur].value, true
}

// HasPrefix reports whether any inserted key starts with prefix, i.e.
// whether prefix names a live path in the trie regardless of whether prefix
// itself terminates a form.
func (t *Trie) HasPrefix(prefix []rune) bool {
	cur := int32(0)
	for _, r := range prefix {
		off, has := t.nodes[cur].children[r]
		if !has {
			return false
		}
		cur = cur + off
	}
	return true
}

// Len reports the number of nodes in the trie, including the root.
func (t *Trie) Len() int {
	return len(t.nodes)
}

// PrefixMatches walks s from the root along exact child edges (no failure
// links, unlike FindAll) and reports the form id at every node passed
// through that terminates a key, in increasing length order. Each node
// visited along this walk has exactly one outgoing edge per jamo unit, so
// the walk itself is a deterministic-transition-table scan. The rule
// package does not use it: combining-rule right patterns run on that
// package's own compiled automata.
func (t *Trie) PrefixMatches(s []rune) []Match {
	var matches []Match
	cur := int32(0)
	for i, r := range s {
		off, ok := t.nodes[cur].children[r]
		if !ok {
			break
		}
		cur = cur + off
		if t.nodes[cur].value != noValue {
			matches = append(matches, Match{FormID: t.nodes[cur].value, Start: 0, End: i + 1})
		}
	}
	return matches
}
