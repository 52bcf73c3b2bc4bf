// Package dict holds the morpheme dictionary: the default embedded entry
// list, allomorph groups, irregular-stem expansion tables, and a block list
// of excluded entries. An embedded //go:embed data file is parsed at Build
// time into in-memory tables keyed by a trie.Trie rather than a single
// sorted-lemma slice, so a lattice scan can enumerate every dictionary span
// in a sentence in one pass instead of one stem at a time.
package dict

import (
	"bufio"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/ko-nlp/komorph/feature"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/trie"
)

//go:embed data/dict.txt
var defaultDictText string

// Entry is one morpheme dictionary entry.
type Entry struct {
	Form           []rune // jamo-normalized surface form
	Tag            postag.Tag
	SenseID        int32
	LogProb        float64
	Vowel          feature.CondVowel
	Polarity       feature.CondPolarity
	Irregular      bool
	Class          IrregularClass
	AllomorphGroup int32 // 0 means "not part of any allomorph group"
}

// Dict is an immutable, built morpheme dictionary. Build with NewBuilder,
// add entries, then call Build(); the result is safe for concurrent lookup.
type Dict struct {
	entries         []Entry
	formTrie        *trie.Trie // jamo form -> index into formGroups
	formGroups      [][]int32  // formGroups[i] = entry indices sharing one surface form
	allomorphGroups map[int32][]int32
	blocked         map[int32]bool // entry index -> blocked
}

// Builder accumulates dictionary entries before Build.
type Builder struct {
	entries    []Entry
	byForm     map[string][]int32
	allomorphs map[int32][]int32
	blocked    map[int32]bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		byForm:     make(map[string][]int32),
		allomorphs: make(map[int32][]int32),
		blocked:    make(map[int32]bool),
	}
}

// Add registers an entry and returns its index (stable for the life of the
// Builder, and preserved into the built Dict).
func (b *Builder) Add(e Entry) int32 {
	idx := int32(len(b.entries))
	b.entries = append(b.entries, e)
	key := string(e.Form)
	b.byForm[key] = append(b.byForm[key], idx)
	if e.AllomorphGroup != 0 {
		b.allomorphs[e.AllomorphGroup] = append(b.allomorphs[e.AllomorphGroup], idx)
	}
	return idx
}

// Block marks an entry index as excluded from lattice candidate generation
// without removing it from the dictionary (so it remains addressable by
// index for Joiner round-tripping of already-analyzed text).
func (b *Builder) Block(idx int32) {
	b.blocked[idx] = true
}

// Build freezes the builder into an immutable, lookup-ready Dict.
func (b *Builder) Build() *Dict {
	d := &Dict{
		entries:         b.entries,
		allomorphGroups: b.allomorphs,
		blocked:         b.blocked,
	}
	t := trie.New()
	d.formGroups = make([][]int32, 0, len(b.byForm))
	for form, indices := range b.byForm {
		groupID := int32(len(d.formGroups))
		d.formGroups = append(d.formGroups, indices)
		t.Insert([]rune(form), groupID)
	}
	t.Build()
	d.formTrie = t
	return d
}

// Entry returns the entry at idx.
func (d *Dict) Entry(idx int32) Entry { return d.entries[idx] }

// NumEntries returns the total entry count, including blocked entries.
func (d *Dict) NumEntries() int { return len(d.entries) }

// IsBlocked reports whether idx is on the block list.
func (d *Dict) IsBlocked(idx int32) bool { return d.blocked[idx] }

// Occurrence is one dictionary entry found by FindAll.
type Occurrence struct {
	Entry *Entry
	Start int
	End   int
}

// FindAll scans a jamo-normalized sentence and reports every dictionary
// entry (excluding blocked ones) whose form occurs as a substring, with
// start/end offsets in jamo units.
func (d *Dict) FindAll(jamoText []rune) []Occurrence {
	matches := d.formTrie.FindAll(jamoText)
	var out []Occurrence
	for _, m := range matches {
		for _, idx := range d.formGroups[m.FormID] {
			if d.blocked[idx] {
				continue
			}
			e := &d.entries[idx]
			out = append(out, Occurrence{Entry: e, Start: m.Start, End: m.End})
		}
	}
	return out
}

// AllomorphGroup returns the entry indices belonging to group id, in
// registration order (the order Add was called), or nil if the group is
// empty/unknown.
func (d *Dict) AllomorphGroup(id int32) []int32 {
	return d.allomorphGroups[id]
}

// SelectAllomorph picks the best entry from an allomorph group for a given
// left-context jamo form, per the decided tie-break order: first any
// variant whose CondVowel/CondPolarity matches the left context, then among
// those, lowest registration index (the file order is treated as the
// dictionary author's priority, most-general-first); if none match the
// context at all, the first-registered (lowest index) variant is used as a
// last resort so a group is never unrepresented in a lattice.
func (d *Dict) SelectAllomorph(groupID int32, left []rune) (Entry, bool) {
	indices := d.allomorphGroups[groupID]
	if len(indices) == 0 {
		return Entry{}, false
	}
	best := int32(-1)
	for _, idx := range indices {
		e := &d.entries[idx]
		if !feature.Matches(left, e.Vowel) || !feature.MatchesPolarity(left, e.Polarity) {
			continue
		}
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		best = indices[0]
	}
	return d.entries[best], true
}

// IrregularClass names one of the recognized stem-mutation families.
type IrregularClass int

const (
	IrregularNone IrregularClass = iota
	IrregularDigeut                  // ㄷ -> ㄹ before a vowel-initial ending
	IrregularBieup                    // ㅂ -> 우/오
	IrregularSiot                     // ㅅ -> elided
	IrregularHieut                    // ㅎ -> elided, vowel fuses
	IrregularEu                       // 르 -> ㄹㄹ (르 stems doubling before a vowel)
	IrregularEo                       // 러-irregular: attaches 어 not 아 despite positive stem vowel
)

// Expand produces the alternate jamo surface forms a stem takes under class,
// given its dictionary (citation) form. Returns nil for IrregularNone or a
// form that does not end in the class's triggering coda/syllable.
func Expand(form []rune, class IrregularClass) [][]rune {
	if len(form) == 0 {
		return nil
	}
	last := form[:len(form)-1]
	switch class {
	case IrregularDigeut:
		if form[len(form)-1] != jamo.TBase+7 { // ㄷ coda
			return nil
		}
		out := append(append([]rune{}, last...), jamo.TBase+8) // ㄹ coda
		return [][]rune{out}
	case IrregularBieup:
		if form[len(form)-1] != jamo.TBase+17 { // ㅂ coda
			return nil
		}
		withU := append(append([]rune{}, last...), jamo.LBase+11, jamo.VBase+13) // ㅇ+ㅜ
		withO := append(append([]rune{}, last...), jamo.LBase+11, jamo.VBase+8)  // ㅇ+ㅗ
		return [][]rune{withU, withO}
	case IrregularSiot:
		if form[len(form)-1] != jamo.TBase+19 { // ㅅ coda
			return nil
		}
		return [][]rune{append([]rune{}, last...)}
	case IrregularHieut:
		if form[len(form)-1] != jamo.TBase+27 { // ㅎ coda
			return nil
		}
		return [][]rune{append([]rune{}, last...)}
	case IrregularEu:
		// 르 stems double their final ㄹ and drop 으 before a vowel-initial
		// ending; handled by the rule engine's 르-specific rules, not here,
		// since the doubling interacts with the following ending's onset.
		return nil
	case IrregularEo:
		return nil
	}
	return nil
}

// Load parses the embedded default dictionary text into a Builder. Format,
// one entry per line, tab-separated:
//
//	form  tag  logprob  vowelCond  polarityCond  allomorphGroup  irregularClass
//
// irregularClass is one of "-", "digeut", "bieup", "siot", "hieut", "eu",
// "eo". vowelCond/polarityCond may be "-" for "none". Blank lines
// and lines starting with '#' are skipped, the same convention the rest of
// this codebase's embedded data files use.
func Load(text string) (*Builder, error) {
	b := NewBuilder()
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("dict: line %d: expected 7 tab-separated fields, got %d", lineNo, len(fields))
		}
		tag, ok := postag.Parse(fields[1])
		if !ok {
			return nil, fmt.Errorf("dict: line %d: unknown tag %q", lineNo, fields[1])
		}
		logProb, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("dict: line %d: invalid logprob %q", lineNo, fields[2])
		}
		vowel := parseVowel(fields[3])
		polarity := parsePolarity(fields[4])
		group, err := strconv.ParseInt(fields[5], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("dict: line %d: invalid allomorph group %q", lineNo, fields[5])
		}
		class := parseIrregularClass(fields[6])
		b.Add(Entry{
			Form:           jamo.Normalize(fields[0]),
			Tag:            tag,
			LogProb:        logProb,
			Vowel:          vowel,
			Polarity:       polarity,
			AllomorphGroup: int32(group),
			Irregular:      class != IrregularNone,
			Class:          class,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func parseVowel(s string) feature.CondVowel {
	switch s {
	case "vowel":
		return feature.CVVowel
	case "nonvowel":
		return feature.CVNonVowel
	case "vocalic":
		return feature.CVVocalic
	case "nonvocalic":
		return feature.CVNonVocalic
	case "vocalich":
		return feature.CVVocalicH
	case "applosive":
		return feature.CVApplosive
	default:
		return feature.CVNone
	}
}

func parseIrregularClass(s string) IrregularClass {
	switch s {
	case "digeut":
		return IrregularDigeut
	case "bieup":
		return IrregularBieup
	case "siot":
		return IrregularSiot
	case "hieut":
		return IrregularHieut
	case "eu":
		return IrregularEu
	case "eo":
		return IrregularEo
	default:
		return IrregularNone
	}
}

func parsePolarity(s string) feature.CondPolarity {
	switch s {
	case "positive":
		return feature.CPPositive
	case "negative":
		return feature.CPNegative
	case "nonadj":
		return feature.CPNonAdj
	default:
		return feature.CPNone
	}
}

// Default returns a Builder preloaded with the embedded default dictionary,
// ready for a caller to add custom entries before Build.
func Default() (*Builder, error) {
	return Load(defaultDictText)
}
