// Package rule implements the compiled combining-rule engine that joins a
// left morpheme form to a right morpheme form across an irregular or
// contracted boundary (으 elision, ㄹ/ㄷ/ㅂ/ㅅ/ㅎ-irregular stems, 러/여
// variants, 시-honorific contractions, and the like).
//
// A rule source file is plain text, UTF-8, tab-separated; `#` starts a
// comment and blank lines are ignored. A *section header* line carries 2 or 3
// fields:
//
//	left_tag	right_tag
//	left_tag	right_tag	<dialect>
//
// and every subsequent 4-field line, until the next section header, is a
// rule within that (left_tag, right_tag[, dialect]) group:
//
//	left_pattern	right_pattern	replacements	features
//
// left_pattern and right_pattern are a small Thompson-style regex over jamo:
// literal jamo, `.` (any single jamo unit), `[...]` classes (with ranges and
// `^` negation), `(...)` groups, `|` alternation, `*`/`+`/`?` repetition, and
// `^`/`$` anchors (`^` pins a left pattern to the true start of the left
// form; `$` pins a right pattern to the true end of the right form).
// left_pattern is matched against a suffix of the left form, right_pattern
// against a prefix of the right form; see automaton.go for the compiled NFA
// -> DFA engine behind both. replacements is a comma-separated list of
// output templates, each producing its own combined result; a template's
// literal text is jamo-normalized the same way pattern literals are, and
// `\1`/`\2` splice in the matched left/right spans. features is a
// comma-separated, case-insensitive list of `+positive`, `-positive`,
// `+coda`, `-coda`, `+ignorercond`.
//
// A bare-vowel-initial left pattern (one whose first jamo unit is a nucleus
// with no preceding onset) is broadcast at load time into 19 concrete rules,
// one per onset, the way the lattice's irregular-stem expansion needs a
// concrete onset to construct its output jamo stream from rather than an
// unconstrained wildcard.
package rule

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ko-nlp/komorph/feature"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/postag"
)

//go:embed data/rules.txt
var defaultRuleText string

// Default loads the embedded default combining-rule set, the same way
// dict.Default and lm.Default hand a caller a ready-to-use table built from
// this module's own embedded data rather than requiring an external file.
func Default() (*Set, []error) {
	return Load(defaultRuleText)
}

// Dialect is a bitset of the dialects/registers a rule applies under.
// Rules under a section header without a dialect field get DialectStandard
// (bit 0); a header's `<...>` field gives its rules exactly the dialects it
// lists.
type Dialect uint32

const (
	DialectStandard Dialect = 1 << iota
	DialectGyeongsang
	DialectJeolla
	DialectChungcheong
	DialectHamgyeong
	DialectJeju
)

var dialectNames = map[string]Dialect{
	"standard":    DialectStandard,
	"gyeongsang":  DialectGyeongsang,
	"jeolla":      DialectJeolla,
	"chungcheong": DialectChungcheong,
	"hamgyeong":   DialectHamgyeong,
	"jeju":        DialectJeju,
}

// ParseDialects parses a comma-separated list of dialect names (the contents
// of a section header's `<...>` dialect field) into a bitset. An empty
// string yields DialectStandard.
func ParseDialects(s string) (Dialect, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DialectStandard, nil
	}
	var d Dialect
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		bit, ok := dialectNames[tok]
		if !ok {
			return 0, fmt.Errorf("rule: unknown dialect %q", tok)
		}
		d |= bit
	}
	return d, nil
}

type replPart struct {
	literal    []rune
	isBackref  bool
	refIsRight bool // \1 = left capture, \2 = right capture
}

// Rule is one compiled combining rule.
type Rule struct {
	LeftTag      postag.Tag
	RightTag     postag.Tag
	Left         *compiledLeftPattern
	Right        *compiledRightPattern
	Vowel        feature.CondVowel
	Polarity     feature.CondPolarity
	IgnoreRCond  bool
	Dialect      Dialect
	Score        float64
	LineNo       int
	replacements [][]replPart
}

// Result is the outcome of successfully applying a Rule to a (left, right)
// pair: the jamo sequence produced by splicing the unconsumed prefix of
// left, one of the rule's replacement templates, and the unconsumed suffix
// of right.
type Result struct {
	Output        []rune
	LeftConsumed  int // jamo units consumed from the tail of left
	RightConsumed int // jamo units consumed from the head of right
	LeftEnd       int // offset within Output where left-derived material ends
	RightBegin    int // offset within Output where right-derived material begins
	Score         float64
	Dialect       Dialect
	LineNo        int
}

// FormatError reports a rule source syntax error with its 1-based line
// number, so a rule file author sees exactly which line to fix instead of a
// bare parser message.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rule: line %d: %s", e.Line, e.Msg)
}

// Set is an immutable, loaded collection of compiled rules, grouped for fast
// lookup by (leftTag, rightTag). Combine and RightCandidates are safe for
// concurrent use.
type Set struct {
	byCategory map[categoryKey][]*Rule
	all        []*Rule
}

type categoryKey struct {
	left  postag.Tag
	right postag.Tag
}

// Load parses rule source text into a Set. Blank lines and lines whose first
// non-space character is '#' are ignored. All parse errors are collected and
// returned together (each as a *FormatError) so a rule file author fixes
// every mistake in one pass instead of one compile-edit cycle per error.
func Load(source string) (*Set, []error) {
	var rules []*Rule
	var errs []error

	var curLeft, curRight postag.Tag
	var curDialect Dialect = DialectStandard
	haveSection := false

	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}

		switch len(fields) {
		case 2, 3:
			lt, ok := postag.Parse(fields[0])
			if !ok {
				errs = append(errs, &FormatError{lineNo, fmt.Sprintf("unknown POS tag %q", fields[0])})
				continue
			}
			rt, ok := postag.Parse(fields[1])
			if !ok {
				errs = append(errs, &FormatError{lineNo, fmt.Sprintf("unknown POS tag %q", fields[1])})
				continue
			}
			dialect := DialectStandard
			if len(fields) == 3 {
				tok := strings.TrimSpace(fields[2])
				if !strings.HasPrefix(tok, "<") || !strings.HasSuffix(tok, ">") {
					errs = append(errs, &FormatError{lineNo, fmt.Sprintf("dialect field %q must be wrapped in <...>", tok)})
					continue
				}
				d, derr := ParseDialects(tok[1 : len(tok)-1])
				if derr != nil {
					errs = append(errs, &FormatError{lineNo, derr.Error()})
					continue
				}
				dialect = d
			}
			curLeft, curRight, curDialect = lt, rt, dialect
			haveSection = true
		case 4:
			if !haveSection {
				errs = append(errs, &FormatError{lineNo, "rule line before any section header"})
				continue
			}
			rs, err := parseRuleLine(fields, lineNo, curLeft, curRight, curDialect)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			rules = append(rules, rs...)
		default:
			errs = append(errs, &FormatError{lineNo, fmt.Sprintf("expected 2, 3, or 4 tab-separated fields, got %d", len(fields))})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	s := &Set{byCategory: make(map[categoryKey][]*Rule)}
	for _, r := range rules {
		key := categoryKey{r.LeftTag, r.RightTag}
		s.byCategory[key] = append(s.byCategory[key], r)
		s.all = append(s.all, r)
	}
	return s, nil
}

// parseRuleLine parses one 4-field rule line, broadcasting it into 19 rules
// (one per onset) if its left pattern is bare-vowel-initial.
func parseRuleLine(fields []string, lineNo int, leftTag, rightTag postag.Tag, dialect Dialect) ([]*Rule, error) {
	leftSrc := jamo.NormalizeString(fields[0])
	rightSrc := jamo.NormalizeString(fields[1])
	replSrc := fields[2]
	featureSrc := fields[3]

	vowel, polarity, ignoreRCond, err := parseFeatures(featureSrc, lineNo)
	if err != nil {
		return nil, err
	}

	var replTemplates []string
	for _, r := range strings.Split(replSrc, ",") {
		replTemplates = append(replTemplates, strings.TrimSpace(r))
	}
	replacements, err := parseReplacements(replTemplates, lineNo)
	if err != nil {
		return nil, err
	}

	leftSrcs := broadcastLeft(leftSrc)
	rules := make([]*Rule, 0, len(leftSrcs))
	for _, ls := range leftSrcs {
		leftPat, err := compileLeftPattern(ls)
		if err != nil {
			return nil, &FormatError{lineNo, fmt.Sprintf("left pattern %q: %v", ls, err)}
		}
		rightPat, err := compileRightPattern(rightSrc)
		if err != nil {
			return nil, &FormatError{lineNo, fmt.Sprintf("right pattern %q: %v", rightSrc, err)}
		}
		rules = append(rules, &Rule{
			LeftTag:      leftTag,
			RightTag:     rightTag,
			Left:         leftPat,
			Right:        rightPat,
			Vowel:        vowel,
			Polarity:     polarity,
			IgnoreRCond:  ignoreRCond,
			Dialect:      dialect,
			LineNo:       lineNo,
			replacements: replacements,
		})
	}
	return rules, nil
}

// broadcastLeft expands a bare-vowel-initial left pattern (one beginning
// with a standalone nucleus jamo, not preceded by an onset) into 19 concrete
// variants, one per onset, by prepending each onset literally. Any other
// pattern is returned unchanged.
func broadcastLeft(src string) []string {
	runes := []rune(src)
	if len(runes) == 0 || runes[0] == '^' {
		return []string{src}
	}
	if !jamo.IsNucleus(runes[0]) {
		return []string{src}
	}
	out := make([]string, 0, jamo.LCount)
	for onset := 0; onset < jamo.LCount; onset++ {
		out = append(out, string(jamo.OnsetOf(onset))+src)
	}
	return out
}

func parseFeatures(s string, lineNo int) (vowel feature.CondVowel, polarity feature.CondPolarity, ignoreRCond bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return feature.CVNone, feature.CPNone, false, nil
	}
	for _, tokRaw := range strings.Split(s, ",") {
		tok := strings.ToLower(strings.TrimSpace(tokRaw))
		if tok == "" {
			continue
		}
		sign := tok[0]
		if sign != '+' && sign != '-' {
			return 0, 0, false, &FormatError{lineNo, fmt.Sprintf("feature token %q must start with '+' or '-'", tokRaw)}
		}
		name := tok[1:]
		switch name {
		case "positive":
			if sign == '+' {
				polarity = feature.CPPositive
			} else {
				polarity = feature.CPNegative
			}
		case "coda":
			if sign == '+' {
				vowel = feature.CVNonVowel
			} else {
				vowel = feature.CVVowel
			}
		case "ignorercond":
			if sign != '+' {
				return 0, 0, false, &FormatError{lineNo, fmt.Sprintf("feature token %q: ignorercond only takes '+'", tokRaw)}
			}
			ignoreRCond = true
		default:
			return 0, 0, false, &FormatError{lineNo, fmt.Sprintf("unknown feature token %q", tokRaw)}
		}
	}
	return vowel, polarity, ignoreRCond, nil
}

func parseReplacements(templates []string, lineNo int) ([][]replPart, error) {
	out := make([][]replPart, 0, len(templates))
	for _, t := range templates {
		parts, err := parseReplacement(t, lineNo)
		if err != nil {
			return nil, err
		}
		out = append(out, parts)
	}
	return out, nil
}

// parseReplacement parses a replacement template: literal text (normalized
// to jamo the same way pattern literals are) interspersed with \1 (the
// matched left span) and \2 (the matched right span).
func parseReplacement(s string, lineNo int) ([]replPart, error) {
	var out []replPart
	runes := []rune(s)
	var literal []rune
	flush := func() {
		if len(literal) > 0 {
			out = append(out, replPart{literal: literal})
			literal = nil
		}
	}
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && (runes[i+1] == '1' || runes[i+1] == '2') {
			flush()
			out = append(out, replPart{isBackref: true, refIsRight: runes[i+1] == '2'})
			i++
			continue
		}
		literal = append(literal, jamo.Normalize(string(runes[i]))...)
	}
	flush()
	if len(out) == 0 {
		return nil, &FormatError{lineNo, "empty replacement"}
	}
	return out, nil
}

// RightCandidates reports every rule (across all categories) whose RIGHT
// pattern matches a prefix of right, answering rule-group membership for a
// candidate right-form via the same compiled right-pattern DFA Combine uses,
// without invoking Combine itself.
func (s *Set) RightCandidates(right []rune) []*Rule {
	var out []*Rule
	for _, r := range s.all {
		if _, ok := r.Right.match(right); ok {
			out = append(out, r)
		}
	}
	return out
}

// Combine attempts every rule registered for (leftTag, rightTag) under
// dialect against (left, right), in source order, and returns every rule
// that matched, one Result per replacement template. Runtime Combine never
// fails: a pattern/condition mismatch is simply not a result, never an error
// (only Load-time syntax is fallible).
func (s *Set) Combine(left, right []rune, leftTag, rightTag postag.Tag, dialect Dialect) []Result {
	rules := s.byCategory[categoryKey{leftTag, rightTag}]
	if len(rules) == 0 {
		return nil
	}
	var results []Result
	for _, r := range rules {
		if r.Dialect&dialect == 0 {
			continue
		}
		leftConsumed, ok := r.Left.match(left)
		if !ok {
			continue
		}
		rightConsumed, ok := r.Right.match(right)
		if !ok {
			continue
		}
		if !feature.Matches(left, r.Vowel) || !feature.MatchesPolarity(left, r.Polarity) {
			continue
		}
		leftPrefix := left[:len(left)-leftConsumed]
		leftCapture := left[len(left)-leftConsumed:]
		rightCapture := right[:rightConsumed]
		rightSuffix := right[rightConsumed:]
		for _, tmpl := range r.replacements {
			out, leftEnd, rightBegin := buildOutput(tmpl, leftCapture, rightCapture, leftPrefix, rightSuffix)
			results = append(results, Result{
				Output:        out,
				LeftConsumed:  leftConsumed,
				RightConsumed: rightConsumed,
				LeftEnd:       leftEnd,
				RightBegin:    rightBegin,
				Score:         r.Score,
				Dialect:       r.Dialect,
				LineNo:        r.LineNo,
			})
		}
	}
	return results
}

// CombineWithFallback applies Combine, and if no rule matched, falls back to
// the 아/어 polarity-swap-then-verbatim-concatenation policy: a positive
// left form joins with the 아-initial allomorph family and a negative (or
// neutral) left form joins with the 어-initial family, tried by literal
// vowel substitution at the right form's head before giving up and simply
// concatenating verbatim.
func (s *Set) CombineWithFallback(left, right []rune, leftTag, rightTag postag.Tag, dialect Dialect) Result {
	if results := s.Combine(left, right, leftTag, rightTag, dialect); len(results) > 0 {
		return results[0]
	}
	if swapped, ok := swapInitialPolarityVowel(right, feature.Positive(left)); ok {
		out := append(append([]rune{}, left...), swapped...)
		return Result{Output: out, LeftConsumed: 0, RightConsumed: len(right), LeftEnd: len(left), RightBegin: len(left)}
	}
	out := append(append([]rune{}, left...), right...)
	return Result{Output: out, LeftConsumed: 0, RightConsumed: len(right), LeftEnd: len(left), RightBegin: len(left)}
}

// swapInitialPolarityVowel rewrites a leading 아 to 어 (or vice versa) in
// right to agree with wantPositive, the vowel-harmony fallback applied when
// no compiled rule covers a (leftTag, rightTag) pair directly.
func swapInitialPolarityVowel(right []rune, wantPositive bool) ([]rune, bool) {
	if len(right) < 2 {
		return nil, false
	}
	onset, nucleus := right[0], right[1]
	if jamo.OnsetIndex(onset) != 11 { // ㅇ (null onset)
		return nil, false
	}
	a := jamo.NucleusOf(0)  // ㅏ
	eo := jamo.NucleusOf(4) // ㅓ
	switch {
	case nucleus == a && !wantPositive:
		out := append([]rune{}, right...)
		out[1] = eo
		return out, true
	case nucleus == eo && wantPositive:
		out := append([]rune{}, right...)
		out[1] = a
		return out, true
	}
	return nil, false
}

// buildOutput splices leftPrefix, the replacement template (with \1/\2
// resolved against leftCapture/rightCapture), and rightSuffix, and reports
// the leftEnd/rightBegin marker offsets within the result.
func buildOutput(tmpl []replPart, leftCapture, rightCapture, leftPrefix, rightSuffix []rune) (out []rune, leftEnd, rightBegin int) {
	var mid []rune
	afterLeft := -1
	beforeRight := -1
	for _, part := range tmpl {
		switch {
		case part.isBackref && !part.refIsRight:
			mid = append(mid, leftCapture...)
			afterLeft = len(mid)
		case part.isBackref && part.refIsRight:
			if beforeRight < 0 {
				beforeRight = len(mid)
			}
			mid = append(mid, rightCapture...)
		default:
			mid = append(mid, part.literal...)
		}
	}
	if afterLeft < 0 {
		afterLeft = 0
	}
	if beforeRight < 0 {
		beforeRight = len(mid)
	}
	out = make([]rune, 0, len(leftPrefix)+len(mid)+len(rightSuffix))
	out = append(out, leftPrefix...)
	out = append(out, mid...)
	out = append(out, rightSuffix...)
	return out, len(leftPrefix) + afterLeft, len(leftPrefix) + beforeRight
}
