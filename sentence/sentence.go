// Package sentence splits a decoded token stream into sentence spans,
// tracking bracket and quote nesting so that punctuation inside a quoted
// or bracketed clause never triggers a boundary, and applying a handful of
// POS-pattern guards against breaking mid-clause.
package sentence

import (
	"regexp"

	"github.com/ko-nlp/komorph/postag"
)

// Token is one decoded morpheme positioned in the original (non-jamo) rune
// sequence of the input text.
type Token struct {
	Surface    string
	Tag        postag.Tag
	Start, End int // rune offsets into the source text
}

// Span is one sentence's rune-offset range in the source text.
type Span struct {
	Start, End int
}

// Options reserved for future tuning; present so callers have a stable
// call shape even though no knob is defined yet.
type Options struct{}

var openToClose = map[rune]rune{
	'<': '>', '(': ')', '[': ']', '{': '}', '「': '」',
}

var closeToOpen = func() map[rune]rune {
	m := make(map[rune]rune, len(openToClose))
	for o, c := range openToClose {
		m[c] = o
	}
	return m
}()

var quoteChars = map[rune]bool{'"': true, '\'': true}

// computeDepths returns a prefix array of length len(runes)+1 where
// depths[i] is the bracket/quote nesting depth immediately after consuming
// runes[:i]. Brackets nest with a stack; quote characters (ambiguous
// between open and close) toggle a per-rune open flag instead.
func computeDepths(runes []rune) []int {
	depths := make([]int, len(runes)+1)
	var stack []rune
	quoteOpen := make(map[rune]bool, len(quoteChars))

	for i, r := range runes {
		d := depths[i]
		switch {
		case isOpenBracket(r):
			stack = append(stack, r)
			d++
		case isCloseBracket(r):
			if open, ok := closeToOpen[r]; ok && len(stack) > 0 && stack[len(stack)-1] == open {
				stack = stack[:len(stack)-1]
				d--
			}
		case quoteChars[r]:
			if quoteOpen[r] {
				quoteOpen[r] = false
				d--
			} else {
				quoteOpen[r] = true
				d++
			}
		}
		depths[i+1] = d
	}
	return depths
}

func isOpenBracket(r rune) bool {
	_, ok := openToClose[r]
	return ok
}

func isCloseBracket(r rune) bool {
	_, ok := closeToOpen[r]
	return ok
}

// abbrevPattern matches a trailing "[<digits>]." at the end of a candidate
// sentence, the shape of a footnote/ordinal marker that ends with SF
// punctuation but is not actually a sentence boundary.
var abbrevPattern = regexp.MustCompile(`\[\d+\]\.$`)

// blockedBreak reports whether a boundary between tok and the following
// token next is disallowed regardless of what triggered it: immediately
// before an ending (EF/EC) token, or between a VA stem and an adnominal
// ending (ETM), both of which are mid-clause continuations in Korean.
func blockedBreak(tok, next Token) bool {
	if next.Tag == postag.EF || next.Tag == postag.EC {
		return true
	}
	if tok.Tag == postag.VA && next.Tag == postag.ETM {
		return true
	}
	return false
}

func containsLineBreak(runes []rune, from, to int) bool {
	for i := from; i < to && i < len(runes); i++ {
		if runes[i] == '\n' {
			return true
		}
	}
	return false
}

// SplitIntoSents partitions tokens (already positioned against text) into
// sentence spans. A boundary opens after a sentence-final token (SF), an
// SE, or a balanced closing bracket (SSC whose matching SSO has returned
// nesting to zero); it is suppressed while any bracket/quote depth is
// still open, by the EF/EC and VA+ETM guards, and by a trailing
// "[num]." abbreviation. Outside brackets a bare line break between two
// tokens also opens a boundary even without a qualifying tag.
func SplitIntoSents(text string, tokens []Token, _ Options) []Span {
	if len(tokens) == 0 {
		return nil
	}
	runes := []rune(text)
	depths := computeDepths(runes)

	var spans []Span
	sentStart := tokens[0].Start

	for i, tok := range tokens {
		hasNext := i+1 < len(tokens)

		breakAfter := false
		switch tok.Tag {
		case postag.SF, postag.SE, postag.SSC:
			breakAfter = depths[tok.End] == 0
		}
		if breakAfter && tok.Tag == postag.SF {
			seg := string(runes[sentStart:tok.End])
			if abbrevPattern.MatchString(seg) {
				breakAfter = false
			}
		}
		if breakAfter && hasNext && blockedBreak(tok, tokens[i+1]) {
			breakAfter = false
		}

		if !breakAfter && hasNext && depths[tok.End] == 0 {
			next := tokens[i+1]
			if containsLineBreak(runes, tok.End, next.Start) && !blockedBreak(tok, next) {
				breakAfter = true
			}
		}

		if breakAfter {
			spans = append(spans, Span{Start: sentStart, End: tok.End})
			if hasNext {
				sentStart = tokens[i+1].Start
			} else {
				sentStart = tok.End
			}
		}
	}

	last := tokens[len(tokens)-1]
	if sentStart < last.End {
		spans = append(spans, Span{Start: sentStart, End: last.End})
	}
	return spans
}
