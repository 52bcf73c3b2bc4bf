package sentence

import (
	"testing"

	"github.com/ko-nlp/komorph/postag"
)

func tok(surface string, tag postag.Tag, start, end int) Token {
	return Token{Surface: surface, Tag: tag, Start: start, End: end}
}

func TestSplitBreaksAfterSentenceFinal(t *testing.T) {
	text := "가다. 나오다."
	tokens := []Token{
		tok("가다", postag.VV, 0, 2),
		tok(".", postag.SF, 2, 3),
		tok("나오다", postag.VV, 4, 7),
		tok(".", postag.SF, 7, 8),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0] != (Span{0, 3}) || spans[1] != (Span{4, 8}) {
		t.Fatalf("unexpected spans: %+v", spans)
	}
}

func TestSplitSuppressedInsideBrackets(t *testing.T) {
	text := "<가다. 나오다.>"
	tokens := []Token{
		tok("<", postag.SSO, 0, 1),
		tok("가다", postag.VV, 1, 3),
		tok(".", postag.SF, 3, 4),
		tok("나오다", postag.VV, 5, 8),
		tok(".", postag.SF, 8, 9),
		tok(">", postag.SSC, 9, 10),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 1 {
		t.Fatalf("expected a single span covering the bracketed clause, got %+v", spans)
	}
	if spans[0] != (Span{0, 10}) {
		t.Fatalf("unexpected span: %+v", spans[0])
	}
}

func TestSplitOpensAfterBalancedClosingBracket(t *testing.T) {
	text := "<가다.> 나오다."
	tokens := []Token{
		tok("<", postag.SSO, 0, 1),
		tok("가다", postag.VV, 1, 3),
		tok(".", postag.SF, 3, 4),
		tok(">", postag.SSC, 4, 5),
		tok("나오다", postag.VV, 6, 9),
		tok(".", postag.SF, 9, 10),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %+v", spans)
	}
	if spans[0] != (Span{0, 5}) || spans[1] != (Span{6, 10}) {
		t.Fatalf("unexpected spans: %+v", spans)
	}
}

func TestSplitOnLineBreakOutsideBrackets(t *testing.T) {
	text := "가다\n나오다"
	tokens := []Token{
		tok("가다", postag.VV, 0, 2),
		tok("나오다", postag.VV, 3, 6),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 2 {
		t.Fatalf("expected a line-break split into 2 spans, got %+v", spans)
	}
}

func TestSplitGuardsAgainstBreakingBeforeEnding(t *testing.T) {
	text := "가.다"
	tokens := []Token{
		tok("가", postag.VV, 0, 1),
		tok(".", postag.SF, 1, 2),
		tok("다", postag.EF, 2, 3),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 1 {
		t.Fatalf("expected the EF guard to suppress the break, got %+v", spans)
	}
}

func TestSplitGuardsAgainstBreakingBetweenVAAndETM(t *testing.T) {
	text := "가\n다"
	tokens := []Token{
		tok("가", postag.VA, 0, 1),
		tok("다", postag.ETM, 2, 3),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 1 {
		t.Fatalf("expected the VA+ETM guard to suppress the break, got %+v", spans)
	}
}

func TestSplitMergesNumberedAbbreviation(t *testing.T) {
	text := "[1]. 나오다."
	tokens := []Token{
		tok("[", postag.SW, 0, 1),
		tok("1", postag.SN, 1, 2),
		tok("]", postag.SW, 2, 3),
		tok(".", postag.SF, 3, 4),
		tok("나오다", postag.VV, 5, 8),
		tok(".", postag.SF, 8, 9),
	}
	spans := SplitIntoSents(text, tokens, Options{})
	if len(spans) != 1 {
		t.Fatalf("expected the [num]. abbreviation to stay merged into one span, got %+v", spans)
	}
}
