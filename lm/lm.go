// Package lm defines the language-model scoring interface the Viterbi
// decoder calls into, and a small embedded POS-bigram model implementing
// it. Keeping Scorer as an interface (rather than a concrete struct wired
// directly into decoder) lets a caller swap in a richer n-gram or neural
// scorer later without touching the decoder's search loop.
package lm

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"

	"github.com/ko-nlp/komorph/postag"
)

// State is an opaque, scorer-owned carry-forward value threaded through a
// decode: the decoder never inspects it, only passes it back into the next
// Score call along the same path.
type State interface{}

// Scorer assigns a cost to extending a decode path by one morpheme.
// Lower cost is better, matching the Viterbi minimization convention the
// decoder package's priority queue orders on.
type Scorer interface {
	// Init returns the start-of-sentence state.
	Init() State
	// Score returns the cost of transitioning from state (scored on the
	// morpheme immediately before this one) to tag, plus the state to
	// carry forward past this morpheme.
	Score(state State, tag postag.Tag) (cost float64, next State)
}

//go:embed data/bigram.tsv
var defaultBigramText string

// bigramState carries only the previous tag; a true production LM might
// carry a wider context window, but a bigram is enough to drive the
// POS-legality-aware boundary scoring this decoder needs.
type bigramState struct {
	prev postag.Tag
}

// BigramScorer is a Scorer backed by a table of POS-bigram log
// probabilities, with an unseen-pair fallback cost.
type BigramScorer struct {
	costs      map[[2]postag.Tag]float64
	unseenCost float64
}

// NewBigramScorer parses tsv text (format: leftTag\trightTag\tlogprob, one
// per line) into a BigramScorer. unseenCost is charged for any (prev, tag)
// pair absent from the table.
func NewBigramScorer(tsv string, unseenCost float64) (*BigramScorer, error) {
	costs := make(map[[2]postag.Tag]float64)
	sc := bufio.NewScanner(strings.NewReader(tsv))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			continue
		}
		left, ok1 := postag.Parse(fields[0])
		right, ok2 := postag.Parse(fields[1])
		if !ok1 || !ok2 {
			continue
		}
		logProb, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		costs[[2]postag.Tag{left, right}] = -logProb
	}
	return &BigramScorer{costs: costs, unseenCost: unseenCost}, sc.Err()
}

// Default returns a BigramScorer built from the embedded default bigram
// table.
func Default() (*BigramScorer, error) {
	return NewBigramScorer(defaultBigramText, 8.0)
}

func (b *BigramScorer) Init() State { return bigramState{prev: postag.Unknown} }

func (b *BigramScorer) Score(state State, tag postag.Tag) (float64, State) {
	prev := state.(bigramState).prev
	cost, ok := b.costs[[2]postag.Tag{prev, tag}]
	if !ok {
		cost = b.unseenCost
	}
	return cost, bigramState{prev: tag}
}
