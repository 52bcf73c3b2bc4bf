package lm

import (
	"testing"

	"github.com/ko-nlp/komorph/postag"
)

func TestDefaultScorerKnownPairCheaperThanUnseen(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	state := s.Init()

	knownCost, _ := s.Score(bigramState{prev: postag.NNG}, postag.JKS)
	unseenCost, _ := s.Score(bigramState{prev: postag.SH}, postag.WEMOJI)

	if knownCost >= unseenCost {
		t.Errorf("known-pair cost %v should be lower than unseen-pair cost %v", knownCost, unseenCost)
	}
	_ = state
}

func TestScoreChainsState(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	state := s.Init()
	_, next := s.Score(state, postag.NNG)
	if next.(bigramState).prev != postag.NNG {
		t.Fatalf("Score did not carry tag forward into next state")
	}
}
