// Package jamo implements the Hangul codec: conversion between precomposed
// syllables (U+AC00..U+D7A3) and a normalized onset/nucleus/coda jamo
// sequence, plus the classification predicates every other package in this
// module builds on.
//
// Precomposed syllable arithmetic follows the standard Unicode identity
//
//	S = 0xAC00 + (onset*21 + nucleus)*28 + coda
//
// the same decomposition used by Hangul text shapers to fall back to L+V+T
// glyph sequences when a font lacks a precomposed glyph; here it is used in
// the other direction, to normalize running text into a jamo alphabet that
// the trie, rule DFAs, and FeatureTestor all share.
package jamo

import "strings"

// Unicode block bases and counts for the Hangul Jamo arithmetic.
const (
	SBase = 0xAC00
	LBase = 0x1100 // leading jamo (onset) block
	VBase = 0x1161 // vowel jamo (nucleus) block
	TBase = 0x11A7 // trailing jamo (coda) block; TBase+0 means "no coda"

	LCount = 19
	VCount = 21
	TCount = 28 // includes the "no coda" slot at index 0

	NCount = VCount * TCount
	SCount = LCount * NCount
)

// IsSyllable reports whether r is a precomposed Hangul syllable.
func IsSyllable(r rune) bool {
	return r >= SBase && r < SBase+SCount
}

// IsOnset reports whether r is a normalized onset (leading) jamo.
func IsOnset(r rune) bool {
	return r >= LBase && r < LBase+LCount
}

// IsNucleus reports whether r is a normalized nucleus (vowel) jamo. This is
// the package's IsVowelJamo predicate, named to match the component it
// classifies within a decomposed syllable.
func IsNucleus(r rune) bool {
	return r >= VBase && r < VBase+VCount
}

// IsVowelJamo is an alias of IsNucleus kept for readability at call sites
// that test "is this a vowel" rather than "is this the nucleus slot".
func IsVowelJamo(r rune) bool {
	return IsNucleus(r)
}

// IsCoda reports whether r is a normalized coda (trailing) jamo. Index 0 of
// the trailing block (TBase) denotes "no coda" and is never emitted by
// Normalize, so IsCoda(TBase) is false.
func IsCoda(r rune) bool {
	return r > TBase && r < TBase+TCount
}

// Decompose splits a precomposed syllable into its onset, nucleus, and coda
// indices. coda is 0 when the syllable has no trailing consonant. ok is
// false if r is not a precomposed Hangul syllable.
func Decompose(r rune) (onset, nucleus, coda int, ok bool) {
	if !IsSyllable(r) {
		return 0, 0, 0, false
	}
	s := int(r) - SBase
	onset = s / NCount
	nucleus = (s % NCount) / TCount
	coda = s % TCount
	return onset, nucleus, coda, true
}

// Compose builds a precomposed syllable from 0-based onset/nucleus indices
// and a 0-based coda index (0 == no coda). ok is false if any index is out
// of range.
func Compose(onset, nucleus, coda int) (rune, bool) {
	if onset < 0 || onset >= LCount || nucleus < 0 || nucleus >= VCount || coda < 0 || coda >= TCount {
		return 0, false
	}
	return rune(SBase + (onset*VCount+nucleus)*TCount + coda), true
}

// OnsetOf returns the normalized onset jamo for a 0-based onset index.
func OnsetOf(idx int) rune { return rune(LBase + idx) }

// NucleusOf returns the normalized nucleus jamo for a 0-based nucleus index.
func NucleusOf(idx int) rune { return rune(VBase + idx) }

// CodaOf returns the normalized coda jamo for a 1-based coda index (0 means
// "no coda" and has no normalized rune).
func CodaOf(idx int) (rune, bool) {
	if idx <= 0 || idx >= TCount {
		return 0, false
	}
	return rune(TBase + idx), true
}

// OnsetIndex returns the 0-based onset index of a normalized onset jamo, or
// -1 if r is not an onset jamo.
func OnsetIndex(r rune) int {
	if !IsOnset(r) {
		return -1
	}
	return int(r - LBase)
}

// NucleusIndex returns the 0-based nucleus index of a normalized nucleus
// jamo, or -1 if r is not a nucleus jamo.
func NucleusIndex(r rune) int {
	if !IsNucleus(r) {
		return -1
	}
	return int(r - VBase)
}

// CodaIndex returns the 1-based coda index of a normalized coda jamo, or 0
// if r is not a coda jamo (matching the "no coda" convention).
func CodaIndex(r rune) int {
	if !IsCoda(r) {
		return 0
	}
	return int(r - TBase)
}

// JoinOnsetVowel composes a syllable with no coda from a 0-based onset index
// and nucleus index.
func JoinOnsetVowel(onsetIdx, nucleusIdx int) rune {
	r, _ := Compose(onsetIdx, nucleusIdx, 0)
	return r
}

// Normalize converts a UTF-16-style string into its jamo-decomposed form.
// Each precomposed Hangul syllable is replaced by its onset, nucleus, and
// (if present) coda jamo; every other rune, including the precomposed
// compatibility jamo block (U+3131..U+318E) used for standalone jamo, passes
// through unchanged.
func Normalize(s string) []rune {
	out := make([]rune, 0, len(s)+len(s)/2)
	for _, r := range s {
		if onset, nucleus, coda, ok := Decompose(r); ok {
			out = append(out, OnsetOf(onset), NucleusOf(nucleus))
			if coda != 0 {
				c, _ := CodaOf(coda)
				out = append(out, c)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// NormalizeString is a convenience wrapper around Normalize returning a
// string instead of a rune slice, for callers that only need to pass the
// jamo form onward (trie keys, rule DFA input) rather than index into it.
func NormalizeString(s string) string {
	return string(Normalize(s))
}

// Join is the inverse of Normalize: it recomposes any well-formed
// (onset, nucleus[, coda]) run into a single precomposed syllable. Jamo that
// do not form a complete onset+nucleus pair (dangling jamo at input
// boundaries, or a lone coda that is not preceded by an onset+nucleus) are
// copied through unchanged, matching the original sequence exactly.
//
// Join(Normalize(x)) == x for every x whose Hangul subsequences were
// well-formed on the way in.
func Join(units []rune) string {
	var sb strings.Builder
	sb.Grow(len(units))

	i := 0
	for i < len(units) {
		if IsOnset(units[i]) && i+1 < len(units) && IsNucleus(units[i+1]) {
			onset := OnsetIndex(units[i])
			nucleus := NucleusIndex(units[i+1])
			coda := 0
			consumed := 2
			if i+2 < len(units) && IsCoda(units[i+2]) {
				// A coda only attaches here if it isn't itself the onset of
				// a following syllable, i.e. it is not followed by a nucleus
				// that would make it more naturally the next syllable's
				// onset. Coda jamo and onset jamo occupy disjoint Unicode
				// ranges, so no such ambiguity exists for normalized input.
				coda = CodaIndex(units[i+2])
				consumed = 3
			}
			if r, ok := Compose(onset, nucleus, coda); ok {
				sb.WriteRune(r)
				i += consumed
				continue
			}
		}
		sb.WriteRune(units[i])
		i++
	}
	return sb.String()
}

// JoinString is a convenience wrapper around Join for string-typed jamo
// sequences (as produced by NormalizeString).
func JoinString(s string) string {
	return Join([]rune(s))
}
