package komorph

import "github.com/ko-nlp/komorph/pattern"

// Config is the runtime-settable configuration copied into every Analyzer at
// Build time. A package-level zero value is never read during Analyze; it
// exists only as the factory default DefaultConfig returns.
type Config struct {
	IntegrateAllomorph bool    `json:"integrateAllomorph"`
	CutOffThreshold    float64 `json:"cutOffThreshold"`
	UnkFormScoreScale  float64 `json:"unkFormScoreScale"`
	UnkFormScoreBias   float64 `json:"unkFormScoreBias"`
	SpacePenalty       float64 `json:"spacePenalty"`
	TypoCostWeight     float64 `json:"typoCostWeight"`
	MaxUnkFormSize     int     `json:"maxUnkFormSize"`
	SpaceTolerance     int     `json:"spaceTolerance"`
}

// DefaultConfig returns the factory-default Config. It is a convenience
// starting point for a Builder, never consulted during Analyze itself.
func DefaultConfig() Config {
	return Config{
		IntegrateAllomorph: true,
		CutOffThreshold:    5.0,
		UnkFormScoreScale:  5.0,
		UnkFormScoreBias:   0,
		SpacePenalty:       3.0,
		TypoCostWeight:     1.0,
		MaxUnkFormSize:     6,
		SpaceTolerance:     0,
	}
}

// BuildOptions is a bitset of dictionary/typo-loading choices consulted at
// Builder.Build.
type BuildOptions uint32

const (
	BuildIntegrateAllomorph BuildOptions = 1 << iota
	BuildLoadDefaultDict
	BuildLoadTypoDict
	BuildLoadMultiDict
)

// MatchOptions selects which pattern sub-matchers and affix-joining
// behaviors Analyze consults; it is a direct re-export of pattern.Options so
// callers outside this module never need to import the pattern package
// directly.
type MatchOptions = pattern.Options

const (
	MatchURL              = pattern.OptURL
	MatchEmail             = pattern.OptEmail
	MatchMention            = pattern.OptMention
	MatchHashtag            = pattern.OptHashtag
	MatchSerial             = pattern.OptSerial
	MatchEmoji              = pattern.OptEmoji
	MatchNormalizeCoda      = pattern.OptNormalizeCoda
	MatchSplitComplex       = pattern.OptSplitComplex
	MatchZWJZCoda           = pattern.OptZWJZCoda
	MatchJoinNounPrefix     = pattern.OptJoinNounPrefix
	MatchJoinNounSuffix     = pattern.OptJoinNounSuffix
	MatchJoinAdjSuffix      = pattern.OptJoinAdjSuffix
	MatchJoinVerbSuffix     = pattern.OptJoinVerbSuffix

	MatchNone              = pattern.OptNone
	MatchAll               = pattern.OptAll
	MatchAllWithNormalizing = pattern.OptAllWithNormalize
	MatchJoinAffix          = pattern.OptJoinAffix
)
