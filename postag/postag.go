// Package postag defines the closed part-of-speech tag enumeration used
// throughout the analyzer: dictionary entries, lattice nodes, decoder
// output, and the joiner all exchange morphemes tagged with a Tag value.
//
// The set mirrors the Sejong/Kiwi-style Korean tagset: nouns, verbs,
// adjectives, endings, particles, suffixes, prefixes, symbols, and a small
// number of web-specific tags produced by the pattern matcher.
package postag

import (
	"encoding/json"
	"fmt"
)

// Tag classifies a morpheme by grammatical category.
type Tag int

const (
	Unknown Tag = iota

	// Nouns
	NNG // general noun
	NNP // proper noun
	NNB // bound noun (dependent noun)
	NR  // number
	NP  // pronoun

	// Verbs / adjectives
	VV  // verb
	VA  // adjective
	VX  // auxiliary verb/adjective
	VCP // copula (positive, "이다")
	VCN // copula (negative, "아니다")

	// Adverbs / determiners
	MAG // general adverb
	MAJ // conjunctive adverb
	MM  // determiner

	// Interjection
	IC

	// Endings
	EP  // pre-final ending
	EF  // final ending
	EC  // connective ending
	ETN // nominalizing ending
	ETM // adnominal ending

	// Particles
	JKS // subject particle
	JKO // object particle
	JKB // adverbial particle
	JKG // adnominal particle
	JKV // vocative particle
	JKQ // quotative particle
	JKC // complement particle
	JX  // auxiliary particle
	JC  // conjunctive particle

	// Suffixes / prefixes
	XSN  // noun-deriving suffix
	XSV  // verb-deriving suffix
	XSA  // adjective-deriving suffix
	XSAI // adjective-deriving suffix (irregular-triggering)
	XR   // root
	XPN  // noun-deriving prefix

	// Symbols
	SF  // sentence-final punctuation (. ! ?)
	SP  // pause punctuation (, / : ;)
	SS  // quotation/bracket (generic)
	SSO // opening bracket
	SSC // closing bracket
	SE  // ellipsis
	SO  // dash/hyphen-like symbol
	SW  // other symbol
	SL  // foreign-script run
	SH  // Chinese-character run
	SN  // number run

	// Web tags (pattern matcher output)
	WURL
	WEMAIL
	WMENTION
	WHASHTAG
	WSERIAL
	WEMOJI
)

var tagNames = map[Tag]string{
	Unknown:  "UNK",
	NNG:      "NNG",
	NNP:      "NNP",
	NNB:      "NNB",
	NR:       "NR",
	NP:       "NP",
	VV:       "VV",
	VA:       "VA",
	VX:       "VX",
	VCP:      "VCP",
	VCN:      "VCN",
	MAG:      "MAG",
	MAJ:      "MAJ",
	MM:       "MM",
	IC:       "IC",
	EP:       "EP",
	EF:       "EF",
	EC:       "EC",
	ETN:      "ETN",
	ETM:      "ETM",
	JKS:      "JKS",
	JKO:      "JKO",
	JKB:      "JKB",
	JKG:      "JKG",
	JKV:      "JKV",
	JKQ:      "JKQ",
	JKC:      "JKC",
	JX:       "JX",
	JC:       "JC",
	XSN:      "XSN",
	XSV:      "XSV",
	XSA:      "XSA",
	XSAI:     "XSAI",
	XR:       "XR",
	XPN:      "XPN",
	SF:       "SF",
	SP:       "SP",
	SS:       "SS",
	SSO:      "SSO",
	SSC:      "SSC",
	SE:       "SE",
	SO:       "SO",
	SW:       "SW",
	SL:       "SL",
	SH:       "SH",
	SN:       "SN",
	WURL:     "W_URL",
	WEMAIL:   "W_EMAIL",
	WMENTION: "W_MENTION",
	WHASHTAG: "W_HASHTAG",
	WSERIAL:  "W_SERIAL",
	WEMOJI:   "W_EMOJI",
}

var tagFromName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for t, n := range tagNames {
		m[n] = t
	}
	return m
}()

// String returns the tag's canonical short name, e.g. "NNG".
func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Parse looks up a Tag by its canonical name. It reports false for unknown
// names rather than silently returning Unknown, so callers building
// dictionaries from external text can distinguish "unknown tag" from a
// genuine UNK entry.
func Parse(name string) (Tag, bool) {
	t, ok := tagFromName[name]
	return t, ok
}

// MarshalJSON encodes the tag as its canonical string name.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a canonical string name into a Tag.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tag, ok := tagFromName[s]
	if !ok {
		return fmt.Errorf("postag: unknown tag %q", s)
	}
	*t = tag
	return nil
}

// IsNoun reports whether t is one of the noun-class tags (NNG/NNP/NNB/NR/NP),
// used by the decoder's POS-bigram legality check.
func (t Tag) IsNoun() bool {
	switch t {
	case NNG, NNP, NNB, NR, NP:
		return true
	}
	return false
}

// IsVerbClass reports whether t is a verb or adjective class tag
// (VV/VA/VX/VCP/VCN), used by the decoder's POS-bigram legality check.
func (t Tag) IsVerbClass() bool {
	switch t {
	case VV, VA, VX, VCP, VCN:
		return true
	}
	return false
}

// IsEClass reports whether t is an ending tag (EP/EF/EC/ETN/ETM).
func (t Tag) IsEClass() bool {
	switch t {
	case EP, EF, EC, ETN, ETM:
		return true
	}
	return false
}

// IsJClass reports whether t is a particle tag.
func (t Tag) IsJClass() bool {
	switch t {
	case JKS, JKO, JKB, JKG, JKV, JKQ, JKC, JX, JC:
		return true
	}
	return false
}

// IsSuffixClass reports whether t is a suffix tag (XSN/XSV/XSA/XSAI).
func (t Tag) IsSuffixClass() bool {
	switch t {
	case XSN, XSV, XSA, XSAI:
		return true
	}
	return false
}

// IsWebTag reports whether t was produced by the pattern matcher.
func (t Tag) IsWebTag() bool {
	switch t {
	case WURL, WEMAIL, WMENTION, WHASHTAG, WSERIAL, WEMOJI:
		return true
	}
	return false
}
