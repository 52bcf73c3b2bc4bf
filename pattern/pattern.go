// Package pattern implements the left-anchored, longest-match scanner used
// to recognize URL, email, mention, hashtag, numeric, serial, abbreviation,
// and emoji tokens at a given byte offset in the input text.
//
// Each recognizer is a small hand-written state machine operating directly
// on bytes/runes, rather than a general regular expression engine: the
// pattern matcher runs at every position that might begin a non-dictionary
// token, so each matcher is written to do the least work needed to confirm
// or reject a match.
package pattern

import (
	"unicode"
	"unicode/utf8"

	"github.com/ko-nlp/komorph/postag"
)

// Options selects which sub-matchers Match consults, mirroring the
// public MatchOptions bit flags.
type Options uint32

const (
	OptURL Options = 1 << iota
	OptEmail
	OptMention
	OptHashtag
	OptSerial
	OptEmoji
	OptNormalizeCoda
	OptSplitComplex
	OptZWJZCoda
	OptJoinNounPrefix
	OptJoinNounSuffix
	OptJoinAdjSuffix
	OptJoinVerbSuffix
)

const (
	OptNone             Options = 0
	OptAll                      = OptURL | OptEmail | OptMention | OptHashtag | OptSerial | OptEmoji
	OptAllWithNormalize         = OptAll | OptNormalizeCoda
	OptJoinAffix                = OptJoinNounPrefix | OptJoinNounSuffix | OptJoinAdjSuffix | OptJoinVerbSuffix
)

// Match reports the longest left-anchored pattern match for s[pos:], in
// sub-matcher priority order: serial, numeric, hashtag, email, mention,
// url, emoji, abbreviation. The first non-empty match wins. length is a
// byte count; length == 0 means no sub-matcher fired at pos.
func Match(s string, pos int, opts Options) (length int, tag postag.Tag) {
	if opts&OptSerial != 0 {
		if n := matchSerial(s, pos); n > 0 {
			return n, postag.WSERIAL
		}
	}
	if n := matchNumeric(s, pos); n > 0 {
		return n, postag.SN
	}
	if opts&OptHashtag != 0 {
		if n := matchHashtag(s, pos); n > 0 {
			return n, postag.WHASHTAG
		}
	}
	if opts&OptEmail != 0 {
		if n := matchEmail(s, pos); n > 0 {
			return n, postag.WEMAIL
		}
	}
	if opts&OptMention != 0 {
		if n := matchMention(s, pos); n > 0 {
			return n, postag.WMENTION
		}
	}
	if opts&OptURL != 0 {
		if n := matchURL(s, pos); n > 0 {
			return n, postag.WURL
		}
	}
	if opts&OptEmoji != 0 {
		if n := matchEmoji(s, pos); n > 0 {
			return n, postag.WEMOJI
		}
	}
	if n := matchAbbreviation(s, pos); n > 0 {
		return n, postag.SL
	}
	return 0, postag.Unknown
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func isAlphaByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isURLLabelByte(b byte) bool {
	return isAlphaByte(b) || isDigitByte(b) || b == '-'
}

// runeAt decodes the rune starting at byte offset i, returning 0,0 past the
// end of s.
func runeAt(s string, i int) (rune, int) {
	if i >= len(s) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s[i:])
}

// isIdentContinuation reports whether r would extend an ASCII-ish
// identifier/number run: a Latin letter, digit, or underscore. Hangul
// syllables deliberately do not count: particles and endings attach to
// numbers/URLs/emails without whitespace ("12:34에"), so a following Hangul
// syllable is not ambiguous with the match the way a following Latin letter
// or digit would be (e.g. "3D" or "12a" would need to extend the run).
func isIdentContinuation(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || unicode.IsDigit(r) || r == '_'
}

// isWordBoundaryAfter reports whether the byte at s[i] (or end of string)
// constitutes a word boundary for the simple ASCII-oriented \b checks the
// URL/numeric/serial matchers need.
func isWordBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := runeAt(s, i)
	return !isIdentContinuation(r)
}

func isWordBoundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isIdentContinuation(r)
}

// ---------------------------------------------------------------------
// Numeric: [0-9]+(,[0-9]{3})*(\.[0-9]+)?
// Rejected if immediately followed by '.' that is not part of a decimal
// (handled by construction below) or surrounded by identifier-like
// characters that would make the match ambiguous with a word/serial run.
// ---------------------------------------------------------------------

func matchNumeric(s string, pos int) int {
	if pos >= len(s) || !isDigitByte(s[pos]) || !isWordBoundaryBefore(s, pos) {
		return 0
	}
	i := pos
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	// Thousand-separator commas: group of exactly 3 digits each.
	for i < len(s) && s[i] == ',' && i+4 <= len(s) &&
		isDigitByte(s[i+1]) && isDigitByte(s[i+2]) && isDigitByte(s[i+3]) &&
		(i+4 >= len(s) || !isDigitByte(s[i+4])) {
		i += 4
	}
	// Decimal point followed by at least one digit.
	if i < len(s) && s[i] == '.' && i+1 < len(s) && isDigitByte(s[i+1]) {
		j := i + 1
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
		// If another '.' immediately follows, this is actually a serial
		// (two or more dot-separated groups); numeric wins on a single
		// decimal group only, so only extend past the decimal digits.
		i = j
	}
	if i == pos {
		return 0
	}
	// A numeric run immediately followed by another '.'-group (i.e. it is
	// really a serial number) defers to the serial matcher, which runs
	// first in Match's priority order; here we just reject a trailing bare
	// '.' that isn't a decimal continuation (e.g. "12." at end of
	// sentence) by not having consumed it above, and require what follows
	// not be alphanumeric (ambiguous with an identifier like "3D").
	if !isWordBoundaryAfter(s, i) {
		return 0
	}
	return i - pos
}

// ---------------------------------------------------------------------
// Serial: [0-9]+(sep ?[0-9]+){1,} where sep in {: - / .}; sep=='.' requires
// at least three groups total (otherwise it is ambiguous with numeric's
// decimal point).
// ---------------------------------------------------------------------

func matchSerial(s string, pos int) int {
	if pos >= len(s) || !isDigitByte(s[pos]) || !isWordBoundaryBefore(s, pos) {
		return 0
	}
	i := pos
	groups := 1
	dotSep := false
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	for {
		j := i
		if j >= len(s) {
			break
		}
		sep := s[j]
		if sep != ':' && sep != '-' && sep != '/' && sep != '.' {
			break
		}
		j++
		if j < len(s) && s[j] == ' ' {
			j++
		}
		digitsStart := j
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
		if j == digitsStart {
			break // no digits after separator: not a valid group
		}
		if sep == '.' {
			dotSep = true
		}
		i = j
		groups++
	}
	if groups < 2 {
		return 0
	}
	if dotSep && groups < 3 {
		// A single dot-separated pair is indistinguishable from a decimal
		// number; require three or more groups when '.' is the separator.
		return 0
	}
	if !isWordBoundaryAfter(s, i) {
		return 0
	}
	return i - pos
}

// ---------------------------------------------------------------------
// Hashtag: '#' then one or more runes excluding '#', whitespace, and
// . , ( ) [ ] < > { }
// ---------------------------------------------------------------------

func matchHashtag(s string, pos int) int {
	if pos >= len(s) || s[pos] != '#' {
		return 0
	}
	i := pos + 1
	start := i
	for i < len(s) {
		r, size := runeAt(s, i)
		if r == '#' || unicode.IsSpace(r) || isHashtagStop(r) {
			break
		}
		i += size
	}
	if i == start {
		return 0
	}
	return i - pos
}

func isHashtagStop(r rune) bool {
	switch r {
	case '.', ',', '(', ')', '[', ']', '<', '>', '{', '}':
		return true
	}
	return false
}

// ---------------------------------------------------------------------
// Email: acct@domain.tld, acct in [-A-Za-z0-9._%+]+, domain follows the
// URL-label rules (>=2 dot-separated labels, final label >=2 letters).
// ---------------------------------------------------------------------

func isEmailLocalByte(b byte) bool {
	return isAlphaByte(b) || isDigitByte(b) || b == '-' || b == '.' || b == '_' || b == '%' || b == '+'
}

func matchEmail(s string, pos int) int {
	i := pos
	for i < len(s) && isEmailLocalByte(s[i]) {
		i++
	}
	if i == pos || i >= len(s) || s[i] != '@' {
		return 0
	}
	domainStart := i + 1
	labelEnd, ok := matchURLDomain(s, domainStart)
	if !ok {
		return 0
	}
	if !isWordBoundaryAfter(s, labelEnd) {
		return 0
	}
	return labelEnd - pos
}

// ---------------------------------------------------------------------
// Mention: @[A-Za-z][A-Za-z0-9._%+-]{3,} with no trailing punctuation.
// ---------------------------------------------------------------------

func isMentionByte(b byte) bool {
	return isAlphaByte(b) || isDigitByte(b) || b == '.' || b == '_' || b == '%' || b == '+' || b == '-'
}

func matchMention(s string, pos int) int {
	if pos >= len(s) || s[pos] != '@' || pos+1 >= len(s) || !isAlphaByte(s[pos+1]) {
		return 0
	}
	i := pos + 2
	for i < len(s) && isMentionByte(s[i]) {
		i++
	}
	// Need at least 3 more characters after the mandatory first letter.
	if i-(pos+2) < 3 {
		return 0
	}
	// Trim trailing punctuation (., _, -, %, +) that isn't part of a handle.
	for i > pos+1 {
		b := s[i-1]
		if b == '.' || b == '_' || b == '-' || b == '%' || b == '+' {
			i--
			continue
		}
		break
	}
	if i-(pos+2) < 3 {
		return 0
	}
	return i - pos
}

// ---------------------------------------------------------------------
// URL: optional http(s)://, >=2 dot-separated labels (final label >=2
// letters), optional :PORT, optional /path over a restricted class, must
// end on a word boundary; trailing '.' or ':' dropped.
// ---------------------------------------------------------------------

// matchURLDomain scans a domain starting at pos and returns the end offset
// of the longest valid dot-separated label run (>=2 labels, last label
// >=2 letters, each label alphanumeric+hyphen). ok is false if no valid
// domain starts at pos.
func matchURLDomain(s string, pos int) (end int, ok bool) {
	i := pos
	labelCount := 0
	lastLabelStart := i
	for {
		labelStart := i
		for i < len(s) && isURLLabelByte(s[i]) {
			i++
		}
		if i == labelStart {
			break
		}
		labelCount++
		lastLabelStart = labelStart
		if i < len(s) && s[i] == '.' && i+1 < len(s) && isURLLabelByte(s[i+1]) {
			i++
			continue
		}
		break
	}
	if labelCount < 2 {
		return 0, false
	}
	lastLabel := s[lastLabelStart:i]
	alphaCount := 0
	for _, r := range lastLabel {
		if unicode.IsLetter(r) {
			alphaCount++
		}
	}
	if alphaCount < 2 {
		return 0, false
	}
	return i, true
}

func hasURLScheme(s string, pos int) (schemeEnd int, ok bool) {
	rest := s[pos:]
	if len(rest) >= 8 &&
		(rest[0] == 'h' || rest[0] == 'H') && (rest[1] == 't' || rest[1] == 'T') &&
		(rest[2] == 't' || rest[2] == 'T') && (rest[3] == 'p' || rest[3] == 'P') {
		if (rest[4] == 's' || rest[4] == 'S') && rest[5] == ':' && rest[6] == '/' && rest[7] == '/' {
			return pos + 8, true
		}
	}
	if len(rest) >= 7 &&
		(rest[0] == 'h' || rest[0] == 'H') && (rest[1] == 't' || rest[1] == 'T') &&
		(rest[2] == 't' || rest[2] == 'T') && (rest[3] == 'p' || rest[3] == 'P') &&
		rest[4] == ':' && rest[5] == '/' && rest[6] == '/' {
		return pos + 7, true
	}
	return pos, false
}

func isURLPathByte(b byte) bool {
	switch {
	case isAlphaByte(b) || isDigitByte(b):
		return true
	}
	switch b {
	case '/', '-', '.', '_', '~', '?', '#', '[', ']', '@', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '%':
		return true
	}
	return false
}

func matchURL(s string, pos int) int {
	domainStart, hasScheme := hasURLScheme(s, pos)
	if !hasScheme {
		domainStart = pos
	}
	domainEnd, ok := matchURLDomain(s, domainStart)
	if !ok {
		return 0
	}
	i := domainEnd
	// Optional :PORT
	if i < len(s) && s[i] == ':' && i+1 < len(s) && isDigitByte(s[i+1]) {
		j := i + 1
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
		i = j
	}
	// Optional /path
	if i < len(s) && s[i] == '/' {
		j := i
		for j < len(s) && isURLPathByte(s[j]) {
			j++
		}
		i = j
	}
	if !isWordBoundaryAfter(s, i) {
		return 0
	}
	// Drop a trailing '.' or ':' that isn't meaningfully part of the URL.
	for i > pos && (s[i-1] == '.' || s[i-1] == ':') {
		i--
	}
	return i - pos
}

// ---------------------------------------------------------------------
// Abbreviation: [A-Za-z]{1,5}\.([A-Za-z]{1,5}\.)*
// ---------------------------------------------------------------------

func matchAbbreviation(s string, pos int) int {
	i := pos
	groups := 0
	for {
		j := i
		for j < len(s) && isAlphaByte(s[j]) && j-i < 5 {
			j++
		}
		if j == i || j >= len(s) || s[j] != '.' {
			break
		}
		i = j + 1
		groups++
	}
	if groups == 0 {
		return 0
	}
	return i - pos
}

// ---------------------------------------------------------------------
// Emoji: walks one or two code points, recognizing ZWJ sequences,
// variation selectors, and skin-tone modifiers.
// ---------------------------------------------------------------------

const (
	zwj              = 0x200D
	variationSelector = 0xFE0F
)

func isSkinToneModifier(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

func isEmojiBase(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows, used in some emoji-adjacent sets
		return false
	case r == 0x2764 || r == 0x2705 || r == 0x2714 || r == 0x274C:
		return true
	}
	return false
}

func matchEmoji(s string, pos int) int {
	r, size := runeAt(s, pos)
	if size == 0 || !isEmojiBase(r) {
		return 0
	}
	i := pos + size
	for {
		r, size = runeAt(s, i)
		if size == 0 {
			break
		}
		switch {
		case r == variationSelector:
			i += size
			continue
		case isSkinToneModifier(r):
			i += size
			continue
		case r == zwj:
			// ZWJ must be followed by another emoji base to continue the
			// sequence; otherwise stop before consuming the ZWJ.
			next, nsize := runeAt(s, i+size)
			if nsize > 0 && isEmojiBase(next) {
				i += size + nsize
				continue
			}
		}
		break
	}
	return i - pos
}
