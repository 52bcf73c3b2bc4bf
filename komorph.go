// Package komorph is a Korean morphological analyzer: it segments and tags
// raw text into part-of-speech-labeled morphemes under a statistical
// language model (the morpheme-graph construction and Viterbi decoder), and
// composes morphemes back into surface text (the Joiner). Build a Builder,
// customize it, then call Build to obtain an immutable, concurrency-safe
// Analyzer.
//
// A Builder/immutable-result split keeps the dictionary mutable only until
// Build freezes it; default data for the dictionary, rule set, and
// language model is loaded via go:embed in each subpackage, and this file
// plus stream.go form a thin orchestration layer wiring the linguistic
// packages together behind a reusable library API.
package komorph

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/ko-nlp/komorph/decoder"
	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/joiner"
	"github.com/ko-nlp/komorph/lattice"
	"github.com/ko-nlp/komorph/lm"
	"github.com/ko-nlp/komorph/postag"
	"github.com/ko-nlp/komorph/rule"
	"github.com/ko-nlp/komorph/sentence"
	"github.com/ko-nlp/komorph/typo"
)

// BuilderOption configures a Builder before Build.
type BuilderOption func(*Builder)

// WithConfig overrides the runtime Config copied into the built Analyzer.
func WithConfig(c Config) BuilderOption {
	return func(b *Builder) { b.config = c }
}

// WithWorkers sets the fixed worker-pool size AnalyzeAsync/AnalyzeStream
// dispatch onto. The default is 4.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithScorer overrides the language-model scorer; if unset, Build loads
// lm.Default(), the embedded POS-bigram scorer.
func WithScorer(s lm.Scorer) BuilderOption {
	return func(b *Builder) { b.scorer = s }
}

// WithRuleSource overrides the combining-rule source text; if unset, Build
// loads rule.Default(), the embedded rule set.
func WithRuleSource(source string) BuilderOption {
	return func(b *Builder) { b.ruleSource = &source }
}

// WithDictBuilder overrides the dictionary builder entirely (e.g. a caller
// that wants to start from a custom dictionary instead of dict.Default()).
func WithDictBuilder(d *dict.Builder) BuilderOption {
	return func(b *Builder) { b.dictBuilder = d }
}

// UserDictLoader merges a caller-supplied dictionary source (such as
// internal/store.Store.LoadInto) into the Builder's dictionary before Build,
// without this package needing to depend on any particular storage backend.
type UserDictLoader interface {
	LoadInto(b *dict.Builder) error
}

// WithUserDict registers a UserDictLoader whose entries are merged into the
// dictionary at Build time, after the default/overridden base dictionary is
// established.
func WithUserDict(loader UserDictLoader) BuilderOption {
	return func(b *Builder) { b.userDicts = append(b.userDicts, loader) }
}

// Builder owns the mutable dictionary, rule source, and configuration before
// Build freezes them into an immutable Analyzer.
type Builder struct {
	opts        BuildOptions
	config      Config
	workers     int
	dictBuilder *dict.Builder
	ruleSource  *string
	scorer      lm.Scorer
	userDicts   []UserDictLoader
}

// NewBuilder returns a Builder configured by opts, applying BuildOptions
// bits: BuildLoadDefaultDict, when set, seeds dict.Default(); without it,
// the caller must supply WithDictBuilder (or call AddEntry/Block, which
// create the default dictionary as a base).
func NewBuilder(buildOpts BuildOptions, opts ...BuilderOption) *Builder {
	b := &Builder{
		opts:    buildOpts,
		config:  DefaultConfig(),
		workers: 4,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// AddEntry registers a custom dictionary entry directly on the Builder,
// lazily creating the default embedded dictionary as a base if none was
// supplied via WithDictBuilder.
func (b *Builder) AddEntry(e dict.Entry) (int32, error) {
	if err := b.ensureDictBuilder(); err != nil {
		return 0, err
	}
	return b.dictBuilder.Add(e), nil
}

// Block marks idx as excluded from future lattice candidate generation.
func (b *Builder) Block(idx int32) error {
	if err := b.ensureDictBuilder(); err != nil {
		return err
	}
	b.dictBuilder.Block(idx)
	return nil
}

// ensureDictBuilder is used by AddEntry/Block, which need a dictionary to
// mutate regardless of BuildOptions; it always falls back to the embedded
// default rather than leaving the caller with a nil Builder to dereference.
func (b *Builder) ensureDictBuilder() error {
	if b.dictBuilder != nil {
		return nil
	}
	base, err := dict.Default()
	if err != nil {
		return newError(IoError, "load default dictionary", err)
	}
	b.dictBuilder = base
	return nil
}

// Build consumes the Builder and produces an immutable Analyzer. It is the
// one fallible entry point in this package: analysis itself (Analyze,
// AnalyzeAsync, AnalyzeStream) never fails on a built Analyzer.
func (b *Builder) Build() (*Analyzer, error) {
	if b.dictBuilder == nil {
		if b.opts&BuildLoadDefaultDict == 0 {
			return nil, newError(InvalidArgument, "no dictionary configured: pass BuildLoadDefaultDict or WithDictBuilder", nil)
		}
		if err := b.ensureDictBuilder(); err != nil {
			return nil, err
		}
	}
	for _, loader := range b.userDicts {
		if err := loader.LoadInto(b.dictBuilder); err != nil {
			return nil, newError(IoError, "load user dictionary", err)
		}
	}
	d := b.dictBuilder.Build()
	log.Info().Int("entries", d.NumEntries()).Msg("komorph: dictionary built")

	var ruleSet *rule.Set
	if b.ruleSource != nil {
		rs, errs := rule.Load(*b.ruleSource)
		if len(errs) > 0 {
			log.Error().Err(errs[0]).Msg("komorph: rule source load failed")
			return nil, newError(FormatError, "load rule source", errs[0])
		}
		ruleSet = rs
	} else {
		rs, errs := rule.Default()
		if len(errs) > 0 {
			return nil, newError(FormatError, "load default rule set", errs[0])
		}
		ruleSet = rs
	}

	scorer := b.scorer
	if scorer == nil {
		s, err := lm.Default()
		if err != nil {
			return nil, newError(IoError, "load default language model", err)
		}
		scorer = s
	}

	var typos *typo.Set
	if b.opts&BuildLoadTypoDict != 0 {
		typos = typo.BasicTypoSet().Merge(typo.ContinualTypoSet())
	}

	workers := b.workers
	if workers <= 0 {
		workers = 4
	}

	a := &Analyzer{
		dict:    d,
		rules:   ruleSet,
		scorer:  scorer,
		config:  b.config,
		typos:   typos,
		workers: workers,
	}
	a.startPool(workers)
	log.Info().Int("workers", workers).Msg("komorph: analyzer built")
	return a, nil
}

// PretokenizedSpan is a caller-supplied pre-tokenized constraint given in
// rune offsets of the original input text: the decoder only accepts paths
// whose node boundaries align with [Start, End), and, if Subtokens is
// non-empty, whose morpheme sequence inside the span matches it exactly.
type PretokenizedSpan struct {
	Start, End int
	Subtokens  []SubToken
}

// SubToken pins one morpheme within a PretokenizedSpan.
type SubToken struct {
	Form string
	Tag  postag.Tag
}

// BlockedMorpheme names one dictionary entry to exclude from a single
// Analyze call's lattice, by its surface form and tag (rather than an
// internal dictionary index, which a caller of this package never sees).
type BlockedMorpheme struct {
	Form string
	Tag  postag.Tag
}

// Options configures one Analyze/AnalyzeAsync/AnalyzeStream call.
type Options struct {
	Match        MatchOptions
	Dialect      rule.Dialect
	Blocked      []BlockedMorpheme
	Pretokenized []PretokenizedSpan
	WithTypos    bool // consult the Analyzer's typo.Set, if one was built
}

// Token is one decoded morpheme in a Result, positioned in rune offsets of
// the original input text (Go strings are natively indexed in runes, so
// this is the idiomatic stand-in for a UTF-16 code-unit offset).
type Token struct {
	Surface      string
	Tag          postag.Tag
	SenseID      int32
	Position     int
	Length       int
	WordPosition int
	SentPosition int
	Score        float64
	TypoCost     float64
	Dialect      rule.Dialect
}

// Result is one ranked complete analysis.
type Result struct {
	Tokens []Token
	Score  float64
}

// Analyzer is the immutable, build product of a Builder: safe to share
// across concurrent Analyze/AnalyzeAsync/AnalyzeStream calls without locks.
// Per-call working memory (the lattice and decoder's beams) is allocated
// fresh on every call.
type Analyzer struct {
	dict    *dict.Dict
	rules   *rule.Set
	scorer  lm.Scorer
	config  Config
	typos   *typo.Set
	workers int

	jobs chan job
	done chan struct{}
}

// Analyze runs a single-shot analysis of text, returning up to topN ranked
// candidate analyses sorted by ascending cost. It never fails on a built
// Analyzer: a string with no recognizable structure still decodes via the
// unknown-form fallback.
func (a *Analyzer) Analyze(text string, topN int, opts Options) []Result {
	jamoBuf, toOrig := normalizeWithMap(text)
	origRunes := []rune(text)

	var typos *typo.Set
	if opts.WithTypos {
		typos = a.typos
	}

	lb := lattice.NewBuilder(a.dict, a.rules)
	dialect := opts.Dialect
	if dialect == 0 {
		dialect = rule.DialectStandard
	}
	nodes := lb.Build(jamoBuf, lattice.Options{
		Match:          opts.Match,
		Dialect:        dialect,
		Typos:          typos,
		MaxUnkFormSize: a.config.MaxUnkFormSize,
		UnkScoreScale:  a.config.UnkFormScoreScale,
		UnkScoreBias:   a.config.UnkFormScoreBias,
	})

	paths := decoder.Decode(jamoBuf, nodes, a.scorer, decoder.Options{
		TopN:               topN,
		SpaceTolerance:      a.config.SpaceTolerance,
		SpacePenalty:        a.config.SpacePenalty,
		IntegrateAllomorph:  a.config.IntegrateAllomorph,
		Blocked:             a.blockedSet(opts.Blocked),
		Pretokenized:        a.convertSpans(opts.Pretokenized, toOrig, len(jamoBuf)),
	})

	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		results = append(results, a.toResult(p, toOrig, origRunes, dialect))
	}
	return results
}

// blockedSet resolves caller-facing BlockedMorpheme (form, tag) pairs into
// the internal dictionary-index set decoder.Options.Blocked expects.
func (a *Analyzer) blockedSet(blocked []BlockedMorpheme) map[int32]bool {
	if len(blocked) == 0 {
		return nil
	}
	out := make(map[int32]bool, len(blocked))
	for i := int32(0); i < int32(a.dict.NumEntries()); i++ {
		e := a.dict.Entry(i)
		for _, b := range blocked {
			if b.Tag == e.Tag && jamo.Join(e.Form) == b.Form {
				out[i] = true
			}
		}
	}
	return out
}

// convertSpans maps PretokenizedSpan rune offsets (against the original
// text) into the jamo-buffer offsets decoder.PretokenizedSpan expects.
func (a *Analyzer) convertSpans(spans []PretokenizedSpan, toOrig []int, jamoLen int) []decoder.PretokenizedSpan {
	if len(spans) == 0 {
		return nil
	}
	out := make([]decoder.PretokenizedSpan, 0, len(spans))
	for _, sp := range spans {
		start := origToJamo(toOrig, sp.Start, jamoLen)
		end := origToJamo(toOrig, sp.End, jamoLen)
		subs := make([]decoder.SubToken, 0, len(sp.Subtokens))
		for _, st := range sp.Subtokens {
			subs = append(subs, decoder.SubToken{Form: string(jamo.Normalize(st.Form)), Tag: st.Tag})
		}
		out = append(out, decoder.PretokenizedSpan{Start: start, End: end, Subtokens: subs})
	}
	return out
}

// origToJamo finds the first jamo-buffer offset whose originating rune index
// is >= origOffset, the inverse of toOrig (which maps jamo offset -> rune
// offset). A linear scan is adequate here: pretokenized spans are a small,
// caller-supplied constraint list, not a hot per-node lookup.
func origToJamo(toOrig []int, origOffset, jamoLen int) int {
	for j, orig := range toOrig {
		if orig >= origOffset {
			return j
		}
	}
	return jamoLen
}

// normalizeWithMap is jamo.Normalize generalized to also return, for every
// jamo-buffer position, the rune index into the original text of the
// character that produced it, so Analyze can translate decoder offsets
// (measured in jamo units) back into the caller's text. Input is first put
// into Unicode NFC form so that precomposed and decomposed Hangul (or
// accented Latin fallback text) hashes to the same jamo sequence regardless
// of the caller's source encoding.
func normalizeWithMap(text string) (jamoBuf []rune, toOrig []int) {
	runes := []rune(norm.NFC.String(text))
	jamoBuf = make([]rune, 0, len(runes)+len(runes)/2)
	toOrig = make([]int, 0, cap(jamoBuf))
	for i, r := range runes {
		if onset, nucleus, coda, ok := jamo.Decompose(r); ok {
			jamoBuf = append(jamoBuf, jamo.OnsetOf(onset), jamo.NucleusOf(nucleus))
			toOrig = append(toOrig, i, i)
			if coda != 0 {
				c, _ := jamo.CodaOf(coda)
				jamoBuf = append(jamoBuf, c)
				toOrig = append(toOrig, i)
			}
			continue
		}
		jamoBuf = append(jamoBuf, r)
		toOrig = append(toOrig, i)
	}
	return jamoBuf, toOrig
}

// toResult translates one decoder.Path (positions in jamo-buffer offsets)
// into a Result positioned in original-text rune offsets, computing
// WordPosition (the 0-based index of the eojeol/space-separated word a
// token belongs to) and SentPosition (always 0 here; Analyze does not itself
// split sentences, see SplitIntoSents) along the way.
func (a *Analyzer) toResult(p decoder.Path, toOrig []int, origRunes []rune, dialect rule.Dialect) Result {
	tokens := make([]Token, 0, len(p.Tokens))
	wordPos := 0
	for i, tok := range p.Tokens {
		start := toOrig[tok.Start]
		var end int
		if tok.End < len(toOrig) {
			end = toOrig[tok.End]
		} else {
			end = len(origRunes)
		}
		if i > 0 && start > toOrig[p.Tokens[i-1].End-1]+1 {
			wordPos++ // a gap (a space) in the original text preceded this token
		}
		tokens = append(tokens, Token{
			Surface:      tok.Surface,
			Tag:          tok.Tag,
			Position:     start,
			Length:       end - start,
			WordPosition: wordPos,
			Score:        tok.Score,
			TypoCost:     tok.TypoCost,
			Dialect:      dialect,
		})
	}
	return Result{Tokens: tokens, Score: p.Cost}
}

// SplitIntoSents decodes text with a single-best Analyze, then partitions
// the resulting token stream into sentence spans via the sentence package.
func (a *Analyzer) SplitIntoSents(text string, opts Options) []sentence.Span {
	results := a.Analyze(text, 1, opts)
	if len(results) == 0 {
		return nil
	}
	toks := make([]sentence.Token, 0, len(results[0].Tokens))
	for _, t := range results[0].Tokens {
		toks = append(toks, sentence.Token{
			Surface: t.Surface,
			Tag:     t.Tag,
			Start:   t.Position,
			End:     t.Position + t.Length,
		})
	}
	return sentence.SplitIntoSents(text, toks, sentence.Options{})
}

// NewJoiner returns an AutoJoiner bound to this Analyzer's compiled rule set
// and dictionary (for allomorph pre-selection). lmSearch, when true, hands
// this Analyzer's LM scorer to the joiner (joiner.WithScorer): where several
// rule results match a boundary the lowest rule Score is kept; the joined
// surfaces themselves are not scored with the LM.
func (a *Analyzer) NewJoiner(lmSearch bool) *joiner.AutoJoiner {
	var opts []joiner.Option
	if lmSearch {
		opts = append(opts, joiner.WithScorer(a.scorer))
	}
	return joiner.New(a.rules, a.dict, opts...)
}

// Close signals the Analyzer's worker pool to stop and returns without
// waiting for the workers. A job a worker has already taken still runs and
// delivers its result; jobs still queued may never be picked up. Analyze (the
// synchronous path) does not depend on the pool and remains callable at any
// time, including after Close.
func (a *Analyzer) Close() {
	if a.done == nil {
		return
	}
	close(a.done)
}
