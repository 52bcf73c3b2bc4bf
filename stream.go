package komorph

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// job is one unit of work dispatched to the Analyzer's worker pool: analyze
// text under opts and deliver up to topN Results to reply.
type job struct {
	text  string
	topN  int
	opts  Options
	reply chan<- asyncResult
}

type asyncResult struct {
	results []Result
}

// startPool launches n fixed goroutines reading from a.jobs: a persistent
// channel-fed pool, since an Analyzer serves many short calls over its
// lifetime rather than one fixed batch.
func (a *Analyzer) startPool(n int) {
	a.jobs = make(chan job, n*2)
	a.done = make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case j, ok := <-a.jobs:
					if !ok {
						return
					}
					results := a.Analyze(j.text, j.topN, j.opts)
					j.reply <- asyncResult{results: results}
				case <-a.done:
					return
				}
			}
		}(i)
	}
}

// Future is a pending AnalyzeAsync result.
type Future struct {
	ch <-chan asyncResult
}

// Wait blocks until the analysis completes or ctx is done, whichever comes
// first.
func (f *Future) Wait(ctx context.Context) ([]Result, error) {
	select {
	case r := <-f.ch:
		return r.results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AnalyzeAsync dispatches one Analyze call onto the Analyzer's worker pool
// and returns immediately with a Future. Callers that never need
// concurrency should use Analyze directly instead; AnalyzeAsync exists for
// callers processing many independent texts who want them spread across the
// pool rather than serialized on one goroutine.
func (a *Analyzer) AnalyzeAsync(text string, topN int, opts Options) *Future {
	reply := make(chan asyncResult, 1)
	a.jobs <- job{text: text, topN: topN, opts: opts, reply: reply}
	return &Future{ch: reply}
}

// Status reports streaming progress: a per-chunk record sent over a channel
// during long-running batch processing.
type Status struct {
	LinesProcessed int
	LastLine       string
	Err            error
}

// Source yields lines of text to analyze; AnalyzeStream calls Next until it
// returns ok == false.
type Source interface {
	Next() (line string, ok bool)
}

// Sink receives one completed Result per Source line, in the same order
// Source produced them.
type Sink interface {
	Emit(line string, results []Result)
}

// SliceSource is a Source over an in-memory slice of lines.
type SliceSource struct {
	Lines []string
	pos   int
}

// Next implements Source.
func (s *SliceSource) Next() (string, bool) {
	if s.pos >= len(s.Lines) {
		return "", false
	}
	line := s.Lines[s.pos]
	s.pos++
	return line, true
}

// FuncSink adapts a plain function to Sink.
type FuncSink func(line string, results []Result)

// Emit implements Sink.
func (f FuncSink) Emit(line string, results []Result) { f(line, results) }

// AnalyzeStream reads lines from src, analyzes each with topN/opts spread
// across the Analyzer's worker pool, and delivers them to dst strictly in
// source order (a worker finishing line 5 before line 3 waits for line 3's
// turn before dst.Emit is called), reporting progress on statusChan every
// so many lines if non-nil. Returns early on ctx cancellation or the first
// analysis error (Analyze itself cannot fail, so the only error
// AnalyzeStream can surface is ctx.Err()).
func (a *Analyzer) AnalyzeStream(ctx context.Context, src Source, dst Sink, topN int, opts Options, statusChan chan<- Status) error {
	type pending struct {
		line string
		fut  *Future
	}

	// In-flight count is bounded to the worker pool size: once that many
	// analyses are outstanding, AnalyzeStream blocks on the oldest one before
	// submitting another, applying backpressure instead of queuing unbounded
	// work ahead of a slow Sink.
	windowSize := a.workers
	if windowSize <= 0 {
		windowSize = 1
	}
	window := make([]pending, 0, windowSize)
	lineNo := 0

	flushReady := func() error {
		for len(window) > 0 {
			head := window[0]
			select {
			case r := <-head.fut.ch:
				dst.Emit(head.line, r.results)
				window = window[1:]
			default:
				return nil
			}
		}
		return nil
	}

	drainOne := func() error {
		if len(window) == 0 {
			return nil
		}
		head := window[0]
		results, err := head.fut.Wait(ctx)
		if err != nil {
			return err
		}
		dst.Emit(head.line, results)
		window = window[1:]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(window) >= windowSize {
			if err := drainOne(); err != nil {
				return err
			}
		}

		line, ok := src.Next()
		if !ok {
			break
		}
		lineNo++
		fut := a.AnalyzeAsync(line, topN, opts)
		window = append(window, pending{line: line, fut: fut})

		if err := flushReady(); err != nil {
			return err
		}

		if statusChan != nil && lineNo%1000 == 0 {
			statusChan <- Status{LinesProcessed: lineNo, LastLine: line}
			log.Debug().Int("lines", lineNo).Msg("komorph: stream progress")
		}
	}

	for len(window) > 0 {
		if err := drainOne(); err != nil {
			return err
		}
	}
	if statusChan != nil {
		statusChan <- Status{LinesProcessed: lineNo}
	}
	return nil
}
