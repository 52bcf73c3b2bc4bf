package komorph_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ko-nlp/komorph"
)

func TestAnalyzeAsyncMatchesSynchronousAnalyze(t *testing.T) {
	a := buildTestAnalyzer(t)
	opts := komorph.Options{Match: komorph.MatchAll}

	want := a.Analyze("나는 간다", 1, opts)
	fut := a.AnalyzeAsync("나는 간다", 1, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := fut.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAnalyzeStreamEmitsInSourceOrder(t *testing.T) {
	a := buildTestAnalyzer(t)
	lines := []string{"나는 간다", "그는 온다", "그녀도 간다", "너는 무엇을 하니"}
	src := &komorph.SliceSource{Lines: lines}

	var mu sync.Mutex
	var got []string
	sink := komorph.FuncSink(func(line string, results []komorph.Result) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, line)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.AnalyzeStream(ctx, src, sink, 1, komorph.Options{Match: komorph.MatchAll}, nil)
	require.NoError(t, err)
	require.Equal(t, lines, got)
}

func TestAnalyzeStreamReportsStatus(t *testing.T) {
	a := buildTestAnalyzer(t)
	lines := make([]string, 0, 2500)
	for i := 0; i < 2500; i++ {
		lines = append(lines, "간다")
	}
	src := &komorph.SliceSource{Lines: lines}
	sink := komorph.FuncSink(func(string, []komorph.Result) {})

	statusChan := make(chan komorph.Status, 16)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.AnalyzeStream(ctx, src, sink, 1, komorph.Options{Match: komorph.MatchAll}, statusChan)
	}()

	var statuses []komorph.Status
	for {
		select {
		case st := <-statusChan:
			statuses = append(statuses, st)
		case err := <-done:
			require.NoError(t, err)
			require.NotEmpty(t, statuses)
			return
		case <-ctx.Done():
			t.Fatal("timed out waiting for stream to finish")
		}
	}
}

func TestAnalyzeStreamCancellation(t *testing.T) {
	a := buildTestAnalyzer(t)
	lines := make([]string, 0, 100000)
	for i := 0; i < 100000; i++ {
		lines = append(lines, "나는 간다")
	}
	src := &komorph.SliceSource{Lines: lines}
	sink := komorph.FuncSink(func(string, []komorph.Result) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.AnalyzeStream(ctx, src, sink, 1, komorph.Options{Match: komorph.MatchAll}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
