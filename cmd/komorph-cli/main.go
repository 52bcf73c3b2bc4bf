// Command komorph-cli is a thin smoke-test binary: it reads lines from
// stdin, analyzes each with a default-built Analyzer, and prints one
// analysis per line to stdout. No business logic lives here; every
// decision belongs to the komorph package.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ko-nlp/komorph"
)

func main() {
	topN := flag.Int("topn", 1, "number of ranked analyses to print per line")
	typos := flag.Bool("typos", false, "enable typo-tolerant analysis")
	verbose := flag.Bool("verbose", false, "log build/analysis progress to stderr")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	b := komorph.NewBuilder(komorph.BuildLoadDefaultDict | komorph.BuildLoadTypoDict)
	analyzer, err := b.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "komorph-cli: build: %v\n", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	opts := komorph.Options{Match: komorph.MatchAll, WithTypos: *typos}

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 1<<16), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			fmt.Println()
			continue
		}
		results := analyzer.Analyze(line, *topN, opts)
		printResults(line, results)
	}
	if err := sc.Err(); err != nil {
		log.Error().Err(err).Int("line", lineNo).Msg("komorph-cli: read error")
		os.Exit(1)
	}
}

func printResults(line string, results []komorph.Result) {
	if len(results) == 0 {
		fmt.Printf("%s\t(no analysis)\n", line)
		return
	}
	for i, r := range results {
		var sb strings.Builder
		for j, t := range r.Tokens {
			if j > 0 {
				sb.WriteString(" + ")
			}
			fmt.Fprintf(&sb, "%s/%s", t.Surface, t.Tag)
		}
		fmt.Printf("%s\t[%d] %s\t(score=%.3f)\n", line, i, sb.String(), r.Score)
	}
}
