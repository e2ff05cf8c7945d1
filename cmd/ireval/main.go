// ireval runs an offline retrieval evaluation: it indexes a corpus file,
// optionally trains term embeddings, executes a query set, and reports
// mean average precision against relevance judgments, with and without
// query expansion.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/AustinPardosi/IR-System-BE/internal/corpus"
	"github.com/AustinPardosi/IR-System-BE/internal/engine"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/embedding"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/eval"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
	"github.com/AustinPardosi/IR-System-BE/pkg/logger"
)

func main() {
	docsPath := flag.String("docs", "", "corpus file (.I/.T/.A/.W/.B format)")
	queriesPath := flag.String("queries", "", "query file (same format)")
	qrelsPath := flag.String("qrels", "", "relevance judgments file")
	scheme := flag.String("scheme", "raw", "TF scheme: raw, log, binary, augmented")
	stemmer := flag.String("stemmer", "porter", "stemmer: porter or none")
	stopwords := flag.String("stopwords", "", "optional stopword file")
	useIDF := flag.Bool("idf", true, "multiply TF by IDF")
	normalize := flag.Bool("normalize", true, "cosine-normalize scores")
	expand := flag.Bool("expand", false, "compare against an expanded run")
	threshold := flag.Float64("threshold", 0.7, "expansion similarity threshold")
	maxPerTerm := flag.Int("max-per-term", 5, "expansion terms added per query term")
	dimension := flag.Int("dim", 100, "embedding dimension")
	window := flag.Int("window", 5, "skip-gram context window")
	iterations := flag.Int("iter", 5, "training epochs")
	seed := flag.Int64("seed", 1, "training RNG seed")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "text")

	if *docsPath == "" || *queriesPath == "" || *qrelsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ireval -docs FILE -queries FILE -qrels FILE [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(engine.Config{
		Tokenizer:           tokenizer.Config{StopwordsFile: *stopwords, Stemmer: *stemmer},
		ExpansionThreshold:  *threshold,
		ExpansionMaxPerTerm: *maxPerTerm,
	})
	if err != nil {
		fatal("building engine: %v", err)
	}

	docs := loadDocuments(*docsPath)
	for _, d := range docs {
		if err := eng.Ingest(d.ID, d.FullText()); err != nil {
			fatal("indexing %s: %v", d.ID, err)
		}
	}
	fmt.Printf("indexed %d documents\n", len(docs))

	queries := loadQueries(*queriesPath)
	judgments := loadQrels(*qrelsPath)
	fmt.Printf("loaded %d queries, judgments for %d\n", len(queries), len(judgments))

	if *expand {
		start := time.Now()
		err := eng.TrainEmbeddings(ctx, embedding.Config{
			Dimension:  *dimension,
			Window:     *window,
			Iterations: *iterations,
			Seed:       *seed,
		})
		if err != nil {
			fatal("training embeddings: %v", err)
		}
		fmt.Printf("trained embeddings in %s\n", time.Since(start).Round(time.Millisecond))
	}

	opt := engine.QueryOptions{
		Scheme:    *scheme,
		Expand:    *expand,
		UseIDF:    *useIDF,
		Normalize: *normalize,
	}
	result, err := eng.Evaluate(queries, judgments, opt)
	if err != nil {
		fatal("evaluation failed: %v", err)
	}

	printReport(result, opt)
}

func loadDocuments(path string) []corpus.Document {
	f, err := os.Open(path)
	if err != nil {
		fatal("opening corpus: %v", err)
	}
	defer f.Close()
	docs, err := corpus.ParseDocuments(f)
	if err != nil {
		fatal("parsing corpus: %v", err)
	}
	return docs
}

func loadQueries(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		fatal("opening queries: %v", err)
	}
	defer f.Close()
	queries, err := corpus.ParseQueries(f)
	if err != nil {
		fatal("parsing queries: %v", err)
	}
	return queries
}

func loadQrels(path string) eval.Judgments {
	f, err := os.Open(path)
	if err != nil {
		fatal("opening qrels: %v", err)
	}
	defer f.Close()
	judgments, err := corpus.ParseQrels(f)
	if err != nil {
		fatal("parsing qrels: %v", err)
	}
	return judgments
}

func printReport(result *engine.EvaluationResult, opt engine.QueryOptions) {
	fmt.Println()
	fmt.Printf("scheme=%s idf=%t normalize=%t expand=%t\n",
		opt.Scheme, opt.UseIDF, opt.Normalize, opt.Expand)

	if result.Comparison != nil {
		cmp := result.Comparison
		fmt.Printf("baseline MAP: %.6f\n", cmp.BaselineMAP)
		fmt.Printf("expanded MAP: %.6f\n", cmp.ExpandedMAP)
		fmt.Printf("delta:        %+.6f\n", cmp.Delta)
		fmt.Println("\nper-query (baseline -> expanded):")
		for _, q := range cmp.PerQuery {
			fmt.Printf("  %-8s %.6f -> %.6f (%+.6f)\n",
				q.QueryID, q.BaselineAP, q.ExpandedAP, q.Delta)
		}
		return
	}

	fmt.Printf("MAP: %.6f\n", result.MAP)
	ids := make([]string, 0, len(result.PerQuery))
	for id := range result.PerQuery {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Println("\nper-query average precision:")
	for _, id := range ids {
		fmt.Printf("  %-8s %.6f\n", id, result.PerQuery[id])
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
