// Package benchmark measures indexing, scoring, and training throughput of
// the retrieval engine under realistic corpus sizes.
package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/AustinPardosi/IR-System-BE/internal/engine"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/embedding"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
)

var vocabulary = []string{
	"information", "retrieval", "ranking", "vector", "cosine", "index",
	"query", "document", "term", "weight", "frequency", "corpus",
	"relevance", "precision", "recall", "evaluation", "embedding", "token",
	"stemming", "stopword", "posting", "similarity", "expansion", "search",
}

func syntheticDocument(rng *rand.Rand, length int) string {
	words := make([]string, length)
	for i := range words {
		words[i] = vocabulary[rng.Intn(len(vocabulary))]
	}
	return strings.Join(words, " ")
}

func newBenchEngine(b *testing.B) *engine.Engine {
	b.Helper()
	eng, err := engine.New(engine.Config{Tokenizer: tokenizer.Config{Stemmer: "none"}})
	if err != nil {
		b.Fatal(err)
	}
	return eng
}

func seedCorpus(b *testing.B, eng *engine.Engine, docs int) {
	b.Helper()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < docs; i++ {
		if err := eng.Ingest(fmt.Sprintf("doc-%d", i), syntheticDocument(rng, 50)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkIngest measures per-document indexing throughput.
func BenchmarkIngest(b *testing.B) {
	eng := newBenchEngine(b)
	rng := rand.New(rand.NewSource(1))
	texts := make([]string, 256)
	for i := range texts {
		texts[i] = syntheticDocument(rng, 50)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := eng.Ingest(fmt.Sprintf("doc-%d", i), texts[i%len(texts)]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkQuery measures single-query latency over a pre-built corpus.
func BenchmarkQuery(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs-%d", size), func(b *testing.B) {
			eng := newBenchEngine(b)
			seedCorpus(b, eng, size)
			opt := engine.DefaultQueryOptions()
			opt.TopK = 10

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Query("information retrieval ranking", opt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkQueryParallel measures concurrent read throughput: queries take
// the engine's shared lock and must scale with reader parallelism.
func BenchmarkQueryParallel(b *testing.B) {
	eng := newBenchEngine(b)
	seedCorpus(b, eng, 1000)
	opt := engine.DefaultQueryOptions()
	opt.TopK = 10

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := eng.Query("cosine similarity weight", opt); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkTrainEmbeddings measures a full training pass.
func BenchmarkTrainEmbeddings(b *testing.B) {
	eng := newBenchEngine(b)
	seedCorpus(b, eng, 500)
	cfg := embedding.Config{Dimension: 32, Window: 3, Iterations: 1}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := eng.TrainEmbeddings(context.Background(), cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNormalize measures the tokenization pipeline alone.
func BenchmarkNormalize(b *testing.B) {
	norm, err := tokenizer.New(tokenizer.Config{Stemmer: "porter"})
	if err != nil {
		b.Fatal(err)
	}
	text := syntheticDocument(rand.New(rand.NewSource(1)), 200)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := norm.Normalize(text); len(got) == 0 {
			b.Fatal("empty normalization")
		}
	}
}
