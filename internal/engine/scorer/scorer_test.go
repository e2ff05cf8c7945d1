package scorer

import (
	"math"
	"testing"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/index"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/weighting"
)

func buildScorer(t *testing.T) (*index.Index, *Scorer) {
	t.Helper()
	norm, err := tokenizer.New(tokenizer.Config{Stemmer: "none"})
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}
	ix := index.New(norm)
	weights := weighting.NewEngine(ix)
	return ix, New(ix, weights)
}

func indexAnimalCorpus(ix *index.Index) {
	ix.IndexDocument("doc1", "kucing makan ikan")
	ix.IndexDocument("doc2", "anjing makan daging")
	ix.IndexDocument("doc3", "kucing tidur")
}

func TestCosineRankingOrder(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	ranking := s.Score([]string{"kucing", "makan"}, DefaultParams())
	if len(ranking) != 3 {
		t.Fatalf("ranking has %d documents, want 3", len(ranking))
	}

	wantOrder := []string{"doc1", "doc3", "doc2"}
	wantScores := []float64{0.462709, 0.244831, 0.178555}
	for i, doc := range ranking {
		if doc.DocID != wantOrder[i] {
			t.Errorf("rank %d = %s, want %s", i, doc.DocID, wantOrder[i])
		}
		if math.Abs(doc.Score-wantScores[i]) > 1e-5 {
			t.Errorf("score of %s = %.6f, want %.6f", doc.DocID, doc.Score, wantScores[i])
		}
	}
}

func TestDocumentMatchesItselfPerfectly(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	// Querying with exactly doc3's terms puts doc3 first with cosine 1.
	ranking := s.Score([]string{"kucing", "tidur"}, DefaultParams())
	if len(ranking) == 0 {
		t.Fatal("empty ranking")
	}
	if ranking[0].DocID != "doc3" {
		t.Errorf("rank 0 = %s, want doc3", ranking[0].DocID)
	}
	if math.Abs(ranking[0].Score-1) > 1e-9 {
		t.Errorf("self-similarity = %v, want 1", ranking[0].Score)
	}
}

func TestEmptyQueryYieldsEmptyRanking(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	if got := s.Score(nil, DefaultParams()); len(got) != 0 {
		t.Errorf("Score(nil) = %v, want empty", got)
	}
	if got := s.Score([]string{}, DefaultParams()); len(got) != 0 {
		t.Errorf("Score(empty) = %v, want empty", got)
	}
}

func TestOutOfVocabularyQuery(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	if got := s.Score([]string{"zebra", "gajah"}, DefaultParams()); len(got) != 0 {
		t.Errorf("OOV query ranked %d documents, want 0", len(got))
	}
}

func TestRemovedDocumentLeavesNoResidue(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	if err := ix.RemoveDocument("doc2"); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}
	// "anjing" only occurred in doc2; the query must now match nothing.
	if got := s.Score([]string{"anjing"}, DefaultParams()); len(got) != 0 {
		t.Errorf("query for removed document's term ranked %d documents, want 0", len(got))
	}
}

func TestTopKTruncation(t *testing.T) {
	ix, s := buildScorer(t)
	indexAnimalCorpus(ix)

	p := DefaultParams()
	p.TopK = 2
	ranking := s.Score([]string{"kucing", "makan"}, p)
	if len(ranking) != 2 {
		t.Fatalf("ranking has %d documents, want 2", len(ranking))
	}
	if ranking[0].DocID != "doc1" || ranking[1].DocID != "doc3" {
		t.Errorf("top-2 = %v, want [doc1 doc3]", ranking.DocIDs())
	}
}

func TestTieBreakByDocID(t *testing.T) {
	ix, s := buildScorer(t)
	// Two identical documents score identically; order falls back to id.
	ix.IndexDocument("b", "kucing makan")
	ix.IndexDocument("a", "kucing makan")

	ranking := s.Score([]string{"kucing"}, Params{
		Options:   weighting.Options{Scheme: weighting.SchemeRaw, UseIDF: false},
		Normalize: true,
	})
	if len(ranking) != 2 {
		t.Fatalf("ranking has %d documents, want 2", len(ranking))
	}
	if ranking[0].DocID != "a" || ranking[1].DocID != "b" {
		t.Errorf("tie order = %v, want [a b]", ranking.DocIDs())
	}
}

func TestDotProductWithoutNormalization(t *testing.T) {
	ix, s := buildScorer(t)
	ix.IndexDocument("short", "kucing")
	ix.IndexDocument("long", "kucing kucing kucing")

	ranking := s.Score([]string{"kucing"}, Params{
		Options: weighting.Options{Scheme: weighting.SchemeRaw, UseIDF: false},
	})
	if len(ranking) != 2 {
		t.Fatalf("ranking has %d documents, want 2", len(ranking))
	}
	// Without normalization the longer document dominates on raw TF.
	if ranking[0].DocID != "long" {
		t.Errorf("rank 0 = %s, want long", ranking[0].DocID)
	}
	if math.Abs(ranking[0].Score-3) > 1e-9 {
		t.Errorf("dot product = %v, want 3", ranking[0].Score)
	}
}

func TestBinarySchemeIgnoresFrequency(t *testing.T) {
	ix, s := buildScorer(t)
	ix.IndexDocument("once", "kucing tidur")
	ix.IndexDocument("thrice", "kucing kucing kucing tidur")

	ranking := s.Score([]string{"kucing", "tidur"}, Params{
		Options:   weighting.Options{Scheme: weighting.SchemeBinary, UseIDF: false},
		Normalize: true,
	})
	if len(ranking) != 2 {
		t.Fatalf("ranking has %d documents, want 2", len(ranking))
	}
	if math.Abs(ranking[0].Score-ranking[1].Score) > 1e-9 {
		t.Errorf("binary scheme produced different scores: %v vs %v",
			ranking[0].Score, ranking[1].Score)
	}
}

func TestUniformCorpusHasZeroIDF(t *testing.T) {
	ix, s := buildScorer(t)
	// "kucing" appears in every document, so ln(N/df) = 0 and the query
	// vector vanishes under IDF weighting.
	ix.IndexDocument("doc1", "kucing")
	ix.IndexDocument("doc2", "kucing")

	if got := s.Score([]string{"kucing"}, DefaultParams()); len(got) != 0 {
		t.Errorf("zero-IDF query ranked %d documents, want 0", len(got))
	}
}
