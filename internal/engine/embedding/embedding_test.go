package embedding

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

var testCorpus = [][]string{
	{"kucing", "makan", "ikan", "kucing", "tidur"},
	{"anjing", "makan", "daging", "anjing", "tidur"},
	{"kucing", "tidur", "anjing", "tidur"},
	{"ikan", "makan", "kucing", "makan"},
}

func trainTestSpace(t *testing.T, cfg Config) *Space {
	t.Helper()
	space, err := Train(context.Background(), testCorpus, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return space
}

func TestTrainProducesUnitVectors(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 16, Window: 2, Iterations: 3})

	if space.Dimension() != 16 {
		t.Errorf("Dimension = %d, want 16", space.Dimension())
	}
	if space.Size() != 6 {
		t.Errorf("Size = %d, want 6 distinct terms", space.Size())
	}
	for _, term := range []string{"kucing", "makan", "ikan", "anjing", "daging", "tidur"} {
		vec, ok := space.Vector(term)
		if !ok {
			t.Fatalf("Vector(%q) missing", term)
		}
		var normSq float64
		for _, v := range vec {
			normSq += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(normSq)-1) > 1e-5 {
			t.Errorf("norm of %q = %v, want 1", term, math.Sqrt(normSq))
		}
	}
}

func TestTrainSimilaritiesAreBounded(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2, Seed: 42})
	terms := []string{"kucing", "makan", "ikan", "anjing", "daging", "tidur"}
	for _, a := range terms {
		for _, b := range terms {
			sim, ok := space.Similarity(a, b)
			if !ok {
				t.Fatalf("Similarity(%q, %q) reported out of vocabulary", a, b)
			}
			if sim < -1-1e-6 || sim > 1+1e-6 {
				t.Errorf("Similarity(%q, %q) = %v, outside [-1, 1]", a, b, sim)
			}
		}
	}
}

func TestTrainValidatesConfig(t *testing.T) {
	cases := []Config{
		{Dimension: 0, Window: 2, Iterations: 1},
		{Dimension: -5, Window: 2, Iterations: 1},
		{Dimension: 8, Window: 0, Iterations: 1},
		{Dimension: 8, Window: 2, Iterations: 0},
	}
	for _, cfg := range cases {
		_, err := Train(context.Background(), testCorpus, cfg)
		if err == nil {
			t.Errorf("Train(%+v) succeeded, want configuration error", cfg)
			continue
		}
		if !errors.Is(err, apperrors.ErrConfiguration) {
			t.Errorf("Train(%+v) error = %v, want ErrConfiguration", cfg, err)
		}
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	_, err := Train(context.Background(), nil, Config{Dimension: 8, Window: 2, Iterations: 1})
	if err == nil {
		t.Fatal("expected error training on empty corpus")
	}
	if !errors.Is(err, apperrors.ErrEmptyCorpus) {
		t.Errorf("error = %v, want ErrEmptyCorpus", err)
	}
}

func TestTrainMinCountExcludesRareTerms(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 1, MinCount: 2})
	if space.Contains("daging") {
		t.Error("daging occurs once and should fall below MinCount 2")
	}
	if !space.Contains("kucing") {
		t.Error("kucing should survive MinCount 2")
	}
}

func TestTrainMinCountAboveEveryTerm(t *testing.T) {
	_, err := Train(context.Background(), testCorpus, Config{
		Dimension: 8, Window: 2, Iterations: 1, MinCount: 100,
	})
	if !errors.Is(err, apperrors.ErrEmptyCorpus) {
		t.Errorf("error = %v, want ErrEmptyCorpus when MinCount excludes all terms", err)
	}
}

func TestTrainCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Train(ctx, testCorpus, Config{Dimension: 8, Window: 2, Iterations: 10})
	if err == nil {
		t.Fatal("expected error from cancelled training")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSimilaritySelfIsOne(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	sim, ok := space.Similarity("kucing", "kucing")
	if !ok {
		t.Fatal("Similarity reported kucing out of vocabulary")
	}
	if math.Abs(sim-1) > 1e-5 {
		t.Errorf("self-similarity = %v, want 1", sim)
	}
}

func TestSimilarityOutOfVocabulary(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 1})
	if _, ok := space.Similarity("kucing", "zebra"); ok {
		t.Error("Similarity with OOV term reported ok")
	}
}

func TestMostSimilarExcludesAnchor(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	neighbors := space.MostSimilar("kucing", 3)
	if len(neighbors) != 3 {
		t.Fatalf("MostSimilar returned %d neighbors, want 3", len(neighbors))
	}
	for _, n := range neighbors {
		if n.Term == "kucing" {
			t.Error("anchor term appears among its own neighbors")
		}
	}
	for i := 1; i < len(neighbors); i++ {
		if neighbors[i].Similarity > neighbors[i-1].Similarity {
			t.Errorf("neighbors not sorted: %v before %v", neighbors[i-1], neighbors[i])
		}
	}
}

func TestMostSimilarUnknownAnchor(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 1})
	if got := space.MostSimilar("zebra", 3); got != nil {
		t.Errorf("MostSimilar(zebra) = %v, want nil", got)
	}
}

func TestExpandNeverShrinks(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	original := []string{"kucing", "makan"}

	expanded := Expand(space, original, -1, 5)
	if len(expanded) < len(original) {
		t.Fatalf("expansion shrank the query: %v", expanded)
	}
	if !reflect.DeepEqual(expanded[:2], original) {
		t.Errorf("original terms not preserved in order: %v", expanded[:2])
	}
}

func TestExpandThresholdOneIsIdentity(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	original := []string{"kucing", "makan"}
	// Cosine similarity never strictly exceeds 1, so nothing qualifies.
	expanded := Expand(space, original, 1.0, 5)
	if !reflect.DeepEqual(expanded, original) {
		t.Errorf("Expand with threshold 1.0 = %v, want %v", expanded, original)
	}
}

func TestExpandOOVTermPassesThrough(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	expanded := Expand(space, []string{"zebra"}, 0.0, 5)
	if !reflect.DeepEqual(expanded, []string{"zebra"}) {
		t.Errorf("Expand(OOV) = %v, want passthrough", expanded)
	}
}

func TestExpandNilSpace(t *testing.T) {
	original := []string{"kucing"}
	if got := Expand(nil, original, 0.5, 5); !reflect.DeepEqual(got, original) {
		t.Errorf("Expand(nil space) = %v, want %v", got, original)
	}
}

func TestExpandCapsAdditionsPerTerm(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	expanded := Expand(space, []string{"kucing"}, -1, 2)
	// At most 1 original + 2 additions.
	if len(expanded) > 3 {
		t.Errorf("expansion added more than maxPerTerm: %v", expanded)
	}
}

func TestExpandDeduplicates(t *testing.T) {
	space := trainTestSpace(t, Config{Dimension: 8, Window: 2, Iterations: 2})
	expanded := Expand(space, []string{"kucing", "kucing"}, 1.0, 5)
	if !reflect.DeepEqual(expanded, []string{"kucing"}) {
		t.Errorf("Expand with duplicate input = %v, want [kucing]", expanded)
	}
}
