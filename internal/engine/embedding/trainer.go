package embedding

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"runtime"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Config holds the recognized training parameters.
type Config struct {
	Dimension       int     `json:"dimension"`
	Window          int     `json:"window"`
	MinCount        int     `json:"min_count"`
	Iterations      int     `json:"iterations"`
	NegativeSamples int     `json:"negative_samples"`
	LearningRate    float64 `json:"learning_rate"`
	Seed            int64   `json:"seed"`
}

// Validate rejects non-positive dimension, window, or iteration counts and
// fills defaults for the optional parameters.
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"embedding dimension must be positive, got %d", c.Dimension)
	}
	if c.Window <= 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"context window must be positive, got %d", c.Window)
	}
	if c.Iterations <= 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"iteration count must be positive, got %d", c.Iterations)
	}
	if c.MinCount <= 0 {
		c.MinCount = 1
	}
	if c.NegativeSamples <= 0 {
		c.NegativeSamples = 5
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.025
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return nil
}

const unigramTableSize = 1 << 20

// Train learns a Space from the corpus snapshot: one token sequence per
// document. It is a bounded batch pass (Iterations epochs); between epochs
// ctx is checked, and on cancellation the caller's previous Space stays
// in effect because no partial result is returned.
func Train(ctx context.Context, corpus [][]string, cfg Config) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, apperrors.New(apperrors.ErrEmptyCorpus, http.StatusConflict,
			"cannot train embeddings on an empty corpus")
	}

	vocab, counts := buildVocab(corpus, cfg.MinCount)
	if len(vocab) == 0 {
		return nil, apperrors.Newf(apperrors.ErrEmptyCorpus, http.StatusConflict,
			"no term reaches the minimum frequency %d", cfg.MinCount)
	}

	// Documents as dense term-id sequences; tokens below MinCount are
	// dropped from the training stream.
	docs := make([][]int, 0, len(corpus))
	for _, tokens := range corpus {
		ids := make([]int, 0, len(tokens))
		for _, tok := range tokens {
			if id, ok := vocab[tok]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			docs = append(docs, ids)
		}
	}

	table := buildUnigramTable(counts)
	model := newModel(len(vocab), cfg.Dimension, cfg.Seed)

	totalEpochs := cfg.Iterations
	for epoch := 0; epoch < totalEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled after %d of %d iterations: %w",
				epoch, totalEpochs, err)
		}
		// Learning rate decays linearly across the whole run.
		lr := cfg.LearningRate * (1 - float64(epoch)/float64(totalEpochs))
		if lr < cfg.LearningRate*1e-4 {
			lr = cfg.LearningRate * 1e-4
		}
		if err := model.runEpoch(ctx, docs, table, cfg, epoch, lr); err != nil {
			return nil, err
		}
	}

	vectors := make(map[string][]float32, len(vocab))
	for term, id := range vocab {
		vec := make([]float32, cfg.Dimension)
		copy(vec, model.in[id])
		vectors[term] = vec
	}
	return newSpace(cfg.Dimension, vectors), nil
}

// buildVocab interns terms with corpus frequency >= minCount.
func buildVocab(corpus [][]string, minCount int) (map[string]int, []int) {
	freq := make(map[string]int)
	for _, tokens := range corpus {
		for _, tok := range tokens {
			freq[tok]++
		}
	}
	vocab := make(map[string]int)
	counts := make([]int, 0, len(freq))
	for term, count := range freq {
		if count >= minCount {
			vocab[term] = len(counts)
			counts = append(counts, count)
		}
	}
	return vocab, counts
}

// buildUnigramTable fills a sampling table proportional to count^0.75, the
// standard negative-sampling distribution.
func buildUnigramTable(counts []int) []int {
	table := make([]int, unigramTableSize)
	var total float64
	powers := make([]float64, len(counts))
	for id, count := range counts {
		powers[id] = math.Pow(float64(count), 0.75)
		total += powers[id]
	}
	id := 0
	cumulative := powers[0] / total
	for i := range table {
		table[i] = id
		if float64(i)/float64(unigramTableSize) > cumulative && id < len(counts)-1 {
			id++
			cumulative += powers[id] / total
		}
	}
	return table
}

// model holds the input and output vector matrices during training.
type model struct {
	dim int
	in  [][]float32
	out [][]float32
}

func newModel(vocabSize int, dim int, seed int64) *model {
	rng := rand.New(rand.NewSource(seed))
	m := &model{
		dim: dim,
		in:  make([][]float32, vocabSize),
		out: make([][]float32, vocabSize),
	}
	for i := 0; i < vocabSize; i++ {
		m.in[i] = make([]float32, dim)
		m.out[i] = make([]float32, dim)
		for d := 0; d < dim; d++ {
			m.in[i][d] = (rng.Float32() - 0.5) / float32(dim)
		}
	}
	return m
}

// runEpoch makes one pass over every document, sharding documents across
// workers. Vector updates are applied without locking (hogwild-style); the
// occasional lost update is tolerated by the objective.
func (m *model) runEpoch(ctx context.Context, docs [][]int, table []int, cfg Config, epoch int, lr float64) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(docs) {
		workers = len(docs)
	}
	group, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		worker := w
		group.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(epoch)*7919 + int64(worker)))
			for i := worker; i < len(docs); i += workers {
				m.trainDocument(docs[i], table, cfg, rng, lr)
			}
			return nil
		})
	}
	return group.Wait()
}

// trainDocument slides the context window over one document and applies
// skip-gram negative-sampling updates for each (center, context) pair.
func (m *model) trainDocument(doc []int, table []int, cfg Config, rng *rand.Rand, lr float64) {
	grad := make([]float32, m.dim)
	for pos, center := range doc {
		// Shrink the window randomly, as word2vec does, so nearer
		// context words are weighted more heavily.
		window := 1 + rng.Intn(cfg.Window)
		for offset := -window; offset <= window; offset++ {
			ctxPos := pos + offset
			if offset == 0 || ctxPos < 0 || ctxPos >= len(doc) {
				continue
			}
			m.trainPair(center, doc[ctxPos], table, cfg.NegativeSamples, rng, lr, grad)
		}
	}
}

func (m *model) trainPair(center int, context int, table []int, negatives int, rng *rand.Rand, lr float64, grad []float32) {
	in := m.in[center]
	for d := range grad {
		grad[d] = 0
	}

	// Positive sample.
	m.updatePair(in, m.out[context], 1, lr, grad)

	// Negative samples drawn from the unigram table.
	for n := 0; n < negatives; n++ {
		target := table[rng.Intn(len(table))]
		if target == context {
			continue
		}
		m.updatePair(in, m.out[target], 0, lr, grad)
	}

	for d := range in {
		in[d] += grad[d]
	}
}

func (m *model) updatePair(in []float32, out []float32, label float32, lr float64, grad []float32) {
	var product float64
	for d := range in {
		product += float64(in[d]) * float64(out[d])
	}
	g := float32(lr) * (label - sigmoid(product))
	for d := range in {
		grad[d] += g * out[d]
		out[d] += g * in[d]
	}
}

func sigmoid(x float64) float32 {
	return float32(1 / (1 + math.Exp(-x)))
}
