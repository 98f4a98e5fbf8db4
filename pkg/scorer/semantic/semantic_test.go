package semantic_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/pkg/scorer/semantic"
)

const testEmbeddingDim = 4

// testDSN returns the test database DSN from the environment, or skips the
// test if AIDE_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("AIDE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AIDE_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// axisEmbedder maps utterances onto fixed unit axes so that similarity in the
// test is fully controlled: every phrase of an intent shares that intent's
// axis, and the axes are mutually orthogonal.
type axisEmbedder struct {
	axes map[string]int
}

func (e *axisEmbedder) vector(text string) []float32 {
	v := make([]float32, testEmbeddingDim)
	if axis, ok := e.axes[text]; ok {
		v[axis] = 1
	} else {
		v[testEmbeddingDim-1] = 1
	}
	return v
}

func (e *axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *axisEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *axisEmbedder) Dimensions() int { return testEmbeddingDim }
func (e *axisEmbedder) ModelID() string { return "axis-test-v1" }

// newTestScorer creates a Scorer over a clean intent_examples table.
func newTestScorer(t *testing.T, emb *axisEmbedder) *semantic.Scorer {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS intent_examples CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	s, err := semantic.New(ctx, dsn, emb)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestScore_NearestNeighbourVoting(t *testing.T) {
	emb := &axisEmbedder{axes: map[string]int{
		"hello there":      0,
		"good morning":     0,
		"hi again":         0, // query, same axis as greeting
		"bye for now":      1,
		"see you later":    1,
		"what is the time": 2,
		"tell me the time": 2,
	}}
	s := newTestScorer(t, emb)
	ctx := context.Background()

	ds := dataset.Dataset{
		"greeting":     {"hello there", "good morning"},
		"goodbye":      {"bye for now", "see you later"},
		"current_time": {"what is the time", "tell me the time"},
	}
	if err := s.Index(ctx, ds); err != nil {
		t.Fatalf("Index: %v", err)
	}

	pred, err := s.Score(ctx, "hi again")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(pred) != 3 {
		t.Errorf("prediction should cover every indexed label, got %v", pred)
	}
	top, _, _ := pred.Top()
	if top != "greeting" {
		t.Errorf("top = %q (%v), want greeting", top, pred)
	}
}

func TestScore_EmptyIndex(t *testing.T) {
	emb := &axisEmbedder{}
	s := newTestScorer(t, emb)

	if _, err := s.Score(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty index")
	}
}

func TestIndex_ReindexIsIdempotent(t *testing.T) {
	emb := &axisEmbedder{axes: map[string]int{"hello there": 0}}
	s := newTestScorer(t, emb)
	ctx := context.Background()

	ds := dataset.Dataset{"greeting": {"hello there"}}
	if err := s.Index(ctx, ds); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := s.Index(ctx, ds); err != nil {
		t.Fatalf("re-Index: %v", err)
	}

	labels, err := s.Labels(ctx)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if len(labels) != 1 || labels[0] != "greeting" {
		t.Errorf("Labels = %v, want [greeting]", labels)
	}
}
