package semantic

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/pkg/embeddings"
	"github.com/aidekit/aide/pkg/scorer"
)

// DefaultTopK is the number of nearest stored examples consulted per query.
const DefaultTopK = 8

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithTopK sets the number of nearest neighbours consulted per query.
// Default: 8.
func WithTopK(k int) Option {
	return func(s *Scorer) {
		s.topK = k
	}
}

// Scorer implements scorer.Scorer via cosine k-NN over embedded training
// examples in PostgreSQL. All methods are safe for concurrent use.
type Scorer struct {
	pool *pgxpool.Pool
	emb  embeddings.Provider
	topK int
}

var _ scorer.Scorer = (*Scorer)(nil)

// New connects to the PostgreSQL database at dsn, registers pgvector types on
// every connection, and ensures the schema exists with emb's dimensionality.
func New(ctx context.Context, dsn string, emb embeddings.Provider, opts ...Option) (*Scorer, error) {
	if emb == nil {
		return nil, fmt.Errorf("semantic scorer: embeddings provider must not be nil")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("semantic scorer: ping: %w", err)
	}
	if err := Migrate(ctx, pool, emb.Dimensions()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("semantic scorer: migrate: %w", err)
	}

	s := &Scorer{pool: pool, emb: emb, topK: DefaultTopK}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Scorer) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity. Used by readiness checks.
func (s *Scorer) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Index embeds every phrase in ds and upserts it into the intent_examples
// table. Phrases already stored for the same intent are replaced, so
// re-indexing an updated dataset is safe.
func (s *Scorer) Index(ctx context.Context, ds dataset.Dataset) error {
	const q = `
		INSERT INTO intent_examples (intent, phrase, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (intent, phrase) DO UPDATE SET
		    embedding = EXCLUDED.embedding`

	for _, label := range ds.Intents() {
		phrases := ds[label]
		if len(phrases) == 0 {
			continue
		}
		vecs, err := s.emb.EmbedBatch(ctx, phrases)
		if err != nil {
			return fmt.Errorf("semantic scorer: embed %q examples: %w", label, err)
		}
		for i, phrase := range phrases {
			if _, err := s.pool.Exec(ctx, q, label, phrase, pgvector.NewVector(vecs[i])); err != nil {
				return fmt.Errorf("semantic scorer: index %q example: %w", label, err)
			}
		}
	}
	return nil
}

// Labels returns the distinct intent labels currently indexed.
func (s *Scorer) Labels(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT intent FROM intent_examples ORDER BY intent`)
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: list labels: %w", err)
	}
	labels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: scan labels: %w", err)
	}
	return labels, nil
}

// Score implements scorer.Scorer. The utterance is embedded and its topK
// nearest stored examples (cosine distance) vote for their labels, each vote
// weighted by 1 - distance clamped at zero. Labels indexed but absent from
// the neighbourhood score zero, so the prediction always covers the full
// label set.
func (s *Scorer) Score(ctx context.Context, text string) (scorer.Prediction, error) {
	labels, err := s.Labels(ctx)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("semantic scorer: index is empty; call Index first")
	}

	vec, err := s.emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: embed query: %w", err)
	}

	const q = `
		SELECT intent, embedding <=> $1 AS distance
		FROM   intent_examples
		ORDER  BY distance
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(vec), s.topK)
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: search: %w", err)
	}

	type neighbour struct {
		Intent   string
		Distance float64
	}
	neighbours, err := pgx.CollectRows(rows, pgx.RowToStructByName[neighbour])
	if err != nil {
		return nil, fmt.Errorf("semantic scorer: scan rows: %w", err)
	}

	pred := make(scorer.Prediction, len(labels))
	for _, l := range labels {
		pred[l] = 0
	}
	for _, n := range neighbours {
		if sim := 1 - n.Distance; sim > 0 {
			pred[n.Intent] += sim
		}
	}
	return pred, nil
}
