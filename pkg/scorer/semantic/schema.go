// Package semantic implements an intent scorer backed by a PostgreSQL
// pgvector index over embedded training examples.
//
// Training phrases are embedded once via an [embeddings.Provider] and stored
// in an intent_examples table with an HNSW cosine index. At query time the
// utterance is embedded and its nearest stored examples vote for their intent
// labels, weighted by cosine similarity.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it via CREATE EXTENSION IF NOT EXISTS.
package semantic

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ddl returns the intent_examples DDL with the embedding dimension
// substituted. The vector dimension is baked into the column type at schema
// creation time.
func ddl(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS intent_examples (
    id         BIGSERIAL  PRIMARY KEY,
    intent     TEXT       NOT NULL,
    phrase     TEXT       NOT NULL,
    embedding  vector(%d) NOT NULL,
    UNIQUE (intent, phrase)
);

CREATE INDEX IF NOT EXISTS idx_intent_examples_intent
    ON intent_examples (intent);

CREATE INDEX IF NOT EXISTS idx_intent_examples_embedding
    ON intent_examples USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// Migrate creates or ensures the intent_examples table and the pgvector
// extension exist. Idempotent and safe to call on every start.
//
// embeddingDimensions must match the configured embedding model (e.g. 1536
// for OpenAI text-embedding-3-small). Changing it after the first migration
// requires a manual schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if _, err := pool.Exec(ctx, ddl(embeddingDimensions)); err != nil {
		return fmt.Errorf("semantic migrate: %w", err)
	}
	return nil
}
