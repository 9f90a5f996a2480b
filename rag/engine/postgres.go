package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/satyalearn/satyarag/rag/interfaces"
	"github.com/satyalearn/satyarag/rag/types"
)

// PostgresStore is a pgvector-backed vector store for deployments that
// already run PostgreSQL. All collections share one chunks table keyed
// by a collection column.
type PostgresStore struct {
	pool          *pgxpool.Pool
	embedder      interfaces.Embedder
	embeddingDims int
}

// NewPostgresStore connects to PostgreSQL and prepares the chunks table.
// embeddingDims must match the embedder's output dimension; the embedder
// is used to embed seed documents.
func NewPostgresStore(ctx context.Context, databaseURL string, embeddingDims int, embedder interfaces.Embedder) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres engine")
	}
	if embeddingDims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, embedder: embedder, embeddingDims: embeddingDims}
	if err := s.setup(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) setup(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunks (
			id SERIAL PRIMARY KEY,
			collection TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding VECTOR(%d)
		)
	`, s.embeddingDims))
	if err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}

	_, err = s.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection)")
	if err != nil {
		return fmt.Errorf("failed to create collection index: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// ListCollections returns the distinct collection names present.
func (s *PostgresStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT collection FROM chunks ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan collection name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Query runs a cosine-distance nearest-neighbor search within one
// collection.
func (s *PostgresStore) Query(ctx context.Context, collection string, embedding []float32, k int) ([]types.RawHit, error) {
	if len(embedding) != s.embeddingDims {
		return nil, fmt.Errorf("embedding has %d dimensions, store expects %d", len(embedding), s.embeddingDims)
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content, metadata, 1 - (embedding <=> $1::vector) AS similarity
		FROM chunks
		WHERE collection = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`, vectorLiteral(embedding), collection, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", collection, err)
	}
	defer rows.Close()

	var hits []types.RawHit
	for rows.Next() {
		var content string
		var metadataJSON []byte
		var similarity float64
		if err := rows.Scan(&content, &metadataJSON, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		metadata := map[string]string{}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
				metadata = map[string]string{}
			}
		}

		hits = append(hits, types.RawHit{
			Text:       content,
			Metadata:   types.MetadataFromMap(metadata),
			Collection: collection,
			Similarity: float32(similarity),
		})
	}
	return hits, rows.Err()
}

// AddDocuments embeds and stores pre-chunked documents into a
// collection.
func (s *PostgresStore) AddDocuments(ctx context.Context, collection string, docs []SeedDocument) error {
	if s.embedder == nil {
		return fmt.Errorf("no embedder configured for seeding")
	}
	stored := 0
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		embedding, err := s.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("failed to embed document: %w", err)
		}
		if err := s.AddDocument(ctx, collection, d.Text, d.Metadata, embedding); err != nil {
			return err
		}
		stored++
	}
	if stored == 0 {
		return fmt.Errorf("no documents to store")
	}
	return nil
}

// AddDocument stores one pre-embedded chunk into a collection.
func (s *PostgresStore) AddDocument(ctx context.Context, collection, content string, metadata map[string]string, embedding []float32) error {
	if content == "" {
		return fmt.Errorf("empty content")
	}
	if len(embedding) != s.embeddingDims {
		return fmt.Errorf("embedding has %d dimensions, store expects %d", len(embedding), s.embeddingDims)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO chunks (collection, content, metadata, embedding)
		VALUES ($1, $2, $3, $4::vector)
	`, collection, content, metadataJSON, vectorLiteral(embedding))
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// vectorLiteral renders an embedding in pgvector's input syntax.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", x)
	}
	b.WriteByte(']')
	return b.String()
}
