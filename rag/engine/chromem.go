package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/sashabaranov/go-openai"
	"github.com/satyalearn/satyarag/rag/types"
)

// ChromemStore is an embedded vector store backed by chromem-go. It is
// the default backend for the offline deployment: no server process, the
// whole knowledge base lives under one directory.
type ChromemStore struct {
	db              *chromem.DB
	client          *openai.Client
	embeddingsModel string
}

// NewChromemStore opens (or creates) a persistent chromem database at
// path. The OpenAI-compatible client is used only for embedding seed
// documents.
func NewChromemStore(path string, client *openai.Client, embeddingsModel string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem database: %w", err)
	}

	return &ChromemStore{
		db:              db,
		client:          client,
		embeddingsModel: embeddingsModel,
	}, nil
}

func (s *ChromemStore) embedding() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := s.client.CreateEmbeddings(ctx,
			openai.EmbeddingRequestStrings{
				Input: []string{text},
				Model: openai.EmbeddingModel(s.embeddingsModel),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("error creating embedding: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embedding data in response")
		}
		return resp.Data[0].Embedding, nil
	}
}

// ListCollections returns all collection names, sorted.
func (s *ChromemStore) ListCollections(_ context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Query runs a nearest-neighbor search against one collection using a
// precomputed query embedding.
func (s *ChromemStore) Query(ctx context.Context, collection string, embedding []float32, k int) ([]types.RawHit, error) {
	c := s.db.GetCollection(collection, s.embedding())
	if c == nil {
		return nil, fmt.Errorf("collection %q not found", collection)
	}

	if count := c.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := c.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error querying collection %q: %w", collection, err)
	}

	hits := make([]types.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, types.RawHit{
			Text:       r.Content,
			Metadata:   types.MetadataFromMap(r.Metadata),
			Collection: collection,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}

// SeedDocument is one pre-chunked document to store during deployment.
type SeedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AddDocuments stores pre-chunked documents into a collection, creating
// the collection if needed. Embeddings are computed via the configured
// embeddings model.
func (s *ChromemStore) AddDocuments(ctx context.Context, collection string, docs []SeedDocument) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to store")
	}

	c, err := s.db.GetOrCreateCollection(collection, nil, s.embedding())
	if err != nil {
		return fmt.Errorf("error creating collection %q: %w", collection, err)
	}

	documents := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		documents = append(documents, chromem.Document{
			ID:       uuid.NewString(),
			Content:  d.Text,
			Metadata: d.Metadata,
		})
	}
	if len(documents) == 0 {
		return fmt.Errorf("no documents to store")
	}

	return c.AddDocuments(ctx, documents, 2)
}
