package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/satyalearn/satyarag/rag/interfaces"
	"github.com/satyalearn/satyarag/rag/types"
)

// ErrNoVectorStore is the only fatal construction error: an orchestrator
// without a vector store cannot serve anything.
var ErrNoVectorStore = errors.New("no vector store configured")

// retrievalWorkers is fixed to bound memory on low-resource hardware.
const retrievalWorkers = 2

const (
	defaultResultLimit = 3

	storeUnavailableMsg = "The knowledge base is not available right now. Please try again later."
	generationFailedMsg = "I could not generate an answer right now. Please try asking again."
)

// Config tunes the orchestrator pipeline.
type Config struct {
	ResultLimit       int
	CharBudget        int
	CacheSize         int
	CacheTTL          time.Duration
	SemanticThreshold float32
}

// DefaultConfig returns the tuning used by the offline deployment.
func DefaultConfig() Config {
	return Config{
		ResultLimit:       defaultResultLimit,
		CharBudget:        DefaultCharBudget,
		CacheSize:         DefaultCacheSize,
		CacheTTL:          DefaultCacheTTL,
		SemanticThreshold: DefaultSemanticThreshold,
	}
}

// Orchestrator is the single public entry point of the retrieval core.
// It owns the pipeline and the semantic cache; every per-query failure
// degrades to a best-effort result instead of propagating.
type Orchestrator struct {
	store      interfaces.VectorStore
	embedder   interfaces.Embedder
	generator  interfaces.Generator
	edge       interfaces.EdgeCaseHandler
	normalizer interfaces.Normalizer
	diagrams   interfaces.DiagramLookup

	cache  *SemanticCache
	ranker *Ranker
	router *CollectionRouter
	cfg    Config
}

// Option customizes an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithEdgeCaseHandler replaces the built-in edge case handler.
func WithEdgeCaseHandler(h interfaces.EdgeCaseHandler) Option {
	return func(o *Orchestrator) { o.edge = h }
}

// WithNormalizer replaces the built-in question normalizer.
func WithNormalizer(n interfaces.Normalizer) Option {
	return func(o *Orchestrator) { o.normalizer = n }
}

// WithDiagramLookup replaces the built-in diagram library.
func WithDiagramLookup(d interfaces.DiagramLookup) Option {
	return func(o *Orchestrator) { o.diagrams = d }
}

// WithConfig overrides the default pipeline tuning.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// NewOrchestrator wires the pipeline. The store, embedder and generator
// are required external collaborators; the edge case handler, normalizer
// and diagram library default to the built-in implementations.
func NewOrchestrator(store interfaces.VectorStore, embedder interfaces.Embedder, generator interfaces.Generator, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, ErrNoVectorStore
	}
	if embedder == nil {
		return nil, errors.New("no embedder configured")
	}
	if generator == nil {
		return nil, errors.New("no generator configured")
	}

	o := &Orchestrator{
		store:      store,
		embedder:   embedder,
		generator:  generator,
		edge:       NewDefaultEdgeCaseHandler(),
		normalizer: NewRuleNormalizer(),
		diagrams:   NewDiagramLibrary(),
		router:     NewCollectionRouter(),
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.cache = NewSemanticCache(o.cfg.CacheSize, o.cfg.CacheTTL)
	o.ranker = NewRanker(o.cfg.CharBudget)

	return o, nil
}

// Cache exposes the semantic cache for stats and clearing.
func (o *Orchestrator) Cache() *SemanticCache { return o.cache }

// Query runs the full pipeline for a question. It never returns an
// error: failures degrade to a result with kind "error" and a user-safe
// message.
func (o *Orchestrator) Query(ctx context.Context, question, subject, grade string, limit int) *types.QueryResult {
	return o.run(ctx, o.newQuery(question, subject, grade, limit), nil)
}

// QueryStream runs the pipeline and streams answer tokens as they
// arrive. Cached answers are replayed token by token. The final chunk
// has Done set and carries the complete result.
func (o *Orchestrator) QueryStream(ctx context.Context, question, subject, grade string, limit int) <-chan types.StreamChunk {
	out := make(chan types.StreamChunk, 16)
	q := o.newQuery(question, subject, grade, limit)
	go func() {
		defer close(out)
		res := o.run(ctx, q, func(token string) {
			out <- types.StreamChunk{Delta: token}
		})
		out <- types.StreamChunk{Done: true, Result: res}
	}()
	return out
}

func (o *Orchestrator) newQuery(question, subject, grade string, limit int) types.Query {
	if limit <= 0 {
		limit = o.cfg.ResultLimit
	}
	return types.Query{Raw: question, Subject: subject, Grade: grade, Limit: limit}
}

func (o *Orchestrator) run(ctx context.Context, q types.Query, emit func(string)) *types.QueryResult {
	start := time.Now()
	queryID := uuid.NewString()
	send := func(token string) {
		if emit != nil {
			emit(token)
		}
	}
	finish := func(res *types.QueryResult) *types.QueryResult {
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		xlog.Debug("Query finished", "id", queryID, "kind", res.Kind, "ms", res.ProcessingTimeMs)
		return res
	}

	xlog.Debug("Query started", "id", queryID, "subject", q.Subject, "grade", q.Grade)

	if canned := o.edge.Check(q.Raw); canned != "" {
		send(canned)
		return finish(&types.QueryResult{Answer: canned, Kind: types.KindEdgeCase})
	}

	clean := q.Raw
	if cleaned, notes, err := o.normalizer.Normalize(q.Raw); err != nil {
		xlog.Warn("Normalization failed, using raw question", "id", queryID, "error", err)
	} else if cleaned != "" {
		clean = cleaned
		if len(notes) > 0 {
			xlog.Debug("Question normalized", "id", queryID, "notes", notes)
		}
	}

	key := CacheKey(clean, q.Subject, q.Grade)
	if cached := o.cache.GetExact(key); cached != nil {
		xlog.Info("Cache hit (exact)", "id", queryID)
		replayAnswer(cached.Answer, send)
		cached.Kind = types.KindCacheHitExact
		return finish(cached)
	}

	embedding, err := o.embedder.Embed(ctx, clean)
	if err != nil {
		xlog.Error("Embedding failed", "id", queryID, "error", err)
		msg := storeUnavailableMsg
		send(msg)
		return finish(&types.QueryResult{Answer: msg, Kind: types.KindError})
	}

	if cached := o.cache.FindSemantic(embedding, q.Subject, q.Grade, o.cfg.SemanticThreshold); cached != nil {
		xlog.Info("Cache hit (semantic)", "id", queryID)
		replayAnswer(cached.Answer, send)
		cached.Kind = types.KindCacheHitSemantic
		return finish(cached)
	}

	available, err := o.store.ListCollections(ctx)
	if err != nil {
		xlog.Error("Vector store unavailable", "id", queryID, "error", err)
		send(storeUnavailableMsg)
		return finish(&types.QueryResult{Answer: storeUnavailableMsg, Kind: types.KindError})
	}

	targets := o.router.Select(q.Subject, q.Grade, available)
	if len(targets) == 0 {
		xlog.Warn("No collections matched query", "id", queryID, "subject", q.Subject)
	}

	hits, retrievalErrs := o.retrieve(ctx, targets, embedding, q.Limit)

	chunks := o.ranker.RankAndBudget(hits, clean)
	contextTexts := make([]string, 0, len(chunks))
	sources := make([]types.ChunkMetadata, 0, len(chunks))
	for _, c := range chunks {
		contextTexts = append(contextTexts, c.Text)
		sources = append(sources, c.Metadata)
	}

	answer, err := o.generator.Generate(ctx, strings.Join(contextTexts, "\n\n"), clean, emit)
	if err != nil {
		xlog.Error("Generation failed", "id", queryID, "error", err)
		send(generationFailedMsg)
		return finish(&types.QueryResult{
			Answer:          generationFailedMsg,
			ContextUsed:     contextTexts,
			Sources:         sources,
			RetrievalErrors: retrievalErrs,
			Kind:            types.KindError,
		})
	}

	grounded, reason := ValidateGrounding(answer, contextTexts)
	if !grounded {
		xlog.Warn("Answer not grounded in context", "id", queryID, "reason", reason)
	}

	result := &types.QueryResult{
		Answer:          answer,
		ContextUsed:     contextTexts,
		Sources:         sources,
		Confidence:      calculateConfidence(answer, clean, chunks),
		Diagram:         o.diagrams.FindByText(clean),
		Grounded:        grounded,
		GroundingReason: reason,
		RetrievalErrors: retrievalErrs,
		Kind:            types.KindRAGResponse,
	}

	o.cache.Set(key, result, embedding, q.Subject, q.Grade, q.Raw)

	return finish(result)
}

// retrieve queries every target collection through a fixed-size worker
// pool and merges results only after every worker has finished. A failed
// or panicking worker contributes an empty list; its error is logged and
// surfaced so silent data loss stays observable.
func (o *Orchestrator) retrieve(ctx context.Context, collections []string, embedding []float32, k int) ([]types.RawHit, []string) {
	if len(collections) == 0 {
		return nil, nil
	}

	results := make([][]types.RawHit, len(collections))
	errs := make([]error, len(collections))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < retrievalWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = o.queryCollection(ctx, collections[i], embedding, k)
			}
		}()
	}
	for i := range collections {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var hits []types.RawHit
	var errStrings []string
	for i, res := range results {
		if errs[i] != nil {
			xlog.Error("Collection query failed", "collection", collections[i], "error", errs[i])
			errStrings = append(errStrings, fmt.Sprintf("%s: %v", collections[i], errs[i]))
			continue
		}
		hits = append(hits, res...)
	}
	return hits, errStrings
}

func (o *Orchestrator) queryCollection(ctx context.Context, name string, embedding []float32, k int) (hits []types.RawHit, err error) {
	defer func() {
		if r := recover(); r != nil {
			hits = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return o.store.Query(ctx, name, embedding, k)
}

// replayAnswer streams a cached answer token by token, split on
// whitespace, so cached hits keep the live feel without regeneration.
func replayAnswer(answer string, send func(string)) {
	words := strings.Fields(answer)
	for i, w := range words {
		if i < len(words)-1 {
			send(w + " ")
		} else {
			send(w)
		}
	}
}
