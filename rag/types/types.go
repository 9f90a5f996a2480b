package types

// ResultKind classifies how a QueryResult was produced.
type ResultKind string

const (
	KindEdgeCase         ResultKind = "edge_case"
	KindCacheHitExact    ResultKind = "cache_hit_exact"
	KindCacheHitSemantic ResultKind = "cache_hit_semantic"
	KindRAGResponse      ResultKind = "rag_response"
	KindError            ResultKind = "error"
)

// SourceClass separates curriculum-authored material from everything else.
type SourceClass string

const (
	SourceTrusted  SourceClass = "trusted"
	SourceExternal SourceClass = "external"
)

// Query is a single user question with its routing filters.
// Immutable once constructed.
type Query struct {
	Raw     string `json:"raw_text"`
	Subject string `json:"subject"`
	Grade   string `json:"grade,omitempty"`
	Limit   int    `json:"result_limit"`
}

// RawHit is one result from a single collection query, exactly as the
// vector store returned it. Similarity is never mutated after creation.
type RawHit struct {
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Collection string        `json:"collection"`
	Similarity float32       `json:"similarity"`
}

// ScoredChunk is a RawHit after trust weighting and scoring.
type ScoredChunk struct {
	Text           string        `json:"text"`
	Metadata       ChunkMetadata `json:"metadata"`
	RawSimilarity  float32       `json:"raw_similarity"`
	PriorityWeight float32       `json:"priority_weight"`
	FinalScore     float32       `json:"final_score"`
	Class          SourceClass   `json:"source_class"`
}

// QueryResult is the outcome of one pipeline run.
type QueryResult struct {
	Answer           string          `json:"answer"`
	ContextUsed      []string        `json:"context_used"`
	Sources          []ChunkMetadata `json:"sources"`
	Confidence       float32         `json:"confidence"`
	Diagram          string          `json:"diagram,omitempty"`
	Grounded         bool            `json:"grounded"`
	GroundingReason  string          `json:"grounding_reason,omitempty"`
	RetrievalErrors  []string        `json:"retrieval_errors,omitempty"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	Kind             ResultKind      `json:"kind"`
}

// Clone returns a deep copy. Cached results are stored and returned as
// clones so that callers mutating working data never corrupt cache entries.
func (r *QueryResult) Clone() *QueryResult {
	if r == nil {
		return nil
	}
	out := *r
	out.ContextUsed = append([]string(nil), r.ContextUsed...)
	out.RetrievalErrors = append([]string(nil), r.RetrievalErrors...)
	out.Sources = make([]ChunkMetadata, len(r.Sources))
	for i, s := range r.Sources {
		out.Sources[i] = s.Clone()
	}
	return &out
}

// StreamChunk is one element of a streamed answer. The final chunk has
// Done set and carries the complete QueryResult.
type StreamChunk struct {
	Delta  string       `json:"delta,omitempty"`
	Done   bool         `json:"done"`
	Result *QueryResult `json:"result,omitempty"`
	Err    error        `json:"-"`
}
