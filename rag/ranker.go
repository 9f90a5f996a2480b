package rag

import (
	"sort"
	"strings"

	"github.com/satyalearn/satyarag/rag/types"
)

const (
	// QualityFloor drops chunks that would not help an answer.
	QualityFloor float32 = 0.35
	// DefaultCharBudget bounds the total context handed to the generator.
	DefaultCharBudget = 400

	similarityWeight float32 = 0.7
	priorityWeight   float32 = 0.3
	gradeMatchBonus  float32 = 0.1
	trustedPriority  float32 = 100
	defaultPriority  float32 = 50
	minChunkChars            = 10
)

// sourcePriorities maps source identifiers to trust weights. Matching is
// case-insensitive substring, first entry wins. Curriculum-authored notes
// outrank vetted open corpora, which outrank everything else.
var sourcePriorities = []struct {
	match  string
	weight float32
}{
	{"curriculum", 100},
	{"openstax", 70},
	{"khanacademy", 65},
	{"finemath", 60},
	{"gsm8k", 60},
	{"scienceqa", 60},
}

// PriorityForSource resolves the trust weight for a source identifier.
func PriorityForSource(source string) float32 {
	s := strings.ToLower(source)
	for _, p := range sourcePriorities {
		if strings.Contains(s, p.match) {
			return p.weight
		}
	}
	return defaultPriority
}

// Ranker converts heterogeneous raw hits into a bounded, trust-ordered
// context. Curriculum material is ground truth for the target audience,
// so it is surfaced ahead of generic content even at lower raw score.
type Ranker struct {
	floor      float32
	charBudget int
}

// NewRanker creates a Ranker with the given context budget in characters.
func NewRanker(charBudget int) *Ranker {
	if charBudget <= 0 {
		charBudget = DefaultCharBudget
	}
	return &Ranker{floor: QualityFloor, charBudget: charBudget}
}

// Score derives a ScoredChunk from a raw hit. The final score blends raw
// similarity with the source trust weight, plus a bonus when the chunk's
// grade appears in the question text.
func (r *Ranker) Score(hit types.RawHit, queryText string) types.ScoredChunk {
	priority := PriorityForSource(hit.Metadata.Source)

	score := hit.Similarity*similarityWeight + (priority/100.0)*priorityWeight

	if g := hit.Metadata.Grade; g != "" {
		if strings.Contains(queryText, g) ||
			strings.Contains(strings.ToLower(queryText), "grade "+g) {
			score += gradeMatchBonus
		}
	}

	class := types.SourceExternal
	if priority == trustedPriority {
		class = types.SourceTrusted
	}

	return types.ScoredChunk{
		Text:           hit.Text,
		Metadata:       hit.Metadata,
		RawSimilarity:  hit.Similarity,
		PriorityWeight: priority,
		FinalScore:     score,
		Class:          class,
	}
}

// RankAndBudget scores every hit, drops those below the quality floor,
// orders them by score with trusted sources partitioned first, and
// greedily accumulates chunks until one would exceed the char budget.
// Chunks are never split.
func (r *Ranker) RankAndBudget(hits []types.RawHit, queryText string) []types.ScoredChunk {
	scored := make([]types.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if len(strings.TrimSpace(hit.Text)) < minChunkChars {
			continue
		}
		chunk := r.Score(hit, queryText)
		if chunk.FinalScore < r.floor {
			continue
		}
		scored = append(scored, chunk)
	}

	// Stable: equal scores keep their original relative order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	ordered := make([]types.ScoredChunk, 0, len(scored))
	for _, c := range scored {
		if c.Class == types.SourceTrusted {
			ordered = append(ordered, c)
		}
	}
	for _, c := range scored {
		if c.Class != types.SourceTrusted {
			ordered = append(ordered, c)
		}
	}

	budgeted := make([]types.ScoredChunk, 0, len(ordered))
	used := 0
	for _, c := range ordered {
		if used+len(c.Text) >= r.charBudget {
			break
		}
		budgeted = append(budgeted, c)
		used += len(c.Text)
	}
	return budgeted
}
