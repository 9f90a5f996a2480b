package rag_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/satyalearn/satyarag/rag"
	"github.com/satyalearn/satyarag/rag/types"
)

func hit(text, source string, similarity float32) types.RawHit {
	return types.RawHit{
		Text:       text,
		Metadata:   types.ChunkMetadata{Source: source},
		Collection: source,
		Similarity: similarity,
	}
}

var _ = Describe("Ranker", func() {
	var ranker *Ranker

	BeforeEach(func() {
		ranker = NewRanker(400)
	})

	Describe("PriorityForSource", func() {
		It("gives curriculum content the maximum weight", func() {
			Expect(PriorityForSource("curriculum_science_grade_10")).To(Equal(float32(100)))
			Expect(PriorityForSource("CURRICULUM_notes")).To(Equal(float32(100)))
		})

		It("recognizes vetted open corpora by substring", func() {
			Expect(PriorityForSource("openstax_physics_v2")).To(Equal(float32(70)))
			Expect(PriorityForSource("khanacademy_pedagogy")).To(Equal(float32(65)))
			Expect(PriorityForSource("gsm8k")).To(Equal(float32(60)))
		})

		It("defaults unknown sources to 50", func() {
			Expect(PriorityForSource("random_blog")).To(Equal(float32(50)))
			Expect(PriorityForSource("")).To(Equal(float32(50)))
		})
	})

	Describe("Score", func() {
		It("blends similarity and priority 70/30", func() {
			chunk := ranker.Score(hit("some chunk of text", "curriculum_notes", 0.8), "what is an atom")
			Expect(chunk.FinalScore).To(BeNumerically("~", 0.8*0.7+1.0*0.3, 1e-6))
			Expect(chunk.Class).To(Equal(types.SourceTrusted))
		})

		It("classifies non-curriculum sources as external", func() {
			chunk := ranker.Score(hit("some chunk of text", "openstax", 0.8), "what is an atom")
			Expect(chunk.Class).To(Equal(types.SourceExternal))
			Expect(chunk.PriorityWeight).To(Equal(float32(70)))
		})

		It("adds the grade bonus when the question mentions the grade", func() {
			h := hit("gravity pulls objects down", "curriculum", 0.5)
			h.Metadata.Grade = "10"

			without := ranker.Score(h, "what is gravity")
			with := ranker.Score(h, "explain gravity for grade 10")

			Expect(with.FinalScore - without.FinalScore).To(BeNumerically("~", 0.1, 1e-6))
		})

		It("keeps the raw similarity untouched", func() {
			chunk := ranker.Score(hit("some chunk of text", "curriculum", 0.42), "q")
			Expect(chunk.RawSimilarity).To(Equal(float32(0.42)))
		})
	})

	Describe("RankAndBudget", func() {
		It("never returns a chunk below the quality floor", func() {
			hits := []types.RawHit{
				hit("a chunk that is clearly relevant to the question", "curriculum", 0.9),
				hit("a chunk that barely registers at all here", "random_source", 0.1),
			}

			chunks := ranker.RankAndBudget(hits, "q")
			for _, c := range chunks {
				Expect(c.FinalScore).To(BeNumerically(">=", 0.35))
			}
			Expect(chunks).To(HaveLen(1))
		})

		It("lists trusted chunks before external ones regardless of score", func() {
			hits := []types.RawHit{
				hit("external chunk with a very high raw similarity", "openstax", 0.9),
				hit("trusted curriculum chunk with a modest similarity", "curriculum", 0.2),
			}

			chunks := ranker.RankAndBudget(hits, "q")
			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0].Class).To(Equal(types.SourceTrusted))
			Expect(chunks[1].Class).To(Equal(types.SourceExternal))
			Expect(chunks[1].FinalScore).To(BeNumerically(">", chunks[0].FinalScore))
		})

		It("keeps the original order for equal scores", func() {
			hits := []types.RawHit{
				hit("first chunk with identical score", "openstax", 0.6),
				hit("second chunk with identical score", "openstax_physics", 0.6),
			}

			chunks := ranker.RankAndBudget(hits, "q")
			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0].Text).To(ContainSubstring("first"))
			Expect(chunks[1].Text).To(ContainSubstring("second"))
		})

		It("respects the character budget without splitting chunks", func() {
			ranker = NewRanker(100)
			hits := []types.RawHit{
				hit(strings.Repeat("a", 60), "curriculum", 0.9),
				hit(strings.Repeat("b", 60), "curriculum", 0.8),
				hit(strings.Repeat("c", 20), "curriculum", 0.7),
			}

			chunks := ranker.RankAndBudget(hits, "q")

			total := 0
			for _, c := range chunks {
				total += len(c.Text)
			}
			Expect(total).To(BeNumerically("<=", 100))
			Expect(chunks).To(HaveLen(1))
		})

		It("drops chunks that are too short to be useful", func() {
			hits := []types.RawHit{
				hit("ok", "curriculum", 0.9),
				hit("a proper chunk of educational content", "curriculum", 0.9),
			}

			chunks := ranker.RankAndBudget(hits, "q")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Text).To(ContainSubstring("proper"))
		})

		It("returns nothing for no hits", func() {
			Expect(ranker.RankAndBudget(nil, "q")).To(BeEmpty())
		})
	})
})
