package rag_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/satyalearn/satyarag/rag"
	"github.com/satyalearn/satyarag/rag/types"
)

func ragResult(answer string) *types.QueryResult {
	return &types.QueryResult{
		Answer:      answer,
		ContextUsed: []string{"some context"},
		Sources: []types.ChunkMetadata{
			{Source: "curriculum_science_grade_10", Extra: map[string]string{"chapter": "3"}},
		},
		Confidence: 0.8,
		Kind:       types.KindRAGResponse,
	}
}

var _ = Describe("SemanticCache", func() {
	var cache *SemanticCache

	BeforeEach(func() {
		cache = NewSemanticCache(100, time.Hour)
	})

	Describe("CacheKey", func() {
		It("is deterministic and case-insensitive on the question", func() {
			k1 := CacheKey("What is an atom?", "science", "10")
			k2 := CacheKey("  what is an atom?  ", "Science", "10")
			Expect(k1).To(Equal(k2))
		})

		It("differs per subject and grade", func() {
			base := CacheKey("what is an atom?", "science", "10")
			Expect(CacheKey("what is an atom?", "science", "9")).ToNot(Equal(base))
			Expect(CacheKey("what is an atom?", "math", "10")).ToNot(Equal(base))
		})
	})

	Describe("GetExact", func() {
		It("returns what was stored", func() {
			key := CacheKey("q", "science", "10")
			cache.Set(key, ragResult("the answer"), nil, "science", "10", "q")

			got := cache.GetExact(key)
			Expect(got).ToNot(BeNil())
			Expect(got.Answer).To(Equal("the answer"))
			Expect(got.Sources).To(HaveLen(1))
			Expect(got.Sources[0].Extra).To(HaveKeyWithValue("chapter", "3"))
		})

		It("returns nil for unknown keys", func() {
			Expect(cache.GetExact("missing")).To(BeNil())
		})

		It("returns deep copies that do not alias the stored record", func() {
			key := CacheKey("q", "science", "10")
			cache.Set(key, ragResult("the answer"), nil, "science", "10", "q")

			first := cache.GetExact(key)
			first.Answer = "mutated"
			first.Sources[0].Extra["chapter"] = "99"

			second := cache.GetExact(key)
			Expect(second.Answer).To(Equal("the answer"))
			Expect(second.Sources[0].Extra).To(HaveKeyWithValue("chapter", "3"))
		})

		It("does not let the caller's later mutations corrupt the cache", func() {
			key := CacheKey("q", "science", "10")
			original := ragResult("the answer")
			cache.Set(key, original, nil, "science", "10", "q")

			original.Answer = "mutated after set"

			Expect(cache.GetExact(key).Answer).To(Equal("the answer"))
		})
	})

	Describe("TTL expiry", func() {
		It("expires records after the TTL", func() {
			cache = NewSemanticCache(100, 30*time.Millisecond)
			key := CacheKey("q", "science", "10")
			cache.Set(key, ragResult("short lived"), nil, "science", "10", "q")

			Expect(cache.GetExact(key)).ToNot(BeNil())
			time.Sleep(60 * time.Millisecond)
			Expect(cache.GetExact(key)).To(BeNil())
		})

		It("sweeps expired records from Stats", func() {
			cache = NewSemanticCache(100, 30*time.Millisecond)
			cache.Set("a", ragResult("one"), nil, "science", "10", "q1")
			cache.Set("b", ragResult("two"), nil, "science", "10", "q2")

			Expect(cache.Stats().Size).To(Equal(2))
			time.Sleep(60 * time.Millisecond)
			Expect(cache.Stats().Size).To(Equal(0))
		})
	})

	Describe("LRU eviction", func() {
		It("never exceeds max size and evicts the oldest insertion", func() {
			cache = NewSemanticCache(3, time.Hour)
			for i := 0; i < 4; i++ {
				cache.Set(fmt.Sprintf("key-%d", i), ragResult(fmt.Sprintf("answer-%d", i)),
					nil, "science", "10", "q")
				time.Sleep(2 * time.Millisecond)
			}

			Expect(cache.Stats().Size).To(Equal(3))
			Expect(cache.GetExact("key-0")).To(BeNil())
			Expect(cache.GetExact("key-1")).ToNot(BeNil())
			Expect(cache.GetExact("key-3")).ToNot(BeNil())
		})

		It("does not evict when overwriting an existing key at capacity", func() {
			cache = NewSemanticCache(2, time.Hour)
			cache.Set("a", ragResult("one"), nil, "science", "10", "q")
			cache.Set("b", ragResult("two"), nil, "science", "10", "q")
			cache.Set("a", ragResult("one again"), nil, "science", "10", "q")

			Expect(cache.Stats().Size).To(Equal(2))
			Expect(cache.GetExact("a").Answer).To(Equal("one again"))
			Expect(cache.GetExact("b")).ToNot(BeNil())
		})
	})

	Describe("FindSemantic", func() {
		embed := func(x, y, z float32) []float32 {
			return types.NormalizeVector([]float32{x, y, z})
		}

		It("matches a similar embedding above the threshold", func() {
			cache.Set("a", ragResult("cached"), embed(1, 0, 0), "science", "10", "q")

			got := cache.FindSemantic(embed(0.99, 0.1, 0), "science", "10", 0.88)
			Expect(got).ToNot(BeNil())
			Expect(got.Answer).To(Equal("cached"))
		})

		It("rejects embeddings below the threshold", func() {
			cache.Set("a", ragResult("cached"), embed(1, 0, 0), "science", "10", "q")

			Expect(cache.FindSemantic(embed(0, 1, 0), "science", "10", 0.88)).To(BeNil())
		})

		It("is monotone in similarity", func() {
			cache.Set("a", ragResult("cached"), embed(1, 0, 0), "science", "10", "q")

			closer := embed(0.98, 0.05, 0)
			further := embed(0.95, 0.3, 0)
			threshold := types.CosineSimilarity(further, embed(1, 0, 0))

			Expect(cache.FindSemantic(further, "science", "10", threshold)).ToNot(BeNil())
			Expect(cache.FindSemantic(closer, "science", "10", threshold)).ToNot(BeNil())
		})

		It("requires subject and grade to match exactly", func() {
			cache.Set("a", ragResult("cached"), embed(1, 0, 0), "science", "10", "q")

			Expect(cache.FindSemantic(embed(1, 0, 0), "math", "10", 0.88)).To(BeNil())
			Expect(cache.FindSemantic(embed(1, 0, 0), "science", "9", 0.88)).To(BeNil())
		})

		It("prefers the most recently written record on a tie", func() {
			cache.Set("a", ragResult("older"), embed(1, 0, 0), "science", "10", "q")
			time.Sleep(2 * time.Millisecond)
			cache.Set("b", ragResult("newer"), embed(1, 0, 0), "science", "10", "q")

			got := cache.FindSemantic(embed(1, 0, 0), "science", "10", 0.88)
			Expect(got).ToNot(BeNil())
			Expect(got.Answer).To(Equal("newer"))
		})

		It("treats a zero-norm query embedding as no match", func() {
			cache.Set("a", ragResult("cached"), embed(1, 0, 0), "science", "10", "q")

			Expect(cache.FindSemantic([]float32{0, 0, 0}, "science", "10", 0.0)).To(BeNil())
			Expect(cache.FindSemantic(nil, "science", "10", 0.0)).To(BeNil())
		})

		It("ignores records stored without an embedding", func() {
			cache.Set("a", ragResult("no embedding"), nil, "science", "10", "q")

			Expect(cache.FindSemantic(embed(1, 0, 0), "science", "10", 0.0)).To(BeNil())
		})
	})

	Describe("Clear", func() {
		It("drops everything", func() {
			cache.Set("a", ragResult("one"), nil, "science", "10", "q")
			cache.Set("b", ragResult("two"), nil, "science", "10", "q")

			cache.Clear()

			Expect(cache.Stats().Size).To(Equal(0))
			Expect(cache.GetExact("a")).To(BeNil())
		})
	})
})
