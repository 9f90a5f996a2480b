package types_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/satyalearn/satyarag/rag/types"
)

var _ = Describe("CosineSimilarity", func() {
	It("is 1 for identical directions and 0 for orthogonal ones", func() {
		a := []float32{1, 0, 0}
		Expect(CosineSimilarity(a, []float32{2, 0, 0})).To(BeNumerically("~", 1.0, 1e-6))
		Expect(CosineSimilarity(a, []float32{0, 1, 0})).To(BeNumerically("~", 0.0, 1e-6))
	})

	It("returns 0 for mismatched or degenerate input", func() {
		Expect(CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})).To(Equal(float32(0)))
		Expect(CosineSimilarity(nil, nil)).To(Equal(float32(0)))
		Expect(CosineSimilarity([]float32{0, 0}, []float32{1, 1})).To(Equal(float32(0)))
	})
})

var _ = Describe("NormalizeVector", func() {
	It("scales to unit norm", func() {
		v := NormalizeVector([]float32{3, 4})
		Expect(v[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(v[1]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("leaves the zero vector alone", func() {
		v := NormalizeVector([]float32{0, 0})
		Expect(IsZeroVector(v)).To(BeTrue())
	})
})

var _ = Describe("ChunkMetadata", func() {
	It("round-trips through the store map shape", func() {
		md := MetadataFromMap(map[string]string{
			"source":  "curriculum_science_grade_10",
			"grade":   "10",
			"chapter": "3",
		})
		Expect(md.Source).To(Equal("curriculum_science_grade_10"))
		Expect(md.Grade).To(Equal("10"))
		Expect(md.Extra).To(HaveKeyWithValue("chapter", "3"))

		m := md.ToMap()
		Expect(m).To(HaveKeyWithValue("source", "curriculum_science_grade_10"))
		Expect(m).To(HaveKeyWithValue("chapter", "3"))
	})

	It("clones without sharing the Extra bag", func() {
		md := ChunkMetadata{Source: "s", Extra: map[string]string{"k": "v"}}
		clone := md.Clone()
		clone.Extra["k"] = "changed"
		Expect(md.Extra).To(HaveKeyWithValue("k", "v"))
	})
})

var _ = Describe("QueryResult.Clone", func() {
	It("deep copies every slice and nested map", func() {
		r := &QueryResult{
			Answer:      "a",
			ContextUsed: []string{"ctx"},
			Sources: []ChunkMetadata{
				{Source: "s", Extra: map[string]string{"k": "v"}},
			},
			RetrievalErrors: []string{"err"},
		}

		clone := r.Clone()
		clone.ContextUsed[0] = "changed"
		clone.Sources[0].Extra["k"] = "changed"
		clone.RetrievalErrors[0] = "changed"

		Expect(r.ContextUsed[0]).To(Equal("ctx"))
		Expect(r.Sources[0].Extra).To(HaveKeyWithValue("k", "v"))
		Expect(r.RetrievalErrors[0]).To(Equal("err"))
	})

	It("handles nil receivers", func() {
		var r *QueryResult
		Expect(r.Clone()).To(BeNil())
	})
})
