package rag

import (
	"strings"

	"github.com/satyalearn/satyarag/rag/types"
)

const (
	minConfidence float32 = 0.05
	maxConfidence float32 = 0.99
)

// calculateConfidence blends answer length, question/answer lexical
// overlap, and the average final score of the context chunks into a
// score strictly inside (0, 1).
func calculateConfidence(answer, question string, chunks []types.ScoredChunk) float32 {
	words := strings.Fields(answer)
	if len(words) < 5 {
		return 0.3
	}

	var confidence float32 = 0.5

	switch wc := len(words); {
	case wc >= 50 && wc <= 150:
		confidence += 0.2
	case (wc >= 30 && wc < 50) || (wc > 150 && wc <= 200):
		confidence += 0.1
	}

	qWords := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if len(w) > 3 {
			qWords[w] = struct{}{}
		}
	}
	if len(qWords) > 0 {
		aWords := map[string]struct{}{}
		for _, w := range words {
			aWords[strings.ToLower(w)] = struct{}{}
		}
		matched := 0
		for w := range qWords {
			if _, ok := aWords[w]; ok {
				matched++
			}
		}
		confidence += float32(matched) / float32(len(qWords)) * 0.2
	}

	if len(chunks) > 0 {
		var sum float32
		for _, c := range chunks {
			sum += c.FinalScore
		}
		confidence += sum / float32(len(chunks)) * 0.1
	}

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}
	return confidence
}
