package rag

import (
	"fmt"
	"regexp"
	"strings"
)

// MinContextOverlap is the fraction of answer key terms that must appear
// in the retrieved context for the answer to count as grounded.
const MinContextOverlap = 0.3

// admissionPhrases mark answers where the model conceded it has no
// supporting knowledge; such answers are never considered grounded.
var admissionPhrases = []string{
	"i don't have that information",
	"my knowledge cutoff",
	"unrelated to the context",
	"based on general knowledge",
	"i couldn't find",
	"not mentioned in the context",
}

var keyTermPattern = regexp.MustCompile(`\b\w{5,}\b`)

// ValidateGrounding checks whether an answer's key claims are textually
// supported by the retrieved context. Pure function, no I/O.
func ValidateGrounding(answer string, contextChunks []string) (bool, string) {
	if answer == "" || len(contextChunks) == 0 {
		return false, "no answer or context"
	}

	if len(strings.Fields(answer)) < 5 {
		return true, "too short to validate"
	}

	answerLower := strings.ToLower(answer)
	fullContext := strings.ToLower(strings.Join(contextChunks, " "))

	terms := map[string]struct{}{}
	for _, t := range keyTermPattern.FindAllString(answerLower, -1) {
		terms[t] = struct{}{}
	}
	if len(terms) == 0 {
		return true, "no key terms"
	}

	found := 0
	for t := range terms {
		if strings.Contains(fullContext, t) {
			found++
		}
	}
	overlap := float64(found) / float64(len(terms))
	if overlap < MinContextOverlap {
		return false, fmt.Sprintf("low context overlap (%.0f%%)", overlap*100)
	}

	for _, phrase := range admissionPhrases {
		if strings.Contains(answerLower, phrase) {
			return false, "model admitted lack of knowledge"
		}
	}

	return true, "grounded"
}
