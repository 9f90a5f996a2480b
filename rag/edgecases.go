package rag

import "strings"

// DefaultEdgeCaseHandler answers trivial inputs before they reach the
// retrieval pipeline, saving inference on low-resource hardware.
type DefaultEdgeCaseHandler struct {
	greetings map[string]struct{}
	gratitude map[string]struct{}
	apologies map[string]struct{}
}

// NewDefaultEdgeCaseHandler creates the built-in edge case handler.
func NewDefaultEdgeCaseHandler() *DefaultEdgeCaseHandler {
	return &DefaultEdgeCaseHandler{
		greetings: toSet(
			"hi", "hello", "namaste", "namaskar", "hey",
			"good morning", "good afternoon", "good evening",
		),
		gratitude: toSet("thank you", "thanks", "thx", "dhanyabad"),
		apologies: toSet("sorry", "i'm sorry", "my bad", "apologies"),
	}
}

// Check returns a canned response for trivial inputs, or "" to let the
// query continue into the pipeline.
func (h *DefaultEdgeCaseHandler) Check(raw string) string {
	q := strings.ToLower(strings.TrimSpace(raw))

	if q == "" {
		return "Please type a question. I am here to help you learn!"
	}
	if len(q) < 4 {
		return "Could you please elaborate? Your question is a bit too short for me to understand."
	}
	if _, ok := h.greetings[q]; ok {
		return "Namaste! I am your learning companion. How can I help you with your studies today?"
	}
	if _, ok := h.gratitude[q]; ok {
		return "You're welcome! Keep studying hard!"
	}
	if _, ok := h.apologies[q]; ok {
		return "No problem at all! Let's continue learning."
	}

	return ""
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
