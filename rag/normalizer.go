package rag

import (
	"regexp"
	"strings"
)

// RuleNormalizer applies deterministic cleanup to raw questions so that
// cache keys and retrieval see a canonical phrasing.
type RuleNormalizer struct {
	politeness    []*regexp.Regexp
	fillers       []*regexp.Regexp
	abbreviations map[string]string
}

// NewRuleNormalizer creates the built-in rule-based normalizer.
func NewRuleNormalizer() *RuleNormalizer {
	return &RuleNormalizer{
		politeness: compileAll(
			`^can you (please )?tell me `,
			`^please (tell me|explain) `,
			`^hey[,!]?\s+`,
			`^so[,]?\s+`,
		),
		fillers: compileAll(
			`\blike\b`,
			`\bbasically\b`,
			`\bactually\b`,
		),
		abbreviations: map[string]string{
			"wat":  "what",
			"u":    "you",
			"pls":  "please",
			"bcoz": "because",
			"diff": "difference",
			"eqn":  "equation",
		},
	}
}

// Normalize cleans a raw question and reports which rules fired.
func (n *RuleNormalizer) Normalize(raw string) (string, []string, error) {
	question := strings.TrimSpace(raw)
	notes := []string{}

	lower := strings.ToLower(question)
	for _, re := range n.politeness {
		if re.MatchString(lower) {
			question = question[len(re.FindString(lower)):]
			lower = strings.ToLower(question)
			notes = append(notes, "removed politeness prefix")
			break
		}
	}

	for _, re := range n.fillers {
		if re.MatchString(strings.ToLower(question)) {
			question = re.ReplaceAllString(question, "")
			notes = append(notes, "removed filler word")
		}
	}

	words := strings.Fields(question)
	expanded := false
	for i, w := range words {
		if full, ok := n.abbreviations[strings.ToLower(w)]; ok {
			words[i] = full
			expanded = true
		}
	}
	if expanded {
		notes = append(notes, "expanded abbreviation")
	}

	clean := strings.Join(words, " ")
	if clean == "" {
		clean = strings.TrimSpace(raw)
	}
	return clean, notes, nil
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
