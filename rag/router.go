package rag

import (
	"fmt"
	"strings"

	"github.com/mudler/xlog"
)

const maxRoutedCollections = 3

// subjectCollections maps a subject to its general-knowledge collections,
// in priority order. These are not grade-partitioned.
var subjectCollections = map[string][]string{
	"science":  {"openstax_science", "scienceqa"},
	"math":     {"finemath", "gsm8k"},
	"computer": {"cs_stanford"},
	"english":  {"fineweb_edu"},
}

// fallbackCollections are queried when neither the curriculum pattern nor
// the subject table produced anything.
var fallbackCollections = []string{"fineweb_edu", "khanacademy_pedagogy"}

// CollectionRouter decides which backing collections a query should
// touch. It performs no I/O; callers pass the available collection names.
type CollectionRouter struct{}

// NewCollectionRouter creates a router with the built-in subject table.
func NewCollectionRouter() *CollectionRouter {
	return &CollectionRouter{}
}

// Select returns at most three collection names in priority order:
// grade-qualified curriculum collections first, then up to two subject
// matches, then the fallback pair if nothing else applied. An unknown
// subject is not an error; it simply yields only the fallback set.
func (r *CollectionRouter) Select(subject, grade string, available []string) []string {
	subjectKey := strings.ToLower(strings.TrimSpace(subject))
	pattern := fmt.Sprintf("curriculum_%s_grade_%s", subjectKey, grade)

	selected := []string{}
	for _, name := range available {
		if strings.Contains(name, pattern) {
			selected = append(selected, name)
		}
	}

	added := 0
	for _, target := range subjectCollections[subjectKey] {
		if added >= 2 {
			break
		}
		if contains(available, target) && !contains(selected, target) {
			selected = append(selected, target)
			added++
		}
	}

	if len(selected) == 0 {
		for _, fb := range fallbackCollections {
			if contains(available, fb) {
				selected = append(selected, fb)
			}
		}
	}

	if len(selected) > maxRoutedCollections {
		selected = selected[:maxRoutedCollections]
	}

	xlog.Debug("Routed query to collections",
		"subject", subjectKey, "grade", grade, "collections", selected)

	return selected
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
