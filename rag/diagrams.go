package rag

import (
	"sort"
	"strings"
)

// DiagramLibrary serves text diagrams as visual aids for the offline,
// text-only interface.
type DiagramLibrary struct {
	diagrams map[string]string
	keywords map[string]string
}

// NewDiagramLibrary creates the built-in educational diagram set.
func NewDiagramLibrary() *DiagramLibrary {
	lib := &DiagramLibrary{
		diagrams: map[string]string{
			"cell": `
   ________________________
  /    Cell Wall           \
 |   __________________     |
 |  /  Cell Membrane   \    |
 | |    ( Nucleus )     |   |
 | |    [ Vacuole ]     |   |
 | |  [ Chloroplast ]   |   |
 |  \__________________/    |
  \________________________/
`,
			"dna": `
    A---T
   G-----C
  T-------A
 C---------G
  A-------T
   G-----C
`,
			"circuit_series": `
 + [Battery] -
 |           |
 +--[Bulb]--[Bulb]--+
`,
			"circuit_parallel": `
    +--[Bulb]--+
    |          |
 +--+          +-- [Battery]
    |          |
    +--[Bulb]--+
`,
			"atom": `
      e-
        \
   e-    ( P+ N0 )    e-
        /
      e-
 (Bohr model: P=proton, N=neutron, e=electron)
`,
			"triangle_right": `
 |\
 | \  Hypotenuse
 |  \
 |___\
 Base
`,
			"coordinate_plane": `
       ^ Y
       |
 - - - + - - - > X
       |
 (Cartesian system)
`,
		},
		keywords: map[string]string{
			"plant cell":       "cell",
			"animal cell":      "cell",
			"dna":              "dna",
			"gene":             "dna",
			"series circuit":   "circuit_series",
			"parallel circuit": "circuit_parallel",
			"electric circuit": "circuit_series",
			"atom":             "atom",
			"electron":         "atom",
			"triangle":         "triangle_right",
			"pythagoras":       "triangle_right",
			"coordinate":       "coordinate_plane",
			"graph":            "coordinate_plane",
		},
	}
	return lib
}

// Get retrieves a diagram by key, or "" if absent.
func (l *DiagramLibrary) Get(key string) string {
	return l.diagrams[key]
}

// FindByText returns the first diagram whose keyword appears in the text.
func (l *DiagramLibrary) FindByText(text string) string {
	lower := strings.ToLower(text)

	keys := make([]string, 0, len(l.keywords))
	for k := range l.keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, keyword := range keys {
		if strings.Contains(lower, keyword) {
			return l.diagrams[l.keywords[keyword]]
		}
	}
	return ""
}

// List returns the available diagram keys, sorted.
func (l *DiagramLibrary) List() []string {
	keys := make([]string, 0, len(l.diagrams))
	for k := range l.diagrams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
