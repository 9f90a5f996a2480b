package types

// ChunkMetadata is the known metadata shape attached to stored chunks.
// Vector stores hand back arbitrary string maps; the fields every ranking
// stage cares about are typed, everything else lands in Extra.
type ChunkMetadata struct {
	Source  string            `json:"source,omitempty"`
	Type    string            `json:"type,omitempty"`
	Grade   string            `json:"grade,omitempty"`
	Subject string            `json:"subject,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// MetadataFromMap lifts a raw store metadata map into a ChunkMetadata.
func MetadataFromMap(m map[string]string) ChunkMetadata {
	md := ChunkMetadata{}
	for k, v := range m {
		switch k {
		case "source":
			md.Source = v
		case "type":
			md.Type = v
		case "grade":
			md.Grade = v
		case "subject":
			md.Subject = v
		default:
			if md.Extra == nil {
				md.Extra = map[string]string{}
			}
			md.Extra[k] = v
		}
	}
	return md
}

// ToMap flattens the metadata back into the store representation.
func (m ChunkMetadata) ToMap() map[string]string {
	out := map[string]string{}
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Source != "" {
		out["source"] = m.Source
	}
	if m.Type != "" {
		out["type"] = m.Type
	}
	if m.Grade != "" {
		out["grade"] = m.Grade
	}
	if m.Subject != "" {
		out["subject"] = m.Subject
	}
	return out
}

// Clone returns a deep copy including the Extra bag.
func (m ChunkMetadata) Clone() ChunkMetadata {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
