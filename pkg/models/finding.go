package models

// EntityKind identifies what a finding compares.
type EntityKind string

const (
	EntityType   EntityKind = "type"
	EntityMethod EntityKind = "method"
)

func (e EntityKind) String() string { return string(e) }

// Location points at the declaration of one side of a finding.
type Location struct {
	File string `json:"file,omitempty" yaml:"file,omitempty" toon:"file,omitempty"`
	Line uint32 `json:"line,omitempty" yaml:"line,omitempty" toon:"line,omitempty"`
}

// Finding records a pair of entities whose normalized representations are
// within the configured edit distance of each other.
//
// For method findings NameA is the method discovered later and NameB the
// earlier one it was compared against.
type Finding struct {
	Kind      EntityKind `json:"kind" yaml:"kind" toon:"kind"`
	NameA     string     `json:"name_a" yaml:"name_a" toon:"name_a"`
	NameB     string     `json:"name_b" yaml:"name_b" toon:"name_b"`
	Distance  int        `json:"distance" yaml:"distance" toon:"distance"`
	LocationA Location   `json:"location_a" yaml:"location_a" toon:"location_a"`
	LocationB Location   `json:"location_b" yaml:"location_b" toon:"location_b"`
	Exact     bool       `json:"exact,omitempty" yaml:"exact,omitempty" toon:"exact,omitempty"`
}
