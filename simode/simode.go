// Package simode defines the three index-build modes shared across
// the suffix-array transform, the data-block encoder, and the level
// writer. It exists on its own so that none of those packages need to
// import one another just to agree on a mode constant.
package simode

// Mode selects how terms are ordered before reaching the block
// encoder, and how the data-block encoder packs their postings.
type Mode int

const (
	// Original emits terms exactly as accumulated.
	Original Mode = iota
	// Suffix expands text terms into the set of their suffixes.
	Suffix
	// Sparse keeps ORIGINAL's term ordering but switches the data-block
	// encoder into inline/overflow posting packing with a per-super-block
	// combined token tree.
	Sparse
)

func (m Mode) String() string {
	switch m {
	case Original:
		return "ORIGINAL"
	case Suffix:
		return "SUFFIX"
	case Sparse:
		return "SPARSE"
	default:
		return "UNKNOWN"
	}
}
