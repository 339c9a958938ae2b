// Package accumulator is the in-memory term accumulator described in
// spec.md §4.B: it deduplicates terms, aggregates postings per term,
// and tracks the key range and a running memory estimate for an
// upstream flush-pressure policy.
package accumulator

import (
	"bytes"

	"github.com/mbarakaja/sasigo/internal/blog"
	"github.com/mbarakaja/sasigo/sitype"
	"github.com/mbarakaja/sasigo/tokentree"
)

// KeyComparator orders two primary-key byte sequences. The concrete
// comparator lives outside this module (spec §1: byte-comparator
// implementations are an external collaborator); bytes.Compare is the
// default used when none is supplied.
type KeyComparator func(a, b []byte) int

// per-insert memory accounting constants. These are advisory inputs
// to an upstream flush policy (spec §9 "Memory accounting"), not a
// correctness property, and are sized for this package's own
// containers rather than ported bit-for-bit from any prior
// implementation.
const (
	bytesPerNewTermEntry = 64 // map bucket + key string header, rough
	bytesPerPosting      = 16 // token (8) + position (8)
)

// Accumulator orders term -> postings by a skip list (termIndex),
// plus key-range and memory tracking. The skip list gives the
// suffix-array transform's ORIGINAL ordering free ascending
// iteration, so it never has to re-sort the term set it was handed.
type Accumulator struct {
	terms          *termIndex
	keyCmp         KeyComparator
	minKey         []byte
	maxKey         []byte
	estimatedBytes int64
}

// New returns an empty Accumulator. A nil keyCmp defaults to
// bytes.Compare.
func New(keyCmp KeyComparator) *Accumulator {
	if keyCmp == nil {
		keyCmp = bytes.Compare
	}
	return &Accumulator{
		terms:  newTermIndex(),
		keyCmp: keyCmp,
	}
}

// Add appends one (term, key, key-position) triple. Terms at or
// above sitype.MaxTermSize are logged and dropped; Add never fails.
func (a *Accumulator) Add(term, key []byte, keyPosition int64) *Accumulator {
	if len(term) >= sitype.MaxTermSize {
		blog.Warn("dropping oversized term", "term_len", len(term), "max", sitype.MaxTermSize)
		return a
	}

	tk := string(term)
	tree, ok := a.terms.Get(tk)
	if !ok {
		tree = tokentree.New()
		a.terms.Put(tk, tree)
		a.estimatedBytes += bytesPerNewTermEntry
	}

	tree.Append(tokenOf(key), keyPosition)
	a.estimatedBytes += bytesPerPosting

	if a.minKey == nil || a.keyCmp(key, a.minKey) < 0 {
		a.minKey = append([]byte(nil), key...)
	}
	if a.maxKey == nil || a.keyCmp(key, a.maxKey) > 0 {
		a.maxKey = append([]byte(nil), key...)
	}

	return a
}

// tokenOf derives the 64-bit signed token for a primary-key, via
// FNV-1a folded to int64. Partition-key tokenization is an external
// collaborator per spec §1; this is a stand-in with the right shape
// (a stable hash of the key) rather than a specific cluster's
// partitioner.
func tokenOf(key []byte) int64 {
	var h uint64 = 14695981039346656037
	for _, b := range key {
		h ^= uint64(b)
		h *= 1099511628211
	}
	return int64(h)
}

// EstimatedMemoryUse returns the current running memory estimate.
func (a *Accumulator) EstimatedMemoryUse() int64 {
	return a.estimatedBytes
}

// IsEmpty reports whether any term has been accepted.
func (a *Accumulator) IsEmpty() bool {
	return a.terms.Size() == 0
}

// MinKey returns the smallest key seen so far.
func (a *Accumulator) MinKey() []byte { return a.minKey }

// MaxKey returns the largest key seen so far.
func (a *Accumulator) MaxKey() []byte { return a.maxKey }

// TermPostings pairs one accumulated term with its postings
// container, in the ascending order the skip list already maintains.
type TermPostings struct {
	Term     string
	Postings *tokentree.Tree
}

// Terms returns the accumulated term -> postings pairs in ascending
// order; the skip list itself is left unchanged and shares its
// postings containers with the result. Ownership passes to the caller (spec §9
// "Ownership"): the suffix-array transform consumes this slice and
// the accumulator must not be reused afterward.
func (a *Accumulator) Terms() []TermPostings {
	out := make([]TermPostings, 0, a.terms.Size())
	for term, postings := range a.terms.Iterator() {
		out = append(out, TermPostings{Term: term, Postings: postings})
	}
	return out
}
