// Package suffixarray is the suffix-array transform of spec.md §4.C:
// given the accumulator's ascending term -> postings pairs and the
// build mode, it emits terms in ascending comparator order, optionally
// expanded into their distinct suffixes.
package suffixarray

import (
	"sort"

	"github.com/mbarakaja/sasigo/accumulator"
	"github.com/mbarakaja/sasigo/simode"
	"github.com/mbarakaja/sasigo/sitype"
	"github.com/mbarakaja/sasigo/tokentree"
)

// Transform yields (term, postings) pairs in ascending order and
// reports the smallest/largest term emitted.
type Transform interface {
	HasNext() bool
	Next() (term []byte, postings *tokentree.Tree)
	MinTerm() []byte
	MaxTerm() []byte
}

// New builds the transform appropriate for mode and comparator. terms
// must already be in ascending order (accumulator.Terms hands back
// its skip list's natural iteration order). SUFFIX mode only expands
// terms when the comparator is text (UTF-8 or ASCII); otherwise it
// falls back to the original ordering, per spec §4.C.
func New(terms []accumulator.TermPostings, mode simode.Mode, comparator sitype.Comparator) Transform {
	if mode == simode.Suffix && comparator.IsText() {
		return newSuffixTransform(terms)
	}
	return newOriginalTransform(terms)
}

type entry = accumulator.TermPostings

type originalTransform struct {
	entries []entry
	pos     int
}

// newOriginalTransform wraps terms directly: the accumulator's skip
// list already yielded them in ascending order, so there is nothing
// left to sort.
func newOriginalTransform(terms []entry) *originalTransform {
	return &originalTransform{entries: terms}
}

func (t *originalTransform) HasNext() bool { return t.pos < len(t.entries) }

func (t *originalTransform) Next() ([]byte, *tokentree.Tree) {
	e := t.entries[t.pos]
	t.pos++
	return []byte(e.Term), e.Postings
}

func (t *originalTransform) MinTerm() []byte {
	if len(t.entries) == 0 {
		return nil
	}
	return []byte(t.entries[0].Term)
}

func (t *originalTransform) MaxTerm() []byte {
	if len(t.entries) == 0 {
		return nil
	}
	return []byte(t.entries[len(t.entries)-1].Term)
}

// suffixTransform expands every term into its distinct suffixes,
// merging postings of all terms sharing a suffix into one container,
// then emits in ascending suffix order.
type suffixTransform struct {
	entries []entry
	pos     int
}

func newSuffixTransform(terms []entry) *suffixTransform {
	bySuffix := make(map[string]*tokentree.Tree)

	for _, e := range terms {
		for i := 0; i < len(e.Term); i++ {
			suffix := e.Term[i:]
			tree, ok := bySuffix[suffix]
			if !ok {
				tree = tokentree.New()
				bySuffix[suffix] = tree
			}
			tree.Merge(e.Postings)
		}
	}

	entries := make([]entry, 0, len(bySuffix))
	for suffix, postings := range bySuffix {
		entries = append(entries, entry{Term: suffix, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })

	return &suffixTransform{entries: entries}
}

func (t *suffixTransform) HasNext() bool { return t.pos < len(t.entries) }

func (t *suffixTransform) Next() ([]byte, *tokentree.Tree) {
	e := t.entries[t.pos]
	t.pos++
	return []byte(e.Term), e.Postings
}

func (t *suffixTransform) MinTerm() []byte {
	if len(t.entries) == 0 {
		return nil
	}
	return []byte(t.entries[0].Term)
}

func (t *suffixTransform) MaxTerm() []byte {
	if len(t.entries) == 0 {
		return nil
	}
	return []byte(t.entries[len(t.entries)-1].Term)
}
