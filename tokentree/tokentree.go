// Package tokentree is the postings container collaborator described
// in spec.md §3: for a given term, an ordered collection of
// (token, {key-position...}) entries. The real production
// implementation lives outside this module (spec: "the token tree
// builder is treated as an external collaborator; only its consumed
// contract is specified") — this package is a from-scratch, spec-
// faithful stand-in sized for this builder's tests and for the
// super-block aggregation the data-block encoder performs.
package tokentree

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"iter"
	"sort"
)

// ErrCorruptTree is returned by Read when the trailing CRC32 does not
// match the decoded body.
var ErrCorruptTree = errors.New("tokentree: corrupt tree")

// Tree accumulates (token, position) pairs for one term. Zero value
// is usable.
type Tree struct {
	positions map[int64][]int64
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{positions: make(map[int64][]int64)}
}

// Append adds one (token, key-position) entry.
func (t *Tree) Append(token, keyPosition int64) {
	if t.positions == nil {
		t.positions = make(map[int64][]int64)
	}
	t.positions[token] = append(t.positions[token], keyPosition)
}

// Merge folds other's tokens into t. Used both when the accumulator
// sees the same term twice and when the data-block encoder rolls
// per-term postings into a super-block's combined index.
func (t *Tree) Merge(other *Tree) {
	if other == nil || other.positions == nil {
		return
	}
	if t.positions == nil {
		t.positions = make(map[int64][]int64)
	}
	for token, positions := range other.positions {
		t.positions[token] = append(t.positions[token], positions...)
	}
}

// TokenCount reports the number of distinct tokens held.
func (t *Tree) TokenCount() int {
	return len(t.positions)
}

func (t *Tree) sortedTokens() []int64 {
	tokens := make([]int64, 0, len(t.positions))
	for token := range t.positions {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// All iterates (token, positions) pairs in ascending token order.
func (t *Tree) All() iter.Seq2[int64, []int64] {
	return func(yield func(int64, []int64) bool) {
		for _, token := range t.sortedTokens() {
			if !yield(token, t.positions[token]) {
				return
			}
		}
	}
}

// Tokens iterates just the distinct tokens in ascending order, with
// no position data. Used by the data-block encoder's inline (sparse)
// posting form, which per spec §4.E stores only the tokens.
func (t *Tree) Tokens() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, token := range t.sortedTokens() {
			if !yield(token) {
				return
			}
		}
	}
}

// SerializedSize reports the byte size Finalize would produce,
// without allocating the buffer.
func (t *Tree) SerializedSize() int {
	size := 4 // token count
	for _, positions := range t.positions {
		size += 8 + 4 + 8*len(positions) // token + posCount + positions
	}
	size += 4 // trailing crc
	return size
}

// Finalize writes the finalized byte representation to w: token
// count (4), then per token in ascending order: token (8), position
// count (4), positions (8 each); then a trailing CRC32 over the body.
func (t *Tree) Finalize(w io.Writer) error {
	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	tokens := t.sortedTokens()
	if err := binary.Write(mw, binary.LittleEndian, uint32(len(tokens))); err != nil {
		return err
	}
	for _, token := range tokens {
		positions := t.positions[token]
		if err := binary.Write(mw, binary.LittleEndian, token); err != nil {
			return err
		}
		if err := binary.Write(mw, binary.LittleEndian, uint32(len(positions))); err != nil {
			return err
		}
		for _, p := range positions {
			if err := binary.Write(mw, binary.LittleEndian, p); err != nil {
				return err
			}
		}
	}
	return binary.Write(w, binary.LittleEndian, crc.Sum32())
}

// Read decodes a Tree previously written by Finalize, validating its
// trailing CRC32.
func Read(r io.Reader) (*Tree, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	crc := crc32.NewIEEE()
	_ = binary.Write(crc, binary.LittleEndian, count)

	tr := New()
	for i := uint32(0); i < count; i++ {
		var token int64
		var posCount uint32
		if err := binary.Read(io.TeeReader(r, crc), binary.LittleEndian, &token); err != nil {
			return nil, err
		}
		if err := binary.Read(io.TeeReader(r, crc), binary.LittleEndian, &posCount); err != nil {
			return nil, err
		}
		positions := make([]int64, posCount)
		for j := range positions {
			if err := binary.Read(io.TeeReader(r, crc), binary.LittleEndian, &positions[j]); err != nil {
				return nil, err
			}
		}
		tr.positions[token] = positions
	}

	var storedCRC uint32
	if err := binary.Read(r, binary.LittleEndian, &storedCRC); err != nil {
		return nil, err
	}
	if storedCRC != crc.Sum32() {
		return nil, ErrCorruptTree
	}
	return tr, nil
}
