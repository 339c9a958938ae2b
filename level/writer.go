// Package level is the level writer of spec.md §4.F: it appends
// blocks to one tree level, emits promotion pointers for the parent
// level, and flushes per-level metadata. A single Writer type is
// generic over its element kind (spec §9 "Polymorphism": the level
// writer is generic over its element type, modeled here with Go
// generics rather than an open class hierarchy) — pointer levels use
// block.PointerTerm, the data level uses block.DataTerm via DataWriter.
package level

import (
	"encoding/binary"
	"io"

	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/sifile"
	"github.com/mbarakaja/sasigo/sitype"
)

// Keyed is the minimum an element needs for this level to build a
// separator pointer term out of it.
type Keyed interface {
	TermBytes() []byte
}

// Encoder is the block-encoder shape a Writer drives: either
// *block.Encoder[E] (pointer levels) or *block.DataEncoder (the data
// level, via DataWriter).
type Encoder[E any] interface {
	HasSpaceFor(e E) bool
	Add(e E) error
	FlushAndClear(out io.Writer) error
	Empty() bool
}

// Writer appends entries of type E to one level's block stream,
// returning a promoted PointerTerm whenever a block fills and flushes.
type Writer[E Keyed] struct {
	out        *sifile.CountingWriter
	enc        Encoder[E]
	discipline sitype.Discipline

	blockOffsets []int64
	lastTerm     *block.PointerTerm

	// onBlockFlush, when set, runs immediately after any block flush
	// (including the one FinalFlush performs). DataWriter uses this to
	// fold in the SPARSE-mode super-block bookkeeping (spec §4.F
	// "Data-level specialization") without this type needing to know
	// anything about super blocks.
	onBlockFlush func() error
}

// New returns a Writer appending to out, driving enc, building
// separator terms under discipline.
func New[E Keyed](out *sifile.CountingWriter, enc Encoder[E], discipline sitype.Discipline) *Writer[E] {
	return &Writer[E]{out: out, enc: enc, discipline: discipline}
}

// Add appends entry to the current block, flushing it first if it
// lacks space. Returns the pointer term to promote to the parent
// level, if a block was flushed.
func (w *Writer[E]) Add(entry E) (*block.PointerTerm, error) {
	var toPromote *block.PointerTerm

	if !w.enc.Empty() && !w.enc.HasSpaceFor(entry) {
		if err := w.flushBlock(); err != nil {
			return nil, err
		}
		toPromote = w.lastTerm
	}

	if err := w.enc.Add(entry); err != nil {
		return nil, err
	}

	w.lastTerm = &block.PointerTerm{
		Term:            block.Term{Bytes: entry.TermBytes(), Discipline: w.discipline},
		ChildBlockIndex: uint32(len(w.blockOffsets)),
	}

	return toPromote, nil
}

func (w *Writer[E]) flushBlock() error {
	w.blockOffsets = append(w.blockOffsets, w.out.Pos())
	if err := w.enc.FlushAndClear(w.out); err != nil {
		return err
	}
	if w.onBlockFlush != nil {
		return w.onBlockFlush()
	}
	return nil
}

// FinalFlush flushes any partial block unconditionally. No pointer
// term is promoted for it: the parent level's search treats "past the
// last separator" as pointing at the final child block (spec §4.G
// body step 3).
func (w *Writer[E]) FinalFlush() error {
	if w.enc.Empty() {
		return nil
	}
	return w.flushBlock()
}

// FlushMetadata writes the level's metadata record: the count of
// block offsets, then each offset.
func (w *Writer[E]) FlushMetadata(out io.Writer) error {
	if err := binary.Write(out, binary.LittleEndian, uint32(len(w.blockOffsets))); err != nil {
		return err
	}
	for _, off := range w.blockOffsets {
		if err := binary.Write(out, binary.LittleEndian, off); err != nil {
			return err
		}
	}
	return nil
}

// BlockCount reports the number of blocks flushed so far at this
// level. The next level up holds one entry per block flushed by Add;
// the block flushed by FinalFlush is not promoted, so after a build
// the next level holds BlockCount()-1 entries.
func (w *Writer[E]) BlockCount() int { return len(w.blockOffsets) }
