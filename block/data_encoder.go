package block

import (
	"encoding/binary"
	"io"

	"github.com/mbarakaja/sasigo/simode"
	"github.com/mbarakaja/sasigo/tokentree"
)

// sparseInlineThreshold is the pointer-inline threshold: a postings
// container with at most this many tokens is packed inline; larger
// ones are written by reference into the overflow region. Spec §6.
const sparseInlineThreshold = 5

// sparseOverflowSentinel is written as the sparse-overflow-offset
// field when no term in the block was packed inline (see
// DataEncoder.FlushAndClear for the exact, spec-mandated gate).
const sparseOverflowSentinel = int32(-1)

// DataEncoder extends the plain block encoder with mode-aware posting
// packing: small containers are serialized inline, larger ones by
// reference into a trailing overflow region, and in SPARSE mode a
// combined token tree is accumulated across the whole block. Spec
// §4.E.
type DataEncoder struct {
	raw  rawBuilder
	mode simode.Mode

	overflowOffset   uint32
	sparseValueTerms int
	containers       []*tokentree.Tree
	combinedIndex    *tokentree.Tree
}

// NewDataEncoder returns an empty DataEncoder operating in mode.
func NewDataEncoder(mode simode.Mode) *DataEncoder {
	return &DataEncoder{
		mode:          mode,
		combinedIndex: tokentree.New(),
	}
}

func (d *DataEncoder) isInline(postings *tokentree.Tree) bool {
	return d.mode == simode.Sparse && postings.TokenCount() <= sparseInlineThreshold
}

// extraSize is the posting-related byte cost sizeAfter adds on top of
// the base block accounting, per spec §4.E.
func (d *DataEncoder) extraSize(postings *tokentree.Tree) int {
	if d.isInline(postings) {
		return 1 + 8*postings.TokenCount()
	}
	return 5 // 1-byte tag + 4-byte offset
}

// HasSpaceFor reports whether dt fits in the block without exceeding
// Size, accounting for its inline or overflow-reference encoding.
func (d *DataEncoder) HasSpaceFor(dt DataTerm) bool {
	base := d.raw.headerSize(1) + d.raw.payloadLen() + dt.Term.SerializedSize()
	return base+d.extraSize(dt.Postings) < Size
}

// Count reports the number of entries added since the last flush.
func (d *DataEncoder) Count() int { return d.raw.Count() }

// Empty reports whether any entry has been added since the last flush.
func (d *DataEncoder) Empty() bool { return d.raw.Empty() }

// Add packs dt's term and, depending on mode and token count, either
// its tokens inline or a reference to its overflow-region body.
func (d *DataEncoder) Add(dt DataTerm) error {
	if err := d.raw.recordOffset(); err != nil {
		return err
	}
	w := d.raw.Payload()
	if err := dt.Term.WriteTo(w); err != nil {
		return err
	}

	if d.isInline(dt.Postings) {
		if err := binary.Write(w, binary.LittleEndian, uint8(dt.Postings.TokenCount())); err != nil {
			return err
		}
		for token := range dt.Postings.Tokens() {
			if err := binary.Write(w, binary.LittleEndian, token); err != nil {
				return err
			}
		}
		d.sparseValueTerms++
	} else {
		if err := binary.Write(w, binary.LittleEndian, uint8(0x00)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, d.overflowOffset); err != nil {
			return err
		}
		d.containers = append(d.containers, dt.Postings)
		d.overflowOffset += uint32(dt.Postings.SerializedSize())
	}

	if d.mode == simode.Sparse {
		d.combinedIndex.Merge(dt.Postings)
	}

	return nil
}

// FlushAndClear emits the base block, the sparse-overflow-offset
// field, every overflow container body in order, and — only when at
// least one inline term was packed — the finalized combined index.
// Everything is then padded to the next Size boundary.
//
// The sentinel gate is `sparseValueTerms == 0`, which counts inline
// terms specifically, not overflow containers. In ORIGINAL/SUFFIX
// mode sparseValueTerms never increments, so this field is always -1
// there even though overflow containers may still have been written
// right after it — preserved as-is for reader compatibility (spec §9
// open questions).
func (d *DataEncoder) FlushAndClear(out io.Writer) error {
	written, err := d.raw.flushHeaderAndPayload(out)
	if err != nil {
		return err
	}

	sentinel := sparseOverflowSentinel
	if d.sparseValueTerms != 0 {
		sentinel = int32(d.overflowOffset)
	}
	if err := binary.Write(out, binary.LittleEndian, sentinel); err != nil {
		return err
	}
	written += 4

	for _, container := range d.containers {
		if err := container.Finalize(out); err != nil {
			return err
		}
		written += container.SerializedSize()
	}

	if d.sparseValueTerms > 0 {
		if err := d.combinedIndex.Finalize(out); err != nil {
			return err
		}
		written += d.combinedIndex.SerializedSize()
	}

	if err := Pad(out, written); err != nil {
		return err
	}

	d.reset()
	return nil
}

func (d *DataEncoder) reset() {
	d.raw.reset()
	d.containers = nil
	d.combinedIndex = tokentree.New()
	d.overflowOffset = 0
	d.sparseValueTerms = 0
}
